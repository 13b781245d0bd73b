package trigger

// DeviceKind discriminates the device scopes a key-code key can listen on
type DeviceKind int

const (
	// DeviceAny matches events from every input device.
	DeviceAny DeviceKind = iota
	// DeviceInternal matches events from the built-in device only.
	DeviceInternal
	// DeviceExternal matches events from one external device, identified
	// by its descriptor.
	DeviceExternal
)

// DeviceScope restricts a key-code key to a set of input devices. The
// Descriptor and Name fields are only set for DeviceExternal.
type DeviceScope struct {
	Kind       DeviceKind
	Descriptor string
	Name       string
}

func AnyDevice() DeviceScope {
	return DeviceScope{Kind: DeviceAny}
}

func InternalDevice() DeviceScope {
	return DeviceScope{Kind: DeviceInternal}
}

func ExternalDevice(descriptor, name string) DeviceScope {
	return DeviceScope{Kind: DeviceExternal, Descriptor: descriptor, Name: name}
}

// SameDevice reports whether two scopes can observe the same event source.
// External scopes compare by descriptor; the display name is cosmetic.
func (d DeviceScope) SameDevice(other DeviceScope) bool {
	if d.Kind != other.Kind {
		return false
	}
	if d.Kind == DeviceExternal {
		return d.Descriptor == other.Descriptor
	}
	return true
}

// DeviceInfo identifies a raw evdev input device by its hardware identity.
type DeviceInfo struct {
	Name    string
	Bus     int
	Vendor  int
	Product int
}
