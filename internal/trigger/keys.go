package trigger

// AssistantType selects which assistant activation a key listens for
type AssistantType string

const (
	AssistantAny    AssistantType = "any"
	AssistantVoice  AssistantType = "voice"
	AssistantDevice AssistantType = "device"
)

// FingerprintGesture is a swipe direction on the fingerprint sensor
type FingerprintGesture string

const (
	GestureSwipeUp    FingerprintGesture = "swipe_up"
	GestureSwipeDown  FingerprintGesture = "swipe_down"
	GestureSwipeLeft  FingerprintGesture = "swipe_left"
	GestureSwipeRight FingerprintGesture = "swipe_right"
)

// FloatingButtonInfo is a cached snapshot of an overlay button's appearance.
// It may be nil on a key whose button has been deleted.
type FloatingButtonInfo struct {
	Label      string
	LayoutName string
}

// KeyBase holds the fields every key variant shares
type KeyBase struct {
	UID       string
	ClickType ClickType
}

// Base returns the shared identity and click type of a key
func (b KeyBase) Base() KeyBase { return b }

func (KeyBase) isTriggerKey() {}

// Key is one entry in a trigger. The concrete variants are KeyCodeKey,
// RawEventKey, AssistantKey, FingerprintKey and FloatingButtonKey.
type Key interface {
	Base() KeyBase
	// AllowsLongPress reports whether the variant can observe a long press.
	AllowsLongPress() bool
	// AllowsDoublePress reports whether the variant can observe a double press.
	AllowsDoublePress() bool
	// Matches reports logical equality: whether the two keys would be
	// satisfied by the same physical event. UID and click type are ignored.
	Matches(other Key) bool

	withClickType(clickType ClickType) Key
	isTriggerKey()
}

// KeyCodeKey matches a translated key event by key code, optionally scoped
// to a device.
type KeyCodeKey struct {
	KeyBase
	KeyCode            int
	ScanCode           int
	Device             DeviceScope
	ConsumeEvent       bool
	RequiresIME        bool
	DetectWithScanCode bool
}

// EffectiveCode is the code detection matches on: the scan code when
// scan-code detection is enabled, the key code otherwise.
func (k KeyCodeKey) EffectiveCode() int {
	if k.DetectWithScanCode {
		return k.ScanCode
	}
	return k.KeyCode
}

func (k KeyCodeKey) AllowsLongPress() bool   { return true }
func (k KeyCodeKey) AllowsDoublePress() bool { return true }

func (k KeyCodeKey) Matches(other Key) bool {
	o, ok := other.(KeyCodeKey)
	if !ok {
		return false
	}
	return k.EffectiveCode() == o.EffectiveCode() && k.Device.SameDevice(o.Device)
}

func (k KeyCodeKey) withClickType(clickType ClickType) Key {
	k.KeyBase.ClickType = clickType
	return k
}

// RawEventKey matches an untranslated evdev event from one specific
// hardware device.
type RawEventKey struct {
	KeyBase
	KeyCode            int
	ScanCode           int
	Device             DeviceInfo
	ConsumeEvent       bool
	DetectWithScanCode bool
}

func (k RawEventKey) EffectiveCode() int {
	if k.DetectWithScanCode {
		return k.ScanCode
	}
	return k.KeyCode
}

func (k RawEventKey) AllowsLongPress() bool   { return true }
func (k RawEventKey) AllowsDoublePress() bool { return true }

func (k RawEventKey) Matches(other Key) bool {
	o, ok := other.(RawEventKey)
	if !ok {
		return false
	}
	return k.EffectiveCode() == o.EffectiveCode() && k.Device == o.Device
}

func (k RawEventKey) withClickType(clickType ClickType) Key {
	k.KeyBase.ClickType = clickType
	return k
}

// AssistantKey matches an assistant activation. Assistant activations have
// no press duration, so long and double presses are never allowed.
type AssistantKey struct {
	KeyBase
	Type AssistantType
}

func (k AssistantKey) AllowsLongPress() bool   { return false }
func (k AssistantKey) AllowsDoublePress() bool { return false }

func (k AssistantKey) Matches(other Key) bool {
	_, ok := other.(AssistantKey)
	return ok
}

func (k AssistantKey) withClickType(clickType ClickType) Key {
	k.KeyBase.ClickType = clickType
	return k
}

// FingerprintKey matches a fingerprint sensor gesture
type FingerprintKey struct {
	KeyBase
	Gesture FingerprintGesture
}

func (k FingerprintKey) AllowsLongPress() bool   { return false }
func (k FingerprintKey) AllowsDoublePress() bool { return false }

func (k FingerprintKey) Matches(other Key) bool {
	_, ok := other.(FingerprintKey)
	return ok
}

func (k FingerprintKey) withClickType(clickType ClickType) Key {
	k.KeyBase.ClickType = clickType
	return k
}

// FloatingButtonKey matches a tap on an overlay button. Button identity is
// the button UID; the Button snapshot is kept for display and may be nil if
// the button no longer exists.
type FloatingButtonKey struct {
	KeyBase
	ButtonUID string
	Button    *FloatingButtonInfo
}

func (k FloatingButtonKey) AllowsLongPress() bool   { return true }
func (k FloatingButtonKey) AllowsDoublePress() bool { return true }

func (k FloatingButtonKey) Matches(other Key) bool {
	o, ok := other.(FloatingButtonKey)
	if !ok {
		return false
	}
	return k.ButtonUID == o.ButtonUID
}

func (k FloatingButtonKey) withClickType(clickType ClickType) Key {
	k.KeyBase.ClickType = clickType
	return k
}
