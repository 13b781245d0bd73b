package trigger

import (
	"strconv"
	"time"

	apperrors "keymap-engine/internal/common/errors"
)

// Trigger level option flags packed into Entity.Flags
const (
	flagVibrate                  = 1
	flagLongPressDoubleVibration = 2
	flagScreenOffTrigger         = 4
	flagFromOtherApps            = 8
	flagShowToast                = 16
)

// Per key flags packed into KeyEntity.Flags. Consume defaults to true so
// the stored bit marks the exception.
const (
	keyFlagDoNotConsume       = 1
	keyFlagRequiresIME        = 2
	keyFlagDetectWithScanCode = 4
)

// Extra identifiers for the sparse option list
const (
	extraLongPressDelay   = "extra_long_press_delay"
	extraDoublePressDelay = "extra_double_press_delay"
	extraVibrateDuration  = "extra_vibration_duration"
	extraSequenceTimeout  = "extra_sequence_trigger_timeout"
)

// Key type tags
const (
	keyTypeKeyCode        = "key_code"
	keyTypeRawEvent       = "raw_event"
	keyTypeAssistant      = "assistant"
	keyTypeFingerprint    = "fingerprint"
	keyTypeFloatingButton = "floating_button"
)

// Extra is one optional trigger setting, stored as an id and a string
// value. Durations are stored as whole milliseconds.
type Extra struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// ButtonEntity is the stored snapshot of a floating button's appearance
type ButtonEntity struct {
	Label      string `json:"label"`
	LayoutName string `json:"layout_name"`
}

// KeyEntity is the stored form of one trigger key. Type selects the
// variant; fields that do not apply to the variant stay at their zero
// value and are omitted from the JSON.
type KeyEntity struct {
	Type      string `json:"type"`
	UID       string `json:"uid"`
	ClickType string `json:"click_type"`
	Flags     int    `json:"flags,omitempty"`

	KeyCode  int `json:"key_code,omitempty"`
	ScanCode int `json:"scan_code,omitempty"`

	Device           string `json:"device,omitempty"`
	DeviceDescriptor string `json:"device_descriptor,omitempty"`
	DeviceName       string `json:"device_name,omitempty"`
	DeviceBus        int    `json:"device_bus,omitempty"`
	DeviceVendor     int    `json:"device_vendor,omitempty"`
	DeviceProduct    int    `json:"device_product,omitempty"`

	AssistantType string        `json:"assistant_type,omitempty"`
	Gesture       string        `json:"gesture,omitempty"`
	ButtonUID     string        `json:"button_uid,omitempty"`
	Button        *ButtonEntity `json:"button,omitempty"`
}

// Entity is the stored form of a trigger
type Entity struct {
	Keys   []KeyEntity `json:"keys"`
	Mode   string      `json:"mode"`
	Flags  int         `json:"flags,omitempty"`
	Extras []Extra     `json:"extras,omitempty"`
}

const (
	deviceTagInternal = "internal"
	deviceTagExternal = "external"
)

// ToEntity converts a trigger to its stored form. Timing extras are only
// written when an override is set and the matching predicate holds, so
// stale overrides never survive a save.
func ToEntity(t Trigger) Entity {
	keys := make([]KeyEntity, 0, len(t.Keys))
	for _, k := range t.Keys {
		keys = append(keys, keyToEntity(k))
	}

	flags := 0
	if t.Vibrate {
		flags |= flagVibrate
	}
	if t.LongPressDoubleVibration && t.IsLongPressDoubleVibrationAllowed() {
		flags |= flagLongPressDoubleVibration
	}
	if t.ScreenOffTrigger && t.IsDetectingWhenScreenOffAllowed() {
		flags |= flagScreenOffTrigger
	}
	if t.FromOtherApps {
		flags |= flagFromOtherApps
	}
	if t.ShowToast {
		flags |= flagShowToast
	}

	var extras []Extra
	if t.LongPressDelay != nil && t.IsChangingLongPressDelayAllowed() {
		extras = append(extras, durationExtra(extraLongPressDelay, *t.LongPressDelay))
	}
	if t.DoublePressDelay != nil && t.IsChangingDoublePressDelayAllowed() {
		extras = append(extras, durationExtra(extraDoublePressDelay, *t.DoublePressDelay))
	}
	if t.VibrateDuration != nil && t.IsChangingVibrationDurationAllowed() {
		extras = append(extras, durationExtra(extraVibrateDuration, *t.VibrateDuration))
	}
	if t.SequenceTimeout != nil && t.IsChangingSequenceTimeoutAllowed() {
		extras = append(extras, durationExtra(extraSequenceTimeout, *t.SequenceTimeout))
	}

	return Entity{
		Keys:   keys,
		Mode:   t.Mode.String(),
		Flags:  flags,
		Extras: extras,
	}
}

func keyToEntity(k Key) KeyEntity {
	base := k.Base()
	e := KeyEntity{
		UID:       base.UID,
		ClickType: base.ClickType.String(),
	}
	switch k := k.(type) {
	case KeyCodeKey:
		e.Type = keyTypeKeyCode
		e.KeyCode = k.KeyCode
		e.ScanCode = k.ScanCode
		switch k.Device.Kind {
		case DeviceInternal:
			e.Device = deviceTagInternal
		case DeviceExternal:
			e.Device = deviceTagExternal
			e.DeviceDescriptor = k.Device.Descriptor
			e.DeviceName = k.Device.Name
		}
		if !k.ConsumeEvent {
			e.Flags |= keyFlagDoNotConsume
		}
		if k.RequiresIME {
			e.Flags |= keyFlagRequiresIME
		}
		if k.DetectWithScanCode {
			e.Flags |= keyFlagDetectWithScanCode
		}
	case RawEventKey:
		e.Type = keyTypeRawEvent
		e.KeyCode = k.KeyCode
		e.ScanCode = k.ScanCode
		e.DeviceName = k.Device.Name
		e.DeviceBus = k.Device.Bus
		e.DeviceVendor = k.Device.Vendor
		e.DeviceProduct = k.Device.Product
		if !k.ConsumeEvent {
			e.Flags |= keyFlagDoNotConsume
		}
		if k.DetectWithScanCode {
			e.Flags |= keyFlagDetectWithScanCode
		}
	case AssistantKey:
		e.Type = keyTypeAssistant
		e.AssistantType = string(k.Type)
	case FingerprintKey:
		e.Type = keyTypeFingerprint
		e.Gesture = string(k.Gesture)
	case FloatingButtonKey:
		e.Type = keyTypeFloatingButton
		e.ButtonUID = k.ButtonUID
		if k.Button != nil {
			e.Button = &ButtonEntity{Label: k.Button.Label, LayoutName: k.Button.LayoutName}
		}
	}
	return e
}

// FromEntity rebuilds a trigger from its stored form. A sequence or
// parallel tag is only honoured with more than one key; anything else
// falls back to undefined. Parallel triggers take their click type from
// the first key.
func FromEntity(e Entity) (Trigger, error) {
	var keys []Key
	for _, ke := range e.Keys {
		k, err := keyFromEntity(ke)
		if err != nil {
			return Trigger{}, err
		}
		keys = append(keys, k)
	}

	mode := Undefined()
	if len(keys) > 1 {
		switch e.Mode {
		case "sequence":
			mode = Sequence()
		case "parallel":
			mode = Parallel(keys[0].Base().ClickType)
		}
	}

	t := Trigger{
		Keys:                     keys,
		Mode:                     mode,
		Vibrate:                  e.Flags&flagVibrate != 0,
		LongPressDoubleVibration: e.Flags&flagLongPressDoubleVibration != 0,
		ScreenOffTrigger:         e.Flags&flagScreenOffTrigger != 0,
		FromOtherApps:            e.Flags&flagFromOtherApps != 0,
		ShowToast:                e.Flags&flagShowToast != 0,
	}

	for _, extra := range e.Extras {
		d, err := parseDurationExtra(extra)
		if err != nil {
			return Trigger{}, err
		}
		switch extra.ID {
		case extraLongPressDelay:
			t.LongPressDelay = &d
		case extraDoublePressDelay:
			t.DoublePressDelay = &d
		case extraVibrateDuration:
			t.VibrateDuration = &d
		case extraSequenceTimeout:
			t.SequenceTimeout = &d
		}
	}

	return t, nil
}

func keyFromEntity(e KeyEntity) (Key, error) {
	base := KeyBase{UID: e.UID, ClickType: ParseClickType(e.ClickType)}
	switch e.Type {
	case keyTypeKeyCode:
		device := AnyDevice()
		switch e.Device {
		case deviceTagInternal:
			device = InternalDevice()
		case deviceTagExternal:
			device = ExternalDevice(e.DeviceDescriptor, e.DeviceName)
		}
		return KeyCodeKey{
			KeyBase:            base,
			KeyCode:            e.KeyCode,
			ScanCode:           e.ScanCode,
			Device:             device,
			ConsumeEvent:       e.Flags&keyFlagDoNotConsume == 0,
			RequiresIME:        e.Flags&keyFlagRequiresIME != 0,
			DetectWithScanCode: e.Flags&keyFlagDetectWithScanCode != 0,
		}, nil
	case keyTypeRawEvent:
		return RawEventKey{
			KeyBase:  base,
			KeyCode:  e.KeyCode,
			ScanCode: e.ScanCode,
			Device: DeviceInfo{
				Name:    e.DeviceName,
				Bus:     e.DeviceBus,
				Vendor:  e.DeviceVendor,
				Product: e.DeviceProduct,
			},
			ConsumeEvent:       e.Flags&keyFlagDoNotConsume == 0,
			DetectWithScanCode: e.Flags&keyFlagDetectWithScanCode != 0,
		}, nil
	case keyTypeAssistant:
		return AssistantKey{KeyBase: base, Type: AssistantType(e.AssistantType)}, nil
	case keyTypeFingerprint:
		return FingerprintKey{KeyBase: base, Gesture: FingerprintGesture(e.Gesture)}, nil
	case keyTypeFloatingButton:
		k := FloatingButtonKey{KeyBase: base, ButtonUID: e.ButtonUID}
		if e.Button != nil {
			k.Button = &FloatingButtonInfo{Label: e.Button.Label, LayoutName: e.Button.LayoutName}
		}
		return k, nil
	default:
		return nil, apperrors.ValidationError("unknown trigger key type: " + e.Type)
	}
}

func durationExtra(id string, d time.Duration) Extra {
	return Extra{ID: id, Value: strconv.FormatInt(d.Milliseconds(), 10)}
}

func parseDurationExtra(e Extra) (time.Duration, error) {
	ms, err := strconv.ParseInt(e.Value, 10, 64)
	if err != nil {
		return 0, apperrors.ValidationError("invalid duration for " + e.ID + ": " + e.Value)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
