package trigger

import (
	"time"

	"github.com/lucsky/cuid"

	apperrors "keymap-engine/internal/common/errors"
)

// The editing operations below are what configuration surfaces call to
// build a trigger. Each one returns a new Trigger and, except for MoveKey,
// finishes by running Validate so callers always hold a consistent value.

// clickTypeForAdd picks the click type a newly recorded key starts with:
// the shared click type when the trigger is already parallel, otherwise a
// short press.
func clickTypeForAdd(m Mode) ClickType {
	if m.IsParallel() {
		return m.ClickType
	}
	return ShortPress
}

// shouldDetectWithScanCode reports whether a new key-code key needs scan
// code detection to stay distinguishable: some other key on the same
// device reports the same key code from a different physical key.
func shouldDetectWithScanCode(keyCode, scanCode int, device DeviceScope, keys, siblings []Key) bool {
	check := func(list []Key) bool {
		for _, k := range list {
			kc, ok := k.(KeyCodeKey)
			if !ok {
				continue
			}
			if kc.KeyCode == keyCode && kc.ScanCode != scanCode && kc.Device.SameDevice(device) {
				return true
			}
		}
		return false
	}
	return check(keys) || check(siblings)
}

// AddKeyCodeKey records a translated key event into the trigger. Siblings
// are the keys of every other configured trigger and only inform the scan
// code detection default.
func AddKeyCodeKey(t Trigger, keyCode, scanCode int, device DeviceScope, requiresIME bool, siblings []Key) Trigger {
	clickType := clickTypeForAdd(t.Mode)
	// Power buttons suppress the down event, so a short press can never
	// be observed.
	if IsPowerKey(keyCode, scanCode) {
		clickType = LongPress
	}

	containsKey := false
	for _, k := range t.Keys {
		if kc, ok := k.(KeyCodeKey); ok && kc.KeyCode == keyCode && kc.Device.SameDevice(device) {
			containsKey = true
			break
		}
	}

	newKey := KeyCodeKey{
		KeyBase:            KeyBase{UID: cuid.New(), ClickType: clickType},
		KeyCode:            keyCode,
		ScanCode:           scanCode,
		Device:             device,
		ConsumeEvent:       !IsModifierKey(keyCode),
		RequiresIME:        requiresIME,
		DetectWithScanCode: shouldDetectWithScanCode(keyCode, scanCode, device, t.Keys, siblings),
	}

	// Translated and raw keys cannot coexist: they would race for the
	// same physical events.
	keys := make([]Key, 0, len(t.Keys)+1)
	for _, k := range t.Keys {
		if _, ok := k.(RawEventKey); ok {
			continue
		}
		keys = append(keys, k)
	}
	keys = append(keys, newKey)

	mode := t.Mode
	switch {
	case !t.Mode.IsSequence() && containsKey:
		mode = Sequence()
	case len(keys) <= 1:
		mode = Undefined()
	case len(keys) == 2 && !containsKey:
		mode = Parallel(clickType)
	default:
		if IsPowerKey(keyCode, scanCode) && t.Mode.IsParallel() {
			mode = Parallel(LongPress)
		}
	}

	t.Keys = keys
	t.Mode = mode
	return Validate(t)
}

// AddRawEventKey records an untranslated evdev event into the trigger.
func AddRawEventKey(t Trigger, keyCode, scanCode int, device DeviceInfo, siblings []Key) Trigger {
	clickType := clickTypeForAdd(t.Mode)
	if IsPowerKey(keyCode, scanCode) {
		clickType = LongPress
	}

	containsKey := false
	for _, k := range t.Keys {
		if rk, ok := k.(RawEventKey); ok && rk.KeyCode == keyCode && rk.Device == device {
			containsKey = true
			break
		}
	}

	detectWithScanCode := false
	check := func(list []Key) {
		for _, k := range list {
			if rk, ok := k.(RawEventKey); ok && rk.KeyCode == keyCode && rk.ScanCode != scanCode && rk.Device == device {
				detectWithScanCode = true
			}
		}
	}
	check(t.Keys)
	check(siblings)

	newKey := RawEventKey{
		KeyBase:            KeyBase{UID: cuid.New(), ClickType: clickType},
		KeyCode:            keyCode,
		ScanCode:           scanCode,
		Device:             device,
		ConsumeEvent:       true,
		DetectWithScanCode: detectWithScanCode,
	}

	keys := make([]Key, 0, len(t.Keys)+1)
	for _, k := range t.Keys {
		if _, ok := k.(KeyCodeKey); ok {
			continue
		}
		keys = append(keys, k)
	}
	keys = append(keys, newKey)

	mode := t.Mode
	switch {
	case !t.Mode.IsSequence() && containsKey:
		mode = Sequence()
	case len(keys) <= 1:
		mode = Undefined()
	case len(keys) == 2 && !containsKey:
		mode = Parallel(clickType)
	default:
		if IsPowerKey(keyCode, scanCode) && t.Mode.IsParallel() {
			mode = Parallel(LongPress)
		}
	}

	t.Keys = keys
	t.Mode = mode
	return Validate(t)
}

// AddAssistantKey records an assistant activation into the trigger.
// Assistant activations only support a short press, so every key in the
// trigger drops to a short press alongside it.
func AddAssistantKey(t Trigger, assistantType AssistantType) Trigger {
	containsKey := false
	for _, k := range t.Keys {
		if _, ok := k.(AssistantKey); ok {
			containsKey = true
			break
		}
	}

	newKey := AssistantKey{
		KeyBase: KeyBase{UID: cuid.New(), ClickType: ShortPress},
		Type:    assistantType,
	}

	keys := make([]Key, 0, len(t.Keys)+1)
	for _, k := range t.Keys {
		keys = append(keys, k.withClickType(ShortPress))
	}
	keys = append(keys, newKey)

	mode := t.Mode
	switch {
	case containsKey && !t.Mode.IsSequence():
		mode = Sequence()
	case len(keys) <= 1:
		mode = Undefined()
	case !containsKey:
		mode = Parallel(ShortPress)
	}

	t.Keys = keys
	t.Mode = mode
	return Validate(t)
}

// AddFingerprintKey records a fingerprint sensor gesture into the trigger
func AddFingerprintKey(t Trigger, gesture FingerprintGesture) Trigger {
	containsKey := false
	for _, k := range t.Keys {
		if _, ok := k.(FingerprintKey); ok {
			containsKey = true
			break
		}
	}

	newKey := FingerprintKey{
		KeyBase: KeyBase{UID: cuid.New(), ClickType: ShortPress},
		Gesture: gesture,
	}

	keys := make([]Key, 0, len(t.Keys)+1)
	for _, k := range t.Keys {
		keys = append(keys, k.withClickType(ShortPress))
	}
	keys = append(keys, newKey)

	mode := t.Mode
	switch {
	case containsKey && !t.Mode.IsSequence():
		mode = Sequence()
	case len(keys) <= 1:
		mode = Undefined()
	case !containsKey:
		mode = Parallel(ShortPress)
	}

	t.Keys = keys
	t.Mode = mode
	return Validate(t)
}

// AddFloatingButtonKey records a tap on an overlay button into the trigger
func AddFloatingButtonKey(t Trigger, buttonUID string, button *FloatingButtonInfo) Trigger {
	clickType := clickTypeForAdd(t.Mode)

	containsKey := false
	for _, k := range t.Keys {
		if fb, ok := k.(FloatingButtonKey); ok && fb.ButtonUID == buttonUID {
			containsKey = true
			break
		}
	}

	newKey := FloatingButtonKey{
		KeyBase:   KeyBase{UID: cuid.New(), ClickType: clickType},
		ButtonUID: buttonUID,
		Button:    button,
	}

	keys := append(copyKeys(t.Keys), newKey)

	mode := t.Mode
	switch {
	case !t.Mode.IsSequence() && containsKey:
		mode = Sequence()
	case len(keys) <= 1:
		mode = Undefined()
	case len(keys) == 2 && !containsKey:
		mode = Parallel(clickType)
	}

	t.Keys = keys
	t.Mode = mode
	return Validate(t)
}

// RemoveKey deletes the key with the given UID. Removing an unknown UID is
// a no-op.
func RemoveKey(t Trigger, uid string) Trigger {
	keys := make([]Key, 0, len(t.Keys))
	for _, k := range t.Keys {
		if k.Base().UID != uid {
			keys = append(keys, k)
		}
	}
	t.Keys = keys
	if len(keys) <= 1 {
		t.Mode = Undefined()
	}
	return Validate(t)
}

// MoveKey reorders a key within the trigger. It is the only operation that
// skips validation: reordering cannot break any invariant and validating
// could reorder or drop keys the user just arranged.
func MoveKey(t Trigger, fromIndex, toIndex int) Trigger {
	if fromIndex < 0 || fromIndex >= len(t.Keys) || toIndex < 0 || toIndex >= len(t.Keys) {
		return t
	}
	keys := copyKeys(t.Keys)
	k := keys[fromIndex]
	keys = append(keys[:fromIndex], keys[fromIndex+1:]...)
	rest := append(keys[:toIndex:toIndex], k)
	t.Keys = append(rest, keys[toIndex:]...)
	return t
}

// SetParallelMode switches the trigger to parallel mode. Parallel keys
// share one click type and press together, so every key is reset to a
// short press and logical duplicates collapse to their first occurrence.
func SetParallelMode(t Trigger) Trigger {
	if t.Mode.IsParallel() {
		return t
	}
	if len(t.Keys) <= 1 {
		t.Mode = Undefined()
		return t
	}

	var keys []Key
	seen := make(map[string]bool)
	for _, k := range t.Keys {
		k = k.withClickType(ShortPress)
		bucket := conflictBucket(k)
		if seen[bucket] {
			continue
		}
		seen[bucket] = true
		keys = append(keys, k)
	}
	t.Keys = keys
	if len(keys) <= 1 {
		t.Mode = Undefined()
	} else {
		t.Mode = Parallel(ShortPress)
	}
	return t
}

// SetSequenceMode switches the trigger to sequence mode
func SetSequenceMode(t Trigger) Trigger {
	if len(t.Keys) <= 1 {
		return t
	}
	t.Mode = Sequence()
	return Validate(t)
}

// SetUndefinedMode switches a single key trigger back to undefined mode
func SetUndefinedMode(t Trigger) Trigger {
	if len(t.Keys) > 1 {
		return t
	}
	t.Mode = Undefined()
	return Validate(t)
}

// In a sequence trigger the click type belongs to each key, so the
// trigger-wide setters leave sequence triggers alone.
func setTriggerClickType(t Trigger, clickType ClickType) Trigger {
	if t.Mode.IsSequence() {
		return t
	}
	for _, k := range t.Keys {
		if clickType == LongPress && !k.AllowsLongPress() {
			return t
		}
	}
	keys := make([]Key, 0, len(t.Keys))
	for _, k := range t.Keys {
		keys = append(keys, k.withClickType(clickType))
	}
	t.Keys = keys
	if len(keys) <= 1 {
		t.Mode = Undefined()
	} else {
		t.Mode = Parallel(clickType)
	}
	return Validate(t)
}

// SetShortPress applies a short press to every key. No-op for sequence
// triggers.
func SetShortPress(t Trigger) Trigger {
	return setTriggerClickType(t, ShortPress)
}

// SetLongPress applies a long press to every key. No-op for sequence
// triggers and when any key cannot observe a long press.
func SetLongPress(t Trigger) Trigger {
	return setTriggerClickType(t, LongPress)
}

// SetDoublePress applies a double press to the key of an undefined
// trigger. A double press needs exclusive ownership of the key's press
// window, so multi-key modes are left alone, as are keys that cannot
// observe a double press.
func SetDoublePress(t Trigger) Trigger {
	if !t.Mode.IsUndefined() {
		return t
	}
	for _, k := range t.Keys {
		if !k.AllowsDoublePress() {
			return t
		}
	}
	keys := make([]Key, 0, len(t.Keys))
	for _, k := range t.Keys {
		keys = append(keys, k.withClickType(DoublePress))
	}
	t.Keys = keys
	return Validate(t)
}

func findKey(t Trigger, uid string) (int, Key, error) {
	for i, k := range t.Keys {
		if k.Base().UID == uid {
			return i, k, nil
		}
	}
	return 0, nil, apperrors.NotFoundError("trigger key").WithContext("uid", uid)
}

// SetKeyClickType changes one key's click type. In parallel mode the
// shared click type moves with it.
func SetKeyClickType(t Trigger, uid string, clickType ClickType) (Trigger, error) {
	i, k, err := findKey(t, uid)
	if err != nil {
		return t, err
	}
	if clickType == LongPress && !k.AllowsLongPress() {
		return t, apperrors.InvalidArgumentError("key does not support a long press")
	}
	if clickType == DoublePress && !k.AllowsDoublePress() {
		return t, apperrors.InvalidArgumentError("key does not support a double press")
	}
	keys := copyKeys(t.Keys)
	keys[i] = k.withClickType(clickType)
	t.Keys = keys
	if t.Mode.IsParallel() {
		t.Mode = Parallel(clickType)
	}
	return Validate(t), nil
}

// SetKeyDevice changes the device scope of a key-code key
func SetKeyDevice(t Trigger, uid string, device DeviceScope) (Trigger, error) {
	i, k, err := findKey(t, uid)
	if err != nil {
		return t, err
	}
	kc, ok := k.(KeyCodeKey)
	if !ok {
		return t, apperrors.InvalidArgumentError("only key code keys have a device scope")
	}
	kc.Device = device
	keys := copyKeys(t.Keys)
	keys[i] = kc
	t.Keys = keys
	return Validate(t), nil
}

// SetKeyConsumeEvent controls whether the key's event is swallowed or
// passed through to the foreground app.
func SetKeyConsumeEvent(t Trigger, uid string, consume bool) (Trigger, error) {
	i, k, err := findKey(t, uid)
	if err != nil {
		return t, err
	}
	keys := copyKeys(t.Keys)
	switch kc := k.(type) {
	case KeyCodeKey:
		kc.ConsumeEvent = consume
		keys[i] = kc
	case RawEventKey:
		kc.ConsumeEvent = consume
		keys[i] = kc
	default:
		return t, apperrors.InvalidArgumentError("key does not produce a consumable event")
	}
	t.Keys = keys
	return Validate(t), nil
}

// SetAssistantType changes which assistant an assistant key listens for
func SetAssistantType(t Trigger, uid string, assistantType AssistantType) (Trigger, error) {
	i, k, err := findKey(t, uid)
	if err != nil {
		return t, err
	}
	ak, ok := k.(AssistantKey)
	if !ok {
		return t, apperrors.InvalidArgumentError("key is not an assistant key")
	}
	ak.Type = assistantType
	keys := copyKeys(t.Keys)
	keys[i] = ak
	t.Keys = keys
	return Validate(t), nil
}

// SetFingerprintGesture changes the gesture of a fingerprint key
func SetFingerprintGesture(t Trigger, uid string, gesture FingerprintGesture) (Trigger, error) {
	i, k, err := findKey(t, uid)
	if err != nil {
		return t, err
	}
	fk, ok := k.(FingerprintKey)
	if !ok {
		return t, apperrors.InvalidArgumentError("key is not a fingerprint key")
	}
	fk.Gesture = gesture
	keys := copyKeys(t.Keys)
	keys[i] = fk
	t.Keys = keys
	return Validate(t), nil
}

// SetScanCodeDetection switches a key between key code and scan code
// detection. Changing the effective code can collide with another key, so
// the result is validated.
func SetScanCodeDetection(t Trigger, uid string, enabled bool) (Trigger, error) {
	i, k, err := findKey(t, uid)
	if err != nil {
		return t, err
	}
	keys := copyKeys(t.Keys)
	switch kc := k.(type) {
	case KeyCodeKey:
		kc.DetectWithScanCode = enabled
		keys[i] = kc
	case RawEventKey:
		kc.DetectWithScanCode = enabled
		keys[i] = kc
	default:
		return t, apperrors.InvalidArgumentError("key has no scan code")
	}
	t.Keys = keys
	return Validate(t), nil
}

// SetVibrate toggles a vibration when the trigger fires
func SetVibrate(t Trigger, enabled bool) Trigger {
	t.Vibrate = enabled
	return t
}

// SetLongPressDoubleVibration toggles the second confirmation vibration
// for long press triggers.
func SetLongPressDoubleVibration(t Trigger, enabled bool) Trigger {
	t.LongPressDoubleVibration = enabled
	return t
}

// SetScreenOffTrigger toggles detection while the screen is off
func SetScreenOffTrigger(t Trigger, enabled bool) Trigger {
	t.ScreenOffTrigger = enabled
	return t
}

// SetTriggerFromOtherApps toggles firing via an intent from another app
func SetTriggerFromOtherApps(t Trigger, enabled bool) Trigger {
	t.FromOtherApps = enabled
	return t
}

// SetShowToast toggles a toast notification when the trigger fires
func SetShowToast(t Trigger, enabled bool) Trigger {
	t.ShowToast = enabled
	return t
}

// The delay setters store nil when the value equals the engine default so
// later default changes flow through to the trigger.

func SetLongPressDelay(t Trigger, delay, defaultDelay time.Duration) Trigger {
	t.LongPressDelay = overrideOf(delay, defaultDelay)
	return t
}

func SetDoublePressDelay(t Trigger, delay, defaultDelay time.Duration) Trigger {
	t.DoublePressDelay = overrideOf(delay, defaultDelay)
	return t
}

func SetVibrateDuration(t Trigger, duration, defaultDuration time.Duration) Trigger {
	t.VibrateDuration = overrideOf(duration, defaultDuration)
	return t
}

func SetSequenceTimeout(t Trigger, timeout, defaultTimeout time.Duration) Trigger {
	t.SequenceTimeout = overrideOf(timeout, defaultTimeout)
	return t
}

func overrideOf(value, defaultValue time.Duration) *time.Duration {
	if value == defaultValue {
		return nil
	}
	return &value
}
