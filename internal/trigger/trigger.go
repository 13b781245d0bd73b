package trigger

import "time"

// Trigger is the condition side of a key map: an ordered list of keys, a
// firing mode and a set of behaviour options. Triggers are value types;
// every editing operation returns a new Trigger and leaves its input alone.
type Trigger struct {
	Keys []Key
	Mode Mode

	Vibrate                  bool
	LongPressDoubleVibration bool
	ScreenOffTrigger         bool
	FromOtherApps            bool
	ShowToast                bool

	// Timing overrides. Nil means the engine default applies.
	LongPressDelay   *time.Duration
	DoublePressDelay *time.Duration
	VibrateDuration  *time.Duration
	SequenceTimeout  *time.Duration
}

// New returns an empty trigger in undefined mode
func New() Trigger {
	return Trigger{Mode: Undefined()}
}

// copyKeys returns a fresh slice so edits never alias the input trigger
func copyKeys(keys []Key) []Key {
	out := make([]Key, len(keys))
	copy(out, keys)
	return out
}

func (t Trigger) hasKeyWithClickType(clickType ClickType) bool {
	for _, k := range t.Keys {
		if k.Base().ClickType == clickType {
			return true
		}
	}
	return false
}

// IsChangingLongPressDelayAllowed reports whether the long press delay
// override is meaningful for this trigger.
func (t Trigger) IsChangingLongPressDelayAllowed() bool {
	return t.hasKeyWithClickType(LongPress)
}

// IsChangingDoublePressDelayAllowed reports whether the double press delay
// override is meaningful for this trigger.
func (t Trigger) IsChangingDoublePressDelayAllowed() bool {
	return t.hasKeyWithClickType(DoublePress)
}

// IsChangingSequenceTimeoutAllowed reports whether the sequence timeout
// override is meaningful: more than one key pressed in sequence.
func (t Trigger) IsChangingSequenceTimeoutAllowed() bool {
	return len(t.Keys) > 1 && t.Mode.IsSequence()
}

// IsChangingVibrationDurationAllowed reports whether the vibrate duration
// override is meaningful: some vibration option is enabled.
func (t Trigger) IsChangingVibrationDurationAllowed() bool {
	return t.Vibrate || t.LongPressDoubleVibration
}

// IsLongPressDoubleVibrationAllowed reports whether the double vibration
// option applies: a lone long press key or a long press parallel trigger.
func (t Trigger) IsLongPressDoubleVibrationAllowed() bool {
	if len(t.Keys) == 0 || t.Keys[0].Base().ClickType != LongPress {
		return false
	}
	return len(t.Keys) == 1 || t.Mode.IsParallel()
}

// IsDetectingWhenScreenOffAllowed reports whether the trigger can be
// detected with the screen off: every key is a key-code key whose code is
// in the screen-off detectable set.
func (t Trigger) IsDetectingWhenScreenOffAllowed() bool {
	if len(t.Keys) == 0 {
		return false
	}
	for _, k := range t.Keys {
		kc, ok := k.(KeyCodeKey)
		if !ok || !CanDetectKeyWhenScreenOff(kc.KeyCode) {
			return false
		}
	}
	return true
}
