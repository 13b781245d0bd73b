package trigger

// Android key codes for the keys the trigger model treats specially.
const (
	KeyCodeVolumeUp    = 24
	KeyCodeVolumeDown  = 25
	KeyCodePower       = 26
	KeyCodeCamera      = 27
	KeyCodeAltLeft     = 57
	KeyCodeAltRight    = 58
	KeyCodeShiftLeft   = 59
	KeyCodeShiftRight  = 60
	KeyCodeSym         = 63
	KeyCodeHeadsetHook = 79
	KeyCodeFocus       = 80
	KeyCodeMenu        = 82
	KeyCodeSearch      = 84
	KeyCodeCtrlLeft    = 113
	KeyCodeCtrlRight   = 114
	KeyCodeMetaLeft    = 117
	KeyCodeMetaRight   = 118
	KeyCodeFunction    = 119
	KeyCodeTVPower     = 177
	KeyCodeAssist      = 219
)

// Linux event scan codes seen on raw input devices.
const (
	ScanCodeVolumeDown = 114
	ScanCodeVolumeUp   = 115
	ScanCodePower      = 116
	ScanCodePower2     = 356
)

var screenOffKeyCodes = map[int]bool{
	KeyCodeVolumeUp:    true,
	KeyCodeVolumeDown:  true,
	KeyCodePower:       true,
	KeyCodeCamera:      true,
	KeyCodeHeadsetHook: true,
	KeyCodeFocus:       true,
	KeyCodeMenu:        true,
	KeyCodeSearch:      true,
	KeyCodeAssist:      true,
	KeyCodeTVPower:     true,
}

var modifierKeyCodes = map[int]bool{
	KeyCodeAltLeft:    true,
	KeyCodeAltRight:   true,
	KeyCodeShiftLeft:  true,
	KeyCodeShiftRight: true,
	KeyCodeSym:        true,
	KeyCodeCtrlLeft:   true,
	KeyCodeCtrlRight:  true,
	KeyCodeMetaLeft:   true,
	KeyCodeMetaRight:  true,
	KeyCodeFunction:   true,
}

// CanDetectKeyWhenScreenOff reports whether the key code can be picked up
// while the screen is off.
func CanDetectKeyWhenScreenOff(keyCode int) bool {
	return screenOffKeyCodes[keyCode]
}

// IsModifierKey reports whether the key code is a modifier. Modifier keys
// default to not consuming their events so the modifier still reaches the
// foreground app.
func IsModifierKey(keyCode int) bool {
	return modifierKeyCodes[keyCode]
}

// IsPowerKey reports whether the key or scan code identifies a power
// button. Power buttons cannot be detected on the down event, so they
// default to a long press.
func IsPowerKey(keyCode, scanCode int) bool {
	if keyCode == KeyCodePower || keyCode == KeyCodeTVPower {
		return true
	}
	return scanCode == ScanCodePower || scanCode == ScanCodePower2
}
