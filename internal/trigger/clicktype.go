// Package trigger implements the composite trigger model: the key variants
// that make up a trigger, the firing modes, the editing operations used by
// configuration surfaces, and the validator that repairs a trigger after
// every edit.
package trigger

// ClickType is the press semantic applied to a key or to a whole parallel
// trigger.
type ClickType int

const (
	ShortPress ClickType = iota
	LongPress
	DoublePress
)

// String returns the string representation of a click type
func (c ClickType) String() string {
	switch c {
	case ShortPress:
		return "short_press"
	case LongPress:
		return "long_press"
	case DoublePress:
		return "double_press"
	default:
		return "unknown"
	}
}

// ParseClickType converts a string to a ClickType, defaulting to ShortPress
func ParseClickType(s string) ClickType {
	switch s {
	case "long_press":
		return LongPress
	case "double_press":
		return DoublePress
	default:
		return ShortPress
	}
}
