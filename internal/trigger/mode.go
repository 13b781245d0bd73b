package trigger

// ModeKind discriminates the three firing modes
type ModeKind int

const (
	// ModeUndefined covers triggers with at most one key. The single key
	// carries its own click type.
	ModeUndefined ModeKind = iota
	// ModeSequence fires when the keys are pressed one after another in
	// order, each within the sequence timeout of the previous one.
	ModeSequence
	// ModeParallel fires when all keys are held down at the same time.
	// The mode carries a single click type shared by every key.
	ModeParallel
)

// Mode is the firing mode of a trigger. The ClickType field is only
// meaningful when Kind is ModeParallel; the constructors keep it zeroed
// otherwise so modes compare with ==.
type Mode struct {
	Kind      ModeKind
	ClickType ClickType
}

func Undefined() Mode {
	return Mode{Kind: ModeUndefined}
}

func Sequence() Mode {
	return Mode{Kind: ModeSequence}
}

func Parallel(clickType ClickType) Mode {
	return Mode{Kind: ModeParallel, ClickType: clickType}
}

func (m Mode) IsParallel() bool {
	return m.Kind == ModeParallel
}

func (m Mode) IsSequence() bool {
	return m.Kind == ModeSequence
}

func (m Mode) IsUndefined() bool {
	return m.Kind == ModeUndefined
}

// String returns the string representation of a mode kind
func (m Mode) String() string {
	switch m.Kind {
	case ModeSequence:
		return "sequence"
	case ModeParallel:
		return "parallel"
	default:
		return "undefined"
	}
}
