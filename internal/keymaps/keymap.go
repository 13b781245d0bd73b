package keymaps

import (
	"github.com/lucsky/cuid"

	"keymap-engine/internal/trigger"
)

// ConstraintMode decides how a key map's constraints combine
type ConstraintMode int

const (
	ConstraintModeAnd ConstraintMode = iota
	ConstraintModeOr
)

func (m ConstraintMode) String() string {
	if m == ConstraintModeOr {
		return "or"
	}
	return "and"
}

func ParseConstraintMode(s string) ConstraintMode {
	if s == "or" {
		return ConstraintModeOr
	}
	return ConstraintModeAnd
}

// Constraint is one opaque condition evaluated against a constraint
// snapshot at firing time.
type Constraint struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// ConstraintState is a key map's constraint list and combination mode
type ConstraintState struct {
	Constraints []Constraint
	Mode        ConstraintMode
}

// KeyMap pairs a trigger with the actions it fires
type KeyMap struct {
	UID         string
	Enabled     bool
	Trigger     trigger.Trigger
	Actions     []Action
	Constraints ConstraintState
}

// New returns an enabled key map with an empty trigger and a fresh UID
func New() KeyMap {
	return KeyMap{
		UID:     cuid.New(),
		Enabled: true,
		Trigger: trigger.New(),
	}
}
