// Package keymaps owns the key map aggregate: a trigger paired with the
// action list it fires, the controller that executes firings, and the
// service that configuration surfaces edit key maps through.
package keymaps

import (
	"time"

	"github.com/lucsky/cuid"
)

// RepeatMode decides when a repeating action stops
type RepeatMode int

const (
	// RepeatLimitReached repeats until the repeat limit is hit or the
	// firing is superseded.
	RepeatLimitReached RepeatMode = iota
	// RepeatTriggerReleased repeats while the trigger is held. The
	// release signal comes from the detector, so this controller performs
	// the action once instead of starting a repeat job.
	RepeatTriggerReleased
	// RepeatTriggerPressedAgain repeats until the trigger fires a second
	// time.
	RepeatTriggerPressedAgain
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatTriggerReleased:
		return "trigger_released"
	case RepeatTriggerPressedAgain:
		return "trigger_pressed_again"
	default:
		return "limit_reached"
	}
}

func ParseRepeatMode(s string) RepeatMode {
	switch s {
	case "trigger_released":
		return RepeatTriggerReleased
	case "trigger_pressed_again":
		return RepeatTriggerPressedAgain
	default:
		return RepeatLimitReached
	}
}

// ActionData is the opaque payload handed to the performer. The engine
// never interprets it beyond equality.
type ActionData struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// Action is one entry in a key map's action list together with its
// execution options. Nil option pointers mean the engine default applies.
type Action struct {
	UID  string
	Data ActionData

	Repeat      bool
	RepeatMode  RepeatMode
	RepeatRate  *time.Duration
	RepeatLimit *int

	HoldDown         bool
	HoldDownDuration *time.Duration

	Multiplier            *int
	DelayBeforeNextAction *time.Duration
}

// NewAction returns an action with a fresh UID
func NewAction(data ActionData) Action {
	return Action{UID: cuid.New(), Data: data}
}
