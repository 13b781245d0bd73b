package app

import (
	"context"
	"time"

	"keymap-engine/internal/common/logging"
	"keymap-engine/internal/keymaps"
)

// LogDispatcher is the default execution adapter. It records every perform,
// vibration, and toast through the structured logger. Hosts that can inject
// input events or talk to hardware replace it with their own
// keymaps.Adapter.
type LogDispatcher struct {
	logger logging.Logger
}

func NewLogDispatcher(logger logging.Logger) *LogDispatcher {
	return &LogDispatcher{
		logger: logger.WithFields(logging.String("component", "dispatcher")),
	}
}

func (d *LogDispatcher) PerformAction(ctx context.Context, data keymaps.ActionData, eventType keymaps.InputEventType, repeatCount int) error {
	d.logger.Info("Performing action",
		logging.String("type", data.Type),
		logging.String("value", data.Value),
		logging.String("event", eventType.String()),
		logging.Int("repeat_count", repeatCount))
	return nil
}

// ErrorSnapshot reports every action as performable.
func (d *LogDispatcher) ErrorSnapshot() keymaps.ErrorSnapshot {
	return permissiveSnapshot{}
}

// ConstraintSnapshot reports every constraint as satisfied. Without sensors
// for the host's state there is nothing to evaluate constraints against.
func (d *LogDispatcher) ConstraintSnapshot() keymaps.ConstraintSnapshot {
	return permissiveSnapshot{}
}

func (d *LogDispatcher) Vibrate(duration time.Duration) {
	d.logger.Info("Vibrating", logging.Duration("duration", duration))
}

func (d *LogDispatcher) ShowTriggeredToast() {
	d.logger.Info("Showing triggered toast")
}

type permissiveSnapshot struct{}

func (permissiveSnapshot) ActionError(keymaps.ActionData) error     { return nil }
func (permissiveSnapshot) IsSatisfied(keymaps.ConstraintState) bool { return true }
