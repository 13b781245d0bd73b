package keymaps

import (
	"context"
	"sync"
	"time"

	"keymap-engine/internal/common/logging"
)

// InputEventType is the event shape a single perform call produces
type InputEventType int

const (
	EventDownUp InputEventType = iota
	EventDown
	EventUp
)

func (e InputEventType) String() string {
	switch e {
	case EventDown:
		return "down"
	case EventUp:
		return "up"
	default:
		return "down_up"
	}
}

// ErrorSnapshot is a point-in-time view of which actions can currently be
// performed. One snapshot is captured per firing.
type ErrorSnapshot interface {
	ActionError(data ActionData) error
}

// ConstraintSnapshot is a point-in-time view the controller gates a firing
// against.
type ConstraintSnapshot interface {
	IsSatisfied(state ConstraintState) bool
}

// Adapter is everything the controller needs from the host platform.
// Perform failures are per action and non-fatal.
type Adapter interface {
	PerformAction(ctx context.Context, data ActionData, eventType InputEventType, repeatCount int) error
	ErrorSnapshot() ErrorSnapshot
	ConstraintSnapshot() ConstraintSnapshot
	Vibrate(duration time.Duration)
	ShowTriggeredToast()
}

// Defaults supplies the live default option values. Implementations must
// return the current value on every call.
type Defaults interface {
	LongPressDelay() time.Duration
	DoublePressDelay() time.Duration
	SequenceTimeout() time.Duration
	VibrateDuration() time.Duration
	RepeatRate() time.Duration
	HoldDownDuration() time.Duration
	ForceVibrate() bool
}

type repeatJob struct {
	actionUID string
	ctx       context.Context
	cancel    context.CancelFunc
}

// performJob is one firing's action list run. Repeat jobs it starts stay
// in pending until the list completes; a firing that supersedes it cancels
// both the job and its pending repeats.
type performJob struct {
	cancel  context.CancelFunc
	pending []*repeatJob
}

// Controller executes key map firings. OnDetected runs the action list for
// a key map and supersedes any earlier firing of the same key map; Reset
// tears everything down and releases held keys.
type Controller struct {
	adapter  Adapter
	defaults Defaults
	logger   logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	repeatJobs  map[string][]*repeatJob
	performJobs map[string]*performJob
	heldDown    []Action
}

func NewController(adapter Adapter, defaults Defaults, logger logging.Logger) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		adapter:     adapter,
		defaults:    defaults,
		logger:      logger.WithFields(logging.String("component", "controller")),
		ctx:         ctx,
		cancel:      cancel,
		repeatJobs:  make(map[string][]*repeatJob),
		performJobs: make(map[string]*performJob),
	}
}

// OnDetected handles a "trigger fired" signal for the given key map. It
// returns once the firing's jobs are started; the action list runs
// asynchronously.
func (c *Controller) OnDetected(km KeyMap) {
	if !km.Enabled || len(km.Actions) == 0 {
		return
	}

	if len(km.Constraints.Constraints) > 0 {
		if !c.adapter.ConstraintSnapshot().IsSatisfied(km.Constraints) {
			return
		}
	}

	c.mu.Lock()
	// Re-firing supersedes the previous firing of this key map only:
	// cancel its repeat jobs, its perform job, and any repeats the
	// perform job started but had not finished committing.
	wasRepeating := make(map[string]bool)
	for _, j := range c.repeatJobs[km.UID] {
		wasRepeating[j.actionUID] = true
		j.cancel()
	}
	delete(c.repeatJobs, km.UID)

	if prev, ok := c.performJobs[km.UID]; ok {
		prev.cancel()
		for _, j := range prev.pending {
			j.cancel()
		}
	}

	ctx, cancel := context.WithCancel(c.ctx)
	pj := &performJob{cancel: cancel}
	c.performJobs[km.UID] = pj
	c.mu.Unlock()

	go c.runActionList(ctx, pj, km, wasRepeating)

	if km.Trigger.Vibrate || c.defaults.ForceVibrate() {
		duration := c.defaults.VibrateDuration()
		if km.Trigger.VibrateDuration != nil {
			duration = *km.Trigger.VibrateDuration
		}
		c.adapter.Vibrate(duration)
	}

	if km.Trigger.ShowToast {
		c.adapter.ShowTriggeredToast()
	}
}

func (c *Controller) runActionList(ctx context.Context, pj *performJob, km KeyMap, wasRepeating map[string]bool) {
	snapshot := c.adapter.ErrorSnapshot()

	for _, action := range km.Actions {
		if ctx.Err() != nil {
			return
		}

		if err := snapshot.ActionError(action.Data); err != nil {
			c.logger.Debug("skipping invalid action",
				logging.String("key_map", km.UID),
				logging.String("action", action.UID),
				logging.Err(err))
			continue
		}

		if action.Repeat && action.RepeatMode != RepeatTriggerReleased {
			// A press-again action that was repeating when this firing
			// arrived toggles off instead of restarting.
			toggledOff := action.RepeatMode == RepeatTriggerPressedAgain && wasRepeating[action.UID]
			if !toggledOff {
				c.startRepeat(pj, action)
			}
		} else {
			c.performOnce(ctx, action)
		}

		if !sleepCtx(ctx, durationOr(action.DelayBeforeNextAction, 0)) {
			return
		}
	}

	c.commitRepeats(km.UID, pj, ctx)
}

// commitRepeats publishes the repeat jobs this firing started, so the next
// firing of the key map can cancel or toggle them.
func (c *Controller) commitRepeats(kmUID string, pj *performJob, ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil || c.performJobs[kmUID] != pj {
		return
	}
	if len(pj.pending) > 0 {
		c.repeatJobs[kmUID] = pj.pending
	}
	pj.pending = nil
}

// performOnce fires a non-repeating action. Hold-down actions toggle: the
// first firing sends DOWN and marks the action held, the next sends UP and
// unmarks it.
func (c *Controller) performOnce(ctx context.Context, action Action) {
	c.mu.Lock()
	held := c.isHeldLocked(action.UID)

	var event InputEventType
	switch {
	case action.HoldDown && !held:
		event = EventDown
		c.heldDown = append(c.heldDown, action)
	case held:
		event = EventUp
		c.removeHeldLocked(action.UID)
	default:
		event = EventDownUp
	}
	c.mu.Unlock()

	c.perform(ctx, action, event, 0)
}

// startRepeat launches a repeat job. Repeat jobs keep running after the
// action list finishes, until the key map re-fires or Reset runs.
func (c *Controller) startRepeat(pj *performJob, action Action) {
	ctx, cancel := context.WithCancel(c.ctx)
	c.mu.Lock()
	pj.pending = append(pj.pending, &repeatJob{actionUID: action.UID, ctx: ctx, cancel: cancel})
	c.mu.Unlock()

	go c.runRepeat(ctx, action)
}

func (c *Controller) runRepeat(ctx context.Context, action Action) {
	repeatRate := durationOr(action.RepeatRate, c.defaults.RepeatRate())
	holdDownDuration := durationOr(action.HoldDownDuration, c.defaults.HoldDownDuration())

	repeatCount := 0
	for {
		event := EventDownUp
		if action.HoldDown {
			event = EventDown
		}
		c.perform(ctx, action, event, repeatCount)

		if action.HoldDown {
			if !sleepCtx(ctx, holdDownDuration) {
				return
			}
			c.perform(ctx, action, EventUp, repeatCount)
		}

		repeatCount++

		// The limit counts repeats after the initial perform.
		if action.RepeatLimit != nil && repeatCount >= *action.RepeatLimit+1 {
			return
		}

		if !sleepCtx(ctx, repeatRate) {
			return
		}
	}
}

func (c *Controller) perform(ctx context.Context, action Action, event InputEventType, repeatCount int) {
	times := 1
	if action.Multiplier != nil {
		times = *action.Multiplier
	}
	for i := 0; i < times; i++ {
		if ctx.Err() != nil {
			return
		}
		if err := c.adapter.PerformAction(ctx, action.Data, event, repeatCount); err != nil {
			c.logger.Warn("action failed",
				logging.String("action", action.UID),
				logging.String("event", event.String()),
				logging.Err(err))
		}
	}
}

// Reset cancels every running job and synchronously releases every
// held-down action. The release step runs outside any cancellable context:
// a key left stuck down is a correctness bug, not a recoverable error.
// Reset is safe to call at any time and is idempotent.
func (c *Controller) Reset() {
	c.mu.Lock()
	for _, jobs := range c.repeatJobs {
		for _, j := range jobs {
			j.cancel()
		}
	}
	c.repeatJobs = make(map[string][]*repeatJob)

	for _, pj := range c.performJobs {
		pj.cancel()
		for _, j := range pj.pending {
			j.cancel()
		}
	}
	c.performJobs = make(map[string]*performJob)

	held := c.heldDown
	c.heldDown = nil
	c.mu.Unlock()

	for _, action := range held {
		times := 1
		if action.Multiplier != nil {
			times = *action.Multiplier
		}
		for i := 0; i < times; i++ {
			if err := c.adapter.PerformAction(context.Background(), action.Data, EventUp, 0); err != nil {
				c.logger.Error("failed to release held action", err,
					logging.String("action", action.UID))
			}
		}
	}
}

// Close stops the controller for good: no job started afterwards will run
func (c *Controller) Close() {
	c.cancel()
	c.Reset()
}

func (c *Controller) isHeldLocked(actionUID string) bool {
	for _, a := range c.heldDown {
		if a.UID == actionUID {
			return true
		}
	}
	return false
}

func (c *Controller) removeHeldLocked(actionUID string) {
	for i, a := range c.heldDown {
		if a.UID == actionUID {
			c.heldDown = append(c.heldDown[:i], c.heldDown[i+1:]...)
			return
		}
	}
}

// sleepCtx waits for d and reports whether the wait completed before ctx
// was cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func durationOr(d *time.Duration, fallback time.Duration) time.Duration {
	if d != nil {
		return *d
	}
	return fallback
}
