package keymaps

import (
	"encoding/json"
	"time"

	apperrors "keymap-engine/internal/common/errors"
)

// ActionEntity is the stored form of one action. Durations are whole
// milliseconds.
type ActionEntity struct {
	UID   string `json:"uid"`
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`

	Repeat      bool   `json:"repeat,omitempty"`
	RepeatMode  string `json:"repeat_mode,omitempty"`
	RepeatRate  *int64 `json:"repeat_rate,omitempty"`
	RepeatLimit *int   `json:"repeat_limit,omitempty"`

	HoldDown         bool   `json:"hold_down,omitempty"`
	HoldDownDuration *int64 `json:"hold_down_duration,omitempty"`

	Multiplier            *int   `json:"multiplier,omitempty"`
	DelayBeforeNextAction *int64 `json:"delay_before_next_action,omitempty"`
}

type constraintStateEntity struct {
	Mode        string       `json:"mode,omitempty"`
	Constraints []Constraint `json:"constraints,omitempty"`
}

// EncodeActions serializes an action list for storage
func EncodeActions(actions []Action) ([]byte, error) {
	entities := make([]ActionEntity, 0, len(actions))
	for _, a := range actions {
		e := ActionEntity{
			UID:              a.UID,
			Type:             a.Data.Type,
			Value:            a.Data.Value,
			Repeat:           a.Repeat,
			RepeatLimit:      a.RepeatLimit,
			HoldDown:         a.HoldDown,
			Multiplier:       a.Multiplier,
			RepeatRate:       millisOf(a.RepeatRate),
			HoldDownDuration: millisOf(a.HoldDownDuration),
		}
		if a.Repeat {
			e.RepeatMode = a.RepeatMode.String()
		}
		e.DelayBeforeNextAction = millisOf(a.DelayBeforeNextAction)
		entities = append(entities, e)
	}
	data, err := json.Marshal(entities)
	if err != nil {
		return nil, apperrors.InternalError("failed to encode actions", err)
	}
	return data, nil
}

// DecodeActions rebuilds an action list from its stored form
func DecodeActions(data []byte) ([]Action, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var entities []ActionEntity
	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, apperrors.ValidationError("malformed action list: " + err.Error())
	}
	return ActionsFromEntities(entities), nil
}

// ActionsFromEntities converts entity records back to domain actions
func ActionsFromEntities(entities []ActionEntity) []Action {
	var actions []Action
	for _, e := range entities {
		actions = append(actions, Action{
			UID:                   e.UID,
			Data:                  ActionData{Type: e.Type, Value: e.Value},
			Repeat:                e.Repeat,
			RepeatMode:            ParseRepeatMode(e.RepeatMode),
			RepeatRate:            durationOfMillis(e.RepeatRate),
			RepeatLimit:           e.RepeatLimit,
			HoldDown:              e.HoldDown,
			HoldDownDuration:      durationOfMillis(e.HoldDownDuration),
			Multiplier:            e.Multiplier,
			DelayBeforeNextAction: durationOfMillis(e.DelayBeforeNextAction),
		})
	}
	return actions
}

// EncodeConstraints serializes a constraint state for storage
func EncodeConstraints(state ConstraintState) ([]byte, error) {
	if len(state.Constraints) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(constraintStateEntity{
		Mode:        state.Mode.String(),
		Constraints: state.Constraints,
	})
	if err != nil {
		return nil, apperrors.InternalError("failed to encode constraints", err)
	}
	return data, nil
}

// DecodeConstraints rebuilds a constraint state from its stored form
func DecodeConstraints(data []byte) (ConstraintState, error) {
	if len(data) == 0 {
		return ConstraintState{}, nil
	}
	var entity constraintStateEntity
	if err := json.Unmarshal(data, &entity); err != nil {
		return ConstraintState{}, apperrors.ValidationError("malformed constraint state: " + err.Error())
	}
	return ConstraintState{
		Mode:        ParseConstraintMode(entity.Mode),
		Constraints: entity.Constraints,
	}, nil
}

func millisOf(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	ms := d.Milliseconds()
	return &ms
}

func durationOfMillis(ms *int64) *time.Duration {
	if ms == nil {
		return nil
	}
	d := time.Duration(*ms) * time.Millisecond
	return &d
}
