package keymaps

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lucsky/cuid"

	apperrors "keymap-engine/internal/common/errors"
	"keymap-engine/internal/common/logging"
	"keymap-engine/internal/storage"
	"keymap-engine/internal/trigger"
)

// Service is the configuration surface over stored key maps. Every trigger
// edit loads the key map, applies one editor operation and saves the
// validated result.
type Service struct {
	store    storage.Storage
	defaults Defaults
	logger   logging.Logger
}

func NewService(store storage.Storage, defaults Defaults, logger logging.Logger) *Service {
	return &Service{
		store:    store,
		defaults: defaults,
		logger:   logger.WithFields(logging.String("component", "keymap-service")),
	}
}

func encodeKeyMap(km KeyMap) (*storage.KeyMapRecord, error) {
	triggerData, err := json.Marshal(trigger.ToEntity(km.Trigger))
	if err != nil {
		return nil, apperrors.InternalError("failed to encode trigger", err)
	}
	actionData, err := EncodeActions(km.Actions)
	if err != nil {
		return nil, err
	}
	constraintData, err := EncodeConstraints(km.Constraints)
	if err != nil {
		return nil, err
	}
	return &storage.KeyMapRecord{
		UID:         km.UID,
		Enabled:     km.Enabled,
		Trigger:     triggerData,
		Actions:     actionData,
		Constraints: constraintData,
	}, nil
}

func decodeKeyMap(record *storage.KeyMapRecord) (KeyMap, error) {
	var entity trigger.Entity
	if err := json.Unmarshal(record.Trigger, &entity); err != nil {
		return KeyMap{}, apperrors.ValidationError("malformed trigger: " + err.Error())
	}
	tr, err := trigger.FromEntity(entity)
	if err != nil {
		return KeyMap{}, err
	}
	actions, err := DecodeActions(record.Actions)
	if err != nil {
		return KeyMap{}, err
	}
	constraints, err := DecodeConstraints(record.Constraints)
	if err != nil {
		return KeyMap{}, err
	}
	return KeyMap{
		UID:         record.UID,
		Enabled:     record.Enabled,
		Trigger:     tr,
		Actions:     actions,
		Constraints: constraints,
	}, nil
}

// CreateKeyMap stores a new enabled key map with an empty trigger
func (s *Service) CreateKeyMap(ctx context.Context) (KeyMap, error) {
	km := New()
	record, err := encodeKeyMap(km)
	if err != nil {
		return KeyMap{}, err
	}
	if err := s.store.CreateKeyMap(ctx, record); err != nil {
		return KeyMap{}, err
	}
	s.logger.Info("created key map", logging.String("uid", km.UID))
	return km, nil
}

func (s *Service) GetKeyMap(ctx context.Context, uid string) (KeyMap, error) {
	record, err := s.store.GetKeyMap(ctx, uid)
	if err != nil {
		return KeyMap{}, err
	}
	return decodeKeyMap(record)
}

func (s *Service) ListKeyMaps(ctx context.Context) ([]KeyMap, error) {
	records, err := s.store.ListKeyMaps(ctx)
	if err != nil {
		return nil, err
	}
	keyMaps := make([]KeyMap, 0, len(records))
	for _, record := range records {
		km, err := decodeKeyMap(record)
		if err != nil {
			return nil, err
		}
		keyMaps = append(keyMaps, km)
	}
	return keyMaps, nil
}

func (s *Service) DeleteKeyMap(ctx context.Context, uid string) error {
	if err := s.store.DeleteKeyMap(ctx, uid); err != nil {
		return err
	}
	s.logger.Info("deleted key map", logging.String("uid", uid))
	return nil
}

func (s *Service) save(ctx context.Context, km KeyMap) (KeyMap, error) {
	record, err := encodeKeyMap(km)
	if err != nil {
		return KeyMap{}, err
	}
	if err := s.store.UpdateKeyMap(ctx, record); err != nil {
		return KeyMap{}, err
	}
	return km, nil
}

func (s *Service) update(ctx context.Context, uid string, edit func(KeyMap) (KeyMap, error)) (KeyMap, error) {
	km, err := s.GetKeyMap(ctx, uid)
	if err != nil {
		return KeyMap{}, err
	}
	km, err = edit(km)
	if err != nil {
		return KeyMap{}, err
	}
	return s.save(ctx, km)
}

func (s *Service) updateTrigger(ctx context.Context, uid string, edit func(trigger.Trigger) (trigger.Trigger, error)) (KeyMap, error) {
	return s.update(ctx, uid, func(km KeyMap) (KeyMap, error) {
		tr, err := edit(km.Trigger)
		if err != nil {
			return KeyMap{}, err
		}
		km.Trigger = tr
		return km, nil
	})
}

func (s *Service) SetEnabled(ctx context.Context, uid string, enabled bool) (KeyMap, error) {
	return s.update(ctx, uid, func(km KeyMap) (KeyMap, error) {
		km.Enabled = enabled
		return km, nil
	})
}

// SetActions replaces the key map's action list. Actions without a UID get
// one assigned.
func (s *Service) SetActions(ctx context.Context, uid string, actions []Action) (KeyMap, error) {
	return s.update(ctx, uid, func(km KeyMap) (KeyMap, error) {
		for i := range actions {
			if actions[i].UID == "" {
				actions[i].UID = cuid.New()
			}
		}
		km.Actions = actions
		return km, nil
	})
}

func (s *Service) SetConstraints(ctx context.Context, uid string, state ConstraintState) (KeyMap, error) {
	return s.update(ctx, uid, func(km KeyMap) (KeyMap, error) {
		km.Constraints = state
		return km, nil
	})
}

// SiblingKeys returns the trigger keys of every other stored key map. The
// editor consults them when defaulting scan code detection for a new key.
func (s *Service) SiblingKeys(ctx context.Context, excludeUID string) ([]trigger.Key, error) {
	keyMaps, err := s.ListKeyMaps(ctx)
	if err != nil {
		return nil, err
	}
	var siblings []trigger.Key
	for _, km := range keyMaps {
		if km.UID == excludeUID {
			continue
		}
		siblings = append(siblings, km.Trigger.Keys...)
	}
	return siblings, nil
}

func (s *Service) AddKeyCodeKey(ctx context.Context, uid string, keyCode, scanCode int, device trigger.DeviceScope, requiresIME bool) (KeyMap, error) {
	siblings, err := s.SiblingKeys(ctx, uid)
	if err != nil {
		return KeyMap{}, err
	}
	return s.updateTrigger(ctx, uid, func(tr trigger.Trigger) (trigger.Trigger, error) {
		return trigger.AddKeyCodeKey(tr, keyCode, scanCode, device, requiresIME, siblings), nil
	})
}

func (s *Service) AddRawEventKey(ctx context.Context, uid string, keyCode, scanCode int, device trigger.DeviceInfo) (KeyMap, error) {
	siblings, err := s.SiblingKeys(ctx, uid)
	if err != nil {
		return KeyMap{}, err
	}
	return s.updateTrigger(ctx, uid, func(tr trigger.Trigger) (trigger.Trigger, error) {
		return trigger.AddRawEventKey(tr, keyCode, scanCode, device, siblings), nil
	})
}

func (s *Service) AddAssistantKey(ctx context.Context, uid string, assistantType trigger.AssistantType) (KeyMap, error) {
	return s.updateTrigger(ctx, uid, func(tr trigger.Trigger) (trigger.Trigger, error) {
		return trigger.AddAssistantKey(tr, assistantType), nil
	})
}

func (s *Service) AddFingerprintKey(ctx context.Context, uid string, gesture trigger.FingerprintGesture) (KeyMap, error) {
	return s.updateTrigger(ctx, uid, func(tr trigger.Trigger) (trigger.Trigger, error) {
		return trigger.AddFingerprintKey(tr, gesture), nil
	})
}

func (s *Service) AddFloatingButtonKey(ctx context.Context, uid, buttonUID string, button *trigger.FloatingButtonInfo) (KeyMap, error) {
	return s.updateTrigger(ctx, uid, func(tr trigger.Trigger) (trigger.Trigger, error) {
		return trigger.AddFloatingButtonKey(tr, buttonUID, button), nil
	})
}

func (s *Service) RemoveKey(ctx context.Context, uid, keyUID string) (KeyMap, error) {
	return s.updateTrigger(ctx, uid, func(tr trigger.Trigger) (trigger.Trigger, error) {
		return trigger.RemoveKey(tr, keyUID), nil
	})
}

func (s *Service) MoveKey(ctx context.Context, uid string, fromIndex, toIndex int) (KeyMap, error) {
	return s.updateTrigger(ctx, uid, func(tr trigger.Trigger) (trigger.Trigger, error) {
		return trigger.MoveKey(tr, fromIndex, toIndex), nil
	})
}

// SetMode switches the trigger's firing mode by name
func (s *Service) SetMode(ctx context.Context, uid, mode string) (KeyMap, error) {
	return s.updateTrigger(ctx, uid, func(tr trigger.Trigger) (trigger.Trigger, error) {
		switch mode {
		case "parallel":
			return trigger.SetParallelMode(tr), nil
		case "sequence":
			return trigger.SetSequenceMode(tr), nil
		case "undefined":
			return trigger.SetUndefinedMode(tr), nil
		default:
			return tr, apperrors.ValidationError("unknown trigger mode: " + mode)
		}
	})
}

// SetClickType applies one click type to the whole trigger
func (s *Service) SetClickType(ctx context.Context, uid, clickType string) (KeyMap, error) {
	return s.updateTrigger(ctx, uid, func(tr trigger.Trigger) (trigger.Trigger, error) {
		switch clickType {
		case "short_press":
			return trigger.SetShortPress(tr), nil
		case "long_press":
			return trigger.SetLongPress(tr), nil
		case "double_press":
			return trigger.SetDoublePress(tr), nil
		default:
			return tr, apperrors.ValidationError("unknown click type: " + clickType)
		}
	})
}

func (s *Service) SetKeyClickType(ctx context.Context, uid, keyUID string, clickType trigger.ClickType) (KeyMap, error) {
	return s.updateTrigger(ctx, uid, func(tr trigger.Trigger) (trigger.Trigger, error) {
		return trigger.SetKeyClickType(tr, keyUID, clickType)
	})
}

func (s *Service) SetKeyDevice(ctx context.Context, uid, keyUID string, device trigger.DeviceScope) (KeyMap, error) {
	return s.updateTrigger(ctx, uid, func(tr trigger.Trigger) (trigger.Trigger, error) {
		return trigger.SetKeyDevice(tr, keyUID, device)
	})
}

func (s *Service) SetKeyConsumeEvent(ctx context.Context, uid, keyUID string, consume bool) (KeyMap, error) {
	return s.updateTrigger(ctx, uid, func(tr trigger.Trigger) (trigger.Trigger, error) {
		return trigger.SetKeyConsumeEvent(tr, keyUID, consume)
	})
}

func (s *Service) SetAssistantType(ctx context.Context, uid, keyUID string, assistantType trigger.AssistantType) (KeyMap, error) {
	return s.updateTrigger(ctx, uid, func(tr trigger.Trigger) (trigger.Trigger, error) {
		return trigger.SetAssistantType(tr, keyUID, assistantType)
	})
}

func (s *Service) SetFingerprintGesture(ctx context.Context, uid, keyUID string, gesture trigger.FingerprintGesture) (KeyMap, error) {
	return s.updateTrigger(ctx, uid, func(tr trigger.Trigger) (trigger.Trigger, error) {
		return trigger.SetFingerprintGesture(tr, keyUID, gesture)
	})
}

func (s *Service) SetScanCodeDetection(ctx context.Context, uid, keyUID string, enabled bool) (KeyMap, error) {
	return s.updateTrigger(ctx, uid, func(tr trigger.Trigger) (trigger.Trigger, error) {
		return trigger.SetScanCodeDetection(tr, keyUID, enabled)
	})
}

// TriggerOptions is a partial update of a trigger's behaviour options. Nil
// fields are left unchanged; duration fields equal to the engine default
// clear the stored override.
type TriggerOptions struct {
	Vibrate                  *bool
	LongPressDoubleVibration *bool
	ScreenOffTrigger         *bool
	FromOtherApps            *bool
	ShowToast                *bool
	LongPressDelay           *time.Duration
	DoublePressDelay         *time.Duration
	VibrateDuration          *time.Duration
	SequenceTimeout          *time.Duration
}

func (s *Service) SetTriggerOptions(ctx context.Context, uid string, opts TriggerOptions) (KeyMap, error) {
	return s.updateTrigger(ctx, uid, func(tr trigger.Trigger) (trigger.Trigger, error) {
		if opts.Vibrate != nil {
			tr = trigger.SetVibrate(tr, *opts.Vibrate)
		}
		if opts.LongPressDoubleVibration != nil {
			tr = trigger.SetLongPressDoubleVibration(tr, *opts.LongPressDoubleVibration)
		}
		if opts.ScreenOffTrigger != nil {
			tr = trigger.SetScreenOffTrigger(tr, *opts.ScreenOffTrigger)
		}
		if opts.FromOtherApps != nil {
			tr = trigger.SetTriggerFromOtherApps(tr, *opts.FromOtherApps)
		}
		if opts.ShowToast != nil {
			tr = trigger.SetShowToast(tr, *opts.ShowToast)
		}
		if opts.LongPressDelay != nil {
			tr = trigger.SetLongPressDelay(tr, *opts.LongPressDelay, s.defaults.LongPressDelay())
		}
		if opts.DoublePressDelay != nil {
			tr = trigger.SetDoublePressDelay(tr, *opts.DoublePressDelay, s.defaults.DoublePressDelay())
		}
		if opts.VibrateDuration != nil {
			tr = trigger.SetVibrateDuration(tr, *opts.VibrateDuration, s.defaults.VibrateDuration())
		}
		if opts.SequenceTimeout != nil {
			tr = trigger.SetSequenceTimeout(tr, *opts.SequenceTimeout, s.defaults.SequenceTimeout())
		}
		return tr, nil
	})
}
