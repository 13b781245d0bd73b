package keymaps

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "keymap-engine/internal/common/errors"
	"keymap-engine/internal/storage"
	"keymap-engine/internal/trigger"
)

type memStore struct {
	mu      sync.Mutex
	records map[string]*storage.KeyMapRecord
	order   []string
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]*storage.KeyMapRecord)}
}

func (m *memStore) CreateKeyMap(_ context.Context, record *storage.KeyMapRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	clone := *record
	m.records[record.UID] = &clone
	m.order = append(m.order, record.UID)
	return nil
}

func (m *memStore) GetKeyMap(_ context.Context, uid string) (*storage.KeyMapRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[uid]
	if !ok {
		return nil, apperrors.NotFoundError("key map").WithContext("uid", uid)
	}
	clone := *record
	return &clone, nil
}

func (m *memStore) UpdateKeyMap(_ context.Context, record *storage.KeyMapRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[record.UID]; !ok {
		return apperrors.NotFoundError("key map").WithContext("uid", record.UID)
	}
	record.UpdatedAt = time.Now()
	clone := *record
	m.records[record.UID] = &clone
	return nil
}

func (m *memStore) DeleteKeyMap(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[uid]; !ok {
		return apperrors.NotFoundError("key map").WithContext("uid", uid)
	}
	delete(m.records, uid)
	for i, u := range m.order {
		if u == uid {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memStore) ListKeyMaps(_ context.Context) ([]*storage.KeyMapRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*storage.KeyMapRecord, 0, len(m.order))
	for _, uid := range m.order {
		clone := *m.records[uid]
		out = append(out, &clone)
	}
	return out, nil
}

func (m *memStore) Health() error { return nil }
func (m *memStore) Close() error  { return nil }

func newTestService() *Service {
	return NewService(newMemStore(), fixedDefaults{}, testLogger())
}

func TestServiceCreateAndGet(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	km, err := s.CreateKeyMap(ctx)
	require.NoError(t, err)
	assert.True(t, km.Enabled)
	assert.Empty(t, km.Trigger.Keys)

	got, err := s.GetKeyMap(ctx, km.UID)
	require.NoError(t, err)
	assert.Equal(t, km, got)
}

func TestServiceGetMissing(t *testing.T) {
	s := newTestService()

	_, err := s.GetKeyMap(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestServiceTriggerEditFlow(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	km, err := s.CreateKeyMap(ctx)
	require.NoError(t, err)

	km, err = s.AddKeyCodeKey(ctx, km.UID, trigger.KeyCodeVolumeDown, 0, trigger.AnyDevice(), false)
	require.NoError(t, err)
	assert.Equal(t, trigger.Undefined(), km.Trigger.Mode)

	km, err = s.AddKeyCodeKey(ctx, km.UID, trigger.KeyCodeVolumeUp, 0, trigger.AnyDevice(), false)
	require.NoError(t, err)
	assert.Equal(t, trigger.Parallel(trigger.ShortPress), km.Trigger.Mode)

	// The edited trigger is persisted, not just returned.
	got, err := s.GetKeyMap(ctx, km.UID)
	require.NoError(t, err)
	require.Len(t, got.Trigger.Keys, 2)
	assert.Equal(t, trigger.Parallel(trigger.ShortPress), got.Trigger.Mode)
}

func TestServiceSiblingScanCodeDefault(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	other, err := s.CreateKeyMap(ctx)
	require.NoError(t, err)
	_, err = s.AddKeyCodeKey(ctx, other.UID, trigger.KeyCodeVolumeDown, 5, trigger.AnyDevice(), false)
	require.NoError(t, err)

	km, err := s.CreateKeyMap(ctx)
	require.NoError(t, err)
	km, err = s.AddKeyCodeKey(ctx, km.UID, trigger.KeyCodeVolumeDown, 7, trigger.AnyDevice(), false)
	require.NoError(t, err)

	kc := km.Trigger.Keys[0].(trigger.KeyCodeKey)
	assert.True(t, kc.DetectWithScanCode)
}

func TestServiceSetModeAndClickType(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	km, err := s.CreateKeyMap(ctx)
	require.NoError(t, err)
	_, err = s.AddKeyCodeKey(ctx, km.UID, trigger.KeyCodeVolumeDown, 0, trigger.AnyDevice(), false)
	require.NoError(t, err)
	_, err = s.AddKeyCodeKey(ctx, km.UID, trigger.KeyCodeVolumeUp, 0, trigger.AnyDevice(), false)
	require.NoError(t, err)

	km, err = s.SetClickType(ctx, km.UID, "long_press")
	require.NoError(t, err)
	assert.Equal(t, trigger.Parallel(trigger.LongPress), km.Trigger.Mode)
	for _, k := range km.Trigger.Keys {
		assert.Equal(t, trigger.LongPress, k.Base().ClickType)
	}

	km, err = s.SetMode(ctx, km.UID, "sequence")
	require.NoError(t, err)
	assert.Equal(t, trigger.Sequence(), km.Trigger.Mode)

	km, err = s.SetClickType(ctx, km.UID, "short_press")
	require.NoError(t, err)
	assert.Equal(t, trigger.Sequence(), km.Trigger.Mode)
	for _, k := range km.Trigger.Keys {
		assert.Equal(t, trigger.LongPress, k.Base().ClickType)
	}

	_, err = s.SetMode(ctx, km.UID, "bogus")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestServiceSetActionsAssignsUIDs(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	km, err := s.CreateKeyMap(ctx)
	require.NoError(t, err)

	km, err = s.SetActions(ctx, km.UID, []Action{
		{Data: ActionData{Type: "key_event", Value: "24"}},
	})
	require.NoError(t, err)
	require.Len(t, km.Actions, 1)
	assert.NotEmpty(t, km.Actions[0].UID)
}

func TestServiceTriggerOptionsOverride(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	km, err := s.CreateKeyMap(ctx)
	require.NoError(t, err)
	_, err = s.AddKeyCodeKey(ctx, km.UID, trigger.KeyCodePower, 0, trigger.AnyDevice(), false)
	require.NoError(t, err)

	enabled := true
	delay := 700 * time.Millisecond
	km, err = s.SetTriggerOptions(ctx, km.UID, TriggerOptions{
		Vibrate:        &enabled,
		LongPressDelay: &delay,
	})
	require.NoError(t, err)
	assert.True(t, km.Trigger.Vibrate)
	require.NotNil(t, km.Trigger.LongPressDelay)
	assert.Equal(t, delay, *km.Trigger.LongPressDelay)

	// Setting the delay back to the engine default clears the override.
	defaultDelay := fixedDefaults{}.LongPressDelay()
	km, err = s.SetTriggerOptions(ctx, km.UID, TriggerOptions{LongPressDelay: &defaultDelay})
	require.NoError(t, err)
	assert.Nil(t, km.Trigger.LongPressDelay)
}

func TestServiceSetKeyDeviceWrongVariant(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	km, err := s.CreateKeyMap(ctx)
	require.NoError(t, err)
	km, err = s.AddAssistantKey(ctx, km.UID, trigger.AssistantVoice)
	require.NoError(t, err)

	_, err = s.SetKeyDevice(ctx, km.UID, km.Trigger.Keys[0].Base().UID, trigger.InternalDevice())

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInvalidArgument))
}

func TestServiceDelete(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	km, err := s.CreateKeyMap(ctx)
	require.NoError(t, err)
	require.NoError(t, s.DeleteKeyMap(ctx, km.UID))

	_, err = s.GetKeyMap(ctx, km.UID)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}
