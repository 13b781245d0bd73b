package trigger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "keymap-engine/internal/common/errors"
)

func addKey(t Trigger, code int) Trigger {
	return AddKeyCodeKey(t, code, 0, AnyDevice(), false, nil)
}

func TestAddFirstKeyStaysUndefined(t *testing.T) {
	got := addKey(New(), KeyCodeVolumeDown)

	require.Len(t, got.Keys, 1)
	assert.Equal(t, Undefined(), got.Mode)
	assert.Equal(t, ShortPress, got.Keys[0].Base().ClickType)
}

func TestAddSecondDistinctKeyPromotesParallel(t *testing.T) {
	got := addKey(addKey(New(), KeyCodeVolumeDown), KeyCodeVolumeUp)

	require.Len(t, got.Keys, 2)
	assert.Equal(t, Parallel(ShortPress), got.Mode)
	for _, k := range got.Keys {
		assert.Equal(t, ShortPress, k.Base().ClickType)
	}
}

func TestAddDuplicateKeyForcesSequence(t *testing.T) {
	got := addKey(addKey(New(), KeyCodeVolumeDown), KeyCodeVolumeDown)

	require.Len(t, got.Keys, 2)
	assert.Equal(t, Sequence(), got.Mode)
}

func TestAddDuplicateKeyToSequenceKeepsSequence(t *testing.T) {
	tr := addKey(addKey(New(), KeyCodeVolumeDown), KeyCodeVolumeDown)
	require.Equal(t, Sequence(), tr.Mode)

	got := addKey(tr, KeyCodeVolumeDown)

	assert.Equal(t, Sequence(), got.Mode)
	assert.Len(t, got.Keys, 3)
}

func TestAddSameKeyCodeOnDifferentDeviceStaysParallel(t *testing.T) {
	tr := AddKeyCodeKey(New(), KeyCodeVolumeDown, 0, ExternalDevice("abc123", "Keyboard"), false, nil)
	got := AddKeyCodeKey(tr, KeyCodeVolumeDown, 0, InternalDevice(), false, nil)

	require.Len(t, got.Keys, 2)
	assert.Equal(t, Parallel(ShortPress), got.Mode)
}

func TestAddPowerButtonDefaultsToLongPress(t *testing.T) {
	got := addKey(New(), KeyCodePower)

	require.Len(t, got.Keys, 1)
	assert.Equal(t, LongPress, got.Keys[0].Base().ClickType)
	assert.Equal(t, Undefined(), got.Mode)
}

func TestAddTVPowerButtonDefaultsToLongPress(t *testing.T) {
	got := addKey(New(), KeyCodeTVPower)

	assert.Equal(t, LongPress, got.Keys[0].Base().ClickType)
}

func TestAddPowerButtonToParallelForcesLongPress(t *testing.T) {
	tr := addKey(addKey(New(), KeyCodeVolumeDown), KeyCodeVolumeUp)
	require.Equal(t, Parallel(ShortPress), tr.Mode)

	got := addKey(tr, KeyCodePower)

	require.Len(t, got.Keys, 3)
	assert.Equal(t, Parallel(LongPress), got.Mode)
	for _, k := range got.Keys {
		assert.Equal(t, LongPress, k.Base().ClickType)
	}
}

func TestAddPowerButtonToSequenceKeepsSequence(t *testing.T) {
	tr := addKey(addKey(New(), KeyCodePower), KeyCodePower)
	require.Equal(t, Sequence(), tr.Mode)

	got := addKey(tr, KeyCodePower)

	assert.Equal(t, Sequence(), got.Mode)
	assert.Equal(t, LongPress, got.Keys[2].Base().ClickType)
}

func TestAddModifierKeyDoesNotConsume(t *testing.T) {
	got := addKey(New(), KeyCodeCtrlLeft)

	kc := got.Keys[0].(KeyCodeKey)
	assert.False(t, kc.ConsumeEvent)
}

func TestAddKeyCodeKeyRemovesRawEventKeys(t *testing.T) {
	tr := AddRawEventKey(New(), 114, ScanCodeVolumeDown, DeviceInfo{Name: "kbd"}, nil)
	require.Len(t, tr.Keys, 1)

	got := addKey(tr, KeyCodeVolumeUp)

	require.Len(t, got.Keys, 1)
	_, ok := got.Keys[0].(KeyCodeKey)
	assert.True(t, ok)
}

func TestAddRawEventKeyRemovesKeyCodeKeys(t *testing.T) {
	tr := addKey(New(), KeyCodeVolumeUp)

	got := AddRawEventKey(tr, 114, ScanCodeVolumeDown, DeviceInfo{Name: "kbd"}, nil)

	require.Len(t, got.Keys, 1)
	_, ok := got.Keys[0].(RawEventKey)
	assert.True(t, ok)
}

func TestAddRawPowerKeyByScanCodeDefaultsToLongPress(t *testing.T) {
	got := AddRawEventKey(New(), 0, ScanCodePower2, DeviceInfo{Name: "pwr"}, nil)

	assert.Equal(t, LongPress, got.Keys[0].Base().ClickType)
}

func TestScanCodeDetectionDefaultFromSibling(t *testing.T) {
	sibling := KeyCodeKey{
		KeyBase:  KeyBase{UID: "s"},
		KeyCode:  KeyCodeVolumeDown,
		ScanCode: 5,
		Device:   AnyDevice(),
	}

	got := AddKeyCodeKey(New(), KeyCodeVolumeDown, 7, AnyDevice(), false, []Key{sibling})

	kc := got.Keys[0].(KeyCodeKey)
	assert.True(t, kc.DetectWithScanCode)
}

func TestScanCodeDetectionDefaultOffWithoutConflicts(t *testing.T) {
	got := AddKeyCodeKey(New(), KeyCodeVolumeDown, 7, AnyDevice(), false, nil)

	kc := got.Keys[0].(KeyCodeKey)
	assert.False(t, kc.DetectWithScanCode)
}

func TestAddAssistantKeyForcesShortPressParallel(t *testing.T) {
	tr := addKey(New(), KeyCodePower)
	require.Equal(t, LongPress, tr.Keys[0].Base().ClickType)

	got := AddAssistantKey(tr, AssistantVoice)

	require.Len(t, got.Keys, 2)
	assert.Equal(t, Parallel(ShortPress), got.Mode)
	for _, k := range got.Keys {
		assert.Equal(t, ShortPress, k.Base().ClickType)
	}
}

func TestAddSecondAssistantKeyForcesSequence(t *testing.T) {
	tr := AddAssistantKey(New(), AssistantVoice)

	got := AddAssistantKey(tr, AssistantDevice)

	assert.Equal(t, Sequence(), got.Mode)
	assert.Len(t, got.Keys, 2)
}

func TestAddFingerprintKeys(t *testing.T) {
	tr := AddFingerprintKey(New(), GestureSwipeDown)
	require.Equal(t, Undefined(), tr.Mode)

	got := AddFingerprintKey(tr, GestureSwipeUp)

	assert.Equal(t, Sequence(), got.Mode)
}

func TestAddFloatingButtonKeys(t *testing.T) {
	info := &FloatingButtonInfo{Label: "A", LayoutName: "Home"}

	tr := AddFloatingButtonKey(New(), "btn-1", info)
	require.Equal(t, Undefined(), tr.Mode)

	two := AddFloatingButtonKey(tr, "btn-2", info)
	assert.Equal(t, Parallel(ShortPress), two.Mode)

	dup := AddFloatingButtonKey(tr, "btn-1", info)
	assert.Equal(t, Sequence(), dup.Mode)
}

func TestRemoveKeyDropsToUndefined(t *testing.T) {
	tr := addKey(addKey(New(), KeyCodeVolumeDown), KeyCodeVolumeUp)

	got := RemoveKey(tr, tr.Keys[0].Base().UID)

	require.Len(t, got.Keys, 1)
	assert.Equal(t, Undefined(), got.Mode)
}

func TestRemoveUnknownKeyIsNoOp(t *testing.T) {
	tr := addKey(New(), KeyCodeVolumeDown)

	got := RemoveKey(tr, "missing")

	assert.Equal(t, tr, got)
}

func TestMoveKeyReorders(t *testing.T) {
	tr := addKey(addKey(addKey(New(), KeyCodeVolumeDown), KeyCodeVolumeDown), KeyCodeVolumeDown)
	require.Equal(t, Sequence(), tr.Mode)
	first := tr.Keys[0].Base().UID

	got := MoveKey(tr, 0, 2)

	assert.Equal(t, first, got.Keys[2].Base().UID)
	assert.Equal(t, Sequence(), got.Mode)
}

func TestMoveKeyOutOfRangeIsNoOp(t *testing.T) {
	tr := addKey(New(), KeyCodeVolumeDown)

	got := MoveKey(tr, 0, 5)

	assert.Equal(t, tr, got)
}

func TestSetSequenceModeFromParallel(t *testing.T) {
	tr := addKey(addKey(New(), KeyCodeVolumeDown), KeyCodeVolumeUp)

	got := SetSequenceMode(tr)

	assert.Equal(t, Sequence(), got.Mode)
}

func TestSetParallelModeResetsClickTypesToShortPress(t *testing.T) {
	tr := SetSequenceMode(addKey(addKey(New(), KeyCodeVolumeDown), KeyCodeVolumeUp))
	tr, err := SetKeyClickType(tr, tr.Keys[0].Base().UID, LongPress)
	require.NoError(t, err)

	got := SetParallelMode(tr)

	assert.Equal(t, Parallel(ShortPress), got.Mode)
	for _, k := range got.Keys {
		assert.Equal(t, ShortPress, k.Base().ClickType)
	}
}

func TestSetParallelModeDropsDuplicateKeys(t *testing.T) {
	tr := addKey(addKey(New(), KeyCodeVolumeDown), KeyCodeVolumeDown)
	require.Equal(t, Sequence(), tr.Mode)

	got := SetParallelMode(tr)

	require.Len(t, got.Keys, 1)
	assert.Equal(t, KeyCodeVolumeDown, got.Keys[0].(KeyCodeKey).KeyCode)
	assert.Equal(t, Undefined(), got.Mode)
}

func TestSetParallelModeKeepsDistinctKeysAfterDedupe(t *testing.T) {
	tr := addKey(addKey(addKey(New(), KeyCodeVolumeDown), KeyCodeVolumeDown), KeyCodeVolumeUp)
	require.Equal(t, Sequence(), tr.Mode)

	got := SetParallelMode(tr)

	require.Len(t, got.Keys, 2)
	assert.Equal(t, Parallel(ShortPress), got.Mode)
}

func TestSetParallelModeWithOneKeyIsNoOp(t *testing.T) {
	tr := addKey(New(), KeyCodeVolumeDown)

	got := SetParallelMode(tr)

	assert.Equal(t, Undefined(), got.Mode)
}

func TestSetUndefinedModeGuardsMultiKeyTriggers(t *testing.T) {
	tr := SetSequenceMode(addKey(addKey(New(), KeyCodeVolumeDown), KeyCodeVolumeUp))

	got := SetUndefinedMode(tr)

	assert.Equal(t, Sequence(), got.Mode)
	assert.Len(t, got.Keys, 2)
}

func TestSetLongPressAppliesToAllKeys(t *testing.T) {
	tr := addKey(addKey(New(), KeyCodeVolumeDown), KeyCodeVolumeUp)

	got := SetLongPress(tr)

	assert.Equal(t, Parallel(LongPress), got.Mode)
	for _, k := range got.Keys {
		assert.Equal(t, LongPress, k.Base().ClickType)
	}
}

func TestSetLongPressNoOpOnSequenceTrigger(t *testing.T) {
	tr := addKey(addKey(New(), KeyCodeVolumeDown), KeyCodeVolumeDown)
	require.Equal(t, Sequence(), tr.Mode)

	got := SetLongPress(tr)

	assert.Equal(t, tr, got)
	for _, k := range got.Keys {
		assert.Equal(t, ShortPress, k.Base().ClickType)
	}
}

func TestSetDoublePressOnSingleKey(t *testing.T) {
	tr := addKey(New(), KeyCodeVolumeDown)

	got := SetDoublePress(tr)

	assert.Equal(t, Undefined(), got.Mode)
	assert.Equal(t, DoublePress, got.Keys[0].Base().ClickType)
}

func TestSetDoublePressNoOpOnParallelTrigger(t *testing.T) {
	tr := addKey(addKey(New(), KeyCodeVolumeDown), KeyCodeVolumeUp)
	require.Equal(t, Parallel(ShortPress), tr.Mode)

	got := SetDoublePress(tr)

	assert.Equal(t, tr, got)
}

func TestSetLongPressNoOpWithAssistantKey(t *testing.T) {
	tr := AddAssistantKey(addKey(New(), KeyCodeVolumeDown), AssistantAny)

	got := SetLongPress(tr)

	assert.Equal(t, tr, got)
}

func TestSetKeyClickTypeInSequence(t *testing.T) {
	tr := addKey(addKey(New(), KeyCodeVolumeDown), KeyCodeVolumeDown)
	require.Equal(t, Sequence(), tr.Mode)

	got, err := SetKeyClickType(tr, tr.Keys[1].Base().UID, DoublePress)

	require.NoError(t, err)
	assert.Equal(t, ShortPress, got.Keys[0].Base().ClickType)
	assert.Equal(t, DoublePress, got.Keys[1].Base().ClickType)
}

func TestSetKeyClickTypeUnknownUID(t *testing.T) {
	tr := addKey(New(), KeyCodeVolumeDown)

	_, err := SetKeyClickType(tr, "missing", LongPress)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestSetKeyClickTypeRejectsUnsupported(t *testing.T) {
	tr := AddAssistantKey(New(), AssistantAny)

	_, err := SetKeyClickType(tr, tr.Keys[0].Base().UID, LongPress)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInvalidArgument))
}

func TestSetKeyDeviceRequiresKeyCodeKey(t *testing.T) {
	tr := AddAssistantKey(New(), AssistantAny)

	_, err := SetKeyDevice(tr, tr.Keys[0].Base().UID, InternalDevice())

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInvalidArgument))
}

func TestSetKeyDeviceCollisionForcesSequence(t *testing.T) {
	tr := AddKeyCodeKey(New(), KeyCodeVolumeDown, 0, InternalDevice(), false, nil)
	tr = AddKeyCodeKey(tr, KeyCodeVolumeDown, 0, ExternalDevice("abc", "Keyboard"), false, nil)
	require.Equal(t, Parallel(ShortPress), tr.Mode)

	got, err := SetKeyDevice(tr, tr.Keys[1].Base().UID, InternalDevice())

	require.NoError(t, err)
	assert.Equal(t, Sequence(), got.Mode)
}

func TestSetKeyConsumeEvent(t *testing.T) {
	tr := addKey(New(), KeyCodeVolumeDown)

	got, err := SetKeyConsumeEvent(tr, tr.Keys[0].Base().UID, false)

	require.NoError(t, err)
	assert.False(t, got.Keys[0].(KeyCodeKey).ConsumeEvent)
}

func TestSetScanCodeDetectionCollisionForcesSequence(t *testing.T) {
	tr := AddKeyCodeKey(New(), KeyCodeVolumeDown, ScanCodeVolumeDown, AnyDevice(), false, nil)
	tr = AddKeyCodeKey(tr, KeyCodeVolumeUp, ScanCodeVolumeDown, AnyDevice(), false, nil)
	require.Equal(t, Parallel(ShortPress), tr.Mode)

	one, err := SetScanCodeDetection(tr, tr.Keys[0].Base().UID, true)
	require.NoError(t, err)
	require.Equal(t, Parallel(ShortPress), one.Mode)

	got, err := SetScanCodeDetection(one, one.Keys[1].Base().UID, true)
	require.NoError(t, err)
	assert.Equal(t, Sequence(), got.Mode)
}

func TestDelaySettersClearAtDefault(t *testing.T) {
	tr := addKey(New(), KeyCodePower)

	tr = SetLongPressDelay(tr, 700*time.Millisecond, 500*time.Millisecond)
	require.NotNil(t, tr.LongPressDelay)
	assert.Equal(t, 700*time.Millisecond, *tr.LongPressDelay)

	tr = SetLongPressDelay(tr, 500*time.Millisecond, 500*time.Millisecond)
	assert.Nil(t, tr.LongPressDelay)
}
