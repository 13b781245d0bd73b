package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLongPressDelayAllowedOnlyWithLongPressKey(t *testing.T) {
	tr := addKey(New(), KeyCodeVolumeDown)
	assert.False(t, tr.IsChangingLongPressDelayAllowed())

	tr = addKey(New(), KeyCodePower)
	assert.True(t, tr.IsChangingLongPressDelayAllowed())
}

func TestDoublePressDelayAllowedOnlyWithDoublePressKey(t *testing.T) {
	tr := addKey(New(), KeyCodeVolumeDown)
	assert.False(t, tr.IsChangingDoublePressDelayAllowed())

	got := SetDoublePress(tr)
	assert.True(t, got.IsChangingDoublePressDelayAllowed())
}

func TestSequenceTimeoutAllowedOnlyForSequenceTrigger(t *testing.T) {
	single := addKey(New(), KeyCodeVolumeDown)
	assert.False(t, single.IsChangingSequenceTimeoutAllowed())

	parallel := addKey(single, KeyCodeVolumeUp)
	assert.False(t, parallel.IsChangingSequenceTimeoutAllowed())

	sequence := SetSequenceMode(parallel)
	assert.True(t, sequence.IsChangingSequenceTimeoutAllowed())
}

func TestVibrateDurationAllowedWhenVibrationEnabled(t *testing.T) {
	tr := addKey(New(), KeyCodeVolumeDown)
	assert.False(t, tr.IsChangingVibrationDurationAllowed())

	assert.True(t, SetVibrate(tr, true).IsChangingVibrationDurationAllowed())
	assert.True(t, SetLongPressDoubleVibration(tr, true).IsChangingVibrationDurationAllowed())
}

func TestLongPressDoubleVibrationAllowed(t *testing.T) {
	assert.False(t, New().IsLongPressDoubleVibrationAllowed())

	single := addKey(New(), KeyCodePower)
	assert.True(t, single.IsLongPressDoubleVibrationAllowed())

	shortSingle := addKey(New(), KeyCodeVolumeDown)
	assert.False(t, shortSingle.IsLongPressDoubleVibrationAllowed())

	parallel := SetLongPress(addKey(shortSingle, KeyCodeVolumeUp))
	require.Equal(t, Parallel(LongPress), parallel.Mode)
	assert.True(t, parallel.IsLongPressDoubleVibrationAllowed())

	sequence := SetLongPress(SetSequenceMode(addKey(shortSingle, KeyCodeVolumeUp)))
	assert.False(t, sequence.IsLongPressDoubleVibrationAllowed())
}

func TestScreenOffDetectionAllowed(t *testing.T) {
	assert.False(t, New().IsDetectingWhenScreenOffAllowed())

	volumes := addKey(addKey(New(), KeyCodeVolumeDown), KeyCodeVolumeUp)
	assert.True(t, volumes.IsDetectingWhenScreenOffAllowed())

	letter := addKey(New(), 29)
	assert.False(t, letter.IsDetectingWhenScreenOffAllowed())

	gesture := AddFingerprintKey(addKey(New(), KeyCodeVolumeDown), GestureSwipeDown)
	assert.False(t, gesture.IsDetectingWhenScreenOffAllowed())
}

func TestEditorOperationsDoNotMutateInput(t *testing.T) {
	tr := addKey(addKey(New(), KeyCodeVolumeDown), KeyCodeVolumeUp)
	before := copyKeys(tr.Keys)

	_ = SetLongPress(tr)
	_ = RemoveKey(tr, tr.Keys[0].Base().UID)
	_ = MoveKey(tr, 0, 1)
	_ = Validate(tr)

	require.Len(t, tr.Keys, len(before))
	for i := range before {
		assert.Equal(t, before[i], tr.Keys[i])
	}
}
