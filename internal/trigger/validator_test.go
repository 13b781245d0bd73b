package trigger

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyCode(uid string, code int, clickType ClickType) KeyCodeKey {
	return KeyCodeKey{
		KeyBase:      KeyBase{UID: uid, ClickType: clickType},
		KeyCode:      code,
		ConsumeEvent: true,
		Device:       AnyDevice(),
	}
}

func TestValidateParallelDuplicateBecomesSequence(t *testing.T) {
	tr := Trigger{
		Keys: []Key{
			keyCode("a", KeyCodeVolumeDown, ShortPress),
			keyCode("b", KeyCodeVolumeDown, ShortPress),
		},
		Mode: Parallel(ShortPress),
	}

	got := Validate(tr)

	assert.Equal(t, Sequence(), got.Mode)
	assert.Len(t, got.Keys, 2)
}

func TestValidateParallelDowngradesUnsupportedClickType(t *testing.T) {
	tr := Trigger{
		Keys: []Key{
			keyCode("a", KeyCodeVolumeDown, LongPress),
			AssistantKey{KeyBase: KeyBase{UID: "b", ClickType: LongPress}, Type: AssistantAny},
		},
		Mode: Parallel(LongPress),
	}

	got := Validate(tr)

	require.Equal(t, Parallel(ShortPress), got.Mode)
	for _, k := range got.Keys {
		assert.Equal(t, ShortPress, k.Base().ClickType)
	}
}

func TestValidateParallelAlignsKeyClickTypes(t *testing.T) {
	tr := Trigger{
		Keys: []Key{
			keyCode("a", KeyCodeVolumeDown, ShortPress),
			keyCode("b", KeyCodeVolumeUp, DoublePress),
		},
		Mode: Parallel(LongPress),
	}

	got := Validate(tr)

	require.Equal(t, Parallel(LongPress), got.Mode)
	for _, k := range got.Keys {
		assert.Equal(t, LongPress, k.Base().ClickType)
	}
}

func TestValidateParallelCollapsesGestureKeys(t *testing.T) {
	// Assistant and fingerprint keys occupy the same detection slot, so a
	// parallel trigger keeps only the first of them.
	tr := Trigger{
		Keys: []Key{
			AssistantKey{KeyBase: KeyBase{UID: "a"}, Type: AssistantVoice},
			FingerprintKey{KeyBase: KeyBase{UID: "b"}, Gesture: GestureSwipeDown},
			keyCode("c", KeyCodeVolumeDown, ShortPress),
		},
		Mode: Parallel(ShortPress),
	}

	got := Validate(tr)

	require.Len(t, got.Keys, 2)
	assert.Equal(t, "a", got.Keys[0].Base().UID)
	assert.Equal(t, "c", got.Keys[1].Base().UID)
	assert.Equal(t, Parallel(ShortPress), got.Mode)
}

func TestValidateParallelScanCodeCollision(t *testing.T) {
	a := keyCode("a", KeyCodeVolumeDown, ShortPress)
	a.ScanCode = ScanCodeVolumeDown
	a.DetectWithScanCode = true

	b := keyCode("b", KeyCodeVolumeUp, ShortPress)
	b.ScanCode = ScanCodeVolumeDown
	b.DetectWithScanCode = true

	tr := Trigger{Keys: []Key{a, b}, Mode: Parallel(ShortPress)}

	got := Validate(tr)

	assert.Equal(t, Sequence(), got.Mode)
}

func TestValidateSequenceWithOneKeyBecomesUndefined(t *testing.T) {
	tr := Trigger{
		Keys: []Key{keyCode("a", KeyCodeVolumeDown, ShortPress)},
		Mode: Sequence(),
	}

	got := Validate(tr)

	assert.Equal(t, Undefined(), got.Mode)
	assert.Len(t, got.Keys, 1)
}

func TestValidateUndefinedWithManyKeysKeepsFirst(t *testing.T) {
	tr := Trigger{
		Keys: []Key{
			keyCode("a", KeyCodeVolumeDown, ShortPress),
			keyCode("b", KeyCodeVolumeUp, ShortPress),
		},
		Mode: Undefined(),
	}

	got := Validate(tr)

	require.Len(t, got.Keys, 1)
	assert.Equal(t, "a", got.Keys[0].Base().UID)
	assert.Equal(t, Undefined(), got.Mode)
}

func TestValidateDowngradesPerKeyClickTypes(t *testing.T) {
	tr := Trigger{
		Keys: []Key{
			keyCode("a", KeyCodeVolumeDown, LongPress),
			FingerprintKey{KeyBase: KeyBase{UID: "b", ClickType: DoublePress}, Gesture: GestureSwipeUp},
		},
		Mode: Sequence(),
	}

	got := Validate(tr)

	assert.Equal(t, LongPress, got.Keys[0].Base().ClickType)
	assert.Equal(t, ShortPress, got.Keys[1].Base().ClickType)
}

func TestValidateEmptyTrigger(t *testing.T) {
	got := Validate(New())

	assert.Empty(t, got.Keys)
	assert.Equal(t, Undefined(), got.Mode)
}

func randomKey(r *rand.Rand, i int) Key {
	uid := fmt.Sprintf("key-%d", i)
	clickType := ClickType(r.Intn(3))
	switch r.Intn(5) {
	case 0:
		k := keyCode(uid, []int{KeyCodeVolumeDown, KeyCodeVolumeUp, KeyCodePower, KeyCodeMenu}[r.Intn(4)], clickType)
		k.ScanCode = r.Intn(3)
		k.DetectWithScanCode = r.Intn(2) == 0
		return k
	case 1:
		return RawEventKey{
			KeyBase:      KeyBase{UID: uid, ClickType: clickType},
			KeyCode:      r.Intn(4),
			ScanCode:     r.Intn(4),
			Device:       DeviceInfo{Name: "kbd", Bus: 3},
			ConsumeEvent: true,
		}
	case 2:
		return AssistantKey{KeyBase: KeyBase{UID: uid, ClickType: clickType}, Type: AssistantAny}
	case 3:
		return FingerprintKey{KeyBase: KeyBase{UID: uid, ClickType: clickType}, Gesture: GestureSwipeDown}
	default:
		return FloatingButtonKey{
			KeyBase:   KeyBase{UID: uid, ClickType: clickType},
			ButtonUID: fmt.Sprintf("btn-%d", r.Intn(3)),
		}
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		n := r.Intn(5)
		keys := make([]Key, 0, n)
		for j := 0; j < n; j++ {
			keys = append(keys, randomKey(r, j))
		}
		var mode Mode
		switch r.Intn(3) {
		case 0:
			mode = Undefined()
		case 1:
			mode = Sequence()
		default:
			mode = Parallel(ClickType(r.Intn(3)))
		}
		tr := Trigger{Keys: keys, Mode: mode}

		once := Validate(tr)
		twice := Validate(once)

		require.Equal(t, once, twice, "iteration %d: keys=%d mode=%v", i, n, mode)
	}
}
