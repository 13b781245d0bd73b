package trigger

import "fmt"

// Validate repairs a trigger so it satisfies the structural invariants:
// parallel triggers have no logically equal keys and share one click type
// every key supports, sequence triggers have at least two keys, undefined
// triggers have at most one key, and no key carries a click type its
// variant cannot observe. Validate is idempotent and every editing
// operation runs it before returning.
func Validate(t Trigger) Trigger {
	switch t.Mode.Kind {
	case ModeParallel:
		return validateParallel(t)
	case ModeSequence:
		t.Keys = downgradeDisallowed(t.Keys)
		if len(t.Keys) <= 1 {
			t.Mode = Undefined()
		}
		return t
	default:
		if len(t.Keys) > 1 {
			t.Keys = copyKeys(t.Keys[:1])
			t.Mode = Sequence()
			return Validate(t)
		}
		t.Keys = downgradeDisallowed(t.Keys)
		return t
	}
}

func validateParallel(t Trigger) Trigger {
	// Two logically equal keys can never be held down together, so the
	// trigger degrades to a sequence.
	for i := range t.Keys {
		for j := i + 1; j < len(t.Keys); j++ {
			if t.Keys[i].Matches(t.Keys[j]) {
				t.Mode = Sequence()
				return Validate(t)
			}
		}
	}

	clickType := t.Mode.ClickType
	for _, k := range t.Keys {
		if clickType == LongPress && !k.AllowsLongPress() {
			clickType = ShortPress
			break
		}
		if clickType == DoublePress && !k.AllowsDoublePress() {
			clickType = ShortPress
			break
		}
	}

	// Drop keys that would compete for the same detection slot, keeping
	// the first of each bucket, and align every key with the mode's
	// click type.
	seen := make(map[string]bool, len(t.Keys))
	keys := make([]Key, 0, len(t.Keys))
	for _, k := range t.Keys {
		bucket := conflictBucket(k)
		if seen[bucket] {
			continue
		}
		seen[bucket] = true
		keys = append(keys, k.withClickType(clickType))
	}
	t.Keys = keys

	if len(t.Keys) <= 1 {
		t.Mode = Undefined()
		return Validate(t)
	}
	t.Mode = Parallel(clickType)
	return t
}

// conflictBucket maps a key to the detection slot it occupies in a
// parallel trigger. Assistant and fingerprint keys share one slot because
// only one gesture source can take part in a parallel press.
func conflictBucket(k Key) string {
	switch k := k.(type) {
	case KeyCodeKey:
		return fmt.Sprintf("key:%d:%s", k.EffectiveCode(), deviceBucket(k.Device))
	case RawEventKey:
		return fmt.Sprintf("raw:%d:%s:%d:%d:%d", k.EffectiveCode(), k.Device.Name, k.Device.Bus, k.Device.Vendor, k.Device.Product)
	case FloatingButtonKey:
		return "button:" + k.ButtonUID
	default:
		return "gesture"
	}
}

func deviceBucket(d DeviceScope) string {
	switch d.Kind {
	case DeviceInternal:
		return "internal"
	case DeviceExternal:
		return d.Descriptor
	default:
		return "any"
	}
}

func downgradeDisallowed(keys []Key) []Key {
	out := copyKeys(keys)
	for i, k := range out {
		clickType := k.Base().ClickType
		if clickType == LongPress && !k.AllowsLongPress() {
			out[i] = k.withClickType(ShortPress)
		}
		if clickType == DoublePress && !k.AllowsDoublePress() {
			out[i] = k.withClickType(ShortPress)
		}
	}
	return out
}
