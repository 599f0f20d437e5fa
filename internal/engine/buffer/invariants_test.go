package buffer

import "testing"

// CheckInvariants asserts F1, F3 and F4 (spec.md's fragment invariants) against a
// live Buffer, grounded in text.rs's own check_invariants test helper.
// Call it after a sequence of edits/undos/applies to catch a broken
// invariant close to the operation that broke it, instead of only as a
// downstream symptom in some unrelated test.
func CheckInvariants(t *testing.T, b *Buffer) {
	t.Helper()
	b.mu.RLock()
	defer b.mu.RUnlock()

	items := b.fragments.Items()

	// F1: strict ascending id order.
	for i := 1; i < len(items); i++ {
		if items[i-1].ID.Compare(items[i].ID) >= 0 {
			t.Fatalf("F1 violated: fragment %d id %v does not precede fragment %d id %v",
				i-1, items[i-1].ID, i, items[i].ID)
		}
	}

	// F3: the visible rope's length matches the sum of visible fragment
	// lengths in id order (the rope is rebuilt from that exact walk on
	// every mutation, so a mismatch means some fragment's Len or Visible
	// flag disagrees with what was used to build b.visible).
	var visibleBytes, deletedBytes int
	for _, f := range items {
		if f.Visible {
			visibleBytes += f.Len
		} else {
			deletedBytes += f.Len
		}
	}
	if got := int(b.visible.Len()); got != visibleBytes {
		t.Fatalf("F3 violated: visible rope len %d != sum of visible fragment lens %d", got, visibleBytes)
	}

	// F4: visible + deleted fragment byte totals match their ropes.
	if got := int(b.deleted.Len()); got != deletedBytes {
		t.Fatalf("F4 violated: deleted rope len %d != sum of invisible fragment lens %d", got, deletedBytes)
	}
}
