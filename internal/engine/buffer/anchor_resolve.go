package buffer

import (
	"sort"

	"github.com/dshills/fabric/internal/engine/locator"
	"github.com/dshills/fabric/internal/engine/rope"
)

// AnchorAt creates an anchor at the given visible offset with the given
// bias (spec.md §3/§4.3.6). offset == Len() is valid and returns an
// anchor attached to the end of the document.
func (b *Buffer) AnchorAt(offset rope.ByteOffset, bias Bias) (Anchor, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if offset > b.visible.Len() {
		return Anchor{}, ErrOffsetOutOfRange
	}
	if offset == 0 && bias == Left {
		return MinAnchor(), nil
	}
	if offset == b.visible.Len() && bias == Right {
		return MaxAnchor(), nil
	}

	items := b.fragments.Items()
	var running rope.ByteOffset
	for _, f := range items {
		if !f.Visible {
			continue
		}
		end := running + rope.ByteOffset(f.Len)
		if offset < end || (offset == end && bias == Left) {
			within := int(offset - running)
			return Anchor{InsertionLocal: f.InsertionLocal, Offset: f.InsertionOffset + within, Bias: bias}, nil
		}
		running = end
	}
	return MaxAnchor(), nil
}

// AnchorBefore is AnchorAt with Left bias: the anchor attaches to
// preceding content when it sits exactly on a boundary.
func (b *Buffer) AnchorBefore(offset rope.ByteOffset) (Anchor, error) {
	return b.AnchorAt(offset, Left)
}

// AnchorAfter is AnchorAt with Right bias.
func (b *Buffer) AnchorAfter(offset rope.ByteOffset) (Anchor, error) {
	return b.AnchorAt(offset, Right)
}

// lookupInsertionFragment finds the current fragment covering
// (local, offset) within an insertion's span, via the insertion-fragment
// index (binary search, since buildInsertionTree keeps entries in key
// order). Because splits never create gaps in an insertion's offset
// range, the predecessor-or-equal entry always owns offset — this is
// the back-off spec.md §9's Open Question 2 calls for: an anchor minted
// against one split point is resolved by finding whichever current
// fragment's span now contains it, not by requiring an exact match.
func (b *Buffer) lookupInsertionFragment(a Anchor) (locator.Locator, bool) {
	items := b.insertions.Items()
	target := InsertionFragmentKey{Local: a.InsertionLocal, Offset: a.Offset}
	i := sort.Search(len(items), func(i int) bool {
		return items[i].Key.Compare(target) > 0
	})
	if i == 0 {
		return nil, false
	}
	owner := items[i-1]
	if owner.Key.Local != a.InsertionLocal {
		return nil, false
	}
	return owner.FragmentID, true
}

// ResolveAnchor maps an anchor back to a current visible byte offset
// (spec.md §4.3.6). An anchor whose underlying fragment is currently
// invisible (deleted, or not yet observed) resolves to the visible
// offset immediately preceding where that content used to be, for both
// biases — bias only disambiguates ties between distinct fragments that
// are both still present.
func (b *Buffer) ResolveAnchor(a Anchor) (rope.ByteOffset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.resolveAnchorLocked(a)
}

func (b *Buffer) resolveAnchorLocked(a Anchor) (rope.ByteOffset, error) {
	if a.IsMin() {
		return 0, nil
	}
	if a.IsMax() {
		return b.visible.Len(), nil
	}
	if !b.version.Observed(a.InsertionLocal) {
		return 0, ErrUnresolvableAnchor
	}

	fragID, ok := b.lookupInsertionFragment(a)
	if !ok {
		return 0, ErrUnresolvableAnchor
	}

	items := b.fragments.Items()
	idx := sort.Search(len(items), func(i int) bool {
		return items[i].ID.Compare(fragID) >= 0
	})
	if idx >= len(items) || !items[idx].ID.Equal(fragID) {
		return 0, ErrUnresolvableAnchor
	}

	var running rope.ByteOffset
	for i := 0; i < idx; i++ {
		if items[i].Visible {
			running += rope.ByteOffset(items[i].Len)
		}
	}
	f := items[idx]
	if !f.Visible {
		return running, nil
	}
	within := a.Offset - f.InsertionOffset
	if within < 0 {
		within = 0
	}
	if within > f.Len {
		within = f.Len
	}
	pos := running + rope.ByteOffset(within)
	if pos > b.visible.Len() {
		pos = b.visible.Len()
	}
	return pos, nil
}

// SummaryForAnchor reports the visible offset and current visibility of
// an anchor's underlying content in one call, avoiding a second lookup
// when a caller (e.g. a selection renderer) needs both.
func (b *Buffer) SummaryForAnchor(a Anchor) (offset rope.ByteOffset, visible bool, err error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if a.IsMin() {
		return 0, true, nil
	}
	if a.IsMax() {
		return b.visible.Len(), true, nil
	}
	fragID, ok := b.lookupInsertionFragment(a)
	if !ok {
		return 0, false, ErrUnresolvableAnchor
	}
	items := b.fragments.Items()
	idx := sort.Search(len(items), func(i int) bool {
		return items[i].ID.Compare(fragID) >= 0
	})
	if idx >= len(items) || !items[idx].ID.Equal(fragID) {
		return 0, false, ErrUnresolvableAnchor
	}
	off, err := b.resolveAnchorLocked(a)
	return off, items[idx].Visible, err
}

// AnchorSummary is one anchor's resolved offset and visibility, returned
// by SummariesForAnchors alongside the anchor it was computed for.
type AnchorSummary struct {
	Anchor  Anchor
	Offset  rope.ByteOffset
	Visible bool
}

// SummariesForAnchors resolves many anchors under a single read lock,
// avoiding the per-call lock/unlock and fragment-slice materialization
// that calling SummaryForAnchor once per anchor would repeat. Results are
// returned in the same order as the input anchors, not sorted by
// insertion-fragment key, so callers can zip them back against whatever
// they were tracking the anchors for (e.g. a selection set).
func (b *Buffer) SummariesForAnchors(anchors []Anchor) []AnchorSummary {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]AnchorSummary, len(anchors))
	items := b.fragments.Items()
	for i, a := range anchors {
		s := AnchorSummary{Anchor: a}
		switch {
		case a.IsMin():
			s.Offset, s.Visible = 0, true
		case a.IsMax():
			s.Offset, s.Visible = b.visible.Len(), true
		default:
			fragID, ok := b.lookupInsertionFragment(a)
			if !ok {
				out[i] = s
				continue
			}
			idx := sort.Search(len(items), func(j int) bool {
				return items[j].ID.Compare(fragID) >= 0
			})
			if idx >= len(items) || !items[idx].ID.Equal(fragID) {
				out[i] = s
				continue
			}
			off, err := b.resolveAnchorLocked(a)
			if err == nil {
				s.Offset, s.Visible = off, items[idx].Visible
			}
		}
		out[i] = s
	}
	return out
}
