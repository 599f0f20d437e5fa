package buffer

import (
	"strings"

	"github.com/dshills/fabric/internal/engine/clock"
	"github.com/dshills/fabric/internal/engine/locator"
	"github.com/dshills/fabric/internal/engine/rope"
	"github.com/dshills/fabric/internal/engine/subscription"
)

// isCurrentlyVisible reports whether f is visible right now: its
// insertion has not been undone, and every deletion recorded against it
// has itself been undone (spec.md §9's parity rule — an even undo count
// means "not undone").
func (b *Buffer) isCurrentlyVisible(f Fragment) bool {
	if IsUndone(b.undoMap.CurrentCount(f.InsertionLocal)) {
		return false
	}
	for d := range f.Deletions {
		if !IsUndone(b.undoMap.CurrentCount(d)) {
			return false
		}
	}
	return true
}

// wasVisible reports whether f was visible as of the historical version
// (spec.md §4.3.4): its insertion must be observed by version and not
// undone as of version, and every deletion observed by version must
// itself be undone as of version.
func (b *Buffer) wasVisible(f Fragment, version clock.Version) bool {
	if !version.Observed(f.InsertionLocal) {
		return false
	}
	if IsUndone(b.undoMap.CountAsOf(f.InsertionLocal, version)) {
		return false
	}
	for d := range f.Deletions {
		if version.Observed(d) && !IsUndone(b.undoMap.CountAsOf(d, version)) {
			return false
		}
	}
	return true
}

// applyRemoteEdit implements spec.md §4.3.4: each range in op.Ranges is
// expressed in the full-offset space of op.Version. Fragments the
// applier has not yet observed (concurrent insertions) contribute
// nothing to that historical offset and are passed through untouched,
// except at the exact insertion boundary, where the Lamport tie-break
// below orders op's new fragment against them.
//
// Tie-break direction: a concurrent candidate fragment whose Lamport
// stamp sorts before op's (clock.Lamport.Less) is skipped over — it
// keeps its place ahead of the incoming insertion. The first candidate
// (or real, already-observed content) that sorts at or after op's
// Lamport stops the scan, and op's fragment is placed immediately
// before it. Applied symmetrically at every replica, this converges on
// a single Lamport-ascending order for fragments inserted at the same
// position, regardless of which side applies first.
func (b *Buffer) applyRemoteEdit(op EditOperation) (subscription.Patch[rope.ByteOffset], error) {
	for _, r := range op.Ranges {
		if r.Start > r.End {
			return nil, ErrMalformedOperation
		}
	}
	if b.version.Observed(op.Timestamp.Local) {
		return nil, nil // already applied
	}

	oldItems := b.fragments.Items()
	idx := 0
	consumed := 0
	histOff := FullOffset(0)
	curVisOff := rope.ByteOffset(0)
	fullOff := FullOffset(0)
	srcVisOff := rope.ByteOffset(0)
	srcDelOff := rope.ByteOffset(0)
	insertionRunningOffset := 0

	lastID := locator.Min()
	var newFrags []Fragment
	var visibleBuf, deletedBuf strings.Builder
	var patch subscription.Patch[rope.ByteOffset]

	upperBound := func() locator.Locator {
		if idx < len(oldItems) {
			return oldItems[idx].ID
		}
		return locator.Max()
	}

	remaining := func() (Fragment, bool) {
		if idx >= len(oldItems) {
			return Fragment{}, false
		}
		f := oldItems[idx].clone()
		f.Len -= consumed
		f.InsertionOffset += consumed
		return f, true
	}

	// commitWhole copies the whole remaining piece of the current old
	// fragment through unchanged, srcVisible naming which rope the bytes
	// currently live in.
	commitWhole := func(f Fragment, srcVisible bool) {
		newFrags = append(newFrags, f)
		lastID = f.ID
		if srcVisible {
			text := b.visible.Slice(srcVisOff, srcVisOff+rope.ByteOffset(f.Len))
			srcVisOff += rope.ByteOffset(f.Len)
			curVisOff += rope.ByteOffset(f.Len)
			if f.Visible {
				visibleBuf.WriteString(text)
			} else {
				deletedBuf.WriteString(text)
			}
		} else {
			text := b.deleted.Slice(srcDelOff, srcDelOff+rope.ByteOffset(f.Len))
			srcDelOff += rope.ByteOffset(f.Len)
			deletedBuf.WriteString(text)
		}
		fullOff += FullOffset(f.Len)
		if op.Version.Observed(f.InsertionLocal) {
			histOff += FullOffset(f.Len)
		}
		idx++
		consumed = 0
	}

	// commitPartial splits off the first n bytes of the current old
	// fragment as a fresh Fragment, leaving the rest for later calls.
	commitPartial := func(f Fragment, n int, srcVisible bool) Fragment {
		id := locator.Between(lastID, upperBound())
		var text string
		if srcVisible {
			text = b.visible.Slice(srcVisOff, srcVisOff+rope.ByteOffset(n))
			srcVisOff += rope.ByteOffset(n)
			curVisOff += rope.ByteOffset(n)
		} else {
			text = b.deleted.Slice(srcDelOff, srcDelOff+rope.ByteOffset(n))
			srcDelOff += rope.ByteOffset(n)
		}
		piece := Fragment{
			ID:               id,
			InsertionLocal:   f.InsertionLocal,
			InsertionLamport: f.InsertionLamport,
			InsertionOffset:  f.InsertionOffset,
			Len:              n,
			Visible:          f.Visible,
			Deletions:        cloneDeletions(f.Deletions),
			MaxUndos:         f.MaxUndos.Clone(),
		}
		newFrags = append(newFrags, piece)
		lastID = id
		if piece.Visible {
			visibleBuf.WriteString(text)
		} else {
			deletedBuf.WriteString(text)
		}
		fullOff += FullOffset(n)
		if op.Version.Observed(f.InsertionLocal) {
			histOff += FullOffset(n)
		}
		consumed += n
		return piece
	}

	insertNewFragment := func(text string) {
		if text == "" {
			return
		}
		id := locator.Between(lastID, upperBound())
		piece := Fragment{
			ID:               id,
			InsertionLocal:   op.Timestamp.Local,
			InsertionLamport: op.Timestamp.Lamport,
			InsertionOffset:  insertionRunningOffset,
			Len:              len(text),
			Visible:          true,
		}
		newFrags = append(newFrags, piece)
		lastID = id
		visibleBuf.WriteString(text)
		fullOff += FullOffset(len(text))
		insertionRunningOffset += len(text)
		curVisOff += rope.ByteOffset(len(text))
	}

	if len(op.NewTexts) != len(op.Ranges) {
		return nil, ErrMalformedOperation
	}

	for i, r := range op.Ranges {
		newText := op.NewTexts[i]
		// Advance until histOff reaches r.Start, splitting an observed
		// fragment that straddles the boundary and copying concurrent
		// (unobserved) fragments through unconditionally along the way.
		for histOff < r.Start {
			f, ok := remaining()
			if !ok {
				break
			}
			if !op.Version.Observed(f.InsertionLocal) {
				commitWhole(f, f.Visible)
				continue
			}
			if histOff+FullOffset(f.Len) <= r.Start {
				commitWhole(f, f.Visible)
				continue
			}
			k := int(r.Start - histOff)
			commitPartial(f, k, f.Visible)
		}

		// At the boundary: resolve the Lamport tie-break against any
		// concurrent candidates sitting exactly here before inserting.
		for {
			f, ok := remaining()
			if !ok {
				break
			}
			if op.Version.Observed(f.InsertionLocal) {
				break
			}
			if f.InsertionLamport.Less(op.Timestamp.Lamport) {
				commitWhole(f, f.Visible)
				continue
			}
			break
		}

		oldVisAtIns := curVisOff
		insertNewFragment(newText)
		if newText != "" {
			patch = append(patch, subscription.Edit[rope.ByteOffset]{
				Old: subscription.Range[rope.ByteOffset]{Start: oldVisAtIns, End: oldVisAtIns},
				New: oldVisAtIns + rope.ByteOffset(len(newText)),
			})
		}

		// Walk the deletion span: only fragments observed by op.Version
		// count toward it; only those that wasVisible(op.Version) get
		// marked invisible and tagged with this op's stamp.
		for histOff < r.End {
			f, ok := remaining()
			if !ok {
				break
			}
			if !op.Version.Observed(f.InsertionLocal) {
				commitWhole(f, f.Visible)
				continue
			}
			wasVis := b.wasVisible(f, op.Version)
			avail := f.Len
			need := int(r.End - histOff)
			n := avail
			if need < avail {
				n = need
			}
			var piece Fragment
			if n == avail {
				piece = f
			} else {
				piece = f
				piece.Len = n
			}
			if wasVis {
				piece.Visible = false
				if piece.Deletions == nil {
					piece.Deletions = map[clock.Local]struct{}{}
				} else {
					piece.Deletions = cloneDeletions(piece.Deletions)
				}
				piece.Deletions[op.Timestamp.Local] = struct{}{}
			}
			srcVis := f.Visible
			beforeVis := curVisOff
			if n == avail {
				newFrags = append(newFrags, piece)
				lastID = piece.ID
				if srcVis {
					text := b.visible.Slice(srcVisOff, srcVisOff+rope.ByteOffset(n))
					srcVisOff += rope.ByteOffset(n)
					curVisOff += rope.ByteOffset(n)
					if piece.Visible {
						visibleBuf.WriteString(text)
					} else {
						deletedBuf.WriteString(text)
					}
				} else {
					text := b.deleted.Slice(srcDelOff, srcDelOff+rope.ByteOffset(n))
					srcDelOff += rope.ByteOffset(n)
					deletedBuf.WriteString(text)
				}
				fullOff += FullOffset(n)
				histOff += FullOffset(n)
				idx++
				consumed = 0
			} else {
				id := locator.Between(lastID, upperBound())
				piece.ID = id
				var text string
				if srcVis {
					text = b.visible.Slice(srcVisOff, srcVisOff+rope.ByteOffset(n))
					srcVisOff += rope.ByteOffset(n)
					curVisOff += rope.ByteOffset(n)
				} else {
					text = b.deleted.Slice(srcDelOff, srcDelOff+rope.ByteOffset(n))
					srcDelOff += rope.ByteOffset(n)
				}
				newFrags = append(newFrags, piece)
				lastID = id
				if piece.Visible {
					visibleBuf.WriteString(text)
				} else {
					deletedBuf.WriteString(text)
				}
				fullOff += FullOffset(n)
				histOff += FullOffset(n)
				consumed += n
			}
			if wasVis && srcVis {
				patch = append(patch, subscription.Edit[rope.ByteOffset]{
					Old: subscription.Range[rope.ByteOffset]{Start: beforeVis, End: beforeVis + rope.ByteOffset(n)},
					New: beforeVis,
				})
				curVisOff = beforeVis
			}
		}
	}

	for {
		f, ok := remaining()
		if !ok {
			break
		}
		commitWhole(f, f.Visible)
	}

	b.fragments = buildFragmentTree(newFrags)
	b.insertions = buildInsertionTree(newFrags)
	b.visible = rope.FromString(visibleBuf.String())
	b.deleted = rope.FromString(deletedBuf.String())
	b.version.Observe(op.Timestamp.Local)
	b.lamportClock.Witness(op.Timestamp.Lamport.Seq)

	return patch, nil
}
