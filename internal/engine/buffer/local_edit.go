package buffer

import (
	"sort"
	"strings"

	"github.com/dshills/fabric/internal/engine/clock"
	"github.com/dshills/fabric/internal/engine/locator"
	"github.com/dshills/fabric/internal/engine/rope"
)

// VisibleRange is a half-open span expressed in the document's current
// visible-offset space (what a caller sees via Text()/Len()).
type VisibleRange struct {
	Start rope.ByteOffset
	End   rope.ByteOffset
}

// RangeEdit pairs a visible-offset range with the text that replaces it.
// A zero-width range (Start == End) is a pure insertion; empty NewText
// with Start < End is a pure deletion.
type RangeEdit struct {
	Range   VisibleRange
	NewText string
}

// applyLocalEdit implements spec.md §4.3.3 (local edit policy): split the
// fragments covering each input range at its endpoints, mint a fragment
// for any inserted text immediately before the deleted span, and flip
// covered fragments invisible. Edits must be sorted and non-overlapping;
// this function sorts and validates that itself.
func (b *Buffer) applyLocalEdit(edits []RangeEdit) (EditOperation, error) {
	if len(edits) == 0 {
		return EditOperation{}, nil
	}
	if b.readOnly {
		return EditOperation{}, ErrReadOnly
	}

	sorted := make([]RangeEdit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Range.Start < sorted[j].Range.Start })

	docLen := b.visible.Len()
	for i, e := range sorted {
		if e.Range.Start > e.Range.End || e.Range.End > docLen {
			return EditOperation{}, ErrRangeInvalid
		}
		if i > 0 && e.Range.Start < sorted[i-1].Range.End {
			return EditOperation{}, ErrEditsOverlap
		}
	}

	beforeVersion := b.version.Clone()
	local := b.localClock.Tick()
	lamport := b.lamportClock.Tick()

	oldItems := b.fragments.Items()
	idx := 0
	consumed := 0
	visOff := rope.ByteOffset(0)
	fullOff := FullOffset(0)
	srcVisOff := rope.ByteOffset(0)
	srcDelOff := rope.ByteOffset(0)
	insertionRunningOffset := 0

	lastID := locator.Min()
	var newFrags []Fragment
	var visibleBuf, deletedBuf strings.Builder
	var opRanges []FullOffsetRange
	var opNewTexts []string

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

	commitWhole := func(f Fragment, srcVisible bool) {
		newFrags = append(newFrags, f)
		lastID = f.ID
		if srcVisible {
			text := b.visible.Slice(srcVisOff, srcVisOff+rope.ByteOffset(f.Len))
			srcVisOff += rope.ByteOffset(f.Len)
			visOff += rope.ByteOffset(f.Len)
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
		idx++
		consumed = 0
	}

	commitPartial := func(f Fragment, n int, srcVisible bool) Fragment {
		id := locator.Between(lastID, upperBound())
		var text string
		if srcVisible {
			text = b.visible.Slice(srcVisOff, srcVisOff+rope.ByteOffset(n))
			srcVisOff += rope.ByteOffset(n)
			visOff += rope.ByteOffset(n)
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
			InsertionLocal:   local,
			InsertionLamport: lamport,
			InsertionOffset:  insertionRunningOffset,
			Len:              len(text),
			Visible:          true,
		}
		newFrags = append(newFrags, piece)
		lastID = id
		visibleBuf.WriteString(text)
		fullOff += FullOffset(len(text))
		insertionRunningOffset += len(text)
	}

	for _, e := range sorted {
		targetStart, targetEnd := e.Range.Start, e.Range.End

		for {
			f, ok := remaining()
			if !ok {
				break
			}
			if f.Visible {
				if visOff+rope.ByteOffset(f.Len) <= targetStart {
					commitWhole(f, true)
					continue
				}
				break
			}
			commitWhole(f, false)
		}

		if f, ok := remaining(); ok && f.Visible && visOff < targetStart {
			k := int(targetStart - visOff)
			commitPartial(f, k, true)
		}

		rangeStartFull := fullOff
		insertNewFragment(e.NewText)

		deletionFullSpan := 0
		for visOff < targetEnd {
			f, ok := remaining()
			if !ok {
				break
			}
			if !f.Visible {
				before := fullOff
				commitWhole(f, false)
				deletionFullSpan += int(fullOff - before)
				continue
			}
			avail := f.Len
			need := int(targetEnd - visOff)
			if need >= avail {
				f.Visible = false
				if f.Deletions == nil {
					f.Deletions = map[clock.Local]struct{}{}
				}
				f.Deletions[local] = struct{}{}
				before := fullOff
				commitWhole(f, true)
				deletionFullSpan += int(fullOff - before)
			} else {
				f.Visible = false
				if f.Deletions == nil {
					f.Deletions = map[clock.Local]struct{}{}
				}
				f.Deletions[local] = struct{}{}
				before := fullOff
				commitPartial(f, need, true)
				deletionFullSpan += int(fullOff - before)
			}
		}

		opRanges = append(opRanges, FullOffsetRange{Start: rangeStartFull, End: rangeStartFull + FullOffset(deletionFullSpan)})
		opNewTexts = append(opNewTexts, e.NewText)
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
	b.version.Observe(local)

	return EditOperation{
		Timestamp: InsertionTimestamp{Local: local, Lamport: lamport},
		Version:   beforeVersion,
		Ranges:    opRanges,
		NewTexts:  opNewTexts,
	}, nil
}
