package buffer

import (
	"strings"

	"github.com/dshills/fabric/internal/engine/clock"
	"github.com/dshills/fabric/internal/engine/history"
	"github.com/dshills/fabric/internal/engine/rope"
	"github.com/dshills/fabric/internal/engine/subscription"
)

// applyUndoOperation implements spec.md §4.3.5/§9: install the new
// cumulative count for every referenced edit, then recompute visibility
// for every fragment whose insertion or deletion set references one of
// those edits. Undo never splits or reorders fragments — it only flips
// Visible on fragments that already exist — so, unlike an edit, this is
// a single linear pass with no locator minting.
func (b *Buffer) applyUndoOperation(op UndoOperation) (subscription.Patch[rope.ByteOffset], error) {
	if b.version.Observed(op.ID) {
		return nil, nil // already applied
	}
	for edit, count := range op.Counts {
		b.undoMap.Install(edit, count, op.ID)
	}

	affected := func(f Fragment) bool {
		if _, ok := op.Counts[f.InsertionLocal]; ok {
			return true
		}
		for d := range f.Deletions {
			if _, ok := op.Counts[d]; ok {
				return true
			}
		}
		return false
	}

	oldItems := b.fragments.Items()
	newFrags := make([]Fragment, len(oldItems))
	var visibleBuf, deletedBuf strings.Builder
	srcVisOff := rope.ByteOffset(0)
	srcDelOff := rope.ByteOffset(0)
	curVisOff := rope.ByteOffset(0)
	var patch subscription.Patch[rope.ByteOffset]

	for i, old := range oldItems {
		f := old.clone()
		oldVis := f.Visible
		if affected(f) {
			newVis := b.isCurrentlyVisible(f)
			if newVis != oldVis {
				f.Visible = newVis
				f.MaxUndos = f.MaxUndos.Join(clock.Single(op.ID))
			}
		}

		var text string
		if oldVis {
			text = b.visible.Slice(srcVisOff, srcVisOff+rope.ByteOffset(f.Len))
			srcVisOff += rope.ByteOffset(f.Len)
		} else {
			text = b.deleted.Slice(srcDelOff, srcDelOff+rope.ByteOffset(f.Len))
			srcDelOff += rope.ByteOffset(f.Len)
		}

		switch {
		case oldVis && f.Visible:
			visibleBuf.WriteString(text)
			curVisOff += rope.ByteOffset(f.Len)
		case oldVis && !f.Visible:
			deletedBuf.WriteString(text)
			patch = append(patch, subscription.Edit[rope.ByteOffset]{
				Old: subscription.Range[rope.ByteOffset]{Start: curVisOff, End: curVisOff + rope.ByteOffset(f.Len)},
				New: curVisOff,
			})
		case !oldVis && f.Visible:
			visibleBuf.WriteString(text)
			patch = append(patch, subscription.Edit[rope.ByteOffset]{
				Old: subscription.Range[rope.ByteOffset]{Start: curVisOff, End: curVisOff},
				New: curVisOff + rope.ByteOffset(f.Len),
			})
			curVisOff += rope.ByteOffset(f.Len)
		default:
			deletedBuf.WriteString(text)
		}

		newFrags[i] = f
	}

	b.fragments = buildFragmentTree(newFrags)
	b.insertions = buildInsertionTree(newFrags)
	b.visible = rope.FromString(visibleBuf.String())
	b.deleted = rope.FromString(deletedBuf.String())
	b.version.Observe(op.ID)
	b.lamportClock.Witness(op.Lamport.Seq)

	return patch, nil
}

// countsFor builds the cumulative undo-count map for a transaction: every
// referenced edit's current count plus one (spec.md §9: even = visible,
// odd = undone — a single transaction always moves every one of its
// edits by exactly one step).
func (b *Buffer) countsFor(tx history.Transaction[FullOffsetRange]) map[clock.Local]uint32 {
	counts := make(map[clock.Local]uint32, len(tx.EditIDs))
	for _, edit := range tx.EditIDs {
		counts[edit] = b.undoMap.CurrentCount(edit) + 1
	}
	return counts
}

// EditedRangesForTransaction recomputes the full-offset ranges a
// transaction currently touches, by re-walking every fragment whose
// insertion or one of its deletions carries one of the transaction's edit
// ids. This differs from tx.Ranges, which is frozen at the full-offset
// positions the edits had when first recorded: later edits elsewhere in
// the document can shift those positions, so a caller that wants the
// transaction's current span (e.g. to re-highlight it) should call this
// instead of reading tx.Ranges directly.
func (b *Buffer) EditedRangesForTransaction(tx history.Transaction[FullOffsetRange]) []FullOffsetRange {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make(map[clock.Local]struct{}, len(tx.EditIDs))
	for _, id := range tx.EditIDs {
		ids[id] = struct{}{}
	}

	var ranges []FullOffsetRange
	var offset FullOffset
	for _, f := range b.fragments.Items() {
		start := offset
		offset += FullOffset(f.Len)

		_, ownEdit := ids[f.InsertionLocal]
		touched := ownEdit
		if !touched {
			for d := range f.Deletions {
				if _, ok := ids[d]; ok {
					touched = true
					break
				}
			}
		}
		if touched {
			ranges = mergeRanges(ranges, FullOffsetRange{Start: start, End: offset})
		}
	}
	return ranges
}

// Undo pops the most recent transaction off the undo stack, applies the
// corresponding UndoOperation, and pushes the transaction onto the redo
// stack.
func (b *Buffer) Undo() (UndoOperation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.readOnly {
		return UndoOperation{}, ErrReadOnly
	}
	tx, ok := b.history.PopUndo()
	if !ok {
		return UndoOperation{}, ErrNothingToUndo
	}
	op := UndoOperation{
		ID:      b.localClock.Tick(),
		Lamport: b.lamportClock.Tick(),
		Counts:  b.countsFor(tx),
		Ranges:  tx.Ranges,
		Version: b.version.Clone(),
	}
	patch, err := b.applyUndoOperation(op)
	if err != nil {
		b.history.PushUndo(tx)
		return UndoOperation{}, err
	}
	b.history.PushRedo(tx)
	b.topic.Publish(patch)
	b.waiter.Notify(op.ID)
	return op, nil
}

// Redo pops the most recent transaction off the redo stack, applies the
// corresponding UndoOperation (which moves the same edits' counts one
// further step, restoring whatever the matching Undo call removed), and
// pushes the transaction back onto the undo stack.
func (b *Buffer) Redo() (UndoOperation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.readOnly {
		return UndoOperation{}, ErrReadOnly
	}
	tx, ok := b.history.PopRedo()
	if !ok {
		return UndoOperation{}, ErrNothingToRedo
	}
	op := UndoOperation{
		ID:      b.localClock.Tick(),
		Lamport: b.lamportClock.Tick(),
		Counts:  b.countsFor(tx),
		Ranges:  tx.Ranges,
		Version: b.version.Clone(),
	}
	patch, err := b.applyUndoOperation(op)
	if err != nil {
		b.history.PushRedo(tx)
		return UndoOperation{}, err
	}
	b.history.PushUndo(tx)
	b.topic.Publish(patch)
	b.waiter.Notify(op.ID)
	return op, nil
}

// UndoTo undoes every transaction on the undo stack down to and
// including the one identified by id, applying one UndoOperation per
// transaction, most recent first.
func (b *Buffer) UndoTo(id clock.Local) ([]UndoOperation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.readOnly {
		return nil, ErrReadOnly
	}
	txs := b.history.UndoToCollect(id)
	if len(txs) == 0 {
		return nil, ErrNoSuchTransaction
	}
	var ops []UndoOperation
	var patch subscription.Patch[rope.ByteOffset]
	for _, tx := range txs {
		op := UndoOperation{
			ID:      b.localClock.Tick(),
			Lamport: b.lamportClock.Tick(),
			Counts:  b.countsFor(tx),
			Ranges:  tx.Ranges,
			Version: b.version.Clone(),
		}
		p, err := b.applyUndoOperation(op)
		if err != nil {
			continue
		}
		b.history.PushRedo(tx)
		patch = append(patch, p...)
		ops = append(ops, op)
	}
	if len(patch) > 0 {
		b.topic.Publish(patch)
	}
	for _, op := range ops {
		b.waiter.Notify(op.ID)
	}
	return ops, nil
}

// Forget removes a pending transaction from either stack without undoing
// it (spec.md §4.4: aborting an in-flight composition).
func (b *Buffer) Forget(id clock.Local) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.history.Forget(id) {
		return ErrNoSuchTransaction
	}
	return nil
}

// CanUndo reports whether the undo stack has an entry.
func (b *Buffer) CanUndo() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.history.CanUndo()
}

// CanRedo reports whether the redo stack has an entry.
func (b *Buffer) CanRedo() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.history.CanRedo()
}
