package history

import (
	"time"

	"github.com/dshills/fabric/internal/engine/clock"
)

// DefaultGroupInterval is the idle gap under which two consecutive
// transactions are merged into one undo unit (spec.md §4.4: "default
// 300 ms").
const DefaultGroupInterval = 300 * time.Millisecond

// History manages the undo and redo stacks of Transaction[R] values for
// one buffer. It is not safe for concurrent use without external
// synchronization, matching the single-owner synchronous core described
// in spec.md §5.
type History[R any] struct {
	groupInterval time.Duration
	mergeRanges   func(existing []R, add R) []R

	undoStack []Transaction[R]
	redoStack []Transaction[R]

	depth   int
	current *Transaction[R]
}

// New creates an empty history with the given grouping interval and
// range-merge callback (spec.md §4.4's ranges union rule is
// domain-specific to the range type R, so it is supplied by the caller
// rather than required of R).
func New[R any](groupInterval time.Duration, mergeRanges func(existing []R, add R) []R) *History[R] {
	return &History[R]{groupInterval: groupInterval, mergeRanges: mergeRanges}
}

// StartTransaction bumps the depth counter; only the outermost start
// pushes a new transaction entry (spec.md §4.4). Returns the
// transaction id and whether this call started a new outermost
// transaction (false if it only incremented nesting depth).
func (h *History[R]) StartTransaction(id clock.Local, now time.Time, startVersion clock.Version) (clock.Local, bool) {
	h.depth++
	if h.depth > 1 {
		return h.current.ID, false
	}
	h.current = &Transaction[R]{ID: id, StartVersion: startVersion.Clone()}
	return id, true
}

// InTransaction reports whether a transaction is currently open.
func (h *History[R]) InTransaction() bool { return h.depth > 0 }

// RecordEdit appends an edit to the currently open transaction. No-op if
// no transaction is open (callers should not call it in that case, but
// tolerating it keeps the façade simple for single-edit calls that start
// and end their own implicit transaction).
func (h *History[R]) RecordEdit(edit clock.Local, rng R, now time.Time) {
	if h.current == nil {
		return
	}
	h.current.recordEdit(edit, rng, now, h.mergeRanges)
}

// EndTransaction drops the depth; when it reaches 0, an empty
// transaction is discarded, otherwise it is pushed onto the undo stack
// and a grouping pass attempts to merge it into the predecessor
// (spec.md §4.4).
func (h *History[R]) EndTransaction(now time.Time, endVersion clock.Version) (clock.Local, bool) {
	if h.depth == 0 {
		return clock.Local{}, false
	}
	h.depth--
	if h.depth > 0 {
		return clock.Local{}, false
	}
	tx := h.current
	h.current = nil
	if tx == nil || tx.IsEmpty() {
		return clock.Local{}, false
	}
	tx.EndVersion = endVersion.Clone()

	h.redoStack = nil
	if n := len(h.undoStack); n > 0 {
		prev := &h.undoStack[n-1]
		if h.canGroup(prev, tx, now) {
			prev.EditIDs = append(prev.EditIDs, tx.EditIDs...)
			for _, r := range tx.Ranges {
				prev.Ranges = h.mergeRanges(prev.Ranges, r)
			}
			prev.EndVersion = tx.EndVersion
			prev.LastEditAt = tx.LastEditAt
			return prev.ID, true
		}
	}
	h.undoStack = append(h.undoStack, *tx)
	return tx.ID, true
}

func (h *History[R]) canGroup(prev *Transaction[R], next *Transaction[R], now time.Time) bool {
	if prev.SuppressGrouping || next.SuppressGrouping {
		return false
	}
	if next.FirstEditAt.Sub(prev.LastEditAt) > h.groupInterval {
		return false
	}
	return prev.EndVersion.Equals(next.StartVersion)
}

// FinalizeLast marks the most recent undo-stack transaction as no longer
// eligible for grouping with whatever comes next (used when a client
// explicitly ends a composition and wants it to stay its own undo unit).
func (h *History[R]) FinalizeLast() {
	if n := len(h.undoStack); n > 0 {
		h.undoStack[n-1].SuppressGrouping = true
	}
}

// PopUndo pops the most recent transaction off the undo stack for
// undoing, pushing nothing onto the redo stack itself — the caller
// pushes the same transaction onto redo once it has computed and applied
// the corresponding Undo operation, since only the caller knows the new
// undo count to attach.
func (h *History[R]) PopUndo() (Transaction[R], bool) {
	n := len(h.undoStack)
	if n == 0 {
		return Transaction[R]{}, false
	}
	tx := h.undoStack[n-1]
	h.undoStack = h.undoStack[:n-1]
	return tx, true
}

// PushRedo pushes a transaction onto the redo stack (called after a
// successful undo).
func (h *History[R]) PushRedo(tx Transaction[R]) {
	h.redoStack = append(h.redoStack, tx)
}

// PopRedo pops the most recent transaction off the redo stack for
// redoing.
func (h *History[R]) PopRedo() (Transaction[R], bool) {
	n := len(h.redoStack)
	if n == 0 {
		return Transaction[R]{}, false
	}
	tx := h.redoStack[n-1]
	h.redoStack = h.redoStack[:n-1]
	return tx, true
}

// PushUndo pushes a transaction back onto the undo stack (called after a
// successful redo).
func (h *History[R]) PushUndo(tx Transaction[R]) {
	h.undoStack = append(h.undoStack, tx)
}

// CanUndo reports whether the undo stack has an entry.
func (h *History[R]) CanUndo() bool { return len(h.undoStack) > 0 }

// CanRedo reports whether the redo stack has an entry.
func (h *History[R]) CanRedo() bool { return len(h.redoStack) > 0 }

// UndoToCollect pops transactions from the undo stack down to and
// including the one whose ID matches target, returning them oldest-last
// (i.e. in the order they should be undone: most recent first).
func (h *History[R]) UndoToCollect(target clock.Local) []Transaction[R] {
	var out []Transaction[R]
	for {
		tx, ok := h.PopUndo()
		if !ok {
			break
		}
		out = append(out, tx)
		if tx.ID == target {
			break
		}
	}
	return out
}

// Forget removes a transaction matching id from either stack without
// returning it (spec.md §4.4: "used when a client aborts an in-flight
// composition"). Reports whether a match was found and removed.
func (h *History[R]) Forget(id clock.Local) bool {
	if idx := indexByID(h.undoStack, id); idx >= 0 {
		h.undoStack = append(h.undoStack[:idx], h.undoStack[idx+1:]...)
		return true
	}
	if idx := indexByID(h.redoStack, id); idx >= 0 {
		h.redoStack = append(h.redoStack[:idx], h.redoStack[idx+1:]...)
		return true
	}
	return false
}

func indexByID[R any](stack []Transaction[R], id clock.Local) int {
	for i, tx := range stack {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

// UndoCount returns the number of transactions on the undo stack.
func (h *History[R]) UndoCount() int { return len(h.undoStack) }

// RedoCount returns the number of transactions on the redo stack.
func (h *History[R]) RedoCount() int { return len(h.redoStack) }

// Clear empties both stacks and any in-progress transaction.
func (h *History[R]) Clear() {
	h.undoStack = nil
	h.redoStack = nil
	h.current = nil
	h.depth = 0
}
