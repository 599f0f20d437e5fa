// Package history implements the undo map & transaction model described
// in spec.md §4.4 (component C5): transactions group local edits by idle
// interval and contiguous version boundaries, and move between an undo
// stack and a redo stack as the buffer façade undoes and redoes them.
//
// History is generic over the range type a caller uses to describe an
// edited span (buffer.FullOffsetRange), so this package has no
// dependency on the buffer package — the buffer façade depends on
// history, never the other way around.
//
// # Basic usage
//
//	h := history.New[buffer.FullOffsetRange](history.DefaultGroupInterval, mergeRanges)
//	id, started := h.StartTransaction(editID, now, startVersion)
//	h.RecordEdit(editID, rng, now)
//	h.EndTransaction(now, endVersion)
//
//	tx, ok := h.PopUndo()
package history
