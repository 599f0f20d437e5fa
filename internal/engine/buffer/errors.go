package buffer

import "errors"

// Sentinel errors raised synchronously at the buffer's surface (spec.md
// §7). Causally premature operations are never an error — they are
// deferred — and empty transactions are silently discarded, not reported.
var (
	// ErrOffsetOutOfRange is returned when a byte offset or point exceeds
	// the current document length.
	ErrOffsetOutOfRange = errors.New("buffer: offset out of range")

	// ErrRangeInvalid is returned for a structurally invalid range (start
	// after end, or either endpoint out of range).
	ErrRangeInvalid = errors.New("buffer: invalid range")

	// ErrEditsOverlap is returned when two ranges passed to Edit overlap.
	ErrEditsOverlap = errors.New("buffer: edits overlap")

	// ErrReadOnly is returned by any mutating call on a buffer created
	// with WithReadOnly.
	ErrReadOnly = errors.New("buffer: read-only")

	// ErrUnresolvableAnchor is returned when an anchor's insertion stamp
	// has never been observed and cannot be waited on.
	ErrUnresolvableAnchor = errors.New("buffer: unresolvable anchor")

	// ErrMalformedOperation is returned for a structurally defective
	// incoming Operation (e.g. an inverted range); the operation is
	// dropped, not deferred.
	ErrMalformedOperation = errors.New("buffer: malformed operation")

	// ErrNothingToUndo is returned by Undo when the undo stack is empty.
	ErrNothingToUndo = errors.New("buffer: nothing to undo")

	// ErrNothingToRedo is returned by Redo when the redo stack is empty.
	ErrNothingToRedo = errors.New("buffer: nothing to redo")

	// ErrNoSuchTransaction is returned by UndoTo/Forget when no
	// transaction with the given id is on either stack.
	ErrNoSuchTransaction = errors.New("buffer: no such transaction")
)
