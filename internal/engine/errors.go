package engine

import "github.com/dshills/fabric/internal/engine/buffer"

// Errors are re-exported from the buffer package so callers of this
// facade never need to import buffer directly just to compare errors.
var (
	ErrOffsetOutOfRange   = buffer.ErrOffsetOutOfRange
	ErrRangeInvalid       = buffer.ErrRangeInvalid
	ErrEditsOverlap       = buffer.ErrEditsOverlap
	ErrReadOnly           = buffer.ErrReadOnly
	ErrUnresolvableAnchor = buffer.ErrUnresolvableAnchor
	ErrMalformedOperation = buffer.ErrMalformedOperation
	ErrNothingToUndo      = buffer.ErrNothingToUndo
	ErrNothingToRedo      = buffer.ErrNothingToRedo
	ErrNoSuchTransaction  = buffer.ErrNoSuchTransaction
)
