package engine

import (
	"context"

	"github.com/dshills/fabric/internal/engine/buffer"
	"github.com/dshills/fabric/internal/engine/clock"
	"github.com/dshills/fabric/internal/engine/cursor"
	"github.com/dshills/fabric/internal/engine/rope"
	"github.com/dshills/fabric/internal/engine/subscription"
	"github.com/dshills/fabric/internal/engine/tracking"
)

// Re-export commonly used types for convenience, so callers that only
// import engine never need a second import just to name a type.
type (
	ByteOffset     = rope.ByteOffset
	Point          = buffer.Point
	PointUTF16     = buffer.PointUTF16
	VisibleRange   = buffer.VisibleRange
	RangeEdit      = buffer.RangeEdit
	Anchor         = buffer.Anchor
	Bias           = buffer.Bias
	EditOperation  = buffer.EditOperation
	UndoOperation  = buffer.UndoOperation
	Operation      = buffer.Operation
	LineEnding     = buffer.LineEnding
	ReplicaID      = clock.ReplicaID
	Version        = clock.Version
	Local          = clock.Local
	Selection      = cursor.Selection
	BufferSnapshot = buffer.BufferSnapshot
)

// Re-export constants.
const (
	LineEndingLF   = buffer.LineEndingLF
	LineEndingCRLF = buffer.LineEndingCRLF
	LineEndingCR   = buffer.LineEndingCR

	Left  = buffer.Left
	Right = buffer.Right
)

// Engine bundles a replica's Buffer together with the convenience
// tracking layer (named snapshots) and the slice of Selections carried
// alongside it by a presentation layer. The buffer itself remains the
// authority for all spec.md semantics; Engine adds no invariants.
type Engine struct {
	buf     *buffer.Buffer
	tracker *tracking.Tracker

	selections []cursor.Selection
}

// New creates an Engine seeded with baseText, owned by replicaID
// (spec.md §4.6 `new`).
func New(replicaID ReplicaID, baseText string, opts ...Option) *Engine {
	buf := buffer.New(replicaID, baseText, opts...)
	return &Engine{buf: buf, tracker: tracking.New(buf)}
}

// Buffer returns the underlying buffer.Buffer for callers that need the
// full C4/C6 surface directly.
func (e *Engine) Buffer() *buffer.Buffer { return e.buf }

// Tracker returns the named-snapshot convenience layer over EditsSince.
func (e *Engine) Tracker() *tracking.Tracker { return e.tracker }

// Text returns the full current visible document.
func (e *Engine) Text() string { return e.buf.Text() }

// Len returns the buffer's current visible byte length.
func (e *Engine) Len() ByteOffset { return e.buf.Len() }

// Version returns a clone of the buffer's current version.
func (e *Engine) Version() Version { return e.buf.Version() }

// Snapshot captures the buffer's current visible text and version.
func (e *Engine) Snapshot() BufferSnapshot { return e.buf.Snapshot() }

// Edit applies a batch of local edits as one atomic change (spec.md
// §4.6 `edit`).
func (e *Engine) Edit(edits ...RangeEdit) (EditOperation, error) {
	return e.buf.Edit(edits)
}

// ApplyOps ingests remote operations, applying what is causally ready
// and deferring the rest (spec.md §4.6 `apply_ops`).
func (e *Engine) ApplyOps(ops []Operation) error {
	return e.buf.ApplyOps(ops)
}

// StartTransaction opens an explicit transaction (spec.md §4.4/§4.6).
func (e *Engine) StartTransaction() (Local, error) { return e.buf.StartTransaction() }

// EndTransaction closes the most recently opened transaction.
func (e *Engine) EndTransaction() { e.buf.EndTransaction() }

// Undo pops the most recent transaction and emits its Undo operation.
func (e *Engine) Undo() (UndoOperation, error) { return e.buf.Undo() }

// Redo re-applies the most recently undone transaction.
func (e *Engine) Redo() (UndoOperation, error) { return e.buf.Redo() }

// CanUndo reports whether the undo stack has an entry.
func (e *Engine) CanUndo() bool { return e.buf.CanUndo() }

// CanRedo reports whether the redo stack has an entry.
func (e *Engine) CanRedo() bool { return e.buf.CanRedo() }

// AnchorBefore creates a left-biased anchor at offset.
func (e *Engine) AnchorBefore(offset ByteOffset) (Anchor, error) { return e.buf.AnchorBefore(offset) }

// AnchorAfter creates a right-biased anchor at offset.
func (e *Engine) AnchorAfter(offset ByteOffset) (Anchor, error) { return e.buf.AnchorAfter(offset) }

// SummaryForAnchor resolves an anchor to its current byte offset.
func (e *Engine) SummaryForAnchor(a Anchor) (offset ByteOffset, visible bool, err error) {
	return e.buf.SummaryForAnchor(a)
}

// CanResolve reports whether an anchor's insertion stamp has been
// observed locally.
func (e *Engine) CanResolve(stamp Local) bool { return e.buf.CanResolve(stamp) }

// EditsSince reports the patch between a prior version and the current
// state (spec.md §4.5 / §4.6 `edits_since`).
func (e *Engine) EditsSince(since Version) subscription.Patch[ByteOffset] {
	return e.buf.EditsSince(since)
}

// WaitForEdits blocks until every edit named in ids has been locally
// applied, or ctx is cancelled.
func (e *Engine) WaitForEdits(ctx context.Context, ids []Local) error {
	return e.buf.WaitForEdits(ctx, ids)
}

// Subscribe returns a handle that receives every subsequent mutation's
// patch (spec.md §6 "Subscriptions").
func (e *Engine) Subscribe() *subscription.Subscription[ByteOffset] { return e.buf.Subscribe() }

// Selections returns the current selection set carried alongside this
// buffer. Selections are an opaque payload the core never interprets
// (spec.md §1 Non-goal); Engine only stores and returns them.
func (e *Engine) Selections() []Selection {
	out := make([]Selection, len(e.selections))
	copy(out, e.selections)
	return out
}

// SetSelections replaces the selection set carried alongside this
// buffer.
func (e *Engine) SetSelections(sels []Selection) {
	e.selections = append(e.selections[:0], sels...)
}
