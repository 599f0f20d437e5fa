// Package buffer implements the collaborative fragment-store text buffer
// described in spec.md: a CRDT document built from an append-only log of
// immutable Fragments, addressed by dense locators (package locator),
// with anchors, undo/redo (package history) and incremental edit
// streaming layered on top.
package buffer

import (
	"fmt"
	"sync"
	"time"

	"github.com/dshills/fabric/internal/engine/clock"
	"github.com/dshills/fabric/internal/engine/history"
	"github.com/dshills/fabric/internal/engine/locator"
	"github.com/dshills/fabric/internal/engine/opqueue"
	"github.com/dshills/fabric/internal/engine/rope"
	"github.com/dshills/fabric/internal/engine/subscription"
	"github.com/dshills/fabric/internal/engine/sumtree"
	"github.com/google/uuid"
)

// fragmentTree and insertionTree name the two sum-tree instantiations so
// the rest of the package doesn't have to spell out the generic
// parameters at every use site.
type fragmentTree = sumtree.Tree[Fragment, FragmentSummary]
type insertionTree = sumtree.Tree[InsertionFragment, InsertionFragmentSummary]

// baseInsertionLocal and baseInsertionLamport name the implicit insertion
// that produced New's initial baseText (text.rs:537-543 stamps its own
// base content with replica_id 0 and folds it into the starting
// version). Replica 0 is reserved for this purpose; every real replica
// created via New is expected to use a non-zero clock.ReplicaID.
var (
	baseInsertionLocal   = clock.Local{ReplicaID: 0, Seq: 1}
	baseInsertionLamport = clock.Lamport{ReplicaID: 0, Seq: 1}
)

// Buffer is a single replica's view of a collaborative document. All
// exported methods are safe for concurrent use; the core mutation path
// (applyLocalEdit/applyRemoteEdit/applyUndo) runs under mu like the rest
// of the engine's synchronous, single-writer core (spec.md §5) —
// concurrency here means "many goroutines may call into one Buffer", not
// "edits apply out of order".
type Buffer struct {
	mu sync.RWMutex

	replicaID clock.ReplicaID
	remoteID  uuid.UUID

	localClock   *clock.LocalClock
	lamportClock *clock.LamportClock
	version      clock.Version

	fragments  fragmentTree
	insertions insertionTree

	visible rope.Rope
	deleted rope.Rope

	undoMap  *UndoMap
	history  *history.History[FullOffsetRange]
	deferred *opqueue.Queue[Operation]

	topic  *subscription.Topic[rope.ByteOffset]
	waiter *subscription.Waiter

	lineEnding    LineEnding
	tabWidth      int
	groupInterval time.Duration
	readOnly      bool
}

// New creates a buffer seeded with baseText, owned by replicaID. baseText
// is installed as a single visible Fragment stamped with the reserved
// base stamp (replica 0) and immediately observed in the buffer's
// Version — spec.md §3's initial content is treated as though inserted
// by a stamp every replica has already observed, so every replica
// starting from the same baseText converges without exchanging an
// operation for it.
func New(replicaID clock.ReplicaID, baseText string, opts ...Option) *Buffer {
	b := &Buffer{
		replicaID:     replicaID,
		remoteID:      uuid.New(),
		localClock:    clock.NewLocalClock(replicaID),
		lamportClock:  clock.NewLamportClock(replicaID),
		version:       clock.NewVersion(),
		undoMap:       NewUndoMap(),
		deferred:      opqueue.New[Operation](),
		topic:         subscription.NewTopic[rope.ByteOffset](),
		waiter:        subscription.NewWaiter(),
		tabWidth:      4,
		groupInterval: history.DefaultGroupInterval,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.history == nil {
		b.history = history.New[FullOffsetRange](b.groupInterval, mergeRanges)
	}

	var frags []Fragment
	if len(baseText) > 0 {
		frags = append(frags, Fragment{
			ID:               locator.Between(locator.Min(), locator.Max()),
			InsertionLocal:   baseInsertionLocal,
			InsertionLamport: baseInsertionLamport,
			Len:              len(baseText),
			Visible:          true,
		})
		b.version.Observe(baseInsertionLocal)
		b.lamportClock.Witness(baseInsertionLamport.Seq)
	}
	b.fragments = buildFragmentTree(frags)
	b.insertions = buildInsertionTree(frags)
	b.visible = rope.FromString(baseText)
	b.deleted = rope.New()
	return b
}

// ReplicaID returns the replica id this buffer was created with.
func (b *Buffer) ReplicaID() clock.ReplicaID { return b.replicaID }

// RemoteID returns this replica's globally-unique identity, exchanged
// out-of-band with peers (e.g. during a handshake) alongside ReplicaID.
func (b *Buffer) RemoteID() uuid.UUID { return b.remoteID }

// Version returns a clone of the current locally-observed version.
func (b *Buffer) Version() clock.Version {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version.Clone()
}

// Text returns the full current visible document.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.visible.String()
}

// Len returns the visible document's byte length.
func (b *Buffer) Len() rope.ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.visible.Len()
}

// Slice returns the visible text in [start, end).
func (b *Buffer) Slice(start, end rope.ByteOffset) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if start > end || end > b.visible.Len() {
		return "", ErrRangeInvalid
	}
	return b.visible.Slice(start, end), nil
}

// PointToOffset converts a line/column position to a visible byte offset.
func (b *Buffer) PointToOffset(p Point) rope.ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.visible.PointToOffset(rope.Point{Line: p.Line, Column: p.Column})
}

// OffsetToPoint converts a visible byte offset to a line/column position.
func (b *Buffer) OffsetToPoint(off rope.ByteOffset) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rp := b.visible.OffsetToPoint(off)
	return Point{Line: rp.Line, Column: rp.Column}
}

// Subscribe registers for incremental-edit notifications (spec.md §6);
// callers Drain the returned Subscription to collect Patches published by
// Edit, ApplyOps and Undo/Redo.
func (b *Buffer) Subscribe() *subscription.Subscription[rope.ByteOffset] {
	return b.topic.Subscribe()
}

// Edit applies a batch of local edits as one atomic change, under an
// implicit single-edit transaction if the caller has not already opened
// one with StartTransaction (spec.md §4.3.3/§4.4).
func (b *Buffer) Edit(edits []RangeEdit) (EditOperation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	implicit := !b.history.InTransaction()
	if implicit {
		b.history.StartTransaction(clock.Local{}, time.Now(), b.version)
	}

	op, err := b.applyLocalEdit(edits)

	if err == nil {
		b.history.RecordEdit(op.Timestamp.Local, unionRanges(op.Ranges), time.Now())
	}
	if implicit {
		b.history.EndTransaction(time.Now(), b.version)
	}

	if err != nil {
		return EditOperation{}, err
	}

	b.topic.Publish(localPatch(edits))
	b.waiter.Notify(op.Timestamp.Local)
	return op, nil
}

// localPatch builds the publish-time patch directly from the sorted,
// validated RangeEdits a caller supplied for a local edit: each RangeEdit
// already names its own old visible range and new text, in document
// order. Old stays in pre-edit offsets; New is where the replacement ends
// in the post-edit text, shifted by the length change of earlier ranges.
func localPatch(edits []RangeEdit) subscription.Patch[rope.ByteOffset] {
	sorted := make([]RangeEdit, len(edits))
	copy(sorted, edits)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].Range.Start > sorted[j].Range.Start; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	patch := make(subscription.Patch[rope.ByteOffset], 0, len(sorted))
	var delta int64
	for _, e := range sorted {
		newStart := rope.ByteOffset(int64(e.Range.Start) + delta)
		patch = append(patch, subscription.Edit[rope.ByteOffset]{
			Old: subscription.Range[rope.ByteOffset]{Start: e.Range.Start, End: e.Range.End},
			New: newStart + rope.ByteOffset(len(e.NewText)),
		})
		delta += int64(len(e.NewText)) - int64(e.Range.End-e.Range.Start)
	}
	return patch
}

// unionRanges folds the FullOffsetRanges produced by one Edit call into
// the single merged range the history package expects per RecordEdit
// invocation (spec.md §4.4 groups an edit's own multi-range op into one
// transaction entry; mergeRanges then unions it against the transaction's
// running set).
func unionRanges(ranges []FullOffsetRange) FullOffsetRange {
	if len(ranges) == 0 {
		return FullOffsetRange{}
	}
	out := ranges[0]
	for _, r := range ranges[1:] {
		if r.Start < out.Start {
			out.Start = r.Start
		}
		if r.End > out.End {
			out.End = r.End
		}
	}
	return out
}

// StartTransaction opens an explicit transaction; nested calls simply
// increase the depth (spec.md §4.4). Returns the transaction id.
func (b *Buffer) StartTransaction() (clock.Local, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.readOnly {
		return clock.Local{}, ErrReadOnly
	}
	id := b.localClock.Tick()
	b.version.Observe(id)
	tid, _ := b.history.StartTransaction(id, time.Now(), b.version)
	return tid, nil
}

// EndTransaction closes the most recently opened explicit transaction.
func (b *Buffer) EndTransaction() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history.EndTransaction(time.Now(), b.version)
}

// CanResolve reports whether stamp has been locally observed, i.e.
// whether an anchor or operation referencing it can currently be
// resolved against this buffer's state.
func (b *Buffer) CanResolve(stamp clock.Local) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return stamp == (clock.Local{}) || b.version.Observed(stamp)
}

// String implements fmt.Stringer for debugging/log output.
func (b *Buffer) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return fmt.Sprintf("buffer{replica=%d len=%d}", b.replicaID, b.visible.Len())
}
