package buffer

import (
	"github.com/dshills/fabric/internal/engine/clock"
	"github.com/dshills/fabric/internal/engine/rope"
	"github.com/dshills/fabric/internal/engine/subscription"
)

// ready reports whether op's causal prerequisites have been locally
// observed (spec.md §4.3.7): the applier must have seen everything the
// op's producer had seen, and must not have already applied this exact
// op.
func (b *Buffer) ready(op Operation) bool {
	stamp := op.LocalStamp()
	if b.version.Observed(stamp) {
		return false // Applied already; treat as non-ready so it gets Dropped.
	}
	switch {
	case op.Edit != nil:
		return b.version.ObservedAll(op.Edit.Version)
	case op.Undo != nil:
		return b.version.ObservedAll(op.Undo.Version)
	default:
		return true
	}
}

// ApplyOps feeds a batch of remote operations through the
// Received -> Queued -> Applied | Dropped state machine (spec.md
// §4.3.7): operations whose causal prerequisites are already satisfied
// apply immediately, in Lamport order; everything else is parked in the
// deferred queue and retried after each successful apply, since applying
// one op can make a later one ready. Already-applied operations are
// silently dropped rather than reported as an error.
func (b *Buffer) ApplyOps(ops []Operation) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.readOnly {
		return ErrReadOnly
	}

	for _, op := range ops {
		if op.Edit != nil && op.Edit.Timestamp.Local == (clock.Local{}) {
			return ErrMalformedOperation
		}
		b.deferred.Push(op)
	}

	var patch subscription.Patch[rope.ByteOffset]
	var notify []clock.Local

	for {
		ready := b.deferred.Drain(b.ready)
		if len(ready) == 0 {
			break
		}
		for _, op := range ready {
			p, err := b.applyOneLocked(op)
			if err != nil {
				continue
			}
			patch = append(patch, p...)
			notify = append(notify, op.LocalStamp())
		}
	}

	// Drop anything left that turned out to already be observed (it was
	// pushed concurrently with an op that subsumed it causally).
	b.deferred.Remove(func(op Operation) bool {
		return b.version.Observed(op.LocalStamp())
	})

	if len(patch) > 0 {
		b.topic.Publish(patch)
	}
	for _, stamp := range notify {
		b.waiter.Notify(stamp)
	}
	return nil
}

func (b *Buffer) applyOneLocked(op Operation) (subscription.Patch[rope.ByteOffset], error) {
	switch {
	case op.Edit != nil:
		return b.applyRemoteEdit(*op.Edit)
	case op.Undo != nil:
		return b.applyUndoOperation(*op.Undo)
	default:
		return nil, ErrMalformedOperation
	}
}
