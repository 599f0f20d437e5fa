// Package opqueue implements the deferred-operation queue described in
// spec.md §4.3.7: operations whose causal prerequisites are not yet
// locally observed are parked here, keyed by Lamport stamp, and replayed
// in Lamport order once a rescan finds them ready.
package opqueue

import (
	"sort"

	"github.com/dshills/fabric/internal/engine/clock"
)

// Op is anything that can be queued: it must expose the Lamport stamp
// used to order replay.
type Op interface {
	LamportStamp() clock.Lamport
}

// Queue holds operations that could not be applied yet.
type Queue[T Op] struct {
	items []T
}

// New creates an empty queue.
func New[T Op]() *Queue[T] { return &Queue[T]{} }

// Push parks an operation, keeping the queue sorted by Lamport stamp.
func (q *Queue[T]) Push(op T) {
	i := sort.Search(len(q.items), func(i int) bool {
		return op.LamportStamp().Less(q.items[i].LamportStamp())
	})
	q.items = append(q.items, op)
	copy(q.items[i+1:], q.items[i:len(q.items)-1])
	q.items[i] = op
}

// Len returns the number of parked operations.
func (q *Queue[T]) Len() int { return len(q.items) }

// Items returns the parked operations in Lamport order. Read-only.
func (q *Queue[T]) Items() []T { return q.items }

// Drain repeatedly scans the queue for operations for which ready
// returns true, removing and returning them in Lamport order. Because
// applying one op can make a later one ready, the scan restarts from the
// front after every successful removal until a full pass makes no
// progress.
func (q *Queue[T]) Drain(ready func(T) bool) []T {
	var out []T
	for {
		progressed := false
		for i := 0; i < len(q.items); i++ {
			if ready(q.items[i]) {
				out = append(out, q.items[i])
				q.items = append(q.items[:i], q.items[i+1:]...)
				progressed = true
				break
			}
		}
		if !progressed {
			break
		}
	}
	return out
}

// Remove deletes every item for which match returns true, without
// requiring readiness (used to drop operations whose stamp turns out to
// already be observed — the Dropped transition in spec.md §4.6).
func (q *Queue[T]) Remove(match func(T) bool) {
	out := q.items[:0]
	for _, it := range q.items {
		if !match(it) {
			out = append(out, it)
		}
	}
	q.items = out
}
