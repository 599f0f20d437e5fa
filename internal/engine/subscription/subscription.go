// Package subscription implements the incremental-edit fan-out and the
// one-shot "wait for edit" notifiers described in spec.md §4.6/§5/§6:
// every buffer mutation publishes a Patch to subscribers, and callers can
// block until a set of edit stamps has been locally observed.
package subscription

import (
	"context"
	"sync"

	"github.com/dshills/fabric/internal/engine/clock"
)

// Range is a half-open span in dimension D (byte offset, Point, ...).
type Range[D any] struct {
	Start D
	End   D
}

// Edit describes one contiguous change: Old is the range it replaced and
// New is the offset at which its replacement text ends, both in the same
// dimension.
type Edit[D any] struct {
	Old Range[D]
	New D
}

// Patch is an ordered sequence of edits, in document order.
type Patch[D any] []Edit[D]

// Topic fans a Patch out to every live Subscription. Publish order is
// preserved per subscriber.
type Topic[D any] struct {
	mu   sync.Mutex
	next int
	subs map[int]*Subscription[D]
}

// NewTopic creates an empty topic.
func NewTopic[D any]() *Topic[D] {
	return &Topic[D]{subs: make(map[int]*Subscription[D])}
}

// Subscribe registers a new subscriber and returns its handle.
func (t *Topic[D]) Subscribe() *Subscription[D] {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	s := &Subscription[D]{topic: t, id: t.next}
	t.subs[s.id] = s
	return s
}

// Publish appends patch to every subscriber's pending buffer, in the
// exact order the fragment store was mutated (spec.md §6).
func (t *Topic[D]) Publish(patch Patch[D]) {
	if len(patch) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.subs {
		s.mu.Lock()
		s.buf = append(s.buf, patch...)
		s.mu.Unlock()
	}
}

// Subscription is a per-consumer cursor over a Topic's published patches.
type Subscription[D any] struct {
	topic *Topic[D]
	id    int
	mu    sync.Mutex
	buf   Patch[D]
}

// Drain removes and returns every edit published since the last Drain.
// Draining is idempotent (calling it twice with nothing new published
// returns an empty patch) and preserves publish order.
func (s *Subscription[D]) Drain() Patch[D] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buf) == 0 {
		return nil
	}
	p := s.buf
	s.buf = nil
	return p
}

// Unsubscribe removes s from its topic; subsequent publishes are not
// delivered to it.
func (s *Subscription[D]) Unsubscribe() {
	s.topic.mu.Lock()
	defer s.topic.mu.Unlock()
	delete(s.topic.subs, s.id)
}

// Waiter implements wait_for_edits: a per-stamp list of one-shot
// notifiers, woken by Notify from the same task that applies the
// corresponding operation.
type Waiter struct {
	mu      sync.Mutex
	pending map[clock.Local][]chan struct{}
}

// NewWaiter creates an empty waiter.
func NewWaiter() *Waiter {
	return &Waiter{pending: make(map[clock.Local][]chan struct{})}
}

// Wait blocks until every stamp in ids has been observed (as reported by
// observed) or ctx is done. Stamps already observed at call time do not
// block. Dropping the context is harmless: pending channels are simply
// never read again and are garbage collected once Notify fires or the
// Waiter is discarded.
func (w *Waiter) Wait(ctx context.Context, ids []clock.Local, observed func(clock.Local) bool) error {
	w.mu.Lock()
	chans := make([]chan struct{}, 0, len(ids))
	for _, id := range ids {
		if observed(id) {
			continue
		}
		ch := make(chan struct{})
		w.pending[id] = append(w.pending[id], ch)
		chans = append(chans, ch)
	}
	w.mu.Unlock()

	for _, ch := range chans {
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Notify wakes every waiter registered for stamp.
func (w *Waiter) Notify(stamp clock.Local) {
	w.mu.Lock()
	chans := w.pending[stamp]
	delete(w.pending, stamp)
	w.mu.Unlock()
	for _, ch := range chans {
		close(ch)
	}
}
