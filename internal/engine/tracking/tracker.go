package tracking

import (
	"sync"

	"github.com/dshills/fabric/internal/engine/buffer"
	"github.com/dshills/fabric/internal/engine/clock"
	"github.com/dshills/fabric/internal/engine/rope"
	"github.com/dshills/fabric/internal/engine/subscription"
)

// Tracker records named snapshots of a buffer's version, so callers can
// later ask for the patch since a checkpoint by name instead of holding
// onto a clock.Version themselves.
type Tracker struct {
	mu        sync.RWMutex
	buf       *buffer.Buffer
	snapshots map[string]clock.Version
}

// New creates a Tracker over buf. buf must outlive the Tracker.
func New(buf *buffer.Buffer) *Tracker {
	return &Tracker{buf: buf, snapshots: make(map[string]clock.Version)}
}

// CreateSnapshot records the buffer's current version under name,
// overwriting any prior snapshot with the same name.
func (t *Tracker) CreateSnapshot(name string) {
	v := t.buf.Version()
	t.mu.Lock()
	t.snapshots[name] = v
	t.mu.Unlock()
}

// ForgetSnapshot removes a named snapshot.
func (t *Tracker) ForgetSnapshot(name string) {
	t.mu.Lock()
	delete(t.snapshots, name)
	t.mu.Unlock()
}

// SnapshotNames returns the names of all recorded snapshots, in no
// particular order.
func (t *Tracker) SnapshotNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.snapshots))
	for name := range t.snapshots {
		names = append(names, name)
	}
	return names
}

// DiffSinceSnapshot returns the patch between the named snapshot's
// version and the buffer's current state (spec.md §4.5). ok is false if
// no snapshot was recorded under name.
func (t *Tracker) DiffSinceSnapshot(name string) (patch subscription.Patch[rope.ByteOffset], ok bool) {
	t.mu.RLock()
	v, found := t.snapshots[name]
	t.mu.RUnlock()
	if !found {
		return nil, false
	}
	return t.buf.EditsSince(v), true
}
