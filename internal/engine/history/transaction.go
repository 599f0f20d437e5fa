package history

import (
	"time"

	"github.com/dshills/fabric/internal/engine/clock"
)

// Transaction is a client-visible atomic grouping of local edits
// (spec.md §3/§4.4). R is the range type used to describe an edited span
// in the owning buffer's coordinate space (buffer.FullOffsetRange).
type Transaction[R any] struct {
	ID               clock.Local
	StartVersion     clock.Version
	EndVersion       clock.Version
	EditIDs          []clock.Local
	Ranges           []R
	FirstEditAt      time.Time
	LastEditAt       time.Time
	SuppressGrouping bool
}

func (t *Transaction[R]) recordEdit(edit clock.Local, rng R, now time.Time, mergeRanges func([]R, R) []R) {
	t.EditIDs = append(t.EditIDs, edit)
	t.Ranges = mergeRanges(t.Ranges, rng)
	if t.FirstEditAt.IsZero() {
		t.FirstEditAt = now
	}
	t.LastEditAt = now
}

// IsEmpty reports whether the transaction recorded no edits.
func (t *Transaction[R]) IsEmpty() bool { return len(t.EditIDs) == 0 }
