package buffer

import (
	"github.com/dshills/fabric/internal/engine/clock"
	"github.com/dshills/fabric/internal/engine/locator"
)

// InsertionFragmentKey orders insertion-fragment entries by
// (insertion local stamp, split offset within that insertion) —
// spec.md §3/§4.3: the key used to resolve anchors in O(log n) without
// scanning fragments.
type InsertionFragmentKey struct {
	Local  clock.Local
	Offset int
}

// Compare orders keys lexicographically on (Local.ReplicaID, Local.Seq, Offset).
func (k InsertionFragmentKey) Compare(other InsertionFragmentKey) int {
	switch {
	case k.Local.ReplicaID != other.Local.ReplicaID:
		if k.Local.ReplicaID < other.Local.ReplicaID {
			return -1
		}
		return 1
	case k.Local.Seq != other.Local.Seq:
		if k.Local.Seq < other.Local.Seq {
			return -1
		}
		return 1
	case k.Offset != other.Offset:
		if k.Offset < other.Offset {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// InsertionFragment maps a split point within an insertion back to the
// fragment id that currently owns that split (spec.md §3 "Insertion-
// fragment index").
type InsertionFragment struct {
	Key        InsertionFragmentKey
	FragmentID locator.Locator
}

// InsertionFragmentSummary is the monoidal summary for the insertion
// index: just the maximum key seen, sufficient to keep entries in key
// order (invariant: entries appear in strictly ascending key order).
type InsertionFragmentSummary struct {
	MaxKey InsertionFragmentKey
	Count  int
}

// Add combines two summaries, keeping the greater key.
func (s InsertionFragmentSummary) Add(other InsertionFragmentSummary) InsertionFragmentSummary {
	maxKey := s.MaxKey
	if other.MaxKey.Compare(maxKey) > 0 {
		maxKey = other.MaxKey
	}
	return InsertionFragmentSummary{MaxKey: maxKey, Count: s.Count + other.Count}
}

// Summary implements sumtree.Item.
func (e InsertionFragment) Summary() InsertionFragmentSummary {
	return InsertionFragmentSummary{MaxKey: e.Key, Count: 1}
}
