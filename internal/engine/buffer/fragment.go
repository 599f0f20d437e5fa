package buffer

import (
	"github.com/dshills/fabric/internal/engine/clock"
	"github.com/dshills/fabric/internal/engine/locator"
	"github.com/dshills/fabric/internal/engine/rope"
)

// Fragment is the atomic unit of the document (spec.md §3): a contiguous
// run of bytes produced by a single insertion, indivisible from the
// user's perspective but freely splittable by the engine. Fragment text
// never changes after creation (F2); only Visible, Deletions and
// MaxUndos evolve.
type Fragment struct {
	ID               locator.Locator
	InsertionLocal   clock.Local
	InsertionLamport clock.Lamport
	InsertionOffset  int // offset within the insertion's inserted text
	Len              int // byte length of this fragment's text
	Visible          bool
	Deletions        map[clock.Local]struct{} // local stamps of deletions covering this fragment
	MaxUndos         clock.Version             // highest undo that has touched this fragment
}

// cloneDeletions returns an independent copy of the deletion set.
func cloneDeletions(d map[clock.Local]struct{}) map[clock.Local]struct{} {
	out := make(map[clock.Local]struct{}, len(d))
	for k := range d {
		out[k] = struct{}{}
	}
	return out
}

// clone returns a deep-enough copy safe to mutate independently (the
// sum-tree backing store is a flat slice rebuilt wholesale on every edit,
// so fragments are always copied rather than mutated in place).
func (f Fragment) clone() Fragment {
	f.ID = f.ID.Clone()
	f.Deletions = cloneDeletions(f.Deletions)
	f.MaxUndos = f.MaxUndos.Clone()
	return f
}

// FragmentTextSummary tracks the byte length contributed to the visible
// rope and to the deleted (tombstone) rope.
type FragmentTextSummary struct {
	Visible rope.ByteOffset
	Deleted rope.ByteOffset
}

// Add combines two FragmentTextSummary values.
func (s FragmentTextSummary) Add(other FragmentTextSummary) FragmentTextSummary {
	return FragmentTextSummary{Visible: s.Visible + other.Visible, Deleted: s.Deleted + other.Deleted}
}

// FragmentSummary is the monoidal summary cached by the fragments
// sum-tree (spec.md §4.2/§4.3): max id (for strict ordering, invariant
// F1/F3), visible+deleted byte counts, and the insertion-version bounds
// used by the VersionedFullOffset dimension.
type FragmentSummary struct {
	Text                 FragmentTextSummary
	MaxID                locator.Locator
	MaxInsertionVersion  clock.Version // join of every contained fragment's insertion stamp
	MinInsertionVersion  clock.Version // sparse per-replica min of the same
	Count                int
}

// Add combines two FragmentSummary values. Context-free: the spec's
// "context" only matters when folding a Summary into a Dimension value
// during a cursor seek (see VersionedFullOffset below), not when
// combining sibling summaries.
func (s FragmentSummary) Add(other FragmentSummary) FragmentSummary {
	maxID := s.MaxID
	if other.MaxID.Compare(maxID) > 0 {
		maxID = other.MaxID
	}
	return FragmentSummary{
		Text:                s.Text.Add(other.Text),
		MaxID:               maxID,
		MaxInsertionVersion: s.MaxInsertionVersion.Join(other.MaxInsertionVersion),
		MinInsertionVersion: s.MinInsertionVersion.MergeMinSparse(other.MinInsertionVersion),
		Count:               s.Count + other.Count,
	}
}

// Summary implements sumtree.Item.
func (f Fragment) Summary() FragmentSummary {
	single := clock.Single(f.InsertionLocal)
	text := FragmentTextSummary{}
	if f.Visible {
		text.Visible = rope.ByteOffset(f.Len)
	} else {
		text.Deleted = rope.ByteOffset(f.Len)
	}
	return FragmentSummary{
		Text:                text,
		MaxID:               f.ID,
		MaxInsertionVersion: single,
		MinInsertionVersion: single,
		Count:               1,
	}
}

// FullOffset is a byte index over the concatenation of visible + deleted
// text (spec.md's "full offset" space), used to express edit ranges
// independently of what is currently visible locally.
type FullOffset rope.ByteOffset

// VersionedFullOffset is the dimension described in spec.md §4.3.2: it
// answers "what full offset did this position have as of some historical
// Version", using Invalid to mark a subtree whose insertions straddle
// the queried version (forcing the cursor to descend further).
type VersionedFullOffset struct {
	Offset  FullOffset
	Invalid bool
}

// AddFragmentSummary folds one FragmentSummary into acc, given the
// historical version ctx is being resolved against. It has the shape of a
// sumtree.Seek accumulate step once ctx is bound; nothing in this package
// calls it, as fragment and anchor lookups search the tree's items directly.
func AddFragmentSummary(acc VersionedFullOffset, s FragmentSummary, ctx clock.Version) VersionedFullOffset {
	if acc.Invalid {
		return acc
	}
	switch {
	case ctx.ObservedAll(s.MaxInsertionVersion):
		acc.Offset += FullOffset(s.Text.Visible + s.Text.Deleted)
		return acc
	case ctx.ObservedAny(s.MinInsertionVersion):
		acc.Invalid = true
		return acc
	default:
		return acc
	}
}
