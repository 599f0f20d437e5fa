package buffer

import (
	"sort"

	"github.com/dshills/fabric/internal/engine/sumtree"
)

// buildFragmentTree rebuilds the fragments sum-tree wholesale from frags,
// which must already be in id order. The flat-slice sum-tree (see
// sumtree's package doc) makes a full rebuild after every edit the
// simplest correct option; there is no incremental splice path to keep in
// sync.
func buildFragmentTree(frags []Fragment) sumtree.Tree[Fragment, FragmentSummary] {
	return sumtree.FromItems[Fragment, FragmentSummary](frags)
}

// buildInsertionTree derives the insertion-fragment index from frags: one
// entry per fragment, keyed by (insertion local stamp, offset within that
// insertion), sorted into key order (spec.md §3).
func buildInsertionTree(frags []Fragment) sumtree.Tree[InsertionFragment, InsertionFragmentSummary] {
	entries := make([]InsertionFragment, len(frags))
	for i, f := range frags {
		entries[i] = InsertionFragment{
			Key:        InsertionFragmentKey{Local: f.InsertionLocal, Offset: f.InsertionOffset},
			FragmentID: f.ID,
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key.Compare(entries[j].Key) < 0
	})
	return sumtree.FromItems[InsertionFragment, InsertionFragmentSummary](entries)
}
