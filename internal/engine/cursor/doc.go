// Package cursor defines Selection, the opaque anchor-keyed payload
// transported alongside edits (spec.md §1 Non-goal: "does not manage
// selections beyond treating them as opaque anchor-keyed payloads").
//
// The core buffer never interprets a Selection; it is carried by callers
// (editors, presentation layers) that want their selections to survive
// arbitrary concurrent edits the same way any other Anchor does.
//
//	sel := cursor.NewCursorSelection(anchor)
//	sel = sel.Extend(otherAnchor)
package cursor
