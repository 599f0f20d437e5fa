// Package engine is the thin facade over the collaborative text-buffer
// core described by spec.md: it wires together buffer.Buffer (C4/C6),
// cursor.Selection payloads, and tracking.Tracker's named snapshots into
// a single convenience type for callers that want one value to hold
// instead of three.
//
// Every mutating or resolving method simply delegates to the underlying
// Buffer; Engine adds no invariants of its own.
//
//	e := engine.New(1, "hello")
//	e.Edit(engine.RangeEdit{Range: engine.VisibleRange{Start: 0, End: 5}, NewText: "goodbye"})
//	e.Undo()
package engine
