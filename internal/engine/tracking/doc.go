// Package tracking layers named snapshots over buffer.Buffer.EditsSince
// (spec.md §4.5): a Tracker remembers the buffer's clock.Version under a caller
// chosen name so later code can ask "what changed since I took snapshot
// X?" without having to carry the clock.Version value around itself.
//
// Tracking performs no diffing of its own; DiffSinceSnapshot is a thin
// call to Buffer.EditsSince, matching spec.md's patch law (§8.8):
// applying the returned subscription.Patch to the text at the
// snapshot's version yields the buffer's current text.
package tracking
