package buffer

import "github.com/dshills/fabric/internal/engine/clock"

// undoEntry records one undo operation's effect on a single referenced
// edit: the cumulative count it installed, and the undo operation's own
// stamp (so later historical queries can tell whether a given version
// had already observed this particular undo).
type undoEntry struct {
	count  uint32
	undoID clock.Local
}

// UndoMap tracks, per edit, the history of undo counts applied to it
// (spec.md §4.3.5/§9 Open Question: visibility is even=visible,
// odd=undone, taken verbatim). Entries are appended in application order,
// which — because undo operations are only applied once their causal
// prerequisites are observed — is also Lamport order.
type UndoMap struct {
	entries map[clock.Local][]undoEntry
}

// NewUndoMap creates an empty undo map.
func NewUndoMap() *UndoMap {
	return &UndoMap{entries: make(map[clock.Local][]undoEntry)}
}

// Install records that undoID set edit's cumulative undo count to count
// (spec.md §4.3.5: "per edit, keep the max count tagged with this undo's
// id" — since counts are cumulative and undo operations are applied in
// causal order, the latest installed entry is always the current max).
func (m *UndoMap) Install(edit clock.Local, count uint32, undoID clock.Local) {
	m.entries[edit] = append(m.entries[edit], undoEntry{count: count, undoID: undoID})
}

// CurrentCount returns the latest installed count for edit, or 0 if it
// has never been undone.
func (m *UndoMap) CurrentCount(edit clock.Local) uint32 {
	entries := m.entries[edit]
	if len(entries) == 0 {
		return 0
	}
	return entries[len(entries)-1].count
}

// CountAsOf returns the undo count in effect for edit as observed by
// version: the count from the latest entry whose own undo stamp is
// observed by version, or 0 if none qualifies.
func (m *UndoMap) CountAsOf(edit clock.Local, version clock.Version) uint32 {
	entries := m.entries[edit]
	var count uint32
	for _, e := range entries {
		if version.Observed(e.undoID) {
			count = e.count
		}
	}
	return count
}

// IsUndone reports whether count is odd (spec.md's parity rule).
func IsUndone(count uint32) bool { return count%2 == 1 }
