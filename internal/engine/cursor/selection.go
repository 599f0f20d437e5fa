package cursor

import "github.com/dshills/fabric/internal/engine/buffer"

// Selection is an opaque anchor-keyed payload describing a text
// selection: Anchor is where the selection started, Head is the current
// cursor position. Both are buffer.Anchor values, so a Selection
// survives arbitrary concurrent edits exactly like any other anchor
// (spec.md §1 Non-goal). The core buffer never inspects a Selection;
// callers resolve Anchor/Head themselves via
// Buffer.SummaryForAnchor when they need byte offsets.
type Selection struct {
	Anchor buffer.Anchor
	Head   buffer.Anchor
}

// NewSelection creates a selection from anchor to head.
func NewSelection(anchor, head buffer.Anchor) Selection {
	return Selection{Anchor: anchor, Head: head}
}

// NewCursorSelection creates a selection representing just a cursor (no
// extent): Anchor and Head name the same position.
func NewCursorSelection(at buffer.Anchor) Selection {
	return Selection{Anchor: at, Head: at}
}

// IsEmpty reports whether the selection has no extent (just a cursor).
func (s Selection) IsEmpty() bool {
	return s.Anchor.Equal(s.Head)
}

// Extend returns a new selection extended to head, with the anchor held
// fixed.
func (s Selection) Extend(head buffer.Anchor) Selection {
	return Selection{Anchor: s.Anchor, Head: head}
}

// Collapse collapses the selection to a cursor at the head.
func (s Selection) Collapse() Selection {
	return Selection{Anchor: s.Head, Head: s.Head}
}

// Flip returns a selection with anchor and head swapped.
func (s Selection) Flip() Selection {
	return Selection{Anchor: s.Head, Head: s.Anchor}
}
