package cursor_test

import (
	"testing"

	"github.com/dshills/fabric/internal/engine/buffer"
	"github.com/dshills/fabric/internal/engine/cursor"
)

func TestSelectionIsEmpty(t *testing.T) {
	min := buffer.MinAnchor()
	max := buffer.MaxAnchor()

	if !cursor.NewCursorSelection(min).IsEmpty() {
		t.Fatal("cursor selection should be empty")
	}
	if cursor.NewSelection(min, max).IsEmpty() {
		t.Fatal("ranged selection should not be empty")
	}
}

func TestSelectionExtendCollapseFlip(t *testing.T) {
	min := buffer.MinAnchor()
	max := buffer.MaxAnchor()

	sel := cursor.NewCursorSelection(min).Extend(max)
	if !sel.Anchor.Equal(min) || !sel.Head.Equal(max) {
		t.Fatalf("Extend: got %+v", sel)
	}

	collapsed := sel.Collapse()
	if !collapsed.Anchor.Equal(max) || !collapsed.Head.Equal(max) {
		t.Fatalf("Collapse: got %+v", collapsed)
	}

	flipped := sel.Flip()
	if !flipped.Anchor.Equal(max) || !flipped.Head.Equal(min) {
		t.Fatalf("Flip: got %+v", flipped)
	}
}
