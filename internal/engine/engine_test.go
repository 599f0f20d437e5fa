package engine_test

import (
	"context"
	"testing"

	"github.com/dshills/fabric/internal/engine"
)

func TestEngineLocalEdit(t *testing.T) {
	e := engine.New(1, "abcde")

	op, err := e.Edit(engine.RangeEdit{
		Range:   engine.VisibleRange{Start: 1, End: 3},
		NewText: "XY",
	})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if got, want := e.Text(), "aXYde"; got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
	if len(op.NewTexts) != 1 || op.NewTexts[0] != "XY" {
		t.Fatalf("op.NewTexts = %v", op.NewTexts)
	}
}

func TestEngineUndoRedo(t *testing.T) {
	e := engine.New(1, "abc")

	if _, err := e.Edit(engine.RangeEdit{Range: engine.VisibleRange{Start: 3, End: 3}, NewText: "d"}); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if got, want := e.Text(), "abcd"; got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}

	if _, err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got, want := e.Text(), "abc"; got != want {
		t.Fatalf("after undo Text() = %q, want %q", got, want)
	}

	if _, err := e.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if got, want := e.Text(), "abcd"; got != want {
		t.Fatalf("after redo Text() = %q, want %q", got, want)
	}
}

func TestEngineAnchorAcrossTombstoning(t *testing.T) {
	e := engine.New(1, "hello")

	a, err := e.AnchorBefore(3)
	if err != nil {
		t.Fatalf("AnchorBefore: %v", err)
	}

	if _, err := e.Edit(engine.RangeEdit{Range: engine.VisibleRange{Start: 1, End: 4}, NewText: ""}); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if got, want := e.Text(), "ho"; got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}

	offset, _, err := e.SummaryForAnchor(a)
	if err != nil {
		t.Fatalf("SummaryForAnchor: %v", err)
	}
	if offset != 1 {
		t.Fatalf("anchor offset = %d, want 1", offset)
	}

	if _, err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	offset, _, err = e.SummaryForAnchor(a)
	if err != nil {
		t.Fatalf("SummaryForAnchor after undo: %v", err)
	}
	if offset != 3 {
		t.Fatalf("anchor offset after undo = %d, want 3", offset)
	}
}

func TestEngineSelections(t *testing.T) {
	e := engine.New(1, "hello world")

	a, _ := e.AnchorBefore(0)
	b, _ := e.AnchorAfter(5)
	e.SetSelections([]engine.Selection{{Anchor: a, Head: b}})

	sels := e.Selections()
	if len(sels) != 1 {
		t.Fatalf("len(Selections()) = %d, want 1", len(sels))
	}
}

func TestEngineWaitForEdits(t *testing.T) {
	e := engine.New(1, "abc")
	op, err := e.Edit(engine.RangeEdit{Range: engine.VisibleRange{Start: 0, End: 0}, NewText: "x"})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := e.WaitForEdits(ctx, []engine.Local{op.Timestamp.Local}); err != nil {
		t.Fatalf("WaitForEdits: %v", err)
	}
}

func TestEngineTrackerDiff(t *testing.T) {
	e := engine.New(1, "abc")
	e.Tracker().CreateSnapshot("start")

	if _, err := e.Edit(engine.RangeEdit{Range: engine.VisibleRange{Start: 0, End: 0}, NewText: "X"}); err != nil {
		t.Fatalf("Edit: %v", err)
	}

	patch, ok := e.Tracker().DiffSinceSnapshot("start")
	if !ok {
		t.Fatal("expected snapshot to be found")
	}
	if len(patch) == 0 {
		t.Fatal("expected non-empty patch")
	}
}
