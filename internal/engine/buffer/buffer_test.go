package buffer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/fabric/internal/engine/clock"
	"github.com/dshills/fabric/internal/engine/rope"
	"github.com/dshills/fabric/internal/engine/subscription"
)

func TestNewBufferSeedsSingleVisibleFragment(t *testing.T) {
	b := New(1, "hello")
	if got := b.Text(); got != "hello" {
		t.Fatalf("Text() = %q, want %q", got, "hello")
	}
	if b.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", b.Len())
	}
	CheckInvariants(t, b)
}

func TestNewEmptyBuffer(t *testing.T) {
	b := New(1, "")
	if b.Text() != "" || b.Len() != 0 {
		t.Fatalf("expected empty buffer, got text %q len %d", b.Text(), b.Len())
	}
	CheckInvariants(t, b)
}

func TestEditInsert(t *testing.T) {
	b := New(1, "Hello World")
	_, err := b.Edit([]RangeEdit{{Range: VisibleRange{Start: 5, End: 5}, NewText: ","}})
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if got := b.Text(); got != "Hello, World" {
		t.Fatalf("Text() = %q, want %q", got, "Hello, World")
	}
	CheckInvariants(t, b)
}

func TestEditDelete(t *testing.T) {
	b := New(1, "Hello, World!")
	_, err := b.Edit([]RangeEdit{{Range: VisibleRange{Start: 5, End: 7}, NewText: ""}})
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if got := b.Text(); got != "HelloWorld!" {
		t.Fatalf("Text() = %q, want %q", got, "HelloWorld!")
	}
	CheckInvariants(t, b)
}

func TestEditReplace(t *testing.T) {
	b := New(1, "Hello World")
	_, err := b.Edit([]RangeEdit{{Range: VisibleRange{Start: 6, End: 11}, NewText: "Go"}})
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if got := b.Text(); got != "Hello Go" {
		t.Fatalf("Text() = %q, want %q", got, "Hello Go")
	}
	CheckInvariants(t, b)
}

func TestEditOutOfRange(t *testing.T) {
	b := New(1, "Hello")
	_, err := b.Edit([]RangeEdit{{Range: VisibleRange{Start: 0, End: 100}, NewText: "X"}})
	if !errors.Is(err, ErrRangeInvalid) {
		t.Fatalf("expected ErrRangeInvalid, got %v", err)
	}
}

func TestEditMultipleNonOverlapping(t *testing.T) {
	b := New(1, "Hello World")
	_, err := b.Edit([]RangeEdit{
		{Range: VisibleRange{Start: 6, End: 11}, NewText: "Go"},
		{Range: VisibleRange{Start: 0, End: 5}, NewText: "Goodbye"},
	})
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if got := b.Text(); got != "Goodbye Go" {
		t.Fatalf("Text() = %q, want %q", got, "Goodbye Go")
	}
	CheckInvariants(t, b)
}

func TestEditOverlappingRangesRejected(t *testing.T) {
	b := New(1, "Hello World")
	_, err := b.Edit([]RangeEdit{
		{Range: VisibleRange{Start: 3, End: 8}, NewText: "X"},
		{Range: VisibleRange{Start: 5, End: 10}, NewText: "Y"},
	})
	if !errors.Is(err, ErrEditsOverlap) {
		t.Fatalf("expected ErrEditsOverlap, got %v", err)
	}
}

func TestLineOperations(t *testing.T) {
	b := New(1, "first line\nsecond line\nthird line")
	if b.visible.LineCount() != 3 {
		t.Fatalf("LineCount() = %d, want 3", b.visible.LineCount())
	}
	snap := b.Snapshot()
	for i, want := range []string{"first line", "second line", "third line"} {
		if got := snap.LineText(uint32(i)); got != want {
			t.Fatalf("LineText(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestOffsetPointRoundTrip(t *testing.T) {
	b := New(1, "abc\ndefgh\nij")
	for offset, want := range map[rope.ByteOffset]Point{
		0: {Line: 0, Column: 0},
		4: {Line: 1, Column: 0},
		7: {Line: 1, Column: 3},
	} {
		got := b.OffsetToPoint(offset)
		if got != want {
			t.Fatalf("OffsetToPoint(%d) = %v, want %v", offset, got, want)
		}
		back := b.PointToOffset(want)
		if back != offset {
			t.Fatalf("PointToOffset(%v) = %d, want %d", want, back, offset)
		}
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	b := New(1, "hello")
	if _, err := b.Edit([]RangeEdit{{Range: VisibleRange{Start: 5, End: 5}, NewText: " world"}}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if got := b.Text(); got != "hello world" {
		t.Fatalf("Text() = %q, want %q", got, "hello world")
	}

	if _, err := b.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if got := b.Text(); got != "hello" {
		t.Fatalf("Text() after Undo = %q, want %q", got, "hello")
	}
	CheckInvariants(t, b)

	if !b.CanRedo() {
		t.Fatal("expected CanRedo true")
	}
	if _, err := b.Redo(); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if got := b.Text(); got != "hello world" {
		t.Fatalf("Text() after Redo = %q, want %q", got, "hello world")
	}
	CheckInvariants(t, b)
}

func TestUndoNothingToUndo(t *testing.T) {
	b := New(1, "hello")
	if _, err := b.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestAnchorSurvivesTombstoning(t *testing.T) {
	// Mirrors the scenario where an anchor planted inside a region is
	// deleted out from under it, then restored by Undo.
	b := New(1, "hello")
	anchor, err := b.AnchorBefore(3)
	if err != nil {
		t.Fatalf("AnchorBefore failed: %v", err)
	}

	if _, err := b.Edit([]RangeEdit{{Range: VisibleRange{Start: 1, End: 4}, NewText: ""}}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	off, err := b.ResolveAnchor(anchor)
	if err != nil {
		t.Fatalf("ResolveAnchor failed: %v", err)
	}
	if off != 1 {
		t.Fatalf("ResolveAnchor after delete = %d, want 1", off)
	}

	if _, err := b.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	off, err = b.ResolveAnchor(anchor)
	if err != nil {
		t.Fatalf("ResolveAnchor after undo failed: %v", err)
	}
	if off != 3 {
		t.Fatalf("ResolveAnchor after undo = %d, want 3", off)
	}
}

func TestSummariesForAnchorsBatch(t *testing.T) {
	b := New(1, "hello world")
	a1, _ := b.AnchorBefore(0)
	a2, _ := b.AnchorBefore(5)
	a3, _ := b.AnchorAfter(11)

	summaries := b.SummariesForAnchors([]Anchor{a1, a2, a3})
	if len(summaries) != 3 {
		t.Fatalf("len(summaries) = %d, want 3", len(summaries))
	}
	if summaries[0].Offset != 0 || summaries[1].Offset != 5 || summaries[2].Offset != 11 {
		t.Fatalf("unexpected offsets: %+v", summaries)
	}
	for _, s := range summaries {
		if !s.Visible {
			t.Fatalf("expected all anchors visible, got %+v", s)
		}
	}
}

func TestSnapshotIsolatedFromLaterEdits(t *testing.T) {
	b := New(1, "Hello")
	snap := b.Snapshot()
	if _, err := b.Edit([]RangeEdit{{Range: VisibleRange{Start: 5, End: 5}, NewText: " World"}}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if snap.Text() != "Hello" {
		t.Fatalf("snapshot mutated: got %q, want %q", snap.Text(), "Hello")
	}
	if b.Text() != "Hello World" {
		t.Fatalf("Text() = %q, want %q", b.Text(), "Hello World")
	}
}

func TestContainsStrAtAndIsLineBlank(t *testing.T) {
	b := New(1, "hello\n   \nworld")
	snap := b.Snapshot()
	if !snap.ContainsStrAt(0, "hello") {
		t.Fatal("expected ContainsStrAt(0, \"hello\") true")
	}
	if snap.ContainsStrAt(0, "world") {
		t.Fatal("expected ContainsStrAt(0, \"world\") false")
	}
	if !snap.IsLineBlank(1) {
		t.Fatal("expected line 1 (whitespace-only) to be blank")
	}
	if snap.IsLineBlank(0) {
		t.Fatal("expected line 0 (\"hello\") to not be blank")
	}
}

func TestIndentColumnForLine(t *testing.T) {
	b := New(1, "  indented\nno indent")
	snap := b.Snapshot()
	if got := snap.IndentColumnForLine(0); got != 2 {
		t.Fatalf("IndentColumnForLine(0) = %d, want 2", got)
	}
	if got := snap.IndentColumnForLine(1); got != 0 {
		t.Fatalf("IndentColumnForLine(1) = %d, want 0", got)
	}
}

func TestEditedRangesForTransaction(t *testing.T) {
	b := New(1, "hello world")
	id, _ := b.StartTransaction()
	if _, err := b.Edit([]RangeEdit{{Range: VisibleRange{Start: 0, End: 5}, NewText: "HELLO"}}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	b.EndTransaction()

	tx, ok := b.history.PopUndo()
	if !ok || tx.ID != id {
		t.Fatalf("expected to pop the transaction just ended, got (%v, %v)", tx, ok)
	}
	ranges := b.EditedRangesForTransaction(tx)
	if len(ranges) != 1 {
		t.Fatalf("len(ranges) = %d, want 1", len(ranges))
	}
}

func TestApplyOpsConvergesConcurrentInserts(t *testing.T) {
	a := New(1, "hello")
	bRep := New(2, "hello")

	opA, err := a.Edit([]RangeEdit{{Range: VisibleRange{Start: 5, End: 5}, NewText: "!"}})
	if err != nil {
		t.Fatalf("a.Edit failed: %v", err)
	}
	opB, err := bRep.Edit([]RangeEdit{{Range: VisibleRange{Start: 5, End: 5}, NewText: "?"}})
	if err != nil {
		t.Fatalf("b.Edit failed: %v", err)
	}

	if err := a.ApplyOps([]Operation{{Edit: &opB}}); err != nil {
		t.Fatalf("a.ApplyOps failed: %v", err)
	}
	if err := bRep.ApplyOps([]Operation{{Edit: &opA}}); err != nil {
		t.Fatalf("b.ApplyOps failed: %v", err)
	}

	// Replica 1's "!" carries the lower Lamport stamp (tie-broken by
	// replica id, both seq 2), so it orders before replica 2's "?" on
	// both sides regardless of application order.
	const want = "hello!?"
	if a.Text() != want {
		t.Fatalf("a.Text() = %q, want %q", a.Text(), want)
	}
	if bRep.Text() != want {
		t.Fatalf("bRep.Text() = %q, want %q", bRep.Text(), want)
	}
	if a.Text() != bRep.Text() {
		t.Fatalf("replicas diverged: a=%q b=%q", a.Text(), bRep.Text())
	}
	CheckInvariants(t, a)
	CheckInvariants(t, bRep)
}

func TestApplyOpsConvergesConcurrentInsertsReverseOrder(t *testing.T) {
	// Same scenario as TestApplyOpsConvergesConcurrentInserts but swaps
	// which op each replica receives, guarding against a fix that only
	// happens to work for one application order.
	a := New(1, "hello")
	bRep := New(2, "hello")

	opA, err := a.Edit([]RangeEdit{{Range: VisibleRange{Start: 5, End: 5}, NewText: "!"}})
	if err != nil {
		t.Fatalf("a.Edit failed: %v", err)
	}
	opB, err := bRep.Edit([]RangeEdit{{Range: VisibleRange{Start: 5, End: 5}, NewText: "?"}})
	if err != nil {
		t.Fatalf("b.Edit failed: %v", err)
	}

	if err := bRep.ApplyOps([]Operation{{Edit: &opA}}); err != nil {
		t.Fatalf("b.ApplyOps failed: %v", err)
	}
	if err := a.ApplyOps([]Operation{{Edit: &opB}}); err != nil {
		t.Fatalf("a.ApplyOps failed: %v", err)
	}

	const want = "hello!?"
	if a.Text() != want || bRep.Text() != want {
		t.Fatalf("a=%q b=%q, want both %q", a.Text(), bRep.Text(), want)
	}
	CheckInvariants(t, a)
	CheckInvariants(t, bRep)
}

func TestWaitForEditsResolvesAfterApply(t *testing.T) {
	b := New(1, "hello")
	op, err := b.Edit([]RangeEdit{{Range: VisibleRange{Start: 5, End: 5}, NewText: "!"}})
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := b.WaitForEdits(ctx, []clock.Local{op.Timestamp.Local}); err != nil {
		t.Fatalf("WaitForEdits failed: %v", err)
	}
}

func TestSubscribeDrainReceivesEditPatch(t *testing.T) {
	b := New(1, "hello")
	sub := b.Subscribe()
	if _, err := b.Edit([]RangeEdit{{Range: VisibleRange{Start: 5, End: 5}, NewText: " world"}}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	patch := sub.Drain()
	if len(patch) == 0 {
		t.Fatal("expected at least one patch entry after Edit")
	}
}

// applyPatch replays patch (in EditsSince's byte-offset convention: Old in
// the old text, New the end of the replacement in the new text) against oldText,
// pulling the bytes for every new span out of newText, and returns the
// reconstructed result. Used to check the patch law (spec.md §8): a
// patch from EditsSince(v0), replayed against the v0 text, must
// reproduce the current text.
func applyPatch(oldText, newText string, patch subscription.Patch[rope.ByteOffset]) string {
	var sb strings.Builder
	var oldPos, newPos rope.ByteOffset
	for _, e := range patch {
		sb.WriteString(oldText[oldPos:e.Old.Start])
		newPos += e.Old.Start - oldPos
		sb.WriteString(newText[newPos:e.New])
		newPos = e.New
		oldPos = e.Old.End
	}
	sb.WriteString(oldText[oldPos:])
	return sb.String()
}

func TestEditsSinceReportsFragmentVisibilityChanges(t *testing.T) {
	b := New(1, "hello world")
	since := b.Version()
	sinceText := b.Text()
	if _, err := b.Edit([]RangeEdit{{Range: VisibleRange{Start: 5, End: 11}, NewText: ""}}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	patch := b.EditsSince(since)
	if len(patch) == 0 {
		t.Fatal("expected EditsSince to report the deletion")
	}
	if got, want := applyPatch(sinceText, b.Text(), patch), b.Text(); got != want {
		t.Fatalf("replaying EditsSince(since) against the since-text gave %q, want %q", got, want)
	}
}

func TestEditsSinceReportsInsertionAndReproducesText(t *testing.T) {
	b := New(1, "hello")
	since := b.Version()
	sinceText := b.Text()
	if _, err := b.Edit([]RangeEdit{{Range: VisibleRange{Start: 5, End: 5}, NewText: " world"}}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	patch := b.EditsSince(since)
	if len(patch) == 0 {
		t.Fatal("expected EditsSince to report the insertion")
	}
	if got, want := applyPatch(sinceText, b.Text(), patch), b.Text(); got != want {
		t.Fatalf("replaying EditsSince(since) against the since-text gave %q, want %q", got, want)
	}
}

func TestReadOnlyBufferRejectsMutation(t *testing.T) {
	b := New(1, "hello", WithReadOnly())
	if _, err := b.Edit([]RangeEdit{{Range: VisibleRange{Start: 0, End: 0}, NewText: "x"}}); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
}

func TestConcurrentReads(t *testing.T) {
	b := New(1, "Hello World")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Text()
			_ = b.Len()
		}()
	}
	wg.Wait()
}

func TestDetectLineEnding(t *testing.T) {
	tests := []struct {
		text     string
		expected LineEnding
	}{
		{"no newlines", LineEndingLF},
		{"unix\nstyle\n", LineEndingLF},
		{"windows\r\nstyle\r\n", LineEndingCRLF},
		{"old mac\rstyle\r", LineEndingCR},
	}
	for _, tt := range tests {
		if got := DetectLineEnding(tt.text); got != tt.expected {
			t.Errorf("DetectLineEnding(%q) = %v, want %v", tt.text, got, tt.expected)
		}
	}
}

func TestPointCompare(t *testing.T) {
	p1 := Point{Line: 1, Column: 5}
	p2 := Point{Line: 1, Column: 10}
	p3 := Point{Line: 2, Column: 0}
	if !p1.Before(p2) || !p2.Before(p3) || p2.Before(p1) {
		t.Fatal("Point ordering is inconsistent")
	}
}

func TestGroupedTransactionsMergeIntoOneUndo(t *testing.T) {
	b := New(1, "hello", WithGroupInterval(time.Hour))
	if _, err := b.Edit([]RangeEdit{{Range: VisibleRange{Start: 5, End: 5}, NewText: " world"}}); err != nil {
		t.Fatalf("first Edit failed: %v", err)
	}
	if _, err := b.Edit([]RangeEdit{{Range: VisibleRange{Start: 11, End: 11}, NewText: "!"}}); err != nil {
		t.Fatalf("second Edit failed: %v", err)
	}
	if _, err := b.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if got := b.Text(); got != "hello" {
		t.Fatalf("Text() after single Undo = %q, want %q (both edits should have grouped)", got, "hello")
	}
}

