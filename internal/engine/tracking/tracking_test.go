package tracking_test

import (
	"testing"

	"github.com/dshills/fabric/internal/engine/buffer"
	"github.com/dshills/fabric/internal/engine/clock"
	"github.com/dshills/fabric/internal/engine/tracking"
)

func TestTrackerDiffSinceSnapshot(t *testing.T) {
	buf := buffer.New(clock.ReplicaID(1), "abcde")
	tr := tracking.New(buf)

	tr.CreateSnapshot("before")

	edit := buffer.RangeEdit{Range: buffer.VisibleRange{Start: 1, End: 3}, NewText: "XY"}
	if _, err := buf.Edit([]buffer.RangeEdit{edit}); err != nil {
		t.Fatalf("Edit: %v", err)
	}

	patch, ok := tr.DiffSinceSnapshot("before")
	if !ok {
		t.Fatal("expected snapshot to be found")
	}
	if len(patch) == 0 {
		t.Fatal("expected a non-empty patch")
	}

	if _, ok := tr.DiffSinceSnapshot("missing"); ok {
		t.Fatal("expected missing snapshot to report not found")
	}
}

func TestTrackerForgetSnapshot(t *testing.T) {
	buf := buffer.New(clock.ReplicaID(1), "abc")
	tr := tracking.New(buf)

	tr.CreateSnapshot("s1")
	tr.ForgetSnapshot("s1")

	if _, ok := tr.DiffSinceSnapshot("s1"); ok {
		t.Fatal("expected forgotten snapshot to be gone")
	}
}
