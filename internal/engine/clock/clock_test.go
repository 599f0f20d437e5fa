package clock_test

import (
	"testing"

	"github.com/dshills/fabric/internal/engine/clock"
)

func TestLocalClockMonotonic(t *testing.T) {
	c := clock.NewLocalClock(1)
	a := c.Tick()
	b := c.Tick()
	if !a.Less(b) {
		t.Fatalf("expected %+v < %+v", a, b)
	}
	if c.Max() != b.Seq {
		t.Fatalf("Max() = %d, want %d", c.Max(), b.Seq)
	}
}

func TestLamportClockObserve(t *testing.T) {
	c := clock.NewLamportClock(1)
	c.Tick() // seq=1
	c.Tick() // seq=2

	// Observing a remote seq lower than ours just bumps by one.
	got := c.Observe(1)
	if got.Seq != 3 {
		t.Fatalf("Observe(1).Seq = %d, want 3", got.Seq)
	}

	// Observing a remote seq higher than ours jumps ahead.
	got = c.Observe(10)
	if got.Seq != 11 {
		t.Fatalf("Observe(10).Seq = %d, want 11", got.Seq)
	}
}

func TestLamportClockWitnessDoesNotMintEvent(t *testing.T) {
	c := clock.NewLamportClock(1)
	c.Tick() // seq=1
	c.Witness(5)
	got := c.Tick()
	if got.Seq != 6 {
		t.Fatalf("Tick().Seq after Witness = %d, want 6", got.Seq)
	}
}

func TestLamportLessTieBreak(t *testing.T) {
	a := clock.Lamport{ReplicaID: 1, Seq: 5}
	b := clock.Lamport{ReplicaID: 2, Seq: 5}
	if !a.Less(b) {
		t.Fatal("expected lower replica id to win a Lamport tie")
	}
}

func TestVersionObserveAndObserved(t *testing.T) {
	v := clock.NewVersion()
	stamp := clock.Local{ReplicaID: 1, Seq: 3}
	if v.Observed(stamp) {
		t.Fatal("unexpected observation on empty version")
	}
	v.Observe(stamp)
	if !v.Observed(stamp) {
		t.Fatal("expected stamp to be observed")
	}
	if !v.Observed(clock.Local{ReplicaID: 1, Seq: 1}) {
		t.Fatal("expected an earlier stamp on the same replica to be observed")
	}
	if v.Observed(clock.Local{ReplicaID: 1, Seq: 4}) {
		t.Fatal("did not expect a later stamp to be observed")
	}
}

func TestVersionObservedAllJoinMeet(t *testing.T) {
	a := clock.NewVersion()
	a.Observe(clock.Local{ReplicaID: 1, Seq: 2})
	b := clock.NewVersion()
	b.Observe(clock.Local{ReplicaID: 1, Seq: 5})
	b.Observe(clock.Local{ReplicaID: 2, Seq: 1})

	if a.ObservedAll(b) {
		t.Fatal("a should not have observed everything in b")
	}
	if !b.ObservedAll(a) {
		t.Fatal("b should have observed everything in a")
	}

	join := a.Join(b)
	if join.Get(1) != 5 || join.Get(2) != 1 {
		t.Fatalf("Join: got replica1=%d replica2=%d", join.Get(1), join.Get(2))
	}

	meet := a.Meet(b)
	if meet.Get(1) != 2 || meet.Get(2) != 0 {
		t.Fatalf("Meet: got replica1=%d replica2=%d", meet.Get(1), meet.Get(2))
	}
}

func TestVersionEqualsCloneIndependence(t *testing.T) {
	a := clock.NewVersion()
	a.Observe(clock.Local{ReplicaID: 1, Seq: 1})
	b := a.Clone()
	if !a.Equals(b) {
		t.Fatal("clone should equal original")
	}
	b.Observe(clock.Local{ReplicaID: 1, Seq: 2})
	if a.Equals(b) {
		t.Fatal("mutating the clone should not affect the original")
	}
}

func TestVersionIsEmptyAndSingle(t *testing.T) {
	v := clock.NewVersion()
	if !v.IsEmpty() {
		t.Fatal("new version should be empty")
	}
	single := clock.Single(clock.Local{ReplicaID: 7, Seq: 9})
	if single.IsEmpty() {
		t.Fatal("Single should not be empty")
	}
	if single.Get(7) != 9 {
		t.Fatalf("Single.Get(7) = %d, want 9", single.Get(7))
	}
}

func TestVersionReplicasSorted(t *testing.T) {
	v := clock.NewVersion()
	v.Observe(clock.Local{ReplicaID: 3, Seq: 1})
	v.Observe(clock.Local{ReplicaID: 1, Seq: 1})
	v.Observe(clock.Local{ReplicaID: 2, Seq: 1})

	got := v.Replicas()
	want := []clock.ReplicaID{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("Replicas() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Replicas() = %v, want %v", got, want)
		}
	}
}
