package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/dshills/fabric/internal/engine/clock"
	"github.com/dshills/fabric/internal/engine/subscription"
)

func TestTopicPublishAndDrain(t *testing.T) {
	topic := subscription.NewTopic[int]()
	sub := topic.Subscribe()

	topic.Publish(subscription.Patch[int]{{Old: subscription.Range[int]{Start: 0, End: 1}, New: 2}})
	topic.Publish(subscription.Patch[int]{{Old: subscription.Range[int]{Start: 5, End: 5}, New: 7}})

	patch := sub.Drain()
	if len(patch) != 2 {
		t.Fatalf("Drain() len = %d, want 2", len(patch))
	}
	if patch[0].New != 2 || patch[1].New != 7 {
		t.Fatalf("Drain() order wrong: %+v", patch)
	}

	// Draining again with nothing new published returns empty.
	if again := sub.Drain(); len(again) != 0 {
		t.Fatalf("second Drain() = %+v, want empty", again)
	}
}

func TestTopicUnsubscribeStopsDelivery(t *testing.T) {
	topic := subscription.NewTopic[int]()
	sub := topic.Subscribe()
	sub.Unsubscribe()

	topic.Publish(subscription.Patch[int]{{New: 1}})
	if got := sub.Drain(); len(got) != 0 {
		t.Fatalf("unsubscribed sub received %+v", got)
	}
}

func TestTopicMultipleSubscribersEachGetTheirOwnCursor(t *testing.T) {
	topic := subscription.NewTopic[int]()
	a := topic.Subscribe()
	topic.Publish(subscription.Patch[int]{{New: 1}})
	b := topic.Subscribe()
	topic.Publish(subscription.Patch[int]{{New: 2}})

	if got := a.Drain(); len(got) != 2 {
		t.Fatalf("a.Drain() len = %d, want 2", len(got))
	}
	if got := b.Drain(); len(got) != 1 {
		t.Fatalf("b.Drain() len = %d, want 1 (subscribed after first publish)", len(got))
	}
}

func TestWaiterResolvesAlreadyObserved(t *testing.T) {
	w := subscription.NewWaiter()
	id := clock.Local{ReplicaID: 1, Seq: 1}

	err := w.Wait(context.Background(), []clock.Local{id}, func(clock.Local) bool { return true })
	if err != nil {
		t.Fatalf("Wait for already-observed stamp: %v", err)
	}
}

func TestWaiterWakesOnNotify(t *testing.T) {
	w := subscription.NewWaiter()
	id := clock.Local{ReplicaID: 1, Seq: 1}

	done := make(chan error, 1)
	go func() {
		done <- w.Wait(context.Background(), []clock.Local{id}, func(clock.Local) bool { return false })
	}()

	// Give the goroutine a moment to register, then notify.
	time.Sleep(10 * time.Millisecond)
	w.Notify(id)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Notify")
	}
}

func TestWaiterContextCancellation(t *testing.T) {
	w := subscription.NewWaiter()
	id := clock.Local{ReplicaID: 1, Seq: 1}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Wait(ctx, []clock.Local{id}, func(clock.Local) bool { return false })
	if err == nil {
		t.Fatal("expected Wait to report the cancelled context")
	}
}
