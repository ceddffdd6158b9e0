package broadcast

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishPreservesOrder(t *testing.T) {
	t.Parallel()

	b := New()
	ch, cancel := b.Subscribe("job-1")
	defer cancel()

	for i := 0; i < 20; i++ {
		b.Publish(Event{JobID: "job-1", Status: StatusProcessing, Message: fmt.Sprintf("step-%d", i)})
	}

	for i := 0; i < 20; i++ {
		ev := <-ch
		assert.Equal(t, fmt.Sprintf("step-%d", i), ev.Message)
	}
}

func TestFanOutToAllSubscribers(t *testing.T) {
	t.Parallel()

	b := New()
	ch1, cancel1 := b.Subscribe("job-1")
	defer cancel1()
	ch2, cancel2 := b.Subscribe("job-1")
	defer cancel2()

	b.Publish(Event{JobID: "job-1", Status: StatusCompleted})

	ev1 := <-ch1
	ev2 := <-ch2
	assert.Equal(t, StatusCompleted, ev1.Status)
	assert.Equal(t, StatusCompleted, ev2.Status)
}

func TestPublishIsolatesJobs(t *testing.T) {
	t.Parallel()

	b := New()
	ch, cancel := b.Subscribe("job-1")
	defer cancel()

	b.Publish(Event{JobID: "job-2", Status: StatusFailed})

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event for other job: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLateSubscriberGetsNoHistory(t *testing.T) {
	t.Parallel()

	b := New()
	b.Publish(Event{JobID: "job-1", Status: StatusProcessing})

	ch, cancel := b.Subscribe("job-1")
	defer cancel()

	select {
	case ev := <-ch:
		t.Fatalf("late subscriber received history: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCancelClosesChannelAndUnregisters(t *testing.T) {
	t.Parallel()

	b := New()
	ch, cancel := b.Subscribe("job-1")
	require.Equal(t, 1, b.SubscriberCount("job-1"))

	cancel()
	cancel() // idempotent

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, b.SubscriberCount("job-1"))
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	t.Parallel()

	b := New()
	_, cancel := b.Subscribe("job-1")
	defer cancel()

	done := make(chan struct{})
	go func() {
		// Publish far beyond the buffer; must never block.
		for i := 0; i < subscriberBuffer*2; i++ {
			b.Publish(Event{JobID: "job-1", Status: StatusReportChunk})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}
}

func TestPublishStampsTimestamp(t *testing.T) {
	t.Parallel()

	b := New()
	ch, cancel := b.Subscribe("job-1")
	defer cancel()

	b.Publish(Event{JobID: "job-1", Status: StatusProcessing})
	ev := <-ch
	assert.False(t, ev.Timestamp.IsZero())
}
