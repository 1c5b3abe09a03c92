package broadcast

import (
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
)

func record(id string) domain.DecisionRecord {
	return domain.DecisionRecord{
		ID:        id,
		Kind:      domain.KindDirectMessage,
		AccountID: "acct",
		ThreadID:  "thread",
		Sentiment: domain.SentimentPositive,
		Source:    "template",
		ReplyText: "thanks",
		Outcome:   "sent",
	}
}

func newTestLog(t *testing.T, capacity int) *EventLog {
	t.Helper()
	log := NewEventLog(capacity, clockwork.NewRealClock())
	t.Cleanup(log.Stop)
	return log
}

func TestEventLog_RecentReturnsEmittedRecords(t *testing.T) {
	log := newTestLog(t, 10)

	log.Emit(record("a"))
	log.Emit(record("b"))

	assert.Eventually(t, func() bool {
		return len(log.Recent()) == 2
	}, time.Second, 10*time.Millisecond)

	records := log.Recent()
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
}

func TestEventLog_RingDropsOldestBeyondCapacity(t *testing.T) {
	log := newTestLog(t, 3)

	for i := range 5 {
		log.Emit(record(fmt.Sprintf("r%d", i)))
	}

	assert.Eventually(t, func() bool {
		records := log.Recent()
		return len(records) == 3 && records[0].ID == "r2" && records[2].ID == "r4"
	}, time.Second, 10*time.Millisecond)
}

func TestEventLog_SubscriberReceivesNewRecords(t *testing.T) {
	log := newTestLog(t, 10)

	ch, cancel := log.Subscribe()
	defer cancel()

	log.Emit(record("live"))

	select {
	case got := <-ch:
		assert.Equal(t, "live", got.ID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for record")
	}
}

func TestEventLog_CancelClosesChannel(t *testing.T) {
	log := newTestLog(t, 10)

	ch, cancel := log.Subscribe()
	cancel()

	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestEventLog_SlowSubscriberIsDropped(t *testing.T) {
	log := newTestLog(t, 256)

	ch, cancel := log.Subscribe()
	defer cancel()

	// Never read while emitting: overflow the subscriber buffer.
	const emitted = subscriberBuffer + 8
	for i := range emitted {
		log.Emit(record(fmt.Sprintf("r%d", i)))
	}

	// Recent goes through the same actor loop, so once all records show up
	// every emit has been handled and the overflow dropped the subscriber.
	require.Eventually(t, func() bool {
		return len(log.Recent()) == emitted
	}, 2*time.Second, 10*time.Millisecond)

	// Drain what was buffered before the drop, then observe the close.
	received := 0
	for {
		select {
		case _, open := <-ch:
			if !open {
				assert.LessOrEqual(t, received, subscriberBuffer)
				return
			}
			received++
		case <-time.After(time.Second):
			t.Fatal("subscriber channel never closed")
		}
	}
}

func TestEventLog_StopClosesSubscribers(t *testing.T) {
	log := NewEventLog(10, clockwork.NewRealClock())

	ch, _ := log.Subscribe()
	log.Stop()

	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after stop")
	}

	// Stop again is a no-op, and reads after stop return nothing.
	log.Stop()
	assert.Nil(t, log.Recent())
}
