package broadcast

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/metrics"
)

const (
	commandBuffer    = 256
	subscriberBuffer = 16
	stopTimeout      = 10 * time.Second
)

// eventLogCmd is the command interface for the EventLog actor.
type eventLogCmd interface{ isEventLogCmd() }

type baseEventLogCmd struct{}

func (baseEventLogCmd) isEventLogCmd() {}

type emitCmd struct {
	baseEventLogCmd
	record domain.DecisionRecord
}

type subscribeCmd struct {
	baseEventLogCmd
	replyChannel chan *subscriber
}

type unsubscribeCmd struct {
	baseEventLogCmd
	sub *subscriber
}

type recentCmd struct {
	baseEventLogCmd
	replyChannel chan []domain.DecisionRecord
}

type stopEventLogCmd struct {
	baseEventLogCmd
}

type subscriber struct {
	ch chan domain.DecisionRecord
}

// EventLog retains the most recent reply decisions in a bounded ring and
// pushes new ones to subscribers. It satisfies domain.DecisionSink.
type EventLog struct {
	cmdCh chan eventLogCmd
	clock clockwork.Clock
	done  chan struct{}

	capacity    int
	ring        []domain.DecisionRecord
	subscribers map[*subscriber]struct{}
}

var _ domain.DecisionSink = (*EventLog)(nil)

// NewEventLog starts the actor. capacity bounds the retained history.
func NewEventLog(capacity int, clock clockwork.Clock) *EventLog {
	l := &EventLog{
		cmdCh:       make(chan eventLogCmd, commandBuffer),
		clock:       clock,
		done:        make(chan struct{}),
		capacity:    capacity,
		ring:        make([]domain.DecisionRecord, 0, capacity),
		subscribers: make(map[*subscriber]struct{}),
	}
	go l.run()
	return l
}

// Emit appends a record. Non-blocking: when the command buffer is full the
// record is dropped rather than stalling the send pipeline.
func (l *EventLog) Emit(record domain.DecisionRecord) {
	select {
	case l.cmdCh <- emitCmd{record: record}:
	default:
		metrics.EventLogDroppedTotal.Inc()
		slog.Warn("Event log command buffer full, dropping record", "record_id", record.ID)
	}
}

// Subscribe returns a channel of future records and a cancel function. The
// channel is closed on cancel or shutdown.
func (l *EventLog) Subscribe() (<-chan domain.DecisionRecord, func()) {
	replyCh := make(chan *subscriber, 1)
	l.cmdCh <- subscribeCmd{replyChannel: replyCh}
	sub := <-replyCh

	cancel := func() {
		select {
		case l.cmdCh <- unsubscribeCmd{sub: sub}:
		case <-l.done:
		}
	}
	return sub.ch, cancel
}

// Recent returns the retained records, oldest first.
func (l *EventLog) Recent() []domain.DecisionRecord {
	replyCh := make(chan []domain.DecisionRecord, 1)
	select {
	case l.cmdCh <- recentCmd{replyChannel: replyCh}:
	case <-l.done:
		return nil
	}
	select {
	case records := <-replyCh:
		return records
	case <-l.done:
		return nil
	}
}

// Stop shuts down the actor and closes all subscriber channels.
func (l *EventLog) Stop() {
	select {
	case l.cmdCh <- stopEventLogCmd{}:
	case <-l.done:
		return
	}

	timeout := l.clock.NewTimer(stopTimeout)
	defer timeout.Stop()

	select {
	case <-l.done:
	case <-timeout.Chan():
		slog.Warn("Event log stop timeout exceeded", "timeout", stopTimeout)
	}
}

func (l *EventLog) run() {
	defer close(l.done)

	for cmd := range l.cmdCh {
		switch c := cmd.(type) {
		case emitCmd:
			l.handleEmit(c.record)
		case subscribeCmd:
			sub := &subscriber{ch: make(chan domain.DecisionRecord, subscriberBuffer)}
			l.subscribers[sub] = struct{}{}
			metrics.EventLogSubscribers.Set(float64(len(l.subscribers)))
			c.replyChannel <- sub
		case unsubscribeCmd:
			l.removeSubscriber(c.sub)
		case recentCmd:
			records := make([]domain.DecisionRecord, len(l.ring))
			copy(records, l.ring)
			c.replyChannel <- records
		case stopEventLogCmd:
			for sub := range l.subscribers {
				close(sub.ch)
				delete(l.subscribers, sub)
			}
			metrics.EventLogSubscribers.Set(0)
			return
		}
	}
}

func (l *EventLog) handleEmit(record domain.DecisionRecord) {
	if len(l.ring) == l.capacity {
		l.ring = append(l.ring[:0], l.ring[1:]...)
		l.ring = append(l.ring, record)
	} else {
		l.ring = append(l.ring, record)
	}

	var slow []*subscriber
	for sub := range l.subscribers {
		select {
		case sub.ch <- record:
		default:
			slow = append(slow, sub)
		}
	}

	// A subscriber that cannot keep up with a buffered channel is gone or
	// wedged; drop it instead of queueing unboundedly.
	for _, sub := range slow {
		metrics.EventLogDroppedTotal.Inc()
		slog.Warn("Dropping slow decision stream subscriber")
		l.removeSubscriber(sub)
	}
}

func (l *EventLog) removeSubscriber(sub *subscriber) {
	if _, ok := l.subscribers[sub]; !ok {
		return
	}
	close(sub.ch)
	delete(l.subscribers, sub)
	metrics.EventLogSubscribers.Set(float64(len(l.subscribers)))
}
