package conversation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/metrics"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/platform/correlation"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/platform/retry"
)

// Classifier scores a text. Satisfied by sentiment.Analyzer.
type Classifier interface {
	Analyze(text string) domain.SentimentResult
}

// Resolver produces the reply text for a consumed batch. Satisfied by
// reply.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, batch *domain.SendBatch, sentiment domain.SentimentResult) (text, source string)
}

// Scheduler is the delay scheduler: it owns all writes to conversation
// records and drives the send pipeline when a timer fires.
type Scheduler struct {
	store      domain.ConversationStore
	classifier Classifier
	resolver   Resolver
	messenger  domain.Messenger
	sink       domain.DecisionSink // nil disables decision records
	clock      clockwork.Clock
	jitter     JitterPolicy

	sendTimeout     time.Duration
	maxSendAttempts int
	sendBackoff     time.Duration

	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// SchedulerOptions bundles the send policy knobs.
type SchedulerOptions struct {
	SendTimeout     time.Duration
	MaxSendAttempts int
	SendBackoff     time.Duration
}

func NewScheduler(store domain.ConversationStore, classifier Classifier, resolver Resolver, messenger domain.Messenger, sink domain.DecisionSink, clock clockwork.Clock, jitter JitterPolicy, opts SchedulerOptions) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		store:           store,
		classifier:      classifier,
		resolver:        resolver,
		messenger:       messenger,
		sink:            sink,
		clock:           clock,
		jitter:          jitter,
		sendTimeout:     opts.SendTimeout,
		maxSendAttempts: opts.MaxSendAttempts,
		sendBackoff:     opts.SendBackoff,
		baseCtx:         ctx,
		cancel:          cancel,
	}
}

// HandleEvent applies one validated event: buffer it, bump the generation,
// cancel the superseded timer best-effort, and arm a fresh delay. The only
// error path is a store failure, in which case the event is dropped.
func (s *Scheduler) HandleEvent(ctx context.Context, ev domain.Event) error {
	key := ev.Key()
	msg := domain.BufferedMessage{SenderID: ev.SenderID, Text: ev.Text, ReceivedAt: ev.ReceivedAt}

	generation, prev, err := s.store.AppendAndBump(ctx, key, msg)
	if err != nil {
		metrics.EventsDroppedTotal.WithLabelValues("store_unavailable").Inc()
		slog.ErrorContext(ctx, "Dropping event, store unavailable",
			"conversation", key.String(), "error", err)
		return err
	}

	followUp := prev != nil
	if followUp {
		// Advisory only. A timer that already fired is stopped by the
		// generation fence, not by this call.
		prev.Stop()
		metrics.DebounceReschedulesTotal.Inc()
	}

	delay := s.jitter.Delay(ev.Kind, followUp)
	timer := s.clock.AfterFunc(delay, func() {
		s.fire(key, generation)
	})
	if err := s.store.SetPendingHandle(ctx, key, generation, timerHandle{timer}); err != nil {
		slog.WarnContext(ctx, "Failed to record pending handle",
			"conversation", key.String(), "error", err)
	}

	metrics.EventsReceivedTotal.WithLabelValues(string(ev.Kind)).Inc()
	slog.InfoContext(ctx, "Reply scheduled",
		"conversation", key.String(),
		"generation", generation,
		"delay", delay,
		"rescheduled", followUp,
	)
	return nil
}

// fire runs in the timer's goroutine. Generation fencing makes stale fires
// inert; everything past TryBeginSend runs with the conversation in SENDING.
func (s *Scheduler) fire(key domain.ConversationKey, generation int64) {
	if !s.beginTask() {
		return
	}
	defer s.wg.Done()

	ctx := correlation.WithID(s.baseCtx, correlation.NewID())

	batch, err := s.store.TryBeginSend(ctx, key, generation)
	if err != nil {
		slog.ErrorContext(ctx, "TryBeginSend failed",
			"conversation", key.String(), "generation", generation, "error", err)
		return
	}
	if batch == nil {
		metrics.StaleFiresTotal.Inc()
		slog.DebugContext(ctx, "Stale timer fire, nothing to do",
			"conversation", key.String(), "generation", generation)
		return
	}

	defer func() {
		if err := s.store.CompleteSend(context.WithoutCancel(ctx), key); err != nil {
			slog.ErrorContext(ctx, "CompleteSend failed",
				"conversation", key.String(), "error", err)
		}
	}()

	started := s.clock.Now()
	sentiment := s.classifier.Analyze(batch.CombinedText())
	text, source := s.resolver.Resolve(ctx, batch, sentiment)

	err = retry.DoVoid(ctx, retry.Policy{
		MaxAttempts:    s.maxSendAttempts,
		InitialBackoff: s.sendBackoff,
		Clock:          s.clock,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.WarnContext(ctx, "Send attempt failed, backing off",
				"conversation", key.String(), "attempt", attempt, "backoff", backoff, "error", err)
		},
	}, func() error {
		sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
		defer cancel()
		return s.messenger.Send(sendCtx, key.AccountID, key.ThreadID, key.Kind, text)
	})

	metrics.SendDuration.Observe(s.clock.Since(started).Seconds())

	outcome := "sent"
	detail := ""
	if err != nil {
		// The buffered text is gone for good: no requeue, no merge into a
		// future cycle.
		outcome = "failed"
		detail = err.Error()
		metrics.SendsTotal.WithLabelValues(string(key.Kind), "failure").Inc()
		slog.ErrorContext(ctx, "Reply lost after exhausting retries",
			"conversation", key.String(),
			"messages", len(batch.Messages),
			"error", err)
	} else {
		metrics.SendsTotal.WithLabelValues(string(key.Kind), "success").Inc()
		slog.InfoContext(ctx, "Reply sent",
			"conversation", key.String(),
			"messages", len(batch.Messages),
			"sentiment", sentiment.Label,
			"source", source)
	}

	if s.sink != nil {
		s.sink.Emit(domain.DecisionRecord{
			ID:        correlationOrEmpty(ctx),
			Timestamp: s.clock.Now(),
			Kind:      key.Kind,
			AccountID: key.AccountID,
			ThreadID:  key.ThreadID,
			Sentiment: sentiment.Label,
			Score:     sentiment.Score,
			Source:    source,
			ReplyText: text,
			Outcome:   outcome,
			Detail:    detail,
		})
	}
}

// beginTask registers an in-flight fire unless the scheduler has stopped.
func (s *Scheduler) beginTask() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.wg.Add(1)
	return true
}

// Stop prevents new fires from starting and waits for in-flight sends to
// drain. Sends are bounded by their own timeouts and retry caps, so the
// wait terminates.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.wg.Wait()
	s.cancel()
}

func correlationOrEmpty(ctx context.Context) string {
	id, _ := correlation.ID(ctx)
	return id
}

// timerHandle adapts a clockwork timer to the store's TimerHandle.
type timerHandle struct {
	timer clockwork.Timer
}

func (h timerHandle) Stop() bool {
	return h.timer.Stop()
}
