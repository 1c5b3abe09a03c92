package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/metrics"
)

const evictionSweepInterval = 5 * time.Minute

type conversationRecord struct {
	mu           sync.Mutex
	state        domain.ConversationState
	generation   int64
	buffer       []domain.BufferedMessage
	lastActivity time.Time
	pending      domain.TimerHandle
	pendingGen   int64
	// Set while holding both the map lock and the record lock. A caller that
	// fetched the record before eviction re-resolves it from the map.
	evicted bool
}

// MemoryStore is the single-process ConversationStore. Per-key operations
// serialize on the record mutex; different keys never contend beyond the
// map lookup.
type MemoryStore struct {
	clock   clockwork.Clock
	idleTTL time.Duration

	mu            sync.Mutex
	conversations map[domain.ConversationKey]*conversationRecord
}

var _ domain.ConversationStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store. idleTTL bounds how long an idle,
// empty conversation survives before the eviction sweep removes it; zero
// disables eviction.
func NewMemoryStore(clock clockwork.Clock, idleTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		clock:         clock,
		idleTTL:       idleTTL,
		conversations: make(map[domain.ConversationKey]*conversationRecord),
	}
}

// lockRecord returns the record for key with its mutex held, creating it
// lazily. It retries if the record was evicted between lookup and lock.
func (s *MemoryStore) lockRecord(key domain.ConversationKey, create bool) *conversationRecord {
	for {
		s.mu.Lock()
		rec, ok := s.conversations[key]
		if !ok {
			if !create {
				s.mu.Unlock()
				return nil
			}
			rec = &conversationRecord{state: domain.StateIdle}
			s.conversations[key] = rec
		}
		s.mu.Unlock()

		rec.mu.Lock()
		if !rec.evicted {
			return rec
		}
		rec.mu.Unlock()
	}
}

func (s *MemoryStore) AppendAndBump(_ context.Context, key domain.ConversationKey, msg domain.BufferedMessage) (int64, domain.TimerHandle, error) {
	rec := s.lockRecord(key, true)
	defer rec.mu.Unlock()

	rec.buffer = append(rec.buffer, msg)
	rec.lastActivity = s.clock.Now()
	rec.generation++
	if rec.state == domain.StateIdle {
		rec.state = domain.StatePending
	}

	prev := rec.pending
	rec.pending = nil
	return rec.generation, prev, nil
}

func (s *MemoryStore) SetPendingHandle(_ context.Context, key domain.ConversationKey, generation int64, handle domain.TimerHandle) error {
	rec := s.lockRecord(key, false)
	if rec == nil {
		return nil
	}
	defer rec.mu.Unlock()

	// A handle for a superseded generation must not clobber the current one.
	if rec.generation == generation {
		rec.pending = handle
		rec.pendingGen = generation
	}
	return nil
}

func (s *MemoryStore) TryBeginSend(_ context.Context, key domain.ConversationKey, expected int64) (*domain.SendBatch, error) {
	rec := s.lockRecord(key, false)
	if rec == nil {
		return nil, nil
	}
	defer rec.mu.Unlock()

	if rec.state == domain.StateSending {
		return nil, nil
	}
	if rec.generation != expected {
		return nil, nil
	}
	if len(rec.buffer) == 0 {
		return nil, nil
	}

	batch := &domain.SendBatch{
		Key:        key,
		Generation: rec.generation,
		Messages:   rec.buffer,
	}
	rec.buffer = nil
	rec.state = domain.StateSending
	rec.pending = nil
	return batch, nil
}

func (s *MemoryStore) CompleteSend(_ context.Context, key domain.ConversationKey) error {
	rec := s.lockRecord(key, false)
	if rec == nil {
		return nil
	}
	defer rec.mu.Unlock()

	// Events buffered during the send leave the conversation PENDING: their
	// timer is already armed and must find a sendable state when it fires.
	if len(rec.buffer) > 0 {
		rec.state = domain.StatePending
	} else {
		rec.state = domain.StateIdle
	}
	rec.lastActivity = s.clock.Now()
	return nil
}

// Run drives the idle eviction sweep until ctx is cancelled. Eviction only
// touches conversations that are IDLE with an empty buffer.
func (s *MemoryStore) Run(ctx context.Context) {
	if s.idleTTL <= 0 {
		<-ctx.Done()
		return
	}

	ticker := s.clock.NewTicker(evictionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, rec := range s.conversations {
		rec.mu.Lock()
		expired := rec.state == domain.StateIdle &&
			len(rec.buffer) == 0 &&
			now.Sub(rec.lastActivity) > s.idleTTL
		if expired {
			rec.evicted = true
			delete(s.conversations, key)
			metrics.ConversationsEvictedTotal.Inc()
		}
		rec.mu.Unlock()
	}
}

// Len reports the number of live conversations. Used by tests and the
// readiness handler.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// StateOf exposes a conversation's current state for tests and diagnostics.
func (s *MemoryStore) StateOf(key domain.ConversationKey) (domain.ConversationState, bool) {
	s.mu.Lock()
	rec, ok := s.conversations[key]
	s.mu.Unlock()
	if !ok {
		return domain.StateIdle, false
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.state, true
}
