package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
)

// Store is the Redis-backed domain.ConversationStore. All state transitions
// run through Lua scripts, so several replicas can share one Redis and the
// generation fence stays correct across processes. Timer handles are kept in
// a process-local registry: only the process that armed a timer can stop it,
// and a handle this process never saw is simply left to fire and get fenced.
type Store struct {
	rdb     *goredis.Client
	idleTTL time.Duration

	mu      sync.Mutex
	handles map[string]handleEntry
}

type handleEntry struct {
	generation int64
	handle     domain.TimerHandle
}

var _ domain.ConversationStore = (*Store)(nil)

// NewStore creates a conversation store on the given client. idleTTL bounds
// how long an idle conversation's hash survives in Redis; zero disables
// expiry.
func NewStore(client *Client, idleTTL time.Duration) *Store {
	return &Store{
		rdb:     client.rdb,
		idleTTL: idleTTL,
		handles: make(map[string]handleEntry),
	}
}

// AppendAndBump buffers the message, bumps the generation, and returns the
// handle of the timer this event supersedes, if this process armed one.
func (s *Store) AppendAndBump(ctx context.Context, key domain.ConversationKey, msg domain.BufferedMessage) (int64, domain.TimerHandle, error) {
	encoded, err := json.Marshal(msg)
	if err != nil {
		return 0, nil, fmt.Errorf("encode buffered message: %w", err)
	}

	gen, err := appendAndBumpScript.Run(ctx, s.rdb, conversationKeys(key), encoded).Int64()
	if err != nil {
		return 0, nil, storeErr("append and bump", err)
	}

	s.mu.Lock()
	entry, ok := s.handles[key.String()]
	if ok {
		delete(s.handles, key.String())
	}
	s.mu.Unlock()

	if !ok {
		return gen, nil, nil
	}
	return gen, entry.handle, nil
}

// SetPendingHandle records the timer armed for the given generation. A
// handle for an older generation than the one already registered is dropped.
func (s *Store) SetPendingHandle(_ context.Context, key domain.ConversationKey, generation int64, handle domain.TimerHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.handles[key.String()]; ok && entry.generation > generation {
		return nil
	}
	s.handles[key.String()] = handleEntry{generation: generation, handle: handle}
	return nil
}

// TryBeginSend atomically claims the buffered messages if the conversation
// is sendable at the expected generation. A nil batch means the fire was
// stale, a send is already running, or nothing is buffered.
func (s *Store) TryBeginSend(ctx context.Context, key domain.ConversationKey, expected int64) (*domain.SendBatch, error) {
	raw, err := tryBeginSendScript.Run(ctx, s.rdb, conversationKeys(key), strconv.FormatInt(expected, 10)).Result()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("try begin send", err)
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("try begin send: unexpected script reply %T", raw)
	}

	messages := make([]domain.BufferedMessage, 0, len(items))
	for _, item := range items {
		encoded, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("try begin send: unexpected buffer entry %T", item)
		}
		var msg domain.BufferedMessage
		if err := json.Unmarshal([]byte(encoded), &msg); err != nil {
			return nil, fmt.Errorf("decode buffered message: %w", err)
		}
		messages = append(messages, msg)
	}

	return &domain.SendBatch{Key: key, Generation: expected, Messages: messages}, nil
}

// CompleteSend leaves the sending state and drops the local handle entry
// when the conversation went idle.
func (s *Store) CompleteSend(ctx context.Context, key domain.ConversationKey) error {
	stillPending, err := completeSendScript.Run(ctx, s.rdb, conversationKeys(key), strconv.FormatInt(s.idleTTL.Milliseconds(), 10)).Int64()
	if err != nil {
		return storeErr("complete send", err)
	}

	if stillPending == 0 {
		s.mu.Lock()
		delete(s.handles, key.String())
		s.mu.Unlock()
	}
	return nil
}

func conversationKeys(key domain.ConversationKey) []string {
	base := "conv:" + key.String()
	return []string{base, base + ":buffer"}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}
