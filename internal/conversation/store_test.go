package conversation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
)

type stubHandle struct {
	mu      sync.Mutex
	stopped int
}

func (h *stubHandle) Stop() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped++
	return true
}

func testKey() domain.ConversationKey {
	return domain.ConversationKey{AccountID: "acct", ThreadID: "thread", Kind: domain.KindDirectMessage}
}

func msg(text string) domain.BufferedMessage {
	return domain.BufferedMessage{SenderID: "sender", Text: text}
}

func TestAppendAndBump_CreatesLazily(t *testing.T) {
	store := NewMemoryStore(clockwork.NewFakeClock(), 0)
	assert.Equal(t, 0, store.Len())

	gen, prev, err := store.AppendAndBump(context.Background(), testKey(), msg("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
	assert.Nil(t, prev)
	assert.Equal(t, 1, store.Len())

	state, ok := store.StateOf(testKey())
	require.True(t, ok)
	assert.Equal(t, domain.StatePending, state)
}

func TestAppendAndBump_BumpsGenerationAndReturnsPreviousHandle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(clockwork.NewFakeClock(), 0)

	gen1, _, err := store.AppendAndBump(ctx, testKey(), msg("one"))
	require.NoError(t, err)
	handle := &stubHandle{}
	require.NoError(t, store.SetPendingHandle(ctx, testKey(), gen1, handle))

	gen2, prev, err := store.AppendAndBump(ctx, testKey(), msg("two"))
	require.NoError(t, err)
	assert.Equal(t, gen1+1, gen2)
	assert.Same(t, handle, prev)
}

func TestSetPendingHandle_IgnoresStaleGeneration(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(clockwork.NewFakeClock(), 0)

	gen1, _, err := store.AppendAndBump(ctx, testKey(), msg("one"))
	require.NoError(t, err)
	gen2, _, err := store.AppendAndBump(ctx, testKey(), msg("two"))
	require.NoError(t, err)

	stale := &stubHandle{}
	current := &stubHandle{}
	require.NoError(t, store.SetPendingHandle(ctx, testKey(), gen2, current))
	require.NoError(t, store.SetPendingHandle(ctx, testKey(), gen1, stale))

	_, prev, err := store.AppendAndBump(ctx, testKey(), msg("three"))
	require.NoError(t, err)
	assert.Same(t, current, prev)
}

func TestTryBeginSend_ConsumesBufferInArrivalOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(clockwork.NewFakeClock(), 0)

	store.AppendAndBump(ctx, testKey(), msg("first"))
	store.AppendAndBump(ctx, testKey(), msg("second"))
	gen, _, _ := store.AppendAndBump(ctx, testKey(), msg("third"))

	batch, err := store.TryBeginSend(ctx, testKey(), gen)
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.Equal(t, "first\nsecond\nthird", batch.CombinedText())

	state, _ := store.StateOf(testKey())
	assert.Equal(t, domain.StateSending, state)

	// Buffer is consumed: a second gate attempt finds nothing.
	again, err := store.TryBeginSend(ctx, testKey(), gen)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestTryBeginSend_StaleGenerationIsInert(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(clockwork.NewFakeClock(), 0)

	gen1, _, _ := store.AppendAndBump(ctx, testKey(), msg("one"))
	store.AppendAndBump(ctx, testKey(), msg("two"))

	batch, err := store.TryBeginSend(ctx, testKey(), gen1)
	require.NoError(t, err)
	assert.Nil(t, batch)

	state, _ := store.StateOf(testKey())
	assert.Equal(t, domain.StatePending, state)
}

func TestTryBeginSend_UnknownKeyIsInert(t *testing.T) {
	store := NewMemoryStore(clockwork.NewFakeClock(), 0)
	batch, err := store.TryBeginSend(context.Background(), testKey(), 1)
	require.NoError(t, err)
	assert.Nil(t, batch)
	assert.Equal(t, 0, store.Len())
}

func TestTryBeginSend_NoDoubleSend(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(clockwork.NewFakeClock(), 0)
	gen, _, _ := store.AppendAndBump(ctx, testKey(), msg("burst"))

	const fires = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	won := 0
	for range fires {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch, err := store.TryBeginSend(ctx, testKey(), gen)
			assert.NoError(t, err)
			if batch != nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, won)
}

func TestCompleteSend_ReturnsToIdle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(clockwork.NewFakeClock(), 0)

	gen, _, _ := store.AppendAndBump(ctx, testKey(), msg("one"))
	_, err := store.TryBeginSend(ctx, testKey(), gen)
	require.NoError(t, err)

	require.NoError(t, store.CompleteSend(ctx, testKey()))
	state, _ := store.StateOf(testKey())
	assert.Equal(t, domain.StateIdle, state)
}

func TestCompleteSend_StaysPendingWhenEventsArrivedDuringSend(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(clockwork.NewFakeClock(), 0)

	gen, _, _ := store.AppendAndBump(ctx, testKey(), msg("one"))
	_, err := store.TryBeginSend(ctx, testKey(), gen)
	require.NoError(t, err)

	// Arrives mid-send; its own timer is already armed.
	newGen, _, _ := store.AppendAndBump(ctx, testKey(), msg("two"))
	require.NoError(t, store.CompleteSend(ctx, testKey()))

	state, _ := store.StateOf(testKey())
	assert.Equal(t, domain.StatePending, state)

	batch, err := store.TryBeginSend(ctx, testKey(), newGen)
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.Equal(t, "two", batch.CombinedText())
}

func TestSweep_EvictsOnlyExpiredIdleConversations(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(clock, time.Hour)

	idleKey := domain.ConversationKey{AccountID: "a", ThreadID: "idle", Kind: domain.KindComment}
	busyKey := domain.ConversationKey{AccountID: "a", ThreadID: "busy", Kind: domain.KindComment}

	gen, _, _ := store.AppendAndBump(ctx, idleKey, msg("old"))
	_, err := store.TryBeginSend(ctx, idleKey, gen)
	require.NoError(t, err)
	require.NoError(t, store.CompleteSend(ctx, idleKey))

	clock.Advance(2 * time.Hour)
	store.AppendAndBump(ctx, busyKey, msg("pending, must survive"))

	store.sweep()

	assert.Equal(t, 1, store.Len())
	_, ok := store.StateOf(idleKey)
	assert.False(t, ok)
	state, ok := store.StateOf(busyKey)
	assert.True(t, ok)
	assert.Equal(t, domain.StatePending, state)
}

func TestSweep_RecreatesAfterEviction(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(clock, time.Minute)

	gen, _, _ := store.AppendAndBump(ctx, testKey(), msg("one"))
	store.TryBeginSend(ctx, testKey(), gen)
	store.CompleteSend(ctx, testKey())

	clock.Advance(2 * time.Minute)
	store.sweep()
	require.Equal(t, 0, store.Len())

	// A fresh event recreates the conversation from scratch.
	gen2, prev, err := store.AppendAndBump(ctx, testKey(), msg("again"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen2)
	assert.Nil(t, prev)
	assert.Equal(t, 1, store.Len())
}
