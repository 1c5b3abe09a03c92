package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
)

type noopHandle struct{ name string }

func (noopHandle) Stop() bool { return true }

func TestConversationKeys(t *testing.T) {
	key := domain.ConversationKey{AccountID: "17841", ThreadID: "99", Kind: domain.KindComment}
	keys := conversationKeys(key)
	assert.Equal(t, []string{"conv:17841:99:comment", "conv:17841:99:comment:buffer"}, keys)
}

func TestSetPendingHandle_KeepsNewestGeneration(t *testing.T) {
	store := &Store{handles: make(map[string]handleEntry)}
	key := domain.ConversationKey{AccountID: "a", ThreadID: "t", Kind: domain.KindDirectMessage}

	current := noopHandle{name: "current"}
	stale := noopHandle{name: "stale"}

	require.NoError(t, store.SetPendingHandle(context.Background(), key, 2, current))
	require.NoError(t, store.SetPendingHandle(context.Background(), key, 1, stale))

	entry := store.handles[key.String()]
	assert.Equal(t, int64(2), entry.generation)
	assert.Equal(t, current, entry.handle)
}

func TestSetPendingHandle_ReplacesOlderGeneration(t *testing.T) {
	store := &Store{handles: make(map[string]handleEntry)}
	key := domain.ConversationKey{AccountID: "a", ThreadID: "t", Kind: domain.KindDirectMessage}

	require.NoError(t, store.SetPendingHandle(context.Background(), key, 1, noopHandle{name: "old"}))
	require.NoError(t, store.SetPendingHandle(context.Background(), key, 2, noopHandle{name: "new"}))

	entry := store.handles[key.String()]
	assert.Equal(t, int64(2), entry.generation)
	assert.Equal(t, noopHandle{name: "new"}, entry.handle)
}

func TestStoreErrWrapsUnavailableSentinel(t *testing.T) {
	err := storeErr("append and bump", assert.AnError)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "append and bump")
}
