package instagram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/platform/retry"
)

func testResolver(t *testing.T) *EnvTokenResolver {
	t.Helper()
	resolver, err := NewEnvTokenResolver(`{"acct-1": "token-1"}`)
	require.NoError(t, err)
	return resolver
}

func TestSendDirectMessage(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message_id": "m1"}`))
	}))
	defer server.Close()

	client := NewClient(testResolver(t), WithBaseURL(server.URL))
	err := client.Send(context.Background(), "acct-1", "user-42", domain.KindDirectMessage, "hello")
	require.NoError(t, err)

	assert.Equal(t, "/me/messages", gotPath)
	assert.Equal(t, "Bearer token-1", gotAuth)
	recipient := gotBody["recipient"].(map[string]any)
	message := gotBody["message"].(map[string]any)
	assert.Equal(t, "user-42", recipient["id"])
	assert.Equal(t, "hello", message["text"])
}

func TestReplyToComment(t *testing.T) {
	var gotPath string
	var gotForm map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": "c2"}`))
	}))
	defer server.Close()

	client := NewClient(testResolver(t), WithBaseURL(server.URL))
	err := client.Send(context.Background(), "acct-1", "comment-7", domain.KindComment, "thanks!")
	require.NoError(t, err)

	assert.Equal(t, "/comment-7/replies", gotPath)
	assert.Equal(t, []string{"thanks!"}, gotForm["message"])
	assert.Equal(t, []string{"token-1"}, gotForm["access_token"])
}

func TestSend_UnknownAccountIsPermanent(t *testing.T) {
	client := NewClient(testResolver(t), WithBaseURL("http://unused.invalid"))
	err := client.Send(context.Background(), "missing", "user", domain.KindDirectMessage, "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)

	var permanent *retry.PermanentError
	assert.True(t, errors.As(err, &permanent))
}

func TestSend_GraphErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "Invalid parameter", "type": "OAuthException", "code": 100}}`))
	}))
	defer server.Close()

	client := NewClient(testResolver(t), WithBaseURL(server.URL))
	err := client.Send(context.Background(), "acct-1", "user", domain.KindDirectMessage, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid parameter")

	// A 400 is retryable; only auth failures are permanent.
	var permanent *retry.PermanentError
	assert.False(t, errors.As(err, &permanent))
}

func TestSend_AuthFailureIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "Invalid OAuth access token", "type": "OAuthException", "code": 190}}`))
	}))
	defer server.Close()

	client := NewClient(testResolver(t), WithBaseURL(server.URL))
	err := client.Send(context.Background(), "acct-1", "user", domain.KindDirectMessage, "hi")
	require.Error(t, err)

	var permanent *retry.PermanentError
	assert.True(t, errors.As(err, &permanent))
}

func TestSend_UnknownKindRejected(t *testing.T) {
	client := NewClient(testResolver(t), WithBaseURL("http://unused.invalid"))
	err := client.Send(context.Background(), "acct-1", "user", domain.ChannelKind("carrier_pigeon"), "hi")
	require.Error(t, err)

	var permanent *retry.PermanentError
	assert.True(t, errors.As(err, &permanent))
}
