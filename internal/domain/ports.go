package domain

import (
	"context"
	"time"
)

// TimerHandle is an opaque reference to a scheduled delayed task. Stop is
// best-effort: a false return means the task already fired (or was already
// stopped) and correctness falls back to the generation fence.
type TimerHandle interface {
	Stop() bool
}

// ConversationStore is the single source of truth for debounce state.
// Implementations must serialize operations on the same key; operations on
// different keys must not contend.
type ConversationStore interface {
	// AppendAndBump appends msg to the conversation buffer (creating the
	// conversation if absent), updates last activity, and increments the
	// generation. It returns the new generation together with the previously
	// recorded timer handle, if any, so the caller can attempt cancellation.
	AppendAndBump(ctx context.Context, key ConversationKey, msg BufferedMessage) (generation int64, prev TimerHandle, err error)

	// SetPendingHandle records the timer armed for the given generation. A
	// handle for a superseded generation is ignored.
	SetPendingHandle(ctx context.Context, key ConversationKey, generation int64, handle TimerHandle) error

	// TryBeginSend is the single gate into the SENDING state. If the
	// conversation is not already sending and its generation still equals
	// expected, it transitions to SENDING, clears the buffer atomically, and
	// returns the consumed snapshot. A nil batch with nil error means the
	// fire was stale and the caller must do nothing.
	TryBeginSend(ctx context.Context, key ConversationKey, expected int64) (*SendBatch, error)

	// CompleteSend returns the conversation to IDLE. It is called after every
	// send attempt, successful or not.
	CompleteSend(ctx context.Context, key ConversationKey) error
}

// Messenger posts a reply to the social platform.
type Messenger interface {
	Send(ctx context.Context, accountID, threadID string, kind ChannelKind, text string) error
}

// Generator produces reply text from a prompt. Failures are absorbed by the
// reply resolver, never surfaced past it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TokenResolver maps an account to its platform access token.
type TokenResolver interface {
	AccessToken(ctx context.Context, accountID string) (string, error)
}

// DecisionRecord is the observability record emitted for each reply decision.
type DecisionRecord struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Kind      ChannelKind    `json:"kind"`
	AccountID string         `json:"account_id"`
	ThreadID  string         `json:"thread_id"`
	Sentiment SentimentLabel `json:"sentiment"`
	Score     float64        `json:"score"`
	Source    string         `json:"source"` // "llm" or "template"
	ReplyText string         `json:"reply_text"`
	Outcome   string         `json:"outcome"` // "sent" or "failed"
	Detail    string         `json:"detail,omitempty"`
}

// DecisionSink receives decision records fire-and-forget. Implementations
// must never block the caller.
type DecisionSink interface {
	Emit(record DecisionRecord)
}
