package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChannelKind distinguishes the two inbound channels. The kind is part of the
// conversation key because a DM thread and a comment thread with the same
// counterpart are separate conversations.
type ChannelKind string

const (
	KindDirectMessage ChannelKind = "direct_message"
	KindComment       ChannelKind = "comment"
)

// ConversationKey identifies a distinct message thread.
type ConversationKey struct {
	AccountID string
	ThreadID  string
	Kind      ChannelKind
}

func (k ConversationKey) String() string {
	return k.AccountID + ":" + k.ThreadID + ":" + string(k.Kind)
}

// Event is a single validated inbound webhook event. Events are consumed
// once; each one triggers exactly one conversation state update.
type Event struct {
	ID         uuid.UUID
	Kind       ChannelKind
	AccountID  string
	ThreadID   string
	SenderID   string
	Text       string
	ReceivedAt time.Time
}

// Key returns the conversation key this event belongs to.
func (e Event) Key() ConversationKey {
	return ConversationKey{AccountID: e.AccountID, ThreadID: e.ThreadID, Kind: e.Kind}
}

// ConversationState is the debounce state machine position of a conversation.
type ConversationState string

const (
	StateIdle    ConversationState = "idle"
	StatePending ConversationState = "pending"
	StateSending ConversationState = "sending"
)

// BufferedMessage is one unsent message text held in a conversation buffer.
type BufferedMessage struct {
	SenderID   string    `json:"sender_id"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// SendBatch is the buffer snapshot consumed by a successful TryBeginSend.
// Messages are in arrival order, oldest first.
type SendBatch struct {
	Key        ConversationKey
	Generation int64
	Messages   []BufferedMessage
}

// CombinedText joins the buffered texts in arrival order.
func (b *SendBatch) CombinedText() string {
	texts := make([]string, len(b.Messages))
	for i, m := range b.Messages {
		texts[i] = m.Text
	}
	return strings.Join(texts, "\n")
}

// SentimentLabel classifies the polarity of a text.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// SentimentResult is the outcome of classifying a text. Score is a compound
// polarity in [-1, 1].
type SentimentResult struct {
	Label SentimentLabel
	Score float64
}
