package server

import (
	"time"

	"github.com/google/uuid"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
)

// webhookPayload mirrors the Meta webhook envelope. One delivery can carry
// several entries, each with direct messages and/or comment changes.
type webhookPayload struct {
	Object string         `json:"object"`
	Entry  []webhookEntry `json:"entry"`
}

type webhookEntry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []messagingEvent `json:"messaging"`
	Changes   []changeEvent    `json:"changes"`
}

type messagingEvent struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Recipient struct {
		ID string `json:"id"`
	} `json:"recipient"`
	Timestamp int64 `json:"timestamp"`
	Message   struct {
		MID    string `json:"mid"`
		Text   string `json:"text"`
		IsEcho bool   `json:"is_echo"`
	} `json:"message"`
}

type changeEvent struct {
	Field string `json:"field"`
	Value struct {
		ID   string `json:"id"`
		Text string `json:"text"`
		From struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"from"`
		Media struct {
			ID string `json:"id"`
		} `json:"media"`
	} `json:"value"`
}

// parseEvents extracts the actionable events from a delivery. Echoes of the
// bot's own messages, self comments, empty texts, and accounts this
// deployment does not manage are skipped here so the scheduler only ever
// sees real inbound activity.
func (s *Server) parseEvents(payload webhookPayload, now time.Time) []domain.Event {
	var events []domain.Event

	for _, entry := range payload.Entry {
		if s.accounts != nil && !s.accounts.Has(entry.ID) {
			continue
		}

		for _, msg := range entry.Messaging {
			if msg.Message.IsEcho || msg.Message.Text == "" {
				continue
			}
			events = append(events, domain.Event{
				ID:         uuid.New(),
				Kind:       domain.KindDirectMessage,
				AccountID:  entry.ID,
				ThreadID:   msg.Sender.ID,
				SenderID:   msg.Sender.ID,
				Text:       msg.Message.Text,
				ReceivedAt: now,
			})
		}

		for _, change := range entry.Changes {
			if change.Field != "comments" {
				continue
			}
			// Replies the bot posts come back as comment events from the
			// account itself.
			if change.Value.From.ID == entry.ID || change.Value.Text == "" {
				continue
			}
			events = append(events, domain.Event{
				ID:         uuid.New(),
				Kind:       domain.KindComment,
				AccountID:  entry.ID,
				ThreadID:   change.Value.ID,
				SenderID:   change.Value.From.ID,
				Text:       change.Value.Text,
				ReceivedAt: now,
			})
		}
	}

	return events
}
