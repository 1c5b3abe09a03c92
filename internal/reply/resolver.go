// Package reply resolves the outgoing reply text for a consumed
// conversation buffer: generative first, static template fallback.
package reply

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/metrics"
)

// Templates holds the four static fallback replies, keyed by channel kind
// and sentiment.
type Templates struct {
	DMPositive      string
	DMNegative      string
	CommentPositive string
	CommentNegative string
}

// Resolver produces reply text. All generation failures are absorbed into
// the fallback path; Resolve never fails.
type Resolver struct {
	generator    domain.Generator // nil disables generation entirely
	templates    Templates
	systemPrompt string
	timeout      time.Duration
}

func NewResolver(generator domain.Generator, templates Templates, systemPrompt string, timeout time.Duration) *Resolver {
	return &Resolver{
		generator:    generator,
		templates:    templates,
		systemPrompt: systemPrompt,
		timeout:      timeout,
	}
}

// Resolve returns the reply text for the batch plus the source it came from
// ("llm" or "template").
func (r *Resolver) Resolve(ctx context.Context, batch *domain.SendBatch, sentiment domain.SentimentResult) (text, source string) {
	if r.generator != nil {
		genCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		prompt := r.buildPrompt(batch.CombinedText(), sentiment)
		out, err := r.generator.Generate(genCtx, prompt)
		if err == nil && strings.TrimSpace(out) != "" {
			return out, "llm"
		}

		metrics.LLMFallbacksTotal.Inc()
		slog.WarnContext(ctx, "Generation failed, using fallback template",
			"conversation", batch.Key.String(), "error", err)
	}

	return r.fallback(batch.Key.Kind, sentiment.Label), "template"
}

// fallback maps (kind, label) to a template. The mapping is total: NEUTRAL
// uses the positive template on both channels.
func (r *Resolver) fallback(kind domain.ChannelKind, label domain.SentimentLabel) string {
	switch kind {
	case domain.KindComment:
		switch label {
		case domain.SentimentNegative:
			return r.templates.CommentNegative
		case domain.SentimentPositive, domain.SentimentNeutral:
			return r.templates.CommentPositive
		}
	default:
		switch label {
		case domain.SentimentNegative:
			return r.templates.DMNegative
		case domain.SentimentPositive, domain.SentimentNeutral:
			return r.templates.DMPositive
		}
	}
	return r.templates.DMPositive
}

func (r *Resolver) buildPrompt(history string, sentiment domain.SentimentResult) string {
	var b strings.Builder
	b.WriteString(r.systemPrompt)
	b.WriteString(" ")
	b.WriteString(toneInstruction(sentiment.Label))
	b.WriteString(" Message/Conversation input from user: ")
	b.WriteString(history)
	return b.String()
}

func toneInstruction(label domain.SentimentLabel) string {
	switch label {
	case domain.SentimentPositive:
		return "Respond with a very enthusiastic and thankful tone, acknowledging the compliment. Keep it concise and friendly."
	case domain.SentimentNegative:
		return "Respond with an apologetic and helpful tone, asking for more details about the issue so we can improve. Keep it concise and professional."
	default:
		return "Respond in a helpful and neutral tone. Keep it concise and informative."
	}
}
