package reply

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
	"github.com/stretchr/testify/assert"
)

var testTemplates = Templates{
	DMPositive:      "dm positive",
	DMNegative:      "dm negative",
	CommentPositive: "comment positive",
	CommentNegative: "comment negative",
}

type stubGenerator struct {
	out    string
	err    error
	prompt string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.out, s.err
}

func batchFor(kind domain.ChannelKind, texts ...string) *domain.SendBatch {
	msgs := make([]domain.BufferedMessage, len(texts))
	for i, txt := range texts {
		msgs[i] = domain.BufferedMessage{SenderID: "u1", Text: txt}
	}
	return &domain.SendBatch{
		Key:        domain.ConversationKey{AccountID: "a1", ThreadID: "t1", Kind: kind},
		Generation: 1,
		Messages:   msgs,
	}
}

func TestResolve_GeneratorSuccessReturnsVerbatim(t *testing.T) {
	gen := &stubGenerator{out: "  generated reply  "}
	r := NewResolver(gen, testTemplates, "system", time.Second)

	text, source := r.Resolve(context.Background(), batchFor(domain.KindDirectMessage, "hi"), domain.SentimentResult{Label: domain.SentimentPositive})

	assert.Equal(t, "  generated reply  ", text)
	assert.Equal(t, "llm", source)
}

func TestResolve_GeneratorFailureFallsBack(t *testing.T) {
	tests := []struct {
		name  string
		kind  domain.ChannelKind
		label domain.SentimentLabel
		want  string
	}{
		{"dm negative", domain.KindDirectMessage, domain.SentimentNegative, "dm negative"},
		{"dm positive", domain.KindDirectMessage, domain.SentimentPositive, "dm positive"},
		{"dm neutral maps to positive", domain.KindDirectMessage, domain.SentimentNeutral, "dm positive"},
		{"comment negative", domain.KindComment, domain.SentimentNegative, "comment negative"},
		{"comment positive", domain.KindComment, domain.SentimentPositive, "comment positive"},
		{"comment neutral maps to positive", domain.KindComment, domain.SentimentNeutral, "comment positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{err: errors.New("llm down")}
			r := NewResolver(gen, testTemplates, "system", time.Second)

			text, source := r.Resolve(context.Background(), batchFor(tt.kind, "msg"), domain.SentimentResult{Label: tt.label})

			assert.Equal(t, tt.want, text)
			assert.Equal(t, "template", source)
		})
	}
}

func TestResolve_EmptyGenerationFallsBack(t *testing.T) {
	gen := &stubGenerator{out: "   "}
	r := NewResolver(gen, testTemplates, "system", time.Second)

	text, source := r.Resolve(context.Background(), batchFor(domain.KindComment, "msg"), domain.SentimentResult{Label: domain.SentimentNegative})

	assert.Equal(t, "comment negative", text)
	assert.Equal(t, "template", source)
}

func TestResolve_NilGeneratorGoesStraightToTemplate(t *testing.T) {
	r := NewResolver(nil, testTemplates, "system", time.Second)

	text, source := r.Resolve(context.Background(), batchFor(domain.KindDirectMessage, "msg"), domain.SentimentResult{Label: domain.SentimentNegative})

	assert.Equal(t, "dm negative", text)
	assert.Equal(t, "template", source)
}

func TestResolve_PromptIncludesHistoryAndTone(t *testing.T) {
	gen := &stubGenerator{out: "reply"}
	r := NewResolver(gen, testTemplates, "You are the brand voice.", time.Second)

	batch := batchFor(domain.KindDirectMessage, "first message", "second message")
	r.Resolve(context.Background(), batch, domain.SentimentResult{Label: domain.SentimentNegative})

	assert.Contains(t, gen.prompt, "You are the brand voice.")
	assert.Contains(t, gen.prompt, "apologetic")
	assert.Contains(t, gen.prompt, "first message\nsecond message")
}
