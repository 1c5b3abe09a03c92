package conversation

import (
	"math/rand/v2"
	"time"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
)

// JitterPolicy decides how long to wait before replying. followUp is true
// when the conversation already had a pending reply that this event
// superseded.
type JitterPolicy interface {
	Delay(kind domain.ChannelKind, followUp bool) time.Duration
}

// DelayRange is a closed interval of acceptable delays.
type DelayRange struct {
	Min time.Duration
	Max time.Duration
}

// UniformJitter draws the first-message delay uniformly from a per-channel
// range and re-arms follow-ups with a flat, shorter delay. The spread
// expresses deliberate human-like pacing rather than backoff.
type UniformJitter struct {
	DirectMessage DelayRange
	Comment       DelayRange
	FollowUp      time.Duration
}

var _ JitterPolicy = (*UniformJitter)(nil)

func (j *UniformJitter) Delay(kind domain.ChannelKind, followUp bool) time.Duration {
	if followUp {
		return j.FollowUp
	}

	r := j.DirectMessage
	if kind == domain.KindComment {
		r = j.Comment
	}
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rand.N(r.Max-r.Min+1)
}
