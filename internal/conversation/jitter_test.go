package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
)

func TestUniformJitter_FirstMessageWithinChannelRange(t *testing.T) {
	j := &UniformJitter{
		DirectMessage: DelayRange{Min: 60 * time.Second, Max: 120 * time.Second},
		Comment:       DelayRange{Min: 10 * time.Second, Max: 20 * time.Second},
		FollowUp:      30 * time.Second,
	}

	for range 100 {
		dm := j.Delay(domain.KindDirectMessage, false)
		assert.GreaterOrEqual(t, dm, 60*time.Second)
		assert.LessOrEqual(t, dm, 120*time.Second)

		cm := j.Delay(domain.KindComment, false)
		assert.GreaterOrEqual(t, cm, 10*time.Second)
		assert.LessOrEqual(t, cm, 20*time.Second)
	}
}

func TestUniformJitter_FollowUpIsFlat(t *testing.T) {
	j := &UniformJitter{
		DirectMessage: DelayRange{Min: 60 * time.Second, Max: 120 * time.Second},
		Comment:       DelayRange{Min: 60 * time.Second, Max: 120 * time.Second},
		FollowUp:      30 * time.Second,
	}

	for range 10 {
		assert.Equal(t, 30*time.Second, j.Delay(domain.KindDirectMessage, true))
		assert.Equal(t, 30*time.Second, j.Delay(domain.KindComment, true))
	}
}

func TestUniformJitter_DegenerateRange(t *testing.T) {
	j := &UniformJitter{
		DirectMessage: DelayRange{Min: 45 * time.Second, Max: 45 * time.Second},
	}
	assert.Equal(t, 45*time.Second, j.Delay(domain.KindDirectMessage, false))
}
