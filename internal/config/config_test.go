package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_SECRET", "secret")
	t.Setenv("VERIFY_TOKEN", "verify")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "{}", cfg.AccountsJSON)
	assert.Equal(t, "gemini-1.5-flash", cfg.ModelName)
	assert.InDelta(t, 0.05, cfg.PositiveCutoff, 1e-9)
	assert.InDelta(t, -0.05, cfg.NegativeCutoff, 1e-9)
	assert.Equal(t, 60*time.Second, cfg.DMDelayMin)
	assert.Equal(t, 120*time.Second, cfg.DMDelayMax)
	assert.Equal(t, 30*time.Second, cfg.FollowUpDelay)
	assert.Equal(t, 3, cfg.MaxSendAttempts)
	assert.Equal(t, time.Hour, cfg.IdleEvictionTTL)
	assert.Equal(t, 100, cfg.EventLogSize)
	assert.Contains(t, cfg.DMResponsePositive, "Thanks for your kind words")
	assert.Contains(t, cfg.DMResponseNegative, "sorry to hear")
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("APP_SECRET", "")
	t.Setenv("VERIFY_TOKEN", "verify")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_SECRET")
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DM_DELAY_MIN", "5s")
	t.Setenv("DM_DELAY_MAX", "10s")
	t.Setenv("FOLLOWUP_DELAY", "2s")
	t.Setenv("MAX_SEND_ATTEMPTS", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.DMDelayMin)
	assert.Equal(t, 10*time.Second, cfg.DMDelayMax)
	assert.Equal(t, 2*time.Second, cfg.FollowUpDelay)
	assert.Equal(t, 5, cfg.MaxSendAttempts)
}

func TestLoad_RejectsInvertedDelayRange(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DM_DELAY_MIN", "120s")
	t.Setenv("DM_DELAY_MAX", "60s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DM_DELAY_MIN")
}

func TestLoad_RejectsInvertedCutoffs(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SENTIMENT_POSITIVE_CUTOFF", "-0.5")
	t.Setenv("SENTIMENT_NEGATIVE_CUTOFF", "0.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SENTIMENT_POSITIVE_CUTOFF")
}

func TestLoad_RejectsZeroAttempts(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAX_SEND_ATTEMPTS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_SEND_ATTEMPTS")
}

func TestLoad_RejectsTinyEventLog(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EVENT_LOG_SIZE", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EVENT_LOG_SIZE")
}
