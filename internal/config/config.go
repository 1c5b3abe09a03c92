package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// Webhook authenticity.
	AppSecret   string `env:"APP_SECRET"`
	VerifyToken string `env:"VERIFY_TOKEN"`

	// Account credentials: JSON object of account ID to access token. Used
	// when no DATABASE_URL is configured.
	AccountsJSON string `env:"ACCOUNTS_JSON" default:"{}"`

	// Optional backing services. Empty REDIS_URL selects the in-memory
	// conversation store; empty DATABASE_URL selects env-based tokens.
	RedisURL    string `env:"REDIS_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Hex-encoded 32-byte key for encrypting stored access tokens. Empty
	// means plaintext storage (development only).
	TokenEncryptionKey string `env:"TOKEN_ENCRYPTION_KEY"`

	// Generative reply. An empty GEMINI_API_KEY disables the LLM entirely
	// and every reply comes from the fallback templates.
	GeminiAPIKey string        `env:"GEMINI_API_KEY"`
	ModelName    string        `env:"MODEL_NAME" default:"gemini-1.5-flash"`
	LLMTimeout   time.Duration `env:"LLM_TIMEOUT" default:"15s"`
	SystemPrompt string        `env:"SYSTEM_PROMPT" default:"You are a friendly social media assistant replying on behalf of a business account."`

	// Sentiment thresholds on the compound score.
	PositiveCutoff float64 `env:"SENTIMENT_POSITIVE_CUTOFF" default:"0.05"`
	NegativeCutoff float64 `env:"SENTIMENT_NEGATIVE_CUTOFF" default:"-0.05"`

	// Debounce delays. The first message of a conversation gets a
	// uniform-random delay in [min, max]; follow-up messages re-arm with the
	// flat follow-up delay.
	DMDelayMin      time.Duration `env:"DM_DELAY_MIN" default:"60s"`
	DMDelayMax      time.Duration `env:"DM_DELAY_MAX" default:"120s"`
	CommentDelayMin time.Duration `env:"COMMENT_DELAY_MIN" default:"60s"`
	CommentDelayMax time.Duration `env:"COMMENT_DELAY_MAX" default:"120s"`
	FollowUpDelay   time.Duration `env:"FOLLOWUP_DELAY" default:"30s"`

	// Outbound send policy.
	SendTimeout     time.Duration `env:"SEND_TIMEOUT" default:"10s"`
	MaxSendAttempts int           `env:"MAX_SEND_ATTEMPTS" default:"3"`
	SendBackoff     time.Duration `env:"SEND_BACKOFF" default:"2s"`

	// Resource control.
	IdleEvictionTTL time.Duration `env:"IDLE_EVICTION_TTL" default:"1h"`
	EventLogSize    int           `env:"EVENT_LOG_SIZE" default:"100"`

	// Fallback templates, keyed by channel kind and sentiment.
	DMResponsePositive      string `env:"DEFAULT_DM_RESPONSE_POSITIVE" default:"Thanks for your kind words! We appreciate your support."`
	DMResponseNegative      string `env:"DEFAULT_DM_RESPONSE_NEGATIVE" default:"We are sorry to hear you're not satisfied. Please tell us more about this so that we can improve."`
	CommentResponsePositive string `env:"DEFAULT_COMMENT_RESPONSE_POSITIVE" default:"Thanks for your kind words! We appreciate your support."`
	CommentResponseNegative string `env:"DEFAULT_COMMENT_RESPONSE_NEGATIVE" default:"We are sorry to hear you're not satisfied. Please tell us more about this so that we can improve."`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"APP_SECRET":   cfg.AppSecret,
		"VERIFY_TOKEN": cfg.VerifyToken,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if cfg.DMDelayMin > cfg.DMDelayMax {
		return errors.New("DM_DELAY_MIN must not exceed DM_DELAY_MAX")
	}
	if cfg.CommentDelayMin > cfg.CommentDelayMax {
		return errors.New("COMMENT_DELAY_MIN must not exceed COMMENT_DELAY_MAX")
	}
	if cfg.MaxSendAttempts < 1 {
		return errors.New("MAX_SEND_ATTEMPTS must be at least 1")
	}
	if cfg.PositiveCutoff < cfg.NegativeCutoff {
		return errors.New("SENTIMENT_POSITIVE_CUTOFF must not be below SENTIMENT_NEGATIVE_CUTOFF")
	}
	if cfg.EventLogSize < 1 {
		return errors.New("EVENT_LOG_SIZE must be at least 1")
	}

	return nil
}
