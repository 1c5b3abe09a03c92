package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/broadcast"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/config"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/conversation"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/crypto"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/database"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/instagram"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/llm"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/logging"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/redis"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/reply"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/sentiment"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/server"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *database.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.RunMigrations(ctx); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return db
}

func setupRedis(cfg *config.Config) *redis.Client {
	client, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		slog.Error("Redis ping failed", "error", err)
		os.Exit(1)
	}
	return client
}

func setupGenerator(cfg *config.Config) domain.Generator {
	if cfg.GeminiAPIKey == "" {
		slog.Info("No Gemini API key configured, replies use templates only")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.ModelName, cfg.LLMTimeout)
	if err != nil {
		slog.Error("Failed to create Gemini client", "error", err)
		os.Exit(1)
	}
	slog.Info("Gemini client initialized", "model", cfg.ModelName)
	return client
}

func runGracefulShutdown(srv *server.Server, scheduler *conversation.Scheduler, eventLog *broadcast.EventLog, cleanup func()) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		// Drain in-flight sends before tearing down their dependencies.
		scheduler.Stop()
		eventLog.Stop()
		cleanup()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	readyChecks := make(map[string]func(context.Context) error)
	var cleanups []func()
	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}

	// Conversation store: Redis when configured, otherwise in-process.
	var store domain.ConversationStore
	if cfg.RedisURL != "" {
		redisClient := setupRedis(cfg)
		cleanups = append(cleanups, func() { _ = redisClient.Close() })
		readyChecks["redis"] = redisClient.Ping
		store = redis.NewStore(redisClient, cfg.IdleEvictionTTL)
		slog.Info("Using Redis conversation store")
	} else {
		memStore := conversation.NewMemoryStore(clock, cfg.IdleEvictionTTL)
		evictionCtx, stopEviction := context.WithCancel(context.Background())
		go memStore.Run(evictionCtx)
		cleanups = append(cleanups, stopEviction)
		store = memStore
		slog.Info("Using in-memory conversation store")
	}

	// Token source: database when configured, otherwise the env mapping.
	var tokens domain.TokenResolver
	var accounts server.AccountFilter
	if cfg.DatabaseURL != "" {
		db := setupDB(cfg)
		cleanups = append(cleanups, db.Close)
		readyChecks["postgres"] = db.HealthCheck

		cryptoSvc := crypto.Service(crypto.NoopService{})
		if cfg.TokenEncryptionKey != "" {
			svc, err := crypto.NewAesGcmCryptoService(cfg.TokenEncryptionKey)
			if err != nil {
				slog.Error("Failed to create crypto service", "error", err)
				os.Exit(1)
			}
			cryptoSvc = svc
		}
		tokens = database.NewAccountRepo(db, cryptoSvc)
		slog.Info("Using database token source")
	} else {
		resolver, err := instagram.NewEnvTokenResolver(cfg.AccountsJSON)
		if err != nil {
			slog.Error("Failed to parse ACCOUNTS_JSON", "error", err)
			os.Exit(1)
		}
		tokens = resolver
		accounts = resolver
		slog.Info("Using env token source", "accounts", resolver.Len())
	}

	messenger := instagram.NewClient(tokens)

	generator := setupGenerator(cfg)
	resolver := reply.NewResolver(generator, reply.Templates{
		DMPositive:      cfg.DMResponsePositive,
		DMNegative:      cfg.DMResponseNegative,
		CommentPositive: cfg.CommentResponsePositive,
		CommentNegative: cfg.CommentResponseNegative,
	}, cfg.SystemPrompt, cfg.LLMTimeout)

	classifier := sentiment.New(cfg.PositiveCutoff, cfg.NegativeCutoff)

	eventLog := broadcast.NewEventLog(cfg.EventLogSize, clock)

	jitter := &conversation.UniformJitter{
		DirectMessage: conversation.DelayRange{Min: cfg.DMDelayMin, Max: cfg.DMDelayMax},
		Comment:       conversation.DelayRange{Min: cfg.CommentDelayMin, Max: cfg.CommentDelayMax},
		FollowUp:      cfg.FollowUpDelay,
	}

	scheduler := conversation.NewScheduler(store, classifier, resolver, messenger, eventLog, clock, jitter, conversation.SchedulerOptions{
		SendTimeout:     cfg.SendTimeout,
		MaxSendAttempts: cfg.MaxSendAttempts,
		SendBackoff:     cfg.SendBackoff,
	})

	srv := server.NewServer(server.Options{
		Config:      cfg,
		Events:      scheduler,
		Log:         eventLog,
		Accounts:    accounts,
		Clock:       clock,
		ReadyChecks: readyChecks,
	})

	done := runGracefulShutdown(srv, scheduler, eventLog, cleanup)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
