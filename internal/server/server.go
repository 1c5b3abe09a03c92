package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/broadcast"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/config"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
	apperrors "github.com/AshishRam7/deploy-test-insta-bot/internal/errors"
)

// EventHandler receives validated webhook events. Satisfied by
// conversation.Scheduler.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev domain.Event) error
}

// AccountFilter reports whether an account is managed by this deployment.
// A nil filter accepts every account.
type AccountFilter interface {
	Has(accountID string) bool
}

// Options carries the server's collaborators.
type Options struct {
	Config   *config.Config
	Events   EventHandler
	Log      *broadcast.EventLog
	Accounts AccountFilter
	Clock    clockwork.Clock
	// ReadyChecks run on /health/ready; any failure reports unready.
	ReadyChecks map[string]func(context.Context) error
}

type Server struct {
	echo        *echo.Echo
	config      *config.Config
	events      EventHandler
	log         *broadcast.EventLog
	accounts    AccountFilter
	clock       clockwork.Clock
	readyChecks map[string]func(context.Context) error
	startTime   time.Time
}

func NewServer(opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:        e,
		config:      opts.Config,
		events:      opts.Events,
		log:         opts.Log,
		accounts:    opts.Accounts,
		clock:       opts.Clock,
		readyChecks: opts.ReadyChecks,
		startTime:   opts.Clock.Now(),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
