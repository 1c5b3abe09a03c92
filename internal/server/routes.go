package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Meta webhook surface: GET for subscription verification, POST for
	// event delivery.
	s.echo.GET("/webhook", s.handleWebhookVerify)
	s.echo.POST("/webhook", s.handleWebhookEvent)

	// Decision records: history snapshot and live SSE stream.
	s.echo.GET("/webhook_events", s.handleRecentDecisions)
	s.echo.GET("/events", s.handleDecisionStream)
}
