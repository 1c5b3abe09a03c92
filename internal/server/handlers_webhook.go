package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/AshishRam7/deploy-test-insta-bot/internal/errors"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/metrics"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/platform/correlation"
)

const signatureHeader = "X-Hub-Signature-256"

// handleWebhookVerify answers Meta's subscription handshake: echo the
// challenge when the verify token matches.
func (s *Server) handleWebhookVerify(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")

	if mode != "subscribe" || token != s.config.VerifyToken {
		return apperrors.ForbiddenError("verification token mismatch")
	}

	slog.Info("Webhook subscription verified")
	return c.String(http.StatusOK, challenge)
}

// handleWebhookEvent validates the HMAC signature, parses the delivery, and
// hands each event to the scheduler. Meta expects a fast 200; a failure on
// one event does not fail the delivery.
func (s *Server) handleWebhookEvent(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apperrors.ValidationError("failed to read request body")
	}

	if !s.verifySignature(body, c.Request().Header.Get(signatureHeader)) {
		metrics.EventsDroppedTotal.WithLabelValues("bad_signature").Inc()
		return apperrors.ForbiddenError("invalid signature")
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.EventsDroppedTotal.WithLabelValues("malformed_payload").Inc()
		return apperrors.ValidationError("malformed webhook payload")
	}

	ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
	for _, ev := range s.parseEvents(payload, s.clock.Now()) {
		if err := s.events.HandleEvent(ctx, ev); err != nil {
			slog.ErrorContext(ctx, "Failed to schedule event",
				"event_id", ev.ID.String(), "error", err)
		}
	}

	return c.String(http.StatusOK, "EVENT_RECEIVED")
}

// verifySignature checks the sha256 HMAC over the raw body against the
// X-Hub-Signature-256 header.
func (s *Server) verifySignature(body []byte, header string) bool {
	expected, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}

	mac := hmac.New(sha256.New, []byte(s.config.AppSecret))
	mac.Write(body)
	computed := hex.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(computed)) == 1
}
