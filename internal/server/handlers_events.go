package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const keepaliveInterval = 30 * time.Second

// handleRecentDecisions returns the retained decision records, oldest
// first.
func (s *Server) handleRecentDecisions(c echo.Context) error {
	records := s.log.Recent()
	return c.JSON(http.StatusOK, map[string]any{
		"count":  len(records),
		"events": records,
	})
}

// handleDecisionStream pushes decision records over server-sent events.
// Keepalive comments hold the connection open through idle periods.
func (s *Server) handleDecisionStream(c echo.Context) error {
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set(echo.HeaderConnection, "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	records, cancel := s.log.Subscribe()
	defer cancel()

	keepalive := s.clock.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-keepalive.Chan():
			if _, err := fmt.Fprint(resp, ": keepalive\n\n"); err != nil {
				return nil
			}
			resp.Flush()
		case record, open := <-records:
			if !open {
				return nil
			}
			data, err := json.Marshal(record)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(resp, "data: %s\n\n", data); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}
