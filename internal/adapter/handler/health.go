package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger checks a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	storage Pinger
	timeout time.Duration
}

// NewHealthHandler creates a new health handler. storage may be nil.
func NewHealthHandler(storage Pinger, timeout time.Duration) *HealthHandler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthHandler{storage: storage, timeout: timeout}
}

// Handle processes the /health endpoint.
func (h *HealthHandler) Handle(c echo.Context) error {
	if h.storage == nil {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		slog.WarnContext(ctx, "storage health check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "unhealthy",
			"storage": "unreachable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"storage": "ok",
	})
}
