// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/photo-cycler/backend/internal/storage"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version   string
	publisher storage.Publisher
	rate      func() float64
}

// NewHealthHandler creates a new health handler. rate reports the current
// update rate in seconds.
func NewHealthHandler(version string, publisher storage.Publisher, rate func() float64) HealthHandler {
	return &HealthHandlerImpl{
		version:   version,
		publisher: publisher,
		rate:      rate,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	_, published := h.publisher.Current()

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"version":    h.version,
		"current":    published,
		"updateRate": h.rate(),
	})
}
