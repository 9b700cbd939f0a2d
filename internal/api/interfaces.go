// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/photo-cycler/backend/internal/models"
	"github.com/photo-cycler/backend/internal/thing"
)

// ThingHandler serves the thing description and its properties
type ThingHandler interface {
	HandleDescription(c echo.Context) error
	HandleGetProperties(c echo.Context) error
	HandleGetProperty(c echo.Context) error
	HandlePutProperty(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// PropertyStore defines what the handlers need from a thing
// This allows mocking in tests
type PropertyStore interface {
	Describe(base string) models.ThingDescription
	Values() models.PropertyStatus
	Property(name string) (*thing.Property, bool)
	SetProperty(ctx context.Context, name string, value interface{}) (interface{}, error)
	Subscribe() (<-chan models.PropertyStatus, func())
}

var _ PropertyStore = (*thing.Thing)(nil)
