// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/photo-cycler/backend/internal/storage"
	"github.com/photo-cycler/backend/internal/web"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Thing       PropertyStore
	Publisher   storage.Publisher
	UpdateRate  func() float64
	StaticDir   string
	CurrentName string
	ExternalURL string
	Version     string
	Logger      *logrus.Logger

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	EnableCORS           bool
	EnableRequestLogging bool
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Thing     ThingHandler
	WebSocket *WebSocketHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.Publisher, deps.UpdateRate),
		Thing:     NewThingHandler(deps.Thing, deps.ExternalURL),
		WebSocket: NewWebSocketHandler(deps.Thing, deps.Logger),
	}
}

// NewRouter builds the Echo instance serving the thing, the static directory,
// health and metrics.
func NewRouter(deps *Dependencies) (*echo.Echo, error) {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	SetupMiddleware(e, deps)
	RegisterRoutes(e, NewHandlers(deps))

	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	if err := web.RegisterStaticRoutes(e, deps.StaticDir, deps.CurrentName, deps.Publisher); err != nil {
		return nil, err
	}

	return e, nil
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/health", handlers.Health.HandleHealth)

	// Thing description, or the websocket when the client asks to upgrade
	e.GET("/", func(c echo.Context) error {
		if websocket.IsWebSocketUpgrade(c.Request()) {
			return handlers.WebSocket.HandleWebSocket(c)
		}
		return handlers.Thing.HandleDescription(c)
	})

	// Property routes
	propertyGroup := e.Group("/properties")
	propertyGroup.GET("", handlers.Thing.HandleGetProperties)
	propertyGroup.GET("/:name", handlers.Thing.HandleGetProperty)
	propertyGroup.PUT("/:name", handlers.Thing.HandlePutProperty)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, deps *Dependencies) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	if deps.EnableRequestLogging {
		logger := deps.Logger
		e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			Skipper: func(c echo.Context) bool {
				path := c.Request().URL.Path
				return path == "/health" ||
					path == "/metrics" ||
					strings.HasSuffix(path, "/"+deps.CurrentName)
			},
			LogMethod:    true,
			LogURI:       true,
			LogStatus:    true,
			LogLatency:   true,
			LogRequestID: true,
			LogError:     true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				entry := logger.WithFields(logrus.Fields{
					"method":     v.Method,
					"uri":        v.URI,
					"status":     v.Status,
					"latency":    v.Latency,
					"request_id": v.RequestID,
				})
				if v.Error != nil {
					entry = entry.WithError(v.Error)
				}
				entry.Info("request")
				return nil
			},
		}))
	}

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if deps.EnableCORS {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}
