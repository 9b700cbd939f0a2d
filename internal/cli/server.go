package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/photo-cycler/backend/internal/api"
	"github.com/photo-cycler/backend/internal/config"
	"github.com/photo-cycler/backend/internal/cycler"
	"github.com/photo-cycler/backend/internal/metrics"
	"github.com/photo-cycler/backend/internal/storage"
	"github.com/photo-cycler/backend/internal/web"
)

const shutdownTimeout = 5 * time.Second

// Server wires the cycler, its thing and the HTTP surface together.
type Server struct {
	cfg    *config.AppConfig
	logger *logrus.Logger

	Cycler    *cycler.Cycler
	Publisher *storage.LinkPublisher
	Echo      *echo.Echo

	http *http.Server
}

// NewServer builds every component from cfg. The directories must exist.
func NewServer(cfg *config.AppConfig, logger *logrus.Logger) (*Server, error) {
	publisher, err := storage.NewLinkPublisher(cfg.Storage.StaticDirectory, cfg.Storage.CurrentName)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := cycler.New(cfg.Storage.PhotosDirectory, publisher,
		cycler.WithLogger(logger),
		cycler.WithMetrics(metrics.NewPrometheusMetrics(registry)),
		cycler.WithInterval(cfg.Cycler.UpdateRate),
		cycler.WithMinPeriod(cfg.MinPeriod()),
	)

	th := cycler.NewThing(c,
		web.StaticPrefix+"/"+cfg.Storage.CurrentName,
		web.StaticPrefix+"/index.html",
	)

	deps := &api.Dependencies{
		Thing:                th,
		Publisher:            publisher,
		UpdateRate:           c.Interval,
		StaticDir:            cfg.Storage.StaticDirectory,
		CurrentName:          cfg.Storage.CurrentName,
		ExternalURL:          cfg.Server.ExternalURL,
		Version:              Version,
		Logger:               logger,
		EnableCORS:           cfg.Server.EnableCORS,
		EnableRequestLogging: cfg.Server.EnableRequestLogging,
	}
	if cfg.Server.EnableMetrics {
		deps.Gatherer = registry
	}

	e, err := api.NewRouter(deps)
	if err != nil {
		return nil, fmt.Errorf("building router: %w", err)
	}

	return &Server{
		cfg:       cfg,
		logger:    logger,
		Cycler:    c,
		Publisher: publisher,
		Echo:      e,
		http: &http.Server{
			Addr:         cfg.GetServerAddr(),
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		},
	}, nil
}

// Serve runs the cycler and serves HTTP on ln until ctx is done, then shuts
// the server down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cyclerDone := make(chan struct{})
	go func() {
		defer close(cyclerDone)
		s.Cycler.Run(ctx)
	}()

	s.Echo.Listener = ln
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.Echo.StartServer(s.http)
	}()

	select {
	case err := <-serveErr:
		cancel()
		<-cyclerDone
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	<-cyclerDone

	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// PrintBanner writes the startup summary.
func (s *Server) PrintBanner(w io.Writer, configPath string) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(w, "║           Photo Cycler                                    ║\n")
	fmt.Fprintf(w, "╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║  Version:    %-45s║\n", Version)
	fmt.Fprintf(w, "║  Build Time: %-45s║\n", BuildTime)
	fmt.Fprintf(w, "╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║  Config:    %-46s║\n", configPath)
	fmt.Fprintf(w, "║  Listen:    http://%-39s║\n", s.cfg.GetServerAddr())
	fmt.Fprintf(w, "║  Photos:    %-46s║\n", s.cfg.Storage.PhotosDirectory)
	fmt.Fprintf(w, "║  Static:    %-46s║\n", s.cfg.Storage.StaticDirectory)
	fmt.Fprintf(w, "║  Rate:      %-46s║\n", fmt.Sprintf("%gs", s.Cycler.Interval()))
	fmt.Fprintf(w, "╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Open http://localhost:%d%s/index.html in your browser\n\n", s.cfg.Server.Port, web.StaticPrefix)
}
