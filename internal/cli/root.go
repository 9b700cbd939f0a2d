// Package cli implements the photo-cycler command.
package cli

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/photo-cycler/backend/internal/config"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

type options struct {
	configPath string
	port       int
	bind       string
	updateRate float64
	createDirs bool
	logLevel   string
	logFormat  string
}

// NewPhotoCyclerCommand returns the root command.
func NewPhotoCyclerCommand() *cobra.Command {
	return newCommand(&options{})
}

func newCommand(opts *options) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "photo-cycler [photos_path] [static_path]",
		Short: "Publish a random photo from a directory on a timer",
		Long: `photo-cycler periodically picks a random JPEG from the photos directory and
publishes it as current.jpg in the static directory. The update rate is
exposed as a writable Web Thing property over HTTP and WebSocket.`,
		Args:    cobra.MaximumNArgs(2),
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := opts.load(cmd, args)
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg.Logging)
			if err != nil {
				return err
			}

			srv, err := NewServer(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize server: %w", err)
			}

			ln, err := net.Listen("tcp", cfg.GetServerAddr())
			if err != nil {
				return fmt.Errorf("failed to listen: %w", err)
			}

			srv.PrintBanner(cmd.OutOrStdout(), opts.configPath)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.Serve(ctx, ln)
		},
	}

	rootCmd.Flags().StringVar(&opts.configPath, "config", "photo-cycler.yaml", "Path to the YAML config file; when set explicitly and missing, it is created with defaults")
	rootCmd.Flags().IntVar(&opts.port, "port", 8888, "HTTP port")
	rootCmd.Flags().StringVar(&opts.bind, "bind", "0.0.0.0", "HTTP bind address")
	rootCmd.Flags().Float64Var(&opts.updateRate, "update-rate", 5, "Seconds between photo changes")
	rootCmd.Flags().BoolVar(&opts.createDirs, "create-dirs", true, "Create the photos and static directories when missing")
	rootCmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&opts.logFormat, "log-format", "text", "Log format (text or json)")

	return rootCmd
}

// load reads the config file and applies flags and positional paths on top.
// Flags only override the file when set explicitly. Defaults are written to
// disk only for an explicit --config.
func (o *options) load(cmd *cobra.Command, args []string) (*config.AppConfig, error) {
	load := config.LoadConfigIfExists
	if cmd.Flags().Changed("config") {
		load = config.LoadConfig
	}
	cfg, err := load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = o.port
	}
	if flags.Changed("bind") {
		cfg.Server.BindAddress = o.bind
	}
	if flags.Changed("update-rate") {
		cfg.Cycler.UpdateRate = o.updateRate
	}
	if flags.Changed("create-dirs") {
		cfg.Storage.CreateDirectories = o.createDirs
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = o.logFormat
	}

	var photos, static string
	if len(args) > 0 {
		photos = args[0]
	}
	if len(args) > 1 {
		static = args[1]
	}
	if err := cfg.SetDirectories(photos, static); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure both directories exist
	if err := cfg.EnsureDirectories(cfg.Storage.CreateDirectories); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newLogger(cfg config.LoggingConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format: %q", cfg.Format)
	}

	return logger, nil
}
