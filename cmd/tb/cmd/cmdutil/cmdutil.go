package cmdutil

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"transcribe-beautifier/internal/app"
	"transcribe-beautifier/internal/app/logging"
	"transcribe-beautifier/internal/config"
)

// Set by the root command's persistent flags.
var (
	Verbose    bool
	ConfigPath string
)

// LoadConfig reads the configuration selected by the global flags.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(ConfigPath)
	if err != nil {
		return nil, err
	}
	if Verbose {
		cfg.Environment = config.EnvironmentDevelopment
	}
	return cfg, nil
}

// NewLogger builds the process logger for cfg.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.NewLogger(cfg.Development())
}

// Env is what most commands need: configuration, a logger and the services.
type Env struct {
	Config   *config.Config
	Logger   *zap.Logger
	Services *app.Services
	cleanup  func()
}

// Close releases the services and flushes the logger.
func (e *Env) Close() {
	if e.cleanup != nil {
		e.cleanup()
	}
	_ = e.Logger.Sync()
}

// Setup loads configuration and wires the services.
func Setup(ctx context.Context) (*Env, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	services, cleanup, err := app.InitializeServices(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return &Env{Config: cfg, Logger: logger, Services: services, cleanup: cleanup}, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Bucket returns flagValue, or the configured bucket when it is empty.
func Bucket(cfg *config.Config, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if err := cfg.RequireBucket(); err != nil {
		return "", err
	}
	return cfg.Storage.Bucket, nil
}
