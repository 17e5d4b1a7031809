package app

import (
	"io"
	"log/slog"

	"github.com/mmdione/reV/internal/outputs"
	"github.com/mmdione/reV/internal/pipeline"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle. The output store and pipeline resolver are injected so the
// same wiring serves tests, local runs and cluster deployments.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	store    outputs.Store
	resolver pipeline.Resolver
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger. resolver may be
// nil when no pipeline status is available; pipeline-sentinel configs then
// fail at resolution time with a clear error.
func NewApp(outW io.Writer, config *Config, store outputs.Store, resolver pipeline.Resolver) *App {
	logger := newLogger(config, outW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   config,
		store:    store,
		resolver: resolver,
	}
}

// Logger returns the application's logger. This is primarily for testing.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds the app's own logger from the CLI config; the global
// slog default is left untouched. An unrecognized level falls back to
// info, and any format other than "json" gets the text handler.
func newLogger(cfg *Config, outW io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevels[cfg.LogLevel]}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
