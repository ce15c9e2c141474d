// Package app wires the extraction engine to the outside world: logging,
// output writing, schema emission, and the overall run lifecycle.
package app

import (
	"io"
	"log/slog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
}

// NewApp is the constructor for the main application. Results go to outW,
// logs to errW through the App's own isolated logger.
func NewApp(outW, errW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
	}
}
