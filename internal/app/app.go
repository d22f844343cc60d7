package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/taskgridgo/internal/config"
	"github.com/vk/taskgridgo/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	model  *config.Model
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and a loaded,
// validated grid model.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.GridPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Grid model loaded.", "tasks", len(model.Tasks))

	return &App{
		outW:   outW,
		logger: logger,
		model:  model,
	}
}

// Model returns the loaded grid model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
