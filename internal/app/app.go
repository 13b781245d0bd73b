// Package app wires the application together: configuration, storage,
// the key map service, the execution controller, and the HTTP surface.
package app

import (
	"context"

	"keymap-engine/internal/auth"
	"keymap-engine/internal/common/logging"
	"keymap-engine/internal/config"
	"keymap-engine/internal/keymaps"
	"keymap-engine/internal/storage"
	"keymap-engine/internal/storage/sqlite"
)

// App holds all the application dependencies
type App struct {
	Config     *config.Config
	Storage    storage.Storage
	Defaults   *config.OptionDefaults
	Auth       *auth.Auth
	Service    *keymaps.Service
	Controller *keymaps.Controller
	Logger     logging.Logger
}

// New creates a new application instance with all dependencies
func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logging.GetGlobalLogger().WithFields(logging.String("component", "app")),
	}

	store, err := sqlite.NewAdapter(&sqlite.Config{DatabasePath: cfg.DatabasePath})
	if err != nil {
		return nil, err
	}
	app.Storage = store

	defaults, err := config.NewOptionDefaults(cfg.DefaultsFile, app.Logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := defaults.Watch(); err != nil {
		app.Logger.Warn("Defaults file watching unavailable", logging.Err(err))
	}
	app.Defaults = defaults

	app.Auth = auth.New(cfg.JWTSecret)
	app.Service = keymaps.NewService(store, defaults, logging.GetGlobalLogger())
	app.Controller = keymaps.NewController(
		NewLogDispatcher(logging.GetGlobalLogger()),
		defaults,
		logging.GetGlobalLogger(),
	)

	return app, nil
}

// Shutdown stops detection and releases all resources.
func (app *App) Shutdown(ctx context.Context) error {
	app.Controller.Close()

	if err := app.Defaults.Close(); err != nil {
		app.Logger.Warn("Failed to stop defaults watcher", logging.Err(err))
	}
	return app.Storage.Close()
}
