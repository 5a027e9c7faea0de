package cli

import (
	internalApp "github.com/felixgeelhaar/taskrank/internal/app"
)

// App holds the CLI application dependencies.
type App struct {
	*internalApp.Container
}

// NewApp creates a CLI application backed by container.
func NewApp(container *internalApp.Container) *App {
	return &App{Container: container}
}

// DefaultStrategy is the strategy used when --strategy is not given.
func (a *App) DefaultStrategy() string {
	return a.Strategies.Default()
}

// app is the global CLI application instance
var app *App

// ownsApp is set when the root pre-run built app and must close it.
var ownsApp bool

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
	ownsApp = false
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

func closeApp() {
	if app != nil && ownsApp {
		app.Close()
		app = nil
		ownsApp = false
	}
}
