// Package cli provides the command-line interface for the harvest application.
package cli

import (
	"github.com/field-harvesters/harvest/internal/app"
)

// Global reference - commands share one application instance per invocation
var globalApp *app.Application

// SetApp stores the Application for commands to access
func SetApp(a *app.Application) {
	globalApp = a
}

// GetApp retrieves the shared Application
func GetApp() *app.Application {
	return globalApp
}
