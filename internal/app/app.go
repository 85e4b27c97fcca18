// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/field-harvesters/harvest/internal/cache"
	"github.com/field-harvesters/harvest/internal/config"
	"github.com/field-harvesters/harvest/internal/engine"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config     *config.Config
	Logger     *zerolog.Logger
	Cache      cache.Cache
	HTTPClient *http.Client
	Fetcher    *engine.HTTPFetcher
	startTime  time.Time
}

// New creates and initializes a new Application with all dependencies:
// the logger, the optional page cache, the HTTP client, and the fetcher
// the engine consumes. If any step fails, an error is returned and no
// resources are allocated.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	// Initialize logger based on config
	logLevel := zerolog.InfoLevel
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.NewConsoleWriter()
	}

	logger := log.Output(logWriter).With().Timestamp().Logger()

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	var pageCache cache.Cache
	if cfg.CacheEnabled {
		pageCache = cache.NewMemoryCache(cfg.CacheMaxEntries)
		logger.Debug().
			Int("max_entries", cfg.CacheMaxEntries).
			Dur("ttl", cfg.CacheTTL).
			Msg("Page cache enabled")
	}

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DisableKeepAlives:   false,
		},
	}
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Msg("HTTP client initialized")

	fetcher := engine.NewHTTPFetcher(httpClient, cfg.UserAgent, pageCache, cfg.CacheTTL)

	app := &Application{
		Config:     cfg,
		Logger:     &logger,
		Cache:      pageCache,
		HTTPClient: httpClient,
		Fetcher:    fetcher,
		startTime:  time.Now(),
	}

	logger.Debug().Msg("Application initialized")
	return app, nil
}

// Close gracefully shuts down the application and its resources.
func (a *Application) Close(ctx context.Context) error {
	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
