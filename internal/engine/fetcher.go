// internal/engine/fetcher.go
package engine

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/field-harvesters/harvest/internal/cache"
	"github.com/rs/zerolog/log"
)

// HTTPFetcher retrieves static HTML pages over plain HTTP.
// It uses raw HTTP requests and goquery for parsing - extremely fast
type HTTPFetcher struct {
	client    *http.Client
	cache     cache.Cache
	cacheTTL  time.Duration
	userAgent string
}

// NewHTTPFetcher creates an HTTPFetcher with dependency injection.
// Pass a nil cache to disable response caching.
func NewHTTPFetcher(client *http.Client, userAgent string, c cache.Cache, cacheTTL time.Duration) *HTTPFetcher {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: 30 * time.Second,
		}
	}
	return &HTTPFetcher{
		client:    client,
		cache:     c,
		cacheTTL:  cacheTTL,
		userAgent: userAgent,
	}
}

// Fetch retrieves and parses one page. Transport failures and non-2xx
// responses are fatal; callers get no document to salvage from.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	start := time.Now()

	log.Debug().
		Str("url", url).
		Msg("Starting fetch")

	if f.cache != nil {
		if body, ok := f.cache.Get(url); ok {
			log.Debug().Str("url", url).Msg("Serving page from cache")
			return f.parse(url, body)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewEngineError(ErrCodeNetworkError, "failed to create request", err).WithDetail("url", url)
	}

	// Set default headers
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, NewEngineError(ErrCodeNetworkError, "failed to fetch URL", err).WithDetail("url", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, NewEngineError(ErrCodeBadStatus, resp.Status, ErrBadStatus).
			WithDetail("url", url).
			WithDetail("status_code", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewEngineError(ErrCodeNetworkError, "failed to read response body", err).WithDetail("url", url)
	}

	doc, err := f.parse(url, body)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		f.cache.Set(url, body, f.cacheTTL)
	}

	log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int64("response_time_ms", time.Since(start).Milliseconds()).
		Msg("Fetch completed")

	return doc, nil
}

func (f *HTTPFetcher) parse(url string, body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, NewEngineError(ErrCodeParseError, "failed to parse HTML", err).WithDetail("url", url)
	}
	return doc, nil
}
