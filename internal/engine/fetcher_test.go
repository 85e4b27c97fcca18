// internal/engine/fetcher_test.go
package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/field-harvesters/harvest/internal/cache"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "HarvestTest/1.0" {
			t.Errorf("user agent = %q", got)
		}
		w.Write([]byte(`<html><body><div class="quote"><span class="text">hi</span></div></body></html>`))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(server.Client(), "HarvestTest/1.0", nil, 0)

	doc, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got := doc.Find("span.text").Text(); got != "hi" {
		t.Errorf("text = %q", got)
	}
}

func TestHTTPFetcher_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(server.Client(), "HarvestTest/1.0", nil, 0)

	_, err := fetcher.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !errors.Is(err, ErrBadStatus) {
		t.Errorf("expected ErrBadStatus, got %v", err)
	}

	var eerr *EngineError
	if !errors.As(err, &eerr) {
		t.Fatalf("expected EngineError, got %T", err)
	}
	if eerr.Details["status_code"] != http.StatusNotFound {
		t.Errorf("status detail = %v", eerr.Details["status_code"])
	}
}

func TestHTTPFetcher_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	fetcher := NewHTTPFetcher(&http.Client{Timeout: 2 * time.Second}, "HarvestTest/1.0", nil, 0)

	_, err := fetcher.Fetch(context.Background(), url)
	if err == nil {
		t.Fatal("expected error for closed server")
	}

	var eerr *EngineError
	if !errors.As(err, &eerr) {
		t.Fatalf("expected EngineError, got %T", err)
	}
	if eerr.Code != ErrCodeNetworkError {
		t.Errorf("code = %s, want %s", eerr.Code, ErrCodeNetworkError)
	}
}

func TestHTTPFetcher_ServesFromCache(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`<html><body><p>cached</p></body></html>`))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(server.Client(), "HarvestTest/1.0", cache.NewMemoryCache(10), time.Minute)

	for i := 0; i < 3; i++ {
		doc, err := fetcher.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("Fetch %d failed: %v", i, err)
		}
		if got := doc.Find("p").Text(); got != "cached" {
			t.Errorf("fetch %d text = %q", i, got)
		}
	}

	if hits != 1 {
		t.Errorf("server hits = %d, want 1 with caching enabled", hits)
	}
}
