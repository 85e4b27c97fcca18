// Package engine implements the extraction-and-pagination core: fetch a
// page, map its repeated item blocks to records, follow the next-page
// link under the configured bound, and accumulate one ordered result set.
package engine

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/field-harvesters/harvest/internal/ratelimit"
	"github.com/field-harvesters/harvest/internal/scrape"
	"github.com/field-harvesters/harvest/pkg/models"
)

// Fetcher is the transport capability the engine consumes: retrieve one
// URL and return its parsed document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Run compiles cfg and executes the crawl with the given fetcher.
// Configuration errors are returned before any fetch is attempted.
func Run(ctx context.Context, cfg *scrape.Config, fetcher Fetcher) (*models.ResultSet, error) {
	plan, err := cfg.Compile()
	if err != nil {
		return nil, err
	}

	driver := NewDriver(fetcher, ratelimit.NewIntervalPacer(plan.Delay))
	return driver.Run(ctx, plan)
}
