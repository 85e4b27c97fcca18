// internal/engine/driver.go
package engine

import (
	"context"
	"fmt"

	"github.com/field-harvesters/harvest/internal/ratelimit"
	"github.com/field-harvesters/harvest/internal/runctx"
	"github.com/field-harvesters/harvest/internal/scrape"
	"github.com/field-harvesters/harvest/pkg/models"
	"github.com/rs/zerolog/log"
)

// Driver owns the crawl loop: the current URL, the page counter, the
// inter-page pause, and the run-wide accumulator. It is strictly
// sequential with one page in flight at a time; the pacer exists to cap
// the outbound request rate, and parallel fetches would defeat it.
type Driver struct {
	fetcher Fetcher
	pacer   ratelimit.Pacer
	onPage  func(page, records int)
}

// NewDriver creates a driver with the given transport and pacer.
func NewDriver(fetcher Fetcher, pacer ratelimit.Pacer) *Driver {
	return &Driver{
		fetcher: fetcher,
		pacer:   pacer,
	}
}

// OnPage registers a hook invoked after each processed page, with the
// 1-based page number and the number of records that page contributed.
func (d *Driver) OnPage(fn func(page, records int)) {
	d.onPage = fn
}

// Run crawls from the plan's start URL until pagination ends, the page
// bound is hit, or a fetch fails. A fetch or parse failure aborts the
// whole run and discards everything accumulated so far: a partial export
// that silently omits pages is worse than no export.
func (d *Driver) Run(ctx context.Context, plan *scrape.Plan) (*models.ResultSet, error) {
	rc := runctx.FromContext(ctx)
	results := models.NewResultSet(plan.FieldNames())

	current := plan.StartURL
	pages := 0

	for current != "" {
		if err := d.pacer.Wait(ctx); err != nil {
			return nil, fmt.Errorf("run interrupted while pacing: %w", err)
		}

		log.Debug().
			Str("run_id", rc.RunID).
			Int("page", pages+1).
			Str("url", current).
			Msg("Fetching page")

		doc, err := d.fetcher.Fetch(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("page %d (%s): %w", pages+1, current, err)
		}
		pages++

		page := ProcessPage(doc, current, plan)
		results.Append(page.Records...)

		log.Debug().
			Str("run_id", rc.RunID).
			Int("page", pages).
			Int("page_records", len(page.Records)).
			Int("total_records", results.Len()).
			Msg("Page processed")

		if d.onPage != nil {
			d.onPage(pages, len(page.Records))
		}

		if plan.Next == nil || page.NextURL == "" {
			break
		}
		if plan.MaxPages > 0 && pages >= plan.MaxPages {
			break
		}
		current = page.NextURL
	}

	log.Info().
		Str("run_id", rc.RunID).
		Int("pages", pages).
		Int("records", results.Len()).
		Msg("Run complete")

	return results, nil
}
