// internal/engine/driver_test.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/field-harvesters/harvest/internal/ratelimit"
	"github.com/field-harvesters/harvest/internal/scrape"
)

// stubFetcher serves canned pages by URL and records every fetch.
type stubFetcher struct {
	pages map[string]string
	calls []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (*goquery.Document, error) {
	f.calls = append(f.calls, url)
	body, ok := f.pages[url]
	if !ok {
		return nil, NewEngineError(ErrCodeNetworkError, "no such page", fmt.Errorf("%s", url))
	}
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

func quotePage(quotes []string, tags map[string][]string, next string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, q := range quotes {
		b.WriteString(`<div class="quote"><span class="text">` + q + `</span>`)
		b.WriteString(`<small class="author">Author of ` + q + `</small><div class="tags">`)
		for _, tag := range tags[q] {
			b.WriteString(`<a class="tag" href="/tag/` + tag + `">` + tag + `</a>`)
		}
		b.WriteString(`</div></div>`)
	}
	if next != "" {
		b.WriteString(`<li class="next"><a href="` + next + `">Next</a></li>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func quotesConfig(maxPages int) *scrape.Config {
	return &scrape.Config{
		StartURL:     "http://quotes.example.com/page/1/",
		ItemSelector: "div.quote",
		Fields: map[string]scrape.FieldSpec{
			"text":   {Selector: "span.text"},
			"author": {Selector: "small.author"},
			"tags":   {Selector: "div.tags a.tag", Multiple: true},
		},
		FieldOrder: []string{"text", "author", "tags"},
		Pagination: &scrape.PaginationSpec{NextPageSelector: "li.next a", MaxPages: maxPages},
	}
}

func numberedQuotes(from, to int) []string {
	var qs []string
	for i := from; i <= to; i++ {
		qs = append(qs, fmt.Sprintf("quote %02d", i))
	}
	return qs
}

func TestDriver_Run_TwoPageSite(t *testing.T) {
	// Page 1 has 10 quotes and a next link, page 2 has 8 and none.
	tags := map[string][]string{
		"quote 01": {"change", "world"},
		"quote 11": {"truth"},
	}
	fetcher := &stubFetcher{pages: map[string]string{
		"http://quotes.example.com/page/1/": quotePage(numberedQuotes(1, 10), tags, "/page/2/"),
		"http://quotes.example.com/page/2/": quotePage(numberedQuotes(11, 18), tags, ""),
	}}

	rs, err := Run(context.Background(), quotesConfig(5), fetcher)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(fetcher.calls) != 2 {
		t.Fatalf("fetches = %d, want 2", len(fetcher.calls))
	}
	if rs.Len() != 18 {
		t.Fatalf("records = %d, want 18", rs.Len())
	}

	// Page-then-item order, no reordering.
	for i := 0; i < 18; i++ {
		want := fmt.Sprintf("quote %02d", i+1)
		if got := rs.Records[i]["text"].Text; got != want {
			t.Errorf("record %d text = %q, want %q", i, got, want)
		}
	}

	if got := rs.Records[0]["tags"].List; !reflect.DeepEqual(got, []string{"change", "world"}) {
		t.Errorf("record 0 tags = %v", got)
	}
	if got := rs.Records[10]["tags"].List; !reflect.DeepEqual(got, []string{"truth"}) {
		t.Errorf("record 10 tags = %v", got)
	}
	// Quotes without tag markup still carry an empty tags sequence.
	if got := rs.Records[1]["tags"].List; len(got) != 0 {
		t.Errorf("record 1 tags = %v, want empty", got)
	}

	if !reflect.DeepEqual(rs.Fields, []string{"text", "author", "tags"}) {
		t.Errorf("fields = %v", rs.Fields)
	}
}

func TestDriver_Run_MaxPagesBound(t *testing.T) {
	// First page advertises a next link, but the bound is 1.
	fetcher := &stubFetcher{pages: map[string]string{
		"http://quotes.example.com/page/1/": quotePage(numberedQuotes(1, 3), nil, "/page/2/"),
		"http://quotes.example.com/page/2/": quotePage(numberedQuotes(4, 6), nil, ""),
	}}

	rs, err := Run(context.Background(), quotesConfig(1), fetcher)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(fetcher.calls) != 1 {
		t.Errorf("fetches = %d, want 1", len(fetcher.calls))
	}
	if rs.Len() != 3 {
		t.Errorf("records = %d, want 3", rs.Len())
	}
}

func TestDriver_Run_StopsWhenNextLinkMissing(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"http://quotes.example.com/page/1/": quotePage(numberedQuotes(1, 2), nil, "/page/2/"),
		"http://quotes.example.com/page/2/": quotePage(numberedQuotes(3, 4), nil, "/page/3/"),
		"http://quotes.example.com/page/3/": quotePage(numberedQuotes(5, 6), nil, ""),
	}}

	rs, err := Run(context.Background(), quotesConfig(10), fetcher)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(fetcher.calls) != 3 {
		t.Errorf("fetches = %d, want 3", len(fetcher.calls))
	}
	if rs.Len() != 6 {
		t.Errorf("records = %d, want 6", rs.Len())
	}
}

func TestDriver_Run_SinglePageWithoutPagination(t *testing.T) {
	cfg := quotesConfig(0)
	cfg.Pagination = nil

	fetcher := &stubFetcher{pages: map[string]string{
		// The page even has a next link; without pagination config it is ignored.
		"http://quotes.example.com/page/1/": quotePage(numberedQuotes(1, 4), nil, "/page/2/"),
	}}

	rs, err := Run(context.Background(), cfg, fetcher)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(fetcher.calls) != 1 {
		t.Errorf("fetches = %d, want 1", len(fetcher.calls))
	}
	if rs.Len() != 4 {
		t.Errorf("records = %d, want 4", rs.Len())
	}
}

func TestDriver_Run_FetchFailureDiscardsEverything(t *testing.T) {
	// Page 2 is missing: the run fails closed, page 1 records included.
	fetcher := &stubFetcher{pages: map[string]string{
		"http://quotes.example.com/page/1/": quotePage(numberedQuotes(1, 5), nil, "/page/2/"),
	}}

	rs, err := Run(context.Background(), quotesConfig(5), fetcher)
	if err == nil {
		t.Fatal("expected error")
	}
	if rs != nil {
		t.Errorf("expected nil result set on failure, got %d records", rs.Len())
	}

	var eerr *EngineError
	if !errors.As(err, &eerr) {
		t.Fatalf("expected EngineError, got %T: %v", err, err)
	}
	if eerr.Code != ErrCodeNetworkError {
		t.Errorf("code = %s, want %s", eerr.Code, ErrCodeNetworkError)
	}
}

func TestRun_ConfigErrorBeforeAnyFetch(t *testing.T) {
	cfg := quotesConfig(5)
	cfg.Fields = nil
	cfg.FieldOrder = nil

	fetcher := &stubFetcher{pages: map[string]string{}}

	_, err := Run(context.Background(), cfg, fetcher)
	if err == nil {
		t.Fatal("expected error")
	}

	var cerr *scrape.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigError, got %T: %v", err, err)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("fetches = %d, want 0 before validation passes", len(fetcher.calls))
	}
}

func TestDriver_Run_Reproducible(t *testing.T) {
	pages := map[string]string{
		"http://quotes.example.com/page/1/": quotePage(numberedQuotes(1, 5), nil, "/page/2/"),
		"http://quotes.example.com/page/2/": quotePage(numberedQuotes(6, 8), nil, ""),
	}

	first, err := Run(context.Background(), quotesConfig(5), &stubFetcher{pages: pages})
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := Run(context.Background(), quotesConfig(5), &stubFetcher{pages: pages})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("identical page sequences should produce identical result sets")
	}
}

func TestDriver_Run_CancelledContext(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"http://quotes.example.com/page/1/": quotePage(numberedQuotes(1, 2), nil, ""),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	driver := NewDriver(fetcher, ratelimit.NewIntervalPacer(0))
	plan, err := quotesConfig(5).Compile()
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if _, err := driver.Run(ctx, plan); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
