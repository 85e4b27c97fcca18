// internal/engine/page.go
package engine

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/field-harvesters/harvest/internal/scrape"
	urlutil "github.com/field-harvesters/harvest/internal/utils/url"
	"github.com/field-harvesters/harvest/pkg/models"
)

// PageResult is one processed page: its records in document order and
// the absolute next-page URL, or "" when pagination ends here.
type PageResult struct {
	Records []models.Record
	NextURL string
}

// ProcessPage extracts every item block on the page and resolves the
// next-page link. pageURL is the URL the document was fetched from and
// is the base for resolving a relative next link.
func ProcessPage(doc *goquery.Document, pageURL string, plan *scrape.Plan) PageResult {
	var res PageResult

	doc.FindMatcher(plan.Items).Each(func(_ int, item *goquery.Selection) {
		res.Records = append(res.Records, ExtractRecord(item, plan.Fields))
	})

	if plan.Next == nil {
		return res
	}

	// When several elements match, only the first is followed.
	link := doc.FindMatcher(plan.Next).First()
	href, ok := link.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return res
	}

	resolved := urlutil.ResolveURL(pageURL, href)
	if urlutil.ValidateURL(resolved) != nil {
		// A next link that cannot become an absolute http(s) URL ends
		// pagination rather than failing the run.
		return res
	}

	res.NextURL = resolved
	return res
}
