// internal/engine/extract.go
package engine

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/field-harvesters/harvest/internal/scrape"
	"github.com/field-harvesters/harvest/pkg/models"
	"golang.org/x/net/html"
)

// ExtractRecord maps one item block to a record using the compiled field
// rules. A selector that matches nothing yields an empty value, never an
// error: sparse or irregular markup must not abort a run.
func ExtractRecord(item *goquery.Selection, fields []scrape.FieldRule) models.Record {
	rec := make(models.Record, len(fields))

	for _, f := range fields {
		matched := item.FindMatcher(f.Matcher)

		if f.Multiple {
			vals := make([]string, 0, matched.Length())
			matched.Each(func(_ int, s *goquery.Selection) {
				vals = append(vals, readValue(s, f.Attribute))
			})
			rec[f.Name] = models.Multi(vals)
			continue
		}

		first := matched.First()
		if first.Length() == 0 {
			rec[f.Name] = models.Single("")
			continue
		}
		rec[f.Name] = models.Single(readValue(first, f.Attribute))
	}

	return rec
}

// readValue reads the element's trimmed text, or the named attribute
// when the rule asks for one.
func readValue(s *goquery.Selection, attribute string) string {
	if attribute == "" {
		return strings.TrimSpace(s.Text())
	}
	if len(s.Nodes) == 0 {
		return ""
	}
	return strings.TrimSpace(attrValue(s.Nodes[0], attribute))
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
