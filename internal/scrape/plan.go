package scrape

import (
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// FieldRule is one compiled field extraction rule.
type FieldRule struct {
	Name      string
	Matcher   goquery.Matcher
	Attribute string
	Multiple  bool
}

// Plan is the validated, compiled form of a Config. All selectors are
// compiled exactly once here; a selector syntax error fails the run
// before any network activity and can never surface mid-crawl.
type Plan struct {
	StartURL string
	Items    goquery.Matcher
	Fields   []FieldRule

	// Next is nil when no pagination is configured.
	Next goquery.Matcher

	// MaxPages is 1 for single-page runs and 0 for "no bound".
	MaxPages int

	Delay time.Duration
}

// Compile validates the config and compiles every selector into a
// reusable matcher. cascadia.Selector satisfies goquery.Matcher, so the
// compiled selectors plug straight into Selection.FindMatcher.
func (c *Config) Compile() (*Plan, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	items, err := cascadia.Compile(c.ItemSelector)
	if err != nil {
		return nil, configErrf("item_selector", "bad selector %q: %v", c.ItemSelector, err)
	}

	names, err := c.orderedNames()
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		StartURL: c.StartURL,
		Items:    items,
		Fields:   make([]FieldRule, 0, len(names)),
		MaxPages: 1,
		Delay:    c.Delay(),
	}

	for _, name := range names {
		spec := c.Fields[name]
		if spec.Selector == "" {
			return nil, configErrf("fields."+name, "selector is required")
		}
		m, err := cascadia.Compile(spec.Selector)
		if err != nil {
			return nil, configErrf("fields."+name, "bad selector %q: %v", spec.Selector, err)
		}
		plan.Fields = append(plan.Fields, FieldRule{
			Name:      name,
			Matcher:   m,
			Attribute: spec.Attribute,
			Multiple:  spec.Multiple,
		})
	}

	if c.Pagination != nil {
		next, err := cascadia.Compile(c.Pagination.NextPageSelector)
		if err != nil {
			return nil, configErrf("pagination.next_page_selector", "bad selector %q: %v", c.Pagination.NextPageSelector, err)
		}
		plan.Next = next
		plan.MaxPages = c.Pagination.MaxPages
	}

	return plan, nil
}

// FieldNames returns the output field names in column order.
func (p *Plan) FieldNames() []string {
	names := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		names[i] = f.Name
	}
	return names
}
