// Package scrape defines the declarative site description that drives a
// run: which URL to start from, how to find repeated item blocks, how to
// map each block to named output fields, and how to follow pagination.
package scrape

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	urlutil "github.com/field-harvesters/harvest/internal/utils/url"
)

// FieldSpec is the extraction rule for one named output field.
type FieldSpec struct {
	Selector  string `json:"selector"`
	Attribute string `json:"attribute,omitempty"`
	Multiple  bool   `json:"multiple,omitempty"`
}

// PaginationSpec describes how to reach the next page. MaxPages <= 0
// means no page bound; the crawl ends when a page has no next link.
type PaginationSpec struct {
	NextPageSelector string `json:"next_page_selector"`
	MaxPages         int    `json:"max_pages,omitempty"`
}

// Config is the full site description, loaded once per run.
type Config struct {
	StartURL     string               `json:"start_url"`
	ItemSelector string               `json:"item_selector"`
	Fields       map[string]FieldSpec `json:"fields"`
	Pagination   *PaginationSpec      `json:"pagination,omitempty"`
	DelaySeconds float64              `json:"delay_seconds,omitempty"`

	// FieldOrder preserves the declaration order of Fields from the
	// config file. It drives CSV column order. LoadFile fills it; when
	// empty (configs built in code), Compile falls back to sorted names.
	FieldOrder []string `json:"-"`
}

// ConfigError reports an invalid or incomplete configuration. It is
// always raised before any network activity.
type ConfigError struct {
	Field  string
	Reason string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config: " + e.Reason
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func configErrf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// LoadFile reads and decodes a JSON scrape config from path.
func LoadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a JSON scrape config, capturing field declaration order.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, configErrf("", "not valid JSON: %v", err)
	}

	order, err := scanFieldOrder(raw)
	if err != nil {
		return nil, configErrf("fields", "cannot read declaration order: %v", err)
	}
	cfg.FieldOrder = order

	return &cfg, nil
}

// scanFieldOrder walks the raw JSON tokens to recover the key order of
// the top-level "fields" object, which encoding/json's map decoding
// discards.
func scanFieldOrder(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("top-level value is not an object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		if key != "fields" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
			continue
		}

		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return nil, fmt.Errorf("fields is not an object")
		}

		var order []string
		for dec.More() {
			nameTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			name, _ := nameTok.(string)
			order = append(order, name)

			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
		}
		return order, nil
	}

	return nil, nil
}

// orderedNames returns the field names in declaration order, falling
// back to a sorted copy when no order was captured.
func (c *Config) orderedNames() ([]string, error) {
	if len(c.FieldOrder) == 0 {
		names := make([]string, 0, len(c.Fields))
		for name := range c.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		return names, nil
	}

	if len(c.FieldOrder) != len(c.Fields) {
		return nil, configErrf("fields", "declared order lists %d fields, config has %d", len(c.FieldOrder), len(c.Fields))
	}
	for _, name := range c.FieldOrder {
		if _, ok := c.Fields[name]; !ok {
			return nil, configErrf("fields", "ordered field %q not present", name)
		}
	}
	return c.FieldOrder, nil
}

// Delay converts the configured delay to a duration.
func (c *Config) Delay() time.Duration {
	if c.DelaySeconds <= 0 {
		return 0
	}
	return time.Duration(c.DelaySeconds * float64(time.Second))
}

func (c *Config) validate() error {
	if c.StartURL == "" {
		return configErrf("start_url", "required")
	}
	if err := urlutil.ValidateURL(c.StartURL); err != nil {
		return configErrf("start_url", "%v", err)
	}
	if c.ItemSelector == "" {
		return configErrf("item_selector", "required")
	}
	if len(c.Fields) == 0 {
		return configErrf("fields", "at least one field is required")
	}
	if c.DelaySeconds < 0 {
		return configErrf("delay_seconds", "must not be negative")
	}
	if c.Pagination != nil {
		if c.Pagination.NextPageSelector == "" {
			return configErrf("pagination.next_page_selector", "required when pagination is set")
		}
		if c.Pagination.MaxPages < 0 {
			return configErrf("pagination.max_pages", "must not be negative")
		}
	}
	return nil
}
