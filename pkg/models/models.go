package models

import (
	"encoding/json"
	"strings"
)

// Value is one extracted field value. A field is either single-valued or
// multi-valued; which one is fixed per field by the scrape config, so a
// Value never changes shape between records of the same run.
type Value struct {
	Text     string
	List     []string
	Multiple bool
}

// Single wraps a single-valued field value.
func Single(s string) Value {
	return Value{Text: s}
}

// Multi wraps a multi-valued field value. A nil slice is normalized to an
// empty one so it serializes as [] rather than null.
func Multi(vals []string) Value {
	if vals == nil {
		vals = []string{}
	}
	return Value{List: vals, Multiple: true}
}

// MarshalJSON emits a plain string for single values and an ordered array
// for multi values.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Multiple {
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Text)
}

// Flatten renders the value as a single string for tabular output,
// joining multi values with sep.
func (v Value) Flatten(sep string) string {
	if v.Multiple {
		return strings.Join(v.List, sep)
	}
	return v.Text
}

// Record is one extracted item. Its key set always equals the configured
// field names, even when selectors matched nothing.
type Record map[string]Value

// ResultSet is the ordered output of one run. Records are appended in
// page-then-item order and never reordered or deduplicated. Fields holds
// the field names in config declaration order for column-ordered sinks.
type ResultSet struct {
	Fields  []string
	Records []Record
}

// NewResultSet creates an empty ResultSet for the given field names.
func NewResultSet(fields []string) *ResultSet {
	return &ResultSet{
		Fields:  fields,
		Records: []Record{},
	}
}

// Append adds records to the end of the set.
func (rs *ResultSet) Append(recs ...Record) {
	rs.Records = append(rs.Records, recs...)
}

// Len returns the number of records collected so far.
func (rs *ResultSet) Len() int {
	return len(rs.Records)
}
