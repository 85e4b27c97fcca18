// Package output writes a finished result set to its export sinks. Both
// sinks receive the same records in crawl order; the CSV sink flattens
// multi-valued fields, the JSON sink preserves them as arrays.
package output

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/field-harvesters/harvest/pkg/models"
)

// SaveJSON writes an indented JSON export of the result set to filepath,
// one entry per record, multi-valued fields as ordered arrays.
func SaveJSON(rs *models.ResultSet, filepath string) error {
	records := rs.Records
	if records == nil {
		records = []models.Record{}
	}

	content, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := ensureDir(filepath); err != nil {
		return err
	}
	return os.WriteFile(filepath, content, 0644)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
