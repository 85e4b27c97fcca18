package output

import (
	"encoding/csv"
	"os"

	"github.com/field-harvesters/harvest/pkg/models"
)

// multiValueSeparator joins multi-valued fields into one CSV cell.
const multiValueSeparator = ", "

// SaveCSV writes the result set to a CSV file: a header row with the
// field names in config declaration order, then one row per record in
// crawl order. Multi-valued fields are flattened with ", ".
func SaveCSV(rs *models.ResultSet, filepath string) error {
	if err := ensureDir(filepath); err != nil {
		return err
	}
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(rs.Fields); err != nil {
		return err
	}

	for _, rec := range rs.Records {
		row := make([]string, len(rs.Fields))
		for i, name := range rs.Fields {
			row[i] = rec[name].Flatten(multiValueSeparator)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}
