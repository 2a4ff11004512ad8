package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// CSVDir reads each table from <dir>/<table>.csv
type CSVDir struct {
	dir string
}

var _ Source = CSVDir{}

// NewCSVDir creates a CSV source over a directory
func NewCSVDir(dir string) CSVDir {
	return CSVDir{dir: dir}
}

// Table reads every record of one CSV file
func (c CSVDir) Table(name string) ([][]string, error) {
	filename := filepath.Join(c.dir, name+".csv")
	file, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrTableMissing, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", name, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", name, err)
	}
	return records, nil
}
