package tabular

import (
	"fmt"
	"io"
	"slices"

	"github.com/xuri/excelize/v2"
)

// Workbook reads each table from the sheet of the same name
type Workbook struct {
	file   *excelize.File
	sheets []string
}

var _ Source = (*Workbook)(nil)

// OpenWorkbook opens an XLSX file
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return &Workbook{file: f, sheets: f.GetSheetList()}, nil
}

// ReadWorkbook reads an XLSX document from a stream
func ReadWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	return &Workbook{file: f, sheets: f.GetSheetList()}, nil
}

// Table returns the rows of one sheet with cells as displayed
func (w *Workbook) Table(name string) ([][]string, error) {
	if !slices.Contains(w.sheets, name) {
		return nil, fmt.Errorf("%w: sheet %s", ErrTableMissing, name)
	}
	rows, err := w.file.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}
	return rows, nil
}

// Close releases the workbook
func (w *Workbook) Close() error {
	return w.file.Close()
}
