package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Tables lists every table in load order
var Tables = []string{
	TableSKUs, TableFacilities, TableShelves, TableExpansionTiers,
	TableSuppliers, TableLeadTimes, TableDemand,
}

var headers = map[string][]string{
	TableSKUs:           skuHeader,
	TableFacilities:     facilityHeader,
	TableShelves:        shelfHeader,
	TableExpansionTiers: tierHeader,
	TableSuppliers:      supplierHeader,
	TableLeadTimes:      leadTimeHeader,
	TableDemand:         demandHeader,
}

// Header returns a copy of the expected header of a table, nil for an unknown name
func Header(name string) []string {
	h, ok := headers[name]
	if !ok {
		return nil
	}
	return append([]string(nil), h...)
}

// WriteCSVDir writes each table to <dir>/<table>.csv. Rows include the header.
func WriteCSVDir(dir string, tables map[string][][]string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	for _, name := range Tables {
		rows, ok := tables[name]
		if !ok {
			continue
		}
		if err := writeCSVFile(filepath.Join(dir, name+".csv"), rows); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

func writeCSVFile(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return file.Close()
}

// WriteWorkbook writes each table to a sheet of one XLSX file
func WriteWorkbook(path string, tables map[string][][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	written := 0
	for _, name := range Tables {
		rows, ok := tables[name]
		if !ok {
			continue
		}
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return fmt.Errorf("failed to write sheet %s row %d: %w", name, i+1, err)
			}
		}
		written++
	}
	if written == 0 {
		return fmt.Errorf("no tables to write")
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}
