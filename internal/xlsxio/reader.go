package xlsxio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hkretail/promo-dispatch/internal/calc"
	"github.com/hkretail/promo-dispatch/internal/table"
)

// Expected sheet names. Lookups are tolerant of spacing and case, so a
// workbook carrying "Sheet 1" where "Sheet1" is expected still loads.
const (
	InventorySheet  = "Sheet1"
	TargetSheet     = "Sheet 1"
	AllocationSheet = "Sheet 2"
)

// ReadInventory loads the inventory extract (File A). XLSX workbooks read
// their "Sheet1" sheet; a .csv file is read as a whole.
func ReadInventory(path string) (*table.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return readCSV(path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	return readSheet(f, "File A", InventorySheet)
}

// ReadPromotion loads the promotion workbook (File B): "Sheet 1" holds the
// per-SKU targets, "Sheet 2" the per-site allocation percentages.
func ReadPromotion(path string) (targets, allocations *table.Table, err error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	targets, err = readSheet(f, "File B Sheet1", TargetSheet)
	if err != nil {
		return nil, nil, err
	}
	allocations, err = readSheet(f, "File B Sheet2", AllocationSheet)
	if err != nil {
		return nil, nil, err
	}
	return targets, allocations, nil
}

// readSheet resolves the sheet by normalized name and loads it into a Table.
// A missing sheet is a SchemaError carrying the workbook's actual sheet list.
func readSheet(f *excelize.File, input, name string) (*table.Table, error) {
	sheets := f.GetSheetList()

	found := ""
	for _, s := range sheets {
		if normalizeSheetName(s) == normalizeSheetName(name) {
			found = s
			break
		}
	}
	if found == "" {
		return nil, &calc.SchemaError{Input: input, AvailableSheets: sheets}
	}

	rows, err := f.Rows(found)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", found, err)
	}
	defer rows.Close()

	var header []string
	var data [][]string
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from sheet %s: %w", found, err)
		}
		if header == nil {
			header = record
			continue
		}
		data = append(data, record)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in sheet %s: %w", found, err)
	}

	return table.New(header, data), nil
}

func normalizeSheetName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "")
}

func readCSV(path string) (*table.Table, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file %s: %w", path, err)
	}
	defer in.Close()

	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv file %s: %w", path, err)
	}
	if len(records) == 0 {
		return table.New(nil, nil), nil
	}
	return table.New(records[0], records[1:]), nil
}
