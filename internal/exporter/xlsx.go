package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"palaypulse/internal/dataset"
)

const sheetName = "Prices"

// WriteXLSX builds an xlsx workbook from the given records and writes
// it to w. Prices are written as numbers so spreadsheet formulas work
// on the exported data.
func WriteXLSX(w io.Writer, records []dataset.PriceRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headers := []string{"Date", "Type", "Category", "Price", "Unit"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("failed to write header %q: %w", h, err)
		}
	}

	for i, rec := range records {
		row := i + 2
		values := []interface{}{
			formatDate(rec.Date),
			rec.Type,
			rec.Category,
			rec.Price,
			rec.Unit,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("failed to compute cell for row %d: %w", row, err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
