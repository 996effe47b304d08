package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"palaypulse/internal/dataset"
)

// csvHeaders is the column order for CSV exports.
var csvHeaders = []string{"Date", "Type", "Category", "Price", "Unit"}

// WriteCSV streams the given records as CSV. A UTF-8 BOM is written
// first so Excel recognizes the encoding.
func WriteCSV(w io.Writer, records []dataset.PriceRecord) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, rec := range records {
		row := []string{
			formatDate(rec.Date),
			rec.Type,
			rec.Category,
			formatPrice(rec.Price),
			rec.Unit,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
