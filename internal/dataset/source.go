package dataset

import (
	"context"
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrSourceUnavailable signals that a row source could not be read at
// all, as opposed to a readable source containing bad rows. The caller
// decides whether to fall back to the embedded dataset or serve empty.
var ErrSourceUnavailable = errors.New("row source unavailable")

// RowSource supplies raw tabular rows to the load pipeline. Sources are
// injected so the store stays testable without file I/O.
type RowSource interface {
	// Rows returns the header row and all data rows.
	Rows(ctx context.Context) (headers []string, rows [][]string, err error)
}

// CSVSource reads rows from a CSV file on disk.
type CSVSource struct {
	Path string
}

// Rows implements RowSource. A missing or unopenable file is reported as
// ErrSourceUnavailable; malformed individual lines are passed through for
// the normalizer to reject.
func (s CSVSource) Rows(ctx context.Context) ([]string, [][]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open %s: %v", ErrSourceUnavailable, s.Path, err)
	}
	defer f.Close()
	return readCSV(ctx, f)
}

//go:embed fallback.csv
var fallbackFS embed.FS

// FallbackSource serves the embedded reference dataset, used when no CSV
// file is available and the fallback policy is enabled.
type FallbackSource struct{}

// Rows implements RowSource from the embedded dataset.
func (FallbackSource) Rows(ctx context.Context) ([]string, [][]string, error) {
	f, err := fallbackFS.Open("fallback.csv")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: embedded dataset: %v", ErrSourceUnavailable, err)
	}
	defer f.Close()
	return readCSV(ctx, f)
}

func readCSV(ctx context.Context, r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	headers, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read header: %v", ErrSourceUnavailable, err)
	}

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Mangled lines stay in the row stream as empty rows so the
			// normalizer rejects them and the caller sees them counted.
			if rec, ok := err.(*csv.ParseError); ok && rec != nil {
				rows = append(rows, nil)
				continue
			}
			return nil, nil, fmt.Errorf("%w: read rows: %v", ErrSourceUnavailable, err)
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}
