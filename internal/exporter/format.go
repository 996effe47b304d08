package exporter

import (
	"fmt"
	"time"
)

// formatPrice formats a price with exactly 2 decimal places so values
// like 48.5 appear as 48.50 in exports.
func formatPrice(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatDate formats a record date in ISO form.
func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
