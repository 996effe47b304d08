package dataset

import (
	"strconv"
	"strings"
	"time"
)

// Field aliases recognised during column resolution. Headers are matched
// by case-insensitive substring against each alias in order; sources use
// both English and Filipino labels so both sets are listed.
var (
	dateAliases     = []string{"date", "petsa"}
	typeAliases     = []string{"type", "uri"}
	categoryAliases = []string{"category", "kategorya", "klase"}
	priceAliases    = []string{"price", "presyo"}
	unitAliases     = []string{"unit", "yunit"}
)

// conflictMarkers identify rows leaked from unresolved version-control
// merges. Such rows are dropped silently, not counted as rejections of
// real observations.
var conflictMarkers = []string{"<<<<<<<", "=======", ">>>>>>>"}

// Outcome classifies the result of normalizing one raw row.
type Outcome int

const (
	// RowAccepted means the row produced a valid PriceRecord.
	RowAccepted Outcome = iota
	// RowRejected means the row was a malformed observation; the loader
	// counts these.
	RowRejected
	// RowDropped means the row was merge-conflict residue, not an
	// observation at all; skipped without counting against data quality.
	RowDropped
)

var dateLayouts = []string{"2006-01-02", "2006/01/02"}

// columnMap resolves header positions for the logical record fields.
type columnMap struct {
	date     int
	typ      int
	category int
	price    int
	unit     int
}

// resolveColumns maps headers to field positions using the alias tables,
// falling back to positional order (date, type, category, price) when no
// alias matches a field. Missing unit stays -1; the default unit applies.
func resolveColumns(headers []string) columnMap {
	cm := columnMap{date: -1, typ: -1, category: -1, price: -1, unit: -1}

	match := func(aliases []string) int {
		for i, h := range headers {
			h = strings.ToLower(strings.TrimSpace(h))
			for _, alias := range aliases {
				if strings.Contains(h, alias) {
					return i
				}
			}
		}
		return -1
	}

	cm.date = match(dateAliases)
	cm.typ = match(typeAliases)
	cm.category = match(categoryAliases)
	cm.price = match(priceAliases)
	cm.unit = match(unitAliases)

	// Positional fallback, last resort only for fields no alias resolved.
	positional := []int{0, 1, 2, 3}
	fields := []*int{&cm.date, &cm.typ, &cm.category, &cm.price}
	for i, f := range fields {
		if *f == -1 && positional[i] < len(headers) {
			*f = positional[i]
		}
	}

	return cm
}

// Normalizer converts raw tabular rows into canonical PriceRecords.
// It is pure: its only state is the column map resolved from the header
// row it was built with.
type Normalizer struct {
	columns columnMap
	width   int
}

// NewNormalizer resolves the column layout for one ingestion source.
func NewNormalizer(headers []string) *Normalizer {
	return &Normalizer{columns: resolveColumns(headers), width: len(headers)}
}

// Normalize converts one raw row into a PriceRecord. RowDropped marks
// merge-conflict residue, which is not an observation and must not be
// counted as one. RowRejected marks a real row with an unparseable date
// or a price that is missing, non-numeric, or non-positive. Zero is
// treated as missing, not as a free price.
func (n *Normalizer) Normalize(row []string) (PriceRecord, Outcome) {
	if isConflictRow(row) {
		return PriceRecord{}, RowDropped
	}

	date, ok := parseDate(cell(row, n.columns.date))
	if !ok {
		return PriceRecord{}, RowRejected
	}

	price, ok := parsePrice(cell(row, n.columns.price))
	if !ok {
		return PriceRecord{}, RowRejected
	}

	unit := cell(row, n.columns.unit)
	if unit == "" {
		unit = DefaultUnit
	}

	return PriceRecord{
		Date:     date,
		Type:     cell(row, n.columns.typ),
		Category: cell(row, n.columns.category),
		Price:    price,
		Unit:     unit,
	}, RowAccepted
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isConflictRow(row []string) bool {
	for _, v := range row {
		v = strings.TrimSpace(v)
		for _, marker := range conflictMarkers {
			if strings.HasPrefix(v, marker) {
				return true
			}
		}
	}
	return false
}

// parseDate accepts ISO 8601 and the slash variant. A row whose date
// does not parse fails outright; dates are never fabricated.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parsePrice strips thousands separators and currency noise, then
// requires a strictly positive decimal.
func parsePrice(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
