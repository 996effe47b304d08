package dataset

import (
	"encoding/json"
	"time"
)

// DefaultUnit is applied when a source row carries no unit column.
const DefaultUnit = "PHP/kg"

// PriceRecord is one observed rice price point.
type PriceRecord struct {
	Date     time.Time `json:"date"`
	Type     string    `json:"type"`
	Category string    `json:"category"`
	Price    float64   `json:"price"`
	Unit     string    `json:"unit"`
}

// MarshalDate returns the record date in the canonical wire format.
func (r PriceRecord) MarshalDate() string {
	return r.Date.Format("2006-01-02")
}

// MarshalJSON emits the date in the canonical YYYY-MM-DD wire format
// instead of the RFC 3339 default for time.Time.
func (r PriceRecord) MarshalJSON() ([]byte, error) {
	type wireRecord struct {
		Date     string  `json:"date"`
		Type     string  `json:"type"`
		Category string  `json:"category"`
		Price    float64 `json:"price"`
		Unit     string  `json:"unit"`
	}
	return json.Marshal(wireRecord{
		Date:     r.MarshalDate(),
		Type:     r.Type,
		Category: r.Category,
		Price:    r.Price,
		Unit:     r.Unit,
	})
}

// LoadResult reports the outcome of running a row source through the
// normalizer. A load with rejected rows is still a successful load;
// rejection counts are surfaced so callers can log data quality.
type LoadResult struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// Filter narrows store queries to a series type and/or category.
// Empty fields match everything.
type Filter struct {
	Type     string
	Category string
}

// Matches reports whether a record passes the filter.
func (f Filter) Matches(r PriceRecord) bool {
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	return true
}

// Statistics summarises the priced records matching a filter.
// Only records with Price > 0 contribute; Count of zero means the
// remaining fields are zero-filled rather than meaningful.
type Statistics struct {
	AveragePrice   float64      `json:"average_price"`
	MinPrice       float64      `json:"min_price"`
	MaxPrice       float64      `json:"max_price"`
	MinRecord      *PriceRecord `json:"min_price_entry,omitempty"`
	MaxRecord      *PriceRecord `json:"max_price_entry,omitempty"`
	DateRangeStart string       `json:"date_range_start,omitempty"`
	DateRangeEnd   string       `json:"date_range_end,omitempty"`
	Count          int          `json:"count"`
}

// CurrentSlice is the set of records dated on the maximum date present
// in the store.
type CurrentSlice struct {
	Records  []PriceRecord `json:"current_prices"`
	AsOfDate string        `json:"as_of_date"`
}

// Pagination describes one page of a historical query.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}
