package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveColumns(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    columnMap
	}{
		{
			name:    "english headers",
			headers: []string{"Date", "Type", "Category", "Price", "Unit"},
			want:    columnMap{date: 0, typ: 1, category: 2, price: 3, unit: 4},
		},
		{
			name:    "filipino headers",
			headers: []string{"Petsa", "Uri", "Kategorya", "Presyo", "Yunit"},
			want:    columnMap{date: 0, typ: 1, category: 2, price: 3, unit: 4},
		},
		{
			name:    "mixed case and decoration",
			headers: []string{"Observation Date", "Rice TYPE", "Klase ng bigas", "Retail Price (PHP)", "Unit of Measure"},
			want:    columnMap{date: 0, typ: 1, category: 2, price: 3, unit: 4},
		},
		{
			name:    "shuffled columns",
			headers: []string{"Price", "Unit", "Date", "Category", "Type"},
			want:    columnMap{date: 2, typ: 4, category: 3, price: 0, unit: 1},
		},
		{
			name:    "unrecognised headers fall back to position",
			headers: []string{"a", "b", "c", "d"},
			want:    columnMap{date: 0, typ: 1, category: 2, price: 3, unit: -1},
		},
		{
			name:    "narrow table keeps missing fields unresolved",
			headers: []string{"x", "y"},
			want:    columnMap{date: 0, typ: 1, category: -1, price: -1, unit: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveColumns(tt.headers))
		})
	}
}

func TestNormalizer_Normalize(t *testing.T) {
	headers := []string{"Date", "Type", "Category", "Price", "Unit"}

	tests := []struct {
		name        string
		row         []string
		want        PriceRecord
		wantOutcome Outcome
	}{
		{
			name: "valid row",
			row:  []string{"2024-03-18", "LOCAL", "Special", "61.05", "PHP/kg"},
			want: PriceRecord{
				Date:     time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC),
				Type:     "LOCAL",
				Category: "Special",
				Price:    61.05,
				Unit:     "PHP/kg",
			},
			wantOutcome: RowAccepted,
		},
		{
			name: "slash date accepted",
			row:  []string{"2024/03/18", "LOCAL", "Special", "61.05", "PHP/kg"},
			want: PriceRecord{
				Date:     time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC),
				Type:     "LOCAL",
				Category: "Special",
				Price:    61.05,
				Unit:     "PHP/kg",
			},
			wantOutcome: RowAccepted,
		},
		{
			name: "currency noise stripped from price",
			row:  []string{"2024-03-18", "IMPORTED", "Premium", "₱ 1,250.50", "PHP/50kg"},
			want: PriceRecord{
				Date:     time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC),
				Type:     "IMPORTED",
				Category: "Premium",
				Price:    1250.50,
				Unit:     "PHP/50kg",
			},
			wantOutcome: RowAccepted,
		},
		{
			name: "missing unit gets default",
			row:  []string{"2024-03-18", "LOCAL", "Regular Milled", "48.50", ""},
			want: PriceRecord{
				Date:     time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC),
				Type:     "LOCAL",
				Category: "Regular Milled",
				Price:    48.50,
				Unit:     DefaultUnit,
			},
			wantOutcome: RowAccepted,
		},
		{
			name:        "unparseable date rejected",
			row:         []string{"18-03-2024", "LOCAL", "Special", "61.05", "PHP/kg"},
			wantOutcome: RowRejected,
		},
		{
			name:        "empty date rejected",
			row:         []string{"", "LOCAL", "Special", "61.05", "PHP/kg"},
			wantOutcome: RowRejected,
		},
		{
			name:        "zero price rejected",
			row:         []string{"2024-03-18", "LOCAL", "Special", "0", "PHP/kg"},
			wantOutcome: RowRejected,
		},
		{
			name:        "negative price rejected",
			row:         []string{"2024-03-18", "LOCAL", "Special", "-5.00", "PHP/kg"},
			wantOutcome: RowRejected,
		},
		{
			name:        "non-numeric price rejected",
			row:         []string{"2024-03-18", "LOCAL", "Special", "n/a", "PHP/kg"},
			wantOutcome: RowRejected,
		},
		{
			name:        "merge conflict start marker dropped",
			row:         []string{"<<<<<<< HEAD", "", "", "", ""},
			wantOutcome: RowDropped,
		},
		{
			name:        "merge conflict separator dropped",
			row:         []string{"=======", "", "", "", ""},
			wantOutcome: RowDropped,
		},
		{
			name:        "merge conflict end marker dropped",
			row:         []string{">>>>>>> feature/update-prices", "", "", "", ""},
			wantOutcome: RowDropped,
		},
		{
			name:        "short row rejected for missing price",
			row:         []string{"2024-03-18", "LOCAL"},
			wantOutcome: RowRejected,
		},
	}

	n := NewNormalizer(headers)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := n.Normalize(tt.row)
			require.Equal(t, tt.wantOutcome, outcome)
			if tt.wantOutcome == RowAccepted {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNormalizer_PositionalFallback(t *testing.T) {
	n := NewNormalizer([]string{"col1", "col2", "col3", "col4"})

	got, outcome := n.Normalize([]string{"2024-01-15", "LOCAL", "Special", "52.10"})
	require.Equal(t, RowAccepted, outcome)
	assert.Equal(t, "LOCAL", got.Type)
	assert.Equal(t, "Special", got.Category)
	assert.Equal(t, 52.10, got.Price)
	assert.Equal(t, DefaultUnit, got.Unit)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"61.05", 61.05, true},
		{"1,250.50", 1250.50, true},
		{"PHP 48.50", 48.50, true},
		{"0", 0, false},
		{"0.00", 0, false},
		{"-12.5", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parsePrice(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
