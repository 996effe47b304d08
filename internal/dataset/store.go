package dataset

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

// Store holds the validated in-memory record collection and the
// timestamp of the last successful load. It is built once at startup and
// never mutated afterwards other than by a wholesale Load, so reads need
// no locking.
type Store struct {
	logger     *slog.Logger
	records    []PriceRecord
	lastUpdate time.Time
}

// NewStore creates an empty store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger.With(slog.String("component", "dataset_store"))}
}

// Load runs every row from the source through the normalizer and
// replaces the store contents in one step. Readers never observe a
// partially loaded state because the record slice is swapped whole.
// A source that cannot be read at all returns ErrSourceUnavailable and
// leaves the store untouched.
func (s *Store) Load(ctx context.Context, source RowSource) (LoadResult, error) {
	headers, rows, err := source.Rows(ctx)
	if err != nil {
		return LoadResult{}, err
	}

	normalizer := NewNormalizer(headers)
	records := make([]PriceRecord, 0, len(rows))
	var result LoadResult
	var dropped int
	for _, row := range rows {
		rec, outcome := normalizer.Normalize(row)
		switch outcome {
		case RowDropped:
			dropped++
		case RowRejected:
			result.Rejected++
		default:
			records = append(records, rec)
			result.Accepted++
		}
	}

	s.records = records
	s.lastUpdate = time.Now()

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.Int("accepted", result.Accepted),
		slog.Int("rejected", result.Rejected),
		slog.Int("dropped", dropped))

	return result, nil
}

// Count returns the number of loaded records.
func (s *Store) Count() int {
	return len(s.records)
}

// LastUpdate returns the timestamp of the most recent successful load.
func (s *Store) LastUpdate() time.Time {
	return s.lastUpdate
}

// TypesIndex maps each series type to its distinct categories, sorted
// for stable output.
func (s *Store) TypesIndex() map[string][]string {
	seen := make(map[string]map[string]struct{})
	for _, r := range s.records {
		if r.Type == "" {
			continue
		}
		if seen[r.Type] == nil {
			seen[r.Type] = make(map[string]struct{})
		}
		if r.Category != "" {
			seen[r.Type][r.Category] = struct{}{}
		}
	}

	index := make(map[string][]string, len(seen))
	for typ, cats := range seen {
		list := make([]string, 0, len(cats))
		for c := range cats {
			list = append(list, c)
		}
		sort.Strings(list)
		index[typ] = list
	}
	return index
}

// Current returns the records dated on the maximum date in the store.
// An exact tie on the maximum date, not a recency window. An empty store
// yields an empty slice stamped with the current date.
func (s *Store) Current() CurrentSlice {
	if len(s.records) == 0 {
		return CurrentSlice{Records: []PriceRecord{}, AsOfDate: time.Now().Format("2006-01-02")}
	}

	var max time.Time
	for _, r := range s.records {
		if r.Date.After(max) {
			max = r.Date
		}
	}

	current := make([]PriceRecord, 0)
	for _, r := range s.records {
		if r.Date.Equal(max) {
			current = append(current, r)
		}
	}
	return CurrentSlice{Records: current, AsOfDate: max.Format("2006-01-02")}
}

// Historical returns the filtered records sorted newest-first.
func (s *Store) Historical(filter Filter) []PriceRecord {
	matched := make([]PriceRecord, 0)
	for _, r := range s.records {
		if filter.Matches(r) {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})
	return matched
}

// HistoricalPage returns one fixed-size page of the historical view with
// pagination metadata.
func (s *Store) HistoricalPage(filter Filter, page, pageSize int) ([]PriceRecord, int, Pagination) {
	all := s.Historical(filter)
	total := len(all)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return all[start:end], total, Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && total > 0,
	}
}

// Series returns the observations for one (type, category) pair sorted
// ascending by date, with non-positive prices excluded. An empty result
// is not an error; the forecaster decides whether a short series is.
func (s *Store) Series(seriesType, category string) []PriceRecord {
	series := make([]PriceRecord, 0)
	for _, r := range s.records {
		if r.Type == seriesType && r.Category == category && r.Price > 0 {
			series = append(series, r)
		}
	}
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series
}

// Stats computes summary statistics over the filtered records with
// Price > 0. An empty filtered set yields a zero-filled result.
func (s *Store) Stats(filter Filter) Statistics {
	var stats Statistics
	var sum float64
	var minRec, maxRec PriceRecord
	var earliest, latest time.Time

	for _, r := range s.records {
		if !filter.Matches(r) || r.Price <= 0 {
			continue
		}
		if stats.Count == 0 {
			minRec, maxRec = r, r
			earliest, latest = r.Date, r.Date
		} else {
			if r.Price < minRec.Price {
				minRec = r
			}
			if r.Price > maxRec.Price {
				maxRec = r
			}
			if r.Date.Before(earliest) {
				earliest = r.Date
			}
			if r.Date.After(latest) {
				latest = r.Date
			}
		}
		sum += r.Price
		stats.Count++
	}

	if stats.Count == 0 {
		return stats
	}

	minCopy, maxCopy := minRec, maxRec
	stats.AveragePrice = sum / float64(stats.Count)
	stats.MinPrice = minRec.Price
	stats.MaxPrice = maxRec.Price
	stats.MinRecord = &minCopy
	stats.MaxRecord = &maxCopy
	stats.DateRangeStart = earliest.Format("2006-01-02")
	stats.DateRangeEnd = latest.Format("2006-01-02")
	return stats
}

// Records returns the full record collection, newest load order
// preserved. Exposed for the exporter; callers must not mutate.
func (s *Store) Records() []PriceRecord {
	return s.records
}
