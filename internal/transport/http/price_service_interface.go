package http

import (
	"context"

	"palaypulse/internal/dataset"
	"palaypulse/internal/forecast"
	"palaypulse/internal/services"
)

// PriceServiceInterface defines the interface for price query and
// forecasting operations.
type PriceServiceInterface interface {
	Types(ctx context.Context) map[string][]string
	Current(ctx context.Context) dataset.CurrentSlice
	Historical(ctx context.Context, filter dataset.Filter, page, pageSize, limit int) services.HistoricalResult
	Stats(ctx context.Context, filter dataset.Filter) dataset.Statistics
	Predict(ctx context.Context, req services.PredictRequest) (forecast.Result, error)
	Records(ctx context.Context) []dataset.PriceRecord
}
