package forecast

import (
	"errors"
	"math"

	"palaypulse/internal/dataset"
)

// ErrInsufficientData indicates a series with fewer than two valid
// observations. Client-correctable; never retried.
var ErrInsufficientData = errors.New("insufficient data for prediction")

// Extrapolation bound relative to the last observed price. A linear fit
// over a short or noisy series can run away; the clamp keeps predictions
// within a plausible band.
const boundFactor = 0.5

// slopeEpsilon is the dead-zone below which a fitted slope reports as a
// stable trend.
const slopeEpsilon = 0.01

// Result is the derived forecast for one series. Not persisted.
type Result struct {
	PredictedPrice float64 `json:"predicted_price"`
	PredictionDate string  `json:"prediction_date"`
	Confidence     float64 `json:"confidence"`
	DataPoints     int     `json:"data_points"`
	Trend          string  `json:"trend"`
	Slope          float64 `json:"slope"`
}

// Predict fits a linear trend to the series and projects the price
// weeksAhead steps past the last observation.
//
// The regression time axis is the zero-based observation index, not a
// calendar offset: unevenly spaced observations would otherwise bias the
// fit toward calendar gaps. One "week ahead" therefore advances the
// index by one step; the returned PredictionDate advances seven calendar
// days per week from the last observed date for display.
func Predict(series []dataset.PriceRecord, weeksAhead int) (Result, error) {
	if len(series) < 2 {
		return Result{}, ErrInsufficientData
	}

	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	for i, r := range series {
		xs[i] = float64(i)
		ys[i] = r.Price
	}

	reg := FitOLS(xs, ys)

	last := series[len(series)-1]
	target := float64(len(series)-1) + float64(weeksAhead)
	raw := reg.Slope*target + reg.Intercept

	// Clamp to non-negative and to within ±50% of the last observation.
	lower := last.Price * (1 - boundFactor)
	upper := last.Price * (1 + boundFactor)
	predicted := math.Min(math.Max(raw, lower), upper)
	if predicted < 0 {
		predicted = 0
	}

	return Result{
		PredictedPrice: round2(predicted),
		PredictionDate: last.Date.AddDate(0, 0, weeksAhead*7).Format("2006-01-02"),
		Confidence:     reg.RSquared,
		DataPoints:     len(series),
		Trend:          trendLabel(reg.Slope),
		Slope:          reg.Slope,
	}, nil
}

func trendLabel(slope float64) string {
	switch {
	case slope > slopeEpsilon:
		return "upward"
	case slope < -slopeEpsilon:
		return "downward"
	default:
		return "stable"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
