package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "palaypulse/internal/errors"
	"palaypulse/internal/dataset"
	"palaypulse/internal/forecast"
	"palaypulse/internal/infrastructure"
)

// PriceService is the query façade over the dataset store and the
// forecaster. Each operation is a pure composition over the in-memory
// store; input validation happens here, not in the forecaster.
type PriceService struct {
	store    *dataset.Store
	metrics  *infrastructure.Metrics
	validate *validator.Validate
	logger   *slog.Logger
}

// PredictRequest is the body of POST /api/predict.
type PredictRequest struct {
	Type       string `json:"type" validate:"required"`
	Category   string `json:"category" validate:"required"`
	WeeksAhead int    `json:"weeks_ahead" validate:"required,min=1,max=52"`
}

// HistoricalResult is the payload of the historical query.
type HistoricalResult struct {
	Records      []dataset.PriceRecord `json:"historical_data"`
	TotalRecords int                   `json:"total_records"`
	Pagination   *dataset.Pagination   `json:"pagination,omitempty"`
}

// NewPriceService creates the façade over an already-loaded store.
func NewPriceService(store *dataset.Store, metrics *infrastructure.Metrics, logger *slog.Logger) *PriceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PriceService{
		store:    store,
		metrics:  metrics,
		validate: validator.New(),
		logger:   logger.With(slog.String("component", "price_service")),
	}
}

// Types returns the series type to categories index.
func (s *PriceService) Types(ctx context.Context) map[string][]string {
	s.count("types")
	return s.store.TypesIndex()
}

// Current returns the records on the most recent date in the store.
func (s *PriceService) Current(ctx context.Context) dataset.CurrentSlice {
	s.count("current")
	return s.store.Current()
}

// Historical returns filtered records newest-first. When page > 0 the
// result is a fixed-size page with pagination metadata; otherwise a flat
// list capped at limit (0 means everything).
func (s *PriceService) Historical(ctx context.Context, filter dataset.Filter, page, pageSize, limit int) HistoricalResult {
	s.count("historical")

	if page > 0 {
		records, total, pagination := s.store.HistoricalPage(filter, page, pageSize)
		return HistoricalResult{Records: records, TotalRecords: total, Pagination: &pagination}
	}

	records := s.store.Historical(filter)
	total := len(records)
	if limit > 0 && limit < total {
		records = records[:limit]
	}
	return HistoricalResult{Records: records, TotalRecords: total}
}

// Stats returns summary statistics for the filtered records.
func (s *PriceService) Stats(ctx context.Context, filter dataset.Filter) dataset.Statistics {
	s.count("stats")
	return s.store.Stats(filter)
}

// Predict validates the request, selects the series and runs the
// forecaster. Validation failures and short series come back as
// APIErrors ready for the transport layer.
func (s *PriceService) Predict(ctx context.Context, req PredictRequest) (forecast.Result, error) {
	s.count("predict")

	if err := s.validate.Struct(req); err != nil {
		if s.metrics != nil {
			s.metrics.PredictionErrors.WithLabelValues("validation").Inc()
		}
		return forecast.Result{}, validationAPIError(err)
	}

	series := s.store.Series(req.Type, req.Category)
	result, err := forecast.Predict(series, req.WeeksAhead)
	if err != nil {
		if errors.Is(err, forecast.ErrInsufficientData) {
			s.logger.InfoContext(ctx, "prediction rejected, series too short",
				slog.String("type", req.Type),
				slog.String("category", req.Category),
				slog.Int("observations", len(series)))
			if s.metrics != nil {
				s.metrics.PredictionErrors.WithLabelValues("insufficient_data").Inc()
			}
			return forecast.Result{}, apierrors.NewWithDetails(
				apierrors.ErrInsufficientData.StatusCode,
				apierrors.ErrInsufficientData.ErrorCode,
				apierrors.ErrInsufficientData.Message,
				map[string]interface{}{
					"type":         req.Type,
					"category":     req.Category,
					"observations": len(series),
				},
			)
		}
		return forecast.Result{}, err
	}

	if s.metrics != nil {
		s.metrics.PredictionsServed.WithLabelValues(result.Trend).Inc()
	}

	s.logger.InfoContext(ctx, "prediction served",
		slog.String("type", req.Type),
		slog.String("category", req.Category),
		slog.Int("weeks_ahead", req.WeeksAhead),
		slog.Float64("predicted_price", result.PredictedPrice),
		slog.String("trend", result.Trend))

	return result, nil
}

// Records exposes the full dataset for the exporter.
func (s *PriceService) Records(ctx context.Context) []dataset.PriceRecord {
	s.count("export")
	return s.store.Records()
}

func (s *PriceService) count(operation string) {
	if s.metrics != nil {
		s.metrics.RequestsTotal.WithLabelValues(operation).Inc()
	}
}

// validationAPIError converts validator errors into the field-level
// APIError shape the handlers render.
func validationAPIError(err error) *apierrors.APIError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	fields := make([]apierrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierrors.ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: validationMessage(fe),
		})
	}
	return apierrors.NewValidationErrors(fields)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "max":
		return "weeks_ahead must be between 1 and 52"
	default:
		return "is invalid"
	}
}
