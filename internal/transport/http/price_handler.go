package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"palaypulse/internal/dataset"
	apierrors "palaypulse/internal/errors"
	"palaypulse/internal/exporter"
	"palaypulse/internal/services"
)

// PriceHandler handles price query and forecasting HTTP requests.
type PriceHandler struct {
	service      PriceServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPriceHandler creates a new price handler.
func NewPriceHandler(service PriceServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PriceHandler {
	return &PriceHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "price_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the price routes mounted under /api/prices.
func (h *PriceHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/types", h.Types)
	r.Get("/current", h.Current)
	r.Get("/historical", h.Historical)
	r.Get("/stats", h.Stats)
	r.Get("/export", h.Export)

	return r
}

// Types handles GET /api/prices/types.
func (h *PriceHandler) Types(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, envelope(h.service.Types(r.Context())))
}

// Current handles GET /api/prices/current.
func (h *PriceHandler) Current(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, envelope(h.service.Current(r.Context())))
}

// Historical handles GET /api/prices/historical. The response is paged
// when a page parameter is present, otherwise a flat newest-first list
// capped by limit.
func (h *PriceHandler) Historical(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)

	page, err := queryInt(r, "page", 0)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	pageSize, err := queryInt(r, "page_size", 0)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result := h.service.Historical(r.Context(), filter, page, pageSize, limit)
	render.JSON(w, r, envelope(result))
}

// Stats handles GET /api/prices/stats.
func (h *PriceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	render.JSON(w, r, envelope(h.service.Stats(r.Context(), filter)))
}

// Predict handles POST /api/predict.
func (h *PriceHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictPayload
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusBadRequest,
			"INVALID_REQUEST",
			"Request body must be valid JSON",
		))
		return
	}

	result, err := h.service.Predict(r.Context(), req.toRequest())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, envelope(result))
}

// Export handles GET /api/prices/export. The default format is xlsx;
// format=csv streams CSV instead.
func (h *PriceHandler) Export(w http.ResponseWriter, r *http.Request) {
	records := h.service.Records(r.Context())
	stamp := time.Now().Format("2006-01-02")

	switch format := r.URL.Query().Get("format"); format {
	case "", "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=rice_prices_%s.xlsx", stamp))
		if err := exporter.WriteXLSX(w, records); err != nil {
			h.logger.ErrorContext(r.Context(), "xlsx export failed",
				slog.String("error", err.Error()))
		}
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=rice_prices_%s.csv", stamp))
		if err := exporter.WriteCSV(w, records); err != nil {
			h.logger.ErrorContext(r.Context(), "csv export failed",
				slog.String("error", err.Error()))
		}
	default:
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(
			"format", fmt.Sprintf("Unsupported export format: %s", format)))
	}
}

// predictPayload is the POST /api/predict request body.
type predictPayload struct {
	Type       string `json:"type"`
	Category   string `json:"category"`
	WeeksAhead int    `json:"weeks_ahead"`
}

func (p predictPayload) toRequest() services.PredictRequest {
	return services.PredictRequest{
		Type:       p.Type,
		Category:   p.Category,
		WeeksAhead: p.WeeksAhead,
	}
}

// filterFromQuery reads the optional type and category query params.
func filterFromQuery(r *http.Request) dataset.Filter {
	q := r.URL.Query()
	return dataset.Filter{
		Type:     q.Get("type"),
		Category: q.Get("category"),
	}
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apierrors.ErrValidation(name, fmt.Sprintf("%s must be a non-negative integer", name))
	}
	return v, nil
}

// envelope wraps a success payload in the standard response shape.
func envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"success": true,
		"data":    data,
	}
}
