package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"palaypulse/internal/dataset"
	apierrors "palaypulse/internal/errors"
	"palaypulse/internal/forecast"
	"palaypulse/internal/services"
)

// stubPriceService records calls and returns canned results.
type stubPriceService struct {
	predictReq    services.PredictRequest
	predictResult forecast.Result
	predictErr    error

	historicalFilter dataset.Filter
	historicalPage   int
	historicalLimit  int
}

func (s *stubPriceService) Types(ctx context.Context) map[string][]string {
	return map[string][]string{"LOCAL": {"Premium", "Special"}}
}

func (s *stubPriceService) Current(ctx context.Context) dataset.CurrentSlice {
	return dataset.CurrentSlice{
		Records: []dataset.PriceRecord{{
			Date:     time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			Type:     "LOCAL",
			Category: "Special",
			Price:    54.00,
			Unit:     dataset.DefaultUnit,
		}},
		AsOfDate: "2024-03-15",
	}
}

func (s *stubPriceService) Historical(ctx context.Context, filter dataset.Filter, page, pageSize, limit int) services.HistoricalResult {
	s.historicalFilter = filter
	s.historicalPage = page
	s.historicalLimit = limit
	return services.HistoricalResult{Records: []dataset.PriceRecord{}, TotalRecords: 0}
}

func (s *stubPriceService) Stats(ctx context.Context, filter dataset.Filter) dataset.Statistics {
	return dataset.Statistics{Count: 3, AveragePrice: 53.17, MinPrice: 52.10, MaxPrice: 54.00}
}

func (s *stubPriceService) Predict(ctx context.Context, req services.PredictRequest) (forecast.Result, error) {
	s.predictReq = req
	return s.predictResult, s.predictErr
}

func (s *stubPriceService) Records(ctx context.Context) []dataset.PriceRecord {
	return []dataset.PriceRecord{{
		Date:     time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Type:     "LOCAL",
		Category: "Special",
		Price:    54.00,
		Unit:     dataset.DefaultUnit,
	}}
}

func newTestHandler(svc PriceServiceInterface) *PriceHandler {
	logger := slog.Default()
	return NewPriceHandler(svc, logger, apierrors.NewErrorHandler(logger))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestPriceHandler_Types(t *testing.T) {
	handler := newTestHandler(&stubPriceService{})

	req := httptest.NewRequest(http.MethodGet, "/types", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, data, "LOCAL")
}

func TestPriceHandler_Current(t *testing.T) {
	handler := newTestHandler(&stubPriceService{})

	req := httptest.NewRequest(http.MethodGet, "/current", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "2024-03-15", data["as_of_date"])

	prices := data["current_prices"].([]interface{})
	require.Len(t, prices, 1)
	first := prices[0].(map[string]interface{})
	assert.Equal(t, "2024-03-15", first["date"])
}

func TestPriceHandler_Historical_QueryParams(t *testing.T) {
	svc := &stubPriceService{}
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/historical?type=LOCAL&category=Special&page=2&page_size=10", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dataset.Filter{Type: "LOCAL", Category: "Special"}, svc.historicalFilter)
	assert.Equal(t, 2, svc.historicalPage)
}

func TestPriceHandler_Historical_BadPage(t *testing.T) {
	handler := newTestHandler(&stubPriceService{})

	req := httptest.NewRequest(http.MethodGet, "/historical?page=abc", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
}

func TestPriceHandler_Predict(t *testing.T) {
	svc := &stubPriceService{
		predictResult: forecast.Result{
			PredictedPrice: 58.00,
			PredictionDate: "2024-01-29",
			Confidence:     1.0,
			DataPoints:     3,
			Trend:          "upward",
			Slope:          2.0,
		},
	}
	handler := newTestHandler(svc)

	payload := `{"type":"LOCAL","category":"Special","weeks_ahead":2}`
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.Predict(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.PredictRequest{Type: "LOCAL", Category: "Special", WeeksAhead: 2}, svc.predictReq)

	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, 58.00, data["predicted_price"])
	assert.Equal(t, "upward", data["trend"])
}

func TestPriceHandler_Predict_InvalidJSON(t *testing.T) {
	handler := newTestHandler(&stubPriceService{})

	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.Predict(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])

	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_REQUEST", errObj["error_code"])
}

func TestPriceHandler_Predict_ServiceError(t *testing.T) {
	svc := &stubPriceService{
		predictErr: apierrors.NewWithDetails(
			http.StatusUnprocessableEntity,
			"INSUFFICIENT_DATA",
			"Not enough observations for a prediction",
			map[string]interface{}{"observations": 1},
		),
	}
	handler := newTestHandler(svc)

	payload := `{"type":"LOCAL","category":"Special","weeks_ahead":2}`
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.Predict(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "INSUFFICIENT_DATA", errObj["error_code"])
}

func TestPriceHandler_Export(t *testing.T) {
	handler := newTestHandler(&stubPriceService{})

	t.Run("xlsx by default", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/export", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
		assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
		assert.NotZero(t, rec.Body.Len())
	})

	t.Run("csv", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/export?format=csv", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, rec.Body.String(), "2024-03-15,LOCAL,Special,54.00")
	})

	t.Run("unsupported format", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/export?format=pdf", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
