package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"DemandCast/internal/domain/models"
	"DemandCast/pkg/logger"
)

func seasonalServer(t *testing.T, rows []seasonalForecastRow) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		var req seasonalForecastRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode forecast request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(seasonalForecastResponse{Rows: rows})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSeasonalFitFloor(t *testing.T) {
	s := NewSeasonal("http://unused", time.Second, logger.Nop())
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	quantities := make([]float64, 13)

	_, err := s.Fit(context.Background(), makeSeries(start, quantities), nil)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
}

func TestSeasonalFitParams(t *testing.T) {
	s := NewSeasonal("http://unused", time.Second, logger.Nop())
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	short, err := s.Fit(context.Background(), makeSeries(start, make([]float64, 30)), nil)
	if err != nil {
		t.Fatalf("fit short: %v", err)
	}
	if short.Params()["yearly_seasonality"] != false {
		t.Fatalf("yearly seasonality on for a 30-day series")
	}
	if short.Params()["weekly_seasonality"] != true || short.Params()["daily_seasonality"] != false {
		t.Fatalf("unexpected seasonality flags: %v", short.Params())
	}
	if short.Params()["changepoint_prior_scale"] != 0.05 {
		t.Fatalf("unexpected changepoint prior: %v", short.Params())
	}

	long, err := s.Fit(context.Background(), makeSeries(start, make([]float64, 400)), nil)
	if err != nil {
		t.Fatalf("fit long: %v", err)
	}
	if long.Params()["yearly_seasonality"] != true {
		t.Fatalf("yearly seasonality off for a 400-day series")
	}

	over, err := s.Fit(context.Background(), makeSeries(start, make([]float64, 30)),
		map[string]any{"changepoint_prior_scale": 0.5})
	if err != nil {
		t.Fatalf("fit override: %v", err)
	}
	if over.Params()["changepoint_prior_scale"] != 0.5 {
		t.Fatalf("override not applied: %v", over.Params())
	}
}

func TestSeasonalForecastWideningAndClamping(t *testing.T) {
	rows := []seasonalForecastRow{
		{Date: "2024-07-01", Yhat: 10, Lower80: 6, Upper80: 14, Trend: 9, Weekly: 1},
		{Date: "2024-07-02", Yhat: -2, Lower80: -5, Upper80: 1, Trend: -2, Weekly: 0},
	}
	srv := seasonalServer(t, rows)

	s := NewSeasonal(srv.URL, time.Second, logger.Nop())
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	fitted, err := s.Fit(context.Background(), makeSeries(start, make([]float64, 30)), nil)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	preds, err := s.Forecast(context.Background(), fitted, 2, false)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(preds) != 2 {
		t.Fatalf("expected 2 predictions, got %d", len(preds))
	}

	// Half-width 4 at 80% widens to 6 at 95%.
	p := preds[0]
	if p.Central != 10 || p.Lower95 != 4 || p.Upper95 != 16 {
		t.Fatalf("bad widening: %+v", p)
	}
	if p.Trend != 9 || p.WeeklySeasonality != 1 {
		t.Fatalf("decomposition lost: %+v", p)
	}

	// Negative central and lower bounds clamp to zero, the upper does not.
	q := preds[1]
	if q.Central != 0 || q.Lower80 != 0 || q.Lower95 != 0 {
		t.Fatalf("clamping failed: %+v", q)
	}
	if q.Upper80 != 1 {
		t.Fatalf("upper bound clamped: %+v", q)
	}
}

func TestSeasonalForecastRejectsOutOfOrderDates(t *testing.T) {
	rows := []seasonalForecastRow{
		{Date: "2024-07-02", Yhat: 1},
		{Date: "2024-07-01", Yhat: 1},
	}
	srv := seasonalServer(t, rows)

	s := NewSeasonal(srv.URL, time.Second, logger.Nop())
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	fitted, err := s.Fit(context.Background(), makeSeries(start, make([]float64, 30)), nil)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if _, err := s.Forecast(context.Background(), fitted, 2, false); err == nil {
		t.Fatalf("expected ordering error")
	}
}

func TestSeasonalForecastTrimsHistory(t *testing.T) {
	// Training ends 2024-06-30; in-sample rows older than a week before
	// the end are dropped, the rest are history-marked.
	rows := []seasonalForecastRow{
		{Date: "2024-06-20", Yhat: 1},
		{Date: "2024-06-25", Yhat: 2},
		{Date: "2024-06-30", Yhat: 3},
		{Date: "2024-07-01", Yhat: 4},
	}
	srv := seasonalServer(t, rows)

	s := NewSeasonal(srv.URL, time.Second, logger.Nop())
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	fitted, err := s.Fit(context.Background(), makeSeries(start, make([]float64, 30)), nil)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	preds, err := s.Forecast(context.Background(), fitted, 1, true)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(preds) != 3 {
		t.Fatalf("expected 06-20 row dropped, got %d rows", len(preds))
	}
	if !preds[0].IsHistory || !preds[1].IsHistory || preds[2].IsHistory {
		t.Fatalf("bad history markers: %+v", preds)
	}
}

func TestSeasonalProbe(t *testing.T) {
	ctx := context.Background()

	if NewSeasonal("", time.Second, logger.Nop()).Available(ctx) {
		t.Fatalf("available without a configured URL")
	}

	srv := seasonalServer(t, nil)
	if !NewSeasonal(srv.URL, time.Second, logger.Nop()).Available(ctx) {
		t.Fatalf("healthy sidecar reported unavailable")
	}

	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	if NewSeasonal(down.URL, time.Second, logger.Nop()).Available(ctx) {
		t.Fatalf("unreachable sidecar reported available")
	}
}
