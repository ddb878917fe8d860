package strategy

import (
	"context"
	"testing"
	"time"

	"DemandCast/internal/domain/models"
	"DemandCast/pkg/logger"
)

func makeSeries(start time.Time, quantities []float64) models.TrainingSeries {
	points := make([]models.SeriesPoint, len(quantities))
	for i, q := range quantities {
		points[i] = models.SeriesPoint{Date: start.AddDate(0, 0, i), Quantity: q}
	}
	return models.TrainingSeries{
		Scope:  models.Scope{PlaceID: 1},
		Points: points,
		Start:  start,
		End:    start.AddDate(0, 0, len(quantities)-1),
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestWeeklyFitEmptySeries(t *testing.T) {
	w := NewWeekly(logger.Nop(), fixedClock(time.Now()))
	_, err := w.Fit(context.Background(), models.TrainingSeries{}, nil)
	if err == nil {
		t.Fatalf("expected insufficient data error")
	}
}

func TestWeeklyPureWeeklyPattern(t *testing.T) {
	// 30 days of a fixed Mon..Sun pattern [5,5,5,5,5,10,10] with no
	// noise. 2024-06-03 is a Monday.
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	pattern := []float64{5, 5, 5, 5, 5, 10, 10}
	quantities := make([]float64, 30)
	for i := range quantities {
		quantities[i] = pattern[i%7]
	}

	w := NewWeekly(logger.Nop(), fixedClock(time.Date(2024, 7, 8, 9, 30, 0, 0, time.UTC))) // a Monday
	fitted, err := w.Fit(context.Background(), makeSeries(start, quantities), nil)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	preds, err := w.Forecast(context.Background(), fitted, 7, false)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(preds) != 7 {
		t.Fatalf("expected 7 predictions, got %d", len(preds))
	}
	for i, p := range preds {
		if p.Central != pattern[i] {
			t.Fatalf("day %d: expected %v, got %v", i, pattern[i], p.Central)
		}
		// Zero residual noise means every bound collapses onto the
		// central value.
		if p.Lower80 != p.Central || p.Upper80 != p.Central ||
			p.Lower95 != p.Central || p.Upper95 != p.Central {
			t.Fatalf("day %d: bounds not equal to central: %+v", i, p)
		}
		if p.Trend != p.Central || p.WeeklySeasonality != 0 {
			t.Fatalf("day %d: bad decomposition: %+v", i, p)
		}
	}
}

func TestWeeklyBoundsInvariants(t *testing.T) {
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	quantities := []float64{0, 1, 9, 2, 8, 3, 7, 1, 0, 9, 3, 6, 2, 8}

	w := NewWeekly(logger.Nop(), fixedClock(time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC)))
	fitted, err := w.Fit(context.Background(), makeSeries(start, quantities), nil)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	preds, err := w.Forecast(context.Background(), fitted, 14, false)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}

	prev := time.Time{}
	for i, p := range preds {
		if !prev.IsZero() && !p.Date.After(prev) {
			t.Fatalf("day %d: dates not strictly increasing", i)
		}
		prev = p.Date
		if p.Lower80 > p.Central || p.Central > p.Upper80 {
			t.Fatalf("day %d: 80%% bounds do not straddle central: %+v", i, p)
		}
		if p.Lower95 > p.Lower80 || p.Upper80 > p.Upper95 {
			t.Fatalf("day %d: 95%% bounds narrower than 80%%: %+v", i, p)
		}
		if p.Lower80 < 0 || p.Lower95 < 0 {
			t.Fatalf("day %d: negative lower bound: %+v", i, p)
		}
	}
}

func TestWeeklyIncludeHistory(t *testing.T) {
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	quantities := []float64{5, 5, 5, 5, 5, 10, 10}
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	w := NewWeekly(logger.Nop(), fixedClock(today))
	fitted, err := w.Fit(context.Background(), makeSeries(start, quantities), nil)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	preds, err := w.Forecast(context.Background(), fitted, 7, true)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(preds) != 14 {
		t.Fatalf("expected 7 history + 7 future rows, got %d", len(preds))
	}
	for i := 0; i < 7; i++ {
		if !preds[i].IsHistory {
			t.Fatalf("row %d: expected history marker", i)
		}
	}
	if preds[7].IsHistory || !preds[7].Date.Equal(today) {
		t.Fatalf("row 7: expected first future day at %v, got %+v", today, preds[7])
	}
}

func TestWeeklyForecastWithoutFit(t *testing.T) {
	w := NewWeekly(logger.Nop(), fixedClock(time.Now()))
	_, err := w.Forecast(context.Background(), nil, 7, false)
	if err == nil {
		t.Fatalf("expected not-trained error")
	}
}
