package features

import (
	"math"
	"testing"
	"time"

	"DemandCast/internal/domain/models"
)

func makeSeries(start time.Time, quantities []float64) models.TrainingSeries {
	points := make([]models.SeriesPoint, len(quantities))
	for i, q := range quantities {
		points[i] = models.SeriesPoint{Date: start.AddDate(0, 0, i), Quantity: q}
	}
	return models.TrainingSeries{
		Points: points,
		Start:  start,
		End:    start.AddDate(0, 0, len(quantities)-1),
	}
}

func TestCalendarFeatures(t *testing.T) {
	// 2024-06-01 is a Saturday.
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := NewEngineer().Enrich(makeSeries(start, []float64{1, 2, 3}))

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	sat := rows[0]
	if sat.DayOfWeek != int(time.Saturday) || !sat.IsWeekend {
		t.Fatalf("expected saturday weekend, got dow=%d weekend=%v", sat.DayOfWeek, sat.IsWeekend)
	}
	mon := rows[2]
	if mon.IsWeekend {
		t.Fatalf("monday flagged as weekend")
	}
	if sat.Month != 6 || sat.Quarter != 2 || sat.DayOfMonth != 1 {
		t.Fatalf("bad calendar features: %+v", sat)
	}
}

func TestShortSeriesHasNoHistoryFeatures(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := NewEngineer().Enrich(makeSeries(start, []float64{1, 2, 3, 4, 5, 6, 7}))

	for i, r := range rows {
		if r.Lag7 != nil || r.RollMean7 != nil || r.Lag30 != nil {
			t.Fatalf("row %d: history features on 7-row series", i)
		}
	}
}

func TestLagAndRollingFeatures(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	quantities := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	rows := NewEngineer().Enrich(makeSeries(start, quantities))

	if rows[6].Lag7 != nil {
		t.Fatalf("lag_7 present before index 7")
	}
	if rows[7].Lag7 == nil || *rows[7].Lag7 != 1 {
		t.Fatalf("expected lag_7 of 1 at index 7, got %v", rows[7].Lag7)
	}
	// Early rows still roll over however many rows exist.
	if rows[0].RollMean7 == nil || *rows[0].RollMean7 != 1 {
		t.Fatalf("expected rolling mean 1 at index 0, got %v", rows[0].RollMean7)
	}
	if rows[1].RollMean7 == nil || *rows[1].RollMean7 != 1.5 {
		t.Fatalf("expected rolling mean 1.5 at index 1, got %v", rows[1].RollMean7)
	}
	// Full window at index 9: mean of 3..10 is 6.5.
	if rows[9].RollMean7 == nil || *rows[9].RollMean7 != 6.5 {
		t.Fatalf("expected rolling mean 6.5 at index 9, got %v", rows[9].RollMean7)
	}
	if rows[0].RollStd7 != nil {
		t.Fatalf("sample std defined for a single-row window")
	}
	if rows[1].RollStd7 == nil || math.Abs(*rows[1].RollStd7-math.Sqrt(0.5)) > 1e-9 {
		t.Fatalf("unexpected rolling std at index 1: %v", rows[1].RollStd7)
	}
}

func TestLongWindowFeatures(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	quantities := make([]float64, 35)
	for i := range quantities {
		quantities[i] = float64(i)
	}
	rows := NewEngineer().Enrich(makeSeries(start, quantities))

	if rows[29].Lag30 != nil {
		t.Fatalf("lag_30 present before index 30")
	}
	if rows[30].Lag30 == nil || *rows[30].Lag30 != 0 {
		t.Fatalf("expected lag_30 of 0 at index 30, got %v", rows[30].Lag30)
	}
	if rows[34].RollMean30 == nil {
		t.Fatalf("missing rolling mean 30 at tail")
	}
}
