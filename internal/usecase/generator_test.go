package usecase

import (
	"context"
	"testing"

	"DemandCast/internal/domain/models"
	"DemandCast/pkg/logger"
)

func TestGenerateAllIsolatesFailures(t *testing.T) {
	pattern := []float64{5, 5, 5, 5, 5, 10, 10}
	start := day(2024, 6, 3)
	points := make([]models.SeriesPoint, 30)
	for i := range points {
		points[i] = models.SeriesPoint{Date: start.AddDate(0, 0, i), Quantity: pattern[i%7]}
	}
	ledger := &fakeLedger{
		totals: map[string][]models.SeriesPoint{"1": points, "2": points, "3": points},
		places: []int64{1, 2, 3},
	}

	strat := &failingStrategy{inner: weeklyAt(day(2024, 7, 3)), failFor: map[int64]bool{2: true}}
	f := newTestForecaster(ledger, newFakeStore(), &fakePublisher{}, strat)
	gen := NewGenerator(f, ledger, logger.Nop())

	summary, err := gen.GenerateAll(context.Background(), 7)
	if err != nil {
		t.Fatalf("generate all: %v", err)
	}
	if summary.Total != 3 || summary.Succeeded != 2 || summary.Failed != 1 {
		t.Fatalf("bad summary: %+v", summary)
	}
	for _, item := range summary.Items {
		if item.PlaceID == 2 {
			if item.Status != models.StatusFailed || item.Error == "" {
				t.Fatalf("place 2 failure not reported: %+v", item)
			}
		} else if item.Status == models.StatusFailed {
			t.Fatalf("place %d aborted by another scope's failure: %+v", item.PlaceID, item)
		}
	}
}

func TestGenerateForPlaceWithItems(t *testing.T) {
	pattern := []float64{5, 5, 5, 5, 5, 10, 10}
	start := day(2024, 6, 3)
	points := make([]models.SeriesPoint, 30)
	for i := range points {
		points[i] = models.SeriesPoint{Date: start.AddDate(0, 0, i), Quantity: pattern[i%7]}
	}
	ledger := &fakeLedger{totals: map[string][]models.SeriesPoint{
		"1":    points,
		"1/10": points,
		// item 20 has no history and must fail alone
	}}

	f := newTestForecaster(ledger, newFakeStore(), &fakePublisher{}, weeklyAt(day(2024, 7, 3)))
	gen := NewGenerator(f, ledger, logger.Nop())

	summary := gen.GenerateForPlace(context.Background(), 1, 7, []int64{10, 20})
	if summary.Total != 3 {
		t.Fatalf("expected place scope plus 2 item scopes, got %d", summary.Total)
	}
	if summary.Succeeded != 2 || summary.Failed != 1 {
		t.Fatalf("bad summary: %+v", summary)
	}
	last := summary.Items[2]
	if last.ItemID == nil || *last.ItemID != 20 || last.Status != models.StatusFailed {
		t.Fatalf("empty item scope not isolated: %+v", last)
	}
}
