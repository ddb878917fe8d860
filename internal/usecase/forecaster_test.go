package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"DemandCast/internal/domain/models"
	"DemandCast/internal/domain/service"
	"DemandCast/internal/services/strategy"
	"DemandCast/pkg/cache"
	"DemandCast/pkg/logger"
	"DemandCast/pkg/metrics"
)

// patternLedger returns a ledger with 30 days of the fixed weekly
// pattern [Mon..Sun]=[5,5,5,5,5,10,10] for place 1, starting Monday
// 2024-06-03 and ending 2024-07-02.
func patternLedger() *fakeLedger {
	pattern := []float64{5, 5, 5, 5, 5, 10, 10}
	start := day(2024, 6, 3)
	points := make([]models.SeriesPoint, 30)
	for i := range points {
		points[i] = models.SeriesPoint{Date: start.AddDate(0, 0, i), Quantity: pattern[i%7]}
	}
	return &fakeLedger{totals: map[string][]models.SeriesPoint{"1": points}, places: []int64{1}}
}

func newTestForecaster(ledger *fakeLedger, store *fakeStore, pub *fakePublisher, strat service.Strategy) *Forecaster {
	agg := NewAggregator(ledger, 365, logger.Nop())
	eval := NewEvaluator(logger.Nop())
	return NewForecaster(agg, eval, strat, store, pub, metrics.Nop{}, cache.NewMemoryCache(), time.Minute, logger.Nop())
}

func weeklyAt(now time.Time) service.Strategy {
	return strategy.NewWeekly(logger.Nop(), func() time.Time { return now })
}

func TestGenerateFallbackPipeline(t *testing.T) {
	ledger := patternLedger()
	store := newFakeStore()
	pub := &fakePublisher{}
	f := newTestForecaster(ledger, store, pub, weeklyAt(day(2024, 7, 3)))

	result, err := f.Generate(context.Background(), models.Scope{PlaceID: 1}, 7, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Status != models.StatusSuccessFallback {
		t.Fatalf("expected fallback status, got %s", result.Status)
	}
	if result.Note == "" {
		t.Fatalf("fallback result missing note")
	}
	if result.DataPoints != 30 {
		t.Fatalf("expected 30 data points, got %d", result.DataPoints)
	}
	if !result.RangeStart.Equal(day(2024, 6, 3)) || !result.RangeEnd.Equal(day(2024, 7, 2)) {
		t.Fatalf("bad training range [%v, %v]", result.RangeStart, result.RangeEnd)
	}
	// 7 history days plus the 7-day horizon.
	if result.PointsSaved != 14 {
		t.Fatalf("expected 14 points saved, got %d", result.PointsSaved)
	}
	if result.Metrics.Note == "" {
		t.Fatalf("fallback metrics should carry a note")
	}
	if len(pub.results) != 1 || pub.results[0].ModelID != result.ModelID {
		t.Fatalf("event not published: %+v", pub.results)
	}
}

func TestGenerateInsufficientData(t *testing.T) {
	f := newTestForecaster(
		&fakeLedger{totals: map[string][]models.SeriesPoint{}},
		newFakeStore(), &fakePublisher{}, weeklyAt(day(2024, 7, 3)))

	_, err := f.Generate(context.Background(), models.Scope{PlaceID: 42}, 7, nil)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
}

func TestTrainEmptyScopeExplicitRange(t *testing.T) {
	f := newTestForecaster(
		&fakeLedger{totals: map[string][]models.SeriesPoint{}},
		newFakeStore(), &fakePublisher{}, weeklyAt(day(2024, 7, 3)))

	start, end := day(2024, 6, 1), day(2024, 6, 30)
	_, _, err := f.Train(context.Background(), models.Scope{PlaceID: 42}, &start, &end, nil)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
}

func TestPredictWithoutTrain(t *testing.T) {
	f := newTestForecaster(patternLedger(), newFakeStore(), &fakePublisher{}, weeklyAt(day(2024, 7, 3)))

	_, err := f.Predict(context.Background(), nil, 7, false)
	if !errors.Is(err, models.ErrNotTrained) {
		t.Fatalf("expected not trained, got %v", err)
	}
}

func TestRetrieveAnchoredWindow(t *testing.T) {
	f := newTestForecaster(patternLedger(), newFakeStore(), &fakePublisher{}, weeklyAt(day(2024, 7, 3)))

	scope := models.Scope{PlaceID: 1}
	if _, err := f.Generate(context.Background(), scope, 7, nil); err != nil {
		t.Fatalf("generate: %v", err)
	}

	resp, err := f.Retrieve(context.Background(), scope, 7, false)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	// Anchor is the day after the training end, not "today".
	if resp.Anchor != "2024-07-03" {
		t.Fatalf("expected anchor 2024-07-03, got %s", resp.Anchor)
	}
	if len(resp.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(resp.Days))
	}
	if resp.Days[0].Date != "2024-07-03" || resp.Days[0].IsHistory {
		t.Fatalf("window does not start at anchor: %+v", resp.Days[0])
	}

	withHistory, err := f.Retrieve(context.Background(), scope, 7, true)
	if err != nil {
		t.Fatalf("retrieve with history: %v", err)
	}
	if len(withHistory.Days) != 14 {
		t.Fatalf("expected 14 days with history, got %d", len(withHistory.Days))
	}
	if !withHistory.Days[0].IsHistory || withHistory.Days[0].Date != "2024-06-26" {
		t.Fatalf("history window wrong: %+v", withHistory.Days[0])
	}
}

func TestRetrieveAnchorStability(t *testing.T) {
	f := newTestForecaster(patternLedger(), newFakeStore(), &fakePublisher{}, weeklyAt(day(2024, 7, 3)))

	scope := models.Scope{PlaceID: 1}
	if _, err := f.Generate(context.Background(), scope, 7, nil); err != nil {
		t.Fatalf("generate: %v", err)
	}

	first, err := f.Retrieve(context.Background(), scope, 7, false)
	if err != nil {
		t.Fatalf("first retrieve: %v", err)
	}
	second, err := f.Retrieve(context.Background(), scope, 7, false)
	if err != nil {
		t.Fatalf("second retrieve: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("retrieval not stable:\n%+v\n%+v", first, second)
	}
}

func TestRetrieveNoActiveModel(t *testing.T) {
	f := newTestForecaster(patternLedger(), newFakeStore(), &fakePublisher{}, weeklyAt(day(2024, 7, 3)))

	_, err := f.Retrieve(context.Background(), models.Scope{PlaceID: 1}, 7, false)
	if !errors.Is(err, models.ErrNoActiveModel) {
		t.Fatalf("expected no active model, got %v", err)
	}
}

func TestRetrieveScopeMatchingIsExact(t *testing.T) {
	ledger := patternLedger()
	itemID := int64(5)
	ledger.totals["1/5"] = ledger.totals["1"]

	f := newTestForecaster(ledger, newFakeStore(), &fakePublisher{}, weeklyAt(day(2024, 7, 3)))
	ctx := context.Background()

	// Only the item-level scope is trained; the place-level query must
	// not fall back to it.
	itemScope := models.Scope{PlaceID: 1, ItemID: &itemID}
	if _, err := f.Generate(ctx, itemScope, 7, nil); err != nil {
		t.Fatalf("generate item scope: %v", err)
	}
	if _, err := f.Retrieve(ctx, models.Scope{PlaceID: 1}, 7, false); !errors.Is(err, models.ErrNoActiveModel) {
		t.Fatalf("place query matched an item model: %v", err)
	}
	if _, err := f.Retrieve(ctx, itemScope, 7, false); err != nil {
		t.Fatalf("item retrieve: %v", err)
	}
}

func TestListModelsActiveOnlyAndCapped(t *testing.T) {
	store := newFakeStore()
	for i := 1; i <= 55; i++ {
		store.models = append(store.models, models.TrainedModel{
			ID:     int64(i),
			Scope:  models.Scope{PlaceID: 1},
			Active: true,
		})
	}
	store.models = append(store.models, models.TrainedModel{
		ID:    56,
		Scope: models.Scope{PlaceID: 1},
	})
	f := newTestForecaster(patternLedger(), store, &fakePublisher{}, weeklyAt(day(2024, 7, 3)))

	list, err := f.ListModels(context.Background(), 1, 500)
	if err != nil {
		t.Fatalf("list models: %v", err)
	}
	if len(list) != 50 {
		t.Fatalf("expected listing capped at 50, got %d", len(list))
	}
	if list[0].ID != 55 {
		t.Fatalf("expected newest active model first, got id %d", list[0].ID)
	}
	for _, m := range list {
		if !m.Active {
			t.Fatalf("inactive model %d listed", m.ID)
		}
	}
}

func TestEvaluateBelowFloor(t *testing.T) {
	eval := NewEvaluator(logger.Nop())
	series := models.TrainingSeries{Points: make([]models.SeriesPoint, 20)}

	m := eval.Evaluate(context.Background(), weeklyAt(day(2024, 7, 3)), series)
	if m.MAPE != nil || m.RMSE != nil || m.MAE != nil {
		t.Fatalf("metrics computed below the floor: %+v", m)
	}
	if m.Note != "insufficient data for metrics" {
		t.Fatalf("expected explicit note, got %q", m.Note)
	}
}
