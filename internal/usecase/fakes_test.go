package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"DemandCast/internal/domain/models"
	"DemandCast/internal/domain/service"
	"DemandCast/pkg/util"
)

// fakeLedger serves canned per-day totals keyed by scope.
type fakeLedger struct {
	totals map[string][]models.SeriesPoint
	places []int64
	err    error
}

func scopeKey(scope models.Scope) string {
	if scope.ItemID == nil {
		return fmt.Sprintf("%d", scope.PlaceID)
	}
	return fmt.Sprintf("%d/%d", scope.PlaceID, *scope.ItemID)
}

func (f *fakeLedger) DailyTotals(_ context.Context, scope models.Scope, start, end time.Time) ([]models.SeriesPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.SeriesPoint
	for _, p := range f.totals[scopeKey(scope)] {
		if !p.Date.Before(start) && !p.Date.After(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeLedger) DateRange(_ context.Context, scope models.Scope) (time.Time, time.Time, bool, error) {
	if f.err != nil {
		return time.Time{}, time.Time{}, false, f.err
	}
	points := f.totals[scopeKey(scope)]
	if len(points) == 0 {
		return time.Time{}, time.Time{}, false, nil
	}
	return points[0].Date, points[len(points)-1].Date, true, nil
}

func (f *fakeLedger) StoreOrders(_ context.Context, rows []models.LedgerRow) error {
	if f.err != nil {
		return f.err
	}
	for _, row := range rows {
		day := util.Day(row.CreatedAt)
		key := fmt.Sprintf("%d", row.PlaceID)
		f.totals[key] = append(f.totals[key], models.SeriesPoint{Date: day, Quantity: row.Quantity})
	}
	return nil
}

func (f *fakeLedger) ActivePlaces(context.Context) ([]int64, error) {
	return f.places, f.err
}

func (f *fakeLedger) Health(context.Context) error { return f.err }

// fakeStore keeps models and points in memory with the same matching
// rules as the real store.
type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	models  []models.TrainedModel
	points  map[int64][]models.ForecastPoint
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, points: make(map[int64][]models.ForecastPoint)}
}

func (f *fakeStore) SaveForecast(_ context.Context, model models.TrainedModel, preds []models.Prediction) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	model.ID = f.nextID
	f.nextID++
	f.models = append(f.models, model)

	seen := make(map[string]bool, len(preds))
	for _, p := range preds {
		key := p.Date.Format(util.DateOnly)
		if seen[key] {
			return 0, fmt.Errorf("duplicate forecast date %s", key)
		}
		seen[key] = true
		f.points[model.ID] = append(f.points[model.ID], models.ForecastPoint{
			ModelID: model.ID,
			Scope:   model.Scope,
			Date:    p.Date,
			Central: p.Central,
			Lower80: p.Lower80,
			Upper80: p.Upper80,
			Lower95: p.Lower95,
			Upper95: p.Upper95,
			Trend:   p.Trend,
		})
	}
	return model.ID, nil
}

func (f *fakeStore) ActiveModel(_ context.Context, scope models.Scope) (models.TrainedModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var best *models.TrainedModel
	for i := range f.models {
		m := &f.models[i]
		if !m.Active || m.Scope.PlaceID != scope.PlaceID {
			continue
		}
		if (m.Scope.ItemID == nil) != (scope.ItemID == nil) {
			continue
		}
		if m.Scope.ItemID != nil && *m.Scope.ItemID != *scope.ItemID {
			continue
		}
		if best == nil || m.TrainedAt.After(best.TrainedAt) {
			best = m
		}
	}
	if best == nil {
		return models.TrainedModel{}, fmt.Errorf("%w: %s", models.ErrNoActiveModel, scope)
	}
	return *best, nil
}

func (f *fakeStore) Window(_ context.Context, modelID int64, start, end time.Time) ([]models.ForecastPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.ForecastPoint
	for _, p := range f.points[modelID] {
		if !p.Date.Before(start) && !p.Date.After(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ListModels(_ context.Context, placeID int64, limit int) ([]models.TrainedModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.TrainedModel
	for i := len(f.models) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if f.models[i].Scope.PlaceID == placeID && f.models[i].Active {
			out = append(out, f.models[i])
		}
	}
	return out, nil
}

func (f *fakeStore) Health(context.Context) error { return nil }

// fakePublisher records published results.
type fakePublisher struct {
	mu      sync.Mutex
	results []models.TrainResult
	err     error
}

func (f *fakePublisher) PublishForecastGenerated(_ context.Context, result models.TrainResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, result)
	return f.err
}

// failingStrategy fails Fit for the scopes in failFor, wrapping the
// weekly strategy otherwise.
type failingStrategy struct {
	inner   service.Strategy
	failFor map[int64]bool
}

func (s *failingStrategy) Name() string { return s.inner.Name() }

func (s *failingStrategy) Fit(ctx context.Context, series models.TrainingSeries, overrides map[string]any) (service.Fitted, error) {
	if s.failFor[series.Scope.PlaceID] {
		return nil, errors.New("numerical blowup")
	}
	return s.inner.Fit(ctx, series, overrides)
}

func (s *failingStrategy) Forecast(ctx context.Context, fitted service.Fitted, horizon int, includeHistory bool) ([]models.Prediction, error) {
	return s.inner.Forecast(ctx, fitted, horizon, includeHistory)
}
