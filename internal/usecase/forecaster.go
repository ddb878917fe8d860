package usecase

import (
	"context"
	"fmt"
	"time"

	"DemandCast/internal/domain/models"
	"DemandCast/internal/domain/repository"
	"DemandCast/internal/domain/service"
	"DemandCast/pkg/cache"
	"DemandCast/pkg/logger"
	"DemandCast/pkg/util"
)

const fallbackNote = "seasonal capability unavailable, using weekly-pattern model"

// Forecaster orchestrates the train, predict, persist and retrieve
// operations for a single chosen strategy.
type Forecaster struct {
	aggregator *Aggregator
	evaluator  *Evaluator
	strategy   service.Strategy
	store      repository.ForecastStore
	publisher  repository.Publisher
	metrics    repository.Metrics
	cache      cache.Service
	cacheTTL   time.Duration
	log        *logger.Logger
}

// NewForecaster wires the forecasting pipeline around the strategy
// selected at startup.
func NewForecaster(
	aggregator *Aggregator,
	evaluator *Evaluator,
	strat service.Strategy,
	store repository.ForecastStore,
	publisher repository.Publisher,
	metrics repository.Metrics,
	cacheSvc cache.Service,
	cacheTTL time.Duration,
	log *logger.Logger,
) *Forecaster {
	return &Forecaster{
		aggregator: aggregator,
		evaluator:  evaluator,
		strategy:   strat,
		store:      store,
		publisher:  publisher,
		metrics:    metrics,
		cache:      cacheSvc,
		cacheTTL:   cacheTTL,
		log:        log,
	}
}

// Strategy returns the name of the strategy in use.
func (f *Forecaster) Strategy() string { return f.strategy.Name() }

// Train aggregates the scope's history and fits the strategy on it.
// Returns models.ErrInsufficientData when the series is empty or below
// the strategy's floor.
func (f *Forecaster) Train(ctx context.Context, scope models.Scope, start, end *time.Time, overrides map[string]any) (service.Fitted, models.TrainingSeries, error) {
	series, err := f.aggregator.Series(ctx, scope, start, end)
	if err != nil {
		return nil, series, err
	}
	if series.Len() == 0 {
		return nil, series, fmt.Errorf("%w: no sales history for %s", models.ErrInsufficientData, scope)
	}

	fitted, err := f.strategy.Fit(ctx, series, overrides)
	if err != nil {
		return nil, series, err
	}
	return fitted, series, nil
}

// Predict produces forecasts from a fitted model.
func (f *Forecaster) Predict(ctx context.Context, fitted service.Fitted, days int, includeHistory bool) ([]models.Prediction, error) {
	if fitted == nil {
		return nil, models.ErrNotTrained
	}
	return f.strategy.Forecast(ctx, fitted, days, includeHistory)
}

// Persist writes the model record and its points in one transaction and
// returns the model ID and the count of points written.
func (f *Forecaster) Persist(ctx context.Context, model models.TrainedModel, preds []models.Prediction) (int64, int, error) {
	id, err := f.store.SaveForecast(ctx, model, preds)
	if err != nil {
		return 0, 0, fmt.Errorf("persist forecast: %w", err)
	}
	f.metrics.RecordPointsWritten(len(preds))
	return id, len(preds), nil
}

// Generate runs the whole pipeline for one scope: aggregate, fit,
// backtest, forecast, persist, publish.
func (f *Forecaster) Generate(ctx context.Context, scope models.Scope, days int, overrides map[string]any) (models.TrainResult, error) {
	started := time.Now()

	fitted, series, err := f.Train(ctx, scope, nil, nil, overrides)
	if err != nil {
		f.metrics.RecordTrainingRun(f.strategy.Name(), "error")
		f.metrics.RecordError("train")
		return models.TrainResult{Scope: scope}, err
	}

	var m models.Metrics
	if f.strategy.Name() == service.StrategySeasonal {
		m = f.evaluator.Evaluate(ctx, f.strategy, series)
	} else {
		m = models.Metrics{Note: "not computed for weekly-pattern strategy"}
	}

	preds, err := f.Predict(ctx, fitted, days, true)
	if err != nil {
		f.metrics.RecordTrainingRun(f.strategy.Name(), "error")
		f.metrics.RecordError("predict")
		return models.TrainResult{Scope: scope}, err
	}

	model := models.TrainedModel{
		Scope:         scope,
		Strategy:      f.strategy.Name(),
		TrainedAt:     started.UTC(),
		TrainingStart: series.Start,
		TrainingEnd:   series.End,
		DataPoints:    series.Len(),
		Params:        fitted.Params(),
		Metrics:       m,
		Active:        true,
	}

	id, saved, err := f.Persist(ctx, model, preds)
	if err != nil {
		f.metrics.RecordTrainingRun(f.strategy.Name(), "error")
		f.metrics.RecordError("persist")
		return models.TrainResult{Scope: scope}, err
	}

	status := models.StatusSuccess
	note := ""
	if f.strategy.Name() == service.StrategyWeekly {
		status = models.StatusSuccessFallback
		note = fallbackNote
	}
	result := models.TrainResult{
		Scope:       scope,
		Status:      status,
		Strategy:    f.strategy.Name(),
		ModelID:     id,
		DataPoints:  series.Len(),
		RangeStart:  series.Start,
		RangeEnd:    series.End,
		Metrics:     m,
		PointsSaved: saved,
		Note:        note,
	}

	f.metrics.RecordTrainingRun(f.strategy.Name(), status)
	f.metrics.RecordTrainingDuration(f.strategy.Name(), time.Since(started).Seconds())
	if m.MAPE != nil {
		f.metrics.RecordMAPE(fmt.Sprintf("%d", scope.PlaceID), *m.MAPE)
	}

	if err := f.publisher.PublishForecastGenerated(ctx, result); err != nil {
		f.log.Error("publish forecast event", logger.Error(err),
			logger.String("scope", scope.String()))
	}

	f.log.Info("forecast generated",
		logger.String("scope", scope.String()),
		logger.String("strategy", f.strategy.Name()),
		logger.Int64("model_id", id),
		logger.Int("points", saved))
	return result, nil
}

// Retrieve serves the anchored forecast window of the authoritative
// model for the scope. The anchor is the day after the model's training
// end; with history the window extends seven days before it. Windows
// are immutable per model, so responses are cached keyed by model ID.
func (f *Forecaster) Retrieve(ctx context.Context, scope models.Scope, days int, includeHistory bool) (models.ForecastResponse, error) {
	var resp models.ForecastResponse

	model, err := f.store.ActiveModel(ctx, scope)
	if err != nil {
		return resp, err
	}

	key := fmt.Sprintf("forecast:%d:%s:%d:%t", model.ID, scope, days, includeHistory)
	if err := f.cache.Get(ctx, key, &resp); err == nil {
		return resp, nil
	}

	anchor := util.Day(model.TrainingEnd).AddDate(0, 0, 1)
	start := anchor
	if includeHistory {
		start = anchor.AddDate(0, 0, -7)
	}
	end := anchor.AddDate(0, 0, days)

	points, err := f.store.Window(ctx, model.ID, start, end)
	if err != nil {
		return resp, fmt.Errorf("forecast window: %w", err)
	}

	resp = models.ForecastResponse{
		PlaceID:   scope.PlaceID,
		ItemID:    scope.ItemID,
		ModelID:   model.ID,
		Strategy:  model.Strategy,
		TrainedAt: model.TrainedAt.Format(time.RFC3339),
		Anchor:    anchor.Format(util.DateOnly),
		Metrics:   model.Metrics,
		Days:      make([]models.ForecastDayResponse, 0, len(points)),
	}
	for _, p := range points {
		resp.Days = append(resp.Days, models.ForecastDayResponse{
			Date:              p.Date.Format(util.DateOnly),
			Central:           p.Central,
			Lower80:           p.Lower80,
			Upper80:           p.Upper80,
			Lower95:           p.Lower95,
			Upper95:           p.Upper95,
			Trend:             p.Trend,
			WeeklySeasonality: p.WeeklySeasonality,
			IsHistory:         p.Date.Before(anchor),
		})
	}

	if cerr := f.cache.Set(ctx, key, resp, f.cacheTTL); cerr != nil {
		f.log.Debug("cache forecast window", logger.Error(cerr))
	}
	return resp, nil
}

// listModelsMax bounds the model listing regardless of the caller's limit.
const listModelsMax = 50

// ListModels returns recent active model versions for a place.
func (f *Forecaster) ListModels(ctx context.Context, placeID int64, limit int) ([]models.TrainedModel, error) {
	if limit <= 0 || limit > listModelsMax {
		limit = listModelsMax
	}
	return f.store.ListModels(ctx, placeID, limit)
}
