package repository

import (
	"context"
	"time"

	"DemandCast/internal/domain/models"
)

// SalesLedger reads and writes the per-day demand ledger.
type SalesLedger interface {
	// DailyTotals returns per-day quantity sums of closed orders for the
	// scope within [start, end], dates present only where sales occurred.
	DailyTotals(ctx context.Context, scope models.Scope, start, end time.Time) ([]models.SeriesPoint, error)

	// DateRange returns the earliest and latest order timestamps for the
	// scope. ok is false when the scope has no sales at all.
	DateRange(ctx context.Context, scope models.Scope) (min, max time.Time, ok bool, err error)

	// StoreOrders appends flattened order lines to the ledger.
	StoreOrders(ctx context.Context, rows []models.LedgerRow) error

	// ActivePlaces lists distinct place IDs present in the ledger.
	ActivePlaces(ctx context.Context) ([]int64, error)

	Health(ctx context.Context) error
}

// ForecastStore persists model versions and their forecast points.
type ForecastStore interface {
	// SaveForecast writes the model and its points in one transaction and
	// returns the new model ID. Earlier versions for the scope stay intact.
	SaveForecast(ctx context.Context, model models.TrainedModel, points []models.Prediction) (int64, error)

	// ActiveModel returns the most recently trained active model matching
	// the scope exactly. Returns models.ErrNoActiveModel when none exists.
	ActiveModel(ctx context.Context, scope models.Scope) (models.TrainedModel, error)

	// Window returns the model's persisted points with dates in
	// [start, end], ordered by date ascending.
	Window(ctx context.Context, modelID int64, start, end time.Time) ([]models.ForecastPoint, error)

	// ListModels returns model versions for a place, newest first.
	ListModels(ctx context.Context, placeID int64, limit int) ([]models.TrainedModel, error)

	Health(ctx context.Context) error
}

// Publisher emits domain events for downstream consumers.
type Publisher interface {
	PublishForecastGenerated(ctx context.Context, result models.TrainResult) error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordTrainingRun(strategy, result string)
	RecordTrainingDuration(strategy string, seconds float64)
	RecordPointsWritten(n int)
	RecordOrdersIngested(n int)
	RecordError(kind string)
	RecordMAPE(place string, mape float64)
}
