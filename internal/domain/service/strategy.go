package service

import (
	"context"
	"time"

	"DemandCast/internal/domain/models"
)

// Strategy names.
const (
	StrategySeasonal = "seasonal"
	StrategyWeekly   = "weekly"
)

// Fitted is an immutable trained model value. A Fitted produced by one
// strategy must only be passed back to that strategy's Forecast.
type Fitted interface {
	Strategy() string
	Params() map[string]any
}

// Strategy fits a model to a daily series and produces forecasts from
// the resulting value. Implementations hold no per-scope state, the
// Fitted value carries everything Forecast needs.
type Strategy interface {
	Name() string

	// Fit trains on the series. Returns models.ErrInsufficientData when
	// the series is shorter than the strategy's floor.
	Fit(ctx context.Context, series models.TrainingSeries, overrides map[string]any) (Fitted, error)

	// Forecast produces horizon daily predictions starting the day after
	// the fitted training end. When includeHistory is true it prepends up
	// to seven in-sample days marked IsHistory.
	Forecast(ctx context.Context, fitted Fitted, horizon int, includeHistory bool) ([]models.Prediction, error)
}

// CapabilityProbe reports whether a strategy's backing capability is
// available. Probed once at startup, the answer is fixed for the
// process lifetime.
type CapabilityProbe interface {
	Available(ctx context.Context) bool
}

// Clock supplies the current time. Injected so fallback forecasting is
// testable against fixed dates.
type Clock func() time.Time
