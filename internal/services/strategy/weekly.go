package strategy

import (
	"context"
	"math"
	"time"

	"DemandCast/internal/domain/models"
	"DemandCast/internal/domain/service"
	"DemandCast/pkg/logger"
	"DemandCast/pkg/util"
)

const historyDays = 7

// weeklyFitted carries everything the weekly strategy needs to predict:
// the overall mean, the deviation of the series around its weekly
// pattern, and the per-weekday means themselves.
type weeklyFitted struct {
	mean    float64
	std     float64
	pattern map[time.Weekday]float64

	trainingStart time.Time
	trainingEnd   time.Time
	dataPoints    int
}

func (f *weeklyFitted) Strategy() string { return service.StrategyWeekly }

func (f *weeklyFitted) Params() map[string]any {
	pattern := make(map[string]any, len(f.pattern))
	for wd, v := range f.pattern {
		pattern[wd.String()] = v
	}
	return map[string]any{
		"mean":           f.mean,
		"std":            f.std,
		"weekly_pattern": pattern,
	}
}

// Weekly is the deterministic weekly-pattern strategy. It needs no
// external capability and accepts any non-empty series.
type Weekly struct {
	log *logger.Logger
	now service.Clock
}

// NewWeekly creates the weekly-pattern strategy. now supplies the first
// forecast date.
func NewWeekly(log *logger.Logger, now service.Clock) *Weekly {
	if now == nil {
		now = time.Now
	}
	return &Weekly{log: log, now: now}
}

func (w *Weekly) Name() string { return service.StrategyWeekly }

// Fit computes the overall mean, per-weekday means and the residual
// standard deviation around those means. An empty series is the only
// insufficient-data case.
func (w *Weekly) Fit(_ context.Context, series models.TrainingSeries, _ map[string]any) (service.Fitted, error) {
	n := len(series.Points)
	if n == 0 {
		return nil, models.ErrInsufficientData
	}

	var sum float64
	counts := make(map[time.Weekday]int)
	sums := make(map[time.Weekday]float64)
	for _, p := range series.Points {
		sum += p.Quantity
		wd := p.Date.Weekday()
		counts[wd]++
		sums[wd] += p.Quantity
	}
	mean := sum / float64(n)

	pattern := make(map[time.Weekday]float64, len(sums))
	for wd, s := range sums {
		pattern[wd] = s / float64(counts[wd])
	}

	// Spread is measured around the weekly pattern, not the overall
	// mean, so a perfectly periodic series forecasts with tight bounds.
	var std float64
	if n > 1 {
		var sq float64
		for _, p := range series.Points {
			d := p.Quantity - pattern[p.Date.Weekday()]
			sq += d * d
		}
		std = math.Sqrt(sq / float64(n-1))
	}

	w.log.Info("fitted weekly-pattern model",
		logger.String("scope", series.Scope.String()),
		logger.Int("data_points", n),
		logger.Float64("mean", mean),
		logger.Float64("std", std))

	return &weeklyFitted{
		mean:          mean,
		std:           std,
		pattern:       pattern,
		trainingStart: series.Start,
		trainingEnd:   series.End,
		dataPoints:    n,
	}, nil
}

// Forecast emits horizon days starting today. Bounds are central ∓ std
// at 80% and central ∓ 1.5·std at 95%, lower bounds clamped at zero.
func (w *Weekly) Forecast(_ context.Context, fitted service.Fitted, horizon int, includeHistory bool) ([]models.Prediction, error) {
	f, ok := fitted.(*weeklyFitted)
	if !ok || f.dataPoints == 0 {
		return nil, models.ErrNotTrained
	}

	start := util.Day(w.now())
	var out []models.Prediction

	if includeHistory {
		for i := historyDays; i >= 1; i-- {
			p := w.predictDay(f, start.AddDate(0, 0, -i))
			p.IsHistory = true
			out = append(out, p)
		}
	}
	for i := 0; i < horizon; i++ {
		out = append(out, w.predictDay(f, start.AddDate(0, 0, i)))
	}
	return out, nil
}

func (w *Weekly) predictDay(f *weeklyFitted, date time.Time) models.Prediction {
	central, ok := f.pattern[date.Weekday()]
	if !ok {
		central = f.mean
	}
	return models.Prediction{
		Date:              date,
		Central:           central,
		Lower80:           math.Max(0, central-f.std),
		Upper80:           central + f.std,
		Lower95:           math.Max(0, central-1.5*f.std),
		Upper95:           central + 1.5*f.std,
		Trend:             central,
		WeeklySeasonality: 0,
	}
}
