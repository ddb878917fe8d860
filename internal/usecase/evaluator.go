package usecase

import (
	"context"
	"math"

	"DemandCast/internal/domain/models"
	"DemandCast/internal/domain/service"
	"DemandCast/pkg/logger"
)

const (
	holdoutDays    = 7
	minMetricsRows = 21
	metricsNote    = "insufficient data for metrics"
)

// Evaluator backtests a strategy on the last week of the series.
type Evaluator struct {
	log *logger.Logger
}

// NewEvaluator creates a metrics evaluator.
func NewEvaluator(log *logger.Logger) *Evaluator {
	return &Evaluator{log: log}
}

// Evaluate splits off the last seven days, fits a temporary model with
// weekly seasonality only on the rest, predicts the held-out dates and
// scores them. Below 21 rows no split is meaningful and the metrics
// carry an explanatory note instead of numbers.
func (e *Evaluator) Evaluate(ctx context.Context, strat service.Strategy, series models.TrainingSeries) models.Metrics {
	if len(series.Points) < minMetricsRows {
		return models.Metrics{Note: metricsNote}
	}

	cut := len(series.Points) - holdoutDays
	trainSplit := models.TrainingSeries{
		Scope:  series.Scope,
		Points: series.Points[:cut],
		Start:  series.Start,
		End:    series.Points[cut-1].Date,
	}
	holdout := series.Points[cut:]

	overrides := map[string]any{
		"weekly_seasonality": true,
		"yearly_seasonality": false,
		"daily_seasonality":  false,
	}
	fitted, err := strat.Fit(ctx, trainSplit, overrides)
	if err != nil {
		e.log.Warn("backtest fit failed", logger.Error(err))
		return models.Metrics{Note: "backtest failed"}
	}
	preds, err := strat.Forecast(ctx, fitted, holdoutDays, false)
	if err != nil {
		e.log.Warn("backtest forecast failed", logger.Error(err))
		return models.Metrics{Note: "backtest failed"}
	}

	// Match holdout actuals to predictions by date where possible,
	// falling back to positional pairing for strategies that anchor
	// their output on the wall clock.
	byDate := make(map[string]float64, len(preds))
	for _, p := range preds {
		byDate[p.Date.Format("2006-01-02")] = p.Central
	}

	var actuals, predicted []float64
	for i, h := range holdout {
		v, ok := byDate[h.Date.Format("2006-01-02")]
		if !ok {
			if i >= len(preds) {
				break
			}
			v = preds[i].Central
		}
		actuals = append(actuals, h.Quantity)
		predicted = append(predicted, v)
	}
	return Score(actuals, predicted)
}

// Score computes MAPE, RMSE and MAE over paired actuals and
// predictions. Zero actuals are excluded from MAPE; when every actual
// is zero MAPE stays nil.
func Score(actuals, predicted []float64) models.Metrics {
	n := len(actuals)
	if n == 0 || n != len(predicted) {
		return models.Metrics{Note: metricsNote}
	}

	var (
		pctSum float64
		pctN   int
		sqSum  float64
		absSum float64
	)
	for i := 0; i < n; i++ {
		diff := actuals[i] - predicted[i]
		sqSum += diff * diff
		absSum += math.Abs(diff)
		if actuals[i] != 0 {
			pctSum += math.Abs(diff) / actuals[i]
			pctN++
		}
	}

	m := models.Metrics{}
	rmse := round2(math.Sqrt(sqSum / float64(n)))
	mae := round2(absSum / float64(n))
	m.RMSE = &rmse
	m.MAE = &mae
	if pctN > 0 {
		mape := round2(pctSum / float64(pctN) * 100)
		m.MAPE = &mape
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
