package usecase

import (
	"context"
	"fmt"
	"time"

	"DemandCast/internal/domain/models"
	"DemandCast/internal/domain/repository"
	"DemandCast/pkg/logger"
	"DemandCast/pkg/util"
)

// Aggregator turns raw ledger facts into gap-free daily training series.
type Aggregator struct {
	ledger      repository.SalesLedger
	historyDays int
	log         *logger.Logger
}

// NewAggregator creates a sales aggregator. historyDays caps how far
// back an inferred range may reach.
func NewAggregator(ledger repository.SalesLedger, historyDays int, log *logger.Logger) *Aggregator {
	if historyDays <= 0 {
		historyDays = 365
	}
	return &Aggregator{ledger: ledger, historyDays: historyDays, log: log}
}

// Series builds the training series for a scope. Omitted bounds are
// inferred from the scope's ledger history: end defaults to the latest
// order date, start to the later of the earliest order date and
// end minus the history cap. A scope with no sales yields an empty
// series, not an error.
func (a *Aggregator) Series(ctx context.Context, scope models.Scope, start, end *time.Time) (models.TrainingSeries, error) {
	series := models.TrainingSeries{Scope: scope}

	if start == nil || end == nil {
		minTS, maxTS, ok, err := a.ledger.DateRange(ctx, scope)
		if err != nil {
			return series, fmt.Errorf("resolve date range: %w", err)
		}
		if !ok {
			a.log.Debug("no sales history for scope", logger.String("scope", scope.String()))
			return series, nil
		}
		if end == nil {
			d := util.Day(maxTS)
			end = &d
		}
		if start == nil {
			earliest := util.Day(minTS)
			capped := end.AddDate(0, 0, -a.historyDays)
			d := earliest
			if capped.After(earliest) {
				d = capped
			}
			start = &d
		}
	}

	from, to := util.Day(*start), util.Day(*end)
	if to.Before(from) {
		return series, fmt.Errorf("invalid range: end %s before start %s",
			to.Format(util.DateOnly), from.Format(util.DateOnly))
	}

	raw, err := a.ledger.DailyTotals(ctx, scope, from, to)
	if err != nil {
		return series, fmt.Errorf("daily totals: %w", err)
	}
	if len(raw) == 0 {
		a.log.Debug("no sales in range for scope", logger.String("scope", scope.String()))
		return series, nil
	}

	byDay := make(map[time.Time]float64, len(raw))
	for _, p := range raw {
		byDay[util.Day(p.Date)] = p.Quantity
	}

	days := util.DaysBetween(from, to) + 1
	series.Points = make([]models.SeriesPoint, 0, days)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		series.Points = append(series.Points, models.SeriesPoint{
			Date:     d,
			Quantity: byDay[d],
		})
	}
	series.Start = from
	series.End = to
	return series, nil
}
