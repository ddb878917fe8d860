package strategy

import (
	"context"

	"DemandCast/internal/domain/service"
	"DemandCast/pkg/config"
	"DemandCast/pkg/logger"
)

// Select picks the forecasting strategy once, at startup. With the
// "auto" policy the seasonal sidecar is probed and the weekly fallback
// chosen when it is unreachable; an explicit policy skips the probe.
// The choice is fixed for the process lifetime, a failed seasonal call
// later does not demote to the fallback mid-run.
func Select(ctx context.Context, cfg *config.Config, seasonal *Seasonal, weekly *Weekly, log *logger.Logger) service.Strategy {
	switch cfg.Forecast.Strategy {
	case config.StrategySeasonal:
		log.Info("forecast strategy forced", logger.String("strategy", seasonal.Name()))
		return seasonal
	case config.StrategyWeekly:
		log.Info("forecast strategy forced", logger.String("strategy", weekly.Name()))
		return weekly
	}

	if seasonal.Available(ctx) {
		log.Info("seasonal capability available", logger.String("strategy", seasonal.Name()))
		return seasonal
	}
	log.Warn("seasonal capability unavailable, using weekly-pattern fallback")
	return weekly
}
