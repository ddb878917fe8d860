package usecase

import (
	"context"

	"DemandCast/internal/domain/models"
	"DemandCast/internal/domain/repository"
	"DemandCast/pkg/logger"
)

// Generator runs forecast generation over many scopes, isolating
// per-scope failures so one bad scope never aborts the batch.
type Generator struct {
	forecaster *Forecaster
	ledger     repository.SalesLedger
	log        *logger.Logger
}

// NewGenerator creates a batch forecast generator.
func NewGenerator(forecaster *Forecaster, ledger repository.SalesLedger, log *logger.Logger) *Generator {
	return &Generator{forecaster: forecaster, ledger: ledger, log: log}
}

// GenerateForPlace trains the place-level scope and, when itemIDs are
// given, one scope per item. Each scope succeeds or fails on its own.
func (g *Generator) GenerateForPlace(ctx context.Context, placeID int64, days int, itemIDs []int64) models.BatchSummary {
	scopes := []models.Scope{{PlaceID: placeID}}
	for _, itemID := range itemIDs {
		id := itemID
		scopes = append(scopes, models.Scope{PlaceID: placeID, ItemID: &id})
	}
	return g.run(ctx, scopes, days)
}

// GenerateAll trains every place present in the sales ledger at the
// place level.
func (g *Generator) GenerateAll(ctx context.Context, days int) (models.BatchSummary, error) {
	places, err := g.ledger.ActivePlaces(ctx)
	if err != nil {
		return models.BatchSummary{}, err
	}
	scopes := make([]models.Scope, 0, len(places))
	for _, placeID := range places {
		scopes = append(scopes, models.Scope{PlaceID: placeID})
	}
	return g.run(ctx, scopes, days), nil
}

func (g *Generator) run(ctx context.Context, scopes []models.Scope, days int) models.BatchSummary {
	summary := models.BatchSummary{
		Total: len(scopes),
		Items: make([]models.BatchItemResult, 0, len(scopes)),
	}
	for _, scope := range scopes {
		item := models.BatchItemResult{PlaceID: scope.PlaceID, ItemID: scope.ItemID}

		result, err := g.forecaster.Generate(ctx, scope, days, nil)
		if err != nil {
			g.log.Warn("scope generation failed",
				logger.String("scope", scope.String()),
				logger.Error(err))
			item.Status = models.StatusFailed
			item.Error = err.Error()
			summary.Failed++
		} else {
			item.Status = result.Status
			item.Result = &result
			summary.Succeeded++
		}
		summary.Items = append(summary.Items, item)
	}
	return summary
}
