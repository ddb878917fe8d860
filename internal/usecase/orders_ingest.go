package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"DemandCast/internal/domain/models"
	"DemandCast/internal/domain/repository"
	"DemandCast/pkg/logger"
)

// OrdersIngest consumes order events and appends their lines to the
// sales ledger.
type OrdersIngest struct {
	topic   string
	ledger  repository.SalesLedger
	metrics repository.Metrics
	log     *logger.Logger
}

// NewOrdersIngest creates the order-event ingestion handler.
func NewOrdersIngest(topic string, ledger repository.SalesLedger, metrics repository.Metrics, log *logger.Logger) *OrdersIngest {
	return &OrdersIngest{topic: topic, ledger: ledger, metrics: metrics, log: log}
}

// Topic returns the Kafka topic this handler consumes.
func (i *OrdersIngest) Topic() string { return i.topic }

// Handle decodes one order event and stores its lines. Malformed line
// quantities fall back to 1 and are logged with the raw value and
// reason rather than dropped.
func (i *OrdersIngest) Handle(ctx context.Context, payload []byte) error {
	var event models.OrderEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		i.metrics.RecordError("ingest_decode")
		return fmt.Errorf("decode order event: %w", err)
	}
	if event.PlaceID <= 0 {
		i.metrics.RecordError("ingest_invalid")
		return fmt.Errorf("order %s: missing place id", event.OrderID)
	}

	rows := make([]models.LedgerRow, 0, len(event.Lines))
	for _, line := range event.Lines {
		qty, fb := models.ParseQuantity(line.Quantity)
		if fb != nil {
			i.log.Warn("quantity fallback applied",
				logger.String("order_id", event.OrderID),
				logger.Int64("item_id", line.ItemID),
				logger.String("raw", fb.Raw),
				logger.Float64("applied", fb.Applied),
				logger.String("reason", fb.Reason))
			i.metrics.RecordError("ingest_quantity_fallback")
		}
		rows = append(rows, models.LedgerRow{
			PlaceID:   event.PlaceID,
			ItemID:    line.ItemID,
			Quantity:  qty,
			Status:    event.Status,
			CreatedAt: event.CreatedAt,
		})
	}
	if len(rows) == 0 {
		return nil
	}

	if err := i.ledger.StoreOrders(ctx, rows); err != nil {
		i.metrics.RecordError("ingest_store")
		return fmt.Errorf("store order %s: %w", event.OrderID, err)
	}
	i.metrics.RecordOrdersIngested(len(rows))
	return nil
}
