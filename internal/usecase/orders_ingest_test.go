package usecase

import (
	"context"
	"testing"

	"DemandCast/internal/domain/models"
	"DemandCast/pkg/logger"
	"DemandCast/pkg/metrics"
)

func TestHandleOrderEvent(t *testing.T) {
	ledger := &fakeLedger{totals: map[string][]models.SeriesPoint{}}
	ingest := NewOrdersIngest("orders.events", ledger, metrics.Nop{}, logger.Nop())

	payload := []byte(`{
		"order_id": "o-1",
		"place_id": 1,
		"status": "Closed (paid)",
		"created_at": "2024-06-03T12:30:00Z",
		"lines": [
			{"item_id": 10, "quantity": "2.5"},
			{"item_id": 11, "quantity": "oops"}
		]
	}`)
	if err := ingest.Handle(context.Background(), payload); err != nil {
		t.Fatalf("handle: %v", err)
	}

	rows := ledger.totals["1"]
	if len(rows) != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", len(rows))
	}
	if rows[0].Quantity != 2.5 {
		t.Fatalf("expected quantity 2.5, got %v", rows[0].Quantity)
	}
	// Malformed quantity falls back to 1 instead of dropping the line.
	if rows[1].Quantity != 1 {
		t.Fatalf("expected fallback quantity 1, got %v", rows[1].Quantity)
	}
}

func TestHandleOrderEventRejectsBadPayload(t *testing.T) {
	ledger := &fakeLedger{totals: map[string][]models.SeriesPoint{}}
	ingest := NewOrdersIngest("orders.events", ledger, metrics.Nop{}, logger.Nop())

	if err := ingest.Handle(context.Background(), []byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
	if err := ingest.Handle(context.Background(), []byte(`{"order_id":"o-2","lines":[]}`)); err == nil {
		t.Fatalf("expected missing place error")
	}
}
