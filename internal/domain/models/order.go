package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderEvent is an order as it arrives on the orders topic.
type OrderEvent struct {
	OrderID   string      `json:"order_id"`
	PlaceID   int64       `json:"place_id"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	Lines     []OrderLine `json:"lines"`
}

// OrderLine is one item line on an order. Quantity arrives as a string
// because upstream systems emit it with arbitrary precision.
type OrderLine struct {
	ItemID   int64  `json:"item_id"`
	Quantity string `json:"quantity"`
}

// QuantityFallback records a line quantity that could not be parsed and
// the value substituted for it.
type QuantityFallback struct {
	Raw     string
	Applied float64
	Reason  string
}

// ParseQuantity parses a line quantity. On malformed input it returns
// the fallback value 1 together with a record of the substitution, so
// ingestion can log it instead of dropping the line silently.
func ParseQuantity(raw string) (float64, *QuantityFallback) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 1, &QuantityFallback{Raw: raw, Applied: 1, Reason: "empty quantity"}
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 1, &QuantityFallback{Raw: raw, Applied: 1, Reason: err.Error()}
	}
	f, _ := d.Float64()
	if f < 0 {
		return 1, &QuantityFallback{Raw: raw, Applied: 1, Reason: "negative quantity"}
	}
	return f, nil
}

// LedgerRow is one order line flattened for the sales ledger.
type LedgerRow struct {
	PlaceID   int64
	ItemID    int64
	Quantity  float64
	Status    string
	CreatedAt time.Time
}
