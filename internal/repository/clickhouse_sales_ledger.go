package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"DemandCast/internal/domain/models"
	pkgch "DemandCast/pkg/clickhouse"
	applogger "DemandCast/pkg/logger"
)

// ledgerSchema holds the per-line demand ledger. Closed-state matching
// happens at query time so upstream status decoration never blocks
// ingestion.
var ledgerSchema = []string{
	`CREATE TABLE IF NOT EXISTS order_lines (
		place_id   Int64,
		item_id    Int64,
		quantity   Float64,
		status     LowCardinality(String),
		created_at DateTime
	) ENGINE = MergeTree()
	ORDER BY (place_id, item_id, created_at)`,
}

// CHSalesLedger implements SalesLedger backed by ClickHouse.
type CHSalesLedger struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHSalesLedger(ch *pkgch.Client, l *applogger.Logger) *CHSalesLedger {
	return &CHSalesLedger{db: ch.DB(), l: l}
}

// InitSchema creates the ledger table.
func (s *CHSalesLedger) InitSchema(ctx context.Context, ch *pkgch.Client) error {
	return ch.InitSchema(ctx, ledgerSchema)
}

// DailyTotals sums closed-order quantities per calendar day of the
// order timestamp. Days without sales are absent from the result, the
// aggregator fills them.
func (s *CHSalesLedger) DailyTotals(ctx context.Context, scope models.Scope, start, end time.Time) ([]models.SeriesPoint, error) {
	q := `
        SELECT toDate(created_at) AS day, sum(quantity) AS qty
        FROM order_lines
        WHERE place_id = ?
          AND positionCaseInsensitive(status, 'closed') > 0
          AND created_at >= ?
          AND created_at < ?
    `
	args := []any{scope.PlaceID, start, end.AddDate(0, 0, 1)}
	if scope.ItemID != nil {
		q += " AND item_id = ?"
		args = append(args, *scope.ItemID)
	}
	q += " GROUP BY day ORDER BY day ASC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	out := make([]models.SeriesPoint, 0, 64)
	for rows.Next() {
		var p models.SeriesPoint
		if err := rows.Scan(&p.Date, &p.Quantity); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse daily_totals ok",
		applogger.String("scope", scope.String()),
		applogger.Int("rows", len(out)))
	return out, nil
}

// DateRange finds the earliest and latest closed-order timestamps for
// the scope.
func (s *CHSalesLedger) DateRange(ctx context.Context, scope models.Scope) (time.Time, time.Time, bool, error) {
	q := `
        SELECT min(created_at), max(created_at), count()
        FROM order_lines
        WHERE place_id = ?
          AND positionCaseInsensitive(status, 'closed') > 0
    `
	args := []any{scope.PlaceID}
	if scope.ItemID != nil {
		q += " AND item_id = ?"
		args = append(args, *scope.ItemID)
	}

	var minTS, maxTS time.Time
	var count uint64
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&minTS, &maxTS, &count); err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("date range: %w", err)
	}
	if count == 0 {
		return time.Time{}, time.Time{}, false, nil
	}
	return minTS, maxTS, true, nil
}

// StoreOrders appends flattened order lines in one batch.
func (s *CHSalesLedger) StoreOrders(ctx context.Context, lines []models.LedgerRow) error {
	if len(lines) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO order_lines (place_id, item_id, quantity, status, created_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	for _, row := range lines {
		if _, err := stmt.ExecContext(ctx, row.PlaceID, row.ItemID, row.Quantity, row.Status, row.CreatedAt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append line: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	s.l.Debug("clickhouse store_orders ok", applogger.Int("rows", len(lines)))
	return nil
}

// ActivePlaces lists distinct places with closed sales.
func (s *CHSalesLedger) ActivePlaces(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT DISTINCT place_id
        FROM order_lines
        WHERE positionCaseInsensitive(status, 'closed') > 0
        ORDER BY place_id ASC
    `)
	if err != nil {
		return nil, fmt.Errorf("active places: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *CHSalesLedger) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
