package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"

	"DemandCast/internal/domain/models"
	applogger "DemandCast/pkg/logger"
	pkgpg "DemandCast/pkg/postgres"
)

// forecastSchema versions trained models and their points. Models are
// append-only; points cascade with their owning model. The unique index
// coalesces the nullable item so place-level and item-level points
// cannot collide on the same date.
var forecastSchema = []string{
	`CREATE TABLE IF NOT EXISTS trained_models (
		id             BIGSERIAL PRIMARY KEY,
		place_id       BIGINT NOT NULL,
		item_id        BIGINT,
		strategy       TEXT NOT NULL,
		trained_at     TIMESTAMPTZ NOT NULL,
		training_start DATE NOT NULL,
		training_end   DATE NOT NULL,
		data_points    INT NOT NULL,
		params         JSONB,
		mape           DOUBLE PRECISION,
		rmse           DOUBLE PRECISION,
		mae            DOUBLE PRECISION,
		metrics_note   TEXT NOT NULL DEFAULT '',
		is_active      BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trained_models_scope
		ON trained_models (place_id, item_id, trained_at DESC)`,
	`CREATE TABLE IF NOT EXISTS forecast_points (
		model_id           BIGINT NOT NULL REFERENCES trained_models(id) ON DELETE CASCADE,
		place_id           BIGINT NOT NULL,
		item_id            BIGINT,
		forecast_date      DATE NOT NULL,
		predicted          DOUBLE PRECISION NOT NULL,
		lower_80           DOUBLE PRECISION NOT NULL,
		upper_80           DOUBLE PRECISION NOT NULL,
		lower_95           DOUBLE PRECISION NOT NULL,
		upper_95           DOUBLE PRECISION NOT NULL,
		trend              DOUBLE PRECISION NOT NULL,
		weekly_seasonality DOUBLE PRECISION NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_forecast_points_model_scope_date
		ON forecast_points (model_id, place_id, COALESCE(item_id, 0), forecast_date)`,
}

// PGForecastStore implements ForecastStore backed by Postgres.
type PGForecastStore struct {
	pg *pkgpg.Client
	l  *applogger.Logger
}

func NewPGForecastStore(pg *pkgpg.Client, l *applogger.Logger) *PGForecastStore {
	return &PGForecastStore{pg: pg, l: l}
}

// InitSchema creates the model and point tables.
func (s *PGForecastStore) InitSchema(ctx context.Context) error {
	return s.pg.InitSchema(ctx, forecastSchema)
}

// SaveForecast inserts the model row and bulk-copies its points inside
// one transaction, so readers never observe a model without points.
func (s *PGForecastStore) SaveForecast(ctx context.Context, model models.TrainedModel, preds []models.Prediction) (int64, error) {
	params, err := json.Marshal(model.Params)
	if err != nil {
		return 0, fmt.Errorf("marshal params: %w", err)
	}

	tx, err := s.pg.Pool().Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
        INSERT INTO trained_models
            (place_id, item_id, strategy, trained_at, training_start, training_end,
             data_points, params, mape, rmse, mae, metrics_note, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING id
    `,
		model.Scope.PlaceID, model.Scope.ItemID, model.Strategy, model.TrainedAt,
		model.TrainingStart, model.TrainingEnd, model.DataPoints, params,
		model.Metrics.MAPE, model.Metrics.RMSE, model.Metrics.MAE,
		model.Metrics.Note, model.Active,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert model: %w", err)
	}

	rows := make([][]any, 0, len(preds))
	for _, p := range preds {
		rows = append(rows, []any{
			id, model.Scope.PlaceID, model.Scope.ItemID, p.Date,
			p.Central, p.Lower80, p.Upper80, p.Lower95, p.Upper95,
			p.Trend, p.WeeklySeasonality,
		})
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"forecast_points"},
		[]string{"model_id", "place_id", "item_id", "forecast_date",
			"predicted", "lower_80", "upper_80", "lower_95", "upper_95",
			"trend", "weekly_seasonality"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("copy points: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	s.l.Info("forecast saved",
		applogger.Int64("model_id", id),
		applogger.String("scope", model.Scope.String()),
		applogger.Int("points", len(preds)))
	return id, nil
}

const modelColumns = `
	id, place_id, item_id, strategy, trained_at, training_start, training_end,
	data_points, params, mape, rmse, mae, metrics_note, is_active
`

// maxModelList bounds the model listing regardless of the caller's limit.
const maxModelList = 50

// ActiveModel picks the authoritative model for the scope: the most
// recently trained active one whose item matches exactly, including the
// item-absent case.
func (s *PGForecastStore) ActiveModel(ctx context.Context, scope models.Scope) (models.TrainedModel, error) {
	row := s.pg.Pool().QueryRow(ctx, `
        SELECT `+modelColumns+`
        FROM trained_models
        WHERE place_id = $1
          AND item_id IS NOT DISTINCT FROM $2
          AND is_active
        ORDER BY trained_at DESC
        LIMIT 1
    `, scope.PlaceID, scope.ItemID)

	m, err := scanModel(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return m, fmt.Errorf("%w: %s", models.ErrNoActiveModel, scope)
	}
	return m, err
}

// Window reads the model's points within [start, end].
func (s *PGForecastStore) Window(ctx context.Context, modelID int64, start, end time.Time) ([]models.ForecastPoint, error) {
	rows, err := s.pg.Pool().Query(ctx, `
        SELECT model_id, place_id, item_id, forecast_date,
               predicted, lower_80, upper_80, lower_95, upper_95,
               trend, weekly_seasonality
        FROM forecast_points
        WHERE model_id = $1
          AND forecast_date >= $2
          AND forecast_date <= $3
        ORDER BY forecast_date ASC
    `, modelID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query window: %w", err)
	}
	defer rows.Close()

	var out []models.ForecastPoint
	for rows.Next() {
		var p models.ForecastPoint
		if err := rows.Scan(&p.ModelID, &p.Scope.PlaceID, &p.Scope.ItemID, &p.Date,
			&p.Central, &p.Lower80, &p.Upper80, &p.Lower95, &p.Upper95,
			&p.Trend, &p.WeeklySeasonality); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListModels returns recent active model versions for a place, newest
// first, never more than maxModelList rows.
func (s *PGForecastStore) ListModels(ctx context.Context, placeID int64, limit int) ([]models.TrainedModel, error) {
	if limit <= 0 || limit > maxModelList {
		limit = maxModelList
	}
	rows, err := s.pg.Pool().Query(ctx, `
        SELECT `+modelColumns+`
        FROM trained_models
        WHERE place_id = $1
          AND is_active
        ORDER BY trained_at DESC
        LIMIT $2
    `, placeID, limit)
	if err != nil {
		return nil, fmt.Errorf("query models: %w", err)
	}
	defer rows.Close()

	var out []models.TrainedModel
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PGForecastStore) Health(ctx context.Context) error {
	return s.pg.Health(ctx)
}

func scanModel(row pgx.Row) (models.TrainedModel, error) {
	var (
		m      models.TrainedModel
		params []byte
	)
	err := row.Scan(&m.ID, &m.Scope.PlaceID, &m.Scope.ItemID, &m.Strategy,
		&m.TrainedAt, &m.TrainingStart, &m.TrainingEnd, &m.DataPoints,
		&params, &m.Metrics.MAPE, &m.Metrics.RMSE, &m.Metrics.MAE,
		&m.Metrics.Note, &m.Active)
	if err != nil {
		return m, err
	}
	if len(params) > 0 {
		if jerr := json.Unmarshal(params, &m.Params); jerr != nil {
			return m, fmt.Errorf("unmarshal params: %w", jerr)
		}
	}
	return m, nil
}
