package models

import (
	"fmt"
	"time"
)

// Scope identifies what a forecast covers: a place, optionally narrowed
// to a single item. A nil ItemID means the place's total demand.
type Scope struct {
	PlaceID int64
	ItemID  *int64
}

// String renders the scope for logs and error params.
func (s Scope) String() string {
	if s.ItemID == nil {
		return fmt.Sprintf("place=%d", s.PlaceID)
	}
	return fmt.Sprintf("place=%d item=%d", s.PlaceID, *s.ItemID)
}

// SeriesPoint is one day of aggregated demand.
type SeriesPoint struct {
	Date     time.Time
	Quantity float64
}

// TrainingSeries is a gap-free daily quantity series for one scope,
// ordered by date ascending.
type TrainingSeries struct {
	Scope  Scope
	Points []SeriesPoint
	Start  time.Time
	End    time.Time
}

// Len returns the number of daily points.
func (s TrainingSeries) Len() int { return len(s.Points) }

// FeatureRow is a training series point enriched with calendar and
// history-derived features. History features are nil when the series
// is too short to support them.
type FeatureRow struct {
	Date        time.Time
	Quantity    float64
	DayOfWeek   int
	IsWeekend   bool
	Month       int
	Quarter     int
	DayOfMonth  int
	WeekOfYear  int
	Lag7        *float64
	RollMean7   *float64
	RollStd7    *float64
	Lag30       *float64
	RollMean30  *float64
}

// Prediction is one forecast day with its uncertainty intervals and
// decomposition. The fallback strategy reports Trend equal to Central
// and WeeklySeasonality of 0.
type Prediction struct {
	Date              time.Time
	Central           float64
	Lower80           float64
	Upper80           float64
	Lower95           float64
	Upper95           float64
	Trend             float64
	WeeklySeasonality float64
	IsHistory         bool
}

// Metrics holds holdout accuracy measures. MAPE is nil when every
// holdout actual is zero. Note explains why metrics are absent.
type Metrics struct {
	MAPE *float64 `json:"mape"`
	RMSE *float64 `json:"rmse"`
	MAE  *float64 `json:"mae"`
	Note string   `json:"note,omitempty"`
}

// TrainedModel is a persisted model version.
type TrainedModel struct {
	ID            int64
	Scope         Scope
	Strategy      string
	TrainedAt     time.Time
	TrainingStart time.Time
	TrainingEnd   time.Time
	DataPoints    int
	Params        map[string]any
	Metrics       Metrics
	Active        bool
}

// ForecastPoint is one persisted forecast row.
type ForecastPoint struct {
	ModelID           int64
	Scope             Scope
	Date              time.Time
	Central           float64
	Lower80           float64
	Upper80           float64
	Lower95           float64
	Upper95           float64
	Trend             float64
	WeeklySeasonality float64
}

// Training result statuses.
const (
	StatusSuccess         = "success"
	StatusSuccessFallback = "success_fallback"
	StatusFailed          = "failed"
)

// TrainResult summarizes one completed training run for a scope.
type TrainResult struct {
	Scope       Scope     `json:"-"`
	Status      string    `json:"status"`
	Strategy    string    `json:"strategy"`
	ModelID     int64     `json:"model_id"`
	DataPoints  int       `json:"data_points"`
	RangeStart  time.Time `json:"range_start"`
	RangeEnd    time.Time `json:"range_end"`
	Metrics     Metrics   `json:"metrics"`
	PointsSaved int       `json:"points_saved"`
	Note        string    `json:"note,omitempty"`
}

// BatchItemResult is the outcome of one scope inside a batch run.
type BatchItemResult struct {
	PlaceID int64  `json:"place_id"`
	ItemID  *int64 `json:"item_id,omitempty"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`

	Result *TrainResult `json:"result,omitempty"`
}

// BatchSummary aggregates a batch generation run.
type BatchSummary struct {
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Items     []BatchItemResult `json:"items"`
}
