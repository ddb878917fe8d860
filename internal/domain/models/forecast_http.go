package models

// GenerateForecastRequest triggers training and forecast generation for
// a place, optionally narrowed to specific items.
type GenerateForecastRequest struct {
	PlaceID   int64   `json:"place_id" validate:"required,gt=0"`
	DaysAhead int     `json:"days_ahead" default:"7" validate:"gte=1,lte=90"`
	ItemIDs   []int64 `json:"item_ids" validate:"omitempty,dive,gt=0"`
}

// ForecastQuery is the parsed query surface of the retrieval endpoints.
type ForecastQuery struct {
	Days           int
	IncludeHistory bool
}

// ForecastDayResponse is one forecast day on the wire.
type ForecastDayResponse struct {
	Date              string  `json:"date"`
	Central           float64 `json:"predicted_quantity"`
	Lower80           float64 `json:"lower_bound_80"`
	Upper80           float64 `json:"upper_bound_80"`
	Lower95           float64 `json:"lower_bound_95"`
	Upper95           float64 `json:"upper_bound_95"`
	Trend             float64 `json:"trend"`
	WeeklySeasonality float64 `json:"weekly_seasonality"`
	IsHistory         bool    `json:"is_history,omitempty"`
}

// ForecastResponse is the retrieval payload for a scope.
type ForecastResponse struct {
	PlaceID   int64                 `json:"place_id"`
	ItemID    *int64                `json:"item_id,omitempty"`
	ModelID   int64                 `json:"model_id"`
	Strategy  string                `json:"strategy"`
	TrainedAt string                `json:"trained_at"`
	Anchor    string                `json:"anchor"`
	Metrics   Metrics               `json:"metrics"`
	Days      []ForecastDayResponse `json:"days"`
}

// ModelResponse is one model version in the models listing.
type ModelResponse struct {
	ID            int64          `json:"id"`
	PlaceID       int64          `json:"place_id"`
	ItemID        *int64         `json:"item_id,omitempty"`
	Strategy      string         `json:"strategy"`
	TrainedAt     string         `json:"trained_at"`
	TrainingStart string         `json:"training_start"`
	TrainingEnd   string         `json:"training_end"`
	DataPoints    int            `json:"data_points"`
	Params        map[string]any `json:"params,omitempty"`
	Metrics       Metrics        `json:"metrics"`
	Active        bool           `json:"active"`
}
