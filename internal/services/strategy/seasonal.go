package strategy

import (
	"context"
	"fmt"
	"time"

	"DemandCast/internal/domain/models"
	"DemandCast/internal/domain/service"
	xhttp "DemandCast/pkg/http"
	"DemandCast/pkg/logger"
	"DemandCast/pkg/util"
)

// minSeasonalRows is the floor below which the seasonal model cannot
// estimate weekly structure.
const minSeasonalRows = 14

// seasonalFitted holds the series and resolved parameters; the modeling
// service is stateless, so forecasting re-submits both.
type seasonalFitted struct {
	series models.TrainingSeries
	params map[string]any
}

func (f *seasonalFitted) Strategy() string { return service.StrategySeasonal }

func (f *seasonalFitted) Params() map[string]any { return f.params }

// Seasonal delegates trend/seasonality decomposition to the seasonal
// modeling sidecar over HTTP and applies interval widening and clamping
// on the way back.
type Seasonal struct {
	baseURL string
	client  *xhttp.Client
	log     *logger.Logger
}

// NewSeasonal creates the seasonal strategy client.
func NewSeasonal(baseURL string, timeout time.Duration, log *logger.Logger) *Seasonal {
	return &Seasonal{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		log:     log,
	}
}

func (s *Seasonal) Name() string { return service.StrategySeasonal }

// Available implements the capability probe: the sidecar must be
// configured and its health endpoint reachable.
func (s *Seasonal) Available(ctx context.Context) bool {
	if s.baseURL == "" {
		return false
	}
	var out struct {
		Status string `json:"status"`
	}
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.baseURL + "/health",
	}, &out)
	if err != nil {
		s.log.Warn("seasonal capability probe failed", logger.Error(err))
		return false
	}
	return true
}

// Fit validates the series and resolves model parameters. Yearly
// seasonality turns on only when the gap-free series spans more than a
// year; overrides from the request win over defaults.
func (s *Seasonal) Fit(_ context.Context, series models.TrainingSeries, overrides map[string]any) (service.Fitted, error) {
	if len(series.Points) < minSeasonalRows {
		return nil, fmt.Errorf("%w: need at least %d days, got %d",
			models.ErrInsufficientData, minSeasonalRows, len(series.Points))
	}

	params := map[string]any{
		"weekly_seasonality":      true,
		"yearly_seasonality":      len(series.Points) > 365,
		"daily_seasonality":       false,
		"changepoint_prior_scale": 0.05,
		"seasonality_prior_scale": 10,
	}
	for k, v := range overrides {
		params[k] = v
	}

	s.log.Info("prepared seasonal model",
		logger.String("scope", series.Scope.String()),
		logger.Int("data_points", len(series.Points)))

	return &seasonalFitted{series: series, params: params}, nil
}

type seasonalSeriesRow struct {
	Date     string  `json:"date"`
	Quantity float64 `json:"quantity"`
}

type seasonalForecastRequest struct {
	Series         []seasonalSeriesRow `json:"series"`
	Params         map[string]any      `json:"params"`
	Horizon        int                 `json:"horizon"`
	IncludeHistory bool                `json:"include_history"`
}

type seasonalForecastRow struct {
	Date    string  `json:"date"`
	Yhat    float64 `json:"yhat"`
	Lower80 float64 `json:"yhat_lower"`
	Upper80 float64 `json:"yhat_upper"`
	Trend   float64 `json:"trend"`
	Weekly  float64 `json:"weekly"`
}

type seasonalForecastResponse struct {
	Rows []seasonalForecastRow `json:"rows"`
}

// Forecast submits the series and receives one row per day. The 95%
// interval widens the 80% half-width by 1.5 on both sides; central and
// lower bounds are clamped at zero, upper bounds are not. History rows
// are trimmed to the last seven in-sample days.
func (s *Seasonal) Forecast(ctx context.Context, fitted service.Fitted, horizon int, includeHistory bool) ([]models.Prediction, error) {
	f, ok := fitted.(*seasonalFitted)
	if !ok {
		return nil, models.ErrNotTrained
	}

	req := seasonalForecastRequest{
		Series:         make([]seasonalSeriesRow, 0, len(f.series.Points)),
		Params:         f.params,
		Horizon:        horizon,
		IncludeHistory: includeHistory,
	}
	for _, p := range f.series.Points {
		req.Series = append(req.Series, seasonalSeriesRow{
			Date:     p.Date.Format(util.DateOnly),
			Quantity: p.Quantity,
		})
	}

	var resp seasonalForecastResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     s.baseURL + "/forecast",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    req,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("seasonal forecast: %w", err)
	}

	historyCutoff := f.series.End.AddDate(0, 0, -historyDays)
	var (
		out  []models.Prediction
		prev time.Time
	)
	for _, row := range resp.Rows {
		date, perr := time.Parse(util.DateOnly, row.Date)
		if perr != nil {
			return nil, fmt.Errorf("seasonal forecast: bad date %q: %w", row.Date, perr)
		}
		if !prev.IsZero() && !date.After(prev) {
			return nil, fmt.Errorf("seasonal forecast: dates out of order at %s", row.Date)
		}
		prev = date

		isHistory := !date.After(f.series.End)
		if isHistory && date.Before(historyCutoff) {
			continue
		}

		width := row.Upper80 - row.Yhat
		out = append(out, models.Prediction{
			Date:              date,
			Central:           clampZero(row.Yhat),
			Lower80:           clampZero(row.Lower80),
			Upper80:           row.Upper80,
			Lower95:           clampZero(row.Yhat - width*1.5),
			Upper95:           row.Yhat + width*1.5,
			Trend:             row.Trend,
			WeeklySeasonality: row.Weekly,
			IsHistory:         isHistory,
		})
	}
	return out, nil
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
