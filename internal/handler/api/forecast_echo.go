package api

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"DemandCast/internal/domain/models"
	"DemandCast/internal/usecase"
	xhttp "DemandCast/pkg/http"
	xlogger "DemandCast/pkg/logger"
)

// ForecastEchoHandler exposes forecast retrieval, generation and model
// listing over HTTP.
type ForecastEchoHandler struct {
	logger         *xlogger.Logger
	forecaster     *usecase.Forecaster
	generator      *usecase.Generator
	defaultHorizon int
	maxHorizon     int
}

func NewForecastEchoHandler(logger *xlogger.Logger, forecaster *usecase.Forecaster, generator *usecase.Generator, defaultHorizon, maxHorizon int) *ForecastEchoHandler {
	return &ForecastEchoHandler{
		logger:         logger,
		forecaster:     forecaster,
		generator:      generator,
		defaultHorizon: defaultHorizon,
		maxHorizon:     maxHorizon,
	}
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/forecast")
	g.GET("/models", h.ListModels)
	g.POST("/generate", h.Generate)
	g.GET("/:place_id", h.PlaceForecast)
	g.GET("/:place_id/item/:item_id", h.ItemForecast)
}

// PlaceForecast serves the anchored window for a place-level scope.
// include_history extends the window a week before the anchor.
func (h *ForecastEchoHandler) PlaceForecast(c echo.Context) error {
	placeID, err := strconv.ParseInt(c.Param("place_id"), 10, 64)
	if err != nil || placeID <= 0 {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("place_id"))
	}
	query := h.parseQuery(c)

	resp, err := h.forecaster.Retrieve(c.Request().Context(), models.Scope{PlaceID: placeID}, query.Days, query.IncludeHistory)
	if err != nil {
		return h.fail(c, "retrieve place forecast", err)
	}
	return xhttp.SuccessResponse(c, resp)
}

// ItemForecast serves the anchored window for an item-level scope.
func (h *ForecastEchoHandler) ItemForecast(c echo.Context) error {
	placeID, err := strconv.ParseInt(c.Param("place_id"), 10, 64)
	if err != nil || placeID <= 0 {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("place_id"))
	}
	itemID, err := strconv.ParseInt(c.Param("item_id"), 10, 64)
	if err != nil || itemID <= 0 {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("item_id"))
	}
	query := h.parseQuery(c)

	scope := models.Scope{PlaceID: placeID, ItemID: &itemID}
	resp, err := h.forecaster.Retrieve(c.Request().Context(), scope, query.Days, false)
	if err != nil {
		return h.fail(c, "retrieve item forecast", err)
	}
	return xhttp.SuccessResponse(c, resp)
}

// Generate trains and persists new forecasts for a place, optionally
// per item. Failures of individual scopes are reported in the summary,
// not as a request failure.
func (h *ForecastEchoHandler) Generate(c echo.Context) error {
	req := &models.GenerateForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	days := req.DaysAhead
	if days > h.maxHorizon {
		days = h.maxHorizon
	}

	summary := h.generator.GenerateForPlace(c.Request().Context(), req.PlaceID, days, req.ItemIDs)
	return xhttp.SuccessResponse(c, summary)
}

// ListModels returns recent model versions for a place.
func (h *ForecastEchoHandler) ListModels(c echo.Context) error {
	placeID, err := strconv.ParseInt(c.QueryParam("place_id"), 10, 64)
	if err != nil || placeID <= 0 {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("place_id"))
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	list, err := h.forecaster.ListModels(c.Request().Context(), placeID, limit)
	if err != nil {
		return h.fail(c, "list models", err)
	}

	out := make([]models.ModelResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toModelResponse(m))
	}
	return xhttp.ListResponse(c, out, int64(len(out)))
}

func (h *ForecastEchoHandler) parseQuery(c echo.Context) models.ForecastQuery {
	days, err := strconv.Atoi(c.QueryParam("days"))
	if err != nil || days <= 0 {
		days = h.defaultHorizon
	}
	if days > h.maxHorizon {
		days = h.maxHorizon
	}
	includeHistory, _ := strconv.ParseBool(c.QueryParam("include_history"))
	return models.ForecastQuery{Days: days, IncludeHistory: includeHistory}
}

func (h *ForecastEchoHandler) fail(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, models.ErrNoActiveModel):
		return xhttp.NotFoundResponse(c, xhttp.NotFoundError("scope").WithError(err))
	case errors.Is(err, models.ErrInsufficientData):
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError(err.Error()))
	default:
		h.logger.Error(op, xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
}

func toModelResponse(m models.TrainedModel) models.ModelResponse {
	return models.ModelResponse{
		ID:            m.ID,
		PlaceID:       m.Scope.PlaceID,
		ItemID:        m.Scope.ItemID,
		Strategy:      m.Strategy,
		TrainedAt:     m.TrainedAt.Format("2006-01-02T15:04:05Z07:00"),
		TrainingStart: m.TrainingStart.Format("2006-01-02"),
		TrainingEnd:   m.TrainingEnd.Format("2006-01-02"),
		DataPoints:    m.DataPoints,
		Params:        m.Params,
		Metrics:       m.Metrics,
		Active:        m.Active,
	}
}
