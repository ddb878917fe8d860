package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"DemandCast/internal/domain/repository"
	xhttp "DemandCast/pkg/http"
)

// HealthEchoHandler reports readiness of the storage backends.
type HealthEchoHandler struct {
	ledger repository.SalesLedger
	store  repository.ForecastStore
}

func NewHealthEchoHandler(ledger repository.SalesLedger, store repository.ForecastStore) *HealthEchoHandler {
	return &HealthEchoHandler{ledger: ledger, store: store}
}

func (h *HealthEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
}

func (h *HealthEchoHandler) Health(c echo.Context) error {
	status := map[string]string{
		"ledger": "ok",
		"store":  "ok",
	}
	healthy := true
	if err := h.ledger.Health(c.Request().Context()); err != nil {
		status["ledger"] = err.Error()
		healthy = false
	}
	if err := h.store.Health(c.Request().Context()); err != nil {
		status["store"] = err.Error()
		healthy = false
	}
	if !healthy {
		return c.JSON(http.StatusServiceUnavailable, status)
	}
	return xhttp.SuccessResponse(c, status)
}
