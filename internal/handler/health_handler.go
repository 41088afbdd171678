package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Reiman-Gardens/flutr/prometheus"
)

// HealthCheck reports service and database health
func (h *Handler) HealthCheck(c echo.Context) error {
	sqlDB, err := h.store.DB().DB()
	if err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status":   "degraded",
			"database": "unreachable",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// Metrics serves the Prometheus scrape endpoint
func (h *Handler) Metrics(c echo.Context) error {
	prometheus.Handler().ServeHTTP(c.Response(), c.Request())
	return nil
}
