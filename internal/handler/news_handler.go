package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Reiman-Gardens/flutr/internal/model"
	"github.com/Reiman-Gardens/flutr/pkg/logger"
	"github.com/Reiman-Gardens/flutr/prometheus"
)

// CreateNews adds a news entry for the session's institution
func (h *Handler) CreateNews(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("news", "create")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	var req struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		ImageURL string `json:"image_url"`
		IsActive bool   `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	news := model.InstitutionNews{
		InstitutionID: instID,
		Title:         req.Title,
		Content:       req.Content,
		ImageURL:      req.ImageURL,
		IsActive:      req.IsActive,
	}
	if err := h.store.CreateNews(c.Request().Context(), &news); err != nil {
		return storeError(c, log, err)
	}

	log.Info("News entry created", zap.Uint("id", news.ID))
	return c.JSON(http.StatusCreated, news)
}

// ListNews returns the institution's news, newest first. ?active=true
// limits to active entries, which is what the front page shows.
func (h *Handler) ListNews(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("news", "list")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	activeOnly, _ := strconv.ParseBool(c.QueryParam("active"))
	entries, err := h.store.ListNews(c.Request().Context(), instID, activeOnly)
	if err != nil {
		return storeError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"news": entries})
}

// UpdateNews edits a news entry
func (h *Handler) UpdateNews(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("news", "update")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		ImageURL string `json:"image_url"`
		IsActive bool   `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	news := model.InstitutionNews{
		ID:            id,
		InstitutionID: instID,
		Title:         req.Title,
		Content:       req.Content,
		ImageURL:      req.ImageURL,
		IsActive:      req.IsActive,
	}
	if err := h.store.UpdateNews(c.Request().Context(), &news); err != nil {
		return storeError(c, log, err)
	}
	return c.JSON(http.StatusOK, news)
}

// DeleteNews removes a news entry
func (h *Handler) DeleteNews(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("news", "delete")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	if err := h.store.DeleteNews(c.Request().Context(), instID, id); err != nil {
		return storeError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "news entry deleted"})
}
