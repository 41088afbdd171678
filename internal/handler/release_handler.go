package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Reiman-Gardens/flutr/internal/model"
	"github.com/Reiman-Gardens/flutr/pkg/logger"
	"github.com/Reiman-Gardens/flutr/prometheus"
)

// CreateReleaseEvent records a release against one of the institution's
// shipments. ReleasedBy is a plain label captured now; it survives the
// named user leaving later.
func (h *Handler) CreateReleaseEvent(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("release_event", "create")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	var req struct {
		ShipmentID  uint      `json:"shipment_id"`
		ReleaseDate time.Time `json:"release_date"`
		ReleasedBy  string    `json:"released_by"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ev := model.ReleaseEvent{
		InstitutionID: instID,
		ShipmentID:    req.ShipmentID,
		ReleaseDate:   req.ReleaseDate,
		ReleasedBy:    req.ReleasedBy,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.store.CreateReleaseEvent(c.Request().Context(), &ev); err != nil {
		return storeError(c, log, err)
	}

	log.Info("Release event created",
		zap.Uint("id", ev.ID),
		zap.Uint("shipment_id", ev.ShipmentID))
	return c.JSON(http.StatusCreated, ev)
}

// ListReleaseEvents returns the institution's release history
func (h *Handler) ListReleaseEvents(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("release_event", "list")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	events, err := h.store.ListReleaseEvents(c.Request().Context(), instID)
	if err != nil {
		return storeError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"release_events": events})
}

// GetReleaseEvent returns one release event with its items
func (h *Handler) GetReleaseEvent(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("release_event", "get")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx := c.Request().Context()
	ev, err := h.store.GetReleaseEvent(ctx, instID, id)
	if err != nil {
		return storeError(c, log, err)
	}
	items, err := h.store.ListReleaseItems(ctx, instID, id)
	if err != nil {
		return storeError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"release_event": ev, "items": items})
}

// DeleteReleaseEvent removes an event and its items
func (h *Handler) DeleteReleaseEvent(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("release_event", "delete")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.store.DeleteReleaseEvent(c.Request().Context(), instID, id); err != nil {
		return storeError(c, log, err)
	}

	log.Info("Release event deleted", zap.Uint("id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "release event deleted"})
}

// AddReleaseItem records a released quantity against a shipment line
func (h *Handler) AddReleaseItem(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("release_item", "create")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	eventID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req struct {
		ShipmentItemID uint `json:"shipment_item_id"`
		Quantity       int  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	item := model.ReleaseItem{
		InstitutionID:  instID,
		ReleaseEventID: eventID,
		ShipmentItemID: req.ShipmentItemID,
		Quantity:       req.Quantity,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.store.AddReleaseItem(c.Request().Context(), &item); err != nil {
		return storeError(c, log, err)
	}

	log.Info("Release item added",
		zap.Uint("release_event_id", eventID),
		zap.Uint("shipment_item_id", req.ShipmentItemID))
	return c.JSON(http.StatusCreated, item)
}
