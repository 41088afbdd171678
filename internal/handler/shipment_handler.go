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

// CreateShipment records a shipment header. The supplier code must
// resolve under the session's institution; a code that only exists for
// another institution is rejected like a missing one.
func (h *Handler) CreateShipment(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("shipment", "create")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	var req struct {
		SupplierCode string    `json:"supplier_code"`
		ShipmentDate time.Time `json:"shipment_date"`
		ArrivalDate  time.Time `json:"arrival_date"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	shp := model.Shipment{
		InstitutionID: instID,
		SupplierCode:  req.SupplierCode,
		ShipmentDate:  req.ShipmentDate,
		ArrivalDate:   req.ArrivalDate,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.store.CreateShipment(c.Request().Context(), &shp); err != nil {
		return storeError(c, log, err)
	}

	log.Info("Shipment created",
		zap.Uint("id", shp.ID),
		zap.String("supplier_code", shp.SupplierCode))
	return c.JSON(http.StatusCreated, shp)
}

// ImportShipment is the historical-import path: an unknown supplier
// code gets an inactive placeholder supplier instead of a rejection.
func (h *Handler) ImportShipment(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("shipment", "import")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	var req struct {
		SupplierCode string    `json:"supplier_code"`
		SupplierName string    `json:"supplier_name"`
		Country      string    `json:"country"`
		ShipmentDate time.Time `json:"shipment_date"`
		ArrivalDate  time.Time `json:"arrival_date"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	shp := model.Shipment{
		InstitutionID: instID,
		SupplierCode:  req.SupplierCode,
		ShipmentDate:  req.ShipmentDate,
		ArrivalDate:   req.ArrivalDate,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.store.ImportShipment(c.Request().Context(), &shp, req.SupplierName, req.Country); err != nil {
		return storeError(c, log, err)
	}

	log.Info("Historical shipment imported",
		zap.Uint("id", shp.ID),
		zap.String("supplier_code", shp.SupplierCode))
	return c.JSON(http.StatusCreated, shp)
}

// ListShipments returns the institution's shipments
func (h *Handler) ListShipments(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("shipment", "list")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	shipments, err := h.store.ListShipments(c.Request().Context(), instID)
	if err != nil {
		return storeError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"shipments": shipments})
}

// GetShipment returns one shipment with its line items
func (h *Handler) GetShipment(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("shipment", "get")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx := c.Request().Context()
	shp, err := h.store.GetShipment(ctx, instID, id)
	if err != nil {
		return storeError(c, log, err)
	}
	items, err := h.store.ListShipmentItems(ctx, instID, id)
	if err != nil {
		return storeError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"shipment": shp, "items": items})
}

// DeleteShipment removes a shipment with its items and release history
func (h *Handler) DeleteShipment(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("shipment", "delete")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.store.DeleteShipment(c.Request().Context(), instID, id); err != nil {
		return storeError(c, log, err)
	}

	log.Info("Shipment deleted", zap.Uint("id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "shipment deleted"})
}

// AddShipmentItem appends a species line to a shipment
func (h *Handler) AddShipmentItem(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("shipment_item", "create")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	shipmentID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req struct {
		SpeciesID         uint `json:"butterfly_species_id"`
		NumberReceived    int  `json:"number_received"`
		EmergedInTransit  int  `json:"emerged_in_transit"`
		DamagedInTransit  int  `json:"damaged_in_transit"`
		DiseasedInTransit int  `json:"diseased_in_transit"`
		Parasite          int  `json:"parasite"`
		NonEmergence      int  `json:"non_emergence"`
		PoorEmergence     int  `json:"poor_emergence"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	item := model.ShipmentItem{
		InstitutionID:     instID,
		ShipmentID:        shipmentID,
		SpeciesID:         req.SpeciesID,
		NumberReceived:    req.NumberReceived,
		EmergedInTransit:  req.EmergedInTransit,
		DamagedInTransit:  req.DamagedInTransit,
		DiseasedInTransit: req.DiseasedInTransit,
		Parasite:          req.Parasite,
		NonEmergence:      req.NonEmergence,
		PoorEmergence:     req.PoorEmergence,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.store.AddShipmentItem(c.Request().Context(), &item); err != nil {
		return storeError(c, log, err)
	}

	log.Info("Shipment item added",
		zap.Uint("shipment_id", shipmentID),
		zap.Uint("species_id", req.SpeciesID))
	return c.JSON(http.StatusCreated, item)
}

// DeleteShipmentItem removes a line item unless releases reference it
func (h *Handler) DeleteShipmentItem(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("shipment_item", "delete")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	itemID, err := parseID(c, "item_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	if err := h.store.DeleteShipmentItem(c.Request().Context(), instID, itemID); err != nil {
		return storeError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "shipment item deleted"})
}
