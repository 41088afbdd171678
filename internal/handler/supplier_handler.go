package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Reiman-Gardens/flutr/internal/model"
	"github.com/Reiman-Gardens/flutr/pkg/logger"
	"github.com/Reiman-Gardens/flutr/prometheus"
)

type supplierRequest struct {
	Name       string `json:"name"`
	Code       string `json:"code"`
	Country    string `json:"country"`
	WebsiteURL string `json:"website_url"`
	IsActive   bool   `json:"is_active"`
}

// CreateSupplier adds a supplier under the session's institution. The
// institution always comes from the session claims, never the payload,
// so nobody can create suppliers for another institution.
func (h *Handler) CreateSupplier(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("supplier", "create")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	var req supplierRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	sup := model.Supplier{
		InstitutionID: instID,
		Name:          req.Name,
		Code:          req.Code,
		Country:       req.Country,
		WebsiteURL:    req.WebsiteURL,
		IsActive:      req.IsActive,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.store.CreateSupplier(c.Request().Context(), &sup); err != nil {
		return storeError(c, log, err)
	}

	go h.updateSupplierGauge(instID)

	log.Info("Supplier created",
		zap.Uint("id", sup.ID),
		zap.String("code", sup.Code),
		zap.Uint("institution_id", instID))
	return c.JSON(http.StatusCreated, sup)
}

// ListSuppliers returns the institution's suppliers; ?active=true
// filters out deactivated ones.
func (h *Handler) ListSuppliers(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("supplier", "list")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	activeOnly, _ := strconv.ParseBool(c.QueryParam("active"))

	defer prometheus.TrackDBOperation("query")(time.Now())
	suppliers, err := h.store.ListSuppliers(c.Request().Context(), instID, activeOnly)
	if err != nil {
		return storeError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"suppliers": suppliers})
}

// GetSupplier retrieves one supplier
func (h *Handler) GetSupplier(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("supplier", "get")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	sup, err := h.store.GetSupplier(c.Request().Context(), instID, id)
	if err != nil {
		return storeError(c, log, err)
	}
	return c.JSON(http.StatusOK, sup)
}

// UpdateSupplier saves supplier changes. Renaming a code still stored
// by shipments is rejected.
func (h *Handler) UpdateSupplier(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("supplier", "update")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req supplierRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	sup := model.Supplier{
		ID:            id,
		InstitutionID: instID,
		Name:          req.Name,
		Code:          req.Code,
		Country:       req.Country,
		WebsiteURL:    req.WebsiteURL,
		IsActive:      req.IsActive,
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.store.UpdateSupplier(c.Request().Context(), &sup); err != nil {
		return storeError(c, log, err)
	}

	log.Info("Supplier updated", zap.Uint("id", id), zap.String("code", sup.Code))
	return c.JSON(http.StatusOK, sup)
}

// DeactivateSupplier soft-deletes a supplier; historical shipments
// referencing its code are untouched.
func (h *Handler) DeactivateSupplier(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("supplier", "deactivate")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	if err := h.store.DeactivateSupplier(c.Request().Context(), instID, id); err != nil {
		return storeError(c, log, err)
	}

	go h.updateSupplierGauge(instID)

	log.Info("Supplier deactivated", zap.Uint("id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "supplier deactivated"})
}

// DeleteSupplier hard-deletes a supplier when nothing references it
func (h *Handler) DeleteSupplier(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("supplier", "delete")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.store.DeleteSupplier(c.Request().Context(), instID, id); err != nil {
		return storeError(c, log, err)
	}

	go h.updateSupplierGauge(instID)

	log.Info("Supplier deleted", zap.Uint("id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "supplier deleted"})
}

func (h *Handler) updateSupplierGauge(institutionID uint) {
	suppliers, err := h.store.ListSuppliers(context.Background(), institutionID, true)
	if err != nil {
		return
	}
	prometheus.UpdateSuppliersPerInstitution(institutionID, len(suppliers))
}
