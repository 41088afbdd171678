package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/Reiman-Gardens/flutr/internal/model"
	"github.com/Reiman-Gardens/flutr/pkg/logger"
	"github.com/Reiman-Gardens/flutr/prometheus"
)

type institutionRequest struct {
	Slug             string         `json:"slug"`
	Name             string         `json:"name"`
	StreetAddress    string         `json:"street_address"`
	ExtendedAddress  string         `json:"extended_address"`
	City             string         `json:"city"`
	StateProvince    string         `json:"state_province"`
	PostalCode       string         `json:"postal_code"`
	TimeZone         string         `json:"time_zone"`
	Country          string         `json:"country"`
	PhoneNumber      string         `json:"phone_number"`
	EmailAddress     string         `json:"email_address"`
	IABESMember      bool           `json:"iabes_member"`
	ThemeColors      datatypes.JSON `json:"theme_colors"`
	WebsiteURL       string         `json:"website_url"`
	FacilityImageURL string         `json:"facility_image_url"`
	LogoURL          string         `json:"logo_url"`
	Description      string         `json:"description"`
	SocialLinks      datatypes.JSON `json:"social_links"`
	StatsActive      bool           `json:"stats_active"`
}

func (r *institutionRequest) toModel() model.Institution {
	return model.Institution{
		Slug:             r.Slug,
		Name:             r.Name,
		StreetAddress:    r.StreetAddress,
		ExtendedAddress:  r.ExtendedAddress,
		City:             r.City,
		StateProvince:    r.StateProvince,
		PostalCode:       r.PostalCode,
		TimeZone:         r.TimeZone,
		Country:          r.Country,
		PhoneNumber:      r.PhoneNumber,
		EmailAddress:     r.EmailAddress,
		IABESMember:      r.IABESMember,
		ThemeColors:      r.ThemeColors,
		WebsiteURL:       r.WebsiteURL,
		FacilityImageURL: r.FacilityImageURL,
		LogoURL:          r.LogoURL,
		Description:      r.Description,
		SocialLinks:      r.SocialLinks,
		StatsActive:      r.StatsActive,
	}
}

// CreateInstitution provisions a new tenant (superuser only)
func (h *Handler) CreateInstitution(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("institution", "create")

	var req institutionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	inst := req.toModel()
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.store.CreateInstitution(c.Request().Context(), &inst); err != nil {
		return storeError(c, log, err)
	}

	log.Info("Institution created", zap.String("slug", inst.Slug), zap.Uint("id", inst.ID))
	return c.JSON(http.StatusCreated, inst)
}

// GetInstitutionBySlug serves the public institution profile
func (h *Handler) GetInstitutionBySlug(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("institution", "get")

	inst, err := h.store.GetInstitutionBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return storeError(c, log, err)
	}
	return c.JSON(http.StatusOK, inst)
}

// ListInstitutions lists all institutions (superuser only)
func (h *Handler) ListInstitutions(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("institution", "list")

	insts, err := h.store.ListInstitutions(c.Request().Context())
	if err != nil {
		return storeError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"institutions": insts})
}

// UpdateInstitution saves profile changes for the institution named in
// the path (superuser only)
func (h *Handler) UpdateInstitution(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("institution", "update")

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	existing, err := h.store.GetInstitution(c.Request().Context(), id)
	if err != nil {
		return storeError(c, log, err)
	}

	var req institutionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updated := req.toModel()
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.store.UpdateInstitution(c.Request().Context(), &updated); err != nil {
		return storeError(c, log, err)
	}

	log.Info("Institution updated", zap.Uint("id", updated.ID))
	return c.JSON(http.StatusOK, updated)
}

// DeleteInstitution removes a tenant and everything it owns (superuser only)
func (h *Handler) DeleteInstitution(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("institution", "delete")

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.store.DeleteInstitution(c.Request().Context(), id); err != nil {
		return storeError(c, log, err)
	}

	log.Info("Institution deleted with all owned records", zap.Uint("id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "institution deleted"})
}
