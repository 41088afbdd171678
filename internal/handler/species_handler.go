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

// CreateSpecies adds an entry to the shared global catalog (superuser only)
func (h *Handler) CreateSpecies(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("species", "create")

	var req struct {
		ScientificName string         `json:"scientific_name"`
		CommonName     string         `json:"common_name"`
		Family         string         `json:"family"`
		SubFamily      string         `json:"sub_family"`
		LifespanDays   int            `json:"lifespan_days"`
		Range          datatypes.JSON `json:"range"`
		HostPlant      string         `json:"host_plant"`
		Habitat        string         `json:"habitat"`
		FunFacts       string         `json:"fun_facts"`
		ImgWingsOpen   string         `json:"img_wings_open"`
		ImgWingsClosed string         `json:"img_wings_closed"`
		ExtraImg1      string         `json:"extra_img_1"`
		ExtraImg2      string         `json:"extra_img_2"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	sp := model.Species{
		ScientificName: req.ScientificName,
		CommonName:     req.CommonName,
		Family:         req.Family,
		SubFamily:      req.SubFamily,
		LifespanDays:   req.LifespanDays,
		Range:          req.Range,
		HostPlant:      req.HostPlant,
		Habitat:        req.Habitat,
		FunFacts:       req.FunFacts,
		ImgWingsOpen:   req.ImgWingsOpen,
		ImgWingsClosed: req.ImgWingsClosed,
		ExtraImg1:      req.ExtraImg1,
		ExtraImg2:      req.ExtraImg2,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.store.CreateSpecies(c.Request().Context(), &sp); err != nil {
		return storeError(c, log, err)
	}

	log.Info("Species added to catalog", zap.String("scientific_name", sp.ScientificName))
	return c.JSON(http.StatusCreated, sp)
}

// ListSpecies serves the catalog, optionally filtered by ?q=
func (h *Handler) ListSpecies(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("species", "list")

	species, err := h.store.SearchSpecies(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return storeError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"species": species})
}

// GetSpecies serves one catalog entry
func (h *Handler) GetSpecies(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("species", "get")

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	sp, err := h.store.GetSpecies(c.Request().Context(), id)
	if err != nil {
		return storeError(c, log, err)
	}
	return c.JSON(http.StatusOK, sp)
}

// DeleteSpecies removes a catalog entry (superuser only). Blocked while
// any institution still references the species.
func (h *Handler) DeleteSpecies(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("species", "delete")

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.store.DeleteSpecies(c.Request().Context(), id); err != nil {
		return storeError(c, log, err)
	}

	log.Info("Species removed from catalog", zap.Uint("id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "species deleted"})
}

// EnableSpecies links a catalog species to the session's institution
func (h *Handler) EnableSpecies(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("species_link", "create")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	var req struct {
		SpeciesID          uint   `json:"butterfly_species_id"`
		CommonNameOverride string `json:"common_name_override"`
		FunFactsOverride   string `json:"fun_facts_override"`
		HabitatOverride    string `json:"habitat_override"`
		HostPlantOverride  string `json:"host_plant_override"`
		ImageOverride      string `json:"image_override"`
		LifespanOverride   *int   `json:"lifespan_override"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	link := model.SpeciesInstitution{
		SpeciesID:          req.SpeciesID,
		InstitutionID:      instID,
		CommonNameOverride: req.CommonNameOverride,
		FunFactsOverride:   req.FunFactsOverride,
		HabitatOverride:    req.HabitatOverride,
		HostPlantOverride:  req.HostPlantOverride,
		ImageOverride:      req.ImageOverride,
		LifespanOverride:   req.LifespanOverride,
	}
	if err := h.store.EnableSpecies(c.Request().Context(), &link); err != nil {
		return storeError(c, log, err)
	}

	log.Info("Species enabled for institution", zap.Uint("species_id", req.SpeciesID))
	return c.JSON(http.StatusCreated, link)
}

// ListEnabledSpecies returns the institution's species links
func (h *Handler) ListEnabledSpecies(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("species_link", "list")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	links, err := h.store.ListEnabledSpecies(c.Request().Context(), instID)
	if err != nil {
		return storeError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"species": links})
}

// DisableSpecies unlinks a species from the session's institution
func (h *Handler) DisableSpecies(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("species_link", "delete")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	if err := h.store.DisableSpecies(c.Request().Context(), instID, id); err != nil {
		return storeError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "species disabled"})
}
