package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Reiman-Gardens/flutr/internal/store"
	"github.com/Reiman-Gardens/flutr/pkg/config"
	"github.com/Reiman-Gardens/flutr/pkg/jwtutil"
	"github.com/Reiman-Gardens/flutr/prometheus"
)

// Handler bundles the dependencies echo handlers need. Built once in
// main and shared by every request.
type Handler struct {
	store *store.Store
	jwt   *jwtutil.JWTUtil
	cfg   *config.Config
}

// New creates a Handler
func New(s *store.Store, jwt *jwtutil.JWTUtil, cfg *config.Config) *Handler {
	return &Handler{store: s, jwt: jwt, cfg: cfg}
}

// storeError maps store sentinel errors to HTTP responses. Every error
// surfaces to the caller; none are swallowed or retried here.
func storeError(c echo.Context, log *zap.Logger, err error) error {
	switch {
	case errors.Is(err, store.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid input"})
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, store.ErrTenantMismatch):
		prometheus.TenantMismatchCounter.Inc()
		return c.JSON(http.StatusForbidden, echo.Map{"error": "reference crosses institution boundary"})
	case errors.Is(err, store.ErrDeleteBlocked):
		return c.JSON(http.StatusConflict, echo.Map{"error": "delete blocked: dependent records exist"})
	case errors.Is(err, store.ErrConflict):
		// Surface which uniqueness rule fired.
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		log.Error("Unexpected store error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// institutionID extracts the session's institution from the context
func institutionID(c echo.Context) (uint, bool) {
	id, ok := c.Get("institution_id").(uint)
	return id, ok && id != 0
}

// parseID reads a numeric path parameter
func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
