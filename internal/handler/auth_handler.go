package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Reiman-Gardens/flutr/internal/model"
	"github.com/Reiman-Gardens/flutr/pkg/logger"
	"github.com/Reiman-Gardens/flutr/prometheus"
)

// Login verifies a credential pair and issues a session token carrying
// {subject, role, institution}. Missing fields are a validation error;
// an unknown email and a wrong password both answer the same generic
// rejection so callers cannot enumerate users.
func (h *Handler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	user, err := h.store.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		log.Info("Login rejected", zap.String("email", req.Email))
		prometheus.AuthErrorsCounter.Inc()
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Info("Login rejected", zap.String("email", req.Email))
		prometheus.AuthErrorsCounter.Inc()
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Email, user.Role, user.InstitutionID)
	if err != nil {
		log.Error("Failed to generate session token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.Uint("institution_id", user.InstitutionID),
		zap.String("role", user.Role))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": echo.Map{
			"id":             user.ID,
			"name":           user.Name,
			"email":          user.Email,
			"role":           user.Role,
			"institution_id": user.InstitutionID,
		},
	})
}

// CreateUser adds a staff account under the session's institution.
// Restricted to admin roles by route middleware.
func (h *Handler) CreateUser(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("user", "create")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and password are required"})
	}
	if req.Role == "" {
		req.Role = model.RoleOrgEmployee
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := model.User{
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  string(hash),
		InstitutionID: instID,
		Role:          req.Role,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.store.CreateUser(c.Request().Context(), &user); err != nil {
		return storeError(c, log, err)
	}

	log.Info("User created", zap.String("email", user.Email), zap.String("role", user.Role))
	return c.JSON(http.StatusCreated, echo.Map{
		"id":             user.ID,
		"name":           user.Name,
		"email":          user.Email,
		"role":           user.Role,
		"institution_id": user.InstitutionID,
	})
}

// ListUsers returns the institution's staff accounts
func (h *Handler) ListUsers(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("user", "list")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	users, err := h.store.ListUsers(c.Request().Context(), instID)
	if err != nil {
		return storeError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// DeleteUser removes a staff account from the institution
func (h *Handler) DeleteUser(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("user", "delete")

	instID, ok := institutionID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
	}

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	if err := h.store.DeleteUser(c.Request().Context(), instID, id); err != nil {
		return storeError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

// Me returns the claim set the session carries
func (h *Handler) Me(c echo.Context) error {
	userID, _ := c.Get("user_id").(uint)
	email, _ := c.Get("email").(string)
	role, _ := c.Get("role").(string)
	instID, _ := c.Get("institution_id").(uint)

	return c.JSON(http.StatusOK, echo.Map{
		"id":             userID,
		"email":          email,
		"role":           role,
		"institution_id": instID,
	})
}
