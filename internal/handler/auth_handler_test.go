package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Reiman-Gardens/flutr/internal/handler"
	"github.com/Reiman-Gardens/flutr/internal/model"
	"github.com/Reiman-Gardens/flutr/internal/store"
	"github.com/Reiman-Gardens/flutr/pkg/config"
	"github.com/Reiman-Gardens/flutr/pkg/jwtutil"
)

func setupHandler(t *testing.T) (*handler.Handler, *store.Store, *jwtutil.JWTUtil) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	cfg := &config.Config{
		ServiceName: "flutr-test",
		JWT: config.JWTConfig{
			SigningKey:      "test-signing-key",
			ExpirationHours: 1,
		},
	}
	st := store.New(db)
	jwtUtil := jwtutil.NewJWTUtil(&cfg.JWT)
	return handler.New(st, jwtUtil, cfg), st, jwtUtil
}

func seedLoginUser(t *testing.T, st *store.Store, email, password string) *model.User {
	t.Helper()
	ctx := context.Background()

	inst := model.Institution{Name: "Iowa Butterfly House", Slug: "iowa-" + email, EmailAddress: "contact-" + email}
	require.NoError(t, st.CreateInstitution(ctx, &inst))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := model.User{
		Name:          "Keeper",
		Email:         email,
		PasswordHash:  string(hash),
		InstitutionID: inst.ID,
		Role:          model.RoleOrgAdmin,
	}
	require.NoError(t, st.CreateUser(ctx, &user))
	return &user
}

func postLogin(t *testing.T, h *handler.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Login(e.NewContext(req, rec)))
	return rec
}

func TestLoginIssuesTokenWithSessionClaims(t *testing.T) {
	h, st, jwtUtil := setupHandler(t)
	user := seedLoginUser(t, st, "keeper@iowa.example", "hunter2hunter2")

	rec := postLogin(t, h, `{"email":"keeper@iowa.example","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID            uint   `json:"id"`
			Email         string `json:"email"`
			Role          string `json:"role"`
			InstitutionID uint   `json:"institution_id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	claims, err := jwtUtil.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, model.RoleOrgAdmin, claims.Role)
	assert.Equal(t, user.InstitutionID, claims.InstitutionID)
	assert.NotEmpty(t, claims.Subject)
}

func TestLoginFailureIsOpaque(t *testing.T) {
	h, st, _ := setupHandler(t)
	seedLoginUser(t, st, "keeper@iowa.example", "hunter2hunter2")

	unknownEmail := postLogin(t, h, `{"email":"nobody@iowa.example","password":"hunter2hunter2"}`)
	wrongPassword := postLogin(t, h, `{"email":"keeper@iowa.example","password":"wrong-password"}`)

	// An unknown email and a bad password must be indistinguishable.
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, unknownEmail.Body.String(), wrongPassword.Body.String())
}

func TestLoginRequiresEmailAndPassword(t *testing.T) {
	h, _, _ := setupHandler(t)

	for _, body := range []string{
		`{}`,
		`{"email":"keeper@iowa.example"}`,
		`{"password":"hunter2hunter2"}`,
	} {
		rec := postLogin(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestCreateUserDefaultsToEmployeeRole(t *testing.T) {
	h, st, _ := setupHandler(t)
	admin := seedLoginUser(t, st, "admin@iowa.example", "hunter2hunter2")

	e := echo.New()
	body := `{"name":"New Hire","email":"hire@iowa.example","password":"hunter2hunter2"}`
	req := httptest.NewRequest(http.MethodPost, "/iowa/admin/users", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("institution_id", admin.InstitutionID)

	require.NoError(t, h.CreateUser(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Role string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.RoleOrgEmployee, resp.Role)
}
