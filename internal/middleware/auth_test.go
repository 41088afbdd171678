package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Reiman-Gardens/flutr/internal/middleware"
	"github.com/Reiman-Gardens/flutr/internal/model"
)

func TestAuthPropagatesClaims(t *testing.T) {
	jwtUtil := testJWT()
	token, err := jwtUtil.GenerateToken(7, "keeper@iowa.example", model.RoleOrgAdmin, 3)
	require.NoError(t, err)

	e := echo.New()
	e.GET("/whoami", func(c echo.Context) error {
		assert.Equal(t, uint(7), c.Get("user_id"))
		assert.Equal(t, "keeper@iowa.example", c.Get("email"))
		assert.Equal(t, model.RoleOrgAdmin, c.Get("role"))
		assert.Equal(t, uint(3), c.Get("institution_id"))
		return c.NoContent(http.StatusOK)
	}, middleware.Auth(jwtUtil))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	e := echo.New()
	e.GET("/whoami", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, middleware.Auth(testJWT()))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func requireInstitutionEcho() (*echo.Echo, *httptest.ResponseRecorder) {
	resolve := func(c echo.Context, slug string) (uint, error) {
		switch slug {
		case "iowa":
			return 3, nil
		case "omaha":
			return 4, nil
		}
		return 0, errors.New("not found")
	}

	e := echo.New()
	e.GET("/:institution/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, middleware.Auth(testJWT()), middleware.RequireInstitution(resolve))

	return e, httptest.NewRecorder()
}

func TestRequireInstitutionAllowsOwnSlug(t *testing.T) {
	token, err := testJWT().GenerateToken(7, "keeper@iowa.example", model.RoleOrgEmployee, 3)
	require.NoError(t, err)

	e, rec := requireInstitutionEcho()
	req := httptest.NewRequest(http.MethodGet, "/iowa/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireInstitutionRejectsForeignSlug(t *testing.T) {
	token, err := testJWT().GenerateToken(7, "keeper@iowa.example", model.RoleOrgAdmin, 3)
	require.NoError(t, err)

	e, rec := requireInstitutionEcho()
	req := httptest.NewRequest(http.MethodGet, "/omaha/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireInstitutionUnknownSlugIs404(t *testing.T) {
	token, err := testJWT().GenerateToken(7, "keeper@iowa.example", model.RoleOrgAdmin, 3)
	require.NoError(t, err)

	e, rec := requireInstitutionEcho()
	req := httptest.NewRequest(http.MethodGet, "/atlantis/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequireInstitutionSuperuserBypass(t *testing.T) {
	token, err := testJWT().GenerateToken(1, "root@flutr.example", model.RoleSuperuser, 0)
	require.NoError(t, err)

	e, rec := requireInstitutionEcho()
	req := httptest.NewRequest(http.MethodGet, "/omaha/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	e.GET("/restricted", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, middleware.Auth(testJWT()), middleware.RequireRole(model.RoleOrgAdmin, model.RoleSuperuser))

	adminToken, err := testJWT().GenerateToken(7, "admin@iowa.example", model.RoleOrgAdmin, 3)
	require.NoError(t, err)
	employeeToken, err := testJWT().GenerateToken(8, "staff@iowa.example", model.RoleOrgEmployee, 3)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/restricted", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/restricted", nil)
	req.Header.Set("Authorization", "Bearer "+employeeToken)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
