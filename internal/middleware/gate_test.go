package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Reiman-Gardens/flutr/internal/middleware"
	"github.com/Reiman-Gardens/flutr/pkg/config"
	"github.com/Reiman-Gardens/flutr/pkg/jwtutil"
)

func testGateConfig() *config.GateConfig {
	return &config.GateConfig{
		AdminPattern: "/:institution/(admin)/:path*",
		LoginPath:    "/login",
	}
}

func testJWT() *jwtutil.JWTUtil {
	return jwtutil.NewJWTUtil(&config.JWTConfig{
		SigningKey:      "test-signing-key",
		ExpirationHours: 1,
	})
}

func TestParsePatternRejectsBadTemplates(t *testing.T) {
	cases := []string{
		"no-leading-slash",
		"/:path*/more",
		"/a//b",
	}
	for _, raw := range cases {
		_, err := middleware.ParsePattern(raw)
		assert.Error(t, err, "pattern %q should be rejected", raw)
	}
}

func TestPatternMatch(t *testing.T) {
	pattern, err := middleware.ParsePattern("/:institution/(admin)/:path*")
	require.NoError(t, err)

	cases := []struct {
		path  string
		match bool
	}{
		{"/iowa/admin", true},
		{"/iowa/admin/", true},
		{"/iowa/admin/news", true},
		{"/iowa/admin/shipments/42/items", true},
		{"/iowa/news", false},
		{"/iowa", false},
		{"/login", false},
		{"/", false},
		{"/health", false},
		{"/api/suppliers", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.match, pattern.Match(tc.path), "path %q", tc.path)
	}
}

func TestPatternMatchLiterals(t *testing.T) {
	pattern, err := middleware.ParsePattern("/admin/settings")
	require.NoError(t, err)

	assert.True(t, pattern.Match("/admin/settings"))
	assert.False(t, pattern.Match("/admin/settings/more"))
	assert.False(t, pattern.Match("/admin"))
}

func gateEcho(t *testing.T) *echo.Echo {
	t.Helper()
	gate, err := middleware.Gate(testGateConfig(), testJWT())
	require.NoError(t, err)

	e := echo.New()
	e.Use(gate)
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}
	e.GET("/login", handler)
	e.GET("/health", handler)
	e.GET("/:institution/admin", handler)
	e.GET("/:institution/admin/:page", handler)
	return e
}

func TestGateIgnoresUngatedPaths(t *testing.T) {
	e := gateEcho(t)

	for _, path := range []string{"/login", "/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "path %q", path)
	}
}

func TestGateRedirectsBrowsersToLogin(t *testing.T) {
	e := gateEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/iowa/admin/news", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestGateRejectsAPIClientsWith401(t *testing.T) {
	e := gateEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/iowa/admin/news", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, rec.Body.String())
}

func TestGateAllowsValidSession(t *testing.T) {
	e := gateEcho(t)
	jwtUtil := testJWT()
	token, err := jwtUtil.GenerateToken(7, "keeper@iowa.example", "org_admin", 3)
	require.NoError(t, err)

	// Bearer header
	req := httptest.NewRequest(http.MethodGet, "/iowa/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Session cookie
	req = httptest.NewRequest(http.MethodGet, "/iowa/admin", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateRejectsMalformedToken(t *testing.T) {
	e := gateEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/iowa/admin", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGateRejectsTokenSignedWithOtherKey(t *testing.T) {
	e := gateEcho(t)

	other := jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "other-key", ExpirationHours: 1})
	token, err := other.GenerateToken(7, "keeper@iowa.example", "org_admin", 3)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/iowa/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
