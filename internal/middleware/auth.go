package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Reiman-Gardens/flutr/internal/model"
	"github.com/Reiman-Gardens/flutr/pkg/jwtutil"
	"github.com/Reiman-Gardens/flutr/pkg/logger"
	"github.com/Reiman-Gardens/flutr/prometheus"
)

// SessionCookieName is the cookie browsers carry the session token in.
// API clients use the Authorization header instead.
const SessionCookieName = "flutr_session"

// ExtractToken pulls the session token from the Authorization header or
// the session cookie. Empty string when neither is present.
func ExtractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		if len(authHeader) > 7 && strings.EqualFold(authHeader[0:7], "Bearer ") {
			return authHeader[7:]
		}
		return authHeader
	}

	cookie, err := c.Cookie(SessionCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// Auth validates the session token and re-materializes its claim set
// into the request context. Role and institution come out of the token,
// so no credential-store round trip happens here.
func Auth(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)
			prometheus.AuthAttemptsCounter.Inc()

			tokenString := ExtractToken(c)
			if tokenString == "" {
				log.Warn("Missing session token")
				prometheus.AuthErrorsCounter.Inc()
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			claims, err := jwtUtil.ValidateToken(tokenString)
			if err != nil {
				log.Warn("Invalid or expired session token", zap.Error(err))
				prometheus.AuthErrorsCounter.Inc()
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			prometheus.AuthSuccessCounter.Inc()

			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)
			c.Set("role", claims.Role)
			c.Set("institution_id", claims.InstitutionID)

			log = log.With(
				zap.Uint("user_id", claims.UserID),
				zap.Uint("institution_id", claims.InstitutionID),
				zap.String("role", claims.Role),
			)
			c.Set("logger", log)

			return next(c)
		}
	}
}

// RequireInstitution binds institution-scoped routes to the session's
// institution: the :institution slug in the path must resolve to the
// claim's institution. Superusers pass for any slug. This is the
// deeper tenant-match layer the route access gate leaves out.
func RequireInstitution(resolve func(c echo.Context, slug string) (uint, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			role, _ := c.Get("role").(string)
			if role == model.RoleSuperuser {
				return next(c)
			}

			institutionID, ok := c.Get("institution_id").(uint)
			if !ok || institutionID == 0 {
				log.Warn("Missing institution context")
				prometheus.TenantContextMissingCounter.Inc()
				return c.JSON(http.StatusForbidden, echo.Map{"error": "institution context required"})
			}

			slug := c.Param("institution")
			pathInstitution, err := resolve(c, slug)
			if err != nil {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "institution not found"})
			}

			if pathInstitution != institutionID {
				log.Warn("Cross-institution page access rejected",
					zap.String("slug", slug),
					zap.Uint("session_institution", institutionID))
				prometheus.TenantMismatchCounter.Inc()
				return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
			}

			return next(c)
		}
	}
}

// RequireRole limits a route to the given roles
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			logger.FromEcho(c).Warn("Insufficient role", zap.String("role", role))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
		}
	}
}
