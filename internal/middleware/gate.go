package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Reiman-Gardens/flutr/pkg/config"
	"github.com/Reiman-Gardens/flutr/pkg/jwtutil"
	"github.com/Reiman-Gardens/flutr/pkg/logger"
	"github.com/Reiman-Gardens/flutr/prometheus"
)

const (
	segLiteral = iota
	segParam
	segGroup
	segWildcard
)

type segment struct {
	kind  int
	value string
}

// PathPattern is a compiled route template. The syntax covers what the
// gate configuration needs: literal segments, ":name" single-segment
// parameters, "(name)" grouped literal segments, and one trailing
// ":name*" wildcard matching zero or more segments.
type PathPattern struct {
	raw      string
	segments []segment
}

// ParsePattern compiles a path template
func ParsePattern(raw string) (*PathPattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return nil, fmt.Errorf("pattern must start with /: %q", raw)
	}

	p := &PathPattern{raw: raw}
	parts := strings.Split(strings.Trim(raw, "/"), "/")
	for i, part := range parts {
		switch {
		case part == "":
			return nil, fmt.Errorf("empty segment in pattern %q", raw)
		case strings.HasPrefix(part, ":") && strings.HasSuffix(part, "*"):
			if i != len(parts)-1 {
				return nil, fmt.Errorf("wildcard must be the last segment in %q", raw)
			}
			p.segments = append(p.segments, segment{kind: segWildcard, value: strings.TrimSuffix(part[1:], "*")})
		case strings.HasPrefix(part, ":"):
			p.segments = append(p.segments, segment{kind: segParam, value: part[1:]})
		case strings.HasPrefix(part, "(") && strings.HasSuffix(part, ")"):
			p.segments = append(p.segments, segment{kind: segGroup, value: part[1 : len(part)-1]})
		default:
			p.segments = append(p.segments, segment{kind: segLiteral, value: part})
		}
	}
	return p, nil
}

// String returns the original template
func (p *PathPattern) String() string {
	return p.raw
}

// Match reports whether a request path matches the template
func (p *PathPattern) Match(path string) bool {
	trimmed := strings.Trim(path, "/")
	var parts []string
	if trimmed != "" {
		parts = strings.Split(trimmed, "/")
	}

	i := 0
	for _, seg := range p.segments {
		if seg.kind == segWildcard {
			// Zero or more trailing segments.
			return true
		}
		if i >= len(parts) {
			return false
		}
		switch seg.kind {
		case segLiteral, segGroup:
			if parts[i] != seg.value {
				return false
			}
		case segParam:
			// any single segment
		}
		i++
	}
	return i == len(parts)
}

// Gate is the route access gate: a stateless predicate evaluated once
// per request. Paths matching the administrative pattern require a
// present, valid session; everything else passes through. The gate
// checks presence only. Whether the session's institution matches the
// path's slug is RequireInstitution's job further in.
func Gate(cfg *config.GateConfig, jwtUtil *jwtutil.JWTUtil) (echo.MiddlewareFunc, error) {
	pattern, err := ParsePattern(cfg.AdminPattern)
	if err != nil {
		return nil, err
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !pattern.Match(c.Request().URL.Path) {
				return next(c)
			}

			log := logger.FromEcho(c)

			tokenString := ExtractToken(c)
			if tokenString != "" {
				if _, err := jwtUtil.ValidateToken(tokenString); err == nil {
					return next(c)
				}
			}

			prometheus.GateDeniedCounter.Inc()
			log.Info("Unauthenticated request to gated path",
				zap.String("path", c.Request().URL.Path))

			// Browsers get sent to the login page; API clients get 401.
			// Never a server error.
			if strings.Contains(c.Request().Header.Get("Accept"), "text/html") {
				return c.Redirect(http.StatusFound, cfg.LoginPath)
			}
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
	}, nil
}
