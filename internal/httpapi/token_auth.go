package httpapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"horse.fit/mtbridge/internal/auth"
)

const bearerPrefix = "Bearer "

// requireToken guards the API group with a bearer token checked against
// the configured bcrypt hash. An empty hash leaves the API open, which is
// the expected mode when the bridge runs as a local sidecar.
func (s *Server) requireToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if s.opts.APITokenHash == "" {
				return next(c)
			}

			header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			if !strings.HasPrefix(header, bearerPrefix) {
				return unauthorizedResponse(c)
			}

			token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
			if !auth.VerifyToken(token, s.opts.APITokenHash) {
				return unauthorizedResponse(c)
			}

			return next(c)
		}
	}
}
