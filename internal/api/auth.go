package api

import (
	"github.com/labstack/echo/v4"
	"github.com/maxaizer/realjobs/internal/auth"
	"github.com/maxaizer/realjobs/internal/services"
	"github.com/pkg/errors"
	"strings"
)

const bearerPrefix = "Bearer "

// requireAuth resolves the bearer token to a user and stores it in the
// request context.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(header, bearerPrefix) {
			return services.ErrUnauthorized
		}

		userID, err := s.deps.Tokens.Parse(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			return err
		}

		ctx := c.Request().Context()
		user, err := s.deps.Users.Get(ctx, userID)
		if errors.Is(err, services.ErrNotFound) {
			return services.ErrUnauthorized
		}
		if err != nil {
			return err
		}

		c.SetRequest(c.Request().WithContext(auth.WithUser(ctx, user)))
		return next(c)
	}
}
