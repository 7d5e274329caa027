// Package middleware provides shared request processing for handlers.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/roadprice/valuation/internal/auth"
	"github.com/roadprice/valuation/internal/handler"
)

// Access returns an echo middleware enforcing the given access policy
// through the policy engine. Public routes pass straight through; for
// role-gated routes the resolved account is attached to the request
// context under handler.AccountContextKey so downstream handlers can
// filter by ownership.
func Access(engine *auth.Engine, policy auth.Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			acct, err := engine.Authorize(c.Request().Context(), policy, bearerToken(c))
			switch {
			case errors.Is(err, auth.ErrUnauthorized):
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			case errors.Is(err, auth.ErrForbidden):
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			case err != nil:
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authorization failed"})
			}
			if acct != nil {
				c.Set(handler.AccountContextKey, acct)
			}
			return next(c)
		}
	}
}

// bearerToken extracts the token from `Authorization: Bearer <token>`.
// An absent or differently-shaped header yields "".
func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}
