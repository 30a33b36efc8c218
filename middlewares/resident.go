// SPDX-License-Identifier: GPL-3.0-only

package middlewares

import (
	"blockboard-server/residentauth"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// VerifyResidentMiddleware authenticates the bearer token as a
// resident session. A successful validation also bumps the session's
// LastSeenAt; that side effect lives in the manager, not here.
func VerifyResidentMiddleware(sessions *residentauth.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			logger := c.Logger()

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				logger.Error("Authorization header missing or invalid.")
				return &echo.HTTPError{
					Code:    http.StatusUnauthorized,
					Message: "Bearer token is required",
				}
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			claims := sessions.Validate(token)
			if claims == nil {
				logger.Error("Resident session rejected.")
				return &echo.HTTPError{
					Code:    http.StatusUnauthorized,
					Message: "Invalid or expired session token",
				}
			}

			c.Set("resident_claims", claims)
			c.Set("resident_token", token)
			return next(c)
		}
	}
}
