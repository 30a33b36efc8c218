// SPDX-License-Identifier: GPL-3.0-only

package middlewares

import (
	"blockboard-server/adminauth"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// VerifyAdminMiddleware authenticates the bearer token as an admin
// session. Routes that carry a :property_id param are validated
// against that property; the response never says whether the token was
// unknown or merely bound to a different property.
func VerifyAdminMiddleware(sessions *adminauth.Manager) echo.MiddlewareFunc {
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

			if param := c.Param("property_id"); param != "" {
				propertyID, err := strconv.ParseUint(param, 10, 32)
				if err != nil || !sessions.ValidateForProperty(token, uint(propertyID)) {
					logger.Error("Admin session rejected for requested property.")
					return adminAuthFailed()
				}
				c.Set("property_id", uint(propertyID))
			} else if !sessions.Validate(token) {
				logger.Error("Admin session rejected.")
				return adminAuthFailed()
			}

			c.Set("admin_token", token)
			return next(c)
		}
	}
}

func adminAuthFailed() *echo.HTTPError {
	return &echo.HTTPError{
		Code:    http.StatusUnauthorized,
		Message: "Invalid or expired session token, please login again",
	}
}
