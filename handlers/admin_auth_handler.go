// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"blockboard-server/events"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// AdminLoginHandler exchanges a property admin password for a session
// token. A wrong password and an unknown property get the same 401;
// nothing here is worth enumerating.
func AdminLoginHandler(c echo.Context) error {
	logger := c.Logger()

	req := AdminLoginRequest{}
	if err := c.Bind(&req); err != nil {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request payload",
		}
	}

	token, err := AdminSessions.CreateSession(req.Password, req.PropertyID)
	if err != nil {
		logger.Errorf("Failed to create admin session: %v", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Unable to create session",
		}
	}
	if token == "" {
		logger.Error("Admin login rejected.")
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid credentials",
		}
	}

	var propertyID uint
	if req.PropertyID != nil {
		propertyID = *req.PropertyID
	}
	Events.Publish(events.AdminLogin, propertyID, 0)

	return c.JSON(http.StatusOK, AdminLoginResponse{
		SessionToken: token,
		PropertyID:   req.PropertyID,
	})
}

// AdminLogoutHandler revokes the presented session. Revoking a token
// that is already gone succeeds; logout is idempotent.
func AdminLogoutHandler(c echo.Context) error {
	logger := c.Logger()

	token, _ := c.Get("admin_token").(string)
	if token == "" {
		// The middleware has run, so this only happens on a miswired
		// route.
		authHeader := c.Request().Header.Get("Authorization")
		token = strings.TrimPrefix(authHeader, "Bearer ")
	}

	propertyID, _ := AdminSessions.BoundProperty(token)
	if err := AdminSessions.Revoke(token); err != nil {
		logger.Errorf("Failed to revoke admin session: %v", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Unable to log out",
		}
	}
	Events.Publish(events.AdminLogout, propertyID, 0)

	return c.NoContent(http.StatusNoContent)
}
