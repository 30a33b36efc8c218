// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"blockboard-server/db"
	"blockboard-server/events"
	"blockboard-server/models"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// CreateResidentSessionHandler converts a scanned access token into a
// resident session. The token must validate against the property the
// board URL names; a token for another building fails exactly like a
// made-up one.
func CreateResidentSessionHandler(c echo.Context) error {
	logger := c.Logger()

	property := propertyByHash(c.Param("hash"))
	if property == nil {
		return residentAuthFailed()
	}

	req := CreateResidentSessionRequest{}
	if err := c.Bind(&req); err != nil {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request payload",
		}
	}

	grant := AccessTokens.Validate(req.Auth, property.ID)
	if grant == nil {
		logger.Error("Access token rejected for board.")
		return residentAuthFailed()
	}
	Events.Publish(events.TokenScan, grant.PropertyID, grant.TokenID)

	session, err := ResidentSessions.Create(grant.PropertyID, grant.TokenID)
	if err != nil {
		logger.Errorf("Failed to create resident session: %v", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Unable to create session",
		}
	}
	Events.Publish(events.SessionCreated, session.PropertyID, session.ID)

	return c.JSON(http.StatusCreated, ResidentSessionResponse{
		SessionToken: session.Token,
		ExpiresAt:    session.ExpiresAt,
	})
}

// BoardHandler serves the public board info for a property. Contact
// details are withheld when the property gates them and the request
// carries no valid resident session for that property.
func BoardHandler(c echo.Context) error {
	property := propertyByHash(c.Param("hash"))
	if property == nil {
		return &echo.HTTPError{
			Code:    http.StatusNotFound,
			Message: "Not found",
		}
	}

	resp := BoardResponse{Name: property.Name, Slug: property.Slug}
	if !property.ContactsRequireAuth || residentOnProperty(c, property.ID) {
		resp.ContactPhone = property.ContactPhone
	}
	return c.JSON(http.StatusOK, resp)
}

// InvalidateResidentSessionHandler is resident logout: the session row
// is deleted outright, there is no deactivated state to park it in.
func InvalidateResidentSessionHandler(c echo.Context) error {
	logger := c.Logger()

	token, _ := c.Get("resident_token").(string)
	if err := ResidentSessions.Invalidate(token); err != nil {
		logger.Errorf("Failed to invalidate resident session: %v", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Unable to log out",
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func propertyByHash(hash string) *models.Property {
	if hash == "" {
		return nil
	}
	var property models.Property
	if err := db.Conn.Where("url_hash = ?", hash).First(&property).Error; err != nil {
		return nil
	}
	return &property
}

// residentOnProperty reports whether the request carries a resident
// session bound to propertyID. Absent or foreign sessions read the
// same: no access.
func residentOnProperty(c echo.Context, propertyID uint) bool {
	authHeader := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return false
	}
	claims := ResidentSessions.Validate(strings.TrimPrefix(authHeader, "Bearer "))
	return claims != nil && claims.PropertyID == propertyID
}

func residentAuthFailed() *echo.HTTPError {
	return &echo.HTTPError{
		Code:    http.StatusUnauthorized,
		Message: "Invalid access token",
	}
}
