// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"blockboard-server/commons"
	"blockboard-server/crypto"
	"blockboard-server/db"
	"blockboard-server/models"
	"blockboard-server/secretpolicy"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nyaruka/phonenumbers"
)

// requireGlobalAdmin rejects property-scoped sessions. Tenant-level
// administration (creating properties, listing all of them) is only
// for holders of the global secret.
func requireGlobalAdmin(c echo.Context) *echo.HTTPError {
	token, _ := c.Get("admin_token").(string)
	if _, scoped := AdminSessions.BoundProperty(token); scoped {
		return &echo.HTTPError{
			Code:    http.StatusForbidden,
			Message: "This operation requires a global admin session",
		}
	}
	return nil
}

// CreatePropertyHandler registers a new tenant. The URL hash is
// generated here and never changes; it is the unguessable address of
// the property's public board.
func CreatePropertyHandler(c echo.Context) error {
	logger := c.Logger()

	if httpErr := requireGlobalAdmin(c); httpErr != nil {
		return httpErr
	}

	req := CreatePropertyRequest{}
	if err := c.Bind(&req); err != nil || req.Slug == "" || req.Name == "" {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "slug and name are required",
		}
	}

	contactPhone, httpErr := normalizePhone(req.ContactPhone)
	if httpErr != nil {
		return httpErr
	}

	urlHash, err := crypto.GenerateURLHash()
	if err != nil {
		logger.Errorf("Failed to generate property URL hash: %v", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Unable to create property",
		}
	}

	property := models.Property{
		Slug:                req.Slug,
		URLHash:             urlHash,
		Name:                req.Name,
		ContactPhone:        contactPhone,
		ContactsRequireAuth: req.ContactsRequireAuth,
	}
	if err := db.Conn.Create(&property).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return &echo.HTTPError{
				Code:    http.StatusConflict,
				Message: "A property with this slug already exists",
			}
		}
		logger.Errorf("Failed to create property: %v", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Unable to create property",
		}
	}

	return c.JSON(http.StatusCreated, propertyResponse(&property))
}

// ListPropertiesHandler returns every tenant.
func ListPropertiesHandler(c echo.Context) error {
	if httpErr := requireGlobalAdmin(c); httpErr != nil {
		return httpErr
	}

	var properties []models.Property
	if err := db.Conn.Order("id").Find(&properties).Error; err != nil {
		c.Logger().Errorf("Failed to list properties: %v", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Unable to list properties",
		}
	}
	out := make([]PropertyResponse, 0, len(properties))
	for i := range properties {
		out = append(out, propertyResponse(&properties[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// SetPropertyPasswordHandler rotates a property's admin secret. The
// middleware already checked the session against :property_id.
func SetPropertyPasswordHandler(c echo.Context) error {
	logger := c.Logger()
	propertyID := c.Get("property_id").(uint)

	req := SetPasswordRequest{}
	if err := c.Bind(&req); err != nil {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request payload",
		}
	}
	if err := secretpolicy.ValidateSecret(c.Request().Context(), req.Password); err != nil {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		}
	}

	hash, err := Crypto.HashSecret(req.Password)
	if err != nil {
		logger.Errorf("Failed to hash admin password: %v", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Unable to set password",
		}
	}
	err = db.Conn.Model(&models.Property{}).
		Where("id = ?", propertyID).
		Update("admin_password_hash", hash).Error
	if err != nil {
		logger.Errorf("Failed to store admin password hash: %v", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Unable to set password",
		}
	}

	return c.NoContent(http.StatusNoContent)
}

func normalizePhone(raw *string) (*string, *echo.HTTPError) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	region := commons.GetEnv("DEFAULT_PHONE_REGION", "US")
	parsed, err := phonenumbers.Parse(*raw, region)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return nil, &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "contact_phone is not a valid phone number",
		}
	}
	formatted := phonenumbers.Format(parsed, phonenumbers.E164)
	return &formatted, nil
}

func propertyResponse(p *models.Property) PropertyResponse {
	return PropertyResponse{
		ID:                  p.ID,
		Slug:                p.Slug,
		URLHash:             p.URLHash,
		Name:                p.Name,
		ContactPhone:        p.ContactPhone,
		ContactsRequireAuth: p.ContactsRequireAuth,
	}
}
