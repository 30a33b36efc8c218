// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"net/http"
	"strconv"

	"blockboard-server/models"

	"github.com/labstack/echo/v4"
)

// IssueAccessTokenHandler mints a QR access token for the property.
// The raw token string appears in this response and nowhere else
// afterwards; the admin is expected to bake it into signage.
func IssueAccessTokenHandler(c echo.Context) error {
	logger := c.Logger()
	propertyID := c.Get("property_id").(uint)

	req := IssueAccessTokenRequest{}
	if err := c.Bind(&req); err != nil || req.Label == "" {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "label is required",
		}
	}

	token, err := AccessTokens.Issue(propertyID, req.Label, req.ExpiresAt)
	if err != nil {
		logger.Errorf("Failed to issue access token: %v", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Unable to issue access token",
		}
	}

	return c.JSON(http.StatusCreated, AccessTokenResponse{
		ID:        token.ID,
		Token:     token.Token,
		Label:     token.Label,
		IsActive:  token.IsActive,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	})
}

// ListAccessTokensHandler returns the property's tokens without the
// raw token strings. These are stored projections; whether a token
// currently validates is Validate's business, not the listing's.
func ListAccessTokensHandler(c echo.Context) error {
	propertyID := c.Get("property_id").(uint)

	tokens, err := AccessTokens.ListForProperty(propertyID)
	if err != nil {
		c.Logger().Errorf("Failed to list access tokens: %v", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Unable to list access tokens",
		}
	}
	return c.JSON(http.StatusOK, accessTokenList(tokens))
}

// ListAllAccessTokensHandler is the cross-property listing for global
// admins.
func ListAllAccessTokensHandler(c echo.Context) error {
	if httpErr := requireGlobalAdmin(c); httpErr != nil {
		return httpErr
	}

	tokens, err := AccessTokens.ListAll()
	if err != nil {
		c.Logger().Errorf("Failed to list access tokens: %v", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Unable to list access tokens",
		}
	}
	return c.JSON(http.StatusOK, accessTokenList(tokens))
}

// ToggleAccessTokenHandler flips a token's active flag. Deactivation
// is how access tokens die; rows stay for the audit trail.
func ToggleAccessTokenHandler(c echo.Context) error {
	logger := c.Logger()
	propertyID := c.Get("property_id").(uint)

	tokenID, err := strconv.ParseUint(c.Param("token_id"), 10, 32)
	if err != nil {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid token id",
		}
	}

	req := ToggleAccessTokenRequest{}
	if err := c.Bind(&req); err != nil {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request payload",
		}
	}

	// Scope check before the write: the token must belong to the
	// property this session was validated against.
	tokens, err := AccessTokens.ListForProperty(propertyID)
	if err != nil {
		logger.Errorf("Failed to load access tokens: %v", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Unable to update access token",
		}
	}
	if !containsToken(tokens, uint(tokenID)) {
		return &echo.HTTPError{
			Code:    http.StatusNotFound,
			Message: "Access token not found",
		}
	}

	if err := AccessTokens.Toggle(uint(tokenID), req.IsActive); err != nil {
		logger.Errorf("Failed to toggle access token: %v", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Unable to update access token",
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func containsToken(tokens []models.AccessToken, id uint) bool {
	for i := range tokens {
		if tokens[i].ID == id {
			return true
		}
	}
	return false
}

func accessTokenList(tokens []models.AccessToken) []AccessTokenResponse {
	out := make([]AccessTokenResponse, 0, len(tokens))
	for i := range tokens {
		out = append(out, AccessTokenResponse{
			ID:        tokens[i].ID,
			Label:     tokens[i].Label,
			IsActive:  tokens[i].IsActive,
			ExpiresAt: tokens[i].ExpiresAt,
			CreatedAt: tokens[i].CreatedAt,
		})
	}
	return out
}
