// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"blockboard-server/events"
	"blockboard-server/shortlinks"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// CreateShortLinkHandler allocates a short code for the property. With
// an access_token_id the code becomes an access-granting QR target;
// without one it is plain informational signage.
func CreateShortLinkHandler(c echo.Context) error {
	logger := c.Logger()
	propertyID := c.Get("property_id").(uint)

	req := CreateShortLinkRequest{}
	if err := c.Bind(&req); err != nil || req.Campaign == "" {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "campaign is required",
		}
	}

	link, err := ShortLinks.Create(propertyID, req.Campaign, shortlinks.CreateOptions{
		AccessTokenID: req.AccessTokenID,
		Unit:          req.Unit,
		Content:       req.Content,
		Label:         req.Label,
	})
	if errors.Is(err, shortlinks.ErrAccessTokenNotFound) {
		// Missing and foreign token ids get the same answer; see the
		// toggle handler's ownership check.
		return &echo.HTTPError{
			Code:    http.StatusNotFound,
			Message: "Access token not found",
		}
	}
	if err != nil {
		logger.Errorf("Failed to create short link: %v", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Unable to create short link",
		}
	}

	return c.JSON(http.StatusCreated, ShortLinkResponse{
		ID:       link.ID,
		Code:     link.Code,
		ShortURL: ShortLinks.ShortURL(link),
	})
}

// DeactivateShortLinkHandler retires a short link. The row survives;
// the code just stops resolving.
func DeactivateShortLinkHandler(c echo.Context) error {
	logger := c.Logger()
	propertyID := c.Get("property_id").(uint)

	linkID, err := strconv.ParseUint(c.Param("link_id"), 10, 32)
	if err != nil {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid link id",
		}
	}

	link := ShortLinks.Get(uint(linkID))
	if link == nil || link.PropertyID != propertyID {
		return &echo.HTTPError{
			Code:    http.StatusNotFound,
			Message: "Short link not found",
		}
	}

	if err := ShortLinks.Deactivate(uint(linkID)); err != nil {
		logger.Errorf("Failed to deactivate short link: %v", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Unable to deactivate short link",
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// RedirectHandler serves the public /s/:code hop. Unknown and
// deactivated codes both land on the safe default; a prober learns
// nothing from the difference because there is none.
func RedirectHandler(c echo.Context) error {
	code := c.Param("code")

	link := ShortLinks.Resolve(code)
	if link == nil {
		return c.Redirect(http.StatusFound, ShortLinks.BaseURL())
	}

	Events.Publish(events.LinkResolved, link.PropertyID, link.ID)
	return c.Redirect(http.StatusFound, ShortLinks.RedirectURL(link))
}
