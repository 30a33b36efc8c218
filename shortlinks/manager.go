// SPDX-License-Identifier: GPL-3.0-only

// Package shortlinks maps opaque 8-character codes to a property, an
// optional access token and campaign metadata. QR codes are physical
// and expensive to reprint, so the code resolves indirectly: what it
// points at can change after the signage goes up.
package shortlinks

import (
	"blockboard-server/commons"
	"blockboard-server/crypto"
	"blockboard-server/db"
	"blockboard-server/models"
	"errors"
	"fmt"
	"net/url"
	"time"

	"gorm.io/gorm"
)

// ErrAccessTokenNotFound is returned when a link references an access
// token that does not exist or belongs to another property. The two
// cases are deliberately indistinguishable: a property admin must not
// be able to probe for other buildings' token ids.
var ErrAccessTokenNotFound = errors.New("access token not found")

// maxCodeAttempts bounds the insert-retry on code collision. At 8
// base64url characters repeated collisions mean something is broken,
// not unlucky, so the failure propagates instead of retrying forever.
const maxCodeAttempts = 5

// CreateOptions are the optional fields of a new short link.
type CreateOptions struct {
	AccessTokenID *uint
	Unit          *string
	Content       *string
	Label         *string
}

type Manager struct {
	dbc     *gorm.DB
	baseURL string

	generateCode func() (string, error)
}

// NewManager builds a resolver rooted at baseURL, the public origin
// short and board URLs are built against.
func NewManager(conn *gorm.DB, baseURL string) *Manager {
	return &Manager{dbc: conn, baseURL: baseURL, generateCode: crypto.GenerateShortCode}
}

// Create inserts a short link for the property under a fresh code,
// regenerating on a uniqueness violation up to maxCodeAttempts times.
func (m *Manager) Create(propertyID uint, campaign string, opts CreateOptions) (*models.ShortLink, error) {
	if campaign == "" {
		return nil, fmt.Errorf("short link campaign is required")
	}
	if opts.AccessTokenID != nil {
		var token models.AccessToken
		if err := m.dbc.First(&token, *opts.AccessTokenID).Error; err != nil {
			return nil, ErrAccessTokenNotFound
		}
		// A link may only hand out credentials for its own property.
		if token.PropertyID != propertyID {
			commons.Logger.Debugf("Short link for property %d rejected: access token %d belongs to property %d", propertyID, token.ID, token.PropertyID)
			return nil, ErrAccessTokenNotFound
		}
	}
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := m.generateCode()
		if err != nil {
			return nil, err
		}
		row := models.ShortLink{
			Code:          code,
			PropertyID:    propertyID,
			AccessTokenID: opts.AccessTokenID,
			Unit:          opts.Unit,
			Campaign:      campaign,
			Content:       opts.Content,
			Label:         opts.Label,
			IsActive:      true,
		}
		err = m.dbc.Create(&row).Error
		if err == nil {
			return &row, nil
		}
		if !db.IsDuplicateKey(err) {
			return nil, err
		}
		commons.Logger.Warnf("Short code collision on attempt %d, regenerating", attempt+1)
	}
	return nil, fmt.Errorf("failed to allocate a unique short code after %d attempts", maxCodeAttempts)
}

// Resolve returns the live short link for code, or nil. Unknown codes
// and deactivated ones are indistinguishable from the outside.
func (m *Manager) Resolve(code string) *models.ShortLink {
	if code == "" {
		return nil
	}
	var row models.ShortLink
	if err := m.dbc.Where("code = ?", code).First(&row).Error; err != nil {
		return nil
	}
	if !row.IsActive {
		return nil
	}
	return &row
}

// Get fetches a short link by id regardless of its active flag, for
// the admin surface. The public path goes through Resolve.
func (m *Manager) Get(id uint) *models.ShortLink {
	var row models.ShortLink
	if err := m.dbc.First(&row, id).Error; err != nil {
		return nil
	}
	return &row
}

// BaseURL is the public origin, also the safe default redirect target.
func (m *Manager) BaseURL() string {
	return m.baseURL
}

// Deactivate retires a short link. Idempotent.
func (m *Manager) Deactivate(id uint) error {
	return m.dbc.Model(&models.ShortLink{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// ShortURL is the address printed into the QR code.
func (m *Manager) ShortURL(link *models.ShortLink) string {
	return m.baseURL + "/s/" + link.Code
}

// RedirectURL builds the destination for a resolved short link. The
// property lookup fails closed to the bare base URL. The referenced
// access token rides along as the auth parameter only while it is
// still usable and owned by the link's property; a retired or foreign
// token drops out of the URL silently. UTM bookkeeping is always
// attached.
func (m *Manager) RedirectURL(link *models.ShortLink) string {
	var property models.Property
	if err := m.dbc.First(&property, link.PropertyID).Error; err != nil {
		commons.Logger.Warnf("Short link %d points at missing property %d, redirecting to base", link.ID, link.PropertyID)
		return m.baseURL
	}

	q := url.Values{}
	q.Set("utm_source", "qr")
	q.Set("utm_medium", "print")
	q.Set("utm_campaign", link.Campaign)
	if link.Unit != nil {
		q.Set("unit", *link.Unit)
	}
	if link.Content != nil {
		q.Set("utm_content", *link.Content)
	}
	if link.AccessTokenID != nil {
		var token models.AccessToken
		err := m.dbc.First(&token, *link.AccessTokenID).Error
		if err == nil && token.PropertyID == link.PropertyID && tokenUsable(&token) {
			q.Set("auth", token.Token)
		}
	}
	return m.baseURL + "/b/" + property.URLHash + "?" + q.Encode()
}

func tokenUsable(token *models.AccessToken) bool {
	if !token.IsActive {
		return false
	}
	return token.ExpiresAt == nil || token.ExpiresAt.After(time.Now())
}
