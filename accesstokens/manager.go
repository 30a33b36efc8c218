// SPDX-License-Identifier: GPL-3.0-only

// Package accesstokens manages the long-lived QR credentials that gate
// resident access to a property.
package accesstokens

import (
	"blockboard-server/commons"
	"blockboard-server/crypto"
	"blockboard-server/models"
	"time"

	"gorm.io/gorm"
)

// Grant is what a successful validation yields: the token's identity
// and the property it opens.
type Grant struct {
	PropertyID uint
	TokenID    uint
}

type Manager struct {
	db *gorm.DB
}

func NewManager(conn *gorm.DB) *Manager {
	return &Manager{db: conn}
}

// Issue persists a new active token for the property. ExpiresAt nil
// means the token never expires. Token entropy makes a uniqueness
// retry pointless at this layer.
func (m *Manager) Issue(propertyID uint, label string, expiresAt *time.Time) (*models.AccessToken, error) {
	token, err := crypto.GenerateToken()
	if err != nil {
		return nil, err
	}
	row := models.AccessToken{
		Token:      token,
		PropertyID: propertyID,
		Label:      label,
		IsActive:   true,
		ExpiresAt:  expiresAt,
	}
	if err := m.db.Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Validate resolves token against propertyID. Unknown token, inactive
// token, expired token and wrong property all return nil alike; there
// is nothing for an outside prober to enumerate. Expiry is a timestamp
// comparison here and nowhere else.
func (m *Manager) Validate(token string, propertyID uint) *Grant {
	if token == "" || propertyID == 0 {
		return nil
	}
	var row models.AccessToken
	if err := m.db.Where("token = ?", token).First(&row).Error; err != nil {
		return nil
	}
	if !row.IsActive {
		return nil
	}
	if row.ExpiresAt != nil && !row.ExpiresAt.After(time.Now()) {
		return nil
	}
	if row.PropertyID != propertyID {
		commons.Logger.Debugf("Access token %d presented against property %d, bound to %d", row.ID, propertyID, row.PropertyID)
		return nil
	}
	return &Grant{PropertyID: row.PropertyID, TokenID: row.ID}
}

// Toggle sets the active flag unconditionally. Setting the flag to its
// current value is a harmless no-op.
func (m *Manager) Toggle(tokenID uint, isActive bool) error {
	return m.db.Model(&models.AccessToken{}).
		Where("id = ?", tokenID).
		Update("is_active", isActive).Error
}

// ListForProperty returns the property's tokens as stored. No active
// or expiry evaluation happens here; that belongs to Validate alone.
func (m *Manager) ListForProperty(propertyID uint) ([]models.AccessToken, error) {
	var rows []models.AccessToken
	err := m.db.Where("property_id = ?", propertyID).Order("id").Find(&rows).Error
	return rows, err
}

func (m *Manager) ListAll() ([]models.AccessToken, error) {
	var rows []models.AccessToken
	err := m.db.Order("id").Find(&rows).Error
	return rows, err
}
