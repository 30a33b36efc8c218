// SPDX-License-Identifier: GPL-3.0-only

// Package residentauth turns a validated access token scan into a
// renewable resident session.
package residentauth

import (
	"blockboard-server/commons"
	"blockboard-server/crypto"
	"blockboard-server/models"
	"time"

	"gorm.io/gorm"
)

// SessionTTL is the absolute lifetime of a resident session, measured
// from creation. Use never extends it; only LastSeenAt moves.
const SessionTTL = 90 * 24 * time.Hour

// Claims is what a validated session token resolves to.
type Claims struct {
	PropertyID uint
	SessionID  uint
	ExpiresAt  time.Time
}

type Manager struct {
	db *gorm.DB
}

func NewManager(conn *gorm.DB) *Manager {
	return &Manager{db: conn}
}

// Create mints a session for a scan of accessTokenID at propertyID.
// The caller has already validated the access token.
func (m *Manager) Create(propertyID, accessTokenID uint) (*models.ResidentSession, error) {
	token, err := crypto.GenerateToken()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	row := models.ResidentSession{
		Token:         token,
		PropertyID:    propertyID,
		AccessTokenID: accessTokenID,
		LastSeenAt:    now,
		ExpiresAt:     now.Add(SessionTTL),
	}
	if err := m.db.Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Validate resolves a session token, returning nil when unknown or
// expired. A success refreshes LastSeenAt: this read deliberately
// mutates, it is what active-resident reporting counts on. The expiry
// itself never slides.
func (m *Manager) Validate(sessionToken string) *Claims {
	if sessionToken == "" {
		return nil
	}
	var row models.ResidentSession
	if err := m.db.Where("token = ?", sessionToken).First(&row).Error; err != nil {
		return nil
	}
	if !row.ExpiresAt.After(time.Now()) {
		return nil
	}
	if err := m.db.Model(&row).Update("last_seen_at", time.Now()).Error; err != nil {
		// The session is still good; losing one last-seen bump only
		// skews reporting.
		commons.Logger.Errorf("Failed to update resident session LastSeenAt: %v", err)
	}
	return &Claims{PropertyID: row.PropertyID, SessionID: row.ID, ExpiresAt: row.ExpiresAt}
}

// Invalidate hard-deletes a session. Unlike access tokens there is no
// deactivated state to keep; resident sessions are disposable.
func (m *Manager) Invalidate(sessionToken string) error {
	if sessionToken == "" {
		return nil
	}
	return m.db.Where("token = ?", sessionToken).Delete(&models.ResidentSession{}).Error
}

// SweepExpired bulk-deletes every session past its expiry and returns
// how many went. Scheduling is the caller's concern; see cmd/sweepcli.
func (m *Manager) SweepExpired() (int64, error) {
	res := m.db.Where("expires_at <= ?", time.Now()).Delete(&models.ResidentSession{})
	return res.RowsAffected, res.Error
}
