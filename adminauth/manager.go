// SPDX-License-Identifier: GPL-3.0-only

// Package adminauth issues, validates and revokes property-scoped
// admin session tokens. Validation runs against an in-memory index
// loaded once at startup; every mutation writes through to the store
// before it is acknowledged. Each process holds its own index, so a
// token revoked elsewhere stays visible here until Reload runs. That
// staleness window is documented behavior, not an accident.
package adminauth

import (
	"blockboard-server/commons"
	"blockboard-server/crypto"
	"blockboard-server/models"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RetentionWindow is how long the session store as a whole stays
// valid. It is measured against the store's single LastUpdated stamp,
// not per token: a busy store never expires, an idle one loses every
// session at the next load, fresh or not.
const RetentionWindow = 7 * 24 * time.Hour

type entry struct {
	binding   Binding
	createdAt time.Time
}

type Manager struct {
	db     *gorm.DB
	crypto *crypto.Crypto

	mu    sync.RWMutex
	index map[string]entry
}

func NewManager(conn *gorm.DB, c *crypto.Crypto) (*Manager, error) {
	m := &Manager{db: conn, crypto: c, index: map[string]entry{}}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload rebuilds the in-memory index from the store, applying the
// store-wide retention check first. Exposed so a deployment that needs
// cross-process revocation can trigger it without a restart.
func (m *Manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var state models.AdminSessionState
	err := m.db.First(&state, 1).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Fresh store, nothing to expire.
	case err != nil:
		return err
	case time.Since(state.LastUpdated) > RetentionWindow:
		commons.Logger.Infof("Admin session store idle for more than %s, discarding all sessions", RetentionWindow)
		if err := m.db.Where("1 = 1").Delete(&models.AdminSession{}).Error; err != nil {
			return err
		}
		if err := m.touch(); err != nil {
			return err
		}
		m.index = map[string]entry{}
		return nil
	}

	var rows []models.AdminSession
	if err := m.db.Find(&rows).Error; err != nil {
		return err
	}
	idx := make(map[string]entry, len(rows))
	for _, row := range rows {
		idx[row.Token] = entry{binding: bindingFor(row.PropertyID), createdAt: row.CreatedAt}
	}
	m.index = idx
	commons.Logger.Debugf("Admin session index loaded with %d sessions", len(idx))
	return nil
}

// CreateSession verifies secret and, on success, returns a new session
// token bound to propertyID (nil binds globally; legacy only). A wrong
// secret returns an empty token and a nil error: it is an expected
// outcome, not a fault. Which hash is consulted: the property's own
// when it has one, otherwise the ADMIN_PASSWORD_HASH env hash.
func (m *Manager) CreateSession(secret string, propertyID *uint) (string, error) {
	storedHash := commons.GetEnv("ADMIN_PASSWORD_HASH")
	if propertyID != nil {
		var property models.Property
		if err := m.db.First(&property, *propertyID).Error; err != nil {
			// Unknown property reads as a failed login, same as a
			// wrong secret would.
			return "", nil
		}
		if property.AdminPasswordHash != nil {
			storedHash = *property.AdminPasswordHash
		}
	}
	if !m.crypto.VerifySecret(secret, storedHash) {
		return "", nil
	}

	token, err := crypto.GenerateToken()
	if err != nil {
		return "", err
	}
	row := models.AdminSession{Token: token, PropertyID: propertyID}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.db.Create(&row).Error; err != nil {
		return "", err
	}
	if err := m.touch(); err != nil {
		return "", err
	}
	m.index[token] = entry{binding: bindingFor(propertyID), createdAt: row.CreatedAt}
	return token, nil
}

// Validate reports whether token is a live session, with no property
// filter applied.
func (m *Manager) Validate(token string) bool {
	if token == "" {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.index[token]
	return ok
}

// ValidateForProperty reports whether token authorizes propertyID. A
// bare boolean is the whole contract: "no such token" and "token bound
// elsewhere" are indistinguishable to the caller.
func (m *Manager) ValidateForProperty(token string, propertyID uint) bool {
	if token == "" {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.index[token]
	if !ok {
		return false
	}
	return e.binding.Matches(propertyID)
}

// BoundProperty returns the property a session is scoped to. Unknown
// tokens and global sessions both come back (0, false).
func (m *Manager) BoundProperty(token string) (uint, bool) {
	if token == "" {
		return 0, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.index[token]
	if !ok {
		return 0, false
	}
	return e.binding.Scoped()
}

// Revoke removes a session. Revoking an unknown token is a no-op.
func (m *Manager) Revoke(token string) error {
	if token == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.db.Where("token = ?", token).Delete(&models.AdminSession{}).Error; err != nil {
		return err
	}
	if err := m.touch(); err != nil {
		return err
	}
	delete(m.index, token)
	return nil
}

func (m *Manager) touch() error {
	state := models.AdminSessionState{ID: 1, LastUpdated: time.Now()}
	return m.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&state).Error
}
