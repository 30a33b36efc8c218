// SPDX-License-Identifier: GPL-3.0-only

package models

import "time"

// ResidentSession is the renewable credential a resident holds after a
// successful access token scan. Expiry is absolute from creation; use
// moves LastSeenAt but never the expiry. Rows are hard-deleted on
// logout and by the sweep, so no gorm soft delete here.
type ResidentSession struct {
	ID            uint   `gorm:"primaryKey"`
	Token         string `gorm:"size:64;not null;uniqueIndex"`
	PropertyID    uint   `gorm:"not null;index"`
	AccessTokenID uint   `gorm:"not null;index"`
	LastSeenAt    time.Time
	ExpiresAt     time.Time `gorm:"not null;index"`
	CreatedAt     time.Time
}

func init() {
	AllModels = append(AllModels, &ResidentSession{})
}
