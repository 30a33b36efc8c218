// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"gorm.io/gorm"
)

// AccessToken is the long-lived credential embedded in a printed QR
// code. Tokens are deactivated rather than deleted so the record of
// who could get in, and when, survives the credential itself.
type AccessToken struct {
	ID         uint   `gorm:"primaryKey"`
	Token      string `gorm:"size:64;not null;uniqueIndex"`
	PropertyID uint   `gorm:"not null;index"`
	Label      string `gorm:"size:255;not null"`
	IsActive   bool   `gorm:"not null;default:true"`
	// ExpiresAt null means the token never expires. Checked at
	// validation time only; nothing reaps expired rows.
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
	Property  Property       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func init() {
	AllModels = append(AllModels, &AccessToken{})
}
