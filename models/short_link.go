// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"gorm.io/gorm"
)

// ShortLink decouples a printed QR code from what it resolves to. The
// code on the signage never changes; the campaign tags, the referenced
// access token and even the destination property can.
type ShortLink struct {
	ID         uint   `gorm:"primaryKey"`
	Code       string `gorm:"size:16;not null;uniqueIndex"`
	PropertyID uint   `gorm:"not null;index"`
	// AccessTokenID is set for access-granting codes and null for
	// purely informational signage.
	AccessTokenID *uint   `gorm:"default:null"`
	Unit          *string `gorm:"size:64;default:null"`
	Campaign      string  `gorm:"size:64;not null"`
	Content       *string `gorm:"size:64;default:null"`
	Label         *string `gorm:"size:255;default:null"`
	IsActive      bool    `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
	Property      Property       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AccessToken   *AccessToken   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

func init() {
	AllModels = append(AllModels, &ShortLink{})
}
