// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"gorm.io/gorm"
)

var AllModels []any

// Property is a tenant: one managed building or co-op. Every credential
// in the system is bound to exactly one property (the legacy global
// admin session being the sole carve-out).
type Property struct {
	ID   uint   `gorm:"primaryKey"`
	Slug string `gorm:"size:64;not null;uniqueIndex"`
	// URLHash is the unguessable segment the public board is served
	// under. Populated on create; backfilled by migration for rows
	// that predate the column.
	URLHash             string  `gorm:"size:64;not null;uniqueIndex"`
	Name                string  `gorm:"size:255;not null"`
	ContactPhone        *string `gorm:"size:32;default:null"`
	ContactsRequireAuth bool    `gorm:"not null;default:false"`
	// AdminPasswordHash is this property's admin secret. Null means the
	// property still rides the global ADMIN_PASSWORD_HASH secret.
	AdminPasswordHash *string `gorm:"size:255;default:null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func init() {
	AllModels = append(AllModels, &Property{})
}
