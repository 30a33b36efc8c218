// SPDX-License-Identifier: GPL-3.0-only

package models

import "time"

// AdminSession proves "the admin password for property PropertyID was
// supplied". A null PropertyID is a legacy session valid for any
// property. Rows are inserted and deleted, never updated; there is no
// soft delete because sessions carry no audit value once revoked.
type AdminSession struct {
	ID         uint   `gorm:"primaryKey"`
	Token      string `gorm:"size:64;not null;uniqueIndex"`
	PropertyID *uint  `gorm:"default:null;index"`
	CreatedAt  time.Time
}

// AdminSessionState is the single-row bookkeeping record for the admin
// session table. LastUpdated is stamped on every insert or delete; at
// startup the whole table is dropped when the stamp is older than the
// retention window. Expiry is store-wide, not per token.
type AdminSessionState struct {
	ID          uint `gorm:"primaryKey"`
	LastUpdated time.Time
}

func init() {
	AllModels = append(AllModels, &AdminSession{}, &AdminSessionState{})
}
