// SPDX-License-Identifier: GPL-3.0-only

package migrations

import (
	"blockboard-server/commons"
	"blockboard-server/crypto"
	"blockboard-server/models"
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func List() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			// Properties created before boards moved behind unguessable
			// URLs have an empty url_hash. Give them one.
			ID: "001_backfill_property_url_hash",
			Migrate: func(tx *gorm.DB) error {
				var properties []models.Property
				if err := tx.Where("url_hash = ? OR url_hash IS NULL", "").
					Find(&properties).Error; err != nil {
					return fmt.Errorf("failed to fetch properties: %w", err)
				}
				for i := range properties {
					urlHash, err := crypto.GenerateURLHash()
					if err != nil {
						return fmt.Errorf("failed to generate url hash: %w", err)
					}
					err = tx.Model(&properties[i]).
						Update("url_hash", urlHash).Error
					if err != nil {
						return fmt.Errorf("failed to backfill property %d: %w", properties[i].ID, err)
					}
				}
				commons.Logger.Infof("Backfilled url_hash for %d properties", len(properties))
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				// Hashes are harmless to keep; nothing to undo.
				return nil
			},
		},
	}
}

// Run applies the versioned data migrations on top of AutoMigrate.
func Run(conn *gorm.DB) {
	m := gormigrate.New(conn, gormigrate.DefaultOptions, List())
	if err := m.Migrate(); err != nil {
		commons.Logger.Fatalf("Data migration failed: %v", err)
	}
	commons.Logger.Info("Data migrations completed")
}
