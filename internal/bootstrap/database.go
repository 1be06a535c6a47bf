package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"paybridge/internal/models"
)

// Migrate ensures the order store tables exist. Orders themselves are
// created by the shop; the bridge never seeds them.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Order{},
		&models.OrderNote{},
	); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}
