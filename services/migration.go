package services

import (
	"context"
	"fmt"
	"squaresPoolBot/models"
	"squaresPoolBot/services/poolService"
	"squaresPoolBot/utils/logger"
	"time"

	"gorm.io/gorm"
)

const defaultPoolMigration = "default_pool"

// RunDefaultPoolMigration creates the first pool with its board and payout table, once.
func RunDefaultPoolMigration(db *gorm.DB, poolName string) error {
	var existingMigration models.Migration
	result := db.Where("name = ?", defaultPoolMigration).Limit(1).Find(&existingMigration)
	if result.Error != nil {
		return fmt.Errorf("error checking migrations: %v", result.Error)
	}
	if result.RowsAffected > 0 {
		logger.Debugf("Default pool migration has already been executed. Skipping.")
		return nil
	}

	logger.Infof("Starting default pool migration...")

	pool, err := poolService.EnsureDefaultPool(context.Background(), db, poolName)
	if err != nil {
		return fmt.Errorf("error creating default pool: %v", err)
	}

	migration := models.Migration{
		Name:       defaultPoolMigration,
		ExecutedAt: time.Now().UTC(),
	}
	if err := db.Create(&migration).Error; err != nil {
		return fmt.Errorf("error recording migration: %v", err)
	}

	logger.Infow("Default pool migration complete", "pool_id", pool.ID, "pool_name", pool.Name)
	return nil
}
