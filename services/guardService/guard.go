package guardService

import (
	"context"
	"errors"
	"fmt"
	"squaresPoolBot/models"
	"squaresPoolBot/services/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Mutation is an admin write executed against the guarded transaction.
type Mutation func(tx *gorm.DB) error

// WithPoolUnlockedWrite opens a transaction, re-reads the pool row under SELECT ... FOR UPDATE
// and runs mutation only while the pool is not locked. Any error from mutation rolls back the
// whole transaction.
//
// A concurrent LockPool takes the same row lock, so it either commits before this check
// (and the write fails with pool_locked) or waits until this write has committed.
func WithPoolUnlockedWrite(ctx context.Context, db *gorm.DB, poolID uint, mutation Mutation) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pool, err := LockPoolRow(tx, poolID)
		if err != nil {
			return err
		}

		if pool.IsLocked() {
			return common.ErrPoolLocked
		}

		return mutation(tx)
	})
}

// LockPoolRow reads the pool with a row-level write lock. It must be called inside a
// transaction; outside one the lock is released as soon as the statement finishes.
func LockPoolRow(tx *gorm.DB, poolID uint) (*models.Pool, error) {
	var pool models.Pool
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pool, poolID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrPoolNotFound
		}
		return nil, fmt.Errorf("error locking pool %d: %w", poolID, err)
	}
	return &pool, nil
}
