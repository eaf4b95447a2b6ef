package poolService

import (
	"context"
	"fmt"
	"squaresPoolBot/models"
	"squaresPoolBot/services/auditService"
	"squaresPoolBot/services/common"
	"squaresPoolBot/services/digitService"
	"squaresPoolBot/services/guardService"
	"squaresPoolBot/utils/logger"

	"gorm.io/gorm"
)

type LockOutcome struct {
	Pool           *models.Pool
	DigitMap       *models.DigitMap
	PreviousStatus models.PoolStatus
	Transitioned   bool
}

// LockPool freezes a pool. The pool row is held FOR UPDATE for the whole transaction so the
// prerequisite check, the status flip and the digit map freeze all see the same state.
//
// Locking an already locked pool succeeds without re-checking prerequisites, but still makes
// sure the digit map carries locked_at.
func LockPool(ctx context.Context, db *gorm.DB, poolID uint, actor string) (*LockOutcome, error) {
	outcome := &LockOutcome{}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pool, err := guardService.LockPoolRow(tx, poolID)
		if err != nil {
			return err
		}
		outcome.Pool = pool
		outcome.PreviousStatus = pool.Status

		if pool.IsLocked() {
			digitMap, err := digitService.LockDigitMap(tx, poolID)
			if err != nil {
				return err
			}
			outcome.DigitMap = digitMap
			return nil
		}

		report, err := CheckLockPrerequisites(ctx, tx, poolID)
		if err != nil {
			return err
		}
		if !report.OK {
			return common.ErrLockPrerequisitesFailed.WithDetails(report)
		}

		if err := tx.Model(pool).Update("status", models.PoolStatusLocked).Error; err != nil {
			return fmt.Errorf("error locking pool: %w", err)
		}
		pool.Status = models.PoolStatusLocked

		digitMap, err := digitService.LockDigitMap(tx, poolID)
		if err != nil {
			return err
		}
		outcome.DigitMap = digitMap
		outcome.Transitioned = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if outcome.Transitioned {
		logger.Infow("pool_locked", "pool_id", poolID, "previous_status", outcome.PreviousStatus)
		auditService.Record(ctx, db, auditService.Entry{
			PoolID:     poolID,
			Actor:      actor,
			Action:     auditService.ActionPoolLock,
			EntityType: auditService.EntityPool,
			EntityID:   fmt.Sprint(poolID),
			Metadata: map[string]interface{}{
				"previous_status": string(outcome.PreviousStatus),
				"locked_at":       outcome.DigitMap.LockedAt,
			},
		})
	}

	return outcome, nil
}
