package poolService

import (
	"context"
	"errors"
	"fmt"
	"squaresPoolBot/models"
	"squaresPoolBot/services/auditService"
	"squaresPoolBot/services/common"
	"squaresPoolBot/services/payoutService"
	"strings"

	"gorm.io/gorm"
)

// CreatePoolWithSquares creates an open pool, its 100 empty squares and the default payout
// table in one transaction.
func CreatePoolWithSquares(ctx context.Context, db *gorm.DB, name string, actor string) (*models.Pool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ErrNameRequired
	}

	pool := models.Pool{Name: name, Status: models.PoolStatusOpen}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&pool).Error; err != nil {
			return fmt.Errorf("error creating pool: %w", err)
		}

		squares := make([]models.Square, 0, models.GridSize*models.GridSize)
		for row := 0; row < models.GridSize; row++ {
			for col := 0; col < models.GridSize; col++ {
				squares = append(squares, models.Square{PoolID: pool.ID, RowIndex: row, ColIndex: col})
			}
		}
		if err := tx.CreateInBatches(&squares, 50).Error; err != nil {
			return fmt.Errorf("error creating squares: %w", err)
		}

		return payoutService.SeedDefaultPayouts(tx, pool.ID)
	})
	if err != nil {
		return nil, err
	}

	auditService.Record(ctx, db, auditService.Entry{
		PoolID:     pool.ID,
		Actor:      actor,
		Action:     auditService.ActionPoolCreate,
		EntityType: auditService.EntityPool,
		EntityID:   fmt.Sprint(pool.ID),
		Metadata:   map[string]interface{}{"name": pool.Name},
	})

	return &pool, nil
}

// EnsureDefaultPool returns the oldest pool, creating one named name when none exist.
func EnsureDefaultPool(ctx context.Context, db *gorm.DB, name string) (*models.Pool, error) {
	var pool models.Pool
	err := db.WithContext(ctx).Order("id asc").First(&pool).Error
	if err == nil {
		return &pool, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error loading default pool: %w", err)
	}
	return CreatePoolWithSquares(ctx, db, name, auditService.SystemActor)
}

func GetPool(db *gorm.DB, poolID uint) (*models.Pool, error) {
	var pool models.Pool
	if err := db.First(&pool, poolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrPoolNotFound
		}
		return nil, fmt.Errorf("error loading pool: %w", err)
	}
	return &pool, nil
}

func ListPools(db *gorm.DB) ([]models.Pool, error) {
	var pools []models.Pool
	if err := db.Order("id asc").Find(&pools).Error; err != nil {
		return nil, fmt.Errorf("error listing pools: %w", err)
	}
	return pools, nil
}

// GetSquares returns the board in row-major order with each owner's display name.
func GetSquares(db *gorm.DB, poolID uint) ([]models.Square, error) {
	var squares []models.Square
	err := db.Model(&models.Square{}).
		Select("squares.*, participants.display_name AS participant_name").
		Joins("LEFT JOIN participants ON participants.id = squares.participant_id").
		Where("squares.pool_id = ?", poolID).
		Order("squares.row_index asc").
		Order("squares.col_index asc").
		Find(&squares).Error
	if err != nil {
		return nil, fmt.Errorf("error loading squares: %w", err)
	}
	return squares, nil
}

type PoolBoard struct {
	Pool    *models.Pool
	Squares []models.Square
}

func GetPoolWithSquares(db *gorm.DB, poolID uint) (*PoolBoard, error) {
	pool, err := GetPool(db, poolID)
	if err != nil {
		return nil, err
	}
	squares, err := GetSquares(db, poolID)
	if err != nil {
		return nil, err
	}
	return &PoolBoard{Pool: pool, Squares: squares}, nil
}
