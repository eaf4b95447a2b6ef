package digitService

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"squaresPoolBot/models"
	"squaresPoolBot/services/auditService"
	"squaresPoolBot/services/common"
	"squaresPoolBot/services/guardService"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const digitCount = 10

// GeneratePermutation returns a uniformly random ordering of the digits 0-9.
func GeneratePermutation() []int {
	return generatePermutation(rand.Intn)
}

// generatePermutation is a Fisher-Yates shuffle; intN(n) must return a value in [0, n).
func generatePermutation(intN func(n int) int) []int {
	result := make([]int, digitCount)
	for i := range result {
		result[i] = i
	}
	for i := len(result) - 1; i > 0; i-- {
		j := intN(i + 1)
		result[i], result[j] = result[j], result[i]
	}
	return result
}

// IsValidPermutation reports whether values holds each digit 0-9 exactly once.
func IsValidPermutation(values []int) bool {
	if len(values) != digitCount {
		return false
	}
	var seen [digitCount]bool
	for _, v := range values {
		if v < 0 || v >= digitCount || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// IsVisible reports whether the digits may be shown publicly.
func IsVisible(digitMap *models.DigitMap) bool {
	return digitMap != nil && (digitMap.RevealedAt != nil || digitMap.LockedAt != nil)
}

// IndexOf returns the position of digit in values, or -1.
func IndexOf(values []int, digit int) int {
	for i, v := range values {
		if v == digit {
			return i
		}
	}
	return -1
}

// GetDigitMap returns the pool's digit map or common.ErrDigitMapMissing.
func GetDigitMap(db *gorm.DB, poolID uint) (*models.DigitMap, error) {
	return findDigitMap(db, poolID)
}

func findDigitMap(db *gorm.DB, poolID uint) (*models.DigitMap, error) {
	var digitMap models.DigitMap
	result := db.Where("pool_id = ?", poolID).Limit(1).Find(&digitMap)
	if result.Error != nil {
		return nil, fmt.Errorf("error loading digit map: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, common.ErrDigitMapMissing
	}
	return &digitMap, nil
}

func lockDigitMapRow(tx *gorm.DB, poolID uint) (*models.DigitMap, error) {
	return findDigitMap(tx.Clauses(clause.Locking{Strength: "UPDATE"}), poolID)
}

// Randomize replaces the pool's permutations with fresh ones. Any earlier reveal is cleared
// so visibility always refers to the current permutations. Fails with pool_locked once the
// pool or its digit map is frozen.
func Randomize(ctx context.Context, db *gorm.DB, poolID uint, actor string) (*models.DigitMap, error) {
	var digitMap *models.DigitMap
	replaced := false

	err := guardService.WithPoolUnlockedWrite(ctx, db, poolID, func(tx *gorm.DB) error {
		existing, err := lockDigitMapRow(tx, poolID)
		if err != nil && !errors.Is(err, common.ErrDigitMapMissing) {
			return err
		}

		winning := GeneratePermutation()
		losing := GeneratePermutation()

		if existing == nil {
			digitMap = &models.DigitMap{
				PoolID:        poolID,
				WinningDigits: winning,
				LosingDigits:  losing,
			}
			return tx.Create(digitMap).Error
		}

		if existing.LockedAt != nil {
			return common.ErrPoolLocked
		}

		existing.WinningDigits = winning
		existing.LosingDigits = losing
		existing.RevealedAt = nil
		replaced = true
		digitMap = existing
		return tx.Save(existing).Error
	})
	if err != nil {
		return nil, err
	}

	auditService.Record(ctx, db, auditService.Entry{
		PoolID:     poolID,
		Actor:      actor,
		Action:     auditService.ActionDigitsRandomize,
		EntityType: auditService.EntityDigitMap,
		EntityID:   fmt.Sprint(digitMap.ID),
		Metadata: map[string]interface{}{
			"replaced":       replaced,
			"winning_digits": []int(digitMap.WinningDigits),
			"losing_digits":  []int(digitMap.LosingDigits),
		},
	})

	return digitMap, nil
}

// Reveal makes the digits public. Repeated calls keep the original reveal time.
func Reveal(ctx context.Context, db *gorm.DB, poolID uint, actor string) (*models.DigitMap, error) {
	var digitMap *models.DigitMap
	changed := false

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		digitMap, err = lockDigitMapRow(tx, poolID)
		if err != nil {
			return err
		}
		if digitMap.RevealedAt != nil {
			return nil
		}

		now := time.Now().UTC()
		digitMap.RevealedAt = &now
		changed = true
		return tx.Model(digitMap).Update("revealed_at", now).Error
	})
	if err != nil {
		return nil, err
	}

	if changed {
		auditService.Record(ctx, db, auditService.Entry{
			PoolID:     poolID,
			Actor:      actor,
			Action:     auditService.ActionDigitsReveal,
			EntityType: auditService.EntityDigitMap,
			EntityID:   fmt.Sprint(digitMap.ID),
		})
	}

	return digitMap, nil
}

// LockDigitMap freezes the digit map using the caller's transaction. Idempotent: the first
// locked_at is kept.
func LockDigitMap(tx *gorm.DB, poolID uint) (*models.DigitMap, error) {
	digitMap, err := lockDigitMapRow(tx, poolID)
	if err != nil {
		return nil, err
	}
	if digitMap.LockedAt != nil {
		return digitMap, nil
	}

	now := time.Now().UTC()
	if err := tx.Model(digitMap).Update("locked_at", now).Error; err != nil {
		return nil, fmt.Errorf("error locking digit map: %w", err)
	}
	digitMap.LockedAt = &now
	return digitMap, nil
}

type PublicDigitMap struct {
	WinningDigits []int      `json:"winning_digits"`
	LosingDigits  []int      `json:"losing_digits"`
	RevealedAt    *time.Time `json:"revealed_at"`
	LockedAt      *time.Time `json:"locked_at"`
}

// Public returns the map as it may be shown to participants: digits are nil until revealed
// or locked.
func Public(digitMap *models.DigitMap) *PublicDigitMap {
	if digitMap == nil {
		return nil
	}
	public := &PublicDigitMap{
		RevealedAt: digitMap.RevealedAt,
		LockedAt:   digitMap.LockedAt,
	}
	if IsVisible(digitMap) {
		public.WinningDigits = append([]int(nil), digitMap.WinningDigits...)
		public.LosingDigits = append([]int(nil), digitMap.LosingDigits...)
	}
	return public
}
