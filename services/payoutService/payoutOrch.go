package payoutService

import (
	"context"
	"fmt"
	"sort"
	"squaresPoolBot/models"
	"squaresPoolBot/services/auditService"
	"squaresPoolBot/services/common"
	"squaresPoolBot/services/guardService"
	"time"

	"gorm.io/gorm"
)

const (
	RoundOf64    = "round_of_64"
	RoundOf32    = "round_of_32"
	Sweet16      = "sweet_16"
	Elite8       = "elite_8"
	Final4       = "final_4"
	Championship = "championship"
)

// RoundKeys lists every tournament round in playing order.
var RoundKeys = []string{RoundOf64, RoundOf32, Sweet16, Elite8, Final4, Championship}

var roundLabels = map[string]string{
	RoundOf64:    "Round of 64",
	RoundOf32:    "Round of 32",
	Sweet16:      "Sweet 16",
	Elite8:       "Elite 8",
	Final4:       "Final Four",
	Championship: "Championship",
}

// DefaultPayouts are seeded on every new pool, in cents.
var DefaultPayouts = map[string]int64{
	RoundOf64:    2500,
	RoundOf32:    4000,
	Sweet16:      5000,
	Elite8:       6000,
	Final4:       8000,
	Championship: 26000,
}

func IsValidRoundKey(roundKey string) bool {
	_, ok := roundLabels[roundKey]
	return ok
}

func RoundLabel(roundKey string) string {
	if label, ok := roundLabels[roundKey]; ok {
		return label
	}
	return roundKey
}

// SeedDefaultPayouts writes the default amounts for every round inside the caller's transaction.
func SeedDefaultPayouts(tx *gorm.DB, poolID uint) error {
	return insertPayouts(tx, poolID, DefaultPayouts, time.Now().UTC())
}

func insertPayouts(tx *gorm.DB, poolID uint, payouts map[string]int64, effectiveAt time.Time) error {
	rows := make([]models.PayoutConfig, 0, len(payouts))
	for _, roundKey := range RoundKeys {
		amount, ok := payouts[roundKey]
		if !ok {
			continue
		}
		rows = append(rows, models.PayoutConfig{
			PoolID:      poolID,
			RoundKey:    roundKey,
			AmountCents: amount,
			EffectiveAt: effectiveAt,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("error saving payouts: %w", err)
	}
	return nil
}

// ValidatePayouts requires an amount for every round and rejects unknown rounds and negative
// amounts.
func ValidatePayouts(payouts map[string]int64) error {
	var unknown []string
	for roundKey := range payouts {
		if !IsValidRoundKey(roundKey) {
			unknown = append(unknown, roundKey)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return common.ErrInvalidRoundKey.WithDetails(unknown)
	}

	var missing []string
	for _, roundKey := range RoundKeys {
		if _, ok := payouts[roundKey]; !ok {
			missing = append(missing, roundKey)
		}
	}
	if len(missing) > 0 {
		return common.ErrMissingRoundKey.WithDetails(missing)
	}

	for _, roundKey := range RoundKeys {
		if payouts[roundKey] < 0 {
			return common.ErrInvalidAmount.WithDetails(roundKey)
		}
	}
	return nil
}

// SubmitPayouts appends a full set of amounts sharing one effective time. Earlier rows are kept
// so existing settlements still point at the amount they were paid with.
func SubmitPayouts(ctx context.Context, db *gorm.DB, poolID uint, payouts map[string]int64, actor string) (*LatestPayouts, error) {
	if err := ValidatePayouts(payouts); err != nil {
		return nil, err
	}

	effectiveAt := time.Now().UTC()
	err := guardService.WithPoolUnlockedWrite(ctx, db, poolID, func(tx *gorm.DB) error {
		return insertPayouts(tx, poolID, payouts, effectiveAt)
	})
	if err != nil {
		return nil, err
	}

	metadata := make(map[string]interface{}, len(payouts))
	for roundKey, amount := range payouts {
		metadata[roundKey] = amount
	}
	auditService.Record(ctx, db, auditService.Entry{
		PoolID:     poolID,
		Actor:      actor,
		Action:     auditService.ActionPayoutsUpdate,
		EntityType: auditService.EntityPayoutConfig,
		EntityID:   fmt.Sprint(poolID),
		Metadata:   map[string]interface{}{"payouts": metadata},
	})

	return GetLatestPayouts(db.WithContext(ctx), poolID)
}

type LatestPayouts struct {
	Payouts     map[string]int64 `json:"payouts"`
	LastUpdated *time.Time       `json:"last_updated"`
}

// GetLatestPayouts returns the current amount for each configured round.
func GetLatestPayouts(db *gorm.DB, poolID uint) (*LatestPayouts, error) {
	var rows []models.PayoutConfig
	err := db.Where("pool_id = ?", poolID).
		Order("effective_at desc").
		Order("id desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error loading payouts: %w", err)
	}

	latest := &LatestPayouts{Payouts: map[string]int64{}}
	for _, row := range rows {
		if _, seen := latest.Payouts[row.RoundKey]; seen {
			continue
		}
		latest.Payouts[row.RoundKey] = row.AmountCents
		if latest.LastUpdated == nil || row.EffectiveAt.After(*latest.LastUpdated) {
			effectiveAt := row.EffectiveAt
			latest.LastUpdated = &effectiveAt
		}
	}
	return latest, nil
}

// CurrentPayout returns the row in effect for a round, or common.ErrPayoutsMissing.
func CurrentPayout(db *gorm.DB, poolID uint, roundKey string) (*models.PayoutConfig, error) {
	var payout models.PayoutConfig
	result := db.Where("pool_id = ? AND round_key = ?", poolID, roundKey).
		Order("effective_at desc").
		Order("id desc").
		Limit(1).
		Find(&payout)
	if result.Error != nil {
		return nil, fmt.Errorf("error loading payout: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, common.ErrPayoutsMissing.WithDetails(roundKey)
	}
	return &payout, nil
}

// MissingRounds lists the rounds that have never been given an amount.
func MissingRounds(db *gorm.DB, poolID uint) ([]string, error) {
	var configured []string
	err := db.Model(&models.PayoutConfig{}).
		Where("pool_id = ?", poolID).
		Distinct("round_key").
		Pluck("round_key", &configured).Error
	if err != nil {
		return nil, fmt.Errorf("error loading payout rounds: %w", err)
	}

	have := make(map[string]bool, len(configured))
	for _, roundKey := range configured {
		have[roundKey] = true
	}

	missing := []string{}
	for _, roundKey := range RoundKeys {
		if !have[roundKey] {
			missing = append(missing, roundKey)
		}
	}
	return missing, nil
}

// History returns every payout row for a pool, newest first.
func History(db *gorm.DB, poolID uint) ([]models.PayoutConfig, error) {
	var rows []models.PayoutConfig
	err := db.Where("pool_id = ?", poolID).
		Order("effective_at desc").
		Order("id desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error loading payout history: %w", err)
	}
	return rows, nil
}
