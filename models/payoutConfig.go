package models

import "time"

// PayoutConfig rows are append-only. The current amount for a round is the row with the
// latest EffectiveAt, ties broken by ID.
type PayoutConfig struct {
	ID          uint      `gorm:"primaryKey"`
	PoolID      uint      `gorm:"index:idx_payout_pool_round; not null"`
	RoundKey    string    `gorm:"index:idx_payout_pool_round; size:32; not null"`
	AmountCents int64     `gorm:"not null"`
	EffectiveAt time.Time `gorm:"not null; index"`
	CreatedAt   time.Time
}
