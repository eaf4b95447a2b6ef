package models

import (
	"time"

	"gorm.io/datatypes"
)

// DigitMap holds the two axis permutations for a pool. WinningDigits is indexed by row,
// LosingDigits by column.
type DigitMap struct {
	ID            uint                     `gorm:"primaryKey"`
	PoolID        uint                     `gorm:"uniqueIndex; not null"`
	WinningDigits datatypes.JSONSlice[int] `gorm:"not null"`
	LosingDigits  datatypes.JSONSlice[int] `gorm:"not null"`
	RevealedAt    *time.Time
	LockedAt      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
