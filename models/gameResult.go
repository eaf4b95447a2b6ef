package models

import "time"

// GameResult is the immutable settlement record of one game.
type GameResult struct {
	ID                   uint  `gorm:"primaryKey"`
	PoolID               uint  `gorm:"uniqueIndex:idx_result_pool_game; not null"`
	GameID               uint  `gorm:"uniqueIndex:idx_result_pool_game; not null"`
	WinDigit             int   `gorm:"not null"`
	LoseDigit            int   `gorm:"not null"`
	RowIndex             int   `gorm:"not null"`
	ColIndex             int   `gorm:"not null"`
	WinningSquareID      uint  `gorm:"index; not null"`
	WinningParticipantID *uint `gorm:"index"`
	PayoutConfigID       uint
	PayoutAmountCents    int64     `gorm:"not null"`
	FinalizedAt          time.Time `gorm:"not null; index"`
}
