package models

import "time"

type Square struct {
	ID            uint  `gorm:"primaryKey"`
	PoolID        uint  `gorm:"uniqueIndex:idx_square_pool_cell; not null"`
	RowIndex      int   `gorm:"uniqueIndex:idx_square_pool_cell; not null"`
	ColIndex      int   `gorm:"uniqueIndex:idx_square_pool_cell; not null"`
	ParticipantID *uint `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// populated by joins, never persisted
	ParticipantName *string `gorm:"->; -:migration"`
}
