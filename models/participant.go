package models

import "time"

type Participant struct {
	ID          uint    `gorm:"primaryKey"`
	PoolID      uint    `gorm:"index; not null"`
	DisplayName string  `gorm:"size:255; not null"`
	ContactInfo *string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	SquareCount int `gorm:"->; -:migration"`
}
