package models

import "gorm.io/gorm"

type PoolStatus string

const (
	PoolStatusDraft     PoolStatus = "draft"
	PoolStatusOpen      PoolStatus = "open"
	PoolStatusLocked    PoolStatus = "locked"
	PoolStatusCompleted PoolStatus = "completed"
)

// GridSize is the fixed edge length of every pool's board.
const GridSize = 10

// Pool is one squares contest. Status is the single source of truth for write eligibility.
type Pool struct {
	gorm.Model
	Name   string     `gorm:"size:255; not null"`
	Status PoolStatus `gorm:"size:32; not null; default:open; index"`
}

func (p Pool) IsLocked() bool {
	return p.Status == PoolStatusLocked
}
