package models

import "time"

type GameStatus string

const (
	GameStatusScheduled  GameStatus = "scheduled"
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusFinal      GameStatus = "final"
)

type Game struct {
	ID         uint       `gorm:"primaryKey"`
	PoolID     uint       `gorm:"index; not null"`
	RoundKey   string     `gorm:"size:32; not null"`
	TeamA      string     `gorm:"size:255; not null"`
	TeamB      string     `gorm:"size:255; not null"`
	Status     GameStatus `gorm:"size:32; not null; default:scheduled"`
	ExternalID *string    `gorm:"size:64; index"`
	ScoreA     *int
	ScoreB     *int
	StartTime  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasFinalScores reports whether the game is final with two usable scores.
func (g Game) HasFinalScores() bool {
	return g.Status == GameStatusFinal && g.ScoreA != nil && g.ScoreB != nil && *g.ScoreA >= 0 && *g.ScoreB >= 0
}
