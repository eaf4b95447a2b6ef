package models

import (
	"gorm.io/gorm"
	"time"
)

type Migration struct {
	gorm.Model
	Name       string `gorm:"uniqueIndex; size:255"`
	ExecutedAt time.Time
}

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Pool{},
		&Participant{},
		&Square{},
		&DigitMap{},
		&PayoutConfig{},
		&Game{},
		&GameResult{},
		&AuditEvent{},
		&Guild{},
		&ErrorLog{},
		&Migration{},
	}
}
