package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditEvent struct {
	ID         uint      `gorm:"primaryKey"`
	PoolID     *uint     `gorm:"index:idx_audit_pool_created"`
	Actor      string    `gorm:"size:128; not null"`
	Action     string    `gorm:"size:64; not null"`
	EntityType string    `gorm:"size:64"`
	EntityID   string    `gorm:"size:64"`
	RequestID  string    `gorm:"size:36"`
	CreatedAt  time.Time `gorm:"index:idx_audit_pool_created"`
	Metadata   datatypes.JSON
}
