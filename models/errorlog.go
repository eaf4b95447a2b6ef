package models

import (
	"gorm.io/gorm"
)

type ErrorLog struct {
	gorm.Model
	GuildID string `gorm:"size:64"`
	Source  string `gorm:"size:64"`
	Code    string `gorm:"size:64"`
	Message string
}
