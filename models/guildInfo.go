package models

import "gorm.io/gorm"

// Guild binds a Discord server to the pool it administers.
type Guild struct {
	gorm.Model
	GuildID           string `gorm:"uniqueIndex; size:64"`
	GuildName         string
	AnnounceChannelID string `gorm:"size:64"`
	PoolID            *uint
}
