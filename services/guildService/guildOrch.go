package guildService

import (
	"context"
	"fmt"
	"squaresPoolBot/models"
	"squaresPoolBot/services/common"
	"squaresPoolBot/services/poolService"
	"squaresPoolBot/utils/logger"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"
)

func GetGuildInfo(s *discordgo.Session, db *gorm.DB, guildID string, channelId string) (*models.Guild, error) {
	guildName := ""
	if checkGuild, err := s.Guild(guildID); err != nil {
		logger.Warnf("Unable to fetch guild %s: %v", guildID, err)
	} else {
		guildName = checkGuild.Name
	}

	return BindGuild(db, guildID, guildName, channelId)
}

// BindGuild loads or creates the guild row and makes sure it points at a pool. New guilds use
// the oldest pool and announce in the channel the first command came from.
func BindGuild(db *gorm.DB, guildID string, guildName string, channelId string) (*models.Guild, error) {
	var guild models.Guild
	guildResult := db.Where("guild_id = ?", guildID).Limit(1).Find(&guild)
	if guildResult.Error != nil {
		return nil, guildResult.Error
	}

	if guildResult.RowsAffected == 0 {
		guild = models.Guild{GuildID: guildID, GuildName: guildName, AnnounceChannelID: channelId}
	} else if guildName != "" && guild.GuildName != guildName {
		guild.GuildName = guildName
	}

	if guild.PoolID == nil {
		name := "Squares Pool"
		if guild.GuildName != "" {
			name = fmt.Sprintf("%s Squares", guild.GuildName)
		}
		pool, err := poolService.EnsureDefaultPool(context.Background(), db, name)
		if err != nil {
			return nil, err
		}
		guild.PoolID = &pool.ID
	}

	if err := db.Save(&guild).Error; err != nil {
		return nil, fmt.Errorf("error saving guild: %v", err)
	}
	return &guild, nil
}

// GuildsForPool returns every guild announcing for a pool.
func GuildsForPool(db *gorm.DB, poolID uint) ([]models.Guild, error) {
	var guilds []models.Guild
	if err := db.Where("pool_id = ?", poolID).Find(&guilds).Error; err != nil {
		return nil, err
	}
	return guilds, nil
}

func SetPoolChannel(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	if !common.IsAdmin(s, i) {
		err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: "You are not authorized to use this command.",
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
		if err != nil {
			common.SendError(s, i, err, db)
			return
		}
		return
	}

	guild, err := GetGuildInfo(s, db, i.GuildID, i.ChannelID)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}
	guild.AnnounceChannelID = i.ChannelID
	if err := db.Save(guild).Error; err != nil {
		common.SendError(s, i, err, db)
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Channel set successfully",
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}
}
