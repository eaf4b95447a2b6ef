package common

import (
	"errors"
	"fmt"
	"net/http"
	"squaresPoolBot/models"
	"squaresPoolBot/utils/logger"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func IsAdmin(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	// Use member data from the interaction - no privileged intent needed
	if i.Member == nil {
		return false
	}
	if i.Member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}

	for _, roleID := range i.Member.Roles {
		role, err := s.State.Role(i.GuildID, roleID)
		if err != nil || role == nil {
			roles, err := s.GuildRoles(i.GuildID)
			if err != nil {
				logger.Errorf("Error fetching roles from API: %v", err)
				continue
			}

			for _, r := range roles {
				if r.ID == roleID {
					role = r
					break
				}
			}

			if role == nil {
				logger.Warnf("Role %s not found in guild %s", roleID, i.GuildID)
				continue
			}
		}

		if role.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
	}

	return false
}

// SendError answers the interaction with the failure and stores it in the error log. Domain
// errors are shown by code; anything else is reported as an internal error.
func SendError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, db *gorm.DB) {
	code := CodeOf(err)
	logger.Errorw("command_failed", "code", code, "error", err)

	guildId := ""
	if i != nil {
		guildId = i.GuildID
		localErr := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: UserMessage(err),
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
		if localErr != nil {
			logger.Errorf("Error sending interaction: %v", localErr)
		}
	}
	errLog := models.ErrorLog{
		GuildID: guildId,
		Source:  "interaction",
		Code:    code,
		Message: fmt.Sprintf("%v", err),
	}
	db.Create(&errLog)
}

// UserMessage renders an error for Discord. Conflicts and unmet preconditions tell the admin to
// retry once the pool has moved on.
func UserMessage(err error) string {
	var pe *PoolError
	if !errors.As(err, &pe) {
		return "An error occured, please try again later."
	}
	if IsRetryable(err) {
		return fmt.Sprintf("Not yet: `%s`. Finish pool setup and try again.", pe.Code)
	}
	return fmt.Sprintf("Request rejected: `%s`.", pe.Code)
}

// LogJobError stores a scheduler failure in the error log.
func LogJobError(db *gorm.DB, source string, err error) {
	logger.Errorw("job_failed", "source", source, "error", err)
	errLog := models.ErrorLog{
		GuildID: "CRON ERR",
		Source:  source,
		Code:    CodeOf(err),
		Message: fmt.Sprintf("%v", err),
	}
	db.Create(&errLog)
}

var espnClient = &http.Client{Timeout: 15 * time.Second}

func ESPNWrapper(requestUrl string) (*http.Response, error) {
	req, err := http.NewRequest("GET", requestUrl, nil)
	if err != nil {
		return nil, err
	}

	resp, err := espnClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != 200 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, requestUrl)
	}
	return resp, nil
}

// FormatCents renders an amount in cents as dollars, e.g. 2500 -> "$25.00".
func FormatCents(cents int64) string {
	return "$" + decimal.New(cents, -2).StringFixed(2)
}

// DollarsToCents converts a dollar amount entered in Discord, rounding to the nearest cent.
func DollarsToCents(dollars float64) int64 {
	return decimal.NewFromFloat(dollars).Shift(2).Round(0).IntPart()
}

// GetUsernameFromUser extracts username from a discordgo.User object
func GetUsernameFromUser(user *discordgo.User) string {
	if user == nil {
		return "Unknown User"
	}
	username := user.GlobalName
	if username == "" {
		username = user.Username
	}
	if username == "" {
		return "Unknown User"
	}
	return username
}

// Actor names the Discord user behind an interaction for the audit trail.
func Actor(i *discordgo.InteractionCreate) string {
	if i == nil {
		return "system"
	}
	if i.Member != nil && i.Member.User != nil {
		return "discord:" + i.Member.User.ID
	}
	if i.User != nil {
		return "discord:" + i.User.ID
	}
	return "system"
}
