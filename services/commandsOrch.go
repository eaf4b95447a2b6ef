package services

import (
	"fmt"
	"squaresPoolBot/services/guildService"
	"squaresPoolBot/services/payoutService"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"
)

func HandleSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	switch i.ApplicationCommandData().Name {
	case "pool-status":
		ShowPoolStatus(s, i, db)
	case "pool-board":
		ShowPoolBoard(s, i, db)
	case "set-pool-channel":
		guildService.SetPoolChannel(s, i, db)
	case "add-participant":
		AddParticipant(s, i, db)
	case "assign-square":
		AssignSquare(s, i, db)
	case "add-game":
		AddGame(s, i, db)
	case "report-score":
		ReportScore(s, i, db)
	case "set-payout":
		SetPayout(s, i, db)
	case "randomize-digits":
		RandomizeDigits(s, i, db)
	case "reveal-digits":
		RevealDigits(s, i, db)
	case "check-lock":
		CheckLock(s, i, db)
	case "lock-pool":
		LockPool(s, i, db)
	case "finalize-game":
		FinalizeGame(s, i, db)
	case "pool-results":
		ShowPoolResults(s, i, db)
	case "pool-leaderboard":
		ShowPoolLeaderboard(s, i, db)
	case "pool-square-stats":
		ShowSquareStats(s, i, db)
	case "payout-history":
		ShowPayoutHistory(s, i, db)
	case "pool-audit":
		ShowAuditLog(s, i, db)
	}
}

var minAuditLimit = 1.0

func roundChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(payoutService.RoundKeys))
	for _, roundKey := range payoutService.RoundKeys {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  payoutService.RoundLabel(roundKey),
			Value: roundKey,
		})
	}
	return choices
}

func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "pool-status",
			Description: "Show the pool status, digits and payouts",
		},
		{
			Name:        "pool-board",
			Description: "Show the squares board",
		},
		{
			Name:        "pool-results",
			Description: "Show every settled game and its winner",
		},
		{
			Name:        "pool-leaderboard",
			Description: "Show the participants who have won the most",
		},
		{
			Name:        "set-pool-channel",
			Description: "🛡 Sets the current channel as the channel for pool announcements - ADMIN ONLY",
		},
		{
			Name:        "add-participant",
			Description: "🛡 Add a participant to the pool - ADMIN ONLY",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "name",
					Description: "Display name, defaults to the picked user's name",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    false,
				},
				{
					Name:        "user",
					Description: "Discord user to add",
					Type:        discordgo.ApplicationCommandOptionUser,
					Required:    false,
				},
				{
					Name:        "contact",
					Description: "Contact info",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    false,
				},
			},
		},
		{
			Name:        "assign-square",
			Description: "🛡 Assign a square to a participant - ADMIN ONLY",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "row",
					Description: "Row (0-9)",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
				{
					Name:        "col",
					Description: "Column (0-9)",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
				{
					Name:        "participant-id",
					Description: "Participant ID, leave empty to clear the square",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    false,
				},
			},
		},
		{
			Name:        "add-game",
			Description: "🛡 Add a tournament game - ADMIN ONLY",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "round",
					Description: "Tournament round",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
					Choices:     roundChoices(),
				},
				{
					Name:        "team-a",
					Description: "First team",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
				},
				{
					Name:        "team-b",
					Description: "Second team",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
				},
				{
					Name:        "espn-id",
					Description: "ESPN event ID for automatic score updates",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    false,
				},
			},
		},
		{
			Name:        "report-score",
			Description: "🛡 Report the score of a game - ADMIN ONLY",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "game-id",
					Description: "Game ID",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
				{
					Name:        "score-a",
					Description: "Score of the first team",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
				{
					Name:        "score-b",
					Description: "Score of the second team",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
				{
					Name:        "final",
					Description: "Mark the game as final",
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Required:    false,
				},
			},
		},
		{
			Name:        "set-payout",
			Description: "🛡 Set the payout for a round - ADMIN ONLY",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "round",
					Description: "Tournament round",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
					Choices:     roundChoices(),
				},
				{
					Name:        "amount",
					Description: "Payout in dollars",
					Type:        discordgo.ApplicationCommandOptionNumber,
					Required:    true,
				},
			},
		},
		{
			Name:        "randomize-digits",
			Description: "🛡 Draw new row and column digits - ADMIN ONLY",
		},
		{
			Name:        "reveal-digits",
			Description: "🛡 Show the digits to everyone - ADMIN ONLY",
		},
		{
			Name:        "check-lock",
			Description: "🛡 Check whether the pool is ready to lock - ADMIN ONLY",
		},
		{
			Name:        "lock-pool",
			Description: "🛡 Lock the pool. This cannot be undone - ADMIN ONLY",
		},
		{
			Name:        "pool-square-stats",
			Description: "Show which squares have won and how much they paid",
		},
		{
			Name:        "payout-history",
			Description: "Show every payout change for the pool",
		},
		{
			Name:        "pool-audit",
			Description: "🛡 Show recent pool changes - ADMIN ONLY",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "limit",
					Description: "Number of events (1-40)",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    false,
					MinValue:    &minAuditLimit,
					MaxValue:    40,
				},
			},
		},
		{
			Name:        "finalize-game",
			Description: "🛡 Settle a final game and pay the winning square - ADMIN ONLY",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "game-id",
					Description: "Game ID",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
			},
		},
	}
}

func RegisterCommands(s *discordgo.Session) error {
	for _, cmd := range Commands() {
		_, err := s.ApplicationCommandCreate(s.State.User.ID, "", cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%v' command: %v", cmd.Name, err)
		}
	}

	return nil
}
