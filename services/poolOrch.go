package services

import (
	"context"
	"errors"
	"fmt"
	"squaresPoolBot/models"
	"squaresPoolBot/services/auditService"
	"squaresPoolBot/services/common"
	"squaresPoolBot/services/digitService"
	"squaresPoolBot/services/gameService"
	"squaresPoolBot/services/guildService"
	"squaresPoolBot/services/messageService"
	"squaresPoolBot/services/participantService"
	"squaresPoolBot/services/payoutService"
	"squaresPoolBot/services/poolService"
	"squaresPoolBot/services/resultService"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"
)

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	optionMap := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		optionMap[opt.Name] = opt
	}
	return optionMap
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, data *discordgo.InteractionResponseData) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		common.SendError(s, nil, err, db)
	}
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, content string) {
	respond(s, i, db, &discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

func requireAdmin(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) bool {
	if common.IsAdmin(s, i) {
		return true
	}
	respondEphemeral(s, i, db, "You are not authorized to use this command.")
	return false
}

func guildPool(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) (*models.Pool, error) {
	guild, err := guildService.GetGuildInfo(s, db, i.GuildID, i.ChannelID)
	if err != nil {
		return nil, err
	}
	return poolService.GetPool(db, *guild.PoolID)
}

func ShowPoolStatus(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	pool, err := guildPool(s, i, db)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	digitMap, err := digitService.GetDigitMap(db, pool.ID)
	if err != nil && !errors.Is(err, common.ErrDigitMapMissing) {
		common.SendError(s, i, err, db)
		return
	}
	payouts, err := payoutService.GetLatestPayouts(db, pool.ID)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	embed := messageService.StatusEmbed(pool, digitService.Public(digitMap), payouts)
	respond(s, i, db, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
}

func ShowPoolBoard(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	pool, err := guildPool(s, i, db)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	squares, err := poolService.GetSquares(db, pool.ID)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}
	digitMap, err := digitService.GetDigitMap(db, pool.ID)
	if err != nil && !errors.Is(err, common.ErrDigitMapMissing) {
		common.SendError(s, i, err, db)
		return
	}

	respond(s, i, db, &discordgo.InteractionResponseData{
		Content: fmt.Sprintf("**%s**\n%s", pool.Name, messageService.FormatBoard(squares, digitService.Public(digitMap))),
	})
}

func AddParticipant(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	if !requireAdmin(s, i, db) {
		return
	}
	pool, err := guildPool(s, i, db)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	options := optionMap(i)
	input := participantService.ParticipantInput{DisplayName: participantName(options, i.ApplicationCommandData().Resolved)}
	if opt, ok := options["contact"]; ok {
		contact := opt.StringValue()
		input.ContactInfo = &contact
	}

	participant, err := participantService.CreateParticipant(context.Background(), db, pool.ID, input, common.Actor(i))
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	respondEphemeral(s, i, db, fmt.Sprintf("Added **%s** (ID `%d`)", participant.DisplayName, participant.ID))
}

// participantName prefers an explicit name and falls back to the Discord name of the picked user.
func participantName(options map[string]*discordgo.ApplicationCommandInteractionDataOption, resolved *discordgo.ApplicationCommandInteractionDataResolved) string {
	if opt, ok := options["name"]; ok && opt.StringValue() != "" {
		return opt.StringValue()
	}
	opt, ok := options["user"]
	if !ok {
		return ""
	}
	userID, _ := opt.Value.(string)
	if resolved == nil || resolved.Users[userID] == nil {
		return ""
	}
	return common.GetUsernameFromUser(resolved.Users[userID])
}

func AssignSquare(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	if !requireAdmin(s, i, db) {
		return
	}
	pool, err := guildPool(s, i, db)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	options := optionMap(i)
	row := int(options["row"].IntValue())
	col := int(options["col"].IntValue())
	var participantID *uint
	if opt, ok := options["participant-id"]; ok {
		id := uint(opt.IntValue())
		participantID = &id
	}

	_, err = participantService.AssignSquare(context.Background(), db, pool.ID, row, col, participantID, common.Actor(i))
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	if participantID == nil {
		respondEphemeral(s, i, db, fmt.Sprintf("Square (%d, %d) cleared", row, col))
		return
	}
	respondEphemeral(s, i, db, fmt.Sprintf("Square (%d, %d) assigned to participant `%d`", row, col, *participantID))
}

func AddGame(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	if !requireAdmin(s, i, db) {
		return
	}
	pool, err := guildPool(s, i, db)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	options := optionMap(i)
	input := gameService.GameInput{
		RoundKey: options["round"].StringValue(),
		TeamA:    options["team-a"].StringValue(),
		TeamB:    options["team-b"].StringValue(),
	}
	if opt, ok := options["espn-id"]; ok {
		externalID := opt.StringValue()
		input.ExternalID = &externalID
	}

	game, err := gameService.CreateGame(context.Background(), db, pool.ID, input, common.Actor(i))
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	respondEphemeral(s, i, db, fmt.Sprintf("Game `%d` added: %s vs %s (%s)", game.ID, game.TeamA, game.TeamB, payoutService.RoundLabel(game.RoundKey)))
}

func ReportScore(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	if !requireAdmin(s, i, db) {
		return
	}
	pool, err := guildPool(s, i, db)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	options := optionMap(i)
	gameID := uint(options["game-id"].IntValue())
	scoreA := int(options["score-a"].IntValue())
	scoreB := int(options["score-b"].IntValue())
	report := gameService.ScoreReport{
		Status: models.GameStatusInProgress,
		ScoreA: &scoreA,
		ScoreB: &scoreB,
	}
	if opt, ok := options["final"]; ok && opt.BoolValue() {
		report.Status = models.GameStatusFinal
	}

	game, _, err := gameService.ReportScore(context.Background(), db, pool.ID, gameID, report, common.Actor(i))
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	respondEphemeral(s, i, db, fmt.Sprintf("Game `%d`: %s %d - %d %s (%s)", game.ID, game.TeamA, scoreA, scoreB, game.TeamB, game.Status))
}

// SetPayout changes one round's amount. The full table is resubmitted so every round shares
// the new effective time.
func SetPayout(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	if !requireAdmin(s, i, db) {
		return
	}
	pool, err := guildPool(s, i, db)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	options := optionMap(i)
	roundKey := options["round"].StringValue()
	cents := common.DollarsToCents(options["amount"].FloatValue())

	latest, err := payoutService.GetLatestPayouts(db, pool.ID)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}
	payouts := make(map[string]int64, len(payoutService.RoundKeys))
	for key, amount := range payoutService.DefaultPayouts {
		payouts[key] = amount
	}
	for key, amount := range latest.Payouts {
		payouts[key] = amount
	}
	payouts[roundKey] = cents

	updated, err := payoutService.SubmitPayouts(context.Background(), db, pool.ID, payouts, common.Actor(i))
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	respond(s, i, db, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{messageService.StatusEmbed(pool, nil, updated)},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
}

func RandomizeDigits(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	if !requireAdmin(s, i, db) {
		return
	}
	pool, err := guildPool(s, i, db)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	digitMap, err := digitService.Randomize(context.Background(), db, pool.ID, common.Actor(i))
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	// Only the admin sees the draw until it is revealed.
	respondEphemeral(s, i, db, fmt.Sprintf("New digits drawn.\nRows: %s\nColumns: %s",
		messageService.FormatDigits(digitMap.WinningDigits), messageService.FormatDigits(digitMap.LosingDigits)))
}

func RevealDigits(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	if !requireAdmin(s, i, db) {
		return
	}
	pool, err := guildPool(s, i, db)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	digitMap, err := digitService.Reveal(context.Background(), db, pool.ID, common.Actor(i))
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	embed := messageService.StatusEmbed(pool, digitService.Public(digitMap), nil)
	respond(s, i, db, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
}

func CheckLock(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	if !requireAdmin(s, i, db) {
		return
	}
	pool, err := guildPool(s, i, db)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	report, err := poolService.CheckLockPrerequisites(context.Background(), db, pool.ID)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	respond(s, i, db, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{messageService.PrerequisitesEmbed(pool, report)},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
}

func LockPool(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	if !requireAdmin(s, i, db) {
		return
	}
	pool, err := guildPool(s, i, db)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	outcome, err := poolService.LockPool(context.Background(), db, pool.ID, common.Actor(i))
	if err != nil {
		var pe *common.PoolError
		if errors.As(err, &pe) {
			if report, ok := pe.Details.(*poolService.LockPrerequisites); ok {
				respond(s, i, db, &discordgo.InteractionResponseData{
					Embeds: []*discordgo.MessageEmbed{messageService.PrerequisitesEmbed(pool, report)},
					Flags:  discordgo.MessageFlagsEphemeral,
				})
				return
			}
		}
		common.SendError(s, i, err, db)
		return
	}

	respond(s, i, db, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{messageService.LockEmbed(outcome)},
	})
}

func FinalizeGame(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	if !requireAdmin(s, i, db) {
		return
	}
	pool, err := guildPool(s, i, db)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	gameID := uint(optionMap(i)["game-id"].IntValue())
	result, _, err := resultService.FinalizeGame(context.Background(), db, pool.ID, gameID, common.Actor(i))
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	game, err := gameService.GetGame(db, pool.ID, gameID)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	respond(s, i, db, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{messageService.SettlementEmbed(game, result, resultService.WinnerName(db, result))},
	})
}

func ShowPoolResults(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	pool, err := guildPool(s, i, db)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	results, err := resultService.ListPoolResults(db, pool.ID)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📋 %s results", pool.Name),
		Description: messageService.ResultsMessage(results),
		Color:       0x3498DB,
	}
	respond(s, i, db, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
}

func ShowPoolLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	pool, err := guildPool(s, i, db)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	entries, err := resultService.GetParticipantLeaderboard(db, pool.ID)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🏆 Leaderboard",
		Description: messageService.LeaderboardMessage(entries),
		Color:       0x00ff00,
	}
	respond(s, i, db, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
}

func ShowSquareStats(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	pool, err := guildPool(s, i, db)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	stats, err := resultService.GetSquareStats(db, pool.ID)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎯 %s winning squares", pool.Name),
		Description: messageService.SquareStatsMessage(stats),
		Color:       0x3498DB,
	}
	respond(s, i, db, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
}

func ShowPayoutHistory(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	pool, err := guildPool(s, i, db)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	rows, err := payoutService.History(db, pool.ID)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("💵 %s payout history", pool.Name),
		Description: messageService.PayoutHistoryMessage(rows),
		Color:       0x3498DB,
	}
	respond(s, i, db, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
}

func ShowAuditLog(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	if !requireAdmin(s, i, db) {
		return
	}
	pool, err := guildPool(s, i, db)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	opts := auditService.ListOptions{}
	if opt, ok := optionMap(i)["limit"]; ok {
		opts.Limit = int(opt.IntValue())
	}
	events, err := auditService.ListAuditEvents(context.Background(), db, pool.ID, opts)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🧾 %s audit log", pool.Name),
		Description: messageService.AuditMessage(events),
		Color:       0x95A5A6,
	}
	respond(s, i, db, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
}
