package scheduler_jobs

import (
	"context"
	"fmt"
	"runtime/debug"
	"squaresPoolBot/models"
	"squaresPoolBot/services/auditService"
	"squaresPoolBot/services/common"
	"squaresPoolBot/services/extService"
	"squaresPoolBot/services/gameService"
	"squaresPoolBot/services/guildService"
	"squaresPoolBot/services/messageService"
	"squaresPoolBot/services/resultService"
	"squaresPoolBot/utils/logger"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"
)

// ScoreSource returns the latest ESPN updates keyed by event id.
type ScoreSource func() (map[string]extService.ScoreUpdate, error)

func ESPNSource(scoreboardUrl string) ScoreSource {
	return func() (map[string]extService.ScoreUpdate, error) {
		return extService.GetScoreUpdates(scoreboardUrl)
	}
}

// CheckGameEnd copies ESPN scores onto tracked games and then settles every final game of a
// locked pool. New settlements are announced when a Discord session is available.
func CheckGameEnd(s *discordgo.Session, db *gorm.DB, source ScoreSource) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("Recovered in CheckGameEnd", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic recovered in CheckGameEnd: %v", r)
		}
	}()

	if _, err := SyncScores(db, source); err != nil {
		common.LogJobError(db, "check_game_end", err)
	}

	settled, err := SettleFinalGames(db)
	if err != nil {
		return err
	}

	if s != nil {
		for _, settlement := range settled {
			announceSettlement(s, db, settlement)
		}
	}
	return nil
}

// SyncScores applies feed updates to every tracked game and returns how many games changed.
func SyncScores(db *gorm.DB, source ScoreSource) (int, error) {
	games, err := gameService.ListTrackedGames(db)
	if err != nil {
		return 0, err
	}
	if len(games) == 0 {
		return 0, nil
	}

	updates, err := source()
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, game := range games {
		update, found := updates[*game.ExternalID]
		if !found {
			continue
		}

		scoreA, scoreB := extService.ScoresFor(game, update)
		report := gameService.ScoreReport{Status: update.Status, ScoreA: scoreA, ScoreB: scoreB}
		_, didChange, err := gameService.ReportScore(context.Background(), db, game.PoolID, game.ID, report, auditService.SystemActor)
		if err != nil {
			logger.Warnw("score_sync_failed", "game_id", game.ID, "code", common.CodeOf(err), "error", err)
			continue
		}
		if didChange {
			changed++
		}
	}
	return changed, nil
}

type Settlement struct {
	Game   models.Game
	Result *models.GameResult
}

// SettleFinalGames finalizes final games that have no result yet. Conflicts and unmet
// preconditions are left for the next run.
func SettleFinalGames(db *gorm.DB) ([]Settlement, error) {
	games, err := gameService.ListUnsettledFinalGames(db)
	if err != nil {
		return nil, err
	}

	var settled []Settlement
	for _, game := range games {
		result, created, err := resultService.FinalizeGame(context.Background(), db, game.PoolID, game.ID, auditService.SystemActor)
		if err != nil {
			if common.IsRetryable(err) {
				logger.Infow("settlement_deferred", "pool_id", game.PoolID, "game_id", game.ID, "code", common.CodeOf(err))
				continue
			}
			common.LogJobError(db, "settle_final_games", fmt.Errorf("game %d: %w", game.ID, err))
			continue
		}
		if created {
			settled = append(settled, Settlement{Game: game, Result: result})
		}
	}
	return settled, nil
}

func announceSettlement(s *discordgo.Session, db *gorm.DB, settlement Settlement) {
	guilds, err := guildService.GuildsForPool(db, settlement.Game.PoolID)
	if err != nil {
		common.LogJobError(db, "announce_settlement", err)
		return
	}

	embed := messageService.SettlementEmbed(&settlement.Game, settlement.Result, resultService.WinnerName(db, settlement.Result))
	for _, guild := range guilds {
		if guild.AnnounceChannelID == "" {
			continue
		}
		if _, err := s.ChannelMessageSendEmbed(guild.AnnounceChannelID, embed); err != nil {
			logger.Errorw("announce_failed", "guild_id", guild.GuildID, "error", err)
		}
	}
}
