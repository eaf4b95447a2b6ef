package gameService

import (
	"context"
	"errors"
	"fmt"
	"squaresPoolBot/models"
	"squaresPoolBot/services/auditService"
	"squaresPoolBot/services/common"
	"squaresPoolBot/services/guardService"
	"squaresPoolBot/services/payoutService"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GameInput struct {
	RoundKey   string
	TeamA      string
	TeamB      string
	Status     models.GameStatus
	ExternalID *string
	ScoreA     *int
	ScoreB     *int
	StartTime  *time.Time
}

func IsValidStatus(status models.GameStatus) bool {
	switch status {
	case models.GameStatusScheduled, models.GameStatusInProgress, models.GameStatusFinal:
		return true
	}
	return false
}

func (in GameInput) validate() (GameInput, error) {
	in.TeamA = strings.TrimSpace(in.TeamA)
	in.TeamB = strings.TrimSpace(in.TeamB)
	if in.TeamA == "" || in.TeamB == "" {
		return in, common.ErrTeamNamesRequired
	}
	if !payoutService.IsValidRoundKey(in.RoundKey) {
		return in, common.ErrInvalidRoundKey.WithDetails(in.RoundKey)
	}
	if in.Status == "" {
		in.Status = models.GameStatusScheduled
	}
	if !IsValidStatus(in.Status) {
		return in, common.ErrInvalidStatus.WithDetails(string(in.Status))
	}
	if err := validateScores(in.ScoreA, in.ScoreB); err != nil {
		return in, err
	}
	return in, nil
}

func validateScores(scores ...*int) error {
	for _, score := range scores {
		if score != nil && *score < 0 {
			return common.ErrInvalidScore.WithDetails(*score)
		}
	}
	return nil
}

func (in GameInput) apply(game *models.Game) {
	game.RoundKey = in.RoundKey
	game.TeamA = in.TeamA
	game.TeamB = in.TeamB
	game.Status = in.Status
	game.ExternalID = in.ExternalID
	game.ScoreA = in.ScoreA
	game.ScoreB = in.ScoreB
	game.StartTime = in.StartTime
}

func CreateGame(ctx context.Context, db *gorm.DB, poolID uint, input GameInput, actor string) (*models.Game, error) {
	input, err := input.validate()
	if err != nil {
		return nil, err
	}

	game := models.Game{PoolID: poolID}
	input.apply(&game)
	err = guardService.WithPoolUnlockedWrite(ctx, db, poolID, func(tx *gorm.DB) error {
		return tx.Create(&game).Error
	})
	if err != nil {
		return nil, err
	}

	auditService.Record(ctx, db, auditService.Entry{
		PoolID:     poolID,
		Actor:      actor,
		Action:     auditService.ActionGameCreate,
		EntityType: auditService.EntityGame,
		EntityID:   fmt.Sprint(game.ID),
		Metadata:   gameMetadata(&game),
	})

	return &game, nil
}

func UpdateGame(ctx context.Context, db *gorm.DB, poolID uint, gameID uint, input GameInput, actor string) (*models.Game, error) {
	input, err := input.validate()
	if err != nil {
		return nil, err
	}

	var game *models.Game
	err = guardService.WithPoolUnlockedWrite(ctx, db, poolID, func(tx *gorm.DB) error {
		game, err = lockGameRow(tx, poolID, gameID)
		if err != nil {
			return err
		}
		input.apply(game)
		return tx.Save(game).Error
	})
	if err != nil {
		return nil, err
	}

	auditService.Record(ctx, db, auditService.Entry{
		PoolID:     poolID,
		Actor:      actor,
		Action:     auditService.ActionGameUpdate,
		EntityType: auditService.EntityGame,
		EntityID:   fmt.Sprint(game.ID),
		Metadata:   gameMetadata(game),
	})

	return game, nil
}

func DeleteGame(ctx context.Context, db *gorm.DB, poolID uint, gameID uint, actor string) error {
	err := guardService.WithPoolUnlockedWrite(ctx, db, poolID, func(tx *gorm.DB) error {
		game, err := lockGameRow(tx, poolID, gameID)
		if err != nil {
			return err
		}
		return tx.Delete(game).Error
	})
	if err != nil {
		return err
	}

	auditService.Record(ctx, db, auditService.Entry{
		PoolID:     poolID,
		Actor:      actor,
		Action:     auditService.ActionGameDelete,
		EntityType: auditService.EntityGame,
		EntityID:   fmt.Sprint(gameID),
	})

	return nil
}

type ScoreReport struct {
	Status models.GameStatus
	ScoreA *int
	ScoreB *int
}

// ReportScore records live or final scores. It is allowed after lock, since games keep being
// played once the board is frozen, but never once the game is settled.
func ReportScore(ctx context.Context, db *gorm.DB, poolID uint, gameID uint, report ScoreReport, actor string) (*models.Game, bool, error) {
	if !IsValidStatus(report.Status) {
		return nil, false, common.ErrInvalidStatus.WithDetails(string(report.Status))
	}
	if err := validateScores(report.ScoreA, report.ScoreB); err != nil {
		return nil, false, err
	}

	var game *models.Game
	changed := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		game, err = lockGameRow(tx, poolID, gameID)
		if err != nil {
			return err
		}

		var settled int64
		err = tx.Model(&models.GameResult{}).Where("pool_id = ? AND game_id = ?", poolID, gameID).Count(&settled).Error
		if err != nil {
			return fmt.Errorf("error checking settlement: %v", err)
		}
		if settled > 0 {
			return common.ErrGameAlreadySettled
		}

		if game.Status == report.Status && equalScore(game.ScoreA, report.ScoreA) && equalScore(game.ScoreB, report.ScoreB) {
			return nil
		}

		game.Status = report.Status
		game.ScoreA = report.ScoreA
		game.ScoreB = report.ScoreB
		changed = true
		return tx.Model(game).Select("status", "score_a", "score_b").Updates(game).Error
	})
	if err != nil {
		return nil, false, err
	}

	if changed {
		auditService.Record(ctx, db, auditService.Entry{
			PoolID:     poolID,
			Actor:      actor,
			Action:     auditService.ActionGameScore,
			EntityType: auditService.EntityGame,
			EntityID:   fmt.Sprint(game.ID),
			Metadata:   gameMetadata(game),
		})
	}

	return game, changed, nil
}

func equalScore(a *int, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func GetGame(db *gorm.DB, poolID uint, gameID uint) (*models.Game, error) {
	return findGame(db, poolID, gameID)
}

// LockGameRow loads a game FOR UPDATE inside the caller's transaction.
func LockGameRow(tx *gorm.DB, poolID uint, gameID uint) (*models.Game, error) {
	return lockGameRow(tx, poolID, gameID)
}

func lockGameRow(tx *gorm.DB, poolID uint, gameID uint) (*models.Game, error) {
	return findGame(tx.Clauses(clause.Locking{Strength: "UPDATE"}), poolID, gameID)
}

func findGame(db *gorm.DB, poolID uint, gameID uint) (*models.Game, error) {
	var game models.Game
	err := db.Where("pool_id = ?", poolID).First(&game, gameID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrGameNotFound
		}
		return nil, fmt.Errorf("error loading game: %w", err)
	}
	return &game, nil
}

type ListFilter struct {
	RoundKey string
	Status   models.GameStatus
}

func ListGames(db *gorm.DB, poolID uint, filter ListFilter) ([]models.Game, error) {
	query := db.Where("pool_id = ?", poolID)
	if filter.RoundKey != "" {
		query = query.Where("round_key = ?", filter.RoundKey)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var games []models.Game
	err := query.Order("start_time asc").Order("id asc").Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("error listing games: %w", err)
	}
	return games, nil
}

// ListUnsettledFinalGames returns final games of locked pools that have no result yet.
func ListUnsettledFinalGames(db *gorm.DB) ([]models.Game, error) {
	var games []models.Game
	err := db.Model(&models.Game{}).
		Joins("JOIN pools ON pools.id = games.pool_id AND pools.deleted_at IS NULL").
		Joins("LEFT JOIN game_results ON game_results.game_id = games.id AND game_results.pool_id = games.pool_id").
		Where("games.status = ? AND pools.status = ? AND game_results.id IS NULL", models.GameStatusFinal, models.PoolStatusLocked).
		Order("games.id asc").
		Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("error listing unsettled games: %w", err)
	}
	return games, nil
}

// ListTrackedGames returns games linked to an external feed that are not final yet.
func ListTrackedGames(db *gorm.DB) ([]models.Game, error) {
	var games []models.Game
	err := db.Where("external_id IS NOT NULL AND status <> ?", models.GameStatusFinal).
		Order("id asc").
		Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("error listing tracked games: %w", err)
	}
	return games, nil
}

func gameMetadata(game *models.Game) map[string]interface{} {
	return map[string]interface{}{
		"round_key": game.RoundKey,
		"team_a":    game.TeamA,
		"team_b":    game.TeamB,
		"status":    string(game.Status),
		"score_a":   game.ScoreA,
		"score_b":   game.ScoreB,
	}
}
