package resultService

import (
	"context"
	"errors"
	"fmt"
	"squaresPoolBot/models"
	"squaresPoolBot/services/auditService"
	"squaresPoolBot/services/common"
	"squaresPoolBot/services/digitService"
	"squaresPoolBot/services/gameService"
	"squaresPoolBot/services/payoutService"
	"squaresPoolBot/services/poolService"
	"squaresPoolBot/utils/logger"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Cell struct {
	WinDigit  int
	LoseDigit int
	Row       int
	Col       int
}

// ResolveCell maps a final score onto the board: the winner's last digit picks the row through
// the winning permutation and the loser's last digit picks the column through the losing one.
func ResolveCell(digitMap *models.DigitMap, scoreA int, scoreB int) (Cell, error) {
	winnerScore, loserScore := scoreA, scoreB
	if scoreB > scoreA {
		winnerScore, loserScore = scoreB, scoreA
	}

	cell := Cell{
		WinDigit:  winnerScore % 10,
		LoseDigit: loserScore % 10,
	}
	cell.Row = digitService.IndexOf(digitMap.WinningDigits, cell.WinDigit)
	cell.Col = digitService.IndexOf(digitMap.LosingDigits, cell.LoseDigit)
	if cell.Row < 0 || cell.Col < 0 {
		return cell, common.ErrInvalidDigitMap.WithDetails(cell)
	}
	return cell, nil
}

// FinalizeGame settles a final game and returns its result. An existing result is returned as-is,
// including when a concurrent call inserted it first; created reports whether this call wrote it.
func FinalizeGame(ctx context.Context, db *gorm.DB, poolID uint, gameID uint, actor string) (*models.GameResult, bool, error) {
	existing, err := FindResult(db.WithContext(ctx), poolID, gameID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	var result *models.GameResult
	created := false

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pool, err := poolService.GetPool(tx, poolID)
		if err != nil {
			return err
		}

		// Serializes with ReportScore so the scores read here are the ones settled on.
		game, err := gameService.LockGameRow(tx, poolID, gameID)
		if err != nil {
			return err
		}

		if !pool.IsLocked() {
			return common.ErrPoolNotLocked
		}
		if game.Status != models.GameStatusFinal {
			return common.ErrGameNotFinal
		}
		if !game.HasFinalScores() {
			return common.ErrScoresMissing
		}
		if *game.ScoreA == *game.ScoreB {
			return common.ErrTieScore.WithDetails(*game.ScoreA)
		}

		digitMap, err := digitService.GetDigitMap(tx, poolID)
		if err != nil {
			return err
		}
		if !digitService.IsVisible(digitMap) {
			return common.ErrDigitsNotVisible
		}

		cell, err := ResolveCell(digitMap, *game.ScoreA, *game.ScoreB)
		if err != nil {
			return err
		}

		var square models.Square
		err = tx.Where("pool_id = ? AND row_index = ? AND col_index = ?", poolID, cell.Row, cell.Col).First(&square).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrSquareNotFound.WithDetails(cell)
			}
			return fmt.Errorf("error loading winning square: %w", err)
		}

		payout, err := payoutService.CurrentPayout(tx, poolID, game.RoundKey)
		if err != nil {
			return err
		}

		candidate := models.GameResult{
			PoolID:               poolID,
			GameID:               gameID,
			WinDigit:             cell.WinDigit,
			LoseDigit:            cell.LoseDigit,
			RowIndex:             cell.Row,
			ColIndex:             cell.Col,
			WinningSquareID:      square.ID,
			WinningParticipantID: square.ParticipantID,
			PayoutConfigID:       payout.ID,
			PayoutAmountCents:    payout.AmountCents,
			FinalizedAt:          time.Now().UTC(),
		}
		insert := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&candidate)
		if insert.Error != nil {
			return fmt.Errorf("error saving game result: %w", insert.Error)
		}
		if insert.RowsAffected == 1 {
			result = &candidate
			created = true
			return nil
		}

		// Lost the race. A locking read sees the winner's committed row even under
		// REPEATABLE READ snapshots.
		winner, err := FindResult(tx.Clauses(clause.Locking{Strength: "SHARE"}), poolID, gameID)
		if err != nil {
			return err
		}
		if winner == nil {
			return common.ErrFinalizeFailed
		}
		result = winner
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		logger.Infow("game_finalized",
			"pool_id", poolID,
			"game_id", gameID,
			"row", result.RowIndex,
			"col", result.ColIndex,
			"payout_cents", result.PayoutAmountCents,
		)
		auditService.Record(ctx, db, auditService.Entry{
			PoolID:     poolID,
			Actor:      actor,
			Action:     auditService.ActionGameFinalize,
			EntityType: auditService.EntityGameResult,
			EntityID:   fmt.Sprint(result.ID),
			Metadata: map[string]interface{}{
				"game_id":                gameID,
				"win_digit":              result.WinDigit,
				"lose_digit":             result.LoseDigit,
				"row_index":              result.RowIndex,
				"col_index":              result.ColIndex,
				"winning_participant_id": result.WinningParticipantID,
				"payout_config_id":       result.PayoutConfigID,
				"payout_amount_cents":    result.PayoutAmountCents,
			},
		})
	}

	return result, created, nil
}

// FindResult returns the settlement of a game, or nil when it has not been settled.
func FindResult(db *gorm.DB, poolID uint, gameID uint) (*models.GameResult, error) {
	var result models.GameResult
	query := db.Where("pool_id = ? AND game_id = ?", poolID, gameID).Limit(1).Find(&result)
	if query.Error != nil {
		return nil, fmt.Errorf("error loading game result: %w", query.Error)
	}
	if query.RowsAffected == 0 {
		return nil, nil
	}
	return &result, nil
}
