package resultService

import (
	"fmt"
	"squaresPoolBot/models"
	"time"

	"gorm.io/gorm"
)

type PoolResult struct {
	ID                   uint      `json:"id"`
	GameID               uint      `json:"game_id"`
	RoundKey             string    `json:"round_key"`
	TeamA                string    `json:"team_a"`
	TeamB                string    `json:"team_b"`
	ScoreA               *int      `json:"score_a"`
	ScoreB               *int      `json:"score_b"`
	WinDigit             int       `json:"win_digit"`
	LoseDigit            int       `json:"lose_digit"`
	RowIndex             int       `json:"row_index"`
	ColIndex             int       `json:"col_index"`
	WinningSquareID      uint      `json:"winning_square_id"`
	WinningParticipantID *uint     `json:"winning_participant_id"`
	ParticipantName      *string   `json:"participant_name"`
	PayoutAmountCents    int64     `json:"payout_amount_cents"`
	FinalizedAt          time.Time `json:"finalized_at"`
}

// ListPoolResults returns every settled game of a pool, newest first. The winner shown is
// the owner captured at settlement, not the square's current owner.
func ListPoolResults(db *gorm.DB, poolID uint) ([]PoolResult, error) {
	var results []PoolResult
	err := db.Table("game_results").
		Select(`game_results.id, game_results.game_id, games.round_key, games.team_a, games.team_b,
			games.score_a, games.score_b, game_results.win_digit, game_results.lose_digit,
			game_results.row_index, game_results.col_index, game_results.winning_square_id,
			game_results.winning_participant_id, participants.display_name AS participant_name,
			game_results.payout_amount_cents, game_results.finalized_at`).
		Joins("JOIN games ON games.id = game_results.game_id").
		Joins("LEFT JOIN participants ON participants.id = game_results.winning_participant_id").
		Where("game_results.pool_id = ?", poolID).
		Order("game_results.finalized_at desc").
		Order("game_results.id desc").
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("error listing results: %w", err)
	}
	return results, nil
}

// WinnerName returns the display name of the participant captured by a result, or "" when the
// square was unowned.
func WinnerName(db *gorm.DB, result *models.GameResult) string {
	if result.WinningParticipantID == nil {
		return ""
	}
	var participant models.Participant
	if err := db.First(&participant, *result.WinningParticipantID).Error; err != nil {
		return fmt.Sprintf("Participant #%d", *result.WinningParticipantID)
	}
	return participant.DisplayName
}
