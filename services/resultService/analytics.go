package resultService

import (
	"fmt"
	"squaresPoolBot/models"

	"gorm.io/gorm"
)

type SquareStat struct {
	SquareID        uint    `json:"square_id"`
	RowIndex        int     `json:"row_index"`
	ColIndex        int     `json:"col_index"`
	ParticipantID   *uint   `json:"participant_id"`
	ParticipantName *string `json:"participant_name"`
	Hits            int64   `json:"hits"`
	PaidCents       int64   `json:"paid_cents"`
}

type SquareStats struct {
	Squares        []SquareStat `json:"squares"`
	GamesSettled   int64        `json:"games_settled"`
	TotalPaidCents int64        `json:"total_paid_cents"`
}

// GetSquareStats reports how often each cell has won and how much it has paid out. Cells that
// never won are included with zero counts.
func GetSquareStats(db *gorm.DB, poolID uint) (*SquareStats, error) {
	var squares []SquareStat
	err := db.Model(&models.Square{}).
		Select(`squares.id AS square_id, squares.row_index, squares.col_index, squares.participant_id,
			participants.display_name AS participant_name,
			COUNT(game_results.id) AS hits,
			COALESCE(SUM(game_results.payout_amount_cents), 0) AS paid_cents`).
		Joins("LEFT JOIN participants ON participants.id = squares.participant_id").
		Joins("LEFT JOIN game_results ON game_results.winning_square_id = squares.id").
		Where("squares.pool_id = ?", poolID).
		Group("squares.id, squares.row_index, squares.col_index, squares.participant_id, participants.display_name").
		Order("squares.row_index asc").
		Order("squares.col_index asc").
		Scan(&squares).Error
	if err != nil {
		return nil, fmt.Errorf("error loading square stats: %w", err)
	}

	stats := &SquareStats{Squares: squares}
	for _, square := range squares {
		stats.GamesSettled += square.Hits
		stats.TotalPaidCents += square.PaidCents
	}
	return stats, nil
}

type LeaderboardEntry struct {
	ParticipantID  uint   `json:"participant_id"`
	DisplayName    string `json:"display_name"`
	Wins           int64  `json:"wins"`
	TotalPaidCents int64  `json:"total_paid_cents"`
}

// GetParticipantLeaderboard ranks the participants who have won at least one game by the
// amount they have been paid. Results settled on unowned squares are not attributed to anyone.
func GetParticipantLeaderboard(db *gorm.DB, poolID uint) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	err := db.Table("game_results").
		Select(`participants.id AS participant_id, participants.display_name,
			COUNT(game_results.id) AS wins,
			COALESCE(SUM(game_results.payout_amount_cents), 0) AS total_paid_cents`).
		Joins("JOIN participants ON participants.id = game_results.winning_participant_id").
		Where("game_results.pool_id = ?", poolID).
		Group("participants.id, participants.display_name").
		Order("total_paid_cents desc").
		Order("wins desc").
		Order("participants.display_name asc").
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("error loading leaderboard: %w", err)
	}
	return entries, nil
}
