package poolService

import (
	"context"
	"errors"
	"fmt"
	"squaresPoolBot/models"
	"squaresPoolBot/services/common"
	"squaresPoolBot/services/digitService"
	"squaresPoolBot/services/payoutService"

	"gorm.io/gorm"
)

const (
	PrereqSquaresAssigned   = "squares_assigned"
	PrereqParticipantsExist = "participants_exist"
	PrereqDigitsRandomized  = "digits_randomized"
	PrereqPayoutsConfigured = "payouts_configured"
)

const (
	FailSquaresUnassigned   = "squares_unassigned"
	FailParticipantsMissing = "participants_missing"
	FailDigitsNotRandomized = "digits_not_randomized"
	FailPayoutsMissing      = "payouts_missing"
)

type PrerequisiteDetails struct {
	TotalSquares        int64    `json:"total_squares"`
	AssignedSquares     int64    `json:"assigned_squares"`
	UnassignedSquares   int64    `json:"unassigned_squares"`
	ParticipantCount    int64    `json:"participant_count"`
	DigitMapExists      bool     `json:"digit_map_exists"`
	WinningDigitsValid  bool     `json:"winning_digits_valid"`
	LosingDigitsValid   bool     `json:"losing_digits_valid"`
	InvalidAxes         []string `json:"invalid_axes"`
	PayoutRoundsMissing []string `json:"payout_rounds_missing"`
}

type LockPrerequisites struct {
	OK            bool                `json:"ok"`
	Failed        []string            `json:"failed"`
	Prerequisites map[string]bool     `json:"prerequisites"`
	Details       PrerequisiteDetails `json:"details"`
}

// CheckLockPrerequisites evaluates every lock condition from scratch. db may be a transaction,
// in which case the reads see that transaction's snapshot.
func CheckLockPrerequisites(ctx context.Context, db *gorm.DB, poolID uint) (*LockPrerequisites, error) {
	db = db.WithContext(ctx)
	report := &LockPrerequisites{
		Failed:        []string{},
		Prerequisites: map[string]bool{},
		Details: PrerequisiteDetails{
			InvalidAxes:         []string{},
			PayoutRoundsMissing: []string{},
		},
	}

	err := db.Model(&models.Square{}).Where("pool_id = ?", poolID).Count(&report.Details.TotalSquares).Error
	if err != nil {
		return nil, fmt.Errorf("error counting squares: %w", err)
	}
	err = db.Model(&models.Square{}).Where("pool_id = ? AND participant_id IS NOT NULL", poolID).Count(&report.Details.AssignedSquares).Error
	if err != nil {
		return nil, fmt.Errorf("error counting assigned squares: %w", err)
	}
	report.Details.UnassignedSquares = report.Details.TotalSquares - report.Details.AssignedSquares
	fullBoard := int64(models.GridSize * models.GridSize)
	report.check(PrereqSquaresAssigned, FailSquaresUnassigned,
		report.Details.TotalSquares == fullBoard && report.Details.AssignedSquares == fullBoard)

	err = db.Model(&models.Participant{}).Where("pool_id = ?", poolID).Count(&report.Details.ParticipantCount).Error
	if err != nil {
		return nil, fmt.Errorf("error counting participants: %w", err)
	}
	report.check(PrereqParticipantsExist, FailParticipantsMissing, report.Details.ParticipantCount > 0)

	digitMap, err := digitService.GetDigitMap(db, poolID)
	if err != nil && !errors.Is(err, common.ErrDigitMapMissing) {
		return nil, err
	}
	if digitMap != nil {
		report.Details.DigitMapExists = true
		report.Details.WinningDigitsValid = digitService.IsValidPermutation(digitMap.WinningDigits)
		report.Details.LosingDigitsValid = digitService.IsValidPermutation(digitMap.LosingDigits)
		if !report.Details.WinningDigitsValid {
			report.Details.InvalidAxes = append(report.Details.InvalidAxes, "winning_digits")
		}
		if !report.Details.LosingDigitsValid {
			report.Details.InvalidAxes = append(report.Details.InvalidAxes, "losing_digits")
		}
	}
	report.check(PrereqDigitsRandomized, FailDigitsNotRandomized,
		report.Details.DigitMapExists && report.Details.WinningDigitsValid && report.Details.LosingDigitsValid)

	missing, err := payoutService.MissingRounds(db, poolID)
	if err != nil {
		return nil, err
	}
	report.Details.PayoutRoundsMissing = missing
	report.check(PrereqPayoutsConfigured, FailPayoutsMissing, len(missing) == 0)

	report.OK = len(report.Failed) == 0
	return report, nil
}

func (r *LockPrerequisites) check(name string, failure string, passed bool) {
	r.Prerequisites[name] = passed
	if !passed {
		r.Failed = append(r.Failed, failure)
	}
}
