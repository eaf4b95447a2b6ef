package participantService

import (
	"context"
	"errors"
	"fmt"
	"squaresPoolBot/models"
	"squaresPoolBot/services/auditService"
	"squaresPoolBot/services/common"
	"squaresPoolBot/services/guardService"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ParticipantInput struct {
	DisplayName string
	ContactInfo *string
}

func (in ParticipantInput) normalize() (ParticipantInput, error) {
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.DisplayName == "" {
		return in, common.ErrNameRequired
	}
	if in.ContactInfo != nil {
		contact := strings.TrimSpace(*in.ContactInfo)
		if contact == "" {
			in.ContactInfo = nil
		} else {
			in.ContactInfo = &contact
		}
	}
	return in, nil
}

func CreateParticipant(ctx context.Context, db *gorm.DB, poolID uint, input ParticipantInput, actor string) (*models.Participant, error) {
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}

	participant := models.Participant{
		PoolID:      poolID,
		DisplayName: input.DisplayName,
		ContactInfo: input.ContactInfo,
	}
	err = guardService.WithPoolUnlockedWrite(ctx, db, poolID, func(tx *gorm.DB) error {
		return tx.Create(&participant).Error
	})
	if err != nil {
		return nil, err
	}

	auditService.Record(ctx, db, auditService.Entry{
		PoolID:     poolID,
		Actor:      actor,
		Action:     auditService.ActionParticipantCreate,
		EntityType: auditService.EntityParticipant,
		EntityID:   fmt.Sprint(participant.ID),
		Metadata:   map[string]interface{}{"display_name": participant.DisplayName},
	})

	return &participant, nil
}

func UpdateParticipant(ctx context.Context, db *gorm.DB, poolID uint, participantID uint, input ParticipantInput, actor string) (*models.Participant, error) {
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}

	var participant *models.Participant
	err = guardService.WithPoolUnlockedWrite(ctx, db, poolID, func(tx *gorm.DB) error {
		participant, err = findParticipant(tx, poolID, participantID)
		if err != nil {
			return err
		}
		participant.DisplayName = input.DisplayName
		participant.ContactInfo = input.ContactInfo
		return tx.Save(participant).Error
	})
	if err != nil {
		return nil, err
	}

	auditService.Record(ctx, db, auditService.Entry{
		PoolID:     poolID,
		Actor:      actor,
		Action:     auditService.ActionParticipantUpdate,
		EntityType: auditService.EntityParticipant,
		EntityID:   fmt.Sprint(participant.ID),
		Metadata:   map[string]interface{}{"display_name": participant.DisplayName},
	})

	return participant, nil
}

// DeleteParticipant removes a participant. A participant who still owns squares is only
// removed when force is set, in which case those squares are released.
func DeleteParticipant(ctx context.Context, db *gorm.DB, poolID uint, participantID uint, force bool, actor string) error {
	var released int64
	err := guardService.WithPoolUnlockedWrite(ctx, db, poolID, func(tx *gorm.DB) error {
		participant, err := findParticipant(tx, poolID, participantID)
		if err != nil {
			return err
		}

		var owned int64
		err = tx.Model(&models.Square{}).Where("pool_id = ? AND participant_id = ?", poolID, participant.ID).Count(&owned).Error
		if err != nil {
			return fmt.Errorf("error counting squares: %w", err)
		}
		if owned > 0 && !force {
			return common.ErrParticipantHasSquares.WithDetails(owned)
		}

		result := tx.Model(&models.Square{}).
			Where("pool_id = ? AND participant_id = ?", poolID, participant.ID).
			Update("participant_id", nil)
		if result.Error != nil {
			return fmt.Errorf("error releasing squares: %w", result.Error)
		}
		released = result.RowsAffected

		return tx.Delete(participant).Error
	})
	if err != nil {
		return err
	}

	auditService.Record(ctx, db, auditService.Entry{
		PoolID:     poolID,
		Actor:      actor,
		Action:     auditService.ActionParticipantDelete,
		EntityType: auditService.EntityParticipant,
		EntityID:   fmt.Sprint(participantID),
		Metadata:   map[string]interface{}{"force": force, "released_squares": released},
	})

	return nil
}

func findParticipant(tx *gorm.DB, poolID uint, participantID uint) (*models.Participant, error) {
	var participant models.Participant
	err := tx.Where("pool_id = ?", poolID).First(&participant, participantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("error loading participant: %w", err)
	}
	return &participant, nil
}

// ListParticipants returns a pool's participants ordered by name, each with its square count.
func ListParticipants(db *gorm.DB, poolID uint) ([]models.Participant, error) {
	var participants []models.Participant
	err := db.Model(&models.Participant{}).
		Select("participants.*, COUNT(squares.id) AS square_count").
		Joins("LEFT JOIN squares ON squares.participant_id = participants.id").
		Where("participants.pool_id = ?", poolID).
		Group("participants.id").
		Order("participants.display_name asc").
		Order("participants.id asc").
		Find(&participants).Error
	if err != nil {
		return nil, fmt.Errorf("error listing participants: %w", err)
	}
	return participants, nil
}

// AssignSquare sets or clears (participantID nil) the owner of one cell.
func AssignSquare(ctx context.Context, db *gorm.DB, poolID uint, row int, col int, participantID *uint, actor string) (*models.Square, error) {
	if row < 0 || row >= models.GridSize || col < 0 || col >= models.GridSize {
		return nil, common.ErrInvalidCell.WithDetails([2]int{row, col})
	}

	var square models.Square
	var previous *uint
	err := guardService.WithPoolUnlockedWrite(ctx, db, poolID, func(tx *gorm.DB) error {
		if participantID != nil {
			if _, err := findParticipant(tx, poolID, *participantID); err != nil {
				return err
			}
		}

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("pool_id = ? AND row_index = ? AND col_index = ?", poolID, row, col).
			First(&square).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrSquareNotFound
			}
			return fmt.Errorf("error loading square: %w", err)
		}

		previous = square.ParticipantID
		square.ParticipantID = participantID
		return tx.Model(&square).Update("participant_id", participantID).Error
	})
	if err != nil {
		return nil, err
	}

	auditService.Record(ctx, db, auditService.Entry{
		PoolID:     poolID,
		Actor:      actor,
		Action:     auditService.ActionSquareAssign,
		EntityType: auditService.EntitySquare,
		EntityID:   fmt.Sprint(square.ID),
		Metadata: map[string]interface{}{
			"row":                     row,
			"col":                     col,
			"participant_id":          participantID,
			"previous_participant_id": previous,
		},
	})

	return &square, nil
}
