package auditService

import (
	"context"
	"encoding/json"
	"fmt"
	"squaresPoolBot/models"
	"squaresPoolBot/utils/logger"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionPoolCreate        = "pool_create"
	ActionPoolLock          = "pool_lock"
	ActionDigitsRandomize   = "digits_randomize"
	ActionDigitsReveal      = "digits_reveal"
	ActionSquareAssign      = "square_assign"
	ActionPayoutsUpdate     = "payouts_update"
	ActionGameCreate        = "game_create"
	ActionGameUpdate        = "game_update"
	ActionGameDelete        = "game_delete"
	ActionGameScore         = "game_score"
	ActionGameFinalize      = "game_finalize"
	ActionParticipantCreate = "participant_create"
	ActionParticipantUpdate = "participant_update"
	ActionParticipantDelete = "participant_delete"
)

const (
	EntityPool         = "pool"
	EntityDigitMap     = "digit_map"
	EntitySquare       = "square"
	EntityPayoutConfig = "payout_config"
	EntityGame         = "game"
	EntityGameResult   = "game_result"
	EntityParticipant  = "participant"
)

const SystemActor = "system"

type Entry struct {
	PoolID     uint
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	Metadata   map[string]interface{}
}

// Record appends an audit event. It is best-effort: failures are logged and never returned,
// so callers must invoke it only after their own transaction has committed.
func Record(ctx context.Context, db *gorm.DB, entry Entry) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("audit_log_failed", "action", entry.Action, "panic", r)
		}
	}()

	if err := insert(ctx, db, entry); err != nil {
		logger.Errorw("audit_log_failed", "action", entry.Action, "pool_id", entry.PoolID, "error", err)
	}
}

func insert(ctx context.Context, db *gorm.DB, entry Entry) error {
	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("error encoding audit metadata: %v", err)
	}

	actor := entry.Actor
	if actor == "" {
		actor = SystemActor
	}

	event := models.AuditEvent{
		Actor:      actor,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		RequestID:  uuid.NewString(),
		Metadata:   datatypes.JSON(raw),
		CreatedAt:  time.Now().UTC(),
	}
	if entry.PoolID != 0 {
		poolID := entry.PoolID
		event.PoolID = &poolID
	}

	return db.WithContext(ctx).Create(&event).Error
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type ListOptions struct {
	Limit    int
	Before   *time.Time
	BeforeID uint
}

// ListAuditEvents returns a pool's events newest first. Before/BeforeID form a keyset cursor
// taken from the last event of the previous page.
func ListAuditEvents(ctx context.Context, db *gorm.DB, poolID uint, opts ListOptions) ([]models.AuditEvent, error) {
	query := db.WithContext(ctx).Where("pool_id = ?", poolID)

	if opts.Before != nil && opts.BeforeID != 0 {
		query = query.Where("(created_at < ? OR (created_at = ? AND id < ?))", *opts.Before, *opts.Before, opts.BeforeID)
	} else if opts.Before != nil {
		query = query.Where("created_at < ?", *opts.Before)
	}

	var events []models.AuditEvent
	err := query.Order("created_at desc").Order("id desc").Limit(ClampLimit(opts.Limit)).Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("error listing audit events: %v", err)
	}
	return events, nil
}

func ClampLimit(limit int) int {
	if limit == 0 {
		return defaultListLimit
	}
	if limit < 1 {
		return 1
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
