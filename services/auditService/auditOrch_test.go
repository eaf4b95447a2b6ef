package auditService

import (
	"context"
	"encoding/json"
	"errors"
	"squaresPoolBot/models"
	"squaresPoolBot/services/testutil"
	"testing"
	"time"
)

func TestRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores the event", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)

		Record(ctx, db, Entry{
			PoolID:     3,
			Actor:      "discord:42",
			Action:     ActionPoolLock,
			EntityType: EntityPool,
			EntityID:   "3",
			Metadata:   map[string]interface{}{"previous_status": "open"},
		})

		var events []models.AuditEvent
		db.Find(&events)
		if len(events) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(events))
		}
		event := events[0]
		if event.PoolID == nil || *event.PoolID != 3 || event.Actor != "discord:42" || event.Action != ActionPoolLock {
			t.Errorf("Unexpected event: %+v", event)
		}
		if len(event.RequestID) != 36 {
			t.Errorf("Expected a request id, got %q", event.RequestID)
		}

		var metadata map[string]interface{}
		if err := json.Unmarshal(event.Metadata, &metadata); err != nil {
			t.Fatalf("Metadata is not valid json: %v", err)
		}
		if metadata["previous_status"] != "open" {
			t.Errorf("Unexpected metadata: %v", metadata)
		}
	})

	t.Run("Defaults actor and metadata", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)

		Record(ctx, db, Entry{Action: ActionGameFinalize})

		var event models.AuditEvent
		db.First(&event)
		if event.Actor != SystemActor || event.PoolID != nil || string(event.Metadata) != "{}" {
			t.Errorf("Unexpected event: %+v", event)
		}
	})

	t.Run("Failures are swallowed", func(t *testing.T) {
		db, mock, err := testutil.NewMockDB()
		if err != nil {
			t.Fatalf("Failed to create mock DB: %v", err)
		}
		defer func() {
			sqlDB, _ := db.DB()
			sqlDB.Close()
		}()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO `audit_events`").
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		Record(ctx, db, Entry{PoolID: 1, Action: ActionPoolLock})

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})

	t.Run("Nil database does not panic", func(t *testing.T) {
		Record(ctx, nil, Entry{Action: ActionPoolLock})
	})
}

func TestListAuditEvents(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)

	poolID := uint(1)
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		event := models.AuditEvent{
			PoolID:    &poolID,
			Actor:     SystemActor,
			Action:    ActionSquareAssign,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Metadata:  []byte("{}"),
		}
		db.Create(&event)
	}
	other := uint(2)
	db.Create(&models.AuditEvent{PoolID: &other, Actor: SystemActor, Action: ActionPoolLock, CreatedAt: base, Metadata: []byte("{}")})

	page, err := ListAuditEvents(ctx, db, poolID, ListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(page) != 2 || page[0].ID != 5 || page[1].ID != 4 {
		t.Fatalf("Expected events 5 and 4, got %+v", page)
	}

	last := page[len(page)-1]
	next, err := ListAuditEvents(ctx, db, poolID, ListOptions{Limit: 10, Before: &last.CreatedAt, BeforeID: last.ID})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(next) != 3 || next[0].ID != 3 || next[2].ID != 1 {
		t.Errorf("Expected events 3 to 1, got %+v", next)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		limit    int
		expected int
	}{
		{0, 50},
		{-5, 1},
		{1, 1},
		{75, 75},
		{200, 200},
		{1000, 200},
	}

	for _, tt := range tests {
		if got := ClampLimit(tt.limit); got != tt.expected {
			t.Errorf("ClampLimit(%d) = %d, expected %d", tt.limit, got, tt.expected)
		}
	}
}
