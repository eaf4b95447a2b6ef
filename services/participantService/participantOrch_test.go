package participantService

import (
	"context"
	"errors"
	"squaresPoolBot/models"
	"squaresPoolBot/services/common"
	"squaresPoolBot/services/testutil"
	"testing"
)

func TestCreateParticipant(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	pool := testutil.SeedPool(t, db, models.PoolStatusOpen)

	participant, err := CreateParticipant(ctx, db, pool.ID, ParticipantInput{
		DisplayName: "  Alice  ",
		ContactInfo: testutil.StringPtr("   "),
	}, "admin")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if participant.DisplayName != "Alice" || participant.ContactInfo != nil {
		t.Errorf("Expected trimmed name and no contact, got %+v", participant)
	}

	_, err = CreateParticipant(ctx, db, pool.ID, ParticipantInput{DisplayName: ""}, "admin")
	if !errors.Is(err, common.ErrNameRequired) {
		t.Errorf("Expected display_name_required, got %v", err)
	}
}

func TestUpdateParticipant(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	pool := testutil.SeedPool(t, db, models.PoolStatusOpen)
	other := testutil.SeedPool(t, db, models.PoolStatusOpen)
	participant := testutil.SeedParticipant(t, db, pool.ID, "Alice")

	updated, err := UpdateParticipant(ctx, db, pool.ID, participant.ID, ParticipantInput{
		DisplayName: "Alicia",
		ContactInfo: testutil.StringPtr("alicia@example.com"),
	}, "admin")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if updated.DisplayName != "Alicia" || updated.ContactInfo == nil || *updated.ContactInfo != "alicia@example.com" {
		t.Errorf("Unexpected participant: %+v", updated)
	}

	_, err = UpdateParticipant(ctx, db, other.ID, participant.ID, ParticipantInput{DisplayName: "X"}, "admin")
	if !errors.Is(err, common.ErrParticipantNotFound) {
		t.Errorf("Expected participant_not_found for another pool, got %v", err)
	}
}

func TestDeleteParticipant(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner of squares needs force", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		pool := testutil.SeedPool(t, db, models.PoolStatusOpen)
		participant := testutil.SeedParticipant(t, db, pool.ID, "Alice")
		testutil.AssignCell(t, db, pool.ID, 1, 1, participant.ID)
		testutil.AssignCell(t, db, pool.ID, 2, 2, participant.ID)

		err := DeleteParticipant(ctx, db, pool.ID, participant.ID, false, "admin")
		if !errors.Is(err, common.ErrParticipantHasSquares) {
			t.Fatalf("Expected participant_has_squares, got %v", err)
		}

		if err := DeleteParticipant(ctx, db, pool.ID, participant.ID, true, "admin"); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		var owned int64
		db.Model(&models.Square{}).Where("participant_id = ?", participant.ID).Count(&owned)
		if owned != 0 {
			t.Errorf("Expected squares to be released, got %d", owned)
		}
		var remaining int64
		db.Model(&models.Participant{}).Where("id = ?", participant.ID).Count(&remaining)
		if remaining != 0 {
			t.Error("Expected participant to be deleted")
		}
	})

	t.Run("Unknown participant", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		pool := testutil.SeedPool(t, db, models.PoolStatusOpen)

		err := DeleteParticipant(ctx, db, pool.ID, 99, false, "admin")
		if !errors.Is(err, common.ErrParticipantNotFound) {
			t.Errorf("Expected participant_not_found, got %v", err)
		}
	})
}

func TestListParticipants(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	pool := testutil.SeedPool(t, db, models.PoolStatusOpen)
	bob := testutil.SeedParticipant(t, db, pool.ID, "Bob")
	alice := testutil.SeedParticipant(t, db, pool.ID, "Alice")
	testutil.AssignCell(t, db, pool.ID, 0, 0, bob.ID)
	testutil.AssignCell(t, db, pool.ID, 0, 1, bob.ID)
	testutil.AssignCell(t, db, pool.ID, 0, 2, alice.ID)

	participants, err := ListParticipants(db, pool.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(participants) != 2 {
		t.Fatalf("Expected 2 participants, got %d", len(participants))
	}
	if participants[0].DisplayName != "Alice" || participants[0].SquareCount != 1 {
		t.Errorf("Unexpected first participant: %+v", participants[0])
	}
	if participants[1].DisplayName != "Bob" || participants[1].SquareCount != 2 {
		t.Errorf("Unexpected second participant: %+v", participants[1])
	}
}

func TestAssignSquare(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	pool := testutil.SeedPool(t, db, models.PoolStatusOpen)
	other := testutil.SeedPool(t, db, models.PoolStatusOpen)
	alice := testutil.SeedParticipant(t, db, pool.ID, "Alice")
	stranger := testutil.SeedParticipant(t, db, other.ID, "Stranger")

	square, err := AssignSquare(ctx, db, pool.ID, 4, 7, &alice.ID, "admin")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if square.ParticipantID == nil || *square.ParticipantID != alice.ID {
		t.Errorf("Expected square owned by Alice, got %+v", square)
	}

	square, err = AssignSquare(ctx, db, pool.ID, 4, 7, nil, "admin")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var stored models.Square
	db.First(&stored, square.ID)
	if stored.ParticipantID != nil {
		t.Errorf("Expected square to be cleared, got %v", *stored.ParticipantID)
	}

	if _, err := AssignSquare(ctx, db, pool.ID, 10, 0, &alice.ID, "admin"); !errors.Is(err, common.ErrInvalidCell) {
		t.Errorf("Expected invalid_cell, got %v", err)
	}
	if _, err := AssignSquare(ctx, db, pool.ID, 0, 0, &stranger.ID, "admin"); !errors.Is(err, common.ErrParticipantNotFound) {
		t.Errorf("Expected participant_not_found for another pool's participant, got %v", err)
	}

	var audits int64
	db.Model(&models.AuditEvent{}).Where("action = ?", "square_assign").Count(&audits)
	if audits != 2 {
		t.Errorf("Expected 2 assign audit events, got %d", audits)
	}
}
