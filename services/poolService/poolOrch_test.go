package poolService

import (
	"context"
	"errors"
	"squaresPoolBot/models"
	"squaresPoolBot/services/common"
	"squaresPoolBot/services/payoutService"
	"squaresPoolBot/services/testutil"
	"testing"
	"time"

	"gorm.io/gorm"
)

func TestCreatePoolWithSquares(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)

	pool, err := CreatePoolWithSquares(ctx, db, "  March Madness  ", "admin")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if pool.Name != "March Madness" || pool.Status != models.PoolStatusOpen {
		t.Errorf("Unexpected pool: %+v", pool)
	}

	squares, err := GetSquares(db, pool.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(squares) != 100 {
		t.Fatalf("Expected 100 squares, got %d", len(squares))
	}
	if squares[0].RowIndex != 0 || squares[0].ColIndex != 0 || squares[99].RowIndex != 9 || squares[99].ColIndex != 9 {
		t.Errorf("Expected row-major order, got first %+v last %+v", squares[0], squares[99])
	}

	latest, err := payoutService.GetLatestPayouts(db, pool.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for roundKey, amount := range payoutService.DefaultPayouts {
		if latest.Payouts[roundKey] != amount {
			t.Errorf("Round %s: expected default %d, got %d", roundKey, amount, latest.Payouts[roundKey])
		}
	}

	if _, err := CreatePoolWithSquares(ctx, db, "   ", "admin"); !errors.Is(err, common.ErrNameRequired) {
		t.Errorf("Expected display_name_required, got %v", err)
	}
}

func TestEnsureDefaultPool(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)

	first, err := EnsureDefaultPool(ctx, db, "Main Pool")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := EnsureDefaultPool(ctx, db, "Other Name")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if first.ID != second.ID || second.Name != "Main Pool" {
		t.Errorf("Expected the existing pool to be reused, got %+v and %+v", first, second)
	}

	if _, err := GetPool(db, 12345); !errors.Is(err, common.ErrPoolNotFound) {
		t.Errorf("Expected pool_not_found, got %v", err)
	}
}

func TestGetSquares_ParticipantName(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	pool := testutil.SeedPool(t, db, models.PoolStatusOpen)
	participant := testutil.SeedParticipant(t, db, pool.ID, "Alice")
	testutil.AssignCell(t, db, pool.ID, 3, 4, participant.ID)

	board, err := GetPoolWithSquares(db, pool.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	square := board.Squares[34]
	if square.ParticipantName == nil || *square.ParticipantName != "Alice" {
		t.Errorf("Expected Alice on (3,4), got %+v", square)
	}
	if board.Squares[0].ParticipantName != nil {
		t.Errorf("Expected empty square, got %+v", board.Squares[0])
	}
}

func TestCheckLockPrerequisites(t *testing.T) {
	ctx := context.Background()

	t.Run("All satisfied", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		pool, _ := readyPool(t, db, 0)

		report, err := CheckLockPrerequisites(ctx, db, pool.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !report.OK || len(report.Failed) != 0 {
			t.Errorf("Expected ok, got %+v", report)
		}
		for _, name := range []string{PrereqSquaresAssigned, PrereqParticipantsExist, PrereqDigitsRandomized, PrereqPayoutsConfigured} {
			if !report.Prerequisites[name] {
				t.Errorf("Expected %s to pass", name)
			}
		}
	})

	t.Run("Empty pool fails everything", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		pool := testutil.SeedPool(t, db, models.PoolStatusOpen)

		report, err := CheckLockPrerequisites(ctx, db, pool.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if report.OK {
			t.Fatal("Expected prerequisites to fail")
		}
		expected := []string{FailSquaresUnassigned, FailParticipantsMissing, FailDigitsNotRandomized, FailPayoutsMissing}
		if len(report.Failed) != len(expected) {
			t.Fatalf("Expected %v, got %v", expected, report.Failed)
		}
		for i := range expected {
			if report.Failed[i] != expected[i] {
				t.Errorf("Expected %v, got %v", expected, report.Failed)
			}
		}
		if report.Details.UnassignedSquares != 100 || len(report.Details.PayoutRoundsMissing) != 6 {
			t.Errorf("Unexpected details: %+v", report.Details)
		}
	})

	t.Run("Invalid permutation", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		pool := testutil.SeedPool(t, db, models.PoolStatusOpen)
		testutil.SeedDigitMap(t, db, pool.ID, testutil.Identity(), []int{0, 0, 2, 3, 4, 5, 6, 7, 8, 9}, false, false)

		report, err := CheckLockPrerequisites(ctx, db, pool.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if report.Prerequisites[PrereqDigitsRandomized] {
			t.Error("Expected digits_randomized to fail")
		}
		if !report.Details.DigitMapExists || !report.Details.WinningDigitsValid || report.Details.LosingDigitsValid {
			t.Errorf("Unexpected digit details: %+v", report.Details)
		}
		if len(report.Details.InvalidAxes) != 1 || report.Details.InvalidAxes[0] != "losing_digits" {
			t.Errorf("Expected losing_digits to be flagged, got %v", report.Details.InvalidAxes)
		}
	})

	t.Run("Missing payout round", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		pool := testutil.SeedPool(t, db, models.PoolStatusOpen)
		partial := map[string]int64{}
		for roundKey, amount := range payoutService.DefaultPayouts {
			if roundKey != payoutService.Championship {
				partial[roundKey] = amount
			}
		}
		testutil.SeedPayouts(t, db, pool.ID, partial, time.Now().UTC())

		report, err := CheckLockPrerequisites(ctx, db, pool.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if report.Prerequisites[PrereqPayoutsConfigured] {
			t.Error("Expected payouts_configured to fail")
		}
		if len(report.Details.PayoutRoundsMissing) != 1 || report.Details.PayoutRoundsMissing[0] != payoutService.Championship {
			t.Errorf("Expected championship missing, got %v", report.Details.PayoutRoundsMissing)
		}
	})
}

// readyPool seeds a pool that passes every lock prerequisite except for skip unassigned squares.
func readyPool(t *testing.T, db *gorm.DB, skip int) (*models.Pool, *models.Participant) {
	t.Helper()
	pool := testutil.SeedPool(t, db, models.PoolStatusOpen)
	participant := testutil.SeedParticipant(t, db, pool.ID, "Alice")
	testutil.AssignAll(t, db, pool.ID, participant.ID, skip)
	testutil.SeedDigitMap(t, db, pool.ID, testutil.Identity(), testutil.Identity(), false, false)
	testutil.SeedPayouts(t, db, pool.ID, payoutService.DefaultPayouts, time.Now().UTC())
	return pool, participant
}
