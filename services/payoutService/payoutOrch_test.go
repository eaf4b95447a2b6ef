package payoutService

import (
	"context"
	"errors"
	"squaresPoolBot/models"
	"squaresPoolBot/services/common"
	"squaresPoolBot/services/testutil"
	"testing"
	"time"
)

func fullPayouts(amount int64) map[string]int64 {
	payouts := make(map[string]int64, len(RoundKeys))
	for _, roundKey := range RoundKeys {
		payouts[roundKey] = amount
	}
	return payouts
}

func TestValidatePayouts(t *testing.T) {
	tests := []struct {
		name     string
		payouts  map[string]int64
		expected error
	}{
		{name: "complete", payouts: fullPayouts(1000), expected: nil},
		{name: "zero amounts allowed", payouts: fullPayouts(0), expected: nil},
		{
			name: "unknown round",
			payouts: func() map[string]int64 {
				p := fullPayouts(1000)
				p["first_four"] = 500
				return p
			}(),
			expected: common.ErrInvalidRoundKey,
		},
		{
			name: "missing round",
			payouts: func() map[string]int64 {
				p := fullPayouts(1000)
				delete(p, Championship)
				return p
			}(),
			expected: common.ErrMissingRoundKey,
		},
		{
			name: "negative amount",
			payouts: func() map[string]int64 {
				p := fullPayouts(1000)
				p[Sweet16] = -1
				return p
			}(),
			expected: common.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayouts(tt.payouts)
			if tt.expected == nil {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestSubmitPayouts_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	pool := testutil.SeedPool(t, db, models.PoolStatusOpen)

	if err := SeedDefaultPayouts(db, pool.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	submitted := map[string]int64{
		RoundOf64:    1000,
		RoundOf32:    2000,
		Sweet16:      3000,
		Elite8:       4000,
		Final4:       5000,
		Championship: 60000,
	}
	latest, err := SubmitPayouts(ctx, db, pool.ID, submitted, "admin")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for roundKey, amount := range submitted {
		if latest.Payouts[roundKey] != amount {
			t.Errorf("Round %s: expected %d, got %d", roundKey, amount, latest.Payouts[roundKey])
		}
		current, err := CurrentPayout(db, pool.ID, roundKey)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if current.AmountCents != amount {
			t.Errorf("Round %s: current payout expected %d, got %d", roundKey, amount, current.AmountCents)
		}
	}
	if latest.LastUpdated == nil {
		t.Error("Expected last_updated to be set")
	}

	history, err := History(db, pool.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(history) != 2*len(RoundKeys) {
		t.Errorf("Expected superseded rows to be kept, got %d rows", len(history))
	}
}

func TestCurrentPayout_LatestEffectiveWins(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	pool := testutil.SeedPool(t, db, models.PoolStatusOpen)

	base := time.Now().UTC().Add(-time.Hour)
	testutil.SeedPayouts(t, db, pool.ID, map[string]int64{Elite8: 100}, base)
	testutil.SeedPayouts(t, db, pool.ID, map[string]int64{Elite8: 300}, base.Add(30*time.Minute))
	// Backdated row inserted last must not become current
	testutil.SeedPayouts(t, db, pool.ID, map[string]int64{Elite8: 200}, base.Add(-time.Hour))

	current, err := CurrentPayout(db, pool.ID, Elite8)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if current.AmountCents != 300 {
		t.Errorf("Expected 300, got %d", current.AmountCents)
	}

	// Same effective time: highest id wins
	same := base.Add(45 * time.Minute)
	testutil.SeedPayouts(t, db, pool.ID, map[string]int64{Final4: 1}, same)
	testutil.SeedPayouts(t, db, pool.ID, map[string]int64{Final4: 2}, same)
	current, err = CurrentPayout(db, pool.ID, Final4)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if current.AmountCents != 2 {
		t.Errorf("Expected 2, got %d", current.AmountCents)
	}

	_, err = CurrentPayout(db, pool.ID, Championship)
	if !errors.Is(err, common.ErrPayoutsMissing) {
		t.Errorf("Expected payouts_missing, got %v", err)
	}
}

func TestSubmitPayouts_LockedPool(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	pool := testutil.SeedPool(t, db, models.PoolStatusLocked)

	_, err := SubmitPayouts(context.Background(), db, pool.ID, fullPayouts(1000), "admin")
	if !errors.Is(err, common.ErrPoolLocked) {
		t.Fatalf("Expected pool_locked, got %v", err)
	}

	var count int64
	db.Model(&models.PayoutConfig{}).Where("pool_id = ?", pool.ID).Count(&count)
	if count != 0 {
		t.Errorf("Expected no payout rows, got %d", count)
	}
}

func TestMissingRounds(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	pool := testutil.SeedPool(t, db, models.PoolStatusOpen)

	missing, err := MissingRounds(db, pool.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(missing) != len(RoundKeys) {
		t.Errorf("Expected all rounds missing, got %v", missing)
	}

	testutil.SeedPayouts(t, db, pool.ID, map[string]int64{RoundOf64: 1, RoundOf32: 1}, time.Now().UTC())
	missing, err = MissingRounds(db, pool.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(missing) != 4 || missing[0] != Sweet16 {
		t.Errorf("Expected 4 missing rounds starting at sweet_16, got %v", missing)
	}
}
