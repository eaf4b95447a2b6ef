package common

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestPoolErrorIs(t *testing.T) {
	detailed := ErrInvalidRoundKey.WithDetails([]string{"first_four"})

	if !errors.Is(detailed, ErrInvalidRoundKey) {
		t.Error("Expected a detailed copy to match its sentinel")
	}
	if errors.Is(detailed, ErrMissingRoundKey) {
		t.Error("Expected different codes not to match")
	}
	if ErrInvalidRoundKey.Details != nil {
		t.Error("WithDetails must not mutate the sentinel")
	}

	wrapped := fmt.Errorf("submitting payouts: %w", detailed)
	if !errors.Is(wrapped, ErrInvalidRoundKey) || CodeOf(wrapped) != "invalid_round_key" {
		t.Errorf("Expected the code to survive wrapping, got %s", CodeOf(wrapped))
	}
}

func TestCodeAndKind(t *testing.T) {
	tests := []struct {
		err       error
		code      string
		kind      ErrorKind
		retryable bool
	}{
		{ErrPoolLocked, "pool_locked", KindConflict, true},
		{ErrTieScore, "tie_score", KindConflict, true},
		{ErrDigitsNotVisible, "digits_not_visible", KindPrecondition, true},
		{ErrInvalidAmount, "invalid_amount", KindValidation, false},
		{ErrGameNotFound, "game_not_found", KindNotFound, false},
		{ErrFinalizeFailed, "finalize_failed", KindInternal, false},
		{errors.New("connection reset"), CodeInternalError, KindInternal, false},
	}

	for _, tt := range tests {
		if got := CodeOf(tt.err); got != tt.code {
			t.Errorf("CodeOf(%v) = %s, expected %s", tt.err, got, tt.code)
		}
		if got := KindOf(tt.err); got != tt.kind {
			t.Errorf("KindOf(%v) = %s, expected %s", tt.err, got, tt.kind)
		}
		if got := IsRetryable(tt.err); got != tt.retryable {
			t.Errorf("IsRetryable(%v) = %v, expected %v", tt.err, got, tt.retryable)
		}
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "ignored") != nil {
		t.Error("Expected nil to stay nil")
	}
	if err := Wrap(ErrPoolLocked, "assigning square"); err != ErrPoolLocked {
		t.Errorf("Expected domain errors to pass through, got %v", err)
	}
	base := errors.New("disk full")
	err := Wrap(base, "saving result")
	if !errors.Is(err, base) || err.Error() != "saving result: disk full" {
		t.Errorf("Unexpected wrapped error %v", err)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(ErrPoolLocked); !strings.Contains(got, "`pool_locked`") || !strings.Contains(got, "try again") {
		t.Errorf("Unexpected conflict message %q", got)
	}
	if got := UserMessage(ErrInvalidCell); got != "Request rejected: `invalid_cell`." {
		t.Errorf("Unexpected validation message %q", got)
	}
	if got := UserMessage(errors.New("boom")); strings.Contains(got, "boom") {
		t.Errorf("Internal errors must not leak, got %q", got)
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents    int64
		expected string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{2500, "$25.00"},
		{26000, "$260.00"},
		{123456, "$1234.56"},
	}

	for _, tt := range tests {
		if got := FormatCents(tt.cents); got != tt.expected {
			t.Errorf("FormatCents(%d) = %s, expected %s", tt.cents, got, tt.expected)
		}
	}
}

func TestActor(t *testing.T) {
	if got := Actor(nil); got != "system" {
		t.Errorf("Expected system, got %s", got)
	}

	guild := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{User: &discordgo.User{ID: "42"}},
	}}
	if got := Actor(guild); got != "discord:42" {
		t.Errorf("Expected discord:42, got %s", got)
	}

	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "7"},
	}}
	if got := Actor(dm); got != "discord:7" {
		t.Errorf("Expected discord:7, got %s", got)
	}
}

func TestGetUsernameFromUser(t *testing.T) {
	if got := GetUsernameFromUser(nil); got != "Unknown User" {
		t.Errorf("Unexpected name %s", got)
	}
	if got := GetUsernameFromUser(&discordgo.User{Username: "alice", GlobalName: "Alice"}); got != "Alice" {
		t.Errorf("Expected the global name, got %s", got)
	}
	if got := GetUsernameFromUser(&discordgo.User{Username: "alice"}); got != "alice" {
		t.Errorf("Expected the username, got %s", got)
	}
}

func TestDollarsToCents(t *testing.T) {
	tests := []struct {
		dollars  float64
		expected int64
	}{
		{25, 2500},
		{0.1, 10},
		{19.999, 2000},
		{260.5, 26050},
	}

	for _, tt := range tests {
		if got := DollarsToCents(tt.dollars); got != tt.expected {
			t.Errorf("DollarsToCents(%v) = %d, expected %d", tt.dollars, got, tt.expected)
		}
	}
}
