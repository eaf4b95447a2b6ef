package common

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindConflict     ErrorKind = "conflict"
	KindPrecondition ErrorKind = "precondition"
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindInternal     ErrorKind = "internal"
)

// PoolError is a domain failure identified by its code. Two PoolErrors match under
// errors.Is when their codes are equal, so sentinels compare equal to copies that carry
// Details.
type PoolError struct {
	Code    string
	Kind    ErrorKind
	Details interface{}
}

func (e *PoolError) Error() string {
	return e.Code
}

func (e *PoolError) Is(target error) bool {
	t, ok := target.(*PoolError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetails returns a copy of e carrying the given diagnostics.
func (e *PoolError) WithDetails(details interface{}) *PoolError {
	return &PoolError{Code: e.Code, Kind: e.Kind, Details: details}
}

func newPoolError(code string, kind ErrorKind) *PoolError {
	return &PoolError{Code: code, Kind: kind}
}

var (
	ErrPoolLocked              = newPoolError("pool_locked", KindConflict)
	ErrLockPrerequisitesFailed = newPoolError("lock_prerequisites_failed", KindConflict)
	ErrTieScore                = newPoolError("tie_score", KindConflict)
	ErrGameAlreadySettled      = newPoolError("game_already_settled", KindConflict)
	ErrParticipantHasSquares   = newPoolError("participant_has_squares", KindConflict)

	ErrDigitMapMissing  = newPoolError("digit_map_missing", KindPrecondition)
	ErrDigitsNotVisible = newPoolError("digits_not_visible", KindPrecondition)
	ErrPoolNotLocked    = newPoolError("pool_not_locked", KindPrecondition)
	ErrGameNotFinal     = newPoolError("game_not_final", KindPrecondition)
	ErrPayoutsMissing   = newPoolError("payouts_missing", KindPrecondition)

	ErrScoresMissing     = newPoolError("scores_missing", KindValidation)
	ErrInvalidRoundKey   = newPoolError("invalid_round_key", KindValidation)
	ErrMissingRoundKey   = newPoolError("missing_round_key", KindValidation)
	ErrInvalidAmount     = newPoolError("invalid_amount", KindValidation)
	ErrInvalidStatus     = newPoolError("invalid_status", KindValidation)
	ErrInvalidScore      = newPoolError("invalid_score", KindValidation)
	ErrTeamNamesRequired = newPoolError("team_names_required", KindValidation)
	ErrNameRequired      = newPoolError("display_name_required", KindValidation)
	ErrInvalidCell       = newPoolError("invalid_cell", KindValidation)

	ErrPoolNotFound        = newPoolError("pool_not_found", KindNotFound)
	ErrGameNotFound        = newPoolError("game_not_found", KindNotFound)
	ErrSquareNotFound      = newPoolError("square_not_found", KindNotFound)
	ErrParticipantNotFound = newPoolError("participant_not_found", KindNotFound)

	ErrInvalidDigitMap = newPoolError("invalid_digit_map", KindInternal)
	ErrFinalizeFailed  = newPoolError("finalize_failed", KindInternal)
)

const CodeInternalError = "internal_error"

// CodeOf returns the domain code carried by err, or internal_error for anything else.
func CodeOf(err error) string {
	var pe *PoolError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return CodeInternalError
}

func KindOf(err error) ErrorKind {
	var pe *PoolError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}

// IsRetryable reports whether the failure is expected to clear once the pool reaches a later
// state (conflicts and unmet preconditions).
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindConflict, KindPrecondition:
		return true
	}
	return false
}

// Wrap keeps domain errors intact and annotates everything else.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	var pe *PoolError
	if errors.As(err, &pe) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
