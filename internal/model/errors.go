package model

import (
	"errors"
	"fmt"
)

// Validation errors. All are detected before any transaction is submitted,
// so a run failing with one of these has no on-chain side effects.
var (
	ErrInvalidPrice      = errors.New("target price must be greater than zero")
	ErrDegeneratePair    = errors.New("token identifiers must differ")
	ErrInsufficientInput = errors.New("at least one amount must be greater than zero")
	ErrInvalidFeeTier    = errors.New("fee tier is not in the legal set")
)

// SubmissionError marks a transaction rejected before inclusion.
type SubmissionError struct {
	Step Step
	Err  error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit %s: %v", e.Step, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// ConfirmationError marks a transaction that reverted or was never included.
type ConfirmationError struct {
	Step Step
	Err  error
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("confirm %s: %v", e.Step, e.Err)
}

func (e *ConfirmationError) Unwrap() error { return e.Err }

// StepOf extracts the failed step from a submission or confirmation error.
func StepOf(err error) (Step, bool) {
	var sub *SubmissionError
	if errors.As(err, &sub) {
		return sub.Step, true
	}
	var conf *ConfirmationError
	if errors.As(err, &conf) {
		return conf.Step, true
	}
	return 0, false
}
