package model

import (
	"errors"
	"fmt"
	"time"
)

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound  = errors.New("player not found")
	ErrProjectNotFound = errors.New("project not found")

	// Token errors
	ErrInsufficientResource = errors.New("insufficient tokens")
	ErrNoReviewTokens       = errors.New("no review tokens remaining")

	// Challenge errors
	ErrNoStealableResource = errors.New("target has no review tokens to take")
	ErrDuplicateChallenge  = errors.New("a pending challenge already exists for this target")
	ErrChallengeNotFound   = errors.New("challenge not found")
	ErrAlreadyResolved     = errors.New("challenge is no longer pending")

	// Review errors
	ErrGradingFailure = errors.New("grading pipeline failed")
)

// CooldownActiveError is returned when a review is submitted before the
// project cooldown has elapsed
type CooldownActiveError struct {
	Remaining time.Duration
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("review cooldown active for another %dms", e.Remaining.Milliseconds())
}

// RemainingMillis returns the remaining cooldown in whole milliseconds
func (e *CooldownActiveError) RemainingMillis() int64 {
	return e.Remaining.Milliseconds()
}
