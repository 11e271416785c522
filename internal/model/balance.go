package model

import (
	"strings"
	"time"
)

// ProjectCode identifies a coaching project
type ProjectCode string

// PlayerKey is the normalized form of a player name, used for all
// lookups and uniqueness checks
type PlayerKey string

// NormalizePlayerKey derives the lookup key for a player name.
// Keys are case-insensitive and ignore leading/trailing/repeated whitespace.
func NormalizePlayerKey(name string) PlayerKey {
	return PlayerKey(strings.ToLower(strings.Join(strings.Fields(name), " ")))
}

// LockKey returns the canonical mutual-exclusion key for a player's
// balance within a project. All balance mutations serialize on it.
func LockKey(project ProjectCode, player PlayerKey) string {
	return string(project) + "/" + string(player)
}

// Token economy constants
const (
	// AttackTokenCap bounds attack tokens per player
	AttackTokenCap = 1
	// StolenReviewTokenCap bounds review tokens gained through challenges.
	// Independent of the project's configured attempt limit.
	StolenReviewTokenCap = 3
)

// PlayerBalance holds a player's token balances within a project
type PlayerBalance struct {
	ProjectCode  ProjectCode
	PlayerKey    PlayerKey
	DisplayName  string
	ReviewTokens int
	AttackTokens int
	ShieldTokens int
	LastReviewAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DebitAttackToken consumes the player's attack token
func (b *PlayerBalance) DebitAttackToken() error {
	if b.AttackTokens < 1 {
		return ErrInsufficientResource
	}
	b.AttackTokens--
	return nil
}

// CreditAttackToken grants an attack token, capped at AttackTokenCap
func (b *PlayerBalance) CreditAttackToken() {
	if b.AttackTokens < AttackTokenCap {
		b.AttackTokens++
	}
}

// DebitReviewToken consumes one review token
func (b *PlayerBalance) DebitReviewToken() error {
	if b.ReviewTokens < 1 {
		return ErrInsufficientResource
	}
	b.ReviewTokens--
	return nil
}

// CreditReviewToken grants one review token up to the given ceiling.
// A balance already at or above the ceiling is left unchanged.
func (b *PlayerBalance) CreditReviewToken(cap int) {
	if b.ReviewTokens < cap {
		b.ReviewTokens++
	}
}

// DebitShieldToken consumes one shield token
func (b *PlayerBalance) DebitShieldToken() error {
	if b.ShieldTokens < 1 {
		return ErrInsufficientResource
	}
	b.ShieldTokens--
	return nil
}
