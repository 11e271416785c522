package response

import (
	"time"

	"github.com/inkduel/inkduel-go/internal/model"
)

// Balances represents a player's token balances in API responses
type Balances struct {
	Player       string     `json:"player"`
	ReviewTokens int        `json:"review_tokens"`
	AttackTokens int        `json:"attack_tokens"`
	ShieldTokens int        `json:"shield_tokens"`
	LastReviewAt *time.Time `json:"last_review_at,omitempty"`
}

// BalancesFromModel converts a model.PlayerBalance to a response Balances
func BalancesFromModel(b *model.PlayerBalance) Balances {
	return Balances{
		Player:       b.DisplayName,
		ReviewTokens: b.ReviewTokens,
		AttackTokens: b.AttackTokens,
		ShieldTokens: b.ShieldTokens,
		LastReviewAt: b.LastReviewAt,
	}
}

// ActivePlayer represents an attackable-list entry
type ActivePlayer struct {
	Player       string `json:"player"`
	ReviewTokens int    `json:"review_tokens"`
	ShieldTokens int    `json:"shield_tokens"`
	CanChallenge bool   `json:"can_challenge"`
}

// ActivePlayerFromModel converts model.ActivePlayer
func ActivePlayerFromModel(p model.ActivePlayer) ActivePlayer {
	return ActivePlayer{
		Player:       p.PlayerName,
		ReviewTokens: p.ReviewTokens,
		ShieldTokens: p.ShieldTokens,
		CanChallenge: p.CanChallenge,
	}
}

// ActivePlayersResponse is the attackable-target list
type ActivePlayersResponse struct {
	Players []ActivePlayer `json:"players"`
}

// ActivePlayersFromModel converts a slice of model.ActivePlayer
func ActivePlayersFromModel(players []model.ActivePlayer) ActivePlayersResponse {
	out := make([]ActivePlayer, len(players))
	for i, p := range players {
		out[i] = ActivePlayerFromModel(p)
	}
	return ActivePlayersResponse{Players: out}
}

// Challenge represents a challenge in API responses
type Challenge struct {
	ID          string     `json:"id"`
	Attacker    string     `json:"attacker"`
	Target      string     `json:"target"`
	Status      string     `json:"status"`
	ShieldUsed  bool       `json:"shield_used"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// ChallengeFromModel converts a model.Challenge
func ChallengeFromModel(c *model.Challenge) Challenge {
	return Challenge{
		ID:          string(c.ID),
		Attacker:    c.AttackerName,
		Target:      c.TargetName,
		Status:      string(c.Status),
		ShieldUsed:  c.ShieldUsed,
		CreatedAt:   c.CreatedAt,
		ExpiresAt:   c.ExpiresAt,
		RespondedAt: c.RespondedAt,
	}
}

// InitiateChallengeResponse is returned after starting a challenge
type InitiateChallengeResponse struct {
	ChallengeID      string    `json:"challenge_id"`
	ExpiresAt        time.Time `json:"expires_at"`
	AttackerBalances Balances  `json:"attacker_balances"`
}

// RespondChallengeResponse is returned after answering a challenge
type RespondChallengeResponse struct {
	Defended  bool      `json:"defended"`
	Challenge Challenge `json:"challenge"`
	Balances  Balances  `json:"balances"`
}

// SubmitReviewResponse is returned after a successful review submission
type SubmitReviewResponse struct {
	Balances   Balances `json:"balances"`
	CooldownMs int64    `json:"cooldown_ms"`
}
