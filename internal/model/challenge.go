package model

import "time"

// ChallengeID uniquely identifies a challenge
type ChallengeID string

// ChallengeStatus represents the lifecycle state of a challenge
type ChallengeStatus string

const (
	// ChallengePending is the only non-terminal state
	ChallengePending ChallengeStatus = "pending"
	// ChallengeDefended means the target spent a shield token
	ChallengeDefended ChallengeStatus = "defended"
	// ChallengeSucceeded means the target conceded a review token
	ChallengeSucceeded ChallengeStatus = "succeeded"
	// ChallengeExpired means the window lapsed without a response
	ChallengeExpired ChallengeStatus = "expired"
)

// ChallengeWindow is how long a target has to respond
const ChallengeWindow = 15 * time.Second

// Challenge is a time-boxed attempt by one player to take a review
// token from another
type Challenge struct {
	ID           ChallengeID
	ProjectCode  ProjectCode
	AttackerName string
	AttackerKey  PlayerKey
	TargetName   string
	TargetKey    PlayerKey
	Status       ChallengeStatus
	ShieldUsed   bool
	CreatedAt    time.Time
	ExpiresAt    time.Time
	RespondedAt  *time.Time
}

// IsPending reports whether the challenge can still be resolved
func (c *Challenge) IsPending() bool {
	return c.Status == ChallengePending
}
