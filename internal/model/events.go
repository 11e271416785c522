package model

// EventKind identifies a notification event type
type EventKind string

const (
	// EventChallengeIncoming tells a target they are under attack
	EventChallengeIncoming EventKind = "challenge_incoming"
	// EventChallengeResult tells a participant how a challenge ended
	EventChallengeResult EventKind = "challenge_result"
	// EventBalanceChanged tells a player their balances moved
	EventBalanceChanged EventKind = "balance_changed"
)

// Event is a notification pushed to a single player.
// Delivery is fire-and-forget; the core assumes no guarantee.
type Event struct {
	Kind        EventKind      `json:"kind"`
	ProjectCode ProjectCode    `json:"project"`
	Payload     map[string]any `json:"payload,omitempty"`
}
