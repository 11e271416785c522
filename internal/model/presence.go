package model

import "time"

// ActiveWindow is the sliding window within which a player counts as active
const ActiveWindow = 2 * time.Minute

// PresenceRecord tracks a player's liveness within a project.
// Records are upserted on every heartbeat; staleness is a read-time
// filter, never a deletion.
type PresenceRecord struct {
	ProjectCode ProjectCode
	PlayerKey   PlayerKey
	PlayerName  string
	SessionID   string
	LastSeen    time.Time
}

// ActiveAt reports whether the record counts as active at the given time
func (p *PresenceRecord) ActiveAt(now time.Time) bool {
	return now.Sub(p.LastSeen) < ActiveWindow
}

// ActivePlayer is a presence entry annotated for the attack target list
type ActivePlayer struct {
	PlayerKey    PlayerKey
	PlayerName   string
	ReviewTokens int
	ShieldTokens int
	CanChallenge bool
}
