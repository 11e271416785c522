package request

// InitPlayerRequest is the request body for player initialization
type InitPlayerRequest struct {
	Player string `json:"player"`
}

// HeartbeatRequest is the request body for liveness pings
type HeartbeatRequest struct {
	Player    string `json:"player"`
	SessionID string `json:"session_id"`
}

// InitiateChallengeRequest is the request body for starting a challenge
type InitiateChallengeRequest struct {
	Attacker string `json:"attacker"`
	Target   string `json:"target"`
}

// RespondChallengeRequest is the request body for answering a challenge
type RespondChallengeRequest struct {
	UseShield bool `json:"use_shield"`
}

// SubmitReviewRequest is the request body for a review submission
type SubmitReviewRequest struct {
	Player string `json:"player"`
	Essay  string `json:"essay"`
}
