package model

// ProjectLimits holds the per-project settings consumed from the
// project configuration provider
type ProjectLimits struct {
	// ReviewTokenLimit seeds a new player's review token balance
	ReviewTokenLimit int
	// CooldownSeconds is the minimum gap between review submissions
	CooldownSeconds int
}
