package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// PresenceTTL bounds how long stale presence records linger.
	// Activity filtering happens at read time; the TTL only garbage
	// collects projects nobody touches anymore.
	PresenceTTL time.Duration

	// ChallengeTTL bounds how long resolved challenge records are kept
	ChallengeTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		PresenceTTL:  24 * time.Hour,
		ChallengeTTL: 7 * 24 * time.Hour,
	}
}
