package redis

import (
	"fmt"

	"github.com/inkduel/inkduel-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "inkduel"

// Key generation functions for each entity type

// balanceKey returns the Redis key for a PlayerBalance
func balanceKey(project model.ProjectCode, player model.PlayerKey) string {
	return fmt.Sprintf("%s:balance:%s:%s", keyPrefix, project, player)
}

// balancesIndexKey returns the Redis key for the SET of balance keys in a project
func balancesIndexKey(project model.ProjectCode) string {
	return fmt.Sprintf("%s:idx:balances:%s", keyPrefix, project)
}

// challengeKey returns the Redis key for a Challenge
func challengeKey(id model.ChallengeID) string {
	return fmt.Sprintf("%s:challenge:%s", keyPrefix, id)
}

// challengesIndexKey returns the Redis key for the SET of challenge ids in a project
func challengesIndexKey(project model.ProjectCode) string {
	return fmt.Sprintf("%s:idx:challenges:%s", keyPrefix, project)
}

// pendingPairKey returns the Redis key guarding the one-pending-challenge-
// per-(attacker, target) invariant. Written with SETNX on creation.
func pendingPairKey(project model.ProjectCode, attacker, target model.PlayerKey) string {
	return fmt.Sprintf("%s:idx:pending:%s:%s:%s", keyPrefix, project, attacker, target)
}

// pendingExpiryKey returns the Redis key for the ZSET of pending challenge
// ids scored by expiry time, driving the expiry sweep
func pendingExpiryKey() string {
	return fmt.Sprintf("%s:idx:pending_expiry", keyPrefix)
}

// presenceKey returns the Redis key for the HASH of presence records in a project
func presenceKey(project model.ProjectCode) string {
	return fmt.Sprintf("%s:presence:%s", keyPrefix, project)
}
