package storage

import (
	"context"
	"time"

	"github.com/inkduel/inkduel-go/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Balance operations
	SaveBalance(ctx context.Context, balance *model.PlayerBalance) error
	GetBalance(ctx context.Context, project model.ProjectCode, key model.PlayerKey) (*model.PlayerBalance, error)
	ListBalances(ctx context.Context, project model.ProjectCode) ([]*model.PlayerBalance, error)

	// Challenge operations
	SaveChallenge(ctx context.Context, challenge *model.Challenge) error
	GetChallenge(ctx context.Context, id model.ChallengeID) (*model.Challenge, error)
	GetPendingChallenge(ctx context.Context, project model.ProjectCode, attacker, target model.PlayerKey) (*model.Challenge, error)
	ListExpiredPendingChallenges(ctx context.Context, now time.Time) ([]*model.Challenge, error)

	// Presence operations
	SavePresence(ctx context.Context, record *model.PresenceRecord) error
	ListPresence(ctx context.Context, project model.ProjectCode) ([]*model.PresenceRecord, error)

	// Project teardown (test/reset tooling)
	DeleteProjectData(ctx context.Context, project model.ProjectCode) error
}
