package ledger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/inkduel/inkduel-go/internal/dependencies/clock"
	"github.com/inkduel/inkduel-go/internal/dependencies/keylock"
	"github.com/inkduel/inkduel-go/internal/model"
	"github.com/inkduel/inkduel-go/internal/projects"
	"github.com/inkduel/inkduel-go/internal/storage"
)

// Service is the token ledger. It owns the per-player locks: every
// balance mutation anywhere in the core runs inside a critical section
// acquired through this service.
type Service struct {
	storage  storage.Storage
	projects projects.Provider
	locks    *keylock.Map
	clock    clock.Clock
	logger   *slog.Logger
}

// New creates a new ledger service
func New(store storage.Storage, provider projects.Provider, locks *keylock.Map, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage:  store,
		projects: provider,
		locks:    locks,
		clock:    clk,
		logger:   logger,
	}
}

// Lock acquires the balance locks for the given players, in a fixed
// order regardless of argument order. Callers composing a balance
// mutation with another state change (e.g. a challenge transition) hold
// this for the whole transaction.
func (s *Service) Lock(project model.ProjectCode, players ...model.PlayerKey) func() {
	keys := make([]string, len(players))
	for i, p := range players {
		keys[i] = model.LockKey(project, p)
	}
	return s.locks.Lock(keys...)
}

// InitPlayer lazily creates the player's balance row. Repeat calls are
// idempotent: they refresh the display name and touch UpdatedAt but
// never reset balances.
func (s *Service) InitPlayer(ctx context.Context, project model.ProjectCode, playerName string) (*model.PlayerBalance, error) {
	limits, err := s.projects.GetProjectLimits(ctx, project)
	if err != nil {
		return nil, err
	}

	key := model.NormalizePlayerKey(playerName)
	unlock := s.Lock(project, key)
	defer unlock()

	now := s.clock.Now()

	balance, err := s.storage.GetBalance(ctx, project, key)
	if err == nil {
		balance.DisplayName = playerName
		balance.UpdatedAt = now
		if err := s.storage.SaveBalance(ctx, balance); err != nil {
			return nil, err
		}
		return balance, nil
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, err
	}

	balance = &model.PlayerBalance{
		ProjectCode:  project,
		PlayerKey:    key,
		DisplayName:  playerName,
		ReviewTokens: limits.ReviewTokenLimit,
		AttackTokens: 0,
		ShieldTokens: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.storage.SaveBalance(ctx, balance); err != nil {
		return nil, err
	}

	s.logger.Info("player initialized",
		slog.String("project", string(project)),
		slog.String("player", string(key)),
		slog.Int("review_tokens", balance.ReviewTokens),
	)

	return balance, nil
}

// GetBalance returns the player's current balances
func (s *Service) GetBalance(ctx context.Context, project model.ProjectCode, player model.PlayerKey) (*model.PlayerBalance, error) {
	return s.storage.GetBalance(ctx, project, player)
}

// Update runs a read-modify-write cycle on one player's balance under
// that player's lock. The mutation sees current state; any error from it
// aborts the update with nothing written.
func (s *Service) Update(ctx context.Context, project model.ProjectCode, player model.PlayerKey, mutate func(*model.PlayerBalance) error) (*model.PlayerBalance, error) {
	unlock := s.Lock(project, player)
	defer unlock()
	return s.update(ctx, project, player, mutate)
}

// update is Update without lock acquisition, for callers already inside
// a critical section obtained from Lock.
func (s *Service) update(ctx context.Context, project model.ProjectCode, player model.PlayerKey, mutate func(*model.PlayerBalance) error) (*model.PlayerBalance, error) {
	balance, err := s.storage.GetBalance(ctx, project, player)
	if err != nil {
		return nil, err
	}
	if err := mutate(balance); err != nil {
		return nil, err
	}
	balance.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveBalance(ctx, balance); err != nil {
		return nil, err
	}
	return balance, nil
}

// UpdateLocked is update exposed for services composing wider
// transactions; the caller must hold the locks for every player touched.
func (s *Service) UpdateLocked(ctx context.Context, project model.ProjectCode, player model.PlayerKey, mutate func(*model.PlayerBalance) error) (*model.PlayerBalance, error) {
	return s.update(ctx, project, player, mutate)
}

// DebitAttackToken consumes the player's attack token
func (s *Service) DebitAttackToken(ctx context.Context, project model.ProjectCode, player model.PlayerKey) (*model.PlayerBalance, error) {
	return s.Update(ctx, project, player, func(b *model.PlayerBalance) error {
		return b.DebitAttackToken()
	})
}

// CreditAttackToken grants an attack token, capped at one
func (s *Service) CreditAttackToken(ctx context.Context, project model.ProjectCode, player model.PlayerKey) (*model.PlayerBalance, error) {
	return s.Update(ctx, project, player, func(b *model.PlayerBalance) error {
		b.CreditAttackToken()
		return nil
	})
}

// DebitReviewToken consumes one review token
func (s *Service) DebitReviewToken(ctx context.Context, project model.ProjectCode, player model.PlayerKey) (*model.PlayerBalance, error) {
	return s.Update(ctx, project, player, func(b *model.PlayerBalance) error {
		return b.DebitReviewToken()
	})
}

// CreditReviewToken grants one review token up to the given ceiling
func (s *Service) CreditReviewToken(ctx context.Context, project model.ProjectCode, player model.PlayerKey, cap int) (*model.PlayerBalance, error) {
	return s.Update(ctx, project, player, func(b *model.PlayerBalance) error {
		b.CreditReviewToken(cap)
		return nil
	})
}

// DebitShieldToken consumes one shield token
func (s *Service) DebitShieldToken(ctx context.Context, project model.ProjectCode, player model.PlayerKey) (*model.PlayerBalance, error) {
	return s.Update(ctx, project, player, func(b *model.PlayerBalance) error {
		return b.DebitShieldToken()
	})
}
