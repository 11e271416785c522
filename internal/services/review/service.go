package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkduel/inkduel-go/internal/dependencies/clock"
	"github.com/inkduel/inkduel-go/internal/model"
	"github.com/inkduel/inkduel-go/internal/projects"
	"github.com/inkduel/inkduel-go/internal/services/ledger"
	"github.com/inkduel/inkduel-go/internal/services/notify"
)

// Grader is the external grading pipeline. Only success or failure
// matters to the token economy; scores and feedback flow elsewhere.
type Grader interface {
	Grade(ctx context.Context, project model.ProjectCode, player model.PlayerKey, essay string) error
}

// GraderFunc adapts a function to the Grader interface
type GraderFunc func(ctx context.Context, project model.ProjectCode, player model.PlayerKey, essay string) error

// Grade calls the wrapped function
func (f GraderFunc) Grade(ctx context.Context, project model.ProjectCode, player model.PlayerKey, essay string) error {
	return f(ctx, project, player, essay)
}

var _ Grader = GraderFunc(nil)

// Service gates review submissions on tokens and cooldown, and settles
// the token cost once grading succeeds
type Service struct {
	ledger   *ledger.Service
	projects projects.Provider
	grader   Grader
	notifier notify.Notifier
	clock    clock.Clock
	logger   *slog.Logger
}

// New creates a new review service
func New(ledgerService *ledger.Service, provider projects.Provider, grader Grader, notifier notify.Notifier, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		ledger:   ledgerService,
		projects: provider,
		grader:   grader,
		notifier: notifier,
		clock:    clk,
		logger:   logger,
	}
}

// SubmitReview runs the review workflow: pre-check tokens and cooldown,
// call the grading pipeline, then — only on grading success — debit a
// review token, grant an attack token and start the cooldown, all under
// the player's lock. A failed grading call consumes nothing.
//
// The grading call runs without holding any lock, so two concurrent
// submissions for one player can both pass the pre-check; the post-grade
// re-check under the lock keeps balances within bounds either way.
func (s *Service) SubmitReview(ctx context.Context, project model.ProjectCode, playerName, essay string) (*model.PlayerBalance, time.Duration, error) {
	limits, err := s.projects.GetProjectLimits(ctx, project)
	if err != nil {
		return nil, 0, err
	}
	cooldown := time.Duration(limits.CooldownSeconds) * time.Second

	key := model.NormalizePlayerKey(playerName)
	balance, err := s.ledger.GetBalance(ctx, project, key)
	if err != nil {
		return nil, 0, err
	}

	if err := s.checkGate(balance, cooldown); err != nil {
		return nil, 0, err
	}

	if err := s.grader.Grade(ctx, project, key, essay); err != nil {
		s.logger.Warn("grading pipeline failed",
			slog.String("project", string(project)),
			slog.String("player", string(key)),
			slog.Any("error", err),
		)
		return nil, 0, fmt.Errorf("%w: %v", model.ErrGradingFailure, err)
	}

	balance, err = s.ledger.Update(ctx, project, key, func(b *model.PlayerBalance) error {
		// Re-check under the lock; a concurrent submission may have
		// settled while grading ran
		if err := s.checkGate(b, cooldown); err != nil {
			return err
		}
		if err := b.DebitReviewToken(); err != nil {
			return err
		}
		b.CreditAttackToken()
		now := s.clock.Now()
		b.LastReviewAt = &now
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	s.notifier.Notify(ctx, project, key, model.Event{
		Kind:        model.EventBalanceChanged,
		ProjectCode: project,
		Payload: map[string]any{
			"review_tokens": balance.ReviewTokens,
			"attack_tokens": balance.AttackTokens,
			"shield_tokens": balance.ShieldTokens,
		},
	})

	s.logger.Info("review submitted",
		slog.String("project", string(project)),
		slog.String("player", string(key)),
		slog.Int("review_tokens", balance.ReviewTokens),
	)

	return balance, cooldown, nil
}

// CooldownRemaining reports how long until the player may submit again.
// Zero when no review has been submitted yet or the window has passed.
func (s *Service) CooldownRemaining(balance *model.PlayerBalance, cooldown time.Duration) time.Duration {
	if balance.LastReviewAt == nil {
		return 0
	}
	remaining := cooldown - s.clock.Now().Sub(*balance.LastReviewAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// checkGate enforces the token and cooldown preconditions
func (s *Service) checkGate(balance *model.PlayerBalance, cooldown time.Duration) error {
	if balance.ReviewTokens < 1 {
		return model.ErrNoReviewTokens
	}
	if remaining := s.CooldownRemaining(balance, cooldown); remaining > 0 {
		return &model.CooldownActiveError{Remaining: remaining}
	}
	return nil
}
