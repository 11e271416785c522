package challenge

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/inkduel/inkduel-go/internal/dependencies/clock"
	"github.com/inkduel/inkduel-go/internal/dependencies/random"
	"github.com/inkduel/inkduel-go/internal/model"
	"github.com/inkduel/inkduel-go/internal/services/ledger"
	"github.com/inkduel/inkduel-go/internal/services/notify"
	"github.com/inkduel/inkduel-go/internal/storage"
)

const challengeIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Config holds challenge engine settings
type Config struct {
	// Window is how long a target has to respond
	Window time.Duration
	// SweepInterval is how often the expiry sweep scans for overdue
	// pending challenges
	SweepInterval time.Duration
}

// DefaultConfig returns the default challenge engine configuration
func DefaultConfig() Config {
	return Config{
		Window:        model.ChallengeWindow,
		SweepInterval: 5 * time.Second,
	}
}

// Engine runs the challenge state machine: it creates challenges,
// applies explicit responses, and resolves timeouts. A challenge
// transitions exactly once out of pending; the explicit response and the
// timeout race for that transition and the loser no-ops.
type Engine struct {
	storage   storage.Storage
	ledger    *ledger.Service
	notifier  notify.Notifier
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
	cfg       Config
	scheduler *Scheduler
}

// NewEngine creates a new challenge engine
func NewEngine(
	store storage.Storage,
	ledgerService *ledger.Service,
	notifier notify.Notifier,
	clk clock.Clock,
	rnd random.Random,
	cfg Config,
	logger *slog.Logger,
) *Engine {
	e := &Engine{
		storage:  store,
		ledger:   ledgerService,
		notifier: notifier,
		clock:    clk,
		random:   rnd,
		logger:   logger,
		cfg:      cfg,
	}
	e.scheduler = NewScheduler(e.resolveFromTimer, clk, logger)
	return e
}

// Initiate creates a pending challenge from attacker to target. The
// attack token is spent up front and never refunded, whatever the
// outcome.
func (e *Engine) Initiate(ctx context.Context, project model.ProjectCode, attackerName, targetName string) (*model.Challenge, *model.PlayerBalance, error) {
	attackerKey := model.NormalizePlayerKey(attackerName)
	targetKey := model.NormalizePlayerKey(targetName)

	challenge, attackerBalance, err := e.initiate(ctx, project, attackerName, attackerKey, targetName, targetKey)
	if err != nil {
		return nil, nil, err
	}

	// Outside the critical section: inform the target and arm the timer
	e.notifier.Notify(ctx, project, targetKey, model.Event{
		Kind:        model.EventChallengeIncoming,
		ProjectCode: project,
		Payload: map[string]any{
			"challenge_id": string(challenge.ID),
			"attacker":     challenge.AttackerName,
			"expires_at":   challenge.ExpiresAt,
		},
	})
	e.scheduler.Arm(challenge.ID, challenge.ExpiresAt)

	e.logger.Info("challenge initiated",
		slog.String("challenge_id", string(challenge.ID)),
		slog.String("project", string(project)),
		slog.String("attacker", string(attackerKey)),
		slog.String("target", string(targetKey)),
	)

	return challenge, attackerBalance, nil
}

func (e *Engine) initiate(ctx context.Context, project model.ProjectCode, attackerName string, attackerKey model.PlayerKey, targetName string, targetKey model.PlayerKey) (*model.Challenge, *model.PlayerBalance, error) {
	unlock := e.ledger.Lock(project, attackerKey, targetKey)
	defer unlock()

	attacker, err := e.storage.GetBalance(ctx, project, attackerKey)
	if err != nil {
		return nil, nil, err
	}
	if attacker.AttackTokens < 1 {
		return nil, nil, model.ErrInsufficientResource
	}

	target, err := e.storage.GetBalance(ctx, project, targetKey)
	if err != nil {
		return nil, nil, err
	}
	if target.ReviewTokens < 1 {
		return nil, nil, model.ErrNoStealableResource
	}

	if _, err := e.storage.GetPendingChallenge(ctx, project, attackerKey, targetKey); err == nil {
		return nil, nil, model.ErrDuplicateChallenge
	} else if !errors.Is(err, model.ErrChallengeNotFound) {
		return nil, nil, err
	}

	now := e.clock.Now()
	challenge := &model.Challenge{
		ID:           model.ChallengeID(e.random.String(12, challengeIDAlphabet)),
		ProjectCode:  project,
		AttackerName: attackerName,
		AttackerKey:  attackerKey,
		TargetName:   targetName,
		TargetKey:    targetKey,
		Status:       model.ChallengePending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(e.cfg.Window),
	}
	if err := e.storage.SaveChallenge(ctx, challenge); err != nil {
		return nil, nil, err
	}

	attackerBalance, err := e.ledger.UpdateLocked(ctx, project, attackerKey, func(b *model.PlayerBalance) error {
		return b.DebitAttackToken()
	})
	if err != nil {
		// Back out the just-created record so the debit and the insert
		// stand or fall together
		challenge.Status = model.ChallengeExpired
		responded := now
		challenge.RespondedAt = &responded
		_ = e.storage.SaveChallenge(ctx, challenge)
		return nil, nil, err
	}

	return challenge, attackerBalance, nil
}

// Respond applies the target's explicit response. With a shield the
// steal is blocked; without one the target concedes a review token.
func (e *Engine) Respond(ctx context.Context, project model.ProjectCode, id model.ChallengeID, useShield bool) (*model.Challenge, *model.PlayerBalance, error) {
	challenge, err := e.storage.GetChallenge(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	unlock := e.ledger.Lock(challenge.ProjectCode, challenge.AttackerKey, challenge.TargetKey)
	defer unlock()

	// Reload under the lock; the timeout path may have won the race
	challenge, err = e.storage.GetChallenge(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !challenge.IsPending() {
		return nil, nil, model.ErrAlreadyResolved
	}

	now := e.clock.Now()
	var targetBalance *model.PlayerBalance

	if useShield {
		targetBalance, err = e.ledger.UpdateLocked(ctx, challenge.ProjectCode, challenge.TargetKey, func(b *model.PlayerBalance) error {
			return b.DebitShieldToken()
		})
		if err != nil {
			return nil, nil, err
		}
		challenge.Status = model.ChallengeDefended
		challenge.ShieldUsed = true
	} else {
		targetBalance, err = e.applySteal(ctx, challenge)
		if err != nil {
			return nil, nil, err
		}
		challenge.Status = model.ChallengeSucceeded
	}

	challenge.RespondedAt = &now
	if err := e.storage.SaveChallenge(ctx, challenge); err != nil {
		return nil, nil, err
	}

	unlock()
	e.scheduler.Cancel(id)
	e.notifyResolved(ctx, challenge, false)

	e.logger.Info("challenge resolved",
		slog.String("challenge_id", string(id)),
		slog.String("status", string(challenge.Status)),
		slog.Bool("shield_used", challenge.ShieldUsed),
	)

	return challenge, targetBalance, nil
}

// GetChallenge retrieves a challenge by id
func (e *Engine) GetChallenge(ctx context.Context, id model.ChallengeID) (*model.Challenge, error) {
	return e.storage.GetChallenge(ctx, id)
}

// ResolveExpired applies the timeout transition to a single challenge.
// If the target already responded this is a no-op.
func (e *Engine) ResolveExpired(ctx context.Context, id model.ChallengeID) error {
	challenge, err := e.storage.GetChallenge(ctx, id)
	if err != nil {
		return err
	}

	unlock := e.ledger.Lock(challenge.ProjectCode, challenge.AttackerKey, challenge.TargetKey)
	defer unlock()

	challenge, err = e.storage.GetChallenge(ctx, id)
	if err != nil {
		return err
	}
	if !challenge.IsPending() {
		// Another path already resolved it
		return nil
	}

	if _, err := e.applySteal(ctx, challenge); err != nil {
		return err
	}

	now := e.clock.Now()
	challenge.Status = model.ChallengeExpired
	challenge.RespondedAt = &now
	if err := e.storage.SaveChallenge(ctx, challenge); err != nil {
		return err
	}

	unlock()
	e.notifyResolved(ctx, challenge, true)

	e.logger.Info("challenge expired",
		slog.String("challenge_id", string(id)),
		slog.String("project", string(challenge.ProjectCode)),
	)

	return nil
}

// RunExpirySweep periodically resolves pending challenges past their
// deadline. The one-shot timers cover the common case with low latency;
// the sweep guarantees resolution even across restarts that lose them.
func (e *Engine) RunExpirySweep(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.SweepExpired(ctx)
		case <-ctx.Done():
			e.logger.Info("expiry sweep stopped")
			return
		}
	}
}

// SweepExpired runs a single sweep pass
func (e *Engine) SweepExpired(ctx context.Context) {
	expired, err := e.storage.ListExpiredPendingChallenges(ctx, e.clock.Now())
	if err != nil {
		e.logger.Error("expiry sweep scan failed", slog.Any("error", err))
		return
	}

	for _, challenge := range expired {
		if err := e.ResolveExpired(ctx, challenge.ID); err != nil {
			e.logger.Error("expiry sweep resolution failed",
				slog.String("challenge_id", string(challenge.ID)),
				slog.Any("error", err))
		}
	}
}

// applySteal moves one review token from target to attacker. The
// attacker's gain is capped; the target never goes below zero. Caller
// must hold both players' locks.
func (e *Engine) applySteal(ctx context.Context, challenge *model.Challenge) (*model.PlayerBalance, error) {
	targetBalance, err := e.ledger.UpdateLocked(ctx, challenge.ProjectCode, challenge.TargetKey, func(b *model.PlayerBalance) error {
		if b.ReviewTokens > 0 {
			b.ReviewTokens--
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := e.ledger.UpdateLocked(ctx, challenge.ProjectCode, challenge.AttackerKey, func(b *model.PlayerBalance) error {
		b.CreditReviewToken(model.StolenReviewTokenCap)
		return nil
	}); err != nil {
		return nil, err
	}

	return targetBalance, nil
}

// notifyResolved informs both parties of the outcome and their new
// balances. Runs outside the critical section.
func (e *Engine) notifyResolved(ctx context.Context, challenge *model.Challenge, timedOut bool) {
	result := model.Event{
		Kind:        model.EventChallengeResult,
		ProjectCode: challenge.ProjectCode,
		Payload: map[string]any{
			"challenge_id": string(challenge.ID),
			"status":       string(challenge.Status),
			"shield_used":  challenge.ShieldUsed,
			"timed_out":    timedOut,
		},
	}
	e.notifier.Notify(ctx, challenge.ProjectCode, challenge.AttackerKey, result)
	e.notifier.Notify(ctx, challenge.ProjectCode, challenge.TargetKey, result)

	for _, key := range []model.PlayerKey{challenge.AttackerKey, challenge.TargetKey} {
		balance, err := e.ledger.GetBalance(ctx, challenge.ProjectCode, key)
		if err != nil {
			continue
		}
		e.notifier.Notify(ctx, challenge.ProjectCode, key, model.Event{
			Kind:        model.EventBalanceChanged,
			ProjectCode: challenge.ProjectCode,
			Payload: map[string]any{
				"review_tokens": balance.ReviewTokens,
				"attack_tokens": balance.AttackTokens,
				"shield_tokens": balance.ShieldTokens,
			},
		})
	}
}

// Stop cancels all armed timers. Pending challenges are then resolved
// only by the sweep.
func (e *Engine) Stop() {
	e.scheduler.Stop()
}

// resolveFromTimer adapts ResolveExpired for the one-shot timers, which
// have no caller to report errors to
func (e *Engine) resolveFromTimer(id model.ChallengeID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.ResolveExpired(ctx, id); err != nil && !errors.Is(err, model.ErrChallengeNotFound) {
		e.logger.Error("timer resolution failed",
			slog.String("challenge_id", string(id)),
			slog.Any("error", err))
	}
}
