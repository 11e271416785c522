package challenge

import (
	"log/slog"
	"sync"
	"time"

	"github.com/inkduel/inkduel-go/internal/dependencies/clock"
	"github.com/inkduel/inkduel-go/internal/model"
)

// Scheduler arms one-shot deferred resolutions for pending challenges.
// Cancellation on early resolution is only an optimization: a timer that
// fires after the challenge resolved hits the idempotent status check
// and no-ops, and the expiry sweep covers timers lost to a restart.
type Scheduler struct {
	resolve func(model.ChallengeID)
	clock   clock.Clock
	logger  *slog.Logger

	mu     sync.Mutex
	timers map[model.ChallengeID]*time.Timer
}

// NewScheduler creates a scheduler that calls resolve when a
// challenge's window lapses
func NewScheduler(resolve func(model.ChallengeID), clk clock.Clock, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		resolve: resolve,
		clock:   clk,
		logger:  logger,
		timers:  make(map[model.ChallengeID]*time.Timer),
	}
}

// Arm schedules the timeout resolution for a challenge
func (s *Scheduler) Arm(id model.ChallengeID, fireAt time.Time) {
	delay := fireAt.Sub(s.clock.Now())
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.timers[id]; ok {
		return
	}
	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		s.resolve(id)
	})

	s.logger.Debug("timeout armed",
		slog.String("challenge_id", string(id)),
		slog.Duration("delay", delay),
	)
}

// Cancel drops the timer for a resolved challenge, if still armed
func (s *Scheduler) Cancel(id model.ChallengeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
}

// Stop cancels every armed timer
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
