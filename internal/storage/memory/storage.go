package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/inkduel/inkduel-go/internal/model"
	"github.com/inkduel/inkduel-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	balances   map[balanceKey]*model.PlayerBalance
	challenges map[model.ChallengeID]*model.Challenge
	presence   map[balanceKey]*model.PresenceRecord
}

type balanceKey struct {
	project model.ProjectCode
	player  model.PlayerKey
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		balances:   make(map[balanceKey]*model.PlayerBalance),
		challenges: make(map[model.ChallengeID]*model.Challenge),
		presence:   make(map[balanceKey]*model.PresenceRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Balance operations

func (s *Storage) SaveBalance(ctx context.Context, balance *model.PlayerBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *balance
	s.balances[balanceKey{balance.ProjectCode, balance.PlayerKey}] = &copied
	return nil
}

func (s *Storage) GetBalance(ctx context.Context, project model.ProjectCode, key model.PlayerKey) (*model.PlayerBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	balance, ok := s.balances[balanceKey{project, key}]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	copied := *balance
	return &copied, nil
}

func (s *Storage) ListBalances(ctx context.Context, project model.ProjectCode) ([]*model.PlayerBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var balances []*model.PlayerBalance
	for key, balance := range s.balances {
		if key.project == project {
			copied := *balance
			balances = append(balances, &copied)
		}
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].PlayerKey < balances[j].PlayerKey
	})
	return balances, nil
}

// Challenge operations

func (s *Storage) SaveChallenge(ctx context.Context, challenge *model.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *challenge
	s.challenges[challenge.ID] = &copied
	return nil
}

func (s *Storage) GetChallenge(ctx context.Context, id model.ChallengeID) (*model.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	challenge, ok := s.challenges[id]
	if !ok {
		return nil, model.ErrChallengeNotFound
	}
	copied := *challenge
	return &copied, nil
}

func (s *Storage) GetPendingChallenge(ctx context.Context, project model.ProjectCode, attacker, target model.PlayerKey) (*model.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, challenge := range s.challenges {
		if challenge.ProjectCode == project &&
			challenge.AttackerKey == attacker &&
			challenge.TargetKey == target &&
			challenge.IsPending() {
			copied := *challenge
			return &copied, nil
		}
	}
	return nil, model.ErrChallengeNotFound
}

func (s *Storage) ListExpiredPendingChallenges(ctx context.Context, now time.Time) ([]*model.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var expired []*model.Challenge
	for _, challenge := range s.challenges {
		if challenge.IsPending() && !challenge.ExpiresAt.After(now) {
			copied := *challenge
			expired = append(expired, &copied)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].ExpiresAt.Before(expired[j].ExpiresAt)
	})
	return expired, nil
}

// Presence operations

func (s *Storage) SavePresence(ctx context.Context, record *model.PresenceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	s.presence[balanceKey{record.ProjectCode, record.PlayerKey}] = &copied
	return nil
}

func (s *Storage) ListPresence(ctx context.Context, project model.ProjectCode) ([]*model.PresenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []*model.PresenceRecord
	for key, record := range s.presence {
		if key.project == project {
			copied := *record
			records = append(records, &copied)
		}
	}
	return records, nil
}

// Project teardown

func (s *Storage) DeleteProjectData(ctx context.Context, project model.ProjectCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.balances {
		if key.project == project {
			delete(s.balances, key)
		}
	}
	for id, challenge := range s.challenges {
		if challenge.ProjectCode == project {
			delete(s.challenges, id)
		}
	}
	for key := range s.presence {
		if key.project == project {
			delete(s.presence, key)
		}
	}
	return nil
}
