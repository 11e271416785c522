package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/inkduel/inkduel-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.PresenceTTL = time.Hour
	cfg.ChallengeTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Balance tests

func (s *StorageSuite) TestSaveAndGetBalance() {
	balance := &model.PlayerBalance{
		ProjectCode:  "proj-1",
		PlayerKey:    "alice",
		DisplayName:  "Alice",
		ReviewTokens: 3,
		AttackTokens: 1,
	}

	err := s.storage.SaveBalance(s.ctx, balance)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetBalance(s.ctx, "proj-1", "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerKey("alice"), retrieved.PlayerKey)
	s.Equal(3, retrieved.ReviewTokens)
	s.Equal(1, retrieved.AttackTokens)
}

func (s *StorageSuite) TestGetBalanceNotFound() {
	_, err := s.storage.GetBalance(s.ctx, "proj-1", "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestListBalances() {
	_ = s.storage.SaveBalance(s.ctx, &model.PlayerBalance{ProjectCode: "proj-1", PlayerKey: "alice"})
	_ = s.storage.SaveBalance(s.ctx, &model.PlayerBalance{ProjectCode: "proj-1", PlayerKey: "bob"})
	_ = s.storage.SaveBalance(s.ctx, &model.PlayerBalance{ProjectCode: "proj-2", PlayerKey: "carol"})

	balances, err := s.storage.ListBalances(s.ctx, "proj-1")
	s.Require().NoError(err)
	s.Len(balances, 2)
}

// Challenge tests

func (s *StorageSuite) makeChallenge(id string, status model.ChallengeStatus, expiresAt time.Time) *model.Challenge {
	return &model.Challenge{
		ID:           model.ChallengeID(id),
		ProjectCode:  "proj-1",
		AttackerName: "Alice",
		AttackerKey:  "alice",
		TargetName:   "Bob",
		TargetKey:    "bob",
		Status:       status,
		CreatedAt:    expiresAt.Add(-model.ChallengeWindow),
		ExpiresAt:    expiresAt,
	}
}

func (s *StorageSuite) TestSaveAndGetChallenge() {
	challenge := s.makeChallenge("CH1", model.ChallengePending, time.Now().Add(model.ChallengeWindow))

	err := s.storage.SaveChallenge(s.ctx, challenge)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetChallenge(s.ctx, "CH1")
	s.Require().NoError(err)
	s.Equal(model.ChallengePending, retrieved.Status)
	s.Equal(model.PlayerKey("alice"), retrieved.AttackerKey)
}

func (s *StorageSuite) TestGetChallengeNotFound() {
	_, err := s.storage.GetChallenge(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrChallengeNotFound)
}

func (s *StorageSuite) TestSecondPendingChallengeForPairRejected() {
	first := s.makeChallenge("CH1", model.ChallengePending, time.Now().Add(model.ChallengeWindow))
	s.Require().NoError(s.storage.SaveChallenge(s.ctx, first))

	second := s.makeChallenge("CH2", model.ChallengePending, time.Now().Add(model.ChallengeWindow))
	err := s.storage.SaveChallenge(s.ctx, second)
	s.ErrorIs(err, model.ErrDuplicateChallenge)
}

func (s *StorageSuite) TestResavingSamePendingChallengeAllowed() {
	challenge := s.makeChallenge("CH1", model.ChallengePending, time.Now().Add(model.ChallengeWindow))
	s.Require().NoError(s.storage.SaveChallenge(s.ctx, challenge))
	s.Require().NoError(s.storage.SaveChallenge(s.ctx, challenge))
}

func (s *StorageSuite) TestResolvingChallengeFreesPair() {
	challenge := s.makeChallenge("CH1", model.ChallengePending, time.Now().Add(model.ChallengeWindow))
	s.Require().NoError(s.storage.SaveChallenge(s.ctx, challenge))

	challenge.Status = model.ChallengeDefended
	s.Require().NoError(s.storage.SaveChallenge(s.ctx, challenge))

	// The pair is open again for a new attack
	next := s.makeChallenge("CH2", model.ChallengePending, time.Now().Add(model.ChallengeWindow))
	s.Require().NoError(s.storage.SaveChallenge(s.ctx, next))
}

func (s *StorageSuite) TestGetPendingChallenge() {
	challenge := s.makeChallenge("CH1", model.ChallengePending, time.Now().Add(model.ChallengeWindow))
	_ = s.storage.SaveChallenge(s.ctx, challenge)

	retrieved, err := s.storage.GetPendingChallenge(s.ctx, "proj-1", "alice", "bob")
	s.Require().NoError(err)
	s.Equal(model.ChallengeID("CH1"), retrieved.ID)
}

func (s *StorageSuite) TestGetPendingChallengeNotFound() {
	_, err := s.storage.GetPendingChallenge(s.ctx, "proj-1", "alice", "bob")
	s.ErrorIs(err, model.ErrChallengeNotFound)
}

func (s *StorageSuite) TestGetPendingChallengeAfterResolution() {
	challenge := s.makeChallenge("CH1", model.ChallengePending, time.Now().Add(model.ChallengeWindow))
	_ = s.storage.SaveChallenge(s.ctx, challenge)

	challenge.Status = model.ChallengeSucceeded
	_ = s.storage.SaveChallenge(s.ctx, challenge)

	_, err := s.storage.GetPendingChallenge(s.ctx, "proj-1", "alice", "bob")
	s.ErrorIs(err, model.ErrChallengeNotFound)
}

func (s *StorageSuite) TestListExpiredPendingChallenges() {
	now := time.Now()
	_ = s.storage.SaveChallenge(s.ctx, s.makeChallenge("CH1", model.ChallengePending, now.Add(-time.Second)))

	later := s.makeChallenge("CH2", model.ChallengePending, now.Add(time.Minute))
	later.AttackerKey = "carol"
	later.AttackerName = "Carol"
	_ = s.storage.SaveChallenge(s.ctx, later)

	expired, err := s.storage.ListExpiredPendingChallenges(s.ctx, now)
	s.Require().NoError(err)
	s.Require().Len(expired, 1)
	s.Equal(model.ChallengeID("CH1"), expired[0].ID)
}

func (s *StorageSuite) TestListExpiredSkipsResolvedChallenges() {
	now := time.Now()
	challenge := s.makeChallenge("CH1", model.ChallengePending, now.Add(-time.Second))
	_ = s.storage.SaveChallenge(s.ctx, challenge)

	challenge.Status = model.ChallengeExpired
	_ = s.storage.SaveChallenge(s.ctx, challenge)

	expired, err := s.storage.ListExpiredPendingChallenges(s.ctx, now)
	s.Require().NoError(err)
	s.Empty(expired)
}

// Presence tests

func (s *StorageSuite) TestSaveAndListPresence() {
	record := &model.PresenceRecord{
		ProjectCode: "proj-1",
		PlayerKey:   "alice",
		PlayerName:  "Alice",
		SessionID:   "sess-1",
		LastSeen:    time.Now(),
	}

	err := s.storage.SavePresence(s.ctx, record)
	s.Require().NoError(err)

	records, err := s.storage.ListPresence(s.ctx, "proj-1")
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(model.PlayerKey("alice"), records[0].PlayerKey)
}

func (s *StorageSuite) TestSavePresenceOverwritesSamePlayer() {
	_ = s.storage.SavePresence(s.ctx, &model.PresenceRecord{ProjectCode: "proj-1", PlayerKey: "alice", SessionID: "sess-1", LastSeen: time.Now()})
	_ = s.storage.SavePresence(s.ctx, &model.PresenceRecord{ProjectCode: "proj-1", PlayerKey: "alice", SessionID: "sess-2", LastSeen: time.Now()})

	records, _ := s.storage.ListPresence(s.ctx, "proj-1")
	s.Require().Len(records, 1)
	s.Equal("sess-2", records[0].SessionID)
}

func (s *StorageSuite) TestPresenceExpiresWithTTL() {
	_ = s.storage.SavePresence(s.ctx, &model.PresenceRecord{ProjectCode: "proj-1", PlayerKey: "alice", LastSeen: time.Now()})

	s.mini.FastForward(2 * time.Hour)

	records, err := s.storage.ListPresence(s.ctx, "proj-1")
	s.Require().NoError(err)
	s.Empty(records)
}

// Teardown tests

func (s *StorageSuite) TestDeleteProjectData() {
	_ = s.storage.SaveBalance(s.ctx, &model.PlayerBalance{ProjectCode: "proj-1", PlayerKey: "alice"})
	_ = s.storage.SaveChallenge(s.ctx, s.makeChallenge("CH1", model.ChallengePending, time.Now().Add(time.Minute)))
	_ = s.storage.SavePresence(s.ctx, &model.PresenceRecord{ProjectCode: "proj-1", PlayerKey: "alice", LastSeen: time.Now()})

	err := s.storage.DeleteProjectData(s.ctx, "proj-1")
	s.Require().NoError(err)

	_, err = s.storage.GetBalance(s.ctx, "proj-1", "alice")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.storage.GetChallenge(s.ctx, "CH1")
	s.ErrorIs(err, model.ErrChallengeNotFound)
	records, _ := s.storage.ListPresence(s.ctx, "proj-1")
	s.Empty(records)
}
