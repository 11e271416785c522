package challenge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/inkduel/inkduel-go/internal/dependencies/keylock"
	"github.com/inkduel/inkduel-go/internal/dependencies/mocks"
	"github.com/inkduel/inkduel-go/internal/model"
	"github.com/inkduel/inkduel-go/internal/projects"
	"github.com/inkduel/inkduel-go/internal/services/ledger"
	"github.com/inkduel/inkduel-go/internal/storage/memory"
	"github.com/inkduel/inkduel-go/internal/testutil"
)

// captureNotifier records every event for assertion
type captureNotifier struct {
	mu     sync.Mutex
	events []capturedEvent
}

type capturedEvent struct {
	player model.PlayerKey
	event  model.Event
}

func (n *captureNotifier) Notify(ctx context.Context, project model.ProjectCode, player model.PlayerKey, event model.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, capturedEvent{player: player, event: event})
}

func (n *captureNotifier) eventsFor(player model.PlayerKey, kind model.EventKind) []model.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []model.Event
	for _, e := range n.events {
		if e.player == player && e.event.Kind == kind {
			out = append(out, e.event)
		}
	}
	return out
}

type EngineSuite struct {
	suite.Suite
	storage  *memory.Storage
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	ledger   *ledger.Service
	notifier *captureNotifier
	engine   *Engine
	ctx      context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.notifier = &captureNotifier{}
	logger := testutil.NopLogger()
	provider := projects.NewStaticProvider(projects.DefaultLimits())
	s.ledger = ledger.New(s.storage, provider, keylock.New(), s.clock, logger)
	s.engine = NewEngine(s.storage, s.ledger, s.notifier, s.clock, s.random, DefaultConfig(), logger)
	s.ctx = context.Background()
}

func (s *EngineSuite) TearDownTest() {
	s.engine.Stop()
}

func (s *EngineSuite) seedBalance(key model.PlayerKey, name string, review, attack, shield int) {
	_ = s.storage.SaveBalance(s.ctx, &model.PlayerBalance{
		ProjectCode:  "proj-1",
		PlayerKey:    key,
		DisplayName:  name,
		ReviewTokens: review,
		AttackTokens: attack,
		ShieldTokens: shield,
		CreatedAt:    s.clock.Now(),
		UpdatedAt:    s.clock.Now(),
	})
}

func (s *EngineSuite) balance(key model.PlayerKey) *model.PlayerBalance {
	balance, err := s.storage.GetBalance(s.ctx, "proj-1", key)
	s.Require().NoError(err)
	return balance
}

// Initiate tests

func (s *EngineSuite) TestInitiateCreatesPendingChallenge() {
	s.seedBalance("alice", "Alice", 2, 1, 0)
	s.seedBalance("bob", "Bob", 3, 0, 0)
	s.random.QueueString("CH0000000001")

	challenge, attackerBalance, err := s.engine.Initiate(s.ctx, "proj-1", "Alice", "Bob")
	s.Require().NoError(err)

	s.Equal(model.ChallengeID("CH0000000001"), challenge.ID)
	s.Equal(model.ChallengePending, challenge.Status)
	s.Equal(model.PlayerKey("alice"), challenge.AttackerKey)
	s.Equal(model.PlayerKey("bob"), challenge.TargetKey)
	s.Equal(s.clock.Now().Add(model.ChallengeWindow), challenge.ExpiresAt)
	s.Equal(0, attackerBalance.AttackTokens, "attack token is spent up front")
}

func (s *EngineSuite) TestInitiateWithoutAttackTokenFails() {
	s.seedBalance("alice", "Alice", 2, 0, 0)
	s.seedBalance("bob", "Bob", 3, 0, 0)

	_, _, err := s.engine.Initiate(s.ctx, "proj-1", "Alice", "Bob")
	s.ErrorIs(err, model.ErrInsufficientResource)
}

func (s *EngineSuite) TestInitiateTargetWithoutReviewTokensFails() {
	s.seedBalance("alice", "Alice", 2, 1, 0)
	s.seedBalance("bob", "Bob", 0, 0, 0)

	_, _, err := s.engine.Initiate(s.ctx, "proj-1", "Alice", "Bob")
	s.ErrorIs(err, model.ErrNoStealableResource)

	s.Equal(1, s.balance("alice").AttackTokens, "failed initiation spends nothing")
}

func (s *EngineSuite) TestInitiateUnknownAttackerFails() {
	s.seedBalance("bob", "Bob", 3, 0, 0)

	_, _, err := s.engine.Initiate(s.ctx, "proj-1", "Alice", "Bob")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *EngineSuite) TestInitiateDuplicatePendingPairRejected() {
	s.seedBalance("alice", "Alice", 2, 1, 0)
	s.seedBalance("bob", "Bob", 3, 0, 0)
	s.random.QueueString("CH0000000001", "CH0000000002")

	_, _, err := s.engine.Initiate(s.ctx, "proj-1", "Alice", "Bob")
	s.Require().NoError(err)

	// Refill the attack token; the pending pair must still block
	_, err = s.ledger.CreditAttackToken(s.ctx, "proj-1", "alice")
	s.Require().NoError(err)

	_, _, err = s.engine.Initiate(s.ctx, "proj-1", "Alice", "Bob")
	s.ErrorIs(err, model.ErrDuplicateChallenge)
}

func (s *EngineSuite) TestInitiateReverseDirectionAllowed() {
	s.seedBalance("alice", "Alice", 2, 1, 0)
	s.seedBalance("bob", "Bob", 3, 1, 0)
	s.random.QueueString("CH0000000001", "CH0000000002")

	_, _, err := s.engine.Initiate(s.ctx, "proj-1", "Alice", "Bob")
	s.Require().NoError(err)

	_, _, err = s.engine.Initiate(s.ctx, "proj-1", "Bob", "Alice")
	s.Require().NoError(err)
}

func (s *EngineSuite) TestInitiateNotifiesTarget() {
	s.seedBalance("alice", "Alice", 2, 1, 0)
	s.seedBalance("bob", "Bob", 3, 0, 0)
	s.random.QueueString("CH0000000001")

	_, _, err := s.engine.Initiate(s.ctx, "proj-1", "Alice", "Bob")
	s.Require().NoError(err)

	incoming := s.notifier.eventsFor("bob", model.EventChallengeIncoming)
	s.Require().Len(incoming, 1)
	s.Equal("CH0000000001", incoming[0].Payload["challenge_id"])
	s.Equal("Alice", incoming[0].Payload["attacker"])
}

// Respond tests

func (s *EngineSuite) initiate() model.ChallengeID {
	s.random.QueueString("CH0000000001")
	challenge, _, err := s.engine.Initiate(s.ctx, "proj-1", "Alice", "Bob")
	s.Require().NoError(err)
	return challenge.ID
}

func (s *EngineSuite) TestRespondWithShieldBlocksSteal() {
	s.seedBalance("alice", "Alice", 2, 1, 0)
	s.seedBalance("bob", "Bob", 3, 0, 1)
	id := s.initiate()

	challenge, targetBalance, err := s.engine.Respond(s.ctx, "proj-1", id, true)
	s.Require().NoError(err)

	s.Equal(model.ChallengeDefended, challenge.Status)
	s.True(challenge.ShieldUsed)
	s.Require().NotNil(challenge.RespondedAt)

	s.Equal(3, targetBalance.ReviewTokens, "shield preserves review tokens")
	s.Equal(0, targetBalance.ShieldTokens, "shield token is consumed")
	s.Equal(2, s.balance("alice").ReviewTokens, "attacker gains nothing")
	s.Equal(0, s.balance("alice").AttackTokens, "attack token is not refunded")
}

func (s *EngineSuite) TestRespondWithShieldWithoutShieldTokenFails() {
	s.seedBalance("alice", "Alice", 2, 1, 0)
	s.seedBalance("bob", "Bob", 3, 0, 0)
	id := s.initiate()

	_, _, err := s.engine.Respond(s.ctx, "proj-1", id, true)
	s.ErrorIs(err, model.ErrInsufficientResource)

	challenge, _ := s.engine.GetChallenge(s.ctx, id)
	s.Equal(model.ChallengePending, challenge.Status, "failed defense leaves the challenge open")
}

func (s *EngineSuite) TestRespondWithoutShieldConcedesToken() {
	s.seedBalance("alice", "Alice", 2, 1, 0)
	s.seedBalance("bob", "Bob", 3, 0, 1)
	id := s.initiate()

	challenge, targetBalance, err := s.engine.Respond(s.ctx, "proj-1", id, false)
	s.Require().NoError(err)

	s.Equal(model.ChallengeSucceeded, challenge.Status)
	s.False(challenge.ShieldUsed)
	s.Equal(2, targetBalance.ReviewTokens)
	s.Equal(1, targetBalance.ShieldTokens, "shield untouched when not used")
	s.Equal(3, s.balance("alice").ReviewTokens)
}

func (s *EngineSuite) TestStealCappedForAttackerAtCeiling() {
	s.seedBalance("alice", "Alice", model.StolenReviewTokenCap, 1, 0)
	s.seedBalance("bob", "Bob", 3, 0, 0)
	id := s.initiate()

	_, targetBalance, err := s.engine.Respond(s.ctx, "proj-1", id, false)
	s.Require().NoError(err)

	s.Equal(2, targetBalance.ReviewTokens, "target still concedes")
	s.Equal(model.StolenReviewTokenCap, s.balance("alice").ReviewTokens, "attacker gain is capped")
}

func (s *EngineSuite) TestStealFloorsTargetAtZero() {
	s.seedBalance("alice", "Alice", 0, 1, 0)
	s.seedBalance("bob", "Bob", 1, 0, 0)
	id := s.initiate()

	// Target spends their last token mid-window
	_, err := s.ledger.DebitReviewToken(s.ctx, "proj-1", "bob")
	s.Require().NoError(err)

	_, targetBalance, err := s.engine.Respond(s.ctx, "proj-1", id, false)
	s.Require().NoError(err)

	s.Equal(0, targetBalance.ReviewTokens, "never negative")
	s.Equal(1, s.balance("alice").ReviewTokens, "attacker still gains")
}

func (s *EngineSuite) TestRespondTwiceFails() {
	s.seedBalance("alice", "Alice", 2, 1, 0)
	s.seedBalance("bob", "Bob", 3, 0, 1)
	id := s.initiate()

	_, _, err := s.engine.Respond(s.ctx, "proj-1", id, false)
	s.Require().NoError(err)

	_, _, err = s.engine.Respond(s.ctx, "proj-1", id, true)
	s.ErrorIs(err, model.ErrAlreadyResolved)
}

func (s *EngineSuite) TestRespondUnknownChallengeFails() {
	_, _, err := s.engine.Respond(s.ctx, "proj-1", "nonexistent", false)
	s.ErrorIs(err, model.ErrChallengeNotFound)
}

func (s *EngineSuite) TestRespondNotifiesBothParties() {
	s.seedBalance("alice", "Alice", 2, 1, 0)
	s.seedBalance("bob", "Bob", 3, 0, 0)
	id := s.initiate()

	_, _, err := s.engine.Respond(s.ctx, "proj-1", id, false)
	s.Require().NoError(err)

	for _, player := range []model.PlayerKey{"alice", "bob"} {
		results := s.notifier.eventsFor(player, model.EventChallengeResult)
		s.Require().Len(results, 1)
		s.Equal(string(model.ChallengeSucceeded), results[0].Payload["status"])
		s.Equal(false, results[0].Payload["timed_out"])

		s.Len(s.notifier.eventsFor(player, model.EventBalanceChanged), 1)
	}
}

// Timeout tests

func (s *EngineSuite) TestResolveExpiredAppliesSteal() {
	s.seedBalance("alice", "Alice", 0, 1, 0)
	s.seedBalance("bob", "Bob", 3, 0, 1)
	id := s.initiate()

	s.clock.Advance(model.ChallengeWindow)
	err := s.engine.ResolveExpired(s.ctx, id)
	s.Require().NoError(err)

	challenge, _ := s.engine.GetChallenge(s.ctx, id)
	s.Equal(model.ChallengeExpired, challenge.Status)
	s.Require().NotNil(challenge.RespondedAt)

	s.Equal(2, s.balance("bob").ReviewTokens, "ignoring the attack concedes the token")
	s.Equal(1, s.balance("bob").ShieldTokens, "shield is never auto-spent")
	s.Equal(1, s.balance("alice").ReviewTokens)
}

func (s *EngineSuite) TestResolveExpiredAfterResponseIsNoOp() {
	s.seedBalance("alice", "Alice", 2, 1, 0)
	s.seedBalance("bob", "Bob", 3, 0, 1)
	id := s.initiate()

	_, _, err := s.engine.Respond(s.ctx, "proj-1", id, true)
	s.Require().NoError(err)

	s.clock.Advance(model.ChallengeWindow)
	err = s.engine.ResolveExpired(s.ctx, id)
	s.Require().NoError(err)

	challenge, _ := s.engine.GetChallenge(s.ctx, id)
	s.Equal(model.ChallengeDefended, challenge.Status, "first resolution wins")
	s.Equal(3, s.balance("bob").ReviewTokens)
}

func (s *EngineSuite) TestResolveExpiredTwiceStealsOnce() {
	s.seedBalance("alice", "Alice", 0, 1, 0)
	s.seedBalance("bob", "Bob", 3, 0, 0)
	id := s.initiate()

	s.clock.Advance(model.ChallengeWindow)
	s.Require().NoError(s.engine.ResolveExpired(s.ctx, id))
	s.Require().NoError(s.engine.ResolveExpired(s.ctx, id))

	s.Equal(2, s.balance("bob").ReviewTokens)
	s.Equal(1, s.balance("alice").ReviewTokens)
}

func (s *EngineSuite) TestRespondAfterExpiryResolutionFails() {
	s.seedBalance("alice", "Alice", 0, 1, 0)
	s.seedBalance("bob", "Bob", 3, 0, 1)
	id := s.initiate()

	s.clock.Advance(model.ChallengeWindow)
	s.Require().NoError(s.engine.ResolveExpired(s.ctx, id))

	_, _, err := s.engine.Respond(s.ctx, "proj-1", id, true)
	s.ErrorIs(err, model.ErrAlreadyResolved)
}

func (s *EngineSuite) TestResolvedPairCanBeReattacked() {
	s.seedBalance("alice", "Alice", 2, 1, 0)
	s.seedBalance("bob", "Bob", 3, 0, 1)
	id := s.initiate()

	_, _, err := s.engine.Respond(s.ctx, "proj-1", id, true)
	s.Require().NoError(err)

	_, err = s.ledger.CreditAttackToken(s.ctx, "proj-1", "alice")
	s.Require().NoError(err)

	s.random.QueueString("CH0000000002")
	_, _, err = s.engine.Initiate(s.ctx, "proj-1", "Alice", "Bob")
	s.Require().NoError(err)
}

// Sweep tests

func (s *EngineSuite) TestSweepResolvesOverdueChallenges() {
	s.seedBalance("alice", "Alice", 0, 1, 0)
	s.seedBalance("bob", "Bob", 3, 0, 0)
	id := s.initiate()

	s.clock.Advance(model.ChallengeWindow + time.Second)
	s.engine.SweepExpired(s.ctx)

	challenge, _ := s.engine.GetChallenge(s.ctx, id)
	s.Equal(model.ChallengeExpired, challenge.Status)
	s.Equal(1, s.balance("alice").ReviewTokens)
}

func (s *EngineSuite) TestSweepLeavesOpenChallengesAlone() {
	s.seedBalance("alice", "Alice", 0, 1, 0)
	s.seedBalance("bob", "Bob", 3, 0, 0)
	id := s.initiate()

	s.clock.Advance(model.ChallengeWindow - time.Second)
	s.engine.SweepExpired(s.ctx)

	challenge, _ := s.engine.GetChallenge(s.ctx, id)
	s.Equal(model.ChallengePending, challenge.Status)
}
