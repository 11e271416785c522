package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inkduel/inkduel-go/internal/model"
	"github.com/inkduel/inkduel-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Balance operations

func (s *Storage) SaveBalance(ctx context.Context, balance *model.PlayerBalance) error {
	data, err := json.Marshal(balance)
	if err != nil {
		return err
	}

	key := balanceKey(balance.ProjectCode, balance.PlayerKey)

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, balancesIndexKey(balance.ProjectCode), key)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetBalance(ctx context.Context, project model.ProjectCode, playerKey model.PlayerKey) (*model.PlayerBalance, error) {
	data, err := s.client.Get(ctx, balanceKey(project, playerKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var balance model.PlayerBalance
	if err := json.Unmarshal(data, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

func (s *Storage) ListBalances(ctx context.Context, project model.ProjectCode) ([]*model.PlayerBalance, error) {
	keys, err := s.client.SMembers(ctx, balancesIndexKey(project)).Result()
	if err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		return []*model.PlayerBalance{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	balances := make([]*model.PlayerBalance, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var balance model.PlayerBalance
		if err := json.Unmarshal([]byte(val.(string)), &balance); err != nil {
			continue // Skip invalid data
		}
		balances = append(balances, &balance)
	}

	return balances, nil
}

// Challenge operations

func (s *Storage) SaveChallenge(ctx context.Context, challenge *model.Challenge) error {
	data, err := json.Marshal(challenge)
	if err != nil {
		return err
	}

	key := challengeKey(challenge.ID)
	pairKey := pendingPairKey(challenge.ProjectCode, challenge.AttackerKey, challenge.TargetKey)

	if challenge.IsPending() {
		// The pair index enforces at most one pending challenge per
		// (attacker, target). The advisory lock in the challenge engine
		// already serializes creation; this makes the store enforce the
		// invariant as well.
		ok, err := s.client.SetNX(ctx, pairKey, string(challenge.ID), model.ChallengeWindow*2).Result()
		if err != nil {
			return err
		}
		if !ok {
			existing, err := s.client.Get(ctx, pairKey).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if existing != string(challenge.ID) {
				return model.ErrDuplicateChallenge
			}
		}

		pipe := s.client.Pipeline()
		pipe.Set(ctx, key, data, 0)
		pipe.SAdd(ctx, challengesIndexKey(challenge.ProjectCode), string(challenge.ID))
		pipe.ZAdd(ctx, pendingExpiryKey(), redis.Z{
			Score:  float64(challenge.ExpiresAt.UnixMilli()),
			Member: string(challenge.ID),
		})
		_, err = pipe.Exec(ctx)
		return err
	}

	// Terminal state: drop the pair guard and the expiry index entry
	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, s.cfg.ChallengeTTL)
	pipe.SAdd(ctx, challengesIndexKey(challenge.ProjectCode), string(challenge.ID))
	pipe.Del(ctx, pairKey)
	pipe.ZRem(ctx, pendingExpiryKey(), string(challenge.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetChallenge(ctx context.Context, id model.ChallengeID) (*model.Challenge, error) {
	data, err := s.client.Get(ctx, challengeKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrChallengeNotFound
		}
		return nil, err
	}

	var challenge model.Challenge
	if err := json.Unmarshal(data, &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (s *Storage) GetPendingChallenge(ctx context.Context, project model.ProjectCode, attacker, target model.PlayerKey) (*model.Challenge, error) {
	id, err := s.client.Get(ctx, pendingPairKey(project, attacker, target)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrChallengeNotFound
		}
		return nil, err
	}

	challenge, err := s.GetChallenge(ctx, model.ChallengeID(id))
	if err != nil {
		return nil, err
	}
	if !challenge.IsPending() {
		return nil, model.ErrChallengeNotFound
	}
	return challenge, nil
}

func (s *Storage) ListExpiredPendingChallenges(ctx context.Context, now time.Time) ([]*model.Challenge, error) {
	ids, err := s.client.ZRangeByScore(ctx, pendingExpiryKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, err
	}

	expired := make([]*model.Challenge, 0, len(ids))
	for _, id := range ids {
		challenge, err := s.GetChallenge(ctx, model.ChallengeID(id))
		if err != nil {
			if errors.Is(err, model.ErrChallengeNotFound) {
				// Record gone; drop the dangling index entry
				s.client.ZRem(ctx, pendingExpiryKey(), id)
				continue
			}
			return nil, err
		}
		if challenge.IsPending() {
			expired = append(expired, challenge)
		}
	}
	return expired, nil
}

// Presence operations

func (s *Storage) SavePresence(ctx context.Context, record *model.PresenceRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	key := presenceKey(record.ProjectCode)

	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, string(record.PlayerKey), data)
	pipe.Expire(ctx, key, s.cfg.PresenceTTL) // Refresh on every heartbeat
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListPresence(ctx context.Context, project model.ProjectCode) ([]*model.PresenceRecord, error) {
	values, err := s.client.HVals(ctx, presenceKey(project)).Result()
	if err != nil {
		return nil, err
	}

	records := make([]*model.PresenceRecord, 0, len(values))
	for _, val := range values {
		var record model.PresenceRecord
		if err := json.Unmarshal([]byte(val), &record); err != nil {
			continue // Skip invalid data
		}
		records = append(records, &record)
	}
	return records, nil
}

// Project teardown

func (s *Storage) DeleteProjectData(ctx context.Context, project model.ProjectCode) error {
	balanceKeys, err := s.client.SMembers(ctx, balancesIndexKey(project)).Result()
	if err != nil {
		return err
	}
	challengeIDs, err := s.client.SMembers(ctx, challengesIndexKey(project)).Result()
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	for _, key := range balanceKeys {
		pipe.Del(ctx, key)
	}
	for _, id := range challengeIDs {
		// Drop the pair guard for challenges still pending
		if challenge, err := s.GetChallenge(ctx, model.ChallengeID(id)); err == nil && challenge.IsPending() {
			pipe.Del(ctx, pendingPairKey(challenge.ProjectCode, challenge.AttackerKey, challenge.TargetKey))
		}
		pipe.Del(ctx, challengeKey(model.ChallengeID(id)))
		pipe.ZRem(ctx, pendingExpiryKey(), id)
	}
	pipe.Del(ctx, balancesIndexKey(project))
	pipe.Del(ctx, challengesIndexKey(project))
	pipe.Del(ctx, presenceKey(project))
	_, err = pipe.Exec(ctx)
	return err
}
