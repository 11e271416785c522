package presence

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/inkduel/inkduel-go/internal/dependencies/clock"
	"github.com/inkduel/inkduel-go/internal/model"
	"github.com/inkduel/inkduel-go/internal/storage"
)

// Service tracks which players are active in a project via liveness
// pings with a sliding expiry window
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new presence service
func New(store storage.Storage, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		clock:   clk,
		logger:  logger,
	}
}

// Heartbeat records that the player is alive right now
func (s *Service) Heartbeat(ctx context.Context, project model.ProjectCode, playerName, sessionID string) error {
	record := &model.PresenceRecord{
		ProjectCode: project,
		PlayerKey:   model.NormalizePlayerKey(playerName),
		PlayerName:  playerName,
		SessionID:   sessionID,
		LastSeen:    s.clock.Now(),
	}
	return s.storage.SavePresence(ctx, record)
}

// ListActive returns the attackable-target list: players seen within the
// active window, excluding the requester, each annotated with whether the
// requester may challenge them right now. Ordered by review tokens
// descending, then name, for deterministic display.
func (s *Service) ListActive(ctx context.Context, project model.ProjectCode, excluding model.PlayerKey) ([]model.ActivePlayer, error) {
	records, err := s.storage.ListPresence(ctx, project)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	active := make([]model.ActivePlayer, 0, len(records))

	for _, record := range records {
		if record.PlayerKey == excluding || !record.ActiveAt(now) {
			continue
		}

		player := model.ActivePlayer{
			PlayerKey:  record.PlayerKey,
			PlayerName: record.PlayerName,
		}

		balance, err := s.storage.GetBalance(ctx, project, record.PlayerKey)
		if err != nil {
			if !errors.Is(err, model.ErrPlayerNotFound) {
				return nil, err
			}
			// Heartbeats can arrive before the player's first init;
			// show them with empty balances.
			active = append(active, player)
			continue
		}

		player.ReviewTokens = balance.ReviewTokens
		player.ShieldTokens = balance.ShieldTokens

		if balance.ReviewTokens > 0 {
			_, err := s.storage.GetPendingChallenge(ctx, project, excluding, record.PlayerKey)
			if errors.Is(err, model.ErrChallengeNotFound) {
				player.CanChallenge = true
			} else if err != nil {
				return nil, err
			}
		}

		active = append(active, player)
	}

	sort.Slice(active, func(i, j int) bool {
		if active[i].ReviewTokens != active[j].ReviewTokens {
			return active[i].ReviewTokens > active[j].ReviewTokens
		}
		return active[i].PlayerName < active[j].PlayerName
	})

	return active, nil
}
