package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/inkduel/inkduel-go/internal/model"
)

// Notifier pushes events to named players. Delivery is fire-and-forget;
// callers must not depend on an event arriving.
type Notifier interface {
	Notify(ctx context.Context, project model.ProjectCode, player model.PlayerKey, event model.Event)
}

// Nop is a Notifier that discards all events (tests, headless runs)
type Nop struct{}

// Notify discards the event
func (Nop) Notify(ctx context.Context, project model.ProjectCode, player model.PlayerKey, event model.Event) {
}

var _ Notifier = Nop{}

// SSENotifier delivers events to connected SSE clients via the hub manager
type SSENotifier struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewSSENotifier creates a Notifier backed by the given hub manager
func NewSSENotifier(hubManager *HubManager, logger *slog.Logger) *SSENotifier {
	return &SSENotifier{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-notifier")),
	}
}

var _ Notifier = (*SSENotifier)(nil)

// Notify serializes the event and sends it to the player's connections.
// Players with no open connection simply miss the event.
func (n *SSENotifier) Notify(ctx context.Context, project model.ProjectCode, player model.PlayerKey, event model.Event) {
	hub := n.hubManager.GetHub(project)
	if hub == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("failed to marshal event",
			slog.String("project", string(project)),
			slog.String("kind", string(event.Kind)),
			slog.Any("error", err))
		return
	}

	hub.Send(player, string(event.Kind), string(data))
}
