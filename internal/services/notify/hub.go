package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/inkduel/inkduel-go/internal/model"
)

// Hub manages SSE clients for a single project
type Hub struct {
	project model.ProjectCode
	clients map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	// Channels for managing clients
	register   chan *Client
	unregister chan *Client
	outbound   chan targetedMessage
	done       chan struct{}
}

type targetedMessage struct {
	player  model.PlayerKey
	payload []byte
}

// NewHub creates a new Hub for a project
func NewHub(project model.ProjectCode, logger *slog.Logger) *Hub {
	return &Hub{
		project:    project,
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("project", string(project))),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan targetedMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Info("notify hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("notify client registered",
				slog.String("player", string(client.player)),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				duration := time.Since(client.connectedAt)
				h.logger.Info("notify client unregistered",
					slog.String("player", string(client.player)),
					slog.Duration("connection_duration", duration),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.outbound:
			h.mu.RLock()
			for client := range h.clients {
				if client.player != message.player {
					continue
				}
				select {
				case client.send <- message.payload:
				default:
					h.logger.Warn("notify message dropped - client buffer full",
						slog.String("player", string(client.player)))
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("notify hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Send delivers an SSE event to all of one player's connections
func (h *Hub) Send(player model.PlayerKey, eventName, data string) {
	msg := targetedMessage{player: player, payload: formatSSEMessage(eventName, data)}
	select {
	case h.outbound <- msg:
	default:
		h.logger.Warn("notify send dropped - hub buffer full",
			slog.String("player", string(player)))
	}
}

// Close shuts down the hub
func (h *Hub) Close() {
	close(h.done)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// formatSSEMessage formats an SSE message with event name and data.
// Multi-line data gets a "data: " prefix on each line.
func formatSSEMessage(eventName, data string) []byte {
	msg := "event: " + eventName + "\n"
	lines := splitLines(data)
	for _, line := range lines {
		msg += "data: " + line + "\n"
	}
	msg += "\n"
	return []byte(msg)
}

// splitLines splits a string into lines, handling various line endings
func splitLines(s string) []string {
	var lines []string
	var current string
	for _, r := range s {
		if r == '\n' {
			lines = append(lines, current)
			current = ""
		} else if r != '\r' {
			current += string(r)
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}

// HubManager manages hubs for all projects
type HubManager struct {
	hubs   map[model.ProjectCode]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.ProjectCode]*Hub),
		logger: logger.With(slog.String("component", "notify")),
	}
}

// GetOrCreateHub returns the hub for a project, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(project model.ProjectCode) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[project]; ok {
		return hub
	}

	hub := NewHub(project, m.logger)
	m.hubs[project] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a project, or nil if none exists
func (m *HubManager) GetHub(project model.ProjectCode) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[project]
}

// Shutdown closes all hubs
func (m *HubManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for project, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, project)
	}
}
