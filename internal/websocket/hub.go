package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	WorkspaceID() int32
	Send(data []byte) error
	Close() error
}

// Hub fans events out to the clients of one workspace room.
// It is safe for concurrent use.
type Hub struct {
	rooms  map[int32]map[string]ClientInterface
	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[int32]map[string]ClientInterface),
		logger: log.With().Str("component", "ws_hub").Logger(),
	}
}

// Register adds a client to its workspace room and greets it with a ready event
func (h *Hub) Register(client ClientInterface) {
	workspaceID := client.WorkspaceID()
	clientID := client.ID()

	h.mu.Lock()
	room, ok := h.rooms[workspaceID]
	if !ok {
		room = make(map[string]ClientInterface)
		h.rooms[workspaceID] = room
	}
	room[clientID] = client
	h.mu.Unlock()

	h.logger.Debug().
		Int32("workspace_id", workspaceID).
		Str("client_id", clientID).
		Msg("WebSocket client registered")

	if data, err := ConnectionReady(clientID, workspaceID).ToJSON(); err == nil {
		_ = client.Send(data)
	}
}

// Unregister removes a client from its room; empty rooms are dropped
func (h *Hub) Unregister(client ClientInterface) {
	workspaceID := client.WorkspaceID()
	clientID := client.ID()

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[workspaceID]
	if !ok {
		return
	}
	if _, exists := room[clientID]; !exists {
		return
	}
	delete(room, clientID)
	if len(room) == 0 {
		delete(h.rooms, workspaceID)
	}

	h.logger.Debug().
		Int32("workspace_id", workspaceID).
		Str("client_id", clientID).
		Msg("WebSocket client unregistered")
}

// Broadcast sends an event to every client in a workspace room.
// Sends happen outside the lock, one goroutine per client.
func (h *Hub) Broadcast(workspaceID int32, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		h.logger.Error().
			Err(err).
			Int32("workspace_id", workspaceID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	recipients := h.snapshot(workspaceID)
	if len(recipients) == 0 {
		return
	}

	for _, client := range recipients {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				h.logger.Warn().
					Err(err).
					Int32("workspace_id", workspaceID).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	h.logger.Debug().
		Int32("workspace_id", workspaceID).
		Str("event_type", event.Type).
		Int("client_count", len(recipients)).
		Msg("Broadcast event")
}

// Shutdown closes every connected client and empties the hub
func (h *Hub) Shutdown() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[int32]map[string]ClientInterface)
	h.mu.Unlock()

	closed := 0
	for _, room := range rooms {
		for _, client := range room {
			_ = client.Close()
			closed++
		}
	}
	h.logger.Info().Int("client_count", closed).Msg("WebSocket hub shut down")
}

// ClientCount returns the number of clients connected to a workspace
func (h *Hub) ClientCount(workspaceID int32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[workspaceID])
}

// TotalClientCount returns the total number of connected clients across all workspaces
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, room := range h.rooms {
		total += len(room)
	}
	return total
}

func (h *Hub) snapshot(workspaceID int32) []ClientInterface {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room := h.rooms[workspaceID]
	clients := make([]ClientInterface, 0, len(room))
	for _, client := range room {
		clients = append(clients, client)
	}
	return clients
}
