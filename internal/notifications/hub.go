// Package notifications provides real-time room-scoped message delivery.
package notifications

import (
	"context"
	"errors"
	"log"
	"sync"

	"campushub/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

// RoomHub is a websocket hub that fans messages out to string-named rooms.
// A client may sit in any number of rooms; every client is joined to its
// own user room on registration.
type RoomHub struct {
	mu         sync.RWMutex
	rooms      map[string]map[*Client]struct{}
	members    map[*Client]map[string]struct{}
	conns      map[uint]map[*Client]struct{}
	totalConns int
	presence   *ConnectionManager
	shutdown   chan struct{}
	done       chan struct{}
}

// NewRoomHub creates a new RoomHub instance.
func NewRoomHub() *RoomHub {
	return &RoomHub{
		rooms:    make(map[string]map[*Client]struct{}),
		members:  make(map[*Client]map[string]struct{}),
		conns:    make(map[uint]map[*Client]struct{}),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *RoomHub) Name() string { return "room hub" }

// SetPresence attaches a ConnectionManager so registrations mirror user
// presence into Redis.
func (h *RoomHub) SetPresence(m *ConnectionManager) {
	h.mu.Lock()
	h.presence = m
	h.mu.Unlock()
}

// Register a connection for a given userID. Returns the Client or error if limits exceeded.
func (h *RoomHub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()

	if h.totalConns >= maxTotalConns {
		h.mu.Unlock()
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}

	if len(m) >= maxConnsPerUser {
		h.mu.Unlock()
		return nil, errors.New("user connection limit reached")
	}

	client := NewClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++

	h.joinLocked(client, UserRoom(userID))
	presence := h.presence
	h.mu.Unlock()

	if presence != nil {
		presence.Register(context.Background(), userID)
	}
	observability.WebSocketConnectionsTotal.Inc()
	return client, nil
}

// UnregisterClient removes a connection and clears all of its room memberships.
func (h *RoomHub) UnregisterClient(client *Client) {
	h.mu.Lock()
	removed := false
	if m, ok := h.conns[client.UserID]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.totalConns--
			removed = true
		}
		if len(m) == 0 {
			delete(h.conns, client.UserID)
		}
	}
	if removed {
		for room := range h.members[client] {
			h.leaveRoomLocked(client, room)
		}
		delete(h.members, client)
	}
	presence := h.presence
	h.mu.Unlock()

	if removed {
		if presence != nil {
			presence.Unregister(context.Background(), client.UserID)
		}
		observability.WebSocketConnectionsTotal.Dec()
	}
}

// Join adds the client to a named room. Idempotent.
func (h *RoomHub) Join(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.joinLocked(client, room)
}

func (h *RoomHub) joinLocked(client *Client, room string) {
	if h.members[client] == nil {
		h.members[client] = make(map[string]struct{})
	}
	if _, already := h.members[client][room]; already {
		return
	}
	h.members[client][room] = struct{}{}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][client] = struct{}{}
	observability.RecordRoomJoin(room)
}

// Leave removes the client from a named room.
func (h *RoomHub) Leave(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.members[client][room]; !ok {
		return
	}
	delete(h.members[client], room)
	h.leaveRoomLocked(client, room)
}

func (h *RoomHub) leaveRoomLocked(client *Client, room string) {
	if clients, ok := h.rooms[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
		observability.RecordRoomLeave(room)
	}
}

// BroadcastRoom sends message to every client in the room. Rooms nobody has
// joined silently drop the message.
func (h *RoomHub) BroadcastRoom(room, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients, ok := h.rooms[room]
	if !ok {
		return
	}
	data := []byte(message)
	for c := range clients {
		c.TrySend(data)
	}
}

// BroadcastUser sends message to all of a user's connections via their user room.
func (h *RoomHub) BroadcastUser(userID uint, message string) {
	h.BroadcastRoom(UserRoom(userID), message)
}

// RoomSize reports the current number of clients in a room.
func (h *RoomHub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// InRoom reports whether the client currently sits in the room.
func (h *RoomHub) InRoom(client *Client, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.members[client][room]
	return ok
}

// StartWiring connects the Notifier to this hub: messages published to any
// room channel on Redis are fanned out to local room members.
func (h *RoomHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartRoomSubscriber(ctx, func(channel, payload string) {
		room, ok := RoomFromChannel(channel)
		if !ok {
			log.Printf("invalid room channel: %s", channel)
			return
		}
		h.BroadcastRoom(room, payload)
	})
}

// Shutdown gracefully closes all websocket connections
func (h *RoomHub) Shutdown(_ context.Context) error {
	close(h.shutdown)

	if h.presence != nil {
		h.presence.Stop()
	}

	h.mu.Lock()
	for userID, userConns := range h.conns {
		for client := range userConns {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				log.Printf("failed to write close message for user %d: %v", userID, err)
			}
			if err := client.Conn.Close(); err != nil {
				log.Printf("failed to close websocket for user %d: %v", userID, err)
			}
		}
	}
	h.rooms = make(map[string]map[*Client]struct{})
	h.members = make(map[*Client]map[string]struct{})
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	h.mu.Unlock()

	close(h.done)

	return nil
}
