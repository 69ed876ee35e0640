package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/PattyWambere/Your-Commissioner/pkg/metrics"

	"github.com/rs/zerolog"
)

// Gateway owns the live connection table and the per-conversation rooms.
// Room membership is process-local; with a bridge attached, broadcasts go
// through Redis pub/sub so every instance delivers to its own sockets.
type Gateway struct {
	mu      sync.RWMutex
	rooms   map[uint]map[*Client]struct{}
	joined  map[*Client]map[uint]struct{}
	clients map[*Client]struct{}

	bridge *RedisBridge
	log    zerolog.Logger
}

func NewGateway(logger zerolog.Logger) *Gateway {
	return &Gateway{
		rooms:   make(map[uint]map[*Client]struct{}),
		joined:  make(map[*Client]map[uint]struct{}),
		clients: make(map[*Client]struct{}),
		log:     logger,
	}
}

// AttachBridge routes broadcasts through the bridge and starts consuming
// remote frames. Call once, before serving connections.
func (g *Gateway) AttachBridge(ctx context.Context, b *RedisBridge) {
	g.bridge = b
	go b.run(ctx, g.deliverLocal)
}

func (g *Gateway) Register(c *Client) {
	g.mu.Lock()
	g.clients[c] = struct{}{}
	g.mu.Unlock()
	metrics.ConnectionsOpen.Inc()
}

// Unregister drops the client from every room and closes its send queue,
// which terminates the writer goroutine.
func (g *Gateway) Unregister(c *Client) {
	g.mu.Lock()
	if _, ok := g.clients[c]; !ok {
		g.mu.Unlock()
		return
	}
	delete(g.clients, c)
	for conversationID := range g.joined[c] {
		g.removeFromRoomLocked(c, conversationID)
	}
	delete(g.joined, c)
	g.mu.Unlock()

	c.Close()
	metrics.ConnectionsOpen.Dec()
}

func (g *Gateway) Join(c *Client, conversationID uint) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.clients[c]; !ok {
		return
	}
	room := g.rooms[conversationID]
	if room == nil {
		room = make(map[*Client]struct{})
		g.rooms[conversationID] = room
	}
	room[c] = struct{}{}
	if g.joined[c] == nil {
		g.joined[c] = make(map[uint]struct{})
	}
	g.joined[c][conversationID] = struct{}{}
}

func (g *Gateway) Leave(c *Client, conversationID uint) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeFromRoomLocked(c, conversationID)
	delete(g.joined[c], conversationID)
}

// RoomSize reports current membership, for tests and diagnostics.
func (g *Gateway) RoomSize(conversationID uint) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms[conversationID])
}

// Broadcast emits a new_message event to every member of the conversation's
// room, including the sender's own connections. Delivery is best-effort.
func (g *Gateway) Broadcast(conversationID uint, message any) {
	frame, err := json.Marshal(serverEvent{Type: "new_message", Message: message})
	if err != nil {
		g.log.Error().Err(err).Uint("conversation_id", conversationID).Msg("broadcast marshal failed")
		return
	}
	if g.bridge != nil {
		if err := g.bridge.Publish(context.Background(), conversationID, frame); err != nil {
			g.log.Warn().Err(err).Uint("conversation_id", conversationID).Msg("bridge publish failed")
		}
		return
	}
	g.deliverLocal(conversationID, frame)
}

func (g *Gateway) deliverLocal(conversationID uint, frame []byte) {
	g.mu.RLock()
	members := make([]*Client, 0, len(g.rooms[conversationID]))
	for c := range g.rooms[conversationID] {
		members = append(members, c)
	}
	g.mu.RUnlock()

	for _, c := range members {
		if c.Enqueue(frame) {
			metrics.BroadcastsDelivered.Inc()
		} else {
			metrics.BroadcastsDropped.Inc()
			g.log.Warn().Str("client_id", c.ID).Uint("conversation_id", conversationID).Msg("dropped frame for slow client")
		}
	}
}

func (g *Gateway) removeFromRoomLocked(c *Client, conversationID uint) {
	room := g.rooms[conversationID]
	if room == nil {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(g.rooms, conversationID)
	}
}

type serverEvent struct {
	Type    string `json:"type"`
	Message any    `json:"message,omitempty"`
}
