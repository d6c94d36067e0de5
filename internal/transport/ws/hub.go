package ws

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// Message is the WebSocket envelope format, inbound and outbound.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans events out to the connected clients of the single session.
// It implements session.Broadcaster: payloads are marshaled in the
// caller's goroutine, so the snapshot a broadcast carries is fixed
// before the coordinator moves on, and the single broadcast channel
// preserves per-recipient ordering.
type Hub struct {
	conns map[string]*Connection
	log   zerolog.Logger

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *envelope
}

// Connection is one client's send side, keyed by its connection id.
type Connection struct {
	ID   string
	Send chan []byte
}

type envelope struct {
	// to is empty for a broadcast to every connection.
	to   string
	data []byte
}

// NewHub creates a hub and starts its dispatch loop.
func NewHub(logger zerolog.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]*Connection),
		log:        logger,
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *envelope, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.conns[conn.ID] = conn
			h.log.Info().Str("conn", conn.ID).Msg("client connected")

		case conn := <-h.unregister:
			if existing, ok := h.conns[conn.ID]; ok && existing == conn {
				delete(h.conns, conn.ID)
				close(conn.Send)
				h.log.Info().Str("conn", conn.ID).Msg("client disconnected")
			}

		case env := <-h.broadcast:
			if env.to != "" {
				if conn, ok := h.conns[env.to]; ok {
					conn.trySend(env.data)
				}
				continue
			}
			for _, conn := range h.conns {
				conn.trySend(env.data)
			}
		}
	}
}

// trySend drops the message if the connection's buffer is full rather
// than blocking the dispatch loop on a slow client.
func (c *Connection) trySend(data []byte) {
	select {
	case c.Send <- data:
	default:
	}
}

// Register adds a connection.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToAll sends an event to every connected client.
func (h *Hub) BroadcastToAll(event string, payload interface{}) {
	h.broadcast <- &envelope{data: h.encode(event, payload)}
}

// SendTo sends an event to exactly one connection.
func (h *Hub) SendTo(connID string, event string, payload interface{}) {
	h.broadcast <- &envelope{to: connID, data: h.encode(event, payload)}
}

func (h *Hub) encode(event string, payload interface{}) []byte {
	body, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("payload marshal failed")
		body = []byte("{}")
	}
	data, _ := json.Marshal(&Message{Type: event, Payload: body})
	return data
}
