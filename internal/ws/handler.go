package ws

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gridironlink/backend/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// Client represents a connected WebSocket channel. Exactly one user identity is
// bound to it for its lifetime.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	channelID  string
	userID     string
	engine     *game.Engine
	matchmaker *game.Matchmaker
	send       chan []byte
	closed     bool // guarded by hub.mu
}

// Hub maintains the set of active clients and delivers session engine frames
// to them. It implements game.Emitter.
type Hub struct {
	clients    map[string]*Client // channelID -> Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes register/unregister events. Call once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.channelID] = client
			h.mu.Unlock()
			log.Printf("[WS] Channel %s connected (user %s)", client.channelID, client.userID)

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.channelID]; ok && cur == client {
				delete(h.clients, client.channelID)
				if !client.closed {
					client.closed = true
					close(client.send)
				}
			}
			h.mu.Unlock()
			log.Printf("[WS] Channel %s disconnected (user %s)", client.channelID, client.userID)
		}
	}
}

// Emit marshals a frame and queues it on the channel's ordered send buffer.
func (h *Hub) Emit(channelID string, frame game.Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("[WS] Error marshaling %s frame: %v", frame.Type, err)
		return
	}

	h.mu.RLock()
	client, exists := h.clients[channelID]
	if !exists || client.closed {
		h.mu.RUnlock()
		log.Printf("[WS] Emit dropped %s frame for channel %s (gone)", frame.Type, channelID)
		return
	}
	select {
	case client.send <- data:
		h.mu.RUnlock()
	default:
		h.mu.RUnlock()
		log.Printf("[WS] Send buffer full for channel %s, dropping %s frame", channelID, frame.Type)
		if frame.Type == "gameEnd" {
			// A swallowed terminal frame would strand the client in a
			// session that no longer exists; close so it at least observes
			// the ending.
			h.CloseChannel(channelID)
		}
	}
}

// CloseChannel flushes the channel's queued frames and closes the connection
// from the server side. Queued frames drain before the close handshake, so a
// terminal frame enqueued first is always delivered.
func (h *Hub) CloseChannel(channelID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, exists := h.clients[channelID]
	if !exists || client.closed {
		return
	}
	client.closed = true
	close(client.send)
	delete(h.clients, channelID)
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Channel drained and closed - finish the close handshake
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for channel %s: %v", c.channelID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for channel %s: %v", c.channelID, err)
				return
			}
		}
	}
}

// readPump reads inbound frames and dispatches them. On exit the channel is
// unregistered and the disconnect propagates synchronously to the matchmaker
// and the session engine.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
		c.matchmaker.Dequeue(c.channelID)
		c.engine.Disconnect(c.channelID)
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Unexpected close for channel %s: %v", c.channelID, err)
			}
			break
		}

		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			// Malformed frame: protocol noise, ignore
			continue
		}

		c.handleMessage(msg)
	}
}

// generateChannelID mints a fresh opaque channel identifier.
func generateChannelID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "ch_" + hex.EncodeToString(bytes)
}
