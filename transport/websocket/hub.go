package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/fifteen-puzzle/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Pending broadcasts; beyond this, new ones are dropped.
	broadcastBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message represents a WebSocket message
type Message struct {
	SessionID string              `json:"session_id"`
	State     *service.PuzzleView `json:"state,omitempty"`
	Event     string              `json:"event,omitempty"`
	Data      interface{}         `json:"data,omitempty"`
}

// Client represents a WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

type countRequest struct {
	sessionID string
	reply     chan int
}

// Hub maintains the set of active clients and broadcasts messages. Only the
// Run goroutine touches the sessions map.
type Hub struct {
	// Registered clients by lower-cased session ID
	sessions map[string]map[*Client]bool

	// Outbound messages for a session's clients
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	counts chan countRequest
	done   chan struct{}
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		counts:     make(chan countRequest),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop and blocks until ctx is cancelled, then
// disconnects every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case req := <-h.counts:
			req.reply <- len(h.sessions[sessionKey(req.sessionID)])

		case <-ctx.Done():
			for _, clients := range h.sessions {
				for client := range clients {
					h.unregisterClient(client)
				}
			}
			return
		}
	}
}

// ServeWS handles WebSocket requests from clients
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// ClientCount returns how many clients watch a session
func (h *Hub) ClientCount(sessionID string) int {
	req := countRequest{sessionID: sessionID, reply: make(chan int, 1)}
	select {
	case h.counts <- req:
		return <-req.reply
	case <-h.done:
		return 0
	}
}

// BroadcastToSession sends a puzzle state update to all clients in a session
func (h *Hub) BroadcastToSession(sessionID string, state *service.PuzzleView) {
	h.enqueue(&Message{
		SessionID: sessionID,
		State:     state,
		Event:     service.EventStateUpdate,
	})
}

// BroadcastEvent sends a custom event to all clients in a session. It never
// blocks, so it is safe to call while holding locks.
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.enqueue(&Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	})
}

func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		log.Printf("WebSocket broadcast queue full, dropping %s for session %s",
			message.Event, message.SessionID)
	}
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	key := sessionKey(client.sessionID)
	if h.sessions[key] == nil {
		h.sessions[key] = make(map[*Client]bool)
	}
	h.sessions[key][client] = true

	log.Printf("Client registered for session %s (total clients: %d)",
		client.sessionID, len(h.sessions[key]))
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	key := sessionKey(client.sessionID)
	if clients, ok := h.sessions[key]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.sessions, key)
			}

			log.Printf("Client unregistered from session %s (remaining clients: %d)",
				client.sessionID, len(clients))
		}
	}
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	clients, ok := h.sessions[sessionKey(message.SessionID)]
	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Client's send channel is full, drop it
			h.unregisterClient(client)
		}
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Moves go through the JSON API; reads only keep the connection alive
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One JSON document per frame
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func sessionKey(sessionID string) string {
	return strings.ToLower(sessionID)
}
