package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// Message is the JSON envelope for every frame on the event stream.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Client is one connected spectator socket. It shuttles frames between the
// websocket connection and the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans battle events out to every connected spectator. One hub per
// server; Run must be started in its own goroutine.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

// NewHub creates an idle hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run is the hub's event loop. Blocks; run as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			slog.Debug("spectator connected", "total", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case frame := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- frame:
				default:
					// A full buffer means a stalled or gone client.
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Publish wraps a payload in the standard envelope and queues it for every
// spectator. Safe to call from the battle goroutine; a hub that was never
// started simply drops frames once the channel fills.
func (h *Hub) Publish(msgType string, payload any) {
	frame, err := json.Marshal(Message{Type: msgType, Payload: payload})
	if err != nil {
		slog.Error("event frame marshal failed", "type", msgType, "error", err)
		return
	}
	select {
	case h.broadcast <- frame:
	default:
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWs upgrades a GET request to a spectator websocket.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256)}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection so pings and closes are processed. The
// stream is one-way: spectator input is discarded.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("spectator read error", "error", err)
			}
			break
		}
	}
}

// writePump writes queued frames until the send channel closes.
func (c *Client) writePump() {
	defer c.conn.Close()
	for frame := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
}
