package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/websocket"

	"github.com/calvinwijaya/blackjack/internal/service"
)

const (
	MessageWelcome    = "welcome"
	MessageSubscribe  = "subscribe"
	MessageGameUpdate = "gameUpdate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

// Message represents a WebSocket message
type Message struct {
	Type   string `json:"type"`
	GameID string `json:"gameId,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// Client represents a connected WebSocket client watching at most one game
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	gameID string
	hub    *Hub
}

type subscription struct {
	client *Client
	gameID string
}

// Hub tracks connected clients by the game they watch and fans game updates
// out to them.
type Hub struct {
	clients    map[*Client]bool
	games      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
	done       chan struct{}
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
	logger     log.Logger
}

// NewHub creates a new WebSocket hub. Upgrades are accepted from
// allowedOrigin only; an empty origin allows any.
func NewHub(logger log.Logger, allowedOrigin string) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		games:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || origin == allowedOrigin
			},
		},
		logger: logger.With("module", "websocket"),
	}
}

// Run serves register, unregister and subscribe requests until ctx is done.
// Remaining clients are disconnected on exit.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.join(client, client.gameID)
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case sub := <-h.subscribe:
			h.mu.Lock()
			if h.clients[sub.client] {
				h.leave(sub.client)
				h.join(sub.client, sub.gameID)
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.remove(client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// join and leave expect h.mu to be held.
func (h *Hub) join(client *Client, gameID string) {
	client.gameID = gameID
	if gameID == "" {
		return
	}
	if _, exists := h.games[gameID]; !exists {
		h.games[gameID] = make(map[*Client]bool)
	}
	h.games[gameID][client] = true
}

func (h *Hub) leave(client *Client) {
	watchers := h.games[client.gameID]
	if watchers == nil {
		return
	}
	delete(watchers, client)
	// Clean up games nobody watches
	if len(watchers) == 0 {
		delete(h.games, client.gameID)
	}
}

func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	h.leave(client)
	close(client.send)
}

// BroadcastToGame sends a message to every client watching gameID
func (h *Hub) BroadcastToGame(gameID string, message any) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("error marshaling message", "game", gameID, "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.games[gameID] {
		select {
		case client.send <- data:
		default:
			h.logger.Debug("client buffer full, dropping update", "game", gameID)
		}
	}
}

// BroadcastGameUpdate pushes the current view of a game to its watchers
func (h *Hub) BroadcastGameUpdate(view service.GameView) {
	h.BroadcastToGame(view.GameID, Message{
		Type:   MessageGameUpdate,
		GameID: view.GameID,
		Data:   view,
	})
}

// Watchers reports how many clients watch gameID.
func (h *Hub) Watchers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}

// WebSocketHandler upgrades the request and subscribes the client to the
// game named by the gameId query parameter.
func (h *Hub) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "err", err)
		return
	}

	gameID := r.URL.Query().Get("gameId")
	client := &Client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		gameID: gameID,
		hub:    h,
	}

	welcome, _ := json.Marshal(Message{
		Type:   MessageWelcome,
		GameID: gameID,
		Data:   map[string]string{"message": "Connected to Blackjack game server"},
	})
	client.send <- welcome

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.readPump()
	go client.writePump()
}

// readPump handles subscribe requests from the connection until it closes
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
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("websocket error", "err", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.hub.logger.Debug("ignoring malformed message", "err", err)
			continue
		}
		if msg.Type != MessageSubscribe {
			continue
		}
		select {
		case c.hub.subscribe <- subscription{client: c, gameID: msg.GameID}:
		case <-c.hub.done:
			return
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
