package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/pong/internal/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin is checked by middleware.WebSocketCORSCheck
	},
}

// KeyRouter feeds key events from a viewer into the match running in a tournament.
type KeyRouter interface {
	HandleKey(tournamentID, code string, down bool) bool
}

// Client represents a connected WebSocket viewer of one tournament
type Client struct {
	hub          *Hub
	conn         *websocket.Conn
	id           string
	tournamentID string
	send         chan []byte
}

// Hub maintains the set of active clients, grouped by tournament
type Hub struct {
	rooms      map[string]map[string]*Client // tournamentID -> clientID -> Client
	lastFrame  map[string][]byte             // tournamentID -> most recent frame
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new Hub. Run must be started before clients connect.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[string]*Client),
		lastFrame:  make(map[string][]byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for _, room := range h.rooms {
				for _, c := range room {
					close(c.send)
				}
			}
			h.rooms = make(map[string]map[string]*Client)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.tournamentID]
			if !ok {
				room = make(map[string]*Client)
				h.rooms[client.tournamentID] = room
			}
			room[client.id] = client
			size := len(room)
			frame := h.lastFrame[client.tournamentID]
			h.mu.Unlock()

			log.Printf("[WS] viewer %s joined tournament %s (room_size=%d)", client.id, client.tournamentID, size)
			if frame != nil {
				select {
				case client.send <- frame:
				default:
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.tournamentID]; ok {
				if _, ok := room[client.id]; ok {
					delete(room, client.id)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.tournamentID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("[WS] viewer %s left tournament %s", client.id, client.tournamentID)
		}
	}
}

// BroadcastToTournament sends a message to every viewer of a tournament
func (h *Hub) BroadcastToTournament(tournamentID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] error marshaling message: %v", err)
		return
	}
	h.broadcastRaw(tournamentID, data)
}

func (h *Hub) broadcastRaw(tournamentID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[tournamentID] {
		select {
		case client.send <- data:
		default:
			// Client's buffer is full
			log.Printf("[WS] send buffer full for viewer %s in tournament %s, dropping message", client.id, tournamentID)
		}
	}
}

// publishFrame remembers the frame for late joiners and broadcasts it.
func (h *Hub) publishFrame(tournamentID string, data []byte) {
	h.mu.Lock()
	h.lastFrame[tournamentID] = data
	h.mu.Unlock()
	h.broadcastRaw(tournamentID, data)
}

// RoomSize returns how many viewers watch a tournament.
func (h *Hub) RoomSize(tournamentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[tournamentID])
}

// EventMessage is the envelope pushed to viewers for match and bracket events.
type EventMessage struct {
	Type string       `json:"type"`
	Data events.Event `json:"data"`
}

// Relay forwards an event to the tournament's viewers.
func (h *Hub) Relay(ev events.Event) {
	h.BroadcastToTournament(ev.TournamentID, EventMessage{Type: ev.Type, Data: ev})
}

// Publish lets the hub stand in as the event publisher when Redis is not configured.
func (h *Hub) Publish(_ context.Context, ev events.Event) error {
	h.Relay(ev)
	return nil
}

// InboundMessage is what viewers send. Only "key" is understood.
type InboundMessage struct {
	Type string `json:"type"`
	Code string `json:"code"`
	Down bool   `json:"down"`
}

// HandleWebSocket upgrades a viewer connection for the tournament in the :id path param.
func HandleWebSocket(hub *Hub, keys KeyRouter) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID := c.Param("id")

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] upgrade error: %v", err)
			return
		}

		client := &Client{
			hub:          hub,
			conn:         conn,
			id:           uuid.NewString(),
			tournamentID: tournamentID,
			send:         make(chan []byte, 256),
		}
		select {
		case hub.register <- client:
		case <-hub.done:
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump(keys)
	}
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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] write error for viewer %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] ping error for viewer %s: %v", c.id, err)
				return
			}
		}
	}
}

// readPump reads key events until the connection drops.
func (c *Client) readPump(keys KeyRouter) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] unexpected close for viewer %s: %v", c.id, err)
			}
			return
		}

		var msg InboundMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if msg.Type == "key" {
			keys.HandleKey(c.tournamentID, msg.Code, msg.Down)
		}
	}
}
