package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/pong/internal/events"
	"github.com/playmatatu/pong/internal/game"
)

type keyLog struct {
	mu   sync.Mutex
	keys []string
}

func (k *keyLog) HandleKey(tournamentID, code string, down bool) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys = append(k.keys, tournamentID+":"+code)
	return true
}

func (k *keyLog) seen() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.keys...)
}

// attach puts a bare client in a room without a connection.
func attach(h *Hub, tournamentID string) *Client {
	c := &Client{hub: h, id: "test", tournamentID: tournamentID, send: make(chan []byte, 8)}
	h.mu.Lock()
	h.rooms[tournamentID] = map[string]*Client{c.id: c}
	h.mu.Unlock()
	return c
}

func TestFrameRecorderShipsOneFramePerFlush(t *testing.T) {
	hub := NewHub()
	viewer := attach(hub, "t1")
	rec := NewFrameRecorder(hub, "t1")

	snap := game.Snapshot{
		Settings: game.DefaultSettings(),
		State:    game.StateWaiting,
	}
	game.Render(rec, snap)
	rec.Flush()

	var frame Frame
	select {
	case data := <-viewer.send:
		if err := json.Unmarshal(data, &frame); err != nil {
			t.Fatalf("frame is not JSON: %v", err)
		}
	default:
		t.Fatal("no frame delivered")
	}
	if frame.Type != "frame" || frame.Seq != 1 {
		t.Errorf("frame header = %s #%d", frame.Type, frame.Seq)
	}
	if len(frame.Ops) == 0 || frame.Ops[0].Op != "clear" {
		t.Fatalf("first op = %+v, want clear", frame.Ops)
	}
	var texts []string
	for _, op := range frame.Ops {
		if op.Op == "text" {
			texts = append(texts, op.Text)
		}
	}
	if len(texts) != 3 || texts[2] != "Press start" {
		t.Errorf("texts = %v, want both scores and the waiting banner", texts)
	}

	// a second render starts from a clean op list
	game.Render(rec, snap)
	rec.Flush()
	var second Frame
	json.Unmarshal(<-viewer.send, &second)
	if len(second.Ops) != len(frame.Ops) || second.Seq != 2 {
		t.Errorf("second frame has %d ops seq %d, want %d ops seq 2", len(second.Ops), second.Seq, len(frame.Ops))
	}
}

func TestRelayOnlyReachesItsTournament(t *testing.T) {
	hub := NewHub()
	a := attach(hub, "a")
	b := &Client{hub: hub, id: "other", tournamentID: "b", send: make(chan []byte, 8)}
	hub.rooms["b"] = map[string]*Client{b.id: b}

	hub.Publish(context.Background(), events.Event{Type: events.TypeScore, TournamentID: "a", Player1: 1})

	var msg EventMessage
	select {
	case data := <-a.send:
		json.Unmarshal(data, &msg)
	default:
		t.Fatal("viewer of a got nothing")
	}
	if msg.Type != events.TypeScore || msg.Data.Player1 != 1 {
		t.Errorf("message = %+v", msg)
	}
	select {
	case <-b.send:
		t.Error("viewer of b received a's event")
	default:
	}
}

func TestWebSocketRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)
	keys := &keyLog{}

	router := gin.New()
	router.GET("/tournaments/:id/ws", HandleWebSocket(hub, keys))
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/tournaments/t9/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.RoomSize("t9") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("viewer never joined the room")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := conn.WriteJSON(InboundMessage{Type: "key", Code: "w", Down: true}); err != nil {
		t.Fatalf("write: %v", err)
	}
	hub.Relay(events.Event{Type: events.TypeMatchStarted, TournamentID: "t9"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg EventMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != events.TypeMatchStarted {
		t.Errorf("message type = %s, want %s", msg.Type, events.TypeMatchStarted)
	}

	for len(keys.seen()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("key event never routed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := keys.seen()[0]; got != "t9:w" {
		t.Errorf("routed key = %s, want t9:w", got)
	}
}
