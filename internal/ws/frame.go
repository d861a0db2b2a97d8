package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/playmatatu/pong/internal/game"
)

// DrawOp is one recorded drawing call.
type DrawOp struct {
	Op    string    `json:"op"`
	X     float64   `json:"x,omitempty"`
	Y     float64   `json:"y,omitempty"`
	W     float64   `json:"w,omitempty"`
	H     float64   `json:"h,omitempty"`
	R     float64   `json:"r,omitempty"`
	X2    float64   `json:"x2,omitempty"`
	Y2    float64   `json:"y2,omitempty"`
	Dash  []float64 `json:"dash,omitempty"`
	Text  string    `json:"text,omitempty"`
	Size  float64   `json:"size,omitempty"`
	Color string    `json:"color"`
}

// Frame is what viewers receive for every rendered tick.
type Frame struct {
	Type string   `json:"type"`
	Seq  uint64   `json:"seq"`
	Ops  []DrawOp `json:"ops"`
}

// FrameRecorder is a game.Surface that records draw calls and ships them to a
// tournament's viewers as one frame per Flush.
type FrameRecorder struct {
	hub          *Hub
	tournamentID string

	mu  sync.Mutex
	ops []DrawOp
	seq uint64
}

var (
	_ game.Surface      = (*FrameRecorder)(nil)
	_ game.FrameFlusher = (*FrameRecorder)(nil)
)

func NewFrameRecorder(hub *Hub, tournamentID string) *FrameRecorder {
	return &FrameRecorder{hub: hub, tournamentID: tournamentID}
}

func (f *FrameRecorder) add(op DrawOp) {
	f.mu.Lock()
	f.ops = append(f.ops, op)
	f.mu.Unlock()
}

func (f *FrameRecorder) Clear(width, height float64, color string) {
	f.mu.Lock()
	f.ops = f.ops[:0]
	f.mu.Unlock()
	f.add(DrawOp{Op: "clear", W: width, H: height, Color: color})
}

func (f *FrameRecorder) FillRect(r game.Rect, color string) {
	f.add(DrawOp{Op: "rect", X: r.X, Y: r.Y, W: r.W, H: r.H, Color: color})
}

func (f *FrameRecorder) FillCircle(c game.Circle, color string) {
	f.add(DrawOp{Op: "circle", X: c.Center.X, Y: c.Center.Y, R: c.Radius, Color: color})
}

func (f *FrameRecorder) DashedLine(from, to game.Vec2, dash []float64, color string) {
	f.add(DrawOp{Op: "line", X: from.X, Y: from.Y, X2: to.X, Y2: to.Y, Dash: append([]float64(nil), dash...), Color: color})
}

func (f *FrameRecorder) Text(text string, at game.Vec2, size float64, color string) {
	f.add(DrawOp{Op: "text", X: at.X, Y: at.Y, Text: text, Size: size, Color: color})
}

// Flush sends the ops recorded since the last Clear.
func (f *FrameRecorder) Flush() {
	f.mu.Lock()
	f.seq++
	frame := Frame{Type: "frame", Seq: f.seq, Ops: append([]DrawOp(nil), f.ops...)}
	f.mu.Unlock()

	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("[WS] error marshaling frame: %v", err)
		return
	}
	f.hub.publishFrame(f.tournamentID, data)
}
