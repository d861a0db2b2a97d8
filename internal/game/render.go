package game

import (
	"fmt"
	"strconv"
)

// Surface is a drawing target the engine projects its state onto.
type Surface interface {
	Clear(width, height float64, color string)
	FillRect(r Rect, color string)
	FillCircle(c Circle, color string)
	DashedLine(from, to Vec2, dash []float64, color string)
	Text(text string, at Vec2, size float64, color string)
}

const (
	colorBackground = "#000000"
	colorForeground = "#FFFFFF"
	colorNet        = "#555555"
)

// Render draws snap onto s. It never touches game state.
func Render(s Surface, snap Snapshot) {
	w, h := snap.Settings.FieldWidth, snap.Settings.FieldHeight

	s.Clear(w, h, colorBackground)
	s.DashedLine(NewVec2(w/2, 0), NewVec2(w/2, h), []float64{10, 10}, colorNet)

	for _, p := range snap.Paddles {
		s.FillRect(p.Rect(), colorForeground)
	}
	s.FillCircle(snap.Ball.Circle(), colorForeground)

	s.Text(strconv.Itoa(snap.Score.Player1), NewVec2(w/4, 50), 48, colorForeground)
	s.Text(strconv.Itoa(snap.Score.Player2), NewVec2(3*w/4, 50), 48, colorForeground)

	if banner := stateBanner(snap); banner != "" {
		s.Text(banner, NewVec2(w/2, h/2), 32, colorForeground)
	}
}

func stateBanner(snap Snapshot) string {
	switch snap.State {
	case StateWaiting:
		return "Press start"
	case StatePaused:
		return "Paused"
	case StateFinished:
		return fmt.Sprintf("Player %d wins!", snap.Winner)
	}
	return ""
}
