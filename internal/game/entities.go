package game

// Paddle is one player's bat. Horizontal travel is limited to [MinX, MaxX],
// which keeps each paddle inside its own half of the field.
type Paddle struct {
	Player int     `json:"player"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Speed  float64 `json:"speed"`
	MinX   float64 `json:"min_x"`
	MaxX   float64 `json:"max_x"`
}

// Rect returns the paddle's bounding rectangle.
func (p Paddle) Rect() Rect {
	return Rect{X: p.X, Y: p.Y, W: p.Width, H: p.Height}
}

// move applies one tick of steering. Each direction is checked on its own and
// only taken when the paddle stays inside its bounds afterwards.
func (p *Paddle) move(keys KeySet, b Binding, fieldHeight float64) {
	for _, dir := range directions {
		if !keys.Held(b.Key(dir)) {
			continue
		}
		step := dir.Unit().Times(p.Speed)
		next := NewVec2(p.X, p.Y).Plus(step)
		if step.Y != 0 && (next.Y < 0 || next.Y > fieldHeight-p.Height) {
			continue
		}
		if step.X != 0 && (next.X < p.MinX || next.X > p.MaxX) {
			continue
		}
		p.X, p.Y = next.X, next.Y
	}
}

// Ball is the single ball in play.
type Ball struct {
	Position  Vec2    `json:"position"`
	Velocity  Vec2    `json:"velocity"`
	Radius    float64 `json:"radius"`
	BaseSpeed float64 `json:"base_speed"`
}

// Circle returns the ball's bounding circle.
func (b Ball) Circle() Circle {
	return Circle{Center: b.Position, Radius: b.Radius}
}

// Score holds both players' points.
type Score struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

// Leader returns the player whose score reached max, or 0 if neither has.
func (s Score) Leader(max int) int {
	switch {
	case s.Player1 >= max:
		return Player1
	case s.Player2 >= max:
		return Player2
	}
	return 0
}
