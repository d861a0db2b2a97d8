package game

// Vec2 is a 2D vector used for positions and velocities on the field.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Plus(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}
