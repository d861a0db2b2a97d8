package game

// DeflectionDamping scales how far from paddle center a hit lands into vertical ball speed.
const DeflectionDamping = 0.7

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) Right() float64 {
	return r.X + r.W
}

func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

func (r Rect) CenterY() float64 {
	return r.Y + r.H/2
}

// Circle is a circle given by its center and radius.
type Circle struct {
	Center Vec2
	Radius float64
}

// CircleOverlapsRect reports whether the circle touches or overlaps the rectangle,
// using the point of the rectangle closest to the circle's center.
func CircleOverlapsRect(c Circle, r Rect) bool {
	nearestX := ClampF(c.Center.X, r.X, r.Right())
	nearestY := ClampF(c.Center.Y, r.Y, r.Bottom())
	dx := c.Center.X - nearestX
	dy := c.Center.Y - nearestY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// CrossesHorizontalBounds reports whether the circle's top or bottom edge
// reaches outside [0, height].
func CrossesHorizontalBounds(c Circle, height float64) bool {
	return c.Center.Y-c.Radius <= 0 || c.Center.Y+c.Radius >= height
}

// ReflectX negates the horizontal component.
func ReflectX(v Vec2) Vec2 {
	return Vec2{X: -v.X, Y: v.Y}
}

// ReflectY negates the vertical component.
func ReflectY(v Vec2) Vec2 {
	return Vec2{X: v.X, Y: -v.Y}
}

// HitPosition returns where along the paddle's height y lands, from -1 (top edge)
// through 0 (center) to 1 (bottom edge).
func HitPosition(y float64, paddle Rect) float64 {
	half := paddle.H / 2
	if half == 0 {
		return 0
	}
	return ClampF((y-paddle.CenterY())/half, -1, 1)
}

// DeflectionVY is the vertical velocity after a paddle hit at height y.
func DeflectionVY(y float64, paddle Rect, baseSpeed float64) float64 {
	return HitPosition(y, paddle) * baseSpeed * DeflectionDamping
}

// ClampF restricts a float64 value to be within [lo, hi].
func ClampF(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
