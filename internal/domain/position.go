package domain

// Position is a point on the canvas, in flow coordinates.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NewPosition creates a new position
func NewPosition(x, y float64) Position {
	return Position{X: x, Y: y}
}
