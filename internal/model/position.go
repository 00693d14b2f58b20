package model

import "math"

// Position is a tile coordinate on a map.
// Value type, passed by value (immutable).
type Position struct {
	X int32
	Y int32
}

// NewPosition creates Position with given tile coordinates.
func NewPosition(x, y int32) Position {
	return Position{X: x, Y: y}
}

// Offset returns a new Position shifted by dx, dy (immutable pattern).
func (p Position) Offset(dx, dy int32) Position {
	p.X += dx
	p.Y += dy
	return p
}

// DistanceSquared returns squared Euclidean distance to other position (no sqrt).
func (p Position) DistanceSquared(other Position) int64 {
	dx := int64(p.X - other.X)
	dy := int64(p.Y - other.Y)
	return dx*dx + dy*dy
}

// Distance returns Euclidean distance to other position rounded to the nearest tile.
func (p Position) Distance(other Position) int {
	return int(math.Round(math.Sqrt(float64(p.DistanceSquared(other)))))
}

// WithinRadius reports whether other lies within r tiles (Euclidean, inclusive).
func (p Position) WithinRadius(other Position, r int) bool {
	return p.DistanceSquared(other) <= int64(r)*int64(r)
}

// Manhattan returns |dx| + |dy|.
func (p Position) Manhattan(other Position) int {
	dx := p.X - other.X
	dy := p.Y - other.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return int(dx + dy)
}
