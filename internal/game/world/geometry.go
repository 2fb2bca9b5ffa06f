package world

import "fmt"

// Point is a tile coordinate on a Board. X grows east, Y grows south.
type Point struct {
	X int
	Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

// String returns "(x,y)".
func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Add returns p offset by d's unit step.
func (p Point) Add(d Direction) Point {
	dx, dy := d.Delta()
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Less orders points row-major (y, then x). Used wherever iteration order must
// be deterministic.
func (p Point) Less(o Point) bool {
	if p.Y != o.Y {
		return p.Y < o.Y
	}
	return p.X < o.X
}

// Distance returns the Chebyshev distance between a and b: the number of
// 8-way steps separating them.
//
// Postcondition: Distance(a, b) == Distance(b, a) >= 0.
func Distance(a, b Point) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Adjacent reports whether a and b are distinct and touch (including diagonally).
func Adjacent(a, b Point) bool {
	return a != b && Distance(a, b) == 1
}

// Direction is one of the eight compass facings.
type Direction string

// The eight facings, clockwise from north.
const (
	North     Direction = "north"
	Northeast Direction = "northeast"
	East      Direction = "east"
	Southeast Direction = "southeast"
	South     Direction = "south"
	Southwest Direction = "southwest"
	West      Direction = "west"
	Northwest Direction = "northwest"
)

// Directions lists all facings in the fixed order used for neighbor expansion.
var Directions = []Direction{North, Northeast, East, Southeast, South, Southwest, West, Northwest}

// Delta returns the unit step for d; (0,0) for an unknown direction.
func (d Direction) Delta() (int, int) {
	switch d {
	case North:
		return 0, -1
	case Northeast:
		return 1, -1
	case East:
		return 1, 0
	case Southeast:
		return 1, 1
	case South:
		return 0, 1
	case Southwest:
		return -1, 1
	case West:
		return -1, 0
	case Northwest:
		return -1, -1
	default:
		return 0, 0
	}
}

// IsDiagonal reports whether d moves on both axes.
func (d Direction) IsDiagonal() bool {
	dx, dy := d.Delta()
	return dx != 0 && dy != 0
}

// Valid reports whether d is one of the eight facings.
func (d Direction) Valid() bool {
	for _, v := range Directions {
		if v == d {
			return true
		}
	}
	return false
}

// Opposite returns the facing pointing the other way.
func (d Direction) Opposite() Direction {
	for i, v := range Directions {
		if v == d {
			return Directions[(i+4)%len(Directions)]
		}
	}
	return ""
}

// DirectionTo returns the facing that best points from `from` toward `to`,
// using the sign of each axis. Returns "" when from == to.
func DirectionTo(from, to Point) Direction {
	dx := sign(to.X - from.X)
	dy := sign(to.Y - from.Y)
	for _, d := range Directions {
		x, y := d.Delta()
		if x == dx && y == dy {
			return d
		}
	}
	return ""
}

// Neighbors returns the eight points around p in Directions order. Points may be
// off-board; callers filter with Board.InBounds.
func Neighbors(p Point) []Point {
	out := make([]Point, 0, len(Directions))
	for _, d := range Directions {
		out = append(out, p.Add(d))
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
