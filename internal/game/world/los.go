package world

// Line returns the Bresenham line from a to b inclusive of both endpoints.
func Line(a, b Point) []Point {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := sign(b.X-a.X), sign(b.Y-a.Y)
	errAcc := dx + dy

	out := []Point{a}
	p := a
	for p != b {
		e2 := 2 * errAcc
		if e2 >= dy {
			errAcc += dy
			p.X += sx
		}
		if e2 <= dx {
			errAcc += dx
			p.Y += sy
		}
		out = append(out, p)
	}
	return out
}

// HasLineOfSight reports whether an unobstructed line runs from `from` to `to`.
// Both endpoints must be on the board. Only intermediate tiles are tested:
// sight-blocking terrain blocks, and so does any point for which blocked
// returns true (e.g. a large creature standing in the way). blocked may be nil.
//
// The result is symmetric in practice but not guaranteed for every geometry;
// callers always trace from the observer.
func HasLineOfSight(b *Board, from, to Point, blocked func(Point) bool) bool {
	if !b.InBounds(from) || !b.InBounds(to) {
		return false
	}
	line := Line(from, to)
	if len(line) <= 2 {
		return true
	}
	for _, p := range line[1 : len(line)-1] {
		if b.BlocksSight(p) {
			return false
		}
		if blocked != nil && blocked(p) {
			return false
		}
	}
	return true
}
