// Package pathing computes where creatures can move and what they can see.
// Every query here is read-only; ApplyMove is the sole mutator.
package pathing

import (
	"sort"

	"github.com/cory-johannsen/skirmish/internal/game/creature"
	"github.com/cory-johannsen/skirmish/internal/game/world"
)

// Result is the reachable area of a creature for its remaining movement.
//
// Invariant: every tile in Tiles has an entry in Cost and Paths. The origin is
// included at cost 0 with an empty path.
type Result struct {
	Origin world.Point
	// Tiles are the tiles the creature may end movement on, in row-major order.
	Tiles []world.Point
	Cost  map[world.Point]int
	// Paths maps a tile to the steps leading to it, excluding the origin.
	Paths map[world.Point][]world.Point
}

// Contains reports whether the creature can end its move on p.
func (r Result) Contains(p world.Point) bool {
	_, ok := r.Cost[p]
	return ok
}

// PathTo returns a copy of the path to p.
func (r Result) PathTo(p world.Point) ([]world.Point, bool) {
	path, ok := r.Paths[p]
	if !ok {
		return nil, false
	}
	return append([]world.Point(nil), path...), true
}

// occupancy classifies the living creatures around a mover.
type occupancy struct {
	mover    *creature.Creature
	occupant map[world.Point]*creature.Creature
	hostiles []world.Point
}

func newOccupancy(mover *creature.Creature, all []*creature.Creature) *occupancy {
	o := &occupancy{mover: mover, occupant: make(map[world.Point]*creature.Creature)}
	for _, c := range all {
		if c.ID == mover.ID || !c.Alive() || !c.Placed() {
			continue
		}
		o.occupant[c.Position] = c
		if mover.IsHostileTo(c) {
			o.hostiles = append(o.hostiles, c.Position)
		}
	}
	return o
}

// enterable reports whether the mover may step onto p.
func (o *occupancy) enterable(p world.Point) bool {
	c, ok := o.occupant[p]
	if !ok {
		return true
	}
	if o.mover.IsHostileTo(c) {
		return false
	}
	return !c.Size.BlocksPassage()
}

// endable reports whether the mover may stop on p.
func (o *occupancy) endable(p world.Point) bool {
	_, ok := o.occupant[p]
	return !ok
}

// threatened reports whether p lies in a hostile's zone of control.
func (o *occupancy) threatened(p world.Point) bool {
	for _, h := range o.hostiles {
		if world.Adjacent(p, h) {
			return true
		}
	}
	return false
}

// canStep reports whether terrain allows a single step from a to b, including
// the rule that diagonals may not cut the corner of impassable terrain.
func canStep(b *world.Board, from, to world.Point) bool {
	if !b.Passable(to) {
		return false
	}
	if from.X != to.X && from.Y != to.Y {
		if !b.Passable(world.Pt(to.X, from.Y)) || !b.Passable(world.Pt(from.X, to.Y)) {
			return false
		}
	}
	return true
}

// GetReachableTiles runs a uniform-cost search from c's tile bounded by
// c.RemainingMovement. The board supplies its own dimensions.
//
// Precondition: b must not be nil.
// Postcondition: the result is a pure function of its inputs; neither c, all,
// nor b is modified. A dead or unplaced creature reaches nothing.
func GetReachableTiles(c *creature.Creature, all []*creature.Creature, b *world.Board) Result {
	res := Result{
		Origin: c.Position,
		Cost:   make(map[world.Point]int),
		Paths:  make(map[world.Point][]world.Point),
	}
	if !c.Alive() || !c.Placed() || !b.InBounds(c.Position) {
		return res
	}
	occ := newOccupancy(c, all)
	origin := c.Position
	budget := c.RemainingMovement

	best := map[world.Point]int{origin: 0}
	prev := make(map[world.Point]world.Point)
	done := make(map[world.Point]bool)

	q := &frontier{}
	q.push(node{p: origin, cost: 0})
	for q.Len() > 0 {
		n := q.pop()
		if done[n.p] {
			continue
		}
		done[n.p] = true
		if n.p != origin && occ.threatened(n.p) {
			continue
		}
		for _, next := range world.Neighbors(n.p) {
			if done[next] || !b.InBounds(next) || !canStep(b, n.p, next) || !occ.enterable(next) {
				continue
			}
			cost := n.cost + b.MoveCost(next)
			if cost > budget {
				continue
			}
			if old, seen := best[next]; seen && old <= cost {
				continue
			}
			best[next] = cost
			prev[next] = n.p
			q.push(node{p: next, cost: cost})
		}
	}

	for p, cost := range best {
		if p != origin && !occ.endable(p) {
			continue
		}
		res.Tiles = append(res.Tiles, p)
		res.Cost[p] = cost
		res.Paths[p] = buildPath(prev, origin, p)
	}
	sort.Slice(res.Tiles, func(i, j int) bool { return res.Tiles[i].Less(res.Tiles[j]) })
	return res
}

func buildPath(prev map[world.Point]world.Point, origin, to world.Point) []world.Point {
	var rev []world.Point
	for p := to; p != origin; p = prev[p] {
		rev = append(rev, p)
	}
	path := make([]world.Point, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}
