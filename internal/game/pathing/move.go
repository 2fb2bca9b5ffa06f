package pathing

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/creature"
	"github.com/cory-johannsen/skirmish/internal/game/world"
)

// MoveStatus classifies the outcome of ApplyMove.
type MoveStatus string

const (
	MoveComplete MoveStatus = "complete"
	MovePartial  MoveStatus = "partial"
	MoveRejected MoveStatus = "rejected"
)

// MoveResult reports what ApplyMove actually did.
type MoveResult struct {
	Status MoveStatus
	// Steps are the tiles actually traversed, in order.
	Steps   []world.Point
	Cost    int
	Engaged bool // movement ended by entering a zone of control
	Reason  string
}

// ApplyMove walks c along path one tile at a time, spending movement for each
// tile entered. A step that is not legal stops the walk; the creature keeps the
// progress made up to the last tile it may stop on.
//
// Precondition: path excludes c's current tile.
// Postcondition: on MoveRejected, c is unchanged. Otherwise c.Position is the
// last step, c.RemainingMovement has dropped by Cost, and c.Facing points along
// the last step. Entering a zone of control sets RemainingMovement to 0.
func ApplyMove(c *creature.Creature, path []world.Point, all []*creature.Creature, b *world.Board) MoveResult {
	if !c.Alive() {
		return MoveResult{Status: MoveRejected, Reason: "creature is dead"}
	}
	if !c.Placed() {
		return MoveResult{Status: MoveRejected, Reason: "creature is not on the board"}
	}
	if len(path) == 0 {
		return MoveResult{Status: MoveRejected, Reason: "empty path"}
	}

	occ := newOccupancy(c, all)
	cur := c.Position
	spent := 0
	engaged := false
	reason := ""

	// Walk speculatively, remembering the last tile the creature may stop on.
	lastStop, lastCost := -1, 0
	var walked []world.Point
	for i, next := range path {
		if !world.Adjacent(cur, next) {
			reason = fmt.Sprintf("step %s is not adjacent to %s", next, cur)
			break
		}
		if !b.InBounds(next) || !canStep(b, cur, next) {
			reason = fmt.Sprintf("%s is impassable", next)
			break
		}
		if !occ.enterable(next) {
			reason = fmt.Sprintf("%s is blocked", next)
			break
		}
		cost := b.MoveCost(next)
		if spent+cost > c.RemainingMovement {
			reason = "not enough movement"
			break
		}
		zoc := occ.threatened(next)
		if zoc && !occ.endable(next) {
			reason = fmt.Sprintf("%s is occupied", next)
			break
		}
		spent += cost
		cur = next
		walked = append(walked, next)
		if occ.endable(next) {
			lastStop, lastCost = i, spent
		}
		if zoc {
			engaged = true
			if i < len(path)-1 {
				reason = "engaged by an enemy"
			}
			break
		}
	}

	if lastStop < 0 {
		if reason == "" {
			reason = "path ends on an occupied tile"
		}
		return MoveResult{Status: MoveRejected, Reason: reason}
	}
	steps := walked[:lastStop+1]
	if lastStop < len(walked)-1 {
		engaged = false
		if reason == "" {
			reason = "path ends on an occupied tile"
		}
	}

	from := c.Position
	if len(steps) > 1 {
		from = steps[len(steps)-2]
	}
	c.Facing = world.DirectionTo(from, steps[len(steps)-1])
	c.Position = steps[len(steps)-1]
	c.SpendMovement(lastCost)
	if engaged {
		c.EndMovement()
	}

	status := MoveComplete
	if len(steps) < len(path) {
		status = MovePartial
	}
	return MoveResult{Status: status, Steps: append([]world.Point(nil), steps...), Cost: lastCost, Engaged: engaged, Reason: reason}
}
