package pathing

import (
	"sort"

	"github.com/cory-johannsen/skirmish/internal/game/creature"
	"github.com/cory-johannsen/skirmish/internal/game/world"
)

// DefaultVisionRange is the sight radius used when neither the options nor the
// observer specify one.
const DefaultVisionRange = 20

// VisibilityOptions tune a visibility query.
type VisibilityOptions struct {
	// VisionRange caps the Chebyshev distance at which creatures are seen; 0 uses DefaultVisionRange.
	VisionRange int
	// Exclude lists creature IDs that neither count as targets nor block sight.
	Exclude []string
}

// SightBlockers returns a predicate true for tiles holding a living creature
// large enough to block line of sight. Creatures whose IDs are in exclude are ignored.
func SightBlockers(all []*creature.Creature, exclude ...string) func(world.Point) bool {
	blocking := make(map[world.Point]bool)
outer:
	for _, c := range all {
		if !c.Alive() || !c.Placed() || !c.Size.BlocksSight() {
			continue
		}
		for _, id := range exclude {
			if c.ID == id {
				continue outer
			}
		}
		blocking[c.Position] = true
	}
	return func(p world.Point) bool { return blocking[p] }
}

// CanSee reports whether a viewer at from can see tile to: within rangeLimit,
// with line of sight, and with the target tile lit (dark tiles only at distance <= 1).
func CanSee(b *world.Board, from, to world.Point, rangeLimit int, blocked func(world.Point) bool) bool {
	d := world.Distance(from, to)
	if d > rangeLimit {
		return false
	}
	if b.LightAt(to) == world.LightDark && d > 1 {
		return false
	}
	return world.HasLineOfSight(b, from, to, blocked)
}

// GetVisibleCreatures returns the living, placed creatures visible from (x, y),
// nearest first with ties broken by ID. The creature standing on (x, y) is not included.
func GetVisibleCreatures(x, y int, all []*creature.Creature, b *world.Board, opts VisibilityOptions) []*creature.Creature {
	from := world.Pt(x, y)
	rangeLimit := opts.VisionRange
	if rangeLimit <= 0 {
		rangeLimit = DefaultVisionRange
	}
	excluded := make(map[string]bool, len(opts.Exclude))
	for _, id := range opts.Exclude {
		excluded[id] = true
	}
	blocked := SightBlockers(all, opts.Exclude...)

	out := []*creature.Creature{}
	for _, c := range all {
		if !c.Alive() || !c.Placed() || excluded[c.ID] || c.Position == from {
			continue
		}
		if CanSee(b, from, c.Position, rangeLimit, blocked) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := world.Distance(from, out[i].Position), world.Distance(from, out[j].Position)
		if di != dj {
			return di < dj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// VisibleTo returns the creatures c can see from its own tile using its vision range,
// falling back to defaultRange.
func VisibleTo(c *creature.Creature, all []*creature.Creature, b *world.Board, defaultRange int) []*creature.Creature {
	if !c.Placed() {
		return []*creature.Creature{}
	}
	r := c.VisionRange
	if r <= 0 {
		r = defaultRange
	}
	return GetVisibleCreatures(c.Position.X, c.Position.Y, all, b, VisibilityOptions{VisionRange: r, Exclude: []string{c.ID}})
}
