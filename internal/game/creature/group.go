package creature

import (
	"slices"
	"sort"
)

// Group is a named set of creatures that share turn timing and combat state.
// Membership is derived from Creature.GroupID.
type Group struct {
	ID         string
	Name       string
	Faction    Faction
	Controller Controller
	HostileTo  []Faction
	// InCombat is true while any member is within engage radius of a hostile.
	InCombat bool
}

// IsHostileToFaction reports whether the group lists f as hostile.
func (g *Group) IsHostileToFaction(f Faction) bool { return slices.Contains(g.HostileTo, f) }

// Members returns the creatures in all that belong to the group, sorted by ID.
func (g *Group) Members(all []*Creature) []*Creature {
	var out []*Creature
	for _, c := range all {
		if c.GroupID == g.ID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LivingMembers returns the group's members with vitality left.
func (g *Group) LivingMembers(all []*Creature) []*Creature {
	return Living(g.Members(all))
}
