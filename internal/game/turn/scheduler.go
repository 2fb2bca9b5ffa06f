// Package turn sequences rounds: initiative order over living creatures,
// advancing the active creature, and the AI group phase that runs when the
// player ends their turn.
package turn

import (
	"sort"

	"github.com/cory-johannsen/skirmish/internal/game/creature"
)

// TurnState tracks the round and whose turn it is.
//
// ActiveID is empty when no creature in Order can act, which signals that the
// turn should end.
type TurnState struct {
	Round    int
	ActiveID string
	Order    []string
	Index    int
}

// HasActive reports whether some creature currently holds the turn.
func (s TurnState) HasActive() bool { return s.ActiveID != "" }

func (s TurnState) clone() TurnState {
	s.Order = append([]string(nil), s.Order...)
	return s
}

// CompareInitiative orders a before b (negative), after b (positive), or equal (0).
//
// Player-controlled creatures come first. Among AI creatures, ranged behaviors
// precede the rest. Remaining ties break by descending agility, then by ID.
func CompareInitiative(a, b *creature.Creature) int {
	if pa, pb := a.IsPlayerControlled(), b.IsPlayerControlled(); pa != pb {
		if pa {
			return -1
		}
		return 1
	}
	if ra, rb := rangedBand(a), rangedBand(b); ra != rb {
		if ra {
			return -1
		}
		return 1
	}
	if a.Attributes.Agility != b.Attributes.Agility {
		if a.Attributes.Agility > b.Attributes.Agility {
			return -1
		}
		return 1
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

func rangedBand(c *creature.Creature) bool {
	return c.IsAIControlled() && c.AI != nil && c.AI.IsRanged()
}

// SortByInitiative sorts creatures in place by CompareInitiative.
func SortByInitiative(creatures []*creature.Creature) {
	sort.SliceStable(creatures, func(i, j int) bool { return CompareInitiative(creatures[i], creatures[j]) < 0 })
}

// Order returns the IDs of the living creatures in initiative order.
//
// Postcondition: the result is non-nil and independent of the input order.
func Order(creatures []*creature.Creature) []string {
	living := creature.Living(creatures)
	SortByInitiative(living)
	out := make([]string, 0, len(living))
	for _, c := range living {
		out = append(out, c.ID)
	}
	return out
}

// CanAct reports whether c may take the turn: alive with movement or actions left.
func CanAct(c *creature.Creature) bool {
	return c != nil && c.CanAct()
}

// InitializeTurnState builds round 1 over the living creatures.
//
// Postcondition: ActiveID is the first creature in Order that can act, or empty.
func InitializeTurnState(creatures []*creature.Creature) TurnState {
	s := TurnState{Round: 1, Order: Order(creatures)}
	return firstEligible(s, creatures)
}

// AdvanceToNextCreature hands the turn to the next creature in Order that can
// act, wrapping around.
//
// Postcondition: the input state is not modified. If a full circular scan finds
// no eligible creature, ActiveID is empty and Index is unchanged.
func AdvanceToNextCreature(state TurnState, creatures []*creature.Creature) TurnState {
	next := state.clone()
	n := len(next.Order)
	if n == 0 {
		next.ActiveID = ""
		next.Index = 0
		return next
	}
	for step := 1; step <= n; step++ {
		i := (state.Index + step) % n
		if CanAct(creature.Find(creatures, next.Order[i])) {
			next.Index = i
			next.ActiveID = next.Order[i]
			return next
		}
	}
	next.ActiveID = ""
	return next
}

// AdvanceTurn starts a new round: every living creature's resources reset,
// the order is recomputed so the dead drop out, and the round increments.
//
// Postcondition: Round == state.Round+1.
func AdvanceTurn(state TurnState, creatures []*creature.Creature) TurnState {
	for _, c := range creatures {
		if c.Alive() {
			c.ResetResources()
		}
	}
	next := TurnState{Round: state.Round + 1, Order: Order(creatures)}
	return firstEligible(next, creatures)
}

func firstEligible(s TurnState, creatures []*creature.Creature) TurnState {
	s.Index = 0
	s.ActiveID = ""
	for i, id := range s.Order {
		if CanAct(creature.Find(creatures, id)) {
			s.Index = i
			s.ActiveID = id
			break
		}
	}
	return s
}
