package command

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/creature"
	"github.com/cory-johannsen/skirmish/internal/game/world"
)

// Map glyphs.
const (
	glyphOpen       = '.'
	glyphCostly     = '~'
	glyphSight      = 'T'
	glyphWall       = '#'
	glyphPlayer     = '@'
	glyphEnemy      = 'x'
	glyphNeutral    = 'o'
	glyphLargeEnemy = 'X'
)

// RenderBoard draws b one row per line with living, placed creatures on top.
//
// Postcondition: returns exactly b.Rows lines of b.Cols glyphs each.
func RenderBoard(b *world.Board, creatures []*creature.Creature) string {
	at := make(map[world.Point]rune)
	for _, c := range creature.Living(creatures) {
		if c.Placed() {
			at[c.Position] = creatureGlyph(c)
		}
	}
	var sb strings.Builder
	for y := 0; y < b.Rows; y++ {
		for x := 0; x < b.Cols; x++ {
			p := world.Pt(x, y)
			if g, ok := at[p]; ok {
				sb.WriteRune(g)
				continue
			}
			sb.WriteRune(terrainGlyph(b, p))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func creatureGlyph(c *creature.Creature) rune {
	switch c.Faction {
	case creature.FactionPlayer:
		return glyphPlayer
	case creature.FactionEnemy:
		if c.Size.BlocksSight() {
			return glyphLargeEnemy
		}
		return glyphEnemy
	default:
		return glyphNeutral
	}
}

func terrainGlyph(b *world.Board, p world.Point) rune {
	switch {
	case !b.Passable(p):
		return glyphWall
	case b.BlocksSight(p):
		return glyphSight
	case b.MoveCost(p) > 1:
		return glyphCostly
	default:
		return glyphOpen
	}
}

// FormatCreature renders one status line for c.
func FormatCreature(c *creature.Creature) string {
	state := "down"
	if c.Alive() {
		state = fmt.Sprintf("%d/%d hp", c.Vitality, c.MaxVitality)
	}
	line := fmt.Sprintf("%-14s %-20s %-8s %-9s", c.ID, c.Name, c.Faction, state)
	if c.MaxMana > 0 {
		line += fmt.Sprintf(" %d/%d mana", c.Mana, c.MaxMana)
	}
	if c.Placed() {
		line += fmt.Sprintf(" at %s facing %s", c.Position, c.Facing)
	}
	if c.Alive() {
		line += fmt.Sprintf(" [move %d, act %d, quick %d]", c.RemainingMovement, c.RemainingActions, c.RemainingQuickActions)
	}
	return line
}
