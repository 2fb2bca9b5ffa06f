// Package world provides the battle map model: a grid of tiles with terrain,
// light, and the geometry helpers used by pathfinding and line of sight.
package world

import (
	"fmt"
	"math"
)

// Impassable is the movement cost reported for tiles that cannot be entered.
const Impassable = math.MaxInt32

// Light levels. Unlit tiles hide their occupants beyond arm's reach.
const (
	LightDark   = 0
	LightDim    = 1
	LightBright = 2
)

// Tile is one grid cell.
type Tile struct {
	Terrain *TerrainDef
	Light   int
}

// Board is the battle map. Terrain is authored externally and is read-only to
// the combat core; creature occupancy is derived from creature positions.
//
// Invariant: len(tiles) == Cols*Rows; every tile has non-nil Terrain.
type Board struct {
	ID    string
	Name  string
	Cols  int
	Rows  int
	tiles []Tile
}

// NewBoard creates a cols×rows board filled with fill terrain at bright light.
//
// Precondition: cols, rows >= 1; fill must be non-nil.
func NewBoard(id string, cols, rows int, fill *TerrainDef) *Board {
	if cols < 1 || rows < 1 || fill == nil {
		panic("world.NewBoard: cols and rows must be >= 1 and fill must not be nil")
	}
	b := &Board{ID: id, Name: id, Cols: cols, Rows: rows, tiles: make([]Tile, cols*rows)}
	for i := range b.tiles {
		b.tiles[i] = Tile{Terrain: fill, Light: LightBright}
	}
	return b
}

// InBounds reports whether p lies on the board.
func (b *Board) InBounds(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < b.Cols && p.Y < b.Rows
}

// Tile returns the tile at p.
//
// Postcondition: ok is false iff p is out of bounds.
func (b *Board) Tile(p Point) (Tile, bool) {
	if !b.InBounds(p) {
		return Tile{}, false
	}
	return b.tiles[p.Y*b.Cols+p.X], true
}

// SetTerrain replaces the terrain at p. Used by map authoring and tests.
//
// Precondition: p in bounds; t non-nil.
func (b *Board) SetTerrain(p Point, t *TerrainDef) {
	if !b.InBounds(p) || t == nil {
		panic(fmt.Sprintf("world.Board.SetTerrain: invalid point %s or nil terrain", p))
	}
	b.tiles[p.Y*b.Cols+p.X].Terrain = t
}

// SetLight sets the light level at p.
//
// Precondition: p in bounds.
func (b *Board) SetLight(p Point, level int) {
	if !b.InBounds(p) {
		panic(fmt.Sprintf("world.Board.SetLight: point %s out of bounds", p))
	}
	b.tiles[p.Y*b.Cols+p.X].Light = level
}

// MoveCost returns the movement points needed to enter p, or Impassable for
// blocked or off-board tiles.
func (b *Board) MoveCost(p Point) int {
	t, ok := b.Tile(p)
	if !ok || t.Terrain.Impassable {
		return Impassable
	}
	return t.Terrain.MoveCost
}

// Passable reports whether p can be entered at all.
func (b *Board) Passable(p Point) bool {
	return b.MoveCost(p) != Impassable
}

// BlocksSight reports whether the terrain at p stops line of sight. Off-board
// points always block.
func (b *Board) BlocksSight(p Point) bool {
	t, ok := b.Tile(p)
	return !ok || t.Terrain.BlocksSight
}

// LightAt returns the light level at p; off-board points are dark.
func (b *Board) LightAt(p Point) int {
	t, ok := b.Tile(p)
	if !ok {
		return LightDark
	}
	return t.Light
}

// Validate checks board invariants.
func (b *Board) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("board ID must not be empty")
	}
	if b.Cols < 1 || b.Rows < 1 {
		return fmt.Errorf("board %q: dimensions must be positive, got %dx%d", b.ID, b.Cols, b.Rows)
	}
	if len(b.tiles) != b.Cols*b.Rows {
		return fmt.Errorf("board %q: tile count %d does not match %dx%d", b.ID, len(b.tiles), b.Cols, b.Rows)
	}
	for i, t := range b.tiles {
		if t.Terrain == nil {
			return fmt.Errorf("board %q: tile %d has no terrain", b.ID, i)
		}
	}
	return nil
}
