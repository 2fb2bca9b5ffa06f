package world

import (
	"fmt"
	"sort"
)

// Atlas indexes loaded battle maps by ID. Boards handed out by Atlas are shared
// templates; encounters never mutate terrain.
type Atlas struct {
	boards map[string]*Board
}

// NewAtlas creates an Atlas from the given boards.
//
// Postcondition: Returns an Atlas with every board indexed, or an error on duplicate IDs.
func NewAtlas(boards []*Board) (*Atlas, error) {
	a := &Atlas{boards: make(map[string]*Board, len(boards))}
	for _, b := range boards {
		if _, exists := a.boards[b.ID]; exists {
			return nil, fmt.Errorf("duplicate map ID: %q", b.ID)
		}
		a.boards[b.ID] = b
	}
	return a, nil
}

// Board returns the map with the given ID.
func (a *Atlas) Board(id string) (*Board, bool) {
	b, ok := a.boards[id]
	return b, ok
}

// IDs returns all map IDs, sorted.
func (a *Atlas) IDs() []string {
	out := make([]string, 0, len(a.boards))
	for id := range a.boards {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of maps.
func (a *Atlas) Len() int { return len(a.boards) }
