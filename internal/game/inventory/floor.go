package inventory

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/skirmish/internal/game/world"
)

// FloorItem is an item lying on a board tile.
type FloorItem struct {
	InstanceID string
	ItemID     string
}

// Floor tracks items dropped on board tiles during an encounter.
// Encounters are single-threaded; Floor is not safe for concurrent use.
type Floor struct {
	tiles map[world.Point][]FloorItem
}

// NewFloor creates an empty Floor.
func NewFloor() *Floor {
	return &Floor{tiles: make(map[world.Point][]FloorItem)}
}

// Drop places itemID on tile p and returns the new floor item.
//
// Postcondition: the returned item has a fresh InstanceID and appears in ItemsAt(p).
func (f *Floor) Drop(p world.Point, itemID string) FloorItem {
	item := FloorItem{InstanceID: uuid.NewString(), ItemID: itemID}
	f.tiles[p] = append(f.tiles[p], item)
	return item
}

// Pickup removes and returns the item with instanceID from p.
//
// Postcondition: on failure, floor state is unchanged.
func (f *Floor) Pickup(p world.Point, instanceID string) (FloorItem, bool) {
	items := f.tiles[p]
	for i, it := range items {
		if it.InstanceID == instanceID {
			f.tiles[p] = append(items[:i:i], items[i+1:]...)
			if len(f.tiles[p]) == 0 {
				delete(f.tiles, p)
			}
			return it, true
		}
	}
	return FloorItem{}, false
}

// PickupAll removes and returns every item on p.
//
// Postcondition: ItemsAt(p) is empty; the result is non-nil.
func (f *Floor) PickupAll(p world.Point) []FloorItem {
	items := f.tiles[p]
	delete(f.tiles, p)
	if items == nil {
		return []FloorItem{}
	}
	return items
}

// ItemsAt returns a snapshot of the items on p.
func (f *Floor) ItemsAt(p world.Point) []FloorItem {
	items := f.tiles[p]
	out := make([]FloorItem, len(items))
	copy(out, items)
	return out
}
