package pathing

import (
	"container/heap"

	"github.com/cory-johannsen/skirmish/internal/game/world"
)

type node struct {
	p    world.Point
	cost int
}

// frontier is a min-heap ordered by (cost, y, x) so expansion order is total.
type frontier []node

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	return f[i].p.Less(f[j].p)
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)   { *f = append(*f, x.(node)) }
func (f *frontier) Pop() any {
	old := *f
	n := old[len(old)-1]
	*f = old[:len(old)-1]
	return n
}

func (f *frontier) push(n node) { heap.Push(f, n) }
func (f *frontier) pop() node   { return heap.Pop(f).(node) }
