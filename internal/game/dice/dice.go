// Package dice provides the randomness abstraction, dice expressions, and
// roll-result types used by combat resolution.
package dice

import "fmt"

// RollResult holds the full audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // original expression string, e.g. "2d6+3"
	Dice       []int  // individual die results kept after any keep-highest filter
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// CountAtLeast returns how many kept dice show threshold or more.
//
// Postcondition: 0 <= result <= len(r.Dice).
func (r RollResult) CountAtLeast(threshold int) int {
	n := 0
	for _, d := range r.Dice {
		if d >= threshold {
			n++
		}
	}
	return n
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Source is the randomness provider for dice rolls.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// D6 is the narrow dice provider consumed by combat resolution.
// Tests substitute a scripted sequence; production code uses *Roller.
type D6 interface {
	// RollD6 returns a value in [1, 6].
	RollD6() int
}

// RollPool rolls n six-sided dice from d in order.
//
// Postcondition: len(result) == max(n, 0).
func RollPool(d D6, n int) []int {
	if n <= 0 {
		return []int{}
	}
	out := make([]int, n)
	for i := range out {
		out[i] = d.RollD6()
	}
	return out
}
