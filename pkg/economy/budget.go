// Package economy tracks the per-turn action budget of one actor.
package economy

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExhausted is returned when a category has no slots left.
	ErrExhausted = errors.New("action category exhausted")
	// ErrUnknownCategory is returned for categories outside the closed set.
	ErrUnknownCategory = errors.New("unknown action category")
)

// Category is a kind of action slot.
type Category int

const (
	Standard Category = iota
	Move
	Bonus
	Reaction
	Free
)

var categoryNames = map[Category]string{
	Standard: "standard",
	Move:     "move",
	Bonus:    "bonus",
	Reaction: "reaction",
	Free:     "free",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// ParseCategory maps a name like "bonus" to its Category.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range categoryNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// consumable lists the capped categories in display order.
var consumable = []Category{Standard, Move, Bonus, Reaction}

// Budget is one turn's action slots. Used never exceeds available for any
// capped category; Free is unlimited.
type Budget struct {
	available map[Category]int
	used      map[Category]int
	start     map[Category]int
}

// NewBudget returns a turn budget with one slot of each capped category.
func NewBudget() *Budget {
	return NewBudgetWith(map[Category]int{Standard: 1, Move: 1, Bonus: 1, Reaction: 1})
}

// NewBudgetWith returns a budget with custom turn-start slot counts.
// Categories missing from slots start with zero.
func NewBudgetWith(slots map[Category]int) *Budget {
	b := &Budget{start: make(map[Category]int, len(consumable))}
	for _, c := range consumable {
		b.start[c] = max(slots[c], 0)
	}
	b.Reset()
	return b
}

// Reset restores every capped category to its turn-start count.
func (b *Budget) Reset() {
	b.available = make(map[Category]int, len(consumable))
	b.used = make(map[Category]int, len(consumable))
	for _, c := range consumable {
		b.available[c] = b.start[c]
	}
}

func valid(c Category) bool {
	_, ok := categoryNames[c]
	return ok
}

// CanUse reports whether one slot of c is available.
func (b *Budget) CanUse(c Category) bool {
	if c == Free {
		return true
	}
	if !valid(c) {
		return false
	}
	return b.used[c] < b.available[c]
}

// Use consumes one slot of c. An exhausted category returns ErrExhausted
// and nothing is consumed.
func (b *Budget) Use(c Category) error {
	if !valid(c) {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	if c == Free {
		return nil
	}
	if !b.CanUse(c) {
		return fmt.Errorf("%w: %s", ErrExhausted, c)
	}
	b.used[c]++
	return nil
}

// ConvertStandardToMove spends a standard slot to gain one move slot. There
// is no reverse conversion.
func (b *Budget) ConvertStandardToMove() error {
	if err := b.Use(Standard); err != nil {
		return fmt.Errorf("convert standard to move: %w", err)
	}
	b.available[Move]++
	return nil
}

// Remaining returns the unused slots of c. Free reports -1 for unlimited.
func (b *Budget) Remaining(c Category) int {
	if c == Free {
		return -1
	}
	return b.available[c] - b.used[c]
}

// Used returns how many slots of c were spent this turn.
func (b *Budget) Used(c Category) int {
	return b.used[c]
}

// Summary returns remaining counts by category name.
func (b *Budget) Summary() map[string]int {
	out := make(map[string]int, len(consumable))
	for _, c := range consumable {
		out[c.String()] = b.Remaining(c)
	}
	return out
}
