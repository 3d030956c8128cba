package recipes

import (
	"sort"

	"github.com/WolfTailVale/ItemCreator/internal/items"
)

// Alphabet is the ordered symbol set handed out by Compress.
const Alphabet = "ABCDEFGHI"

// Blank marks an empty slot in a pattern row.
const Blank = ' '

// Pattern is a compressed shaped-recipe layout.
type Pattern struct {
	Shape       [3]string
	Ingredients map[rune]string
}

// Symbols lists the assigned symbols in alphabet order.
func (p Pattern) Symbols() []rune {
	out := make([]rune, 0, len(p.Ingredients))
	for symbol := range p.Ingredients {
		out = append(out, symbol)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SpecFunc describes a stack as an item specification. Two stacks with the
// same specification share a symbol.
type SpecFunc func(stack *items.Stack) string

// Compress scans grid row-major and assigns each distinct ingredient the next
// symbol from Alphabet. Stack sizes are ignored.
func Compress(grid Grid, spec SpecFunc) Pattern {
	pattern := Pattern{Ingredients: make(map[rune]string)}
	assigned := make(map[string]rune)
	next := 0
	for row := 0; row < 3; row++ {
		line := make([]rune, 3)
		for col := 0; col < 3; col++ {
			slot := grid[row*3+col]
			if slot.Empty() {
				line[col] = Blank
				continue
			}
			id := spec(slot)
			symbol, ok := assigned[id]
			if !ok {
				symbol = rune(Alphabet[next])
				next++
				assigned[id] = symbol
				pattern.Ingredients[symbol] = id
			}
			line[col] = symbol
		}
		pattern.Shape[row] = string(line)
	}
	return pattern
}
