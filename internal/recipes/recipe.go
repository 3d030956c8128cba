// Package recipes installs crafting entries into a recipe book: bundle
// pack/unpack pairs from the "bundles" section, and recipes authored from a
// crafting grid and persisted under "recipes".
package recipes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/WolfTailVale/ItemCreator/internal/items"
	"github.com/WolfTailVale/ItemCreator/internal/items/identity"
)

// GridSize is the number of slots in a crafting grid.
const GridSize = 9

// Grid is a row-major 3x3 crafting grid. Nil entries are empty slots.
type Grid [GridSize]*items.Stack

// ErrInvalidRecipe is returned when a recipe cannot be constructed.
var ErrInvalidRecipe = errors.New("recipes: invalid recipe")

// NewKey returns the book key for name in the plugin namespace.
func NewKey(name string) items.Key {
	return items.NewKey(identity.Namespace, name)
}

// Choice matches one ingredient slot.
type Choice struct {
	Item  *items.Stack
	Exact bool
}

// ExactChoice matches stacks similar to item, metadata included.
func ExactChoice(item *items.Stack) Choice {
	return Choice{Item: item.WithAmount(1), Exact: true}
}

// MaterialChoice matches any stack of material m.
func MaterialChoice(m items.Material) Choice {
	return Choice{Item: items.NewStack(m, 1)}
}

// Matches reports whether stack satisfies the choice.
func (c Choice) Matches(stack *items.Stack) bool {
	if c.Item.Empty() || stack.Empty() {
		return false
	}
	if c.Exact {
		return items.Similar(c.Item, stack)
	}
	return c.Item.Material.Name == stack.Material.Name
}

// Recipe is one crafting entry.
type Recipe interface {
	Key() items.Key
	Result() *items.Stack
	Matches(grid Grid) bool
}

// ShapedRecipe requires ingredients in a fixed arrangement. The arrangement
// may sit anywhere in the grid as long as every other slot is empty.
type ShapedRecipe struct {
	key         items.Key
	result      *items.Stack
	shape       []string
	ingredients map[rune]Choice
}

// NewShaped validates shape and builds a shaped recipe. Blank rows and
// columns around the pattern are trimmed; ' ' marks an empty slot.
func NewShaped(key items.Key, result *items.Stack, shape []string, ingredients map[rune]Choice) (*ShapedRecipe, error) {
	if result.Empty() {
		return nil, fmt.Errorf("%w: %s has no result", ErrInvalidRecipe, key)
	}
	trimmed := trimShape(shape)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: %s has an empty shape", ErrInvalidRecipe, key)
	}
	if len(trimmed) > 3 || len(trimmed[0]) > 3 {
		return nil, fmt.Errorf("%w: %s shape exceeds 3x3", ErrInvalidRecipe, key)
	}
	own := make(map[rune]Choice)
	for _, row := range trimmed {
		for _, symbol := range row {
			if symbol == ' ' {
				continue
			}
			choice, ok := ingredients[symbol]
			if !ok {
				return nil, fmt.Errorf("%w: %s has no ingredient for %q", ErrInvalidRecipe, key, symbol)
			}
			own[symbol] = choice
		}
	}
	return &ShapedRecipe{key: key, result: result.Clone(), shape: trimmed, ingredients: own}, nil
}

func (r *ShapedRecipe) Key() items.Key { return r.key }

// Result returns a copy of the crafted stack.
func (r *ShapedRecipe) Result() *items.Stack { return r.result.Clone() }

// Shape returns the trimmed pattern rows.
func (r *ShapedRecipe) Shape() []string { return append([]string(nil), r.shape...) }

func (r *ShapedRecipe) Matches(grid Grid) bool {
	height, width := len(r.shape), len(r.shape[0])
	for top := 0; top+height <= 3; top++ {
		for left := 0; left+width <= 3; left++ {
			if r.matchesAt(grid, top, left) {
				return true
			}
		}
	}
	return false
}

func (r *ShapedRecipe) matchesAt(grid Grid, top, left int) bool {
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			slot := grid[row*3+col]
			pr, pc := row-top, col-left
			symbol := ' '
			if pr >= 0 && pr < len(r.shape) && pc >= 0 && pc < len(r.shape[pr]) {
				symbol = rune(r.shape[pr][pc])
			}
			if symbol == ' ' {
				if !slot.Empty() {
					return false
				}
				continue
			}
			if !r.ingredients[symbol].Matches(slot) {
				return false
			}
		}
	}
	return true
}

// ShapelessRecipe requires a multiset of ingredients in any slots.
type ShapelessRecipe struct {
	key     items.Key
	result  *items.Stack
	choices []Choice
}

func NewShapeless(key items.Key, result *items.Stack, choices []Choice) (*ShapelessRecipe, error) {
	if result.Empty() {
		return nil, fmt.Errorf("%w: %s has no result", ErrInvalidRecipe, key)
	}
	if len(choices) == 0 || len(choices) > GridSize {
		return nil, fmt.Errorf("%w: %s needs 1 to %d ingredients", ErrInvalidRecipe, key, GridSize)
	}
	return &ShapelessRecipe{key: key, result: result.Clone(), choices: append([]Choice(nil), choices...)}, nil
}

func (r *ShapelessRecipe) Key() items.Key { return r.key }

func (r *ShapelessRecipe) Result() *items.Stack { return r.result.Clone() }

// Ingredients returns the ingredient choices in insertion order.
func (r *ShapelessRecipe) Ingredients() []Choice { return append([]Choice(nil), r.choices...) }

func (r *ShapelessRecipe) Matches(grid Grid) bool {
	var present []*items.Stack
	for _, slot := range grid {
		if !slot.Empty() {
			present = append(present, slot)
		}
	}
	if len(present) != len(r.choices) {
		return false
	}
	return assign(present, r.choices, make([]bool, len(r.choices)))
}

// assign finds a one-to-one pairing of stacks to choices.
func assign(stacks []*items.Stack, choices []Choice, used []bool) bool {
	if len(stacks) == 0 {
		return true
	}
	for i, choice := range choices {
		if used[i] || !choice.Matches(stacks[0]) {
			continue
		}
		used[i] = true
		if assign(stacks[1:], choices, used) {
			return true
		}
		used[i] = false
	}
	return false
}

func trimShape(shape []string) []string {
	width := 0
	for _, row := range shape {
		width = max(width, len(row))
	}
	rows := make([]string, 0, len(shape))
	for _, row := range shape {
		rows = append(rows, row+strings.Repeat(" ", width-len(row)))
	}
	for len(rows) > 0 && strings.TrimSpace(rows[0]) == "" {
		rows = rows[1:]
	}
	for len(rows) > 0 && strings.TrimSpace(rows[len(rows)-1]) == "" {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return nil
	}
	left, right := width, 0
	for _, row := range rows {
		trimmed := strings.TrimLeft(row, " ")
		if trimmed == "" {
			continue
		}
		left = min(left, len(row)-len(trimmed))
		right = max(right, len(strings.TrimRight(row, " ")))
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row[left:right]
	}
	return out
}
