package recipes

import (
	"errors"
	"fmt"

	"github.com/WolfTailVale/ItemCreator/internal/items"
)

// ErrDuplicateKey is returned when a key is already installed.
var ErrDuplicateKey = errors.New("recipes: duplicate key")

// Book is the host crafting table entries are installed into.
type Book interface {
	Add(recipe Recipe) error
	Remove(key items.Key) bool
	Keys() []items.Key
}

// MemoryBook is an in-process Book. It also answers crafting queries.
type MemoryBook struct {
	recipes map[items.Key]Recipe
	order   []items.Key
}

func NewMemoryBook() *MemoryBook {
	return &MemoryBook{recipes: make(map[items.Key]Recipe)}
}

func (b *MemoryBook) Add(recipe Recipe) error {
	if recipe == nil {
		return fmt.Errorf("%w: nil recipe", ErrInvalidRecipe)
	}
	key := recipe.Key()
	if _, exists := b.recipes[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}
	b.recipes[key] = recipe
	b.order = append(b.order, key)
	return nil
}

func (b *MemoryBook) Remove(key items.Key) bool {
	if _, ok := b.recipes[key]; !ok {
		return false
	}
	delete(b.recipes, key)
	for i, k := range b.order {
		if k == key {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return true
}

// Keys lists installed keys in installation order.
func (b *MemoryBook) Keys() []items.Key {
	return append([]items.Key(nil), b.order...)
}

func (b *MemoryBook) Get(key items.Key) (Recipe, bool) {
	recipe, ok := b.recipes[key]
	return recipe, ok
}

func (b *MemoryBook) Len() int {
	return len(b.order)
}

// Match returns the first installed recipe satisfied by grid.
func (b *MemoryBook) Match(grid Grid) (Recipe, bool) {
	for _, key := range b.order {
		if recipe := b.recipes[key]; recipe.Matches(grid) {
			return recipe, true
		}
	}
	return nil, false
}
