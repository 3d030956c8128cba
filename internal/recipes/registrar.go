package recipes

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/WolfTailVale/ItemCreator/internal/config"
	"github.com/WolfTailVale/ItemCreator/internal/factory"
	"github.com/WolfTailVale/ItemCreator/internal/items"
	"github.com/WolfTailVale/ItemCreator/logging"
	loggingrecipes "github.com/WolfTailVale/ItemCreator/logging/recipes"
)

// DefaultBundleCount is the unit count of a bundle that names none.
const DefaultBundleCount = 9

const (
	bundlePrefix   = "bundle_"
	unbundlePrefix = "unbundle_"
	customPrefix   = "custom_"
	vanillaPrefix  = "vanilla_"
)

// Items resolves item specifications and template ids into stacks.
type Items interface {
	Spec(spec string) (*items.Stack, bool)
	Create(id string) (*items.Stack, bool)
}

// Bundle relates one container item to the loose units it holds.
type Bundle struct {
	ID        string
	Container string
	UnitSpec  string
	Unit      *items.Stack
	Count     int
}

// Options wires optional collaborators.
type Options struct {
	Publisher logging.Publisher
	Tick      func() uint64
}

// RegisterReport summarises one RegisterAll.
type RegisterReport struct {
	Bundles int
	Recipes int
	Skipped []string
}

// Registrar installs bundle and authored recipes into a Book and remembers
// every key it installed so UnregisterAll removes exactly those.
type Registrar struct {
	book      Book
	items     Items
	publisher logging.Publisher
	tick      func() uint64

	keys    []items.Key
	bundles map[string]Bundle
	stored  map[string]items.Key
}

func NewRegistrar(book Book, source Items, opts Options) *Registrar {
	tick := opts.Tick
	if tick == nil {
		tick = func() uint64 { return 0 }
	}
	return &Registrar{
		book:      book,
		items:     source,
		publisher: logging.OrNop(opts.Publisher),
		tick:      tick,
		bundles:   make(map[string]Bundle),
		stored:    make(map[string]items.Key),
	}
}

// RegisterAll installs every bundle under "bundles" and every stored recipe
// under "recipes". Entries that cannot be resolved are skipped whole.
func (r *Registrar) RegisterAll(ctx context.Context, root *config.Section) RegisterReport {
	clear(r.bundles)
	clear(r.stored)

	var report RegisterReport
	if section, ok := root.Section("bundles"); ok {
		for _, id := range section.Keys() {
			if err := r.registerBundle(ctx, id, section); err != nil {
				report.Skipped = append(report.Skipped, "bundles."+id)
				loggingrecipes.BundleSkipped(ctx, r.publisher, r.tick(), bundleRef(id), loggingrecipes.BundleSkippedPayload{
					Bundle: id,
					Reason: err.Error(),
				}, nil)
				continue
			}
			report.Bundles++
		}
	}
	if section, ok := root.Section("recipes"); ok {
		for _, id := range section.Keys() {
			entry, _ := section.Section(id)
			if _, err := r.RegisterStored(ctx, id, entry); err != nil {
				report.Skipped = append(report.Skipped, "recipes."+id)
				loggingrecipes.RecipeSkipped(ctx, r.publisher, r.tick(), recipeRef(id), loggingrecipes.RecipeSkippedPayload{
					Recipe: id,
					Reason: err.Error(),
				}, nil)
				continue
			}
			report.Recipes++
		}
	}
	return report
}

func (r *Registrar) registerBundle(ctx context.Context, id string, section *config.Section) error {
	entry, ok := section.Section(id)
	if !ok {
		return fmt.Errorf("bundle %q is not a section", id)
	}
	unitSpec := entry.String("item", "")
	count := entry.Int("count", DefaultBundleCount)
	if count < 1 {
		return fmt.Errorf("bundle %q count %d is not positive", id, count)
	}
	container := entry.String("box-id", "")
	if container == "" {
		return fmt.Errorf("bundle %q has no box-id", id)
	}
	unit, ok := r.items.Spec(unitSpec)
	if !ok {
		return fmt.Errorf("bundle %q unit %q does not resolve", id, unitSpec)
	}
	box, ok := r.items.Create(container)
	if !ok {
		return fmt.Errorf("bundle %q container %q is not a custom item", id, container)
	}

	pack, err := NewShaped(NewKey(bundlePrefix+id), box, []string{"AAA", "AAA", "AAA"}, map[rune]Choice{'A': ExactChoice(unit)})
	if err != nil {
		return err
	}
	unpack, err := NewShapeless(NewKey(unbundlePrefix+id), unit.WithAmount(count), []Choice{ExactChoice(box)})
	if err != nil {
		return err
	}
	if err := r.install(pack); err != nil {
		return err
	}
	if err := r.install(unpack); err != nil {
		r.uninstall(pack.Key())
		return err
	}

	r.bundles[container] = Bundle{ID: id, Container: container, UnitSpec: unitSpec, Unit: unit.WithAmount(1), Count: count}
	loggingrecipes.BundleRegistered(ctx, r.publisher, r.tick(), bundleRef(id), loggingrecipes.BundleRegisteredPayload{
		Bundle:    id,
		Container: container,
		Unit:      unitSpec,
		Count:     count,
	}, nil)
	return nil
}

// RegisterStored builds and installs the recipe persisted as entry.
func (r *Registrar) RegisterStored(ctx context.Context, id string, entry *config.Section) (items.Key, error) {
	if entry == nil {
		return items.Key{}, fmt.Errorf("%w: %s is not a section", ErrInvalidRecipe, id)
	}
	recipe, err := r.buildStored(id, entry)
	if err != nil {
		return items.Key{}, err
	}
	if err := r.install(recipe); err != nil {
		return items.Key{}, err
	}
	r.stored[id] = recipe.Key()
	return recipe.Key(), nil
}

func (r *Registrar) buildStored(id string, entry *config.Section) (Recipe, error) {
	resultSpec := entry.String("result", "")
	result, ok := r.items.Spec(resultSpec)
	if !ok {
		return nil, fmt.Errorf("%w: %s result %q does not resolve", ErrInvalidRecipe, id, resultSpec)
	}
	amount := entry.Int("amount", 1)
	if amount < 1 || amount > items.MaxStackSize {
		return nil, fmt.Errorf("%w: %s amount %d out of range", ErrInvalidRecipe, id, amount)
	}
	result.Amount = amount
	key := StoredKey(id, resultSpec)

	switch kind := strings.ToLower(entry.String("type", "shaped")); kind {
	case "shaped":
		ingredients, ok := entry.Section("ingredients")
		if !ok {
			return nil, fmt.Errorf("%w: %s has no ingredients", ErrInvalidRecipe, id)
		}
		choices := make(map[rune]Choice, len(ingredients.Keys()))
		for _, symbol := range ingredients.Keys() {
			if utf8.RuneCountInString(symbol) != 1 {
				return nil, fmt.Errorf("%w: %s symbol %q is not one character", ErrInvalidRecipe, id, symbol)
			}
			choice, err := r.choice(id, ingredients.String(symbol, ""))
			if err != nil {
				return nil, err
			}
			s, _ := utf8.DecodeRuneInString(symbol)
			choices[s] = choice
		}
		return NewShaped(key, result, entry.StringList("shape"), choices)
	case "shapeless":
		specs := entry.StringList("ingredients")
		choices := make([]Choice, 0, len(specs))
		for _, spec := range specs {
			choice, err := r.choice(id, spec)
			if err != nil {
				return nil, err
			}
			choices = append(choices, choice)
		}
		return NewShapeless(key, result, choices)
	default:
		return nil, fmt.Errorf("%w: %s has unknown type %q", ErrInvalidRecipe, id, kind)
	}
}

func (r *Registrar) choice(id, spec string) (Choice, error) {
	stack, ok := r.items.Spec(spec)
	if !ok {
		return Choice{}, fmt.Errorf("%w: %s ingredient %q does not resolve", ErrInvalidRecipe, id, spec)
	}
	return ExactChoice(stack), nil
}

// install adds recipe to the book. An entry this registrar installed earlier
// under the same key is replaced.
func (r *Registrar) install(recipe Recipe) error {
	key := recipe.Key()
	if r.owns(key) {
		r.uninstall(key)
	}
	if err := r.book.Add(recipe); err != nil {
		return err
	}
	r.keys = append(r.keys, key)
	return nil
}

func (r *Registrar) uninstall(key items.Key) {
	r.book.Remove(key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			return
		}
	}
}

func (r *Registrar) owns(key items.Key) bool {
	for _, k := range r.keys {
		if k == key {
			return true
		}
	}
	return false
}

// UnregisterAll removes every entry this registrar installed and forgets all
// bundles. Calling it with nothing installed does nothing.
func (r *Registrar) UnregisterAll(ctx context.Context) int {
	if len(r.keys) == 0 && len(r.bundles) == 0 && len(r.stored) == 0 {
		return 0
	}
	removed := 0
	for _, key := range r.keys {
		if r.book.Remove(key) {
			removed++
		}
	}
	bundles := len(r.bundles)
	r.keys = nil
	clear(r.bundles)
	clear(r.stored)

	loggingrecipes.Unregistered(ctx, r.publisher, r.tick(), logging.ServerRef(), loggingrecipes.UnregisteredPayload{
		Entries: removed,
		Bundles: bundles,
	}, nil)
	return removed
}

// BundleByContainerID returns the bundle whose container is the template id.
func (r *Registrar) BundleByContainerID(id string) (Bundle, bool) {
	bundle, ok := r.bundles[id]
	if !ok {
		return Bundle{}, false
	}
	bundle.Unit = bundle.Unit.Clone()
	return bundle, true
}

// Bundles lists registered bundles ordered by bundle id.
func (r *Registrar) Bundles() []Bundle {
	out := make([]Bundle, 0, len(r.bundles))
	for _, bundle := range r.bundles {
		bundle.Unit = bundle.Unit.Clone()
		out = append(out, bundle)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Keys lists installed keys in installation order.
func (r *Registrar) Keys() []items.Key {
	return append([]items.Key(nil), r.keys...)
}

// HasRecipe reports whether a stored recipe with id is installed.
func (r *Registrar) HasRecipe(id string) bool {
	_, ok := r.stored[id]
	return ok
}

// StoredKey returns the book key of a stored recipe: custom_<id> when the
// result is a custom item and vanilla_<id> otherwise.
func StoredKey(id, resultSpec string) items.Key {
	if strings.HasPrefix(strings.TrimSpace(resultSpec), factory.CustomPrefix) {
		return NewKey(customPrefix + id)
	}
	return NewKey(vanillaPrefix + id)
}

func bundleRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindBundle}
}

func recipeRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindRecipe}
}
