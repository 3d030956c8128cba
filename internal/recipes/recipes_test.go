package recipes

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/WolfTailVale/ItemCreator/internal/abilities"
	"github.com/WolfTailVale/ItemCreator/internal/catalog"
	"github.com/WolfTailVale/ItemCreator/internal/config"
	"github.com/WolfTailVale/ItemCreator/internal/factory"
	"github.com/WolfTailVale/ItemCreator/internal/items"
	"github.com/WolfTailVale/ItemCreator/internal/items/identity"
	loggingrecipes "github.com/WolfTailVale/ItemCreator/logging/recipes"
	"github.com/WolfTailVale/ItemCreator/logging/sinks"
)

const document = `{
  "items": {
    "box_of_gunpowder": {"material": "BARREL", "name": "Box of Gunpowder"},
    "flashbang": {"material": "FIREWORK_STAR"},
    "crate_of_flashbangs": {"material": "CHEST"}
  },
  "bundles": {
    "gunpowder": {"item": "gunpowder", "count": 9, "box-id": "box_of_gunpowder"},
    "flashbangs": {"item": "custom:flashbang", "box-id": "crate_of_flashbangs"},
    "ghost": {"item": "gunpowder", "box-id": "missing_box"},
    "bogus": {"item": "unobtainium", "box-id": "box_of_gunpowder"},
    "empty": {"item": "gunpowder", "count": 0, "box-id": "box_of_gunpowder"}
  }
}`

type fixture struct {
	root      *config.Section
	templates *catalog.Registry
	factory   *factory.Factory
	book      *MemoryBook
	registrar *Registrar
	events    *sinks.MemorySink
}

func newFixture(t *testing.T, doc string) *fixture {
	t.Helper()
	root, err := config.Decode([]byte(doc))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	templates := catalog.NewRegistry(abilities.NewRegistry(), catalog.Options{})
	templates.Load(context.Background(), root)
	f := factory.New(templates, identity.NewTagger())
	book := NewMemoryBook()
	events := sinks.NewMemorySink()
	return &fixture{
		root:      root,
		templates: templates,
		factory:   f,
		book:      book,
		registrar: NewRegistrar(book, f, Options{Publisher: events}),
		events:    events,
	}
}

func stack(name string, amount int) *items.Stack {
	return items.NewStack(items.MustMaterial(name), amount)
}

func TestRegisterAllInstallsBundlePairs(t *testing.T) {
	fx := newFixture(t, document)
	report := fx.registrar.RegisterAll(context.Background(), fx.root)

	if report.Bundles != 2 {
		t.Fatalf("expected two bundles, got %+v", report)
	}
	if want := []string{"bundles.ghost", "bundles.bogus", "bundles.empty"}; !reflect.DeepEqual(report.Skipped, want) {
		t.Fatalf("expected skipped %v, got %v", want, report.Skipped)
	}
	if got := len(fx.events.OfType(loggingrecipes.EventBundleSkipped)); got != 3 {
		t.Fatalf("expected three skip warnings, got %d", got)
	}

	bundle, ok := fx.registrar.BundleByContainerID("box_of_gunpowder")
	if !ok {
		t.Fatalf("expected box_of_gunpowder bundle")
	}
	if bundle.Unit.Material.Name != "GUNPOWDER" || bundle.Count != 9 || bundle.UnitSpec != "gunpowder" {
		t.Fatalf("expected (gunpowder, 9), got (%v, %d)", bundle.Unit, bundle.Count)
	}
	crate, _ := fx.registrar.BundleByContainerID("crate_of_flashbangs")
	if crate.Count != DefaultBundleCount {
		t.Fatalf("expected default count %d, got %d", DefaultBundleCount, crate.Count)
	}
	if id, _ := fx.factory.Tagger().ReadID(crate.Unit); id != "flashbang" {
		t.Fatalf("expected custom unit to carry its identity, got %q", id)
	}

	want := []items.Key{
		NewKey("bundle_gunpowder"), NewKey("unbundle_gunpowder"),
		NewKey("bundle_flashbangs"), NewKey("unbundle_flashbangs"),
	}
	if got := fx.book.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected keys %v, got %v", want, got)
	}
	if !reflect.DeepEqual(fx.registrar.Keys(), want) {
		t.Fatalf("expected registrar to track %v, got %v", want, fx.registrar.Keys())
	}
}

func TestBundleRecipesCraft(t *testing.T) {
	fx := newFixture(t, document)
	fx.registrar.RegisterAll(context.Background(), fx.root)

	var pack Grid
	for i := range pack {
		pack[i] = stack("GUNPOWDER", 3)
	}
	recipe, ok := fx.book.Match(pack)
	if !ok || recipe.Key() != NewKey("bundle_gunpowder") {
		t.Fatalf("expected nine gunpowder to match the pack recipe, got %v", recipe)
	}
	if id, _ := fx.factory.Tagger().ReadID(recipe.Result()); id != "box_of_gunpowder" {
		t.Fatalf("expected box result, got %q", id)
	}

	pack[4] = stack("PAPER", 1)
	if _, ok := fx.book.Match(pack); ok {
		t.Fatalf("expected a foreign ingredient to break the pack recipe")
	}

	box, _ := fx.factory.Create("box_of_gunpowder")
	unpack, ok := fx.book.Match(Grid{7: box})
	if !ok || unpack.Key() != NewKey("unbundle_gunpowder") {
		t.Fatalf("expected a single box to match the unpack recipe")
	}
	if out := unpack.Result(); out.Material.Name != "GUNPOWDER" || out.Amount != 9 {
		t.Fatalf("expected 9 gunpowder, got %v", out)
	}

	plainBarrel := stack("BARREL", 1)
	if _, ok := fx.book.Match(Grid{0: plainBarrel}); ok {
		t.Fatalf("expected an untagged barrel not to unpack")
	}
}

func TestUnregisterAllIsIdempotent(t *testing.T) {
	fx := newFixture(t, document)
	foreign, _ := NewShapeless(items.NewKey("minecraft", "torch"), stack("STICK", 4), []Choice{MaterialChoice(items.MustMaterial("COAL"))})
	if err := fx.book.Add(foreign); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fx.registrar.RegisterAll(context.Background(), fx.root)

	if removed := fx.registrar.UnregisterAll(context.Background()); removed != 4 {
		t.Fatalf("expected four entries removed, got %d", removed)
	}
	for i := 0; i < 2; i++ {
		if _, ok := fx.registrar.BundleByContainerID("box_of_gunpowder"); ok {
			t.Fatalf("expected bundle lookup to be empty")
		}
		if len(fx.registrar.Keys()) != 0 {
			t.Fatalf("expected no tracked keys")
		}
		if got := fx.book.Keys(); !reflect.DeepEqual(got, []items.Key{foreign.Key()}) {
			t.Fatalf("expected only the foreign recipe to remain, got %v", got)
		}
		if removed := fx.registrar.UnregisterAll(context.Background()); removed != 0 {
			t.Fatalf("expected nothing removed, got %d", removed)
		}
	}
	if got := len(fx.events.OfType(loggingrecipes.EventUnregistered)); got != 1 {
		t.Fatalf("expected one unregistered event, got %d", got)
	}
}

func TestRegisterAllTwiceReplacesOwnEntries(t *testing.T) {
	fx := newFixture(t, document)
	fx.registrar.RegisterAll(context.Background(), fx.root)
	report := fx.registrar.RegisterAll(context.Background(), fx.root)

	if report.Bundles != 2 {
		t.Fatalf("expected both bundles to reinstall, got %+v", report)
	}
	if fx.book.Len() != 4 || len(fx.registrar.Keys()) != 4 {
		t.Fatalf("expected four entries, got book=%d tracked=%d", fx.book.Len(), len(fx.registrar.Keys()))
	}
}

func TestBundleSkippedOnForeignKeyClash(t *testing.T) {
	fx := newFixture(t, document)
	clash, _ := NewShapeless(NewKey("unbundle_gunpowder"), stack("STICK", 1), []Choice{MaterialChoice(items.MustMaterial("COAL"))})
	fx.book.Add(clash)

	report := fx.registrar.RegisterAll(context.Background(), fx.root)
	if report.Bundles != 1 {
		t.Fatalf("expected only the flashbang bundle, got %+v", report)
	}
	if _, ok := fx.book.Get(NewKey("bundle_gunpowder")); ok {
		t.Fatalf("expected the pack half to be rolled back")
	}
	if _, ok := fx.registrar.BundleByContainerID("box_of_gunpowder"); ok {
		t.Fatalf("expected no lookup entry for a half-installed bundle")
	}
}

func TestStoredRecipesRegister(t *testing.T) {
	fx := newFixture(t, `{
	  "items": {"gem": {"material": "EMERALD"}},
	  "recipes": {
	    "gem": {"type": "shaped", "shape": [" A ", "ABA", " A "], "ingredients": {"A": "diamond", "B": "custom:gem"}, "result": "custom:gem", "amount": 2},
	    "torch": {"type": "shapeless", "ingredients": ["coal", "stick"], "result": "torch", "amount": 4},
	    "broken": {"type": "shaped", "shape": ["AB"], "ingredients": {"A": "diamond"}, "result": "stone"}
	  }
	}`)
	report := fx.registrar.RegisterAll(context.Background(), fx.root)
	if report.Recipes != 2 || !reflect.DeepEqual(report.Skipped, []string{"recipes.broken"}) {
		t.Fatalf("unexpected report %+v", report)
	}
	if !fx.registrar.HasRecipe("gem") || fx.registrar.HasRecipe("broken") {
		t.Fatalf("expected gem installed and broken skipped")
	}
	if _, ok := fx.book.Get(NewKey("custom_gem")); !ok {
		t.Fatalf("expected custom_gem key")
	}
	torch, ok := fx.book.Get(NewKey("vanilla_torch"))
	if !ok {
		t.Fatalf("expected vanilla_torch key")
	}
	if !torch.Matches(Grid{2: stack("STICK", 1), 6: stack("COAL", 5)}) {
		t.Fatalf("expected shapeless recipe to accept any arrangement")
	}
	if out := torch.Result(); out.Amount != 4 {
		t.Fatalf("expected 4 torches, got %d", out.Amount)
	}
}

func TestShapedMatchesAnywhere(t *testing.T) {
	recipe, err := NewShaped(NewKey("stick"), stack("STICK", 4), []string{"   ", " A ", " A "}, map[rune]Choice{'A': MaterialChoice(items.MustMaterial("OAK_PLANKS"))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := recipe.Shape(); !reflect.DeepEqual(got, []string{"A", "A"}) {
		t.Fatalf("expected trimmed shape, got %q", got)
	}
	if !recipe.Matches(Grid{0: stack("OAK_PLANKS", 1), 3: stack("OAK_PLANKS", 1)}) {
		t.Fatalf("expected top-left column to match")
	}
	if !recipe.Matches(Grid{5: stack("OAK_PLANKS", 1), 8: stack("OAK_PLANKS", 1)}) {
		t.Fatalf("expected bottom-right column to match")
	}
	if recipe.Matches(Grid{0: stack("OAK_PLANKS", 1), 3: stack("OAK_PLANKS", 1), 8: stack("DIRT", 1)}) {
		t.Fatalf("expected a stray item to fail the match")
	}
	if _, err := NewShaped(NewKey("bad"), stack("STICK", 1), []string{"AB"}, map[rune]Choice{'A': {}}); !errors.Is(err, ErrInvalidRecipe) {
		t.Fatalf("expected ErrInvalidRecipe, got %v", err)
	}
}

func TestBookRejectsDuplicates(t *testing.T) {
	book := NewMemoryBook()
	recipe, _ := NewShapeless(NewKey("x"), stack("STICK", 1), []Choice{MaterialChoice(items.MustMaterial("COAL"))})
	if err := book.Add(recipe); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := book.Add(recipe); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	if !book.Remove(recipe.Key()) || book.Remove(recipe.Key()) {
		t.Fatalf("expected exactly one successful removal")
	}
}
