package recipes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/WolfTailVale/ItemCreator/internal/catalog"
	"github.com/WolfTailVale/ItemCreator/internal/config"
	"github.com/WolfTailVale/ItemCreator/internal/factory"
	"github.com/WolfTailVale/ItemCreator/internal/items"
	"github.com/WolfTailVale/ItemCreator/logging"
	loggingrecipes "github.com/WolfTailVale/ItemCreator/logging/recipes"
)

// OutputKind selects what an authored recipe produces.
type OutputKind string

const (
	// OutputVanilla produces a plain base-game stack.
	OutputVanilla OutputKind = "vanilla"
	// OutputCustom produces a new custom item saved alongside the recipe.
	OutputCustom OutputKind = "custom"
)

// OutputSuffix is appended to the recipe id to name its custom output item.
const OutputSuffix = "_output"

var (
	// ErrRejected wraps validation failures of an authoring request.
	ErrRejected = errors.New("recipes: authoring request rejected")
	// ErrPersist wraps storage failures while saving an authored recipe.
	ErrPersist = errors.New("recipes: could not persist recipe")
)

// AuthorRequest describes a recipe built from a crafting grid.
type AuthorRequest struct {
	ID     string
	Shaped bool
	Grid   Grid

	Output   OutputKind
	Material items.Material
	Amount   int

	// Custom output display.
	Name            string
	Lore            []string
	CustomModelData *int
	Placeable       *bool

	Actor logging.EntityRef
}

// AuthorResult reports the outcome of Create.
type AuthorResult struct {
	OK     bool
	Key    items.Key
	Output string
	Err    error
}

// TemplateLoader rebuilds the item templates from a configuration root.
type TemplateLoader interface {
	Load(ctx context.Context, root *config.Section) catalog.LoadReport
}

// Author persists authored recipes and installs them once the saved
// configuration has been reloaded.
type Author struct {
	store     config.Store
	templates TemplateLoader
	registrar *Registrar
	describe  SpecFunc
	publisher logging.Publisher
	tick      func() uint64
}

func NewAuthor(store config.Store, templates TemplateLoader, registrar *Registrar, describe SpecFunc, opts Options) *Author {
	tick := opts.Tick
	if tick == nil {
		tick = func() uint64 { return 0 }
	}
	return &Author{
		store:     store,
		templates: templates,
		registrar: registrar,
		describe:  describe,
		publisher: logging.OrNop(opts.Publisher),
		tick:      tick,
	}
}

// Create validates req, saves the recipe (and its custom output item) to the
// store, reloads templates from the saved document and installs the recipe.
// Nothing in memory changes unless the save and reload both succeed.
func (a *Author) Create(ctx context.Context, req AuthorRequest) AuthorResult {
	id := strings.ToLower(strings.TrimSpace(req.ID))
	result := a.create(ctx, id, req)
	actor := req.Actor
	if actor.ID == "" {
		actor = logging.ServerRef()
	}
	if result.Err != nil {
		loggingrecipes.AuthorFailed(ctx, a.publisher, a.tick(), actor, loggingrecipes.AuthorFailedPayload{
			Recipe: id,
			Error:  result.Err.Error(),
		}, nil)
		return result
	}
	amount := req.Amount
	if amount == 0 {
		amount = 1
	}
	loggingrecipes.Authored(ctx, a.publisher, a.tick(), actor, loggingrecipes.AuthoredPayload{
		Recipe: id,
		Key:    result.Key.String(),
		Shaped: req.Shaped,
		Output: result.Output,
		Amount: amount,
	}, nil)
	return result
}

func (a *Author) create(ctx context.Context, id string, req AuthorRequest) AuthorResult {
	if err := a.validate(id, req); err != nil {
		return AuthorResult{Err: err}
	}
	amount := req.Amount
	if amount == 0 {
		amount = 1
	}

	root, err := a.store.Load()
	if err != nil {
		return AuthorResult{Err: fmt.Errorf("%w: load: %v", ErrPersist, err)}
	}

	resultSpec := strings.ToLower(req.Material.Name)
	if req.Output == OutputCustom {
		outputID := id + OutputSuffix
		if err := writeOutputItem(root, outputID, req); err != nil {
			return AuthorResult{Err: fmt.Errorf("%w: %v", ErrPersist, err)}
		}
		resultSpec = factory.CustomPrefix + outputID
	}
	if err := a.writeRecipe(root, id, req, resultSpec, amount); err != nil {
		return AuthorResult{Err: fmt.Errorf("%w: %v", ErrPersist, err)}
	}

	if err := a.store.Save(root); err != nil {
		return AuthorResult{Err: fmt.Errorf("%w: save: %v", ErrPersist, err)}
	}
	saved, err := a.store.Load()
	if err != nil {
		return AuthorResult{Err: fmt.Errorf("%w: reload: %v", ErrPersist, err)}
	}
	a.templates.Load(ctx, saved)

	entry, _ := saved.Section("recipes." + id)
	key, err := a.registrar.RegisterStored(ctx, id, entry)
	if err != nil {
		return AuthorResult{Output: resultSpec, Err: err}
	}
	return AuthorResult{OK: true, Key: key, Output: resultSpec}
}

func (a *Author) validate(id string, req AuthorRequest) error {
	if !validID(id) {
		return fmt.Errorf("%w: id %q must use a-z, 0-9, '_' or '-'", ErrRejected, req.ID)
	}
	if a.registrar.HasRecipe(id) {
		return fmt.Errorf("%w: recipe %q already exists", ErrRejected, id)
	}
	filled := 0
	for _, slot := range req.Grid {
		if !slot.Empty() {
			filled++
		}
	}
	if filled == 0 {
		return fmt.Errorf("%w: crafting grid is empty", ErrRejected)
	}
	if req.Amount < 0 || req.Amount > items.MaxStackSize {
		return fmt.Errorf("%w: amount %d out of range", ErrRejected, req.Amount)
	}
	switch req.Output {
	case OutputVanilla:
		if req.Material.IsAir() {
			return fmt.Errorf("%w: vanilla output needs a material", ErrRejected)
		}
	case OutputCustom:
	default:
		return fmt.Errorf("%w: unknown output kind %q", ErrRejected, req.Output)
	}
	return nil
}

func writeOutputItem(root *config.Section, outputID string, req AuthorRequest) error {
	material := req.Material
	if material.IsAir() {
		material = items.MustMaterial(catalog.DefaultMaterial)
	}
	if req.Placeable != nil {
		if *req.Placeable {
			material = items.BlockEquivalent(material)
		} else {
			material = items.ItemEquivalent(material)
		}
	}
	item, err := root.CreateSection("items." + outputID)
	if err != nil {
		return err
	}
	if err := item.Set("material", material.Name); err != nil {
		return err
	}
	if req.Name != "" {
		if err := item.Set("name", req.Name); err != nil {
			return err
		}
	}
	if len(req.Lore) > 0 {
		if err := item.Set("lore", req.Lore); err != nil {
			return err
		}
	}
	if req.CustomModelData != nil {
		if err := item.Set("custom-model-data", *req.CustomModelData); err != nil {
			return err
		}
	}
	if req.Placeable != nil {
		if err := item.Set("placeable", *req.Placeable); err != nil {
			return err
		}
	}
	return nil
}

func (a *Author) writeRecipe(root *config.Section, id string, req AuthorRequest, resultSpec string, amount int) error {
	entry, err := root.CreateSection("recipes." + id)
	if err != nil {
		return err
	}
	if req.Shaped {
		pattern := Compress(req.Grid, a.describe)
		if err := entry.Set("type", "shaped"); err != nil {
			return err
		}
		if err := entry.Set("shape", pattern.Shape[:]); err != nil {
			return err
		}
		ingredients, err := entry.CreateSection("ingredients")
		if err != nil {
			return err
		}
		for _, symbol := range pattern.Symbols() {
			if err := ingredients.Set(string(symbol), pattern.Ingredients[symbol]); err != nil {
				return err
			}
		}
	} else {
		var specs []string
		for _, slot := range req.Grid {
			if !slot.Empty() {
				specs = append(specs, a.describe(slot))
			}
		}
		if err := entry.Set("type", "shapeless"); err != nil {
			return err
		}
		if err := entry.Set("ingredients", specs); err != nil {
			return err
		}
	}
	if err := entry.Set("result", resultSpec); err != nil {
		return err
	}
	return entry.Set("amount", amount)
}

func validID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
