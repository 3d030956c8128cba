// Package catalog holds the item templates defined under the "items" section
// of the configuration. The whole set is rebuilt on every Load.
package catalog

import (
	"context"
	"fmt"

	"github.com/agnivade/levenshtein"

	"github.com/WolfTailVale/ItemCreator/internal/abilities"
	"github.com/WolfTailVale/ItemCreator/internal/config"
	"github.com/WolfTailVale/ItemCreator/internal/items"
	"github.com/WolfTailVale/ItemCreator/logging"
	loggingabilities "github.com/WolfTailVale/ItemCreator/logging/abilities"
	loggingcatalog "github.com/WolfTailVale/ItemCreator/logging/catalog"
)

// DefaultMaterial is used when an item names no material or an unknown one.
const DefaultMaterial = items.MaterialPaper

// Template is the immutable definition of one custom item.
type Template struct {
	ID              string
	Material        items.Material
	DisplayName     string
	Lore            []string
	CustomModelData *int
	Abilities       []abilities.Ability
}

// AbilityBuilder constructs abilities from their configuration sections.
type AbilityBuilder interface {
	Instantiate(kind string, cfg *config.Section) (abilities.Ability, error)
}

// DroppedAbility records an ability entry that could not be built.
type DroppedAbility struct {
	Item string
	Key  string
	Kind string
	Err  error
}

// LoadReport summarises one Load.
type LoadReport struct {
	Templates int
	Abilities int
	Dropped   []DroppedAbility
	Fallbacks []string
}

// Registry maps template ids to templates.
type Registry struct {
	builder   AbilityBuilder
	publisher logging.Publisher
	tick      func() uint64

	templates map[string]*Template
	order     []string
}

// Options wires optional collaborators.
type Options struct {
	Publisher logging.Publisher
	Tick      func() uint64
}

func NewRegistry(builder AbilityBuilder, opts Options) *Registry {
	tick := opts.Tick
	if tick == nil {
		tick = func() uint64 { return 0 }
	}
	return &Registry{
		builder:   builder,
		publisher: logging.OrNop(opts.Publisher),
		tick:      tick,
		templates: make(map[string]*Template),
	}
}

// Load discards every template and rebuilds the set from root's "items"
// section. Bad entries degrade to defaults instead of failing the load.
func (r *Registry) Load(ctx context.Context, root *config.Section) LoadReport {
	r.templates = make(map[string]*Template)
	r.order = nil

	var report LoadReport
	section, ok := root.Section("items")
	if ok {
		for _, id := range section.Keys() {
			entry, ok := section.Section(id)
			if !ok {
				entry = config.NewSection(id)
			}
			tmpl := r.build(ctx, id, entry, &report)
			r.templates[id] = tmpl
			r.order = append(r.order, id)
			report.Abilities += len(tmpl.Abilities)
		}
	}
	report.Templates = len(r.order)

	loggingcatalog.Loaded(ctx, r.publisher, r.tick(), logging.ServerRef(), loggingcatalog.LoadedPayload{
		Templates: report.Templates,
		Abilities: report.Abilities,
		Dropped:   len(report.Dropped),
	}, nil)
	return report
}

func (r *Registry) build(ctx context.Context, id string, entry *config.Section, report *LoadReport) *Template {
	tmpl := &Template{
		ID:          id,
		Material:    r.material(ctx, id, entry, report),
		DisplayName: entry.String("name", ""),
		Lore:        entry.StringList("lore"),
	}
	if entry.IsInt("custom-model-data") {
		cmd := entry.Int("custom-model-data", 0)
		tmpl.CustomModelData = &cmd
	}

	list, ok := entry.Section("abilities")
	if !ok || r.builder == nil {
		return tmpl
	}
	for _, key := range list.Keys() {
		cfg, ok := list.Section(key)
		if !ok {
			r.drop(ctx, report, DroppedAbility{Item: id, Key: key, Err: fmt.Errorf("catalog: ability %q is not a section", key)})
			continue
		}
		kind := cfg.String("type", "")
		if kind == "" {
			r.drop(ctx, report, DroppedAbility{Item: id, Key: key, Err: fmt.Errorf("catalog: ability %q has no type", key)})
			continue
		}
		params, err := withoutType(cfg)
		if err != nil {
			r.drop(ctx, report, DroppedAbility{Item: id, Key: key, Kind: kind, Err: err})
			continue
		}
		ability, err := r.builder.Instantiate(kind, params)
		if err != nil {
			r.drop(ctx, report, DroppedAbility{Item: id, Key: key, Kind: kind, Err: err})
			continue
		}
		tmpl.Abilities = append(tmpl.Abilities, ability)
	}
	return tmpl
}

func (r *Registry) material(ctx context.Context, id string, entry *config.Section, report *LoadReport) items.Material {
	requested := entry.String("material", DefaultMaterial)
	if m, ok := items.MatchMaterial(requested); ok && !m.IsAir() {
		return m
	}
	report.Fallbacks = append(report.Fallbacks, id)
	loggingcatalog.MaterialFallback(ctx, r.publisher, r.tick(), logging.ServerRef(), loggingcatalog.MaterialFallbackPayload{
		Item:       id,
		Requested:  requested,
		Fallback:   DefaultMaterial,
		Suggestion: suggestMaterial(requested),
	}, nil)
	return items.MustMaterial(DefaultMaterial)
}

func (r *Registry) drop(ctx context.Context, report *LoadReport, dropped DroppedAbility) {
	report.Dropped = append(report.Dropped, dropped)
	loggingabilities.ConstructionFailed(ctx, r.publisher, r.tick(), logging.ServerRef(), loggingabilities.ConstructionFailedPayload{
		Item:  dropped.Item,
		Key:   dropped.Key,
		Kind:  dropped.Kind,
		Error: dropped.Err.Error(),
	}, nil)
}

func withoutType(cfg *config.Section) (*config.Section, error) {
	params, err := cfg.Clone()
	if err != nil {
		return nil, err
	}
	params.Delete("type")
	return params, nil
}

// Get returns the template registered under id.
func (r *Registry) Get(id string) (*Template, bool) {
	tmpl, ok := r.templates[id]
	return tmpl, ok
}

// IDs lists template ids in configuration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Len reports the number of templates.
func (r *Registry) Len() int {
	return len(r.order)
}

// Suggest returns the registered id closest to id, or "" when none is near.
func (r *Registry) Suggest(id string) string {
	return closest(id, r.order)
}

func suggestMaterial(name string) string {
	all := items.Materials()
	names := make([]string, 0, len(all))
	for _, m := range all {
		names = append(names, m.Name)
	}
	return closest(items.NormalizeMaterialName(name), names)
}

func closest(target string, candidates []string) string {
	best, bestDist := "", max(3, len(target)/3+1)
	for _, candidate := range candidates {
		if d := levenshtein.ComputeDistance(target, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}
