// Package factory manufactures tagged item stacks from catalog templates and
// resolves stacks back to the template they came from.
package factory

import (
	"strings"

	"github.com/WolfTailVale/ItemCreator/internal/catalog"
	"github.com/WolfTailVale/ItemCreator/internal/items"
	"github.com/WolfTailVale/ItemCreator/internal/items/identity"
)

// CustomPrefix marks an item specification that names a template id.
const CustomPrefix = "custom:"

// Templates is the read side of the template registry.
type Templates interface {
	Get(id string) (*catalog.Template, bool)
}

type Factory struct {
	templates Templates
	tagger    identity.Tagger
}

func New(templates Templates, tagger identity.Tagger) *Factory {
	return &Factory{templates: templates, tagger: tagger}
}

// Tagger exposes the identity tagger used for every created stack.
func (f *Factory) Tagger() identity.Tagger {
	return f.tagger
}

// Create builds a single-unit stack of the template id. Unknown ids yield false.
func (f *Factory) Create(id string) (*items.Stack, bool) {
	tmpl, ok := f.templates.Get(id)
	if !ok {
		return nil, false
	}
	stack := items.NewStack(tmpl.Material, 1)
	meta := stack.EnsureMeta()
	if meta == nil {
		return nil, false
	}
	if tmpl.DisplayName != "" {
		meta.DisplayName = items.TranslateColorCodes(tmpl.DisplayName)
	}
	if len(tmpl.Lore) > 0 {
		meta.Lore = make([]string, len(tmpl.Lore))
		for i, line := range tmpl.Lore {
			meta.Lore[i] = items.TranslateColorCodes(line)
		}
	}
	if tmpl.CustomModelData != nil {
		cmd := *tmpl.CustomModelData
		meta.CustomModelData = &cmd
	}
	meta.HideAttributes = true
	if !f.tagger.Tag(stack, tmpl.ID) {
		return nil, false
	}
	return stack, true
}

// CreateAmount is Create with the stack size set to amount.
func (f *Factory) CreateAmount(id string, amount int) (*items.Stack, bool) {
	stack, ok := f.Create(id)
	if !ok {
		return nil, false
	}
	if amount > 1 {
		stack.Amount = amount
	}
	return stack, true
}

// ReadID returns the template id tagged on stack.
func (f *Factory) ReadID(stack *items.Stack) (string, bool) {
	return f.tagger.ReadID(stack)
}

// Resolve reads the identity tag of stack and looks the id up.
func (f *Factory) Resolve(stack *items.Stack) (*catalog.Template, bool) {
	id, ok := f.tagger.ReadID(stack)
	if !ok {
		return nil, false
	}
	return f.templates.Get(id)
}

// Spec resolves an item specification: either a base material name or
// "custom:<id>".
func (f *Factory) Spec(spec string) (*items.Stack, bool) {
	spec = strings.TrimSpace(spec)
	if id, ok := strings.CutPrefix(spec, CustomPrefix); ok {
		return f.Create(strings.TrimSpace(id))
	}
	m, ok := items.MatchMaterial(spec)
	if !ok || m.IsAir() {
		return nil, false
	}
	return items.NewStack(m, 1), true
}

// SpecOf returns the item specification that describes stack: "custom:<id>"
// for tagged stacks and the lowercase material name otherwise.
func (f *Factory) SpecOf(stack *items.Stack) string {
	if id, ok := f.tagger.ReadID(stack); ok {
		return CustomPrefix + id
	}
	if stack == nil {
		return ""
	}
	return strings.ToLower(stack.Material.Name)
}
