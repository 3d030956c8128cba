package server

import (
	"github.com/WolfTailVale/ItemCreator/internal/abilities"
	"github.com/WolfTailVale/ItemCreator/internal/items"
	"github.com/WolfTailVale/ItemCreator/internal/recipes"
	"github.com/WolfTailVale/ItemCreator/internal/world"
)

// StackView is the wire form of an item stack.
type StackView struct {
	Slot     int      `json:"slot"`
	Spec     string   `json:"spec"`
	Material string   `json:"material"`
	Amount   int      `json:"amount"`
	Name     string   `json:"name"`
	Lore     []string `json:"lore,omitempty"`
}

// PlayerView is what a player sees of itself.
type PlayerView struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Location  world.Location `json:"location"`
	Health    float64        `json:"health"`
	MaxHealth float64        `json:"maxHealth"`
	Creative  bool           `json:"creative"`
	Selected  int            `json:"selected"`
	Slots     []StackView    `json:"slots"`
	OffHand   *StackView     `json:"offHand,omitempty"`
	Effects   []world.Effect `json:"effects,omitempty"`
}

// OffHandSlot marks the off-hand entry in a PlayerView.
const OffHandSlot = -1

func (h *Hub) stackView(slot int, stack *items.Stack) StackView {
	view := StackView{
		Slot:     slot,
		Spec:     h.factory.SpecOf(stack),
		Material: stack.Material.Name,
		Amount:   stack.Amount,
		Name:     stack.Name(),
	}
	if stack.Meta != nil {
		view.Lore = append([]string(nil), stack.Meta.Lore...)
	}
	return view
}

func (h *Hub) playerViewLocked(p *world.Player) PlayerView {
	inv := p.Inventory()
	view := PlayerView{
		ID:        p.ID().String(),
		Name:      p.Name(),
		Location:  p.Location(),
		Health:    p.Health(),
		MaxHealth: p.MaxHealth(),
		Creative:  p.Creative(),
		Selected:  inv.Selected(),
		Slots:     []StackView{},
		Effects:   p.Effects(),
	}
	for i := 0; i < inv.Size(); i++ {
		if stack := inv.Slot(i); !stack.Empty() {
			view.Slots = append(view.Slots, h.stackView(i, stack))
		}
	}
	if off := inv.OffHand(); !off.Empty() {
		v := h.stackView(OffHandSlot, off)
		view.OffHand = &v
	}
	return view
}

// Player returns the view of a joined player.
func (h *Hub) Player(name string) (PlayerView, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := h.playerLocked(name)
	if err != nil {
		return PlayerView{}, err
	}
	return h.playerViewLocked(p), nil
}

// AbilityView describes one configured ability.
type AbilityView struct {
	Kind     string   `json:"kind"`
	Cooldown float64  `json:"cooldownSeconds"`
	Triggers []string `json:"triggers"`
}

// ItemView describes one template.
type ItemView struct {
	ID              string        `json:"id"`
	Material        string        `json:"material"`
	Name            string        `json:"name"`
	Lore            []string      `json:"lore,omitempty"`
	CustomModelData *int          `json:"customModelData,omitempty"`
	Abilities       []AbilityView `json:"abilities,omitempty"`
}

// Items lists templates in configuration order.
func (h *Hub) Items() []ItemView {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := h.templates.IDs()
	out := make([]ItemView, 0, len(ids))
	for _, id := range ids {
		tmpl, ok := h.templates.Get(id)
		if !ok {
			continue
		}
		view := ItemView{
			ID:              tmpl.ID,
			Material:        tmpl.Material.Name,
			Name:            tmpl.DisplayName,
			Lore:            tmpl.Lore,
			CustomModelData: tmpl.CustomModelData,
		}
		for _, ability := range tmpl.Abilities {
			view.Abilities = append(view.Abilities, abilityView(ability))
		}
		out = append(out, view)
	}
	return out
}

func abilityView(a abilities.Ability) AbilityView {
	triggers := make([]string, len(a.Triggers))
	for i, t := range a.Triggers {
		triggers[i] = string(t)
	}
	return AbilityView{Kind: string(a.Kind), Cooldown: a.Cooldown.Seconds(), Triggers: triggers}
}

// BundleView describes one registered bundle.
type BundleView struct {
	ID        string `json:"id"`
	Container string `json:"container"`
	Unit      string `json:"unit"`
	Count     int    `json:"count"`
}

// Bundles lists registered bundles by id.
func (h *Hub) Bundles() []BundleView {
	h.mu.Lock()
	defer h.mu.Unlock()
	bundles := h.registrar.Bundles()
	out := make([]BundleView, 0, len(bundles))
	for _, b := range bundles {
		out = append(out, BundleView{ID: b.ID, Container: b.Container, Unit: b.UnitSpec, Count: b.Count})
	}
	return out
}

// RecipeView describes one crafting entry in the book.
type RecipeView struct {
	Key    string   `json:"key"`
	Type   string   `json:"type"`
	Shape  []string `json:"shape,omitempty"`
	Result string   `json:"result"`
	Amount int      `json:"amount"`
	Owned  bool     `json:"owned"`
}

// Recipes lists the recipe book in insertion order.
func (h *Hub) Recipes() []RecipeView {
	h.mu.Lock()
	defer h.mu.Unlock()
	owned := make(map[items.Key]bool)
	for _, key := range h.registrar.Keys() {
		owned[key] = true
	}
	keys := h.book.Keys()
	out := make([]RecipeView, 0, len(keys))
	for _, key := range keys {
		recipe, ok := h.book.Get(key)
		if !ok {
			continue
		}
		result := recipe.Result()
		view := RecipeView{
			Key:    key.String(),
			Result: h.factory.SpecOf(result),
			Amount: result.Amount,
			Owned:  owned[key],
		}
		switch r := recipe.(type) {
		case *recipes.ShapedRecipe:
			view.Type = "shaped"
			view.Shape = r.Shape()
		case *recipes.ShapelessRecipe:
			view.Type = "shapeless"
		}
		out = append(out, view)
	}
	return out
}

// Diagnostics is the operator snapshot served on /diagnostics.
type Diagnostics struct {
	Tick       uint64       `json:"tick"`
	Players    []string     `json:"players"`
	Templates  int          `json:"templates"`
	Bundles    int          `json:"bundles"`
	Recipes    int          `json:"recipes"`
	Cooldowns  int          `json:"cooldowns"`
	Blocks     int          `json:"trackedBlocks"`
	LastReload ReloadReport `json:"lastReload"`
}

func (h *Hub) Diagnostics() Diagnostics {
	h.mu.Lock()
	defer h.mu.Unlock()
	players := []string{}
	for _, actor := range h.world.Actors() {
		players = append(players, actor.Name())
	}
	return Diagnostics{
		Tick:       h.Tick(),
		Players:    players,
		Templates:  h.templates.Len(),
		Bundles:    len(h.registrar.Bundles()),
		Recipes:    h.book.Len(),
		Cooldowns:  h.engine.Tracked(),
		Blocks:     h.blocks.Len(),
		LastReload: h.lastReload,
	}
}
