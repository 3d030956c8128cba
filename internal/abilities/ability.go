// Package abilities builds item abilities from configuration and runs them on
// behalf of actors, gating each (actor, kind) pair behind a cooldown.
//
// An Ability is a closed variant: its Params is one of FlashParams,
// HealParams, TeleportParams, or CustomParams for kinds registered at
// runtime. Execution matches on the variant explicitly.
package abilities

import (
	"slices"
	"time"

	"github.com/WolfTailVale/ItemCreator/internal/items"
	"github.com/WolfTailVale/ItemCreator/internal/world"
)

// Kind names an ability type as written in configuration.
type Kind string

const (
	KindFlash    Kind = "flashbang"
	KindHeal     Kind = "heal"
	KindTeleport Kind = "teleport"
)

// TriggerKind names the category of notification that may fire an ability.
type TriggerKind string

const (
	// TriggerInteract is a plain use of the held item.
	TriggerInteract TriggerKind = "interact"
	// TriggerIgnite is a use of the held item with flint and steel in the off hand.
	TriggerIgnite TriggerKind = "ignite"
)

// DefaultTriggers is the trigger set used when configuration names none.
var DefaultTriggers = []TriggerKind{TriggerInteract, TriggerIgnite}

// Ability is one configured, immutable ability instance. It is shared by
// every item built from the same template.
type Ability struct {
	Kind     Kind
	Cooldown time.Duration
	Triggers []TriggerKind
	Params   Params
}

// CanTrigger reports whether the ability answers trigger.
func (a Ability) CanTrigger(trigger TriggerKind) bool {
	return slices.Contains(a.Triggers, trigger)
}

// Params is the kind-specific half of an Ability.
type Params interface {
	params()
}

type FlashParams struct {
	Range    float64
	Duration time.Duration
}

type HealParams struct {
	Amount float64
}

type TeleportParams struct {
	Distance float64
}

// CustomParams carries the effect of a kind registered outside this package.
type CustomParams struct {
	Run    EffectFunc
	Values map[string]any
}

func (FlashParams) params()    {}
func (HealParams) params()     {}
func (TeleportParams) params() {}
func (CustomParams) params()   {}

// Activation is one trigger notification addressed to an item's abilities.
type Activation struct {
	Actor    world.Actor
	Item     *items.Stack
	ItemID   string
	Location world.Location
	Trigger  TriggerKind
}

// EffectFunc runs a custom ability. Returning an error marks the activation
// failed without affecting the rest of the list.
type EffectFunc func(w world.World, act Activation) error
