// Package triggers turns player interactions into engine calls: opening
// bundle containers, running item abilities, and keeping the identity of
// custom items placed as blocks.
package triggers

import (
	"context"

	"github.com/WolfTailVale/ItemCreator/internal/abilities"
	"github.com/WolfTailVale/ItemCreator/internal/catalog"
	"github.com/WolfTailVale/ItemCreator/internal/items"
	"github.com/WolfTailVale/ItemCreator/internal/recipes"
	"github.com/WolfTailVale/ItemCreator/internal/world"
	"github.com/WolfTailVale/ItemCreator/logging"
	loggingtriggers "github.com/WolfTailVale/ItemCreator/logging/triggers"
)

// Resolver maps a stack back to its template.
type Resolver interface {
	Resolve(stack *items.Stack) (*catalog.Template, bool)
}

// Bundles looks up bundles by container template id.
type Bundles interface {
	BundleByContainerID(id string) (recipes.Bundle, bool)
}

// Executor runs ability lists.
type Executor interface {
	Execute(ctx context.Context, act abilities.Activation, list []abilities.Ability) []abilities.Result
}

// Hand selects which hand performed an interaction.
type Hand int

const (
	MainHand Hand = iota
	OffHand
)

// Interaction is one right click by an actor.
type Interaction struct {
	Actor world.Actor
	Hand  Hand
	// Block is the clicked block, nil when the click hit air.
	Block *world.BlockPos
	World string
}

// Outcome names what an interaction did.
type Outcome string

const (
	OutcomeIgnored   Outcome = "ignored"
	OutcomeUnboxed   Outcome = "unboxed"
	OutcomeAbilities Outcome = "abilities"
)

// InteractResult reports one Interact call.
type InteractResult struct {
	Outcome  Outcome
	Template string
	Trigger  abilities.TriggerKind
	Unboxed  int
	Leftover int
	Results  []abilities.Result
}

// ClickSound is the cue played when an item's abilities are activated.
const ClickSound = "ui.button.click"

// Dispatcher routes interactions. Like the engine, it expects to be driven
// from the single logic goroutine.
type Dispatcher struct {
	resolver  Resolver
	bundles   Bundles
	engine    Executor
	world     world.World
	publisher logging.Publisher
	tick      func() uint64
}

// Options wires optional collaborators.
type Options struct {
	Publisher logging.Publisher
	Tick      func() uint64
}

func NewDispatcher(resolver Resolver, bundles Bundles, engine Executor, w world.World, opts Options) *Dispatcher {
	tick := opts.Tick
	if tick == nil {
		tick = func() uint64 { return 0 }
	}
	return &Dispatcher{
		resolver:  resolver,
		bundles:   bundles,
		engine:    engine,
		world:     w,
		publisher: logging.OrNop(opts.Publisher),
		tick:      tick,
	}
}

// Interact handles a right click with the item held in in.Hand. A bundle
// container in the main hand is unboxed; otherwise the template's abilities
// run with the interact trigger, or ignite when the off hand holds flint and
// steel.
func (d *Dispatcher) Interact(ctx context.Context, in Interaction) InteractResult {
	if in.Actor == nil {
		return InteractResult{Outcome: OutcomeIgnored}
	}
	inv := in.Actor.Inventory()
	stack := inv.MainHand()
	if in.Hand == OffHand {
		stack = inv.OffHand()
	}
	if stack.Empty() {
		return InteractResult{Outcome: OutcomeIgnored}
	}
	tmpl, ok := d.resolver.Resolve(stack)
	if !ok {
		return InteractResult{Outcome: OutcomeIgnored}
	}

	if in.Hand == MainHand {
		if bundle, ok := d.bundles.BundleByContainerID(tmpl.ID); ok {
			return d.unbox(ctx, in.Actor, stack, bundle)
		}
	}
	if len(tmpl.Abilities) == 0 {
		return InteractResult{Outcome: OutcomeIgnored, Template: tmpl.ID}
	}

	trigger := abilities.TriggerInteract
	if off := inv.OffHand(); !off.Empty() && off.Material.Name == items.MaterialFlintAndSteel {
		trigger = abilities.TriggerIgnite
	} else if d.world != nil {
		d.world.Emit(world.Cue{Kind: world.CueSound, Name: ClickSound, At: in.Actor.Location()})
	}

	act := abilities.Activation{
		Actor:    in.Actor,
		Item:     stack,
		ItemID:   tmpl.ID,
		Location: InteractionLocation(in),
		Trigger:  trigger,
	}
	return InteractResult{
		Outcome:  OutcomeAbilities,
		Template: tmpl.ID,
		Trigger:  trigger,
		Results:  d.engine.Execute(ctx, act, tmpl.Abilities),
	}
}

func (d *Dispatcher) unbox(ctx context.Context, actor world.Actor, container *items.Stack, bundle recipes.Bundle) InteractResult {
	consumed := !actor.Creative()
	if consumed {
		world.ConsumeOne(actor.Inventory(), container)
	}
	leftover := actor.Inventory().Add(bundle.Unit.WithAmount(bundle.Count))
	loggingtriggers.Unboxed(ctx, d.publisher, d.tick(), logging.PlayerRef(actor.ID().String()), loggingtriggers.UnboxedPayload{
		Container: bundle.Container,
		Unit:      bundle.UnitSpec,
		Count:     bundle.Count,
		Leftover:  leftover,
		Consumed:  consumed,
	}, nil)
	return InteractResult{
		Outcome:  OutcomeUnboxed,
		Template: bundle.Container,
		Unboxed:  bundle.Count - leftover,
		Leftover: leftover,
	}
}

// InteractionLocation is the point abilities act on: the top centre of the
// clicked block, or the actor's own location when the click hit air.
func InteractionLocation(in Interaction) world.Location {
	if in.Block != nil {
		name := in.World
		if name == "" {
			name = in.Actor.Location().World
		}
		return world.BlockCenterTop(name, *in.Block)
	}
	return in.Actor.Location()
}
