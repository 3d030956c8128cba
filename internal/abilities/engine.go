package abilities

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/WolfTailVale/ItemCreator/internal/world"
	"github.com/WolfTailVale/ItemCreator/logging"
	loggingabilities "github.com/WolfTailVale/ItemCreator/logging/abilities"
)

// Clock supplies the engine's notion of now.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function into a Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// Status is the outcome of one ability in an Execute call.
type Status string

const (
	StatusExecuted       Status = "executed"
	StatusSkippedTrigger Status = "skipped_trigger"
	StatusOnCooldown     Status = "on_cooldown"
	StatusFailed         Status = "failed"
)

// Result reports what happened to one ability, in list order.
type Result struct {
	Kind      Kind
	Status    Status
	Remaining time.Duration
	Err       error
}

// Options configures an Engine. Zero values fall back to the wall clock and a
// no-op publisher.
type Options struct {
	Clock     Clock
	Publisher logging.Publisher
	Tick      func() uint64
}

// Engine runs ability lists and owns the per-actor cooldown state. It is not
// safe for concurrent use; callers serialize access onto one goroutine.
type Engine struct {
	world     world.World
	clock     Clock
	publisher logging.Publisher
	tick      func() uint64
	lastUsed  map[world.ActorID]map[Kind]time.Time
}

var errNoWorld = errors.New("abilities: no world attached")

func NewEngine(w world.World, opts Options) *Engine {
	clock := opts.Clock
	if clock == nil {
		clock = ClockFunc(time.Now)
	}
	tick := opts.Tick
	if tick == nil {
		tick = func() uint64 { return 0 }
	}
	return &Engine{
		world:     w,
		clock:     clock,
		publisher: logging.OrNop(opts.Publisher),
		tick:      tick,
		lastUsed:  make(map[world.ActorID]map[Kind]time.Time),
	}
}

// Execute runs list in order for act. Abilities that do not answer the
// trigger or are cooling down are skipped. A failing ability is reported to
// the actor and the publisher and the remaining abilities still run.
func (e *Engine) Execute(ctx context.Context, act Activation, list []Ability) []Result {
	if act.Actor == nil {
		return nil
	}
	results := make([]Result, 0, len(list))
	for _, ability := range list {
		if !ability.CanTrigger(act.Trigger) {
			results = append(results, Result{Kind: ability.Kind, Status: StatusSkippedTrigger})
			continue
		}
		if remaining := e.RemainingCooldown(act.Actor.ID(), ability); remaining > 0 {
			results = append(results, Result{Kind: ability.Kind, Status: StatusOnCooldown, Remaining: remaining})
			continue
		}
		if err := e.run(ability, act); err != nil {
			e.reportFailure(ctx, act, ability, err)
			results = append(results, Result{Kind: ability.Kind, Status: StatusFailed, Err: err})
			continue
		}
		if ability.Cooldown > 0 {
			e.stamp(act.Actor.ID(), ability.Kind)
		}
		loggingabilities.Executed(ctx, e.publisher, e.tick(), actorRef(act.Actor), loggingabilities.ExecutedPayload{
			Kind:       string(ability.Kind),
			Item:       act.ItemID,
			Trigger:    string(act.Trigger),
			CooldownMs: ability.Cooldown.Milliseconds(),
		}, nil)
		results = append(results, Result{Kind: ability.Kind, Status: StatusExecuted})
	}
	return results
}

func (e *Engine) run(ability Ability, act Activation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("abilities: %s panicked: %v", ability.Kind, r)
		}
	}()
	switch p := ability.Params.(type) {
	case FlashParams:
		return e.flash(act, p)
	case HealParams:
		return heal(e.world, act, p)
	case TeleportParams:
		return e.teleport(act, p)
	case CustomParams:
		if p.Run == nil {
			return fmt.Errorf("abilities: %s has no effect", ability.Kind)
		}
		return p.Run(e.world, act)
	default:
		return fmt.Errorf("abilities: %s has unsupported params %T", ability.Kind, ability.Params)
	}
}

func (e *Engine) reportFailure(ctx context.Context, act Activation, ability Ability, err error) {
	act.Actor.SendMessage(fmt.Sprintf("§cAbility execution failed: %v", err))
	loggingabilities.Failed(ctx, e.publisher, e.tick(), actorRef(act.Actor), loggingabilities.FailedPayload{
		Kind:    string(ability.Kind),
		Item:    act.ItemID,
		Trigger: string(act.Trigger),
		Error:   err.Error(),
	}, nil)
}

func (e *Engine) stamp(actor world.ActorID, kind Kind) {
	byKind, ok := e.lastUsed[actor]
	if !ok {
		byKind = make(map[Kind]time.Time)
		e.lastUsed[actor] = byKind
	}
	byKind[kind] = e.clock.Now()
}

// IsOnCooldown reports whether actor used ability's kind less than its
// cooldown ago. Abilities without a cooldown are never on cooldown.
func (e *Engine) IsOnCooldown(actor world.ActorID, ability Ability) bool {
	return e.RemainingCooldown(actor, ability) > 0
}

// RemainingCooldown returns how long until ability is usable again, never
// negative and never more than its cooldown.
func (e *Engine) RemainingCooldown(actor world.ActorID, ability Ability) time.Duration {
	if ability.Cooldown <= 0 {
		return 0
	}
	last, ok := e.lastUsed[actor][ability.Kind]
	if !ok {
		return 0
	}
	elapsed := max(e.clock.Now().Sub(last), 0)
	if elapsed >= ability.Cooldown {
		return 0
	}
	return ability.Cooldown - elapsed
}

// Tracked reports how many actors have cooldown state.
func (e *Engine) Tracked() int {
	return len(e.lastUsed)
}

// Cleanup is reserved for evicting state of departed actors. Stale stamps
// only ever expire, so keeping them is harmless and it does nothing.
func (e *Engine) Cleanup() {}

func actorRef(actor world.Actor) logging.EntityRef {
	return logging.PlayerRef(actor.ID().String())
}
