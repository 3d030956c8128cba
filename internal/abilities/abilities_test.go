package abilities

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/WolfTailVale/ItemCreator/internal/config"
	"github.com/WolfTailVale/ItemCreator/internal/items"
	"github.com/WolfTailVale/ItemCreator/internal/world"
	loggingabilities "github.com/WolfTailVale/ItemCreator/logging/abilities"
	"github.com/WolfTailVale/ItemCreator/logging/sinks"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func section(t *testing.T, doc string) *config.Section {
	t.Helper()
	cfg, err := config.Decode([]byte(doc))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return cfg
}

func mustInstantiate(t *testing.T, r *Registry, kind, doc string) Ability {
	t.Helper()
	ability, err := r.Instantiate(kind, section(t, doc))
	if err != nil {
		t.Fatalf("instantiate %s failed: %v", kind, err)
	}
	return ability
}

func TestBuiltinDefaults(t *testing.T) {
	r := NewRegistry()

	flash := mustInstantiate(t, r, "flashbang", `{}`)
	fp, ok := flash.Params.(FlashParams)
	if !ok {
		t.Fatalf("expected FlashParams, got %T", flash.Params)
	}
	if fp.Range != 10 || fp.Duration != 5*time.Second || flash.Cooldown != 3*time.Second {
		t.Fatalf("unexpected flash defaults: %+v cooldown=%s", fp, flash.Cooldown)
	}
	if !flash.CanTrigger(TriggerInteract) || !flash.CanTrigger(TriggerIgnite) {
		t.Fatalf("expected default triggers, got %v", flash.Triggers)
	}

	heal := mustInstantiate(t, r, "heal", `{}`)
	if hp := heal.Params.(HealParams); hp.Amount != 4 || heal.Cooldown != 10*time.Second {
		t.Fatalf("unexpected heal defaults: %+v cooldown=%s", hp, heal.Cooldown)
	}

	tp := mustInstantiate(t, r, "teleport", `{}`)
	if p := tp.Params.(TeleportParams); p.Distance != 5 || tp.Cooldown != 5*time.Second {
		t.Fatalf("unexpected teleport defaults: %+v cooldown=%s", p, tp.Cooldown)
	}

	if _, err := r.Instantiate("heal", nil); err != nil {
		t.Fatalf("expected nil config to use defaults, got %v", err)
	}
}

func TestConfiguredParametersUseSeconds(t *testing.T) {
	r := NewRegistry()

	flash := mustInstantiate(t, r, "FlashBang", `{"blindness-duration": 2, "cooldown": 1.5, "range": 4}`)
	fp := flash.Params.(FlashParams)
	if fp.Duration != 2*time.Second || flash.Cooldown != 1500*time.Millisecond || fp.Range != 4 {
		t.Fatalf("unexpected flash params: %+v cooldown=%s", fp, flash.Cooldown)
	}
	if flash.Kind != KindFlash {
		t.Fatalf("expected kind to be normalized, got %q", flash.Kind)
	}

	both := mustInstantiate(t, r, "flashbang", `{"blindness-duration": 2, "duration": 7}`)
	if d := both.Params.(FlashParams).Duration; d != 7*time.Second {
		t.Fatalf("expected duration to win over blindness-duration, got %s", d)
	}

	heal := mustInstantiate(t, r, "heal", `{"amount": 6, "cooldown": 0, "triggers": ["ignite"]}`)
	if heal.Params.(HealParams).Amount != 6 || heal.Cooldown != 0 {
		t.Fatalf("unexpected heal: %+v", heal)
	}
	if heal.CanTrigger(TriggerInteract) || !heal.CanTrigger(TriggerIgnite) {
		t.Fatalf("expected trigger override, got %v", heal.Triggers)
	}

	if _, err := r.Instantiate("teleport", section(t, `{"distance": -1}`)); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestUnknownKindSuggestsClosest(t *testing.T) {
	r := NewRegistry()
	_, err := r.Instantiate("heall", nil)
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if !strings.Contains(err.Error(), `did you mean "heal"`) {
		t.Fatalf("expected suggestion, got %v", err)
	}
	_, err = r.Instantiate("lightning", nil)
	if !errors.Is(err, ErrUnknownKind) || strings.Contains(err.Error(), "did you mean") {
		t.Fatalf("expected bare unknown kind error, got %v", err)
	}
}

func TestRegisterCustomKind(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("", nil); err == nil {
		t.Fatalf("expected empty kind to be rejected")
	}
	err := r.Register("Shout", func(cfg *config.Section) (Ability, error) {
		return Ability{Params: CustomParams{Values: map[string]any{"text": cfg.String("text", "hey")}}}, nil
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	shout := mustInstantiate(t, r, "shout", `{}`)
	if shout.Kind != "shout" {
		t.Fatalf("expected kind shout, got %q", shout.Kind)
	}
	if got := shout.Params.(CustomParams).Values["text"]; got != "hey" {
		t.Fatalf("expected default text, got %v", got)
	}
	kinds := r.Kinds()
	if len(kinds) != 4 || kinds[0] != KindFlash {
		t.Fatalf("expected four sorted kinds, got %v", kinds)
	}
}

func TestHealNeverOverheals(t *testing.T) {
	grid := world.NewGrid("w")
	player := world.NewPlayer("steve", world.Location{})
	grid.Join(player)
	player.SetHealth(18)

	engine := NewEngine(grid, Options{Clock: newClock()})
	heal := mustInstantiate(t, NewRegistry(), "heal", `{"heal": 6}`)

	results := engine.Execute(context.Background(), Activation{Actor: player, Trigger: TriggerInteract}, []Ability{heal})
	if len(results) != 1 || results[0].Status != StatusExecuted {
		t.Fatalf("expected heal to execute, got %+v", results)
	}
	if player.Health() != 20 {
		t.Fatalf("expected 20/20, got %v", player.Health())
	}
	msgs := player.Messages()
	if len(msgs) != 1 || !strings.Contains(msgs[0], "Healed 3 hearts") {
		t.Fatalf("expected heal message, got %v", msgs)
	}
}

func pitWorld() *world.Grid {
	grid := world.NewGrid("w")
	stone := items.MustMaterial("STONE")
	grid.Fill(world.BlockPos{X: -2, Y: 63, Z: -2}, world.BlockPos{X: 2, Y: 63, Z: 10}, stone)
	grid.SetBlock(world.BlockPos{X: 0, Y: 63, Z: 5}, items.MustMaterial(items.MaterialAir))
	grid.SetBlock(world.BlockPos{X: 0, Y: 61, Z: 5}, stone)
	return grid
}

func TestTeleportLandsOnPitFloor(t *testing.T) {
	grid := pitWorld()
	player := world.NewPlayer("steve", world.Location{X: 0.5, Y: 64, Z: 0.5})
	grid.Join(player)

	engine := NewEngine(grid, Options{Clock: newClock()})
	tp := mustInstantiate(t, NewRegistry(), "teleport", `{"distance": 5}`)
	engine.Execute(context.Background(), Activation{Actor: player, Trigger: TriggerInteract}, []Ability{tp})

	got := player.Location()
	if got.X != 0.5 || got.Z != 5.5 {
		t.Fatalf("expected to move 5 blocks along +Z, got %+v", got)
	}
	if got.Y != 62 {
		t.Fatalf("expected to stand on the pit floor at y=62, got %v", got.Y)
	}
	if len(grid.DrainCues()) == 0 {
		t.Fatalf("expected teleport cues")
	}
}

func TestTeleportFallsBackWithoutFooting(t *testing.T) {
	grid := world.NewGrid("w")
	player := world.NewPlayer("steve", world.Location{X: 0.5, Y: 100, Z: 0.5})
	grid.Join(player)

	engine := NewEngine(grid, Options{Clock: newClock()})
	tp := mustInstantiate(t, NewRegistry(), "teleport", `{}`)
	engine.Execute(context.Background(), Activation{Actor: player, Trigger: TriggerInteract}, []Ability{tp})

	if got := player.Location(); got.Y != 100 || got.Z != 5.5 {
		t.Fatalf("expected raw destination, got %+v", got)
	}
}

func TestSafeLandingIgnoresFloorWithoutHeadroom(t *testing.T) {
	grid := world.NewGrid("w")
	stone := items.MustMaterial("STONE")
	grid.SetBlock(world.BlockPos{Y: 60}, stone)
	grid.SetBlock(world.BlockPos{Y: 62}, stone)
	grid.SetBlock(world.BlockPos{Y: 55}, stone)

	got := SafeLanding(grid, world.Location{X: 0.2, Y: 64.5, Z: 0.2})
	if got.Y != 63 {
		t.Fatalf("expected to stand on y=62, got %v", got.Y)
	}
	got = SafeLanding(grid, world.Location{X: 0.2, Y: 61.5, Z: 0.2})
	if got.Y != 56 {
		t.Fatalf("expected to skip the cramped y=60 floor, got %v", got.Y)
	}
}

func TestFlashBlindsOnlyOthersLookingAtIt(t *testing.T) {
	grid := world.NewGrid("w")
	thrower := world.NewPlayer("thrower", world.Location{Y: 64})
	watcher := world.NewPlayer("watcher", world.Location{Y: 64, Z: 5, Yaw: 180})
	averted := world.NewPlayer("averted", world.Location{Y: 64, Z: -5, Yaw: 180})
	distant := world.NewPlayer("distant", world.Location{Y: 64, Z: 20, Yaw: 180})
	for _, p := range []*world.Player{thrower, watcher, averted, distant} {
		grid.Join(p)
	}
	thrower.Inventory().SetSlot(0, items.NewStack(items.MustMaterial("FIREWORK_STAR"), 1))
	held := thrower.Inventory().MainHand()

	engine := NewEngine(grid, Options{Clock: newClock()})
	flash := mustInstantiate(t, NewRegistry(), "flashbang", `{"duration": 4}`)
	act := Activation{Actor: thrower, Item: held, Location: world.Location{World: "w", Y: 65}, Trigger: TriggerIgnite}
	engine.Execute(context.Background(), act, []Ability{flash})

	effects := watcher.Effects()
	if len(effects) != 2 {
		t.Fatalf("expected watcher to receive two effects, got %v", effects)
	}
	if effects[0].Kind != world.EffectBlindness || effects[0].Duration != 4*time.Second {
		t.Fatalf("expected 4s blindness, got %+v", effects[0])
	}
	if effects[1].Kind != world.EffectNausea || effects[1].Duration != 2*time.Second {
		t.Fatalf("expected 2s nausea, got %+v", effects[1])
	}
	for _, p := range []*world.Player{thrower, averted, distant} {
		if len(p.Effects()) != 0 {
			t.Fatalf("expected %s to be unaffected, got %v", p.Name(), p.Effects())
		}
	}
	if thrower.Inventory().MainHand() != nil {
		t.Fatalf("expected the last flashbang to be consumed")
	}
}

func countingRegistry(t *testing.T, calls *int) *Registry {
	t.Helper()
	r := NewRegistry()
	must := func(err error) {
		if err != nil {
			t.Fatalf("register failed: %v", err)
		}
	}
	must(r.Register("broken", func(*config.Section) (Ability, error) {
		return Ability{Params: CustomParams{Run: func(world.World, Activation) error {
			return errors.New("boom")
		}}}, nil
	}))
	must(r.Register("panicky", func(*config.Section) (Ability, error) {
		return Ability{Params: CustomParams{Run: func(world.World, Activation) error {
			panic("kaboom")
		}}}, nil
	}))
	must(r.Register("count", func(cfg *config.Section) (Ability, error) {
		return Ability{
			Cooldown: Seconds(cfg, "cooldown", 0),
			Params: CustomParams{Run: func(world.World, Activation) error {
				*calls++
				return nil
			}},
		}, nil
	}))
	return r
}

func TestFailureIsolation(t *testing.T) {
	calls := 0
	r := countingRegistry(t, &calls)
	grid := world.NewGrid("w")
	player := world.NewPlayer("steve", world.Location{})
	grid.Join(player)
	memory := sinks.NewMemorySink()
	engine := NewEngine(grid, Options{Clock: newClock(), Publisher: memory})

	list := []Ability{
		mustInstantiate(t, r, "broken", `{}`),
		mustInstantiate(t, r, "panicky", `{}`),
		mustInstantiate(t, r, "count", `{"cooldown": 2}`),
	}
	results := engine.Execute(context.Background(), Activation{Actor: player, ItemID: "wand", Trigger: TriggerInteract}, list)

	if calls != 1 {
		t.Fatalf("expected the healthy ability to run exactly once, got %d", calls)
	}
	if results[0].Status != StatusFailed || results[1].Status != StatusFailed || results[2].Status != StatusExecuted {
		t.Fatalf("unexpected results: %+v", results)
	}
	if !strings.Contains(results[1].Err.Error(), "kaboom") {
		t.Fatalf("expected panic to surface as error, got %v", results[1].Err)
	}
	if got := len(player.Messages()); got != 2 {
		t.Fatalf("expected two failure messages, got %d", got)
	}
	failed := memory.OfType(loggingabilities.EventFailed)
	if len(failed) != 2 {
		t.Fatalf("expected two failure events, got %d", len(failed))
	}
	if payload := failed[0].Payload.(loggingabilities.FailedPayload); payload.Item != "wand" || payload.Kind != "broken" {
		t.Fatalf("unexpected failure payload: %+v", payload)
	}
	if engine.IsOnCooldown(player.ID(), list[0]) {
		t.Fatalf("expected failed ability not to be stamped")
	}
}

func TestCooldownMonotonic(t *testing.T) {
	calls := 0
	r := countingRegistry(t, &calls)
	clock := newClock()
	grid := world.NewGrid("w")
	player := world.NewPlayer("steve", world.Location{})
	grid.Join(player)
	engine := NewEngine(grid, Options{Clock: clock})

	ability := mustInstantiate(t, r, "count", `{"cooldown": 3}`)
	act := Activation{Actor: player, Trigger: TriggerInteract}

	if engine.IsOnCooldown(player.ID(), ability) || engine.RemainingCooldown(player.ID(), ability) != 0 {
		t.Fatalf("expected no cooldown before first use")
	}
	engine.Execute(context.Background(), act, []Ability{ability})
	if got := engine.RemainingCooldown(player.ID(), ability); got != 3*time.Second {
		t.Fatalf("expected full cooldown right after use, got %s", got)
	}

	previous := 3 * time.Second
	for i := 0; i < 8; i++ {
		clock.Advance(500 * time.Millisecond)
		got := engine.RemainingCooldown(player.ID(), ability)
		if got > previous || got < 0 {
			t.Fatalf("expected monotonic decrease, got %s after %s", got, previous)
		}
		previous = got
	}
	if previous != 0 || engine.IsOnCooldown(player.ID(), ability) {
		t.Fatalf("expected cooldown to have expired, got %s", previous)
	}

	clock.Advance(-10 * time.Second)
	if got := engine.RemainingCooldown(player.ID(), ability); got > 3*time.Second {
		t.Fatalf("expected remaining never to exceed the cooldown, got %s", got)
	}
}

func TestCooldownSkipsRepeatUse(t *testing.T) {
	calls := 0
	r := countingRegistry(t, &calls)
	clock := newClock()
	player := world.NewPlayer("steve", world.Location{})
	engine := NewEngine(world.NewGrid("w"), Options{Clock: clock})

	ability := mustInstantiate(t, r, "count", `{"cooldown": 1}`)
	act := Activation{Actor: player, Trigger: TriggerInteract}
	engine.Execute(context.Background(), act, []Ability{ability})
	results := engine.Execute(context.Background(), act, []Ability{ability})
	if results[0].Status != StatusOnCooldown || results[0].Remaining != time.Second {
		t.Fatalf("expected on-cooldown skip, got %+v", results[0])
	}
	clock.Advance(time.Second)
	engine.Execute(context.Background(), act, []Ability{ability})
	if calls != 2 {
		t.Fatalf("expected two executions, got %d", calls)
	}
}

func TestZeroCooldownIsNeverTracked(t *testing.T) {
	calls := 0
	r := countingRegistry(t, &calls)
	player := world.NewPlayer("steve", world.Location{})
	engine := NewEngine(world.NewGrid("w"), Options{Clock: newClock()})

	ability := mustInstantiate(t, r, "count", `{"cooldown": 0}`)
	negative := mustInstantiate(t, r, "count", `{"cooldown": -4}`)
	act := Activation{Actor: player, Trigger: TriggerInteract}
	for i := 0; i < 3; i++ {
		engine.Execute(context.Background(), act, []Ability{ability, negative})
	}
	if calls != 6 {
		t.Fatalf("expected every use to run, got %d", calls)
	}
	if engine.Tracked() != 0 {
		t.Fatalf("expected no cooldown state, got %d actors", engine.Tracked())
	}
	if engine.RemainingCooldown(player.ID(), negative) != 0 {
		t.Fatalf("expected zero remaining for negative cooldown")
	}
}

func TestTriggerFilter(t *testing.T) {
	calls := 0
	r := countingRegistry(t, &calls)
	player := world.NewPlayer("steve", world.Location{})
	engine := NewEngine(world.NewGrid("w"), Options{Clock: newClock()})

	ignite, err := r.Instantiate("count", section(t, `{"triggers": "ignite"}`))
	if err != nil {
		t.Fatalf("instantiate failed: %v", err)
	}
	results := engine.Execute(context.Background(), Activation{Actor: player, Trigger: TriggerInteract}, []Ability{ignite})
	if results[0].Status != StatusSkippedTrigger || calls != 0 {
		t.Fatalf("expected trigger skip, got %+v (calls=%d)", results[0], calls)
	}
	if got := engine.Execute(context.Background(), Activation{Trigger: TriggerInteract}, []Ability{ignite}); got != nil {
		t.Fatalf("expected nil actor to produce no results, got %+v", got)
	}
}
