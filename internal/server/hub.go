// Package server owns every piece of engine state (templates, cooldowns,
// bundles, the recipe book and the world) behind one lock, so the tick loop
// and HTTP handlers mutate it one call at a time.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/WolfTailVale/ItemCreator/internal/abilities"
	"github.com/WolfTailVale/ItemCreator/internal/catalog"
	"github.com/WolfTailVale/ItemCreator/internal/config"
	"github.com/WolfTailVale/ItemCreator/internal/factory"
	"github.com/WolfTailVale/ItemCreator/internal/items/identity"
	"github.com/WolfTailVale/ItemCreator/internal/recipes"
	"github.com/WolfTailVale/ItemCreator/internal/telemetry"
	"github.com/WolfTailVale/ItemCreator/internal/triggers"
	"github.com/WolfTailVale/ItemCreator/internal/world"
	"github.com/WolfTailVale/ItemCreator/logging"
	"github.com/WolfTailVale/ItemCreator/logging/lifecycle"
)

var (
	ErrUnknownPlayer = errors.New("server: unknown player")
	ErrUnknownItem   = errors.New("server: unknown item")
	ErrNoRecipe      = errors.New("server: no recipe matches")
)

const (
	DefaultWorldName = "world"
	// outboxSize bounds updates queued for a slow subscriber.
	outboxSize = 32
)

// DefaultSpawn is where new players appear.
var DefaultSpawn = world.Location{World: DefaultWorldName, X: 0.5, Y: 64, Z: 0.5}

// Config wires a Hub.
type Config struct {
	Store     config.Store
	Publisher logging.Publisher
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Clock     abilities.Clock
	Spawn     *world.Location
	// Abilities lets callers add kinds beyond the built-ins.
	Abilities *abilities.Registry
}

// Hub is the single owner of engine state.
type Hub struct {
	mu sync.Mutex

	store     config.Store
	publisher logging.Publisher
	logger    telemetry.Logger
	metrics   telemetry.Metrics
	spawn     world.Location
	tick      atomic.Uint64

	world      *world.Grid
	kinds      *abilities.Registry
	templates  *catalog.Registry
	factory    *factory.Factory
	engine     *abilities.Engine
	book       *recipes.MemoryBook
	registrar  *recipes.Registrar
	author     *recipes.Author
	dispatcher *triggers.Dispatcher
	blocks     *triggers.BlockTracker

	subscribers map[world.ActorID]*Subscriber
	dirty       map[world.ActorID]struct{}
	lastReload  ReloadReport
}

func NewHub(cfg Config) *Hub {
	h := &Hub{
		store:       cfg.Store,
		publisher:   logging.OrNop(cfg.Publisher),
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		spawn:       DefaultSpawn,
		subscribers: make(map[world.ActorID]*Subscriber),
		dirty:       make(map[world.ActorID]struct{}),
	}
	if h.store == nil {
		h.store, _ = config.NewMemoryStore(nil)
	}
	if h.logger == nil {
		h.logger = telemetry.LoggerFunc(nil)
	}
	if cfg.Spawn != nil {
		h.spawn = *cfg.Spawn
	}
	h.kinds = cfg.Abilities
	if h.kinds == nil {
		h.kinds = abilities.NewRegistry()
	}

	h.world = world.NewGrid(h.spawn.World)
	h.templates = catalog.NewRegistry(h.kinds, catalog.Options{Publisher: h.publisher, Tick: h.Tick})
	h.factory = factory.New(h.templates, identity.NewTagger())
	h.engine = abilities.NewEngine(h.world, abilities.Options{Clock: cfg.Clock, Publisher: h.publisher, Tick: h.Tick})
	h.book = recipes.NewMemoryBook()
	h.registrar = recipes.NewRegistrar(h.book, h.factory, recipes.Options{Publisher: h.publisher, Tick: h.Tick})
	h.author = recipes.NewAuthor(h.store, h.templates, h.registrar, h.factory.SpecOf, recipes.Options{Publisher: h.publisher, Tick: h.Tick})
	h.dispatcher = triggers.NewDispatcher(h.factory, h.registrar, h.engine, h.world, triggers.Options{Publisher: h.publisher, Tick: h.Tick})
	h.blocks = triggers.NewBlockTracker(h.factory, triggers.Options{Publisher: h.publisher, Tick: h.Tick})
	return h
}

// Tick reports the last tick applied by the loop.
func (h *Hub) Tick() uint64 {
	return h.tick.Load()
}

// World exposes the block grid for seeding terrain.
func (h *Hub) World() *world.Grid {
	return h.world
}

// ReloadReport summarises one Reload.
type ReloadReport struct {
	Templates int      `json:"templates"`
	Abilities int      `json:"abilities"`
	Dropped   int      `json:"dropped"`
	Bundles   int      `json:"bundles"`
	Recipes   int      `json:"recipes"`
	Skipped   []string `json:"skipped,omitempty"`
	Removed   int      `json:"removed"`
}

// Reload re-reads the configuration store and rebuilds templates and
// crafting entries, in that order: load templates, unregister every entry
// installed earlier, register again. A store error leaves everything as it was.
func (h *Hub) Reload(ctx context.Context) (ReloadReport, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	root, err := h.store.Load()
	if err != nil {
		err = fmt.Errorf("server: reload: %w", err)
		lifecycle.Reloaded(ctx, h.publisher, h.Tick(), logging.ServerRef(), lifecycle.ReloadedPayload{Error: err.Error()}, nil)
		return ReloadReport{}, err
	}

	loaded := h.templates.Load(ctx, root)
	removed := h.registrar.UnregisterAll(ctx)
	registered := h.registrar.RegisterAll(ctx, root)

	report := ReloadReport{
		Templates: loaded.Templates,
		Abilities: loaded.Abilities,
		Dropped:   len(loaded.Dropped),
		Bundles:   registered.Bundles,
		Recipes:   registered.Recipes,
		Skipped:   registered.Skipped,
		Removed:   removed,
	}
	h.lastReload = report
	if h.metrics != nil {
		h.metrics.Add("hub_reloads_total", 1)
	}
	lifecycle.Reloaded(ctx, h.publisher, h.Tick(), logging.ServerRef(), lifecycle.ReloadedPayload{
		Templates: report.Templates,
		Bundles:   report.Bundles,
		Recipes:   report.Recipes,
	}, nil)
	h.logger.Printf("[reload] templates=%d abilities=%d dropped=%d bundles=%d recipes=%d skipped=%d",
		report.Templates, report.Abilities, report.Dropped, report.Bundles, report.Recipes, len(report.Skipped))
	return report, nil
}

// Join adds a player, or returns the existing one with that name.
func (h *Hub) Join(ctx context.Context, name string) *world.Player {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.joinLocked(ctx, name)
}

func (h *Hub) joinLocked(ctx context.Context, name string) *world.Player {
	if p, ok := h.world.PlayerByName(name); ok {
		return p
	}
	p := world.NewPlayer(name, h.spawn)
	h.world.Join(p)
	lifecycle.PlayerJoined(ctx, h.publisher, h.Tick(), playerRef(p), lifecycle.PlayerJoinedPayload{
		Name:   name,
		SpawnX: h.spawn.X,
		SpawnY: h.spawn.Y,
		SpawnZ: h.spawn.Z,
	}, nil)
	return p
}

// Leave removes a player. Cooldowns are kept, so rejoining cannot reset them.
func (h *Hub) Leave(ctx context.Context, name, reason string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.world.PlayerByName(name)
	if !ok {
		return false
	}
	h.world.Leave(p.ID())
	h.engine.Cleanup()
	if sub, ok := h.subscribers[p.ID()]; ok {
		delete(h.subscribers, p.ID())
		sub.close()
	}
	delete(h.dirty, p.ID())
	lifecycle.PlayerDisconnected(ctx, h.publisher, h.Tick(), playerRef(p), lifecycle.PlayerDisconnectedPayload{Reason: reason}, nil)
	return true
}

// Author saves a new recipe and installs it. See recipes.Author.
func (h *Hub) Author(ctx context.Context, req recipes.AuthorRequest) recipes.AuthorResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.author.Create(ctx, req)
}

func (h *Hub) playerLocked(name string) (*world.Player, error) {
	p, ok := h.world.PlayerByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, name)
	}
	return p, nil
}

func playerRef(p *world.Player) logging.EntityRef {
	return logging.PlayerRef(p.ID().String())
}
