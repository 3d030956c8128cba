package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/WolfTailVale/ItemCreator/internal/factory"
	"github.com/WolfTailVale/ItemCreator/internal/items"
	"github.com/WolfTailVale/ItemCreator/internal/loop"
	"github.com/WolfTailVale/ItemCreator/internal/recipes"
	"github.com/WolfTailVale/ItemCreator/internal/triggers"
	"github.com/WolfTailVale/ItemCreator/internal/world"
)

var (
	ErrInvalidCommand = errors.New("server: invalid command")
	ErrNotPlaceable   = errors.New("server: held item is not a block")
	ErrOccupied       = errors.New("server: block is occupied")
	ErrNothingThere   = errors.New("server: no block there")
)

// Apply runs one tick's worth of commands, then pushes updates to
// subscribers. It implements loop.Core.
func (h *Hub) Apply(tick uint64, cmds []loop.Command) {
	h.tick.Store(tick)
	ctx := context.Background()

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, cmd := range cmds {
		p, err := h.commandActor(cmd)
		if err != nil {
			h.logger.Printf("[hub] dropping %s command: %v", cmd.Type, err)
			continue
		}
		if err := h.applyLocked(ctx, p, cmd); err != nil {
			p.SendMessage(err.Error())
		}
		h.dirty[p.ID()] = struct{}{}
	}
	h.flushLocked(tick)
}

func (h *Hub) commandActor(cmd loop.Command) (*world.Player, error) {
	id, err := uuid.Parse(cmd.ActorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, cmd.ActorID)
	}
	p, ok := h.world.Player(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, cmd.ActorID)
	}
	return p, nil
}

func (h *Hub) applyLocked(ctx context.Context, p *world.Player, cmd loop.Command) error {
	switch cmd.Type {
	case loop.CommandUse:
		if cmd.Use == nil {
			return ErrInvalidCommand
		}
		h.useLocked(ctx, p, *cmd.Use)
		return nil
	case loop.CommandGive:
		if cmd.Give == nil {
			return ErrInvalidCommand
		}
		_, err := h.giveLocked(p, cmd.Give.Item, cmd.Give.Amount)
		return err
	case loop.CommandLook:
		if cmd.Look == nil {
			return ErrInvalidCommand
		}
		p.Look(cmd.Look.Yaw, cmd.Look.Pitch)
		return nil
	case loop.CommandMove:
		if cmd.Move == nil {
			return ErrInvalidCommand
		}
		loc := p.Location()
		loc.X, loc.Y, loc.Z = cmd.Move.X, cmd.Move.Y, cmd.Move.Z
		p.TeleportTo(loc)
		return nil
	case loop.CommandSelect:
		if cmd.Select == nil || !p.Inventory().Select(cmd.Select.Slot) {
			return ErrInvalidCommand
		}
		return nil
	case loop.CommandPlace:
		if cmd.Block == nil {
			return ErrInvalidCommand
		}
		return h.placeLocked(ctx, p, blockPos(*cmd.Block))
	case loop.CommandBreak:
		if cmd.Block == nil {
			return ErrInvalidCommand
		}
		_, err := h.breakLocked(ctx, p, blockPos(*cmd.Block))
		return err
	case loop.CommandCraft:
		if cmd.Craft == nil {
			return ErrInvalidCommand
		}
		_, err := h.craftLocked(p, cmd.Craft.Slots)
		return err
	default:
		return fmt.Errorf("%w: %s", ErrInvalidCommand, cmd.Type)
	}
}

func blockPos(ref loop.BlockRef) world.BlockPos {
	return world.BlockPos{X: ref.X, Y: ref.Y, Z: ref.Z}
}

// Use right-clicks with the main or off hand.
func (h *Hub) Use(ctx context.Context, name string, use loop.UseCommand) (triggers.InteractResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := h.playerLocked(name)
	if err != nil {
		return triggers.InteractResult{}, err
	}
	return h.useLocked(ctx, p, use), nil
}

func (h *Hub) useLocked(ctx context.Context, p *world.Player, use loop.UseCommand) triggers.InteractResult {
	in := triggers.Interaction{Actor: p, Hand: triggers.MainHand, World: p.Location().World}
	if use.OffHand {
		in.Hand = triggers.OffHand
	}
	if use.Block != nil {
		pos := blockPos(*use.Block)
		in.Block = &pos
	}
	return h.dispatcher.Interact(ctx, in)
}

// Give hands a player amount units of spec, which may be a template id,
// "custom:<id>" or a base material. It returns the units that did not fit.
func (h *Hub) Give(name, spec string, amount int) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := h.playerLocked(name)
	if err != nil {
		return 0, err
	}
	return h.giveLocked(p, spec, amount)
}

func (h *Hub) giveLocked(p *world.Player, spec string, amount int) (int, error) {
	stack, err := h.resolveSpec(spec)
	if err != nil {
		return 0, err
	}
	leftover := p.Inventory().Add(stack.WithAmount(max(1, amount)))
	if leftover > 0 {
		p.SendMessage(fmt.Sprintf("Inventory full, %d %s did not fit", leftover, stack.Name()))
	}
	return leftover, nil
}

// Stack resolves an item specification the way Give does.
func (h *Hub) Stack(spec string) (*items.Stack, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resolveSpec(spec)
}

func (h *Hub) resolveSpec(spec string) (*items.Stack, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("%w: empty", ErrUnknownItem)
	}
	if _, ok := h.templates.Get(spec); ok {
		spec = factory.CustomPrefix + spec
	}
	if stack, ok := h.factory.Spec(spec); ok {
		return stack, nil
	}
	id := strings.TrimPrefix(spec, factory.CustomPrefix)
	if hint := h.templates.Suggest(id); hint != "" {
		return nil, fmt.Errorf("%w: %s (did you mean %s?)", ErrUnknownItem, spec, hint)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownItem, spec)
}

// Place puts the held block at pos. Custom items keep their identity so
// breaking the block returns the same item.
func (h *Hub) Place(ctx context.Context, name string, pos world.BlockPos) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := h.playerLocked(name)
	if err != nil {
		return err
	}
	return h.placeLocked(ctx, p, pos)
}

func (h *Hub) placeLocked(ctx context.Context, p *world.Player, pos world.BlockPos) error {
	held := p.Inventory().MainHand()
	if held.Empty() || !held.Material.Block {
		return ErrNotPlaceable
	}
	if !h.world.Block(pos).IsAir() {
		return ErrOccupied
	}
	h.world.SetBlock(pos, held.Material)
	h.blocks.Placed(ctx, playerRef(p), h.world.Name(), pos, held)
	if !p.Creative() {
		world.ConsumeOne(p.Inventory(), held)
	}
	return nil
}

// Break clears pos and gives the player what it drops.
func (h *Hub) Break(ctx context.Context, name string, pos world.BlockPos) (*items.Stack, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := h.playerLocked(name)
	if err != nil {
		return nil, err
	}
	return h.breakLocked(ctx, p, pos)
}

func (h *Hub) breakLocked(ctx context.Context, p *world.Player, pos world.BlockPos) (*items.Stack, error) {
	base := h.world.Block(pos)
	if base.IsAir() {
		return nil, ErrNothingThere
	}
	h.world.SetBlock(pos, items.MustMaterial(items.MaterialAir))
	drop, ok := h.blocks.Broken(ctx, playerRef(p), h.world.Name(), pos)
	if !ok {
		drop = items.NewStack(base, 1)
	}
	if !p.Creative() {
		p.Inventory().Add(drop)
	}
	return drop, nil
}

// Craft lays inventory slots into a crafting grid and crafts once. Negative
// slots leave the cell empty.
func (h *Hub) Craft(name string, slots [recipes.GridSize]int) (*items.Stack, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := h.playerLocked(name)
	if err != nil {
		return nil, err
	}
	return h.craftLocked(p, slots)
}

func (h *Hub) craftLocked(p *world.Player, slots [recipes.GridSize]int) (*items.Stack, error) {
	inv := p.Inventory()
	var grid recipes.Grid
	used := make(map[int]bool, len(slots))
	for i, slot := range slots {
		if slot < 0 {
			continue
		}
		if slot >= inv.Size() || used[slot] {
			return nil, fmt.Errorf("%w: slot %d", ErrInvalidCommand, slot)
		}
		used[slot] = true
		grid[i] = inv.Slot(slot)
	}
	recipe, ok := h.book.Match(grid)
	if !ok {
		return nil, ErrNoRecipe
	}
	for _, stack := range grid {
		if !stack.Empty() {
			world.ConsumeOne(inv, stack)
		}
	}
	result := recipe.Result()
	if leftover := inv.Add(result); leftover > 0 {
		p.SendMessage(fmt.Sprintf("Inventory full, %d %s did not fit", leftover, result.Name()))
	}
	if h.metrics != nil {
		h.metrics.Add("hub_crafts_total", 1)
	}
	return result, nil
}
