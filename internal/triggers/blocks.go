package triggers

import (
	"context"

	"github.com/WolfTailVale/ItemCreator/internal/items"
	"github.com/WolfTailVale/ItemCreator/internal/world"
	"github.com/WolfTailVale/ItemCreator/logging"
	loggingtriggers "github.com/WolfTailVale/ItemCreator/logging/triggers"
)

// Identifier reads identity tags and manufactures instances.
type Identifier interface {
	ReadID(stack *items.Stack) (string, bool)
	Create(id string) (*items.Stack, bool)
}

type blockKey struct {
	world string
	pos   world.BlockPos
}

// BlockTracker remembers which placed blocks came from custom items so that
// breaking one yields the custom item again.
type BlockTracker struct {
	items     Identifier
	publisher logging.Publisher
	tick      func() uint64
	blocks    map[blockKey]string
}

func NewBlockTracker(identifier Identifier, opts Options) *BlockTracker {
	tick := opts.Tick
	if tick == nil {
		tick = func() uint64 { return 0 }
	}
	return &BlockTracker{
		items:     identifier,
		publisher: logging.OrNop(opts.Publisher),
		tick:      tick,
		blocks:    make(map[blockKey]string),
	}
}

// Placed records pos when stack carries an identity tag. It reports whether
// the block is now tracked.
func (t *BlockTracker) Placed(ctx context.Context, actor logging.EntityRef, worldName string, pos world.BlockPos, stack *items.Stack) bool {
	id, ok := t.items.ReadID(stack)
	if !ok {
		return false
	}
	t.blocks[blockKey{worldName, pos}] = id
	loggingtriggers.BlockPlaced(ctx, t.publisher, t.tick(), actor, blockPayload(id, worldName, pos, false), nil)
	return true
}

// Broken forgets pos and returns the custom item to drop in place of the base
// block. It yields false for untracked blocks and for templates that no
// longer exist, in which case the base block drops as usual.
func (t *BlockTracker) Broken(ctx context.Context, actor logging.EntityRef, worldName string, pos world.BlockPos) (*items.Stack, bool) {
	key := blockKey{worldName, pos}
	id, ok := t.blocks[key]
	if !ok {
		return nil, false
	}
	delete(t.blocks, key)
	stack, ok := t.items.Create(id)
	loggingtriggers.BlockDropped(ctx, t.publisher, t.tick(), actor, blockPayload(id, worldName, pos, !ok), nil)
	return stack, ok
}

// At returns the template id tracked at pos.
func (t *BlockTracker) At(worldName string, pos world.BlockPos) (string, bool) {
	id, ok := t.blocks[blockKey{worldName, pos}]
	return id, ok
}

func (t *BlockTracker) Len() int {
	return len(t.blocks)
}

func blockPayload(id, worldName string, pos world.BlockPos, missing bool) loggingtriggers.BlockPayload {
	return loggingtriggers.BlockPayload{Item: id, World: worldName, X: pos.X, Y: pos.Y, Z: pos.Z, Missing: missing}
}
