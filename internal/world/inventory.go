package world

import (
	"github.com/WolfTailVale/ItemCreator/internal/items"
)

// MaxStackSize bounds how many units one slot holds.
const MaxStackSize = items.MaxStackSize

// DefaultInventorySize matches a player's main inventory.
const DefaultInventorySize = 36

// Inventory is an ordered set of slots plus an off-hand slot. The selected
// slot is the main hand.
type Inventory struct {
	slots   []*items.Stack
	held    int
	offhand *items.Stack
}

func NewInventory(size int) *Inventory {
	if size <= 0 {
		size = DefaultInventorySize
	}
	return &Inventory{slots: make([]*items.Stack, size)}
}

func (inv *Inventory) Size() int {
	return len(inv.slots)
}

func (inv *Inventory) Slot(i int) *items.Stack {
	if i < 0 || i >= len(inv.slots) {
		return nil
	}
	return inv.slots[i]
}

func (inv *Inventory) SetSlot(i int, stack *items.Stack) {
	if i < 0 || i >= len(inv.slots) {
		return
	}
	if stack.Empty() {
		stack = nil
	}
	inv.slots[i] = stack
}

// Select makes slot i the main hand. Out of range indexes are ignored.
func (inv *Inventory) Select(i int) bool {
	if i < 0 || i >= len(inv.slots) {
		return false
	}
	inv.held = i
	return true
}

func (inv *Inventory) Selected() int {
	return inv.held
}

func (inv *Inventory) MainHand() *items.Stack {
	return inv.slots[inv.held]
}

func (inv *Inventory) OffHand() *items.Stack {
	return inv.offhand
}

func (inv *Inventory) SetOffHand(stack *items.Stack) {
	if stack.Empty() {
		stack = nil
	}
	inv.offhand = stack
}

// Add merges stack into similar slots first, then fills empty ones. It returns
// how many units did not fit.
func (inv *Inventory) Add(stack *items.Stack) int {
	if stack.Empty() {
		return 0
	}
	remaining := stack.Amount
	for _, slot := range inv.slots {
		if remaining == 0 {
			break
		}
		if slot == nil || slot.Amount >= MaxStackSize || !items.Similar(slot, stack) {
			continue
		}
		moved := min(MaxStackSize-slot.Amount, remaining)
		slot.Amount += moved
		remaining -= moved
	}
	for i := range inv.slots {
		if remaining == 0 {
			break
		}
		if inv.slots[i] != nil {
			continue
		}
		placed := min(MaxStackSize, remaining)
		inv.slots[i] = stack.WithAmount(placed)
		remaining -= placed
	}
	return remaining
}

// Remove drops the slot holding exactly this stack, including the off-hand.
func (inv *Inventory) Remove(stack *items.Stack) bool {
	if stack == nil {
		return false
	}
	if inv.offhand == stack {
		inv.offhand = nil
		return true
	}
	for i, slot := range inv.slots {
		if slot == stack {
			inv.slots[i] = nil
			return true
		}
	}
	return false
}

// Count totals the units similar to stack.
func (inv *Inventory) Count(stack *items.Stack) int {
	total := 0
	for _, slot := range inv.slots {
		if slot != nil && items.Similar(slot, stack) {
			total += slot.Amount
		}
	}
	if inv.offhand != nil && items.Similar(inv.offhand, stack) {
		total += inv.offhand.Amount
	}
	return total
}

// Contents lists the occupied slots in order.
func (inv *Inventory) Contents() []*items.Stack {
	out := make([]*items.Stack, 0, len(inv.slots))
	for _, slot := range inv.slots {
		if slot != nil {
			out = append(out, slot)
		}
	}
	return out
}

// ConsumeOne takes one unit from stack, removing it from the inventory when it
// held the last unit.
func ConsumeOne(inv *Inventory, stack *items.Stack) {
	if stack == nil {
		return
	}
	if stack.Amount > 1 {
		stack.Amount--
		return
	}
	stack.Amount = 0
	if inv != nil {
		inv.Remove(stack)
	}
}
