package items

import (
	"fmt"
	"strings"
)

// MaxStackSize bounds how many units one stack holds.
const MaxStackSize = 64

// Stack is a concrete item instance: a material, an amount, and an optional
// metadata store. Plain base-game stacks carry no Meta until one is requested.
type Stack struct {
	Material Material
	Amount   int
	Meta     *Meta
}

// NewStack builds a stack of amount units. Non-positive amounts become one.
func NewStack(material Material, amount int) *Stack {
	if amount < 1 {
		amount = 1
	}
	return &Stack{Material: material, Amount: amount}
}

// EnsureMeta returns the stack's metadata store, allocating it on first use.
// Air never carries metadata and yields nil.
func (s *Stack) EnsureMeta() *Meta {
	if s == nil || s.Material.IsAir() {
		return nil
	}
	if s.Meta == nil {
		s.Meta = &Meta{}
	}
	return s.Meta
}

// Empty reports whether the stack represents nothing.
func (s *Stack) Empty() bool {
	return s == nil || s.Amount <= 0 || s.Material.IsAir()
}

// Clone returns a deep copy.
func (s *Stack) Clone() *Stack {
	if s == nil {
		return nil
	}
	return &Stack{Material: s.Material, Amount: s.Amount, Meta: s.Meta.Clone()}
}

// WithAmount returns a copy holding amount units.
func (s *Stack) WithAmount(amount int) *Stack {
	clone := s.Clone()
	if clone != nil {
		clone.Amount = amount
	}
	return clone
}

// Name returns the display name shown to players.
func (s *Stack) Name() string {
	if s == nil {
		return ""
	}
	if s.Meta != nil && s.Meta.DisplayName != "" {
		return s.Meta.DisplayName
	}
	return s.Material.DisplayName()
}

func (s *Stack) String() string {
	if s.Empty() {
		return "empty"
	}
	return fmt.Sprintf("%dx %s", s.Amount, strings.ToLower(s.Material.Name))
}

// Similar reports whether two stacks are the same item ignoring amount.
func Similar(a, b *Stack) bool {
	if a.Empty() || b.Empty() {
		return a.Empty() && b.Empty()
	}
	if a.Material.Name != b.Material.Name {
		return false
	}
	return a.Meta.Equal(b.Meta)
}
