// Package identity embeds and reads the single string tag that ties a
// manufactured item back to the template it was built from.
package identity

import "github.com/WolfTailVale/ItemCreator/internal/items"

// Namespace is the metadata namespace owned by this plugin.
const Namespace = "itemcreator"

// KeyName is the metadata key holding the template id.
const KeyName = "cid"

// DefaultKey is the namespaced key used for identity tags.
var DefaultKey = items.NewKey(Namespace, KeyName)

// Tagger writes and reads identity tags under one fixed key.
type Tagger struct {
	key items.Key
}

// NewTagger returns a tagger using DefaultKey.
func NewTagger() Tagger {
	return Tagger{key: DefaultKey}
}

// NewTaggerWithKey returns a tagger writing under key.
func NewTaggerWithKey(key items.Key) Tagger {
	return Tagger{key: key}
}

// Key reports the key the tagger uses.
func (t Tagger) Key() items.Key {
	if t.key == (items.Key{}) {
		return DefaultKey
	}
	return t.key
}

// Tag stores id on the stack, allocating its metadata store when needed. It
// reports false when the stack cannot carry metadata (nil or air).
func (t Tagger) Tag(stack *items.Stack, id string) bool {
	meta := stack.EnsureMeta()
	if meta == nil {
		return false
	}
	meta.Set(t.Key(), id)
	return true
}

// ReadID returns the tagged template id. Stacks without a metadata store or
// without the tag yield false.
func (t Tagger) ReadID(stack *items.Stack) (string, bool) {
	if stack == nil || stack.Meta == nil {
		return "", false
	}
	return stack.Meta.Get(t.Key())
}

// Strip removes the identity tag if present.
func (t Tagger) Strip(stack *items.Stack) {
	if stack == nil {
		return
	}
	stack.Meta.Remove(t.Key())
}
