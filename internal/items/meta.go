package items

import (
	"fmt"
	"sort"
	"strings"
)

// Key names a value in an item's metadata store.
type Key struct {
	Namespace string
	Name      string
}

// NewKey lowercases both parts so keys compare the same way the client stores them.
func NewKey(namespace, name string) Key {
	return Key{
		Namespace: strings.ToLower(strings.TrimSpace(namespace)),
		Name:      strings.ToLower(strings.TrimSpace(name)),
	}
}

// ParseKey splits "namespace:name". A bare name is placed in the minecraft namespace.
func ParseKey(raw string) (Key, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Key{}, fmt.Errorf("items: empty key")
	}
	namespace, name, found := strings.Cut(raw, ":")
	if !found {
		return NewKey("minecraft", raw), nil
	}
	if namespace == "" || name == "" {
		return Key{}, fmt.Errorf("items: malformed key %q", raw)
	}
	return NewKey(namespace, name), nil
}

func (k Key) String() string {
	return k.Namespace + ":" + k.Name
}

// Meta is the side-channel metadata attached to a manufactured item: display
// attributes plus a namespaced string store.
type Meta struct {
	DisplayName     string
	Lore            []string
	CustomModelData *int
	HideAttributes  bool

	data map[Key]string
}

// Set stores value under key.
func (m *Meta) Set(key Key, value string) {
	if m.data == nil {
		m.data = make(map[Key]string)
	}
	m.data[key] = value
}

// Get returns the value stored under key.
func (m *Meta) Get(key Key) (string, bool) {
	if m == nil || m.data == nil {
		return "", false
	}
	value, ok := m.data[key]
	return value, ok
}

// Remove deletes key from the store.
func (m *Meta) Remove(key Key) {
	if m == nil || m.data == nil {
		return
	}
	delete(m.data, key)
}

// Keys lists stored keys in sorted order.
func (m *Meta) Keys() []Key {
	if m == nil || len(m.data) == 0 {
		return nil
	}
	keys := make([]Key, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Clone returns a deep copy.
func (m *Meta) Clone() *Meta {
	if m == nil {
		return nil
	}
	clone := &Meta{
		DisplayName:    m.DisplayName,
		HideAttributes: m.HideAttributes,
	}
	if len(m.Lore) > 0 {
		clone.Lore = append([]string(nil), m.Lore...)
	}
	if m.CustomModelData != nil {
		value := *m.CustomModelData
		clone.CustomModelData = &value
	}
	if len(m.data) > 0 {
		clone.data = make(map[Key]string, len(m.data))
		for k, v := range m.data {
			clone.data[k] = v
		}
	}
	return clone
}

// Equal compares two metadata stores. A nil store equals an empty one.
func (m *Meta) Equal(other *Meta) bool {
	if m.isEmpty() && other.isEmpty() {
		return true
	}
	if m == nil || other == nil {
		return false
	}
	if m.DisplayName != other.DisplayName || m.HideAttributes != other.HideAttributes {
		return false
	}
	if len(m.Lore) != len(other.Lore) {
		return false
	}
	for i := range m.Lore {
		if m.Lore[i] != other.Lore[i] {
			return false
		}
	}
	if (m.CustomModelData == nil) != (other.CustomModelData == nil) {
		return false
	}
	if m.CustomModelData != nil && *m.CustomModelData != *other.CustomModelData {
		return false
	}
	if len(m.data) != len(other.data) {
		return false
	}
	for k, v := range m.data {
		if ov, ok := other.data[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func (m *Meta) isEmpty() bool {
	if m == nil {
		return true
	}
	return m.DisplayName == "" && len(m.Lore) == 0 && m.CustomModelData == nil && !m.HideAttributes && len(m.data) == 0
}
