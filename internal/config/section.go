// Package config holds the parsed configuration tree consumed by the item,
// ability, and recipe registries. Objects keep their on-disk key order so
// ability lists run in the order they were written.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/iancoleman/orderedmap"
)

// ErrNotSection is returned when a path resolves to a scalar instead of an object.
var ErrNotSection = errors.New("config: value is not a section")

// Section is one object node of the configuration tree.
type Section struct {
	name   string
	values *orderedmap.OrderedMap
}

// NewSection returns an empty named section.
func NewSection(name string) *Section {
	return &Section{name: name, values: orderedmap.New()}
}

// Decode parses a JSON document into a root section.
func Decode(data []byte) (*Section, error) {
	root := NewSection("")
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return root, nil
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("config: document must be a JSON object")
	}
	if err := json.Unmarshal(trimmed, root.values); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return root, nil
}

// MarshalJSON encodes the section preserving key order.
func (s *Section) MarshalJSON() ([]byte, error) {
	if s == nil || s.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.values)
}

// Name reports the key this section was found under.
func (s *Section) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Keys lists direct child keys in document order.
func (s *Section) Keys() []string {
	if s == nil || s.values == nil {
		return nil
	}
	return append([]string(nil), s.values.Keys()...)
}

// Has reports whether path resolves to a value.
func (s *Section) Has(path string) bool {
	_, ok := s.Get(path)
	return ok
}

// Get resolves a dotted path.
func (s *Section) Get(path string) (any, bool) {
	if s == nil || s.values == nil {
		return nil, false
	}
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, false
	}
	current := s.values
	for i, part := range parts {
		value, ok := current.Get(part)
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return value, true
		}
		next, ok := asMap(value)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

// Section returns the object found at path.
func (s *Section) Section(path string) (*Section, bool) {
	value, ok := s.Get(path)
	if !ok {
		return nil, false
	}
	m, ok := asMap(value)
	if !ok {
		return nil, false
	}
	parts := splitPath(path)
	return &Section{name: parts[len(parts)-1], values: m}, true
}

// String returns the string at path or def. Numbers and booleans are
// formatted so loosely typed documents still read.
func (s *Section) String(path, def string) string {
	value, ok := s.Get(path)
	if !ok || value == nil {
		return def
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return def
	}
}

// Number returns the numeric value at path.
func (s *Section) Number(path string) (float64, bool) {
	value, ok := s.Get(path)
	if !ok {
		return 0, false
	}
	return toFloat(value)
}

// Float returns the number at path or def.
func (s *Section) Float(path string, def float64) float64 {
	if v, ok := s.Number(path); ok {
		return v
	}
	return def
}

// IsInt reports whether path holds an integral number.
func (s *Section) IsInt(path string) bool {
	v, ok := s.Number(path)
	return ok && v == math.Trunc(v) && !math.IsInf(v, 0)
}

// Int returns the integral number at path or def.
func (s *Section) Int(path string, def int) int {
	if !s.IsInt(path) {
		return def
	}
	v, _ := s.Number(path)
	return int(v)
}

// Bool returns the boolean at path or def.
func (s *Section) Bool(path string, def bool) bool {
	value, ok := s.Get(path)
	if !ok {
		return def
	}
	if b, ok := value.(bool); ok {
		return b
	}
	return def
}

// StringList returns the list at path. A lone string becomes a one-element list.
func (s *Section) StringList(path string) []string {
	value, ok := s.Get(path)
	if !ok || value == nil {
		return nil
	}
	switch v := value.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			switch e := elem.(type) {
			case string:
				out = append(out, e)
			case float64, bool:
				out = append(out, fmt.Sprint(e))
			}
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return nil
	}
}

// Values returns the direct children as plain Go values. Nested objects are
// returned as *Section.
func (s *Section) Values() map[string]any {
	if s == nil || s.values == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(s.values.Keys()))
	for _, key := range s.values.Keys() {
		value, _ := s.values.Get(key)
		if m, ok := asMap(value); ok {
			out[key] = &Section{name: key, values: m}
			continue
		}
		out[key] = value
	}
	return out
}

// Set stores value at path, creating intermediate sections.
func (s *Section) Set(path string, value any) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return fmt.Errorf("config: empty path")
	}
	parent, err := s.ensurePath(parts[:len(parts)-1])
	if err != nil {
		return err
	}
	switch v := value.(type) {
	case *Section:
		if v == nil {
			parent.Delete(parts[len(parts)-1])
			return nil
		}
		parent.Set(parts[len(parts)-1], v.values)
	case []string:
		list := make([]any, len(v))
		for i := range v {
			list[i] = v[i]
		}
		parent.Set(parts[len(parts)-1], list)
	case int:
		parent.Set(parts[len(parts)-1], float64(v))
	default:
		parent.Set(parts[len(parts)-1], value)
	}
	return nil
}

// CreateSection replaces whatever is at path with a fresh empty section.
func (s *Section) CreateSection(path string) (*Section, error) {
	child := NewSection("")
	if err := s.Set(path, child); err != nil {
		return nil, err
	}
	parts := splitPath(path)
	child.name = parts[len(parts)-1]
	return child, nil
}

// Delete removes the value at path.
func (s *Section) Delete(path string) {
	parts := splitPath(path)
	if len(parts) == 0 || s == nil || s.values == nil {
		return
	}
	parent := s.values
	for _, part := range parts[:len(parts)-1] {
		value, ok := parent.Get(part)
		if !ok {
			return
		}
		next, ok := asMap(value)
		if !ok {
			return
		}
		parent = next
	}
	parent.Delete(parts[len(parts)-1])
}

// Clone returns a deep copy by round-tripping through JSON.
func (s *Section) Clone() (*Section, error) {
	data, err := s.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("config: clone: %w", err)
	}
	clone, err := Decode(data)
	if err != nil {
		return nil, err
	}
	clone.name = s.Name()
	return clone, nil
}

func (s *Section) ensurePath(parts []string) (*orderedmap.OrderedMap, error) {
	if s.values == nil {
		s.values = orderedmap.New()
	}
	current := s.values
	for i, part := range parts {
		value, ok := current.Get(part)
		if !ok {
			next := orderedmap.New()
			current.Set(part, next)
			current = next
			continue
		}
		next, ok := asMap(value)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotSection, strings.Join(parts[:i+1], "."))
		}
		// Store pointers back so later writes land in the shared node.
		current.Set(part, next)
		current = next
	}
	return current, nil
}

func asMap(value any) (*orderedmap.OrderedMap, bool) {
	switch v := value.(type) {
	case *orderedmap.OrderedMap:
		return v, v != nil
	case orderedmap.OrderedMap:
		return &v, true
	default:
		return nil, false
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func splitPath(path string) []string {
	path = strings.Trim(strings.TrimSpace(path), ".")
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}
