package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sample = `{
  "items": {
    "flashbang": {
      "material": "FIREWORK_STAR",
      "custom-model-data": 3,
      "abilities": {
        "zeta": {"type": "flashbang", "range": 12.5},
        "alpha": {"type": "heal"}
      }
    }
  },
  "bundles": {
    "gunpowder": {"item": "gunpowder", "count": 9, "box-id": "box_of_gunpowder"}
  }
}`

func TestDecodePreservesKeyOrder(t *testing.T) {
	root, err := Decode([]byte(sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	abilities, ok := root.Section("items.flashbang.abilities")
	if !ok {
		t.Fatalf("expected abilities section")
	}
	if got := abilities.Keys(); !reflect.DeepEqual(got, []string{"zeta", "alpha"}) {
		t.Fatalf("expected document order, got %v", got)
	}
	if abilities.Name() != "abilities" {
		t.Fatalf("expected section name abilities, got %q", abilities.Name())
	}
}

func TestTypedAccessors(t *testing.T) {
	root, err := Decode([]byte(sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item, _ := root.Section("items.flashbang")
	if got := item.String("material", "PAPER"); got != "FIREWORK_STAR" {
		t.Fatalf("expected FIREWORK_STAR, got %q", got)
	}
	if !item.IsInt("custom-model-data") || item.Int("custom-model-data", 0) != 3 {
		t.Fatalf("expected integral model data 3")
	}
	if got := item.Float("abilities.zeta.range", 10); got != 12.5 {
		t.Fatalf("expected 12.5, got %v", got)
	}
	if item.IsInt("abilities.zeta.range") {
		t.Fatalf("expected 12.5 not to be integral")
	}
	if got := item.String("name", "fallback"); got != "fallback" {
		t.Fatalf("expected default for missing key, got %q", got)
	}
	if got := root.Int("bundles.gunpowder.count", 1); got != 9 {
		t.Fatalf("expected 9, got %d", got)
	}
	if _, ok := root.Section("bundles.gunpowder.item"); ok {
		t.Fatalf("expected scalar not to resolve as a section")
	}
}

func TestStringListAcceptsScalar(t *testing.T) {
	root := NewSection("")
	if err := root.Set("a", "one"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := root.Set("b", []string{"x", "y"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if got := root.StringList("a"); !reflect.DeepEqual(got, []string{"one"}) {
		t.Fatalf("expected scalar to become a list, got %v", got)
	}
	if got := root.StringList("b"); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Fatalf("expected list, got %v", got)
	}
	if root.StringList("missing") != nil {
		t.Fatalf("expected nil for missing list")
	}
}

func TestSetWritesThroughDecodedSections(t *testing.T) {
	root, err := Decode([]byte(sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := root.Set("items.flashbang.name", "&cFlash"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := root.Set("items.flashbang.abilities.omega.type", "teleport"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if got := root.String("items.flashbang.name", ""); got != "&cFlash" {
		t.Fatalf("expected name to be stored, got %q", got)
	}
	abilities, _ := root.Section("items.flashbang.abilities")
	if got := abilities.Keys(); !reflect.DeepEqual(got, []string{"zeta", "alpha", "omega"}) {
		t.Fatalf("expected appended key, got %v", got)
	}
	if err := root.Set("bundles.gunpowder.item.deeper", 1); !errors.Is(err, ErrNotSection) {
		t.Fatalf("expected ErrNotSection, got %v", err)
	}
}

func TestCreateSectionReplaces(t *testing.T) {
	root, _ := Decode([]byte(sample))
	child, err := root.CreateSection("bundles")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(child.Keys()) != 0 {
		t.Fatalf("expected fresh section")
	}
	child.Set("x.item", "stone")
	if got := root.String("bundles.x.item", ""); got != "stone" {
		t.Fatalf("expected writes through created section, got %q", got)
	}
}

func TestDecodeRejectsNonObject(t *testing.T) {
	if _, err := Decode([]byte(`[1,2]`)); err == nil {
		t.Fatalf("expected array document to fail")
	}
	root, err := Decode(nil)
	if err != nil || len(root.Keys()) != 0 {
		t.Fatalf("expected empty input to decode as empty document, got %v", err)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "nested", "items.json"))

	empty, err := store.Load()
	if err != nil {
		t.Fatalf("expected missing file to load empty, got %v", err)
	}
	if len(empty.Keys()) != 0 {
		t.Fatalf("expected empty document")
	}

	root, _ := Decode([]byte(sample))
	if err := store.Save(root); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	abilities, _ := loaded.Section("items.flashbang.abilities")
	if got := abilities.Keys(); !reflect.DeepEqual(got, []string{"zeta", "alpha"}) {
		t.Fatalf("expected order to survive a save, got %v", got)
	}

	entries, _ := os.ReadDir(filepath.Join(dir, "nested"))
	if len(entries) != 1 {
		t.Fatalf("expected temp file to be renamed away, found %d entries", len(entries))
	}
}

func TestMemoryStoreCopiesOnSave(t *testing.T) {
	root, _ := Decode([]byte(sample))
	store, err := NewMemoryStore(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root.Set("items.flashbang.material", "STONE")
	loaded, _ := store.Load()
	if got := loaded.String("items.flashbang.material", ""); got != "FIREWORK_STAR" {
		t.Fatalf("expected stored copy to be isolated, got %q", got)
	}
}
