package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteSchemaDescribesSections(t *testing.T) {
	out := filepath.Join(t.TempDir(), "schema", "config.schema.json")
	if err := writeSchema(out, buildSchema()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	for _, want := range []string{"ItemDocument", "BundleDocument", "RecipeDocument", "box-id"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected schema to mention %s", want)
		}
	}
	if _, err := os.Stat(out + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be renamed away")
	}
}
