package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"treasurehunt/protocol"
)

func TestBuildSchemaDefinesEveryMessage(t *testing.T) {
	schema := buildSchema()
	if len(schema.OneOf) != len(protocol.Catalog()) {
		t.Fatalf("oneOf has %d entries, want %d", len(schema.OneOf), len(protocol.Catalog()))
	}
	for _, m := range protocol.Catalog() {
		def, ok := schema.Definitions[definitionKey(m)]
		if !ok {
			t.Fatalf("missing definition for %q", m.Type)
		}
		if def.Title != m.Type {
			t.Fatalf("definition %q titled %q", m.Type, def.Title)
		}
	}
}

func TestWriteSchema(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "protocol.schema.json")
	if err := writeSchema(out, buildSchema()); err != nil {
		t.Fatalf("writeSchema: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	defs, _ := doc["$defs"].(map[string]any)
	if defs == nil {
		defs, _ = doc["definitions"].(map[string]any)
	}
	pose, _ := defs["client.pose"].(map[string]any)
	props, _ := pose["properties"].(map[string]any)
	if _, ok := props["treasures"]; !ok {
		t.Fatalf("pose schema lacks treasures property: %v", pose)
	}
	if _, err := os.Stat(out + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}
