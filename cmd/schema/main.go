package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/invopop/jsonschema"

	"treasurehunt/protocol"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	if err := writeSchema(outPath, buildSchema()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

// buildSchema has one definition per envelope type, keyed "<direction>.<type>".
func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}

	defs := jsonschema.Definitions{}
	refs := make([]*jsonschema.Schema, 0, len(protocol.Catalog()))
	for _, m := range protocol.Catalog() {
		s := reflector.ReflectFromType(reflect.TypeOf(m.Payload))
		s.Version = ""
		s.Title = m.Type
		s.Description = fmt.Sprintf("Payload of %q frames sent by the %s.", m.Type, m.Direction)
		key := definitionKey(m)
		defs[key] = s
		refs = append(refs, &jsonschema.Schema{Ref: "#/$defs/" + key})
	}

	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Treasure Hunt Wire Protocol",
		Description: fmt.Sprintf("Envelope payloads for protocol version %d.", protocol.V),
		OneOf:       refs,
		Definitions: defs,
	}
}

func definitionKey(m protocol.Message) string {
	return string(m.Direction) + "." + m.Type
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
