package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// presetListSchema describes the /presets body: an ordered array of
// {key, label} objects with non-empty keys.
func presetListSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"key":   map[string]any{"type": "string", "minLength": 1},
				"label": map[string]any{"type": "string"},
			},
			"required": []string{"key", "label"},
		},
	}
}

// statusSchema describes the /status/{id} body. Unknown status strings are
// accepted here and classified by the poller.
func statusSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status": map[string]any{"type": "string"},
			"result": map[string]any{
				"type": []string{"object", "null"},
				"properties": map[string]any{
					"summary": map[string]any{"type": []string{"string", "null"}},
				},
			},
			"error": map[string]any{"type": []string{"string", "null"}},
		},
		"required": []string{"status"},
	}
}

type compiledSchemas struct {
	presets *jsonschema.Schema
	status  *jsonschema.Schema
}

var (
	schemasOnce sync.Once
	schemas     compiledSchemas
	schemasErr  error
)

func loadSchemas() (compiledSchemas, error) {
	schemasOnce.Do(func() {
		var err error
		if schemas.presets, err = compileSchema("presets.json", presetListSchema()); err != nil {
			schemasErr = err
			return
		}
		if schemas.status, err = compileSchema("status.json", statusSchema()); err != nil {
			schemasErr = err
		}
	})
	return schemas, schemasErr
}

func compileSchema(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return schema, nil
}

// decodeValidated checks data against schema before decoding it into out.
func decodeValidated(schema *jsonschema.Schema, data []byte, out any) error {
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	if err := schema.Validate(generic); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	return nil
}
