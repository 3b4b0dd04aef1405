package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// Defaulter is implemented by argument structs that need non-zero defaults
// for omitted fields. SetDefaults runs before the arguments are decoded, so
// explicitly passed values (including zero) win.
type Defaulter interface {
	SetDefaults()
}

// ArgumentsError is returned when tool arguments fail schema validation.
type ArgumentsError struct {
	Tool    string
	Reasons []string
}

func (e *ArgumentsError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(e.Reasons, "; "))
}

type toolEntry struct {
	def    Tool
	schema *gojsonschema.Schema
	call   func(ctx context.Context, raw json.RawMessage) (any, error)
}

var reflector = &jsonschema.Reflector{
	DoNotReference:            true,
	ExpandedStruct:            true,
	AllowAdditionalProperties: true,
}

// AddTool registers a tool whose arguments decode into T. The input schema is
// reflected from T's json and jsonschema struct tags; fields without
// omitempty are required.
func AddTool[T any](s *Server, name, description string, handler func(ctx context.Context, args T) (any, error)) error {
	schema, err := schemaFor[T]()
	if err != nil {
		return fmt.Errorf("mcp: tool %s: %w", name, err)
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return fmt.Errorf("mcp: tool %s: compile schema: %w", name, err)
	}

	entry := &toolEntry{
		def:    Tool{Name: name, Description: description, InputSchema: schema},
		schema: compiled,
		call: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args T
			if d, ok := any(&args).(Defaulter); ok {
				d.SetDefaults()
			}
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, &ArgumentsError{Tool: name, Reasons: []string{err.Error()}}
			}
			return handler(ctx, args)
		},
	}
	return s.register(entry)
}

// schemaFor reflects T into a plain JSON Schema object.
func schemaFor[T any]() (map[string]any, error) {
	var zero T
	data, err := json.Marshal(reflector.Reflect(&zero))
	if err != nil {
		return nil, fmt.Errorf("reflect schema: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("reflect schema: %w", err)
	}
	// Drop draft metadata: MCP clients and the validator only need the shape.
	delete(schema, "$schema")
	delete(schema, "$id")
	if _, ok := schema["properties"]; !ok {
		schema["properties"] = map[string]any{}
	}
	return schema, nil
}

func (e *toolEntry) validate(raw json.RawMessage) error {
	result, err := e.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &ArgumentsError{Tool: e.def.Name, Reasons: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}
	reasons := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		reasons = append(reasons, desc.String())
	}
	return &ArgumentsError{Tool: e.def.Name, Reasons: reasons}
}
