package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/felixgeelhaar/mcp-todo/protocol"
	"github.com/felixgeelhaar/mcp-todo/schema"
)

// Registry holds the advertised tools and their compiled input schemas.
type Registry struct {
	definitions []Definition
	validators  map[string]*schema.Validator
}

// NewRegistry compiles the input schema of every definition. It fails on a
// duplicate name or a malformed schema.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{
		definitions: make([]Definition, 0, len(defs)),
		validators:  make(map[string]*schema.Validator, len(defs)),
	}

	for _, def := range defs {
		if _, exists := r.validators[def.Name]; exists {
			return nil, fmt.Errorf("tool %q registered twice", def.Name)
		}
		v, err := schema.Compile(def.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %q: %w", def.Name, err)
		}
		r.validators[def.Name] = v
		r.definitions = append(r.definitions, def)
	}

	return r, nil
}

// Definitions returns the registered tools in registration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.definitions))
	copy(out, r.definitions)
	return out
}

// Validate checks arguments against the input schema of the named tool.
// It returns a *protocol.Error describing the first violation, or nil.
func (r *Registry) Validate(name string, arguments json.RawMessage) error {
	v, ok := r.validators[name]
	if !ok {
		return protocol.Errorf(protocol.KindToolNotFound, "Tool '%s' is not available", name)
	}

	args, err := decodeArguments(arguments)
	if err != nil {
		return protocol.NewValidationError("Tool parameters must be provided as an object")
	}

	if err := v.ValidateObject(args); err != nil {
		return protocol.NewValidationError(err.Error())
	}
	return nil
}

var errNotObject = errors.New("arguments are not a JSON object")

// decodeArguments decodes a JSON object keeping its key order.
func decodeArguments(data json.RawMessage) (*orderedmap.OrderedMap[string, any], error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errNotObject
	}

	args := orderedmap.New[string, any]()
	if err := json.Unmarshal(trimmed, args); err != nil {
		return nil, err
	}
	return args, nil
}
