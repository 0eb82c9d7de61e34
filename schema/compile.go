package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const resourceURL = "mem://input-schema.json"

// Validator checks values against a compiled schema.
type Validator struct {
	schema   *Schema
	patterns map[*Schema]*regexp.Regexp
	standard *jsonschema.Schema
}

// Compile prepares s for validation. The schema is first compiled as a
// standalone JSON Schema document so a malformed definition fails here
// rather than at request time; string patterns are then compiled once.
func Compile(s *Schema) (*Validator, error) {
	if s == nil {
		return nil, errors.New("schema: nil schema")
	}

	doc, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resourceURL, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	standard, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	v := &Validator{
		schema:   s,
		patterns: make(map[*Schema]*regexp.Regexp),
		standard: standard,
	}
	if err := v.compilePatterns(s); err != nil {
		return nil, err
	}
	return v, nil
}

// MustCompile is like Compile but panics on error. It is intended for
// static schema tables.
func MustCompile(s *Schema) *Validator {
	v, err := Compile(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v *Validator) compilePatterns(s *Schema) error {
	if s.Pattern != "" {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return fmt.Errorf("compile pattern %q: %w", s.Pattern, err)
		}
		v.patterns[s] = re
	}
	for _, prop := range s.Properties {
		if err := v.compilePatterns(prop); err != nil {
			return err
		}
	}
	if s.Items != nil {
		return v.compilePatterns(s.Items)
	}
	return nil
}

// Schema returns the schema the validator was compiled from.
func (v *Validator) Schema() *Schema {
	return v.schema
}

// Conforms validates value with a general-purpose JSON Schema engine. It
// reports the same accept/reject decision as the interpreter without the
// parameter-oriented messages, and exists so tests can check the two agree.
func (v *Validator) Conforms(value any) error {
	return v.standard.Validate(value)
}
