package schema

import "encoding/json"

// Schema type names.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

// Schema represents the subset of JSON Schema used by tool definitions.
type Schema struct {
	Type                 string             `json:"type,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Description          string             `json:"description,omitempty"`
	Enum                 []any              `json:"enum,omitempty"`
	MinLength            *int               `json:"minLength,omitempty"`
	MaxLength            *int               `json:"maxLength,omitempty"`
	Pattern              string             `json:"pattern,omitempty"`
	Minimum              *float64           `json:"minimum,omitempty"`
	Maximum              *float64           `json:"maximum,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
}

// MarshalJSON implements json.Marshaler. Object schemas always carry a
// properties member, even when empty.
func (s *Schema) MarshalJSON() ([]byte, error) {
	type alias Schema
	if s.Type == TypeObject && len(s.Properties) == 0 {
		return json.Marshal(struct {
			*alias
			Properties map[string]*Schema `json:"properties"`
		}{(*alias)(s), map[string]*Schema{}})
	}
	return json.Marshal((*alias)(s))
}

// Object returns a closed object schema with the given properties.
func Object(properties map[string]*Schema, required ...string) *Schema {
	if properties == nil {
		properties = map[string]*Schema{}
	}
	return &Schema{
		Type:                 TypeObject,
		Properties:           properties,
		Required:             required,
		AdditionalProperties: Bool(false),
	}
}

// String returns a string schema with a description.
func String(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

// Boolean returns a boolean schema with a description.
func Boolean(description string) *Schema {
	return &Schema{Type: TypeBoolean, Description: description}
}

// WithLength sets the character bounds of a string schema.
func (s *Schema) WithLength(min, max int) *Schema {
	s.MinLength = Int(min)
	s.MaxLength = Int(max)
	return s
}

// WithPattern sets the regular expression a string must match.
func (s *Schema) WithPattern(pattern string) *Schema {
	s.Pattern = pattern
	return s
}

// WithEnum restricts the schema to a fixed set of string values.
func (s *Schema) WithEnum(values ...string) *Schema {
	s.Enum = make([]any, len(values))
	for i, v := range values {
		s.Enum[i] = v
	}
	return s
}

// Int returns a pointer to i.
func Int(i int) *int { return &i }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }
