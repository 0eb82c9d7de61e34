package schema

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Constraint names reported in ValidationError.
const (
	ConstraintRequired   = "required"
	ConstraintAdditional = "additionalProperties"
	ConstraintType       = "type"
	ConstraintMinLength  = "minLength"
	ConstraintMaxLength  = "maxLength"
	ConstraintPattern    = "pattern"
	ConstraintEnum       = "enum"
	ConstraintMinimum    = "minimum"
	ConstraintMaximum    = "maximum"
)

// ValidationError describes the first constraint an argument violated.
type ValidationError struct {
	Path       string // dotted path to the parameter, e.g. "filter" or "opts.limit"
	Constraint string // violated constraint keyword
	Message    string // human-readable message
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateObject validates the arguments of a call against an object schema.
//
// Validation stops at the first violation. Required properties are checked
// in declared order, then every supplied key is checked in the order it
// appears in args: undeclared keys first, then type, length, pattern, enum
// and numeric bounds.
func (v *Validator) ValidateObject(args *orderedmap.OrderedMap[string, any]) error {
	for _, name := range v.schema.Required {
		if _, ok := args.Get(name); !ok {
			return &ValidationError{
				Path:       name,
				Constraint: ConstraintRequired,
				Message:    fmt.Sprintf("Required parameter '%s' is missing", name),
			}
		}
	}

	for pair := args.Oldest(); pair != nil; pair = pair.Next() {
		if err := v.validateProperty(v.schema, "", pair.Key, pair.Value); err != nil {
			return err
		}
	}
	return nil
}

// ValidateValue validates an arbitrary decoded JSON value. Object keys are
// visited in sorted order. Tool arguments go through ValidateObject; this
// entry point serves agreement tests against Conforms.
func (v *Validator) ValidateValue(value any) error {
	return v.validate(v.schema, "", value)
}

func (v *Validator) validateProperty(parent *Schema, base, key string, value any) error {
	path := joinPath(base, key)
	prop, ok := parent.Properties[key]
	if !ok {
		if parent.AdditionalProperties != nil && !*parent.AdditionalProperties {
			return &ValidationError{
				Path:       path,
				Constraint: ConstraintAdditional,
				Message:    fmt.Sprintf("Parameter '%s' is not supported", path),
			}
		}
		return nil
	}
	return v.validate(prop, path, value)
}

func (v *Validator) validate(s *Schema, path string, value any) error {
	if !typeMatches(s.Type, value) {
		return v.fail(path, ConstraintType, "must be of type %s", s.Type)
	}

	switch val := value.(type) {
	case string:
		if err := v.validateString(s, path, val); err != nil {
			return err
		}
	case float64:
		if err := v.validateNumber(s, path, val); err != nil {
			return err
		}
	case map[string]any:
		return v.validateObject(s, path, val)
	case []any:
		if s.Items != nil {
			for i, item := range val {
				if err := v.validate(s.Items, fmt.Sprintf("%s[%d]", path, i), item); err != nil {
					return err
				}
			}
		}
		return nil
	}

	return v.validateEnum(s, path, value)
}

func (v *Validator) validateString(s *Schema, path, str string) error {
	n := utf8.RuneCountInString(str)
	if s.MinLength != nil && n < *s.MinLength {
		return v.fail(path, ConstraintMinLength, "must be at least %d characters", *s.MinLength)
	}
	if s.MaxLength != nil && n > *s.MaxLength {
		return v.fail(path, ConstraintMaxLength, "must be at most %d characters", *s.MaxLength)
	}
	if re, ok := v.patterns[s]; ok && !re.MatchString(str) {
		return v.fail(path, ConstraintPattern, "does not match required pattern")
	}
	return nil
}

func (v *Validator) validateNumber(s *Schema, path string, num float64) error {
	if s.Minimum != nil && num < *s.Minimum {
		return v.fail(path, ConstraintMinimum, "must be at least %v", *s.Minimum)
	}
	if s.Maximum != nil && num > *s.Maximum {
		return v.fail(path, ConstraintMaximum, "must be at most %v", *s.Maximum)
	}
	return nil
}

func (v *Validator) validateObject(s *Schema, path string, obj map[string]any) error {
	for _, name := range s.Required {
		if _, ok := obj[name]; !ok {
			full := joinPath(path, name)
			return &ValidationError{
				Path:       full,
				Constraint: ConstraintRequired,
				Message:    fmt.Sprintf("Required parameter '%s' is missing", full),
			}
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := v.validateProperty(s, path, k, obj[k]); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) validateEnum(s *Schema, path string, value any) error {
	if len(s.Enum) == 0 {
		return nil
	}
	for _, e := range s.Enum {
		if e == value {
			return nil
		}
	}
	allowed := make([]string, len(s.Enum))
	for i, e := range s.Enum {
		allowed[i] = fmt.Sprint(e)
	}
	return v.fail(path, ConstraintEnum, "must be one of: %s", strings.Join(allowed, ", "))
}

func (v *Validator) fail(path, constraint, format string, args ...any) error {
	return &ValidationError{
		Path:       path,
		Constraint: constraint,
		Message:    fmt.Sprintf("Parameter '%s' ", path) + fmt.Sprintf(format, args...),
	}
}

func typeMatches(typ string, value any) bool {
	switch typ {
	case "":
		return true
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeNumber:
		_, ok := value.(float64)
		return ok
	case TypeInteger:
		f, ok := value.(float64)
		return ok && f == math.Trunc(f)
	case TypeObject:
		_, ok := value.(map[string]any)
		return ok
	case TypeArray:
		_, ok := value.([]any)
		return ok
	default:
		return false
	}
}

func joinPath(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}
