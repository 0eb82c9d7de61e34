// Package schema describes tool input schemas and validates arguments against them.
//
// Schemas are plain values built from a handful of constructors:
//
//	s := schema.Object(map[string]*schema.Schema{
//	    "text":   schema.String("The task description").WithLength(1, 500),
//	    "filter": schema.String("Filter").WithEnum("all", "pending", "completed"),
//	}, "text")
//
// Compile checks the schema as a JSON Schema document and compiles its
// patterns once:
//
//	v, err := schema.Compile(s)
//
// # Validation
//
// ValidateObject is fail-fast. It returns a *ValidationError for the first
// violated constraint, checking required properties in declared order and
// then supplied keys in the order the client sent them. Supported keywords
// are type, properties, required, additionalProperties, minLength and
// maxLength (counted in characters), pattern, enum, minimum, maximum and
// items.
package schema
