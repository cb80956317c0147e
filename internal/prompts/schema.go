package prompts

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// ErrSchemaMismatch is returned when a model document is valid JSON but
// does not have the documented shape.
var ErrSchemaMismatch = errors.New("model output does not match schema")

type Kind int

const (
	String Kind = iota
	Number
	Bool
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "boolean"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return "unknown"
}

// Field describes one required top-level key.
type Field struct {
	Name string
	Kind Kind
	Enum []string // allowed literals for String fields
}

// Schema is a structural check of the top-level object a feature returns.
type Schema struct {
	Fields []Field
}

func field(name string, kind Kind, enum ...string) Field {
	return Field{Name: name, Kind: kind, Enum: enum}
}

// Validate reports whether doc is an object carrying every field with the
// expected JSON kind and, for enums, an allowed value.
func (s Schema) Validate(doc json.RawMessage) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(doc, &obj); err != nil {
		return fmt.Errorf("%w: top level is not an object", ErrSchemaMismatch)
	}

	for _, f := range s.Fields {
		raw, ok := obj[f.Name]
		if !ok || string(raw) == "null" {
			return fmt.Errorf("%w: missing field %q", ErrSchemaMismatch, f.Name)
		}
		if got := kindOf(raw); got != f.Kind {
			return fmt.Errorf("%w: field %q is %s, want %s", ErrSchemaMismatch, f.Name, got, f.Kind)
		}
		if len(f.Enum) > 0 {
			var v string
			_ = json.Unmarshal(raw, &v)
			if !slices.Contains(f.Enum, v) {
				return fmt.Errorf("%w: field %q has unexpected value %q", ErrSchemaMismatch, f.Name, v)
			}
		}
	}
	return nil
}

func kindOf(raw json.RawMessage) Kind {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '"':
			return String
		case '[':
			return Array
		case '{':
			return Object
		case 't', 'f':
			return Bool
		default:
			return Number
		}
	}
	return -1
}
