package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wagiedev/wstools-go/internal/errors"
)

// Handler is the callable behind a tool.
//
// It receives the bound arguments (only declared parameters, defaults
// applied) and returns any JSON-encodable value, or an error whose message
// is sent to the peer verbatim.
type Handler func(ctx context.Context, args Args) (any, error)

// ParamType is the JSON type a parameter value must have.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeObject  ParamType = "object"
	TypeArray   ParamType = "array"
	// TypeAny accepts every JSON value.
	TypeAny ParamType = "any"
)

// Param declares one named parameter of a tool.
type Param struct {
	Name        string
	Type        ParamType
	Required    bool
	Default     any
	HasDefault  bool
	Description string

	// Schema, when set, replaces Type for validation and schema output.
	Schema *jsonschema.Schema
}

// Required declares a parameter that must be present in every request.
func Required(name string, typ ParamType) Param {
	return Param{Name: name, Type: typ, Required: true}
}

// Optional declares a parameter that falls back to def when absent.
// A nil def binds an explicit null.
func Optional(name string, typ ParamType, def any) Param {
	return Param{Name: name, Type: typ, Default: def, HasDefault: true}
}

// Describe returns a copy of p with a description.
func (p Param) Describe(description string) Param {
	p.Description = description

	return p
}

// WithSchema returns a copy of p validated against schema instead of its Type.
func (p Param) WithSchema(schema *jsonschema.Schema) Param {
	p.Schema = schema

	return p
}

// Descriptor is the immutable metadata of one registered tool.
type Descriptor struct {
	name        string
	description string
	params      []Param
	resolved    []*jsonschema.Resolved
	schema      *jsonschema.Schema
	handler     Handler
}

// New builds a Descriptor. Parameter order is preserved; defaults are
// normalized to their JSON form and checked against the parameter type.
func New(name, description string, params []Param, handler Handler) (*Descriptor, error) {
	if name == "" {
		return nil, errors.ErrEmptyToolName
	}

	if handler == nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrNilHandler, name)
	}

	d := &Descriptor{
		name:        name,
		description: description,
		params:      make([]Param, len(params)),
		resolved:    make([]*jsonschema.Resolved, len(params)),
		handler:     handler,
	}

	seen := make(map[string]struct{}, len(params))

	for i, p := range params {
		if p.Name == "" {
			return nil, fmt.Errorf("tool %s: parameter %d has no name", name, i)
		}

		if _, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("tool %s: parameter %q declared twice", name, p.Name)
		}

		seen[p.Name] = struct{}{}

		if p.Type == "" {
			p.Type = TypeAny
		}

		if p.Schema != nil {
			resolved, err := p.Schema.Resolve(nil)
			if err != nil {
				return nil, fmt.Errorf("tool %s: parameter %q schema: %w", name, p.Name, err)
			}

			d.resolved[i] = resolved
		}

		if p.HasDefault && p.Default != nil {
			normalized, err := normalize(p.Default)
			if err != nil {
				return nil, fmt.Errorf("tool %s: parameter %q default: %w", name, p.Name, err)
			}

			p.Default = normalized

			if err := d.check(i, p, normalized); err != nil {
				return nil, fmt.Errorf("tool %s: parameter %q default: %w", name, p.Name, err)
			}
		}

		d.params[i] = p
	}

	schema, err := inputSchema(d.params)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", name, err)
	}

	d.schema = schema

	return d, nil
}

// MustNew is New for static declarations; it panics on error.
func MustNew(name, description string, params []Param, handler Handler) *Descriptor {
	d, err := New(name, description, params, handler)
	if err != nil {
		panic(fmt.Sprintf("failed to declare tool: %v", err))
	}

	return d
}

// Name returns the tool name.
func (d *Descriptor) Name() string {
	return d.name
}

// Description returns the tool description.
func (d *Descriptor) Description() string {
	return d.description
}

// Params returns a copy of the declared parameters in declaration order.
func (d *Descriptor) Params() []Param {
	return slices.Clone(d.params)
}

// InputSchema returns the JSON Schema of the tool arguments object.
// Callers must not modify it.
func (d *Descriptor) InputSchema() *jsonschema.Schema {
	return d.schema
}

// Invoke calls the tool handler.
func (d *Descriptor) Invoke(ctx context.Context, args Args) (any, error) {
	return d.handler(ctx, args)
}

// Check validates a bound value for the parameter at index i.
func (d *Descriptor) Check(i int, value any) error {
	return d.check(i, d.params[i], value)
}

func (d *Descriptor) check(i int, p Param, value any) error {
	if d.resolved[i] != nil {
		if err := d.resolved[i].Validate(value); err != nil {
			return &errors.TypeMismatchError{Tool: d.name, Param: p.Name, Err: err}
		}

		return nil
	}

	if !Matches(p.Type, value) {
		return &errors.TypeMismatchError{
			Tool:     d.name,
			Param:    p.Name,
			Expected: string(p.Type),
			Got:      KindOf(value),
		}
	}

	return nil
}

// Matches reports whether a decoded JSON value has the given type.
func Matches(typ ParamType, value any) bool {
	switch typ {
	case TypeAny, "":
		return true
	case TypeString:
		_, ok := value.(string)

		return ok
	case TypeInteger:
		f, ok := value.(float64)

		// 2^63 is exactly representable; MaxInt64 is not.
		return ok && f == math.Trunc(f) && f >= math.MinInt64 && f < -math.MinInt64
	case TypeNumber:
		_, ok := value.(float64)

		return ok
	case TypeBoolean:
		_, ok := value.(bool)

		return ok
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

// KindOf names the JSON type of a decoded value.
func KindOf(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		if Matches(TypeInteger, v) {
			return "integer"
		}

		return "number"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", value)
	}
}

// normalize converts a Go value into the shape encoding/json decodes into.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}

	return out, nil
}
