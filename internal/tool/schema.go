package tool

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// inputSchema builds the object schema describing a tool's arguments.
func inputSchema(params []Param) (*jsonschema.Schema, error) {
	properties := make(map[string]*jsonschema.Schema, len(params))
	required := make([]string, 0, len(params))

	for _, p := range params {
		var prop *jsonschema.Schema
		if p.Schema != nil {
			clone := *p.Schema
			prop = &clone
		} else {
			prop = TypeSchema(p.Type)
		}

		if p.Description != "" && prop.Description == "" {
			prop.Description = p.Description
		}

		if p.HasDefault {
			raw, err := json.Marshal(p.Default)
			if err != nil {
				return nil, fmt.Errorf("parameter %q default: %w", p.Name, err)
			}

			prop.Default = raw
		}

		properties[p.Name] = prop

		if p.Required {
			required = append(required, p.Name)
		}
	}

	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}, nil
}

// TypeSchema converts a parameter type to a JSON Schema.
func TypeSchema(typ ParamType) *jsonschema.Schema {
	switch typ {
	case TypeString, TypeInteger, TypeNumber, TypeBoolean, TypeObject, TypeArray:
		return &jsonschema.Schema{Type: string(typ)}
	default:
		// An empty schema accepts every value.
		return &jsonschema.Schema{}
	}
}
