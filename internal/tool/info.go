package tool

import "github.com/google/jsonschema-go/jsonschema"

// Info is the listing form of a descriptor.
type Info struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  []ParamInfo        `json:"parameters"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

// ParamInfo is the listing form of a parameter.
type ParamInfo struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Required    bool      `json:"required"`
	HasDefault  bool      `json:"hasDefault,omitempty"`
	Default     any       `json:"default,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Info returns the listing form of d.
func (d *Descriptor) Info() Info {
	params := make([]ParamInfo, len(d.params))
	for i, p := range d.params {
		params[i] = ParamInfo{
			Name:        p.Name,
			Type:        p.Type,
			Required:    p.Required,
			HasDefault:  p.HasDefault,
			Default:     p.Default,
			Description: p.Description,
		}
	}

	return Info{
		Name:        d.name,
		Description: d.description,
		Parameters:  params,
		InputSchema: d.schema,
	}
}
