package wstools

import (
	"github.com/wagiedev/wstools-go/internal/protocol"
	"github.com/wagiedev/wstools-go/internal/tool"
)

// ===== Tools =====

// Registry maps tool names to descriptors.
type Registry = tool.Registry

// Descriptor is the immutable metadata of one tool.
type Descriptor = tool.Descriptor

// Param declares one named parameter of a tool.
type Param = tool.Param

// ParamType is the JSON type a parameter value must have.
type ParamType = tool.ParamType

// Args is the bound argument set passed to a Handler.
type Args = tool.Args

// Handler is the callable behind a tool.
type Handler = tool.Handler

// Info is the listing entry of one tool, as served by GET /tools.
type Info = tool.Info

// Parameter types.
const (
	TypeString  = tool.TypeString
	TypeInteger = tool.TypeInteger
	TypeNumber  = tool.TypeNumber
	TypeBoolean = tool.TypeBoolean
	TypeObject  = tool.TypeObject
	TypeArray   = tool.TypeArray
	TypeAny     = tool.TypeAny
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return tool.NewRegistry()
}

// NewTool builds a descriptor.
func NewTool(name, description string, params []Param, handler Handler) (*Descriptor, error) {
	return tool.New(name, description, params, handler)
}

// Required declares a parameter that must be present in every request.
func Required(name string, typ ParamType) Param {
	return tool.Required(name, typ)
}

// Optional declares a parameter that falls back to def when absent.
func Optional(name string, typ ParamType, def any) Param {
	return tool.Optional(name, typ, def)
}

// ===== Envelopes =====

// Response is a reply envelope.
type Response = protocol.Response
