package protocol

import (
	"github.com/wagiedev/wstools-go/internal/errors"
	"github.com/wagiedev/wstools-go/internal/tool"
)

// Bind maps the request arguments onto the declared parameters of d.
//
// For each parameter the request value is used when present, then the
// declared default. A required parameter with neither fails with a
// MissingParameterError; an optional one is left out. A JSON null on an
// optional parameter counts as absent. Undeclared keys are ignored.
func Bind(req *Request, d *tool.Descriptor) (tool.Args, error) {
	source := req.Arguments()
	params := d.Params()
	args := make(tool.Args, len(params))

	for i, p := range params {
		value, present := source[p.Name]
		if present && value == nil && !p.Required {
			present = false
		}

		if !present {
			if p.HasDefault {
				args[p.Name] = cloneValue(p.Default)

				continue
			}

			if p.Required {
				return nil, &errors.MissingParameterError{Tool: d.Name(), Param: p.Name}
			}

			continue
		}

		if err := d.Check(i, value); err != nil {
			return nil, err
		}

		args[p.Name] = value
	}

	return args, nil
}

// cloneValue copies decoded JSON containers so handlers cannot mutate
// shared defaults.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}

		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}

		return out
	default:
		return v
	}
}
