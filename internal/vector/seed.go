package vector

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed seed/url.yaml
var builtinSeed []byte

// Record is one entry of a url seed file.
type Record struct {
	URI  string `json:"uri" yaml:"uri"`
	AP   string `json:"ap" yaml:"ap"`
	Desc string `json:"desc" yaml:"desc"`
}

// Document converts r into a searchable document. The id is derived from
// the URI and access point, so reseeding the same record replaces it.
func (r Record) Document() Document {
	return Document{
		ID:      uuid.NewSHA1(uuid.NameSpaceURL, []byte(r.AP+" "+r.URI)).String(),
		Content: r.Desc,
		Metadata: map[string]any{
			"uri":  r.URI,
			"ap":   r.AP,
			"desc": r.Desc,
		},
	}
}

// BuiltinSeed returns the records bundled with the binary.
func BuiltinSeed() []Record {
	records, err := ParseSeed(builtinSeed, "yaml")
	if err != nil {
		panic(fmt.Sprintf("builtin seed: %v", err))
	}

	return records
}

// LoadSeed reads records from a .json, .yaml or .yml file.
func LoadSeed(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	records, err := ParseSeed(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}

	return records, nil
}

// ParseSeed decodes records in the given format ("json", "yaml" or "yml").
func ParseSeed(data []byte, format string) ([]Record, error) {
	var records []Record

	switch strings.ToLower(format) {
	case "json":
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported seed format %q", format)
	}

	for i, r := range records {
		if r.URI == "" {
			return nil, fmt.Errorf("record %d has no uri", i)
		}
	}

	return records, nil
}

// Documents converts records in order.
func Documents(records []Record) []Document {
	docs := make([]Document, len(records))
	for i, r := range records {
		docs[i] = r.Document()
	}

	return docs
}
