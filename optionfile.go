package fixtures

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// OptionFormat names an option file encoding.
type OptionFormat string

const (
	FormatYAML OptionFormat = "yaml"
	FormatTOML OptionFormat = "toml"
	FormatJSON OptionFormat = "json"
)

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (OptionFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported option file extension %q", filepath.Ext(path))
	}
}

// LoadOptionSet reads test-declared options from a file. The top level maps
// options keys to records, for example in YAML:
//
//	environ:
//	  APP_MODE: test
//	clock:
//	  now: 2024-05-01T10:00:00Z
func LoadOptionSet(path string) (OptionSet, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading option file: %w", err)
	}
	set, err := ParseOptionSet(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// ParseOptionSet decodes an option file body.
func ParseOptionSet(data []byte, format OptionFormat) (OptionSet, error) {
	raw := map[string]map[string]any{}

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported option format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s options: %w", format, err)
	}

	set := make(OptionSet, len(raw))
	for key, values := range raw {
		set[key] = NewOptions(values)
	}
	return set, nil
}
