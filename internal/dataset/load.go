package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Parse decodes a dataset. ext selects the syntax: ".yaml"/".yml", ".json"
// or ".jsonc" (JSON with comments and trailing commas).
func Parse(data []byte, ext string) (*Dataset, error) {
	var d Dataset
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("parsing dataset yaml: %w", err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &d); err != nil {
			return nil, fmt.Errorf("parsing dataset json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", ext)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	d, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
