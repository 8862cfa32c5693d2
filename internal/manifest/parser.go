package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Load reads a dataset manifest. The format is chosen by extension:
// .yaml/.yml parse as YAML, everything else as JSON.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m Manifest
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
		}
	} else {
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
		}
	}
	return m, nil
}

// Save writes a dataset manifest next to the downloads, JSON by default
// or YAML when the path carries a YAML extension.
func Save(path string, m Manifest) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(m)
	} else {
		data, err = json.MarshalIndent(m, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
