package config

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/thearst3rd/chess-tournament/internal/engine"
)

//go:embed engines.yaml
var defaultEngines embed.FS

type enginesFile struct {
	Engines []engine.Spec `yaml:"engines"`
}

// LoadCatalog returns the embedded engine specs, overlaid with the entries
// from the YAML file at path when one is configured. File entries replace
// defaults with the same (lowercased) name.
func LoadCatalog(path string) (map[string]engine.Spec, error) {
	catalog := make(map[string]engine.Spec)

	raw, err := fs.ReadFile(defaultEngines, "engines.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded engine catalog: %w", err)
	}
	if err := applyEngines(catalog, raw, "embedded catalog"); err != nil {
		return nil, err
	}

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read engines file: %w", err)
		}
		if err := applyEngines(catalog, raw, path); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

func applyEngines(catalog map[string]engine.Spec, raw []byte, source string) error {
	var file enginesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse %s: %w", source, err)
	}
	for i, spec := range file.Engines {
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("%s entry %d: %w", source, i, err)
		}
		catalog[strings.ToLower(spec.Name)] = spec
	}
	return nil
}
