// Package filetype classifies uploads by extension. The mapping ships
// as an embedded YAML file so deployments can be rebuilt with a custom
// taxonomy without touching code.
package filetype

import (
	"embed"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Other is the fallback type for unrecognized extensions.
const Other = "other"

type typeEntry struct {
	Name       string   `yaml:"name"`
	Extensions []string `yaml:"extensions"`
}

type typeConfig struct {
	Types []typeEntry `yaml:"types"`
}

// Registry maps lowercase extensions (with dot) to type names.
type Registry struct {
	byExt map[string]string
}

// NewRegistry loads the embedded extension mapping.
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/types.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read type config: %w", err)
	}

	var cfg typeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal type config: %w", err)
	}

	r := &Registry{byExt: make(map[string]string)}
	for _, entry := range cfg.Types {
		for _, ext := range entry.Extensions {
			r.byExt[strings.ToLower(ext)] = entry.Name
		}
	}
	return r, nil
}

// ForFilename returns the type for a filename, or Other.
func (r *Registry) ForFilename(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := r.byExt[ext]; ok {
		return t
	}
	return Other
}
