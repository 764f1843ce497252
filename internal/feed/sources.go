package feed

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// SourcesConfig is the YAML config structure
// sources:
//
//	health:
//	  - https://...
type SourcesConfig struct {
	Sources map[string][]string `yaml:"sources"`
}

// LoadSources reads the category -> feed URLs map from a YAML file.
func LoadSources(path string) (map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg SourcesConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse sources config %s: %w", path, err)
	}
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("sources config %s lists no feeds", path)
	}
	return cfg.Sources, nil
}

// SortedCategories returns the source categories in stable order so fetch
// runs visit feeds deterministically.
func SortedCategories(sources map[string][]string) []string {
	cats := make([]string, 0, len(sources))
	for cat := range sources {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return cats
}
