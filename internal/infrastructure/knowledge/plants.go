// Package knowledge serves the static agronomy notes for each supported
// plant. The data ships embedded in the binary and is validated against
// the class taxonomy at load.
package knowledge

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ragul2105/plant-disease-api/internal/core/domain"
)

//go:embed plants.yaml
var plantsYAML []byte

type Base struct {
	plants map[string]domain.PlantInfo
}

type plantEntry struct {
	Name              string            `yaml:"name"`
	ScientificName    string            `yaml:"scientific_name"`
	Diseases          []string          `yaml:"diseases"`
	OptimalConditions map[string]string `yaml:"optimal_conditions"`
}

// Load parses the embedded knowledge base. Every entry must correspond to
// a plant the taxonomy knows about, and every supported plant must have
// an entry.
func Load() (*Base, error) {
	entries := make(map[string]plantEntry)
	if err := yaml.Unmarshal(plantsYAML, &entries); err != nil {
		return nil, fmt.Errorf("parse plant knowledge: %w", err)
	}

	plants := make(map[string]domain.PlantInfo, len(entries))
	for key, entry := range entries {
		plants[key] = domain.PlantInfo{
			Name:              entry.Name,
			ScientificName:    entry.ScientificName,
			Diseases:          entry.Diseases,
			OptimalConditions: entry.OptimalConditions,
		}
	}

	for key := range plants {
		if _, ok := domain.FilterFor(key); !ok {
			return nil, fmt.Errorf("knowledge entry %q is not a supported plant", key)
		}
	}
	for _, plant := range domain.SupportedPlants() {
		if _, ok := plants[plant]; !ok {
			return nil, fmt.Errorf("supported plant %q has no knowledge entry", plant)
		}
	}

	return &Base{plants: plants}, nil
}

// Plants returns a copy so callers cannot mutate the embedded data.
func (b *Base) Plants() map[string]domain.PlantInfo {
	out := make(map[string]domain.PlantInfo, len(b.plants))
	for key, info := range b.plants {
		out[key] = info
	}
	return out
}
