package floorplan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RoomsConfig overrides the built-in classification taxonomy and
// inventory templates from a YAML file. Taxonomy order in the file is
// the evaluation priority order.
type RoomsConfig struct {
	Taxonomy  []TaxonomyEntry              `yaml:"taxonomy"`
	Templates map[string]InventoryTemplate `yaml:"inventory_templates"`
}

// LoadRoomsConfig reads and parses an override file.
func LoadRoomsConfig(path string) (*RoomsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rooms config: %w", err)
	}
	var cfg RoomsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse rooms config %s: %w", path, err)
	}
	return &cfg, nil
}

// Classifier builds a classifier honoring the taxonomy override. A nil
// receiver or empty taxonomy yields the default classifier.
func (c *RoomsConfig) Classifier() (*Classifier, error) {
	if c == nil || len(c.Taxonomy) == 0 {
		return NewClassifier(), nil
	}
	return NewClassifierWithTaxonomy(c.Taxonomy)
}

// InventoryGenerator builds a generator honoring the template
// overrides. A nil receiver or empty template map yields the default
// generator.
func (c *RoomsConfig) InventoryGenerator() (*InventoryGenerator, error) {
	if c == nil || len(c.Templates) == 0 {
		return NewInventoryGenerator(), nil
	}
	return NewInventoryGeneratorWithTemplates(c.Templates)
}
