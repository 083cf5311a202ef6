package style

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk shape of a style catalog:
//
//	styles:
//	  MMA:
//	    strength: 0.3
//	    technique: 0.3
type catalogFile struct {
	Styles map[string]map[string]float64 `yaml:"styles"`
}

// Parse decodes a YAML style catalog.
//
// Postcondition: Returns a non-nil Catalog or an error describing the first
// invalid style.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing style catalog: %w", err)
	}
	styles := make([]*Style, 0, len(f.Styles))
	for name, weights := range f.Styles {
		styles = append(styles, &Style{Name: name, Weights: weights})
	}
	return NewCatalog(styles...)
}

// LoadFile reads and parses the style catalog at path.
//
// Precondition: path must be a readable YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading style catalog %q: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
