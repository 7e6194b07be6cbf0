package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is a session preset: parameters, metric and experiments that the
// CLI replays through the session's edit operations at startup.
//
// Example:
//
//	metric: yield
//	parameters:
//	  - name: temp
//	    min: 0
//	    max: 100
//	experiments:
//	  - values:
//	      temp: 50
//	      yield: 0.8
type Seed struct {
	Metric      string           `yaml:"metric,omitempty"`
	Parameters  []SeedParameter  `yaml:"parameters"`
	Experiments []SeedExperiment `yaml:"experiments,omitempty"`
}

// SeedParameter is one parameter definition.
type SeedParameter struct {
	Name string  `yaml:"name"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
}

// SeedExperiment lists one experiment's values. They are kept as the literal
// text written in the file.
type SeedExperiment struct {
	Values map[string]RawValue `yaml:"values"`
}

// RawValue is a YAML scalar kept as its literal text, so 0.80 stays "0.80".
type RawValue string

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *RawValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: experiment value must be a scalar", node.Line)
	}

	if node.ShortTag() == "!!null" {
		*r = ""

		return nil
	}

	*r = RawValue(node.Value)

	return nil
}

// Strings returns the values as plain strings.
func (e SeedExperiment) Strings() map[string]string {
	out := make(map[string]string, len(e.Values))
	for k, v := range e.Values {
		out[k] = string(v)
	}

	return out
}

// LoadSeed reads and validates a seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	if err := seed.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}

	return &seed, nil
}

// Validate rejects unnamed or duplicate parameters.
func (s *Seed) Validate() error {
	seen := make(map[string]bool, len(s.Parameters))

	for i, p := range s.Parameters {
		if p.Name == "" {
			return fmt.Errorf("parameters[%d]: name is required", i)
		}

		if seen[p.Name] {
			return fmt.Errorf("parameters[%d]: duplicate name %q", i, p.Name)
		}

		seen[p.Name] = true
	}

	return nil
}
