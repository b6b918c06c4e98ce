package faction

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// standingsFile is the YAML shape for a standings table:
//
//	default: Neutral
//	standings:
//	  - source: Bandits
//	    target: Player
//	    standing: Hostile
type standingsFile struct {
	Default   string `yaml:"default"`
	Standings []struct {
		Source   string `yaml:"source"`
		Target   string `yaml:"target"`
		Standing string `yaml:"standing"`
	} `yaml:"standings"`
}

// LoadMatrix reads a standings table from a YAML file. Unknown faction or
// standing names are reported as errors rather than silently skipped, since
// a typo in the table would otherwise surface as baffling AI behavior.
func LoadMatrix(path string) (*Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read standings file: %w", err)
	}
	return ParseMatrix(data)
}

// ParseMatrix builds a Matrix from YAML bytes.
func ParseMatrix(data []byte) (*Matrix, error) {
	var file standingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse standings yaml: %w", err)
	}

	def := Neutral
	if file.Default != "" {
		parsed, ok := StandingFromName(file.Default)
		if !ok {
			return nil, fmt.Errorf("unknown default standing %q", file.Default)
		}
		def = parsed
	}

	m := NewMatrix(def)
	for i, entry := range file.Standings {
		source, ok := FromName(entry.Source)
		if !ok {
			return nil, fmt.Errorf("standings[%d]: unknown source faction %q", i, entry.Source)
		}
		target, ok := FromName(entry.Target)
		if !ok {
			return nil, fmt.Errorf("standings[%d]: unknown target faction %q", i, entry.Target)
		}
		standing, ok := StandingFromName(entry.Standing)
		if !ok {
			return nil, fmt.Errorf("standings[%d]: unknown standing %q", i, entry.Standing)
		}
		m.SetStanding(source, target, standing)
	}

	return m, nil
}
