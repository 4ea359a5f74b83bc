package standard

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// Seed returns a fresh copy of the bundled dataset used when neither the
// remote feed nor the persistent store has anything to offer.
func Seed() ([]Standard, error) {
	var items []Standard
	if err := yaml.Unmarshal(seedYAML, &items); err != nil {
		return nil, fmt.Errorf("decode seed dataset: %w", err)
	}
	return items, nil
}
