package watervalue

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plant describes one hydropower plant tracked by the water value view.
type Plant struct {
	ID           string    `yaml:"id"`
	Name         string    `yaml:"name"`
	PriceArea    string    `yaml:"price_area"`
	MaxInstalled float64   `yaml:"max_installed"`
	ProdLimits   []float64 `yaml:"prod_limits"`

	// Units are the slugs of the production series files summed into the
	// plant's total production.
	Units []string `yaml:"units"`
}

// Limits returns the plant's production interval limits, deriving four
// equal-width intervals from the installed capacity when none are
// configured.
func (p Plant) Limits() []float64 {
	if len(p.ProdLimits) > 0 {
		return p.ProdLimits
	}
	if p.MaxInstalled <= 0 {
		return DefaultLimits(0)
	}
	step := p.MaxInstalled / 4
	return []float64{0, step, 2 * step, 3 * step, p.MaxInstalled}
}

type plantsFile struct {
	Plants []Plant `yaml:"plants"`
}

// LoadPlants reads and validates the plant metadata YAML file.
func LoadPlants(path string) ([]Plant, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plants config: %w", err)
	}

	var file plantsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse plants config: %w", err)
	}
	if len(file.Plants) == 0 {
		return nil, fmt.Errorf("plants config %s lists no plants", path)
	}

	seen := map[string]bool{}
	for _, p := range file.Plants {
		switch {
		case p.ID == "":
			return nil, fmt.Errorf("plants config: plant %q has no id", p.Name)
		case seen[p.ID]:
			return nil, fmt.Errorf("plants config: duplicate plant id %q", p.ID)
		case p.PriceArea == "":
			return nil, fmt.Errorf("plants config: plant %q has no price_area", p.ID)
		case len(p.Units) == 0:
			return nil, fmt.Errorf("plants config: plant %q lists no units", p.ID)
		}
		for i := 1; i < len(p.ProdLimits); i++ {
			if p.ProdLimits[i] <= p.ProdLimits[i-1] {
				return nil, fmt.Errorf("plants config: plant %q prod_limits must be strictly increasing", p.ID)
			}
		}
		seen[p.ID] = true
	}
	return file.Plants, nil
}
