package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/eloss/internal/crosssection"
	"github.com/danielpatrickdp/eloss/internal/cuts"
	"github.com/danielpatrickdp/eloss/internal/medium"
	"github.com/danielpatrickdp/eloss/internal/particle"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a reference-vector fixture.
type Fixture struct {
	Description string        `json:"description"`
	Config      FixtureConfig `json:"config"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureConfig names the configuration the reference values belong to.
type FixtureConfig struct {
	Particle   string  `json:"particle"`
	Medium     string  `json:"medium"`
	Ecut       float64 `json:"ecut"`
	Vcut       float64 `json:"vcut"`
	ContRand   bool    `json:"cont_rand"`
	Multiplier float64 `json:"multiplier"`
	Tolerance  float64 `json:"tolerance"`
}

// FixtureCase is one reference point of one parametrization.
type FixtureCase struct {
	Family          string  `json:"family"`
	Parametrization string  `json:"parametrization"`
	Energy          float64 `json:"energy"`
	DEdx            float64 `json:"dedx"`
	DE2dx           float64 `json:"de2dx"`
	DNdx            float64 `json:"dndx"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// SaveFixture writes f as indented JSON.
func SaveFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// ToCrossSectionConfig resolves the names of a FixtureConfig.
func (fc *FixtureConfig) ToCrossSectionConfig() (crosssection.Config, error) {
	p, err := particle.ByName(fc.Particle)
	if err != nil {
		return crosssection.Config{}, err
	}
	m, err := medium.ByName(fc.Medium)
	if err != nil {
		return crosssection.Config{}, err
	}
	c, err := cuts.New(fc.Ecut, fc.Vcut, fc.ContRand)
	if err != nil {
		return crosssection.Config{}, err
	}
	return crosssection.Config{Particle: p, Medium: m, Cuts: c, Multiplier: fc.Multiplier}, nil
}

// #endregion fixture-loader

// #region fixture-export

// Export evaluates every cross section at every energy and records the
// results as a fixture.
func Export(description string, config FixtureConfig, xs []crosssection.CrossSection, energies []float64) *Fixture {
	f := &Fixture{Description: description, Config: config}
	for _, cs := range xs {
		p := cs.Parametrization()
		for _, e := range energies {
			f.Cases = append(f.Cases, FixtureCase{
				Family:          p.Family().String(),
				Parametrization: p.Name(),
				Energy:          e,
				DEdx:            cs.DEdx(e),
				DE2dx:           cs.DE2dx(e),
				DNdx:            cs.DNdx(e),
			})
		}
	}
	return f
}

// #endregion fixture-export
