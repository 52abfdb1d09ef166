package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/eloss/internal/config"
	"github.com/danielpatrickdp/eloss/internal/crosssection"
	"github.com/danielpatrickdp/eloss/internal/numeric"
	"github.com/danielpatrickdp/eloss/internal/replay"
)

// #region main

func main() {
	particleName := flag.String("particle", "MuMinus", "particle name")
	mediumName := flag.String("medium", "water", "medium name")
	ecut := flag.Float64("ecut", 500, "absolute energy cut in MeV, negative for none")
	vcut := flag.Float64("vcut", 0.05, "relative energy cut, negative for none")
	energies := flag.String("energies", "1e4,1e5,1e6,1e7,1e8", "comma separated energies in MeV")
	tolerance := flag.Float64("tolerance", 1e-3, "relative tolerance stored in the fixture")
	description := flag.String("description", "", "fixture description")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --out path/to/fixture.json [--particle name] [--medium name] [--energies list]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	fc := replay.FixtureConfig{
		Particle:   *particleName,
		Medium:     *mediumName,
		Ecut:       *ecut,
		Vcut:       *vcut,
		Multiplier: 1,
		Tolerance:  *tolerance,
	}
	if err := run(fc, cfg.Integral(), *energies, *description, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

// run records the standard cross sections of fc by direct integration with
// q, the reference strategy.
func run(fc replay.FixtureConfig, q numeric.Integral, energyList, description, outPath string) error {
	energies, err := parseEnergies(energyList)
	if err != nil {
		return fmt.Errorf("energies: %w", err)
	}
	cfg, err := fc.ToCrossSectionConfig()
	if err != nil {
		return err
	}
	xs, err := crosssection.NewFactoryWith(nil, q).StandardCrossSections(cfg, nil)
	if err != nil {
		return fmt.Errorf("cross sections: %w", err)
	}
	if description == "" {
		description = fmt.Sprintf("%s in %s, ecut=%g vcut=%g", cfg.Particle.Name, cfg.Medium.Name, fc.Ecut, fc.Vcut)
	}

	f := replay.Export(description, fc, xs, energies)
	if err := replay.SaveFixture(outPath, f); err != nil {
		return err
	}
	fmt.Printf("Wrote %d cases (%d processes x %d energies) to %s\n", len(f.Cases), len(xs), len(energies), outPath)
	return nil
}

// #endregion export

// #region helpers
func parseEnergies(s string) ([]float64, error) {
	var out []float64
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, err
		}
		if !(v > 0) {
			return nil, fmt.Errorf("energy %g must be positive", v)
		}
		out = append(out, v)
	}
	return out, nil
}

// #endregion helpers
