package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/eloss/internal/config"
	"github.com/danielpatrickdp/eloss/internal/crosssection"
	"github.com/danielpatrickdp/eloss/internal/cuts"
	"github.com/danielpatrickdp/eloss/internal/medium"
	"github.com/danielpatrickdp/eloss/internal/particle"
	"github.com/danielpatrickdp/eloss/internal/tablecache"
	"github.com/danielpatrickdp/eloss/internal/tablestore"
	"github.com/danielpatrickdp/eloss/internal/utility"
)

// #region main
func main() {
	particleName := flag.String("particle", "MuMinus", "particle: "+strings.Join(particle.Names(), ", "))
	mediumName := flag.String("medium", "water", "medium: "+strings.Join(medium.Names(), ", "))
	ecut := flag.Float64("ecut", 500, "absolute energy cut in MeV, negative for none")
	vcut := flag.Float64("vcut", 0.05, "relative energy cut, negative for none")
	energiesFlag := flag.String("energies", "1e3,1e4,1e5,1e6,1e7,1e8", "comma separated energies in MeV")
	processes := flag.String("processes", "", "comma separated family/name pairs; empty selects the standard set")
	showRange := flag.Bool("range", false, "also print the continuous range down to the lowest energy")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	energies, err := parseEnergies(*energiesFlag)
	if err != nil {
		log.Fatalf("energies: %v", err)
	}

	cache, closeStore, err := openCache(cfg.TableDB)
	if err != nil {
		log.Fatalf("open table store: %v", err)
	}
	defer closeStore()

	p, err := particle.ByName(*particleName)
	if err != nil {
		log.Fatalf("%v", err)
	}
	m, err := medium.ByName(*mediumName)
	if err != nil {
		log.Fatalf("%v", err)
	}
	c, err := cuts.New(*ecut, *vcut, false)
	if err != nil {
		log.Fatalf("%v", err)
	}
	xsCfg := crosssection.Config{Particle: p, Medium: m, Cuts: c, Multiplier: 1}

	factory := crosssection.NewFactoryWith(cache, cfg.Integral())
	xs, err := createCrossSections(factory, xsCfg, *processes, cfg.InterpolationDef())
	if err != nil {
		log.Fatalf("cross sections: %v", err)
	}

	var pu *utility.PropagationUtility
	if *showRange {
		pu, err = utility.New(utility.Definition{Particle: p, Medium: m, Cuts: c, CrossSections: xs, Integral: cfg.Integral()}, cfg.InterpolationDef(), cache)
		if err != nil {
			log.Fatalf("propagation utility: %v", err)
		}
	}

	rows := evaluate(xs, pu, energies)
	if *jsonOut {
		if err := printJSON(rows); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}
	fmt.Printf("%s in %s (ecut=%g MeV, vcut=%g)\n\n", p.Name, m.Name, *ecut, *vcut)
	printTable(rows, *showRange)

	if cache != nil {
		s := cache.Stats()
		fmt.Printf("\nTables: %d built, %d loaded, %d shared\n", s.Builds, s.Loads, s.Hits)
	}
}

// #endregion main

// #region evaluate

type row struct {
	Process string  `json:"process"`
	Energy  float64 `json:"energy"`
	DEdx    float64 `json:"dedx"`
	DNdx    float64 `json:"dndx"`
	Range   float64 `json:"range_cm,omitempty"`
}

func evaluate(xs []crosssection.CrossSection, pu *utility.PropagationUtility, energies []float64) []row {
	var rows []row
	for _, e := range energies {
		var total row
		total.Process, total.Energy = "total", e
		for _, cs := range xs {
			r := row{Process: cs.Parametrization().Name(), Energy: e, DEdx: cs.DEdx(e), DNdx: cs.DNdx(e)}
			total.DEdx += r.DEdx
			total.DNdx += r.DNdx
			rows = append(rows, r)
		}
		if pu != nil && e > pu.Low() {
			total.Range = pu.LengthContinuous(e, pu.Low())
		}
		rows = append(rows, total)
	}
	return rows
}

func createCrossSections(f *crosssection.Factory, cfg crosssection.Config, processes string, def *crosssection.InterpolationDef) ([]crosssection.CrossSection, error) {
	if strings.TrimSpace(processes) == "" {
		return f.StandardCrossSections(cfg, def)
	}
	var out []crosssection.CrossSection
	for _, entry := range strings.Split(processes, ",") {
		famName, name, ok := strings.Cut(strings.TrimSpace(entry), "/")
		if !ok {
			return nil, fmt.Errorf("process %q: want family/name", entry)
		}
		fam, err := crosssection.ParseFamily(famName)
		if err != nil {
			return nil, err
		}
		cs, err := f.CreateCrossSection(fam, name, cfg, def)
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, nil
}

// #endregion evaluate

// #region output

func printTable(rows []row, showRange bool) {
	fmt.Printf("%-30s  %12s  %14s  %14s", "Process", "E [MeV]", "dE/dx [MeV/cm]", "dN/dx [1/cm]")
	if showRange {
		fmt.Printf("  %14s", "Range [cm]")
	}
	fmt.Println()
	for _, r := range rows {
		fmt.Printf("%-30s  %12.4g  %14.6g  %14.6g", r.Process, r.Energy, r.DEdx, r.DNdx)
		if showRange && r.Process == "total" {
			fmt.Printf("  %14.6g", r.Range)
		}
		fmt.Println()
	}
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// #endregion output

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

// openCache opens the table store at path, or a memory-only cache when path
// is empty.
func openCache(path string) (*tablecache.Cache, func(), error) {
	if path == "" {
		return tablecache.New(nil), func() {}, nil
	}
	store, err := tablestore.NewStore(path)
	if err != nil {
		return nil, nil, err
	}
	return tablecache.New(store), func() { store.Close() }, nil
}

// #endregion helpers
