package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/eloss/internal/config"
	"github.com/danielpatrickdp/eloss/internal/crosssection"
	"github.com/danielpatrickdp/eloss/internal/replay"
	"github.com/danielpatrickdp/eloss/internal/tablecache"
	"github.com/danielpatrickdp/eloss/internal/tablestore"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	direct := flag.Bool("direct", false, "replay with direct integration even if interpolation is configured")
	tolerance := flag.Float64("tolerance", 0, "relative tolerance; 0 keeps the fixture value")
	verbose := flag.Bool("v", false, "print every case, not only the divergent ones")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--direct] [--tolerance x] [-v]")
		os.Exit(2)
	}

	os.Exit(run(*fixturePath, *direct, *tolerance, *verbose))
}

// #endregion main

// #region run

func run(path string, direct bool, tolerance float64, verbose bool) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	var store *tablestore.Store
	if cfg.TableDB != "" {
		store, err = tablestore.NewStore(cfg.TableDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open db: %v\n", err)
			return 2
		}
		defer store.Close()
	}

	rc := replay.ReplayConfig{
		Factory:   crosssection.NewFactoryWith(tablecache.New(store), cfg.Integral()),
		Def:       cfg.InterpolationDef(),
		Tolerance: tolerance,
	}
	if direct {
		rc.Def = nil
	}
	strategy := "interpolation"
	if rc.Def == nil {
		strategy = "integration"
	}

	fmt.Printf("Fixture: %s\n", f.Description)
	fmt.Printf("  %s in %s | ecut=%g vcut=%g | strategy: %s\n\n", f.Config.Particle, f.Config.Medium, f.Config.Ecut, f.Config.Vcut, strategy)

	results := replay.Replay(f, rc)
	return printComparison(results, verbose)
}

// printComparison outputs a comparison table and returns the exit code.
func printComparison(results []replay.ReplayResult, verbose bool) int {
	fmt.Printf("%-30s| %-12s| %-10s| %s\n", "Parametrization", "Energy", "Result", "Reason")
	fmt.Printf("%-30s+%-12s+%-10s+%s\n",
		"------------------------------", "-------------", "-----------", "------")

	for _, r := range results {
		if r.Action == "match" && !verbose {
			continue
		}
		fmt.Printf("%-30s| %-12.4g| %-10s| %s\n", r.Parametrization, r.Energy, r.Action, r.Reason)
	}

	s := replay.Summarize(results)
	fmt.Printf("\nSummary: %d total, %d match, %d mismatch, %d error (max diff %.3g)\n",
		s.TotalCases, s.Matches, s.Mismatches, s.Errors, s.MaxDiff)

	if s.Mismatches > 0 || s.Errors > 0 {
		return 1
	}
	return 0
}

// #endregion run
