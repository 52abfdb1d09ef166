package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

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
	dbPath := flag.String("db", "", "table database; defaults to ELOSS_TABLE_DB")
	particles := flag.String("particles", "MuMinus,MuPlus,TauMinus,TauPlus", "comma separated particles")
	media := flag.String("media", "water,ice,standardrock", "comma separated media")
	ecut := flag.Float64("ecut", 500, "absolute energy cut in MeV, negative for none")
	vcut := flag.Float64("vcut", 0.05, "relative energy cut, negative for none")
	contRand := flag.Bool("contrand", true, "also build continuous randomization tables")
	scatter := flag.String("scattering", "highland", "scattering model, empty for none")
	workers := flag.Int("workers", 2, "configurations built concurrently")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *dbPath == "" {
		*dbPath = cfg.TableDB
	}
	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: buildtables --db path/to/tables.db [--particles list] [--media list]")
		os.Exit(2)
	}
	def := cfg.InterpolationDef()
	if def == nil {
		log.Fatalf("interpolation is disabled (ELOSS_INTERPOLATE=false); nothing to build")
	}
	c, err := cuts.New(*ecut, *vcut, *contRand)
	if err != nil {
		log.Fatalf("%v", err)
	}

	var jobs []job
	for _, pn := range splitList(*particles) {
		p, err := particle.ByName(pn)
		if err != nil {
			log.Fatalf("%v", err)
		}
		for _, mn := range splitList(*media) {
			m, err := medium.ByName(mn)
			if err != nil {
				log.Fatalf("%v", err)
			}
			jobs = append(jobs, job{particle: p, medium: m})
		}
	}

	store, err := tablestore.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()
	cache := tablecache.New(store)
	factory := crosssection.NewFactoryWith(cache, cfg.Integral())

	fmt.Println("=== Table Build ===")
	fmt.Printf("  DB: %s | Configurations: %d | Workers: %d\n", *dbPath, len(jobs), *workers)
	fmt.Printf("  Nodes: %d x %d (cross sections), %d (propagation) | Max energy: %g MeV\n",
		def.NodesCrossSection, def.NodesCrossSectionV, def.NodesPropagate, def.MaxNodeEnergy)

	start := time.Now()
	var done atomic.Int64
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*workers)
	for _, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := j.build(factory, c, *scatter, def, cache); err != nil {
				return fmt.Errorf("%s in %s: %w", j.particle.Name, j.medium.Name, err)
			}
			fmt.Printf("  [%d/%d] %s in %s\n", done.Add(1), len(jobs), j.particle.Name, j.medium.Name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("build: %v", err)
	}

	s := cache.Stats()
	fmt.Printf("\n=== Build Complete ===\n")
	fmt.Printf("  Tables built: %d\n", s.Builds)
	fmt.Printf("  Tables loaded: %d\n", s.Loads)
	fmt.Printf("  Shared in memory: %d\n", s.Hits)
	fmt.Printf("  Elapsed: %s\n", time.Since(start).Round(time.Millisecond))
}

// #endregion main

// #region job

type job struct {
	particle particle.Definition
	medium   medium.Medium
}

// build creates the standard cross sections and the propagation utility of
// one configuration; every table goes through the cache and into the store.
func (j job) build(f *crosssection.Factory, c cuts.Settings, scatter string, def *crosssection.InterpolationDef, cache *tablecache.Cache) error {
	xsCfg := crosssection.Config{Particle: j.particle, Medium: j.medium, Cuts: c, Multiplier: 1}
	xs, err := f.StandardCrossSections(xsCfg, def)
	if err != nil {
		return err
	}
	if j.particle.Mass == 0 {
		return nil
	}
	_, err = utility.New(utility.Definition{
		Particle:      j.particle,
		Medium:        j.medium,
		Cuts:          c,
		CrossSections: xs,
		Scattering:    scatter,
		ExactTime:     true,
		Integral:      f.Integral(),
	}, def, cache)
	return err
}

// #endregion job

// #region helpers
func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// #endregion helpers
