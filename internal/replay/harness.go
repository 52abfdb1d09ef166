// Package replay checks cross-section evaluators against recorded reference
// values.
package replay

import (
	"fmt"

	"github.com/danielpatrickdp/eloss/internal/crosssection"
	"github.com/danielpatrickdp/eloss/internal/eval"
)

// #region types
// ReplayConfig selects the evaluators a fixture is replayed against.
type ReplayConfig struct {
	Factory *crosssection.Factory
	// Def selects interpolation; nil integrates directly.
	Def *crosssection.InterpolationDef
	// Tolerance overrides the fixture tolerance when positive.
	Tolerance float64
}

// DefaultReplayConfig replays with direct integration and no table cache.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{Factory: crosssection.NewFactory(nil)}
}

// ReplayResult captures the outcome of replaying one fixture case.
type ReplayResult struct {
	Parametrization string
	Energy          float64
	Action          string // "match" | "mismatch" | "error"
	Reason          string
	Metrics         []eval.EvalMetric
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalCases int
	Matches    int
	Mismatches int
	Errors     int
	MaxDiff    float64
}

// #endregion types

// #region replay
// Replay evaluates every case of f with evaluators built from config and
// compares them with the recorded values. Evaluators are built once per
// parametrization.
func Replay(f *Fixture, config ReplayConfig) []ReplayResult {
	results := make([]ReplayResult, 0, len(f.Cases))
	if config.Factory == nil {
		config.Factory = crosssection.NewFactory(nil)
	}
	tol := f.Config.Tolerance
	if config.Tolerance > 0 {
		tol = config.Tolerance
	}
	if tol <= 0 {
		tol = eval.DefaultEvalConfig().Tolerance
	}

	cfg, cfgErr := f.Config.ToCrossSectionConfig()
	evaluators := make(map[string]crosssection.CrossSection)
	failures := make(map[string]error)

	for _, c := range f.Cases {
		key := c.Family + "/" + c.Parametrization
		cs, ok := evaluators[key]
		err := failures[key]
		if !ok && err == nil {
			if cfgErr != nil {
				err = cfgErr
			} else {
				cs, err = build(config, c, cfg)
			}
			if err != nil {
				failures[key] = err
			} else {
				evaluators[key] = cs
			}
		}
		if err != nil {
			results = append(results, ReplayResult{
				Parametrization: c.Parametrization,
				Energy:          c.Energy,
				Action:          "error",
				Reason:          err.Error(),
			})
			continue
		}
		results = append(results, compare(cs, c, tol))
	}

	return results
}

func build(config ReplayConfig, c FixtureCase, cfg crosssection.Config) (crosssection.CrossSection, error) {
	fam, err := crosssection.ParseFamily(c.Family)
	if err != nil {
		return nil, err
	}
	return config.Factory.CreateCrossSection(fam, c.Parametrization, cfg, config.Def)
}

func compare(cs crosssection.CrossSection, c FixtureCase, tol float64) ReplayResult {
	r := ReplayResult{Parametrization: c.Parametrization, Energy: c.Energy, Action: "match", Reason: "all quantities within tolerance"}
	quantities := []struct {
		name string
		want float64
		got  float64
	}{
		{"dedx", c.DEdx, cs.DEdx(c.Energy)},
		{"de2dx", c.DE2dx, cs.DE2dx(c.Energy)},
		{"dndx", c.DNdx, cs.DNdx(c.Energy)},
	}
	for _, q := range quantities {
		diff := eval.RelDiff(q.want, q.got)
		pass := diff <= tol
		r.Metrics = append(r.Metrics, eval.EvalMetric{
			Name:      q.name,
			Energy:    c.Energy,
			Reference: q.want,
			Candidate: q.got,
			Value:     diff,
			Pass:      pass,
		})
		if !pass && r.Action == "match" {
			r.Action = "mismatch"
			r.Reason = fmt.Sprintf("%s: recorded %g, got %g (diff %.3g > %.3g)", q.name, q.want, q.got, diff, tol)
		}
	}
	return r
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{TotalCases: len(results)}
	for _, r := range results {
		switch r.Action {
		case "match":
			s.Matches++
		case "mismatch":
			s.Mismatches++
		case "error":
			s.Errors++
		}
		for _, m := range r.Metrics {
			if m.Value > s.MaxDiff {
				s.MaxDiff = m.Value
			}
		}
	}
	return s
}

// #endregion replay
