// Package eval checks that the integration and interpolation strategies of
// a cross section agree.
package eval

import (
	"fmt"

	"github.com/danielpatrickdp/eloss/internal/crosssection"
	"github.com/danielpatrickdp/eloss/internal/numeric"
)

// #region eval-harness
// EvalHarness compares two evaluators of the same parametrization.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run evaluates dEdx, dE2dx and dNdx of both evaluators at every configured
// energy. The evaluators must wrap equal parametrizations.
func (h *EvalHarness) Run(direct, interp crosssection.CrossSection) EvalResult {
	if direct.Parametrization().Hash() != interp.Parametrization().Hash() {
		return EvalResult{
			Reason: fmt.Sprintf("eval failed: %s and %s are different parametrizations",
				direct.Parametrization().Name(), interp.Parametrization().Name()),
		}
	}

	var metrics []EvalMetric
	passed := true
	var failReasons []string

	quantities := []struct {
		name string
		fn   func(crosssection.CrossSection, float64) float64
	}{
		{"dedx", crosssection.CrossSection.DEdx},
		{"de2dx", crosssection.CrossSection.DE2dx},
		{"dndx", crosssection.CrossSection.DNdx},
	}

	for _, e := range h.config.Energies {
		for _, q := range quantities {
			a, b := q.fn(direct, e), q.fn(interp, e)
			diff := RelDiff(a, b)
			pass := diff <= h.config.Tolerance
			metrics = append(metrics, EvalMetric{
				Name:      q.name,
				Energy:    e,
				Reference: a,
				Candidate: b,
				Value:     diff,
				Pass:      pass,
			})
			if !pass {
				passed = false
				failReasons = append(failReasons, fmt.Sprintf("%s at %g MeV differs by %.3g (limit %.3g)", q.name, e, diff, h.config.Tolerance))
			}
		}
	}

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{
		Passed:  passed,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region helpers
// RelDiff is |a-b| relative to the larger magnitude; two zeros agree.
func RelDiff(a, b float64) float64 {
	return numeric.RelDiff(a, b)
}

// #endregion helpers
