package crosssection

import (
	"math"

	"github.com/danielpatrickdp/eloss/internal/errs"
	"github.com/danielpatrickdp/eloss/internal/medium"
)

// #region crosssection
// CrossSection turns a parametrization into macroscopic quantities. Rates
// are per cm, losses in MeV.
type CrossSection interface {
	// DEdx is the mean continuous energy loss per cm below the cut.
	DEdx(energy float64) float64
	// DE2dx is the second moment of the continuous loss per cm.
	DE2dx(energy float64) float64
	// DNdx is the stochastic interaction rate per cm above the cut.
	DNdx(energy float64) float64
	// DNdxSample returns DNdx and the component index drawn with rnd,
	// weighted by the per component rate; -1 when the rate is zero.
	DNdxSample(energy, rnd float64) (float64, int)
	// StochasticLoss samples an energy loss above the cut. rnd1 selects the
	// component, rnd2 inverts the loss distribution.
	StochasticLoss(energy, rnd1, rnd2 float64) float64
	Parametrization() Parametrization
	// Hash identifies the parametrization and evaluation strategy.
	Hash() uint64
}

// Equal reports whether a and b evaluate identically.
func Equal(a, b CrossSection) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Hash() == b.Hash()
}

// #endregion crosssection

// #region helpers
const (
	// vLowerFraction bounds the continuous integrals away from v = 0, where
	// the radiative cross sections diverge.
	vLowerFraction = 1e-12
	// samplePrecision is the relative tolerance of the loss inversion.
	samplePrecision = 1e-9
)

// checkRnd routes draws outside [0, 1] to Fatal.
func checkRnd(op string, rnds ...float64) {
	for _, r := range rnds {
		if !(r >= 0 && r <= 1) {
			errs.Fatal(errs.Invariant(op, "random number %g outside [0, 1]", r))
		}
	}
}

// checkLimits routes unordered kinematic limits to Fatal.
func checkLimits(p Parametrization, energy float64, lim Limits) {
	if !(lim.VMin <= lim.VUp && lim.VUp <= lim.VMax) {
		errs.Fatal(errs.Invariant("crosssection."+p.Name(), "limits at E=%g not ordered: %+v", energy, lim))
	}
}

// pickComponent draws an index from rates with rnd. rates must not all be
// zero.
func pickComponent(rates []float64, rnd float64) int {
	var total float64
	for _, r := range rates {
		total += r
	}
	target := rnd * total
	last := -1
	var acc float64
	for i, r := range rates {
		if r <= 0 {
			continue
		}
		acc += r
		last = i
		if acc >= target {
			return i
		}
	}
	return last
}

// densities returns the number densities of the medium components.
func densities(m medium.Medium) []float64 {
	out := make([]float64, len(m.Components))
	for i, c := range m.Components {
		out[i] = c.NumberDensity
	}
	return out
}

// mapV maps t in [0, 1] onto [VUp, VMax], logarithmically when VUp > 0.
func mapV(lim Limits, t float64) float64 {
	if lim.VUp > 0 {
		return lim.VUp * math.Pow(lim.VMax/lim.VUp, t)
	}
	return lim.VMax * t
}

// #endregion helpers
