// Package cuts splits energy losses into a continuous and a stochastic part.
package cuts

import (
	"math"

	"github.com/danielpatrickdp/eloss/internal/errs"
	"github.com/danielpatrickdp/eloss/internal/fingerprint"
)

// Settings holds the normalised cut bounds. The zero value is invalid;
// build with New.
type Settings struct {
	Ecut     float64 // absolute cut in MeV, +Inf when unused
	Vcut     float64 // relative cut in (0, 1], 1 when unused
	ContRand bool    // continuous losses are randomized
}

// New normalises the bounds: ecut <= 0 disables the absolute cut, vcut
// outside (0, 1] disables the relative one. At least one must remain.
func New(ecut, vcut float64, contRand bool) (Settings, error) {
	if math.IsNaN(ecut) || math.IsNaN(vcut) {
		return Settings{}, errs.Configuration("cuts.New", "NaN cut (ecut=%g, vcut=%g)", ecut, vcut)
	}
	if ecut <= 0 {
		ecut = math.Inf(1)
	}
	if vcut <= 0 || vcut > 1 {
		vcut = 1
	}
	if math.IsInf(ecut, 1) && vcut == 1 {
		return Settings{}, errs.Configuration("cuts.New", "neither ecut nor vcut bounds the continuous losses")
	}
	return Settings{Ecut: ecut, Vcut: vcut, ContRand: contRand}, nil
}

// Cut returns the relative cut min(ecut/E, vcut) at energy E.
func (s Settings) Cut(energy float64) float64 {
	return math.Min(s.Ecut/energy, s.Vcut)
}

// Hash is the fingerprint of the settings.
func (s Settings) Hash() uint64 {
	return fingerprint.New().String("cuts").Float64(s.Ecut).Float64(s.Vcut).Bool(s.ContRand).Sum64()
}
