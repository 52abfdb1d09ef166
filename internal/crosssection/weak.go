package crosssection

import (
	"math"

	"github.com/danielpatrickdp/eloss/internal/medium"
)

// WeakCSMS is charged current scattering on nucleons. The lepton is
// absorbed, so every interaction is stochastic and vUp is zero.
type WeakCSMS struct {
	base
}

// NewWeakCooperSarkarMertsch builds the parametrization.
func NewWeakCooperSarkarMertsch(cfg Config) (Parametrization, error) {
	b, err := newBase(WeakCooperSarkarMertsch, cfg)
	if err != nil {
		return nil, err
	}
	return WeakCSMS{base: b}, nil
}

// LowerEnergyLimit implements Parametrization.
func (p WeakCSMS) LowerEnergyLimit() float64 { return p.particle.Mass }

// IntegralLimits implements Parametrization. Cuts do not apply.
func (p WeakCSMS) IntegralLimits(_ medium.Component, energy float64) Limits {
	vMax := 1 - p.particle.Mass/energy
	if !(vMax > 0) {
		return Limits{}
	}
	return Limits{VMin: 0, VUp: 0, VMax: vMax}
}

// DifferentialCrossSection implements Parametrization.
func (p WeakCSMS) DifferentialCrossSection(comp medium.Component, energy, v float64) float64 {
	lim := p.IntegralLimits(comp, energy)
	if !inRange(lim, v) {
		return 0
	}
	egev := energy * 1e-3
	sigma := 0.677e-38 * egev / math.Pow(1+egev/1e4, 0.64)
	return comp.A * sigma * 0.75 * (1 + (1-v)*(1-v))
}

// Hash implements Parametrization.
func (p WeakCSMS) Hash() uint64 {
	return p.hasher().Sum64()
}
