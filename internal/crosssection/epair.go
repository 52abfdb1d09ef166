package crosssection

import (
	"math"

	"github.com/danielpatrickdp/eloss/internal/medium"
)

// EpairKKP is direct electron pair production in the field of a nucleus.
type EpairKKP struct {
	base
	lpm bool
}

// NewEpairKelnerKokoulinPetrukhin builds the parametrization.
func NewEpairKelnerKokoulinPetrukhin(cfg Config) (Parametrization, error) {
	b, err := newBase(EpairKelnerKokoulinPetrukhin, cfg)
	if err != nil {
		return nil, err
	}
	return EpairKKP{base: b, lpm: cfg.Options.LPM}, nil
}

// LowerEnergyLimit implements Parametrization.
func (p EpairKKP) LowerEnergyLimit() float64 {
	return p.particle.Mass + 4*ME
}

// IntegralLimits implements Parametrization. The pair needs at least 4 me.
func (p EpairKKP) IntegralLimits(comp medium.Component, energy float64) Limits {
	return p.cutLimits(4*ME/energy, p.screeningVMax(comp, energy), energy)
}

// DifferentialCrossSection implements Parametrization.
func (p EpairKKP) DifferentialCrossSection(comp medium.Component, energy, v float64) float64 {
	lim := p.IntegralLimits(comp, energy)
	if !inRange(lim, v) {
		return 0
	}
	ar := Alpha * ElectronRad
	res := 28 / (27 * math.Pi) * comp.Z * (comp.Z + 1) * ar * ar / v * (1 - v) * math.Log(v/lim.VMin)
	if p.lpm {
		res *= lpmSuppression(p.medium, p.particle.Mass, energy, v)
	}
	return math.Max(0, res)
}

// Hash implements Parametrization.
func (p EpairKKP) Hash() uint64 {
	return p.hasher().Bool(p.lpm).Sum64()
}
