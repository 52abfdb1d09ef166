package crosssection

import (
	"math"

	"github.com/danielpatrickdp/eloss/internal/medium"
)

// #region kkp
// BremsKKP is muon bremsstrahlung with the Kelner-Kokoulin-Petrukhin
// screening function.
type BremsKKP struct {
	base
	lpm bool
}

// NewBremsKelnerKokoulinPetrukhin builds the parametrization.
func NewBremsKelnerKokoulinPetrukhin(cfg Config) (Parametrization, error) {
	b, err := newBase(BremsKelnerKokoulinPetrukhin, cfg)
	if err != nil {
		return nil, err
	}
	return BremsKKP{base: b, lpm: cfg.Options.LPM}, nil
}

// LowerEnergyLimit implements Parametrization.
func (p BremsKKP) LowerEnergyLimit() float64 { return p.particle.Mass }

// IntegralLimits implements Parametrization.
func (p BremsKKP) IntegralLimits(comp medium.Component, energy float64) Limits {
	return p.cutLimits(0, p.screeningVMax(comp, energy), energy)
}

// DifferentialCrossSection implements Parametrization.
func (p BremsKKP) DifferentialCrossSection(comp medium.Component, energy, v float64) float64 {
	lim := p.IntegralLimits(comp, energy)
	if v <= 0 || !inRange(lim, v) {
		return 0
	}
	m := p.particle.Mass
	bz := BremsScreenB / math.Cbrt(comp.Z)
	delta := m * m * v / (2 * energy * (1 - v))
	phi := math.Log(bz * m / ME / (1 + delta*SqrtE*bz/ME))
	if phi <= 0 {
		return 0
	}
	res := bremsPrefactor(comp, m) / v * ((4.0/3)*(1-v) + v*v) * phi
	if p.lpm {
		res *= lpmSuppression(p.medium, m, energy, v)
	}
	return res
}

// Hash implements Parametrization.
func (p BremsKKP) Hash() uint64 {
	return p.hasher().Bool(p.lpm).Sum64()
}

// #endregion kkp

// #region complete-screening
// BremsScreened is bremsstrahlung in the complete screening limit.
type BremsScreened struct {
	base
	lpm bool
}

// NewBremsCompleteScreening builds the parametrization.
func NewBremsCompleteScreening(cfg Config) (Parametrization, error) {
	b, err := newBase(BremsCompleteScreening, cfg)
	if err != nil {
		return nil, err
	}
	return BremsScreened{base: b, lpm: cfg.Options.LPM}, nil
}

// LowerEnergyLimit implements Parametrization.
func (p BremsScreened) LowerEnergyLimit() float64 { return p.particle.Mass }

// IntegralLimits implements Parametrization.
func (p BremsScreened) IntegralLimits(comp medium.Component, energy float64) Limits {
	return p.cutLimits(0, p.screeningVMax(comp, energy), energy)
}

// DifferentialCrossSection implements Parametrization.
func (p BremsScreened) DifferentialCrossSection(comp medium.Component, energy, v float64) float64 {
	lim := p.IntegralLimits(comp, energy)
	if v <= 0 || !inRange(lim, v) {
		return 0
	}
	m := p.particle.Mass
	z := comp.Z
	lrad := math.Log(BremsScreenB / math.Cbrt(z) * m / ME)
	lradP := math.Log(1194 / math.Cbrt(z*z) * m / ME)
	pre := 4 * Alpha * ElectronRad * ElectronRad * (ME / m) * (ME / m)
	res := pre / v * (((4.0/3)*(1-v)+v*v)*(z*z*lrad+z*lradP) + (1-v)*(z*z+z)/9)
	if p.lpm {
		res *= lpmSuppression(p.medium, m, energy, v)
	}
	return res
}

// Hash implements Parametrization.
func (p BremsScreened) Hash() uint64 {
	return p.hasher().Bool(p.lpm).Sum64()
}

// #endregion complete-screening

// #region helpers
func bremsPrefactor(comp medium.Component, m float64) float64 {
	r := ME / m
	return comp.Z * (comp.Z + 1) * 4 * Alpha * ElectronRad * ElectronRad * r * r
}

// lpmSuppression is a smooth LPM factor in (0, 1]; it tends to 1 away from
// the soft end of the spectrum.
func lpmSuppression(med medium.Medium, m, energy, v float64) float64 {
	r := m / ME
	elpm := 7.7e6 * med.RadiationLengthCM() * r * r
	s2 := elpm * v / (8 * energy * (1 - v))
	return math.Sqrt(s2 / (1 + s2))
}

// #endregion helpers
