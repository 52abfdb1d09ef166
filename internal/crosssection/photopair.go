package crosssection

import (
	"math"

	"github.com/danielpatrickdp/eloss/internal/medium"
)

// #region photopair
// PhotoPairTsaiParam is photon conversion into an electron pair with the
// Tsai complete screening cross section. v is the energy fraction carried
// by the electron.
type PhotoPairTsaiParam struct {
	base
	angle PhotoAngle
}

// NewPhotoPairTsai builds the parametrization. angle samples the emission
// directions of the pair; nil means no deflection.
func NewPhotoPairTsai(cfg Config, angle PhotoAngle) (Parametrization, error) {
	b, err := newBase(PhotoPairTsai, cfg)
	if err != nil {
		return nil, err
	}
	if angle == nil {
		angle = NoDeflection{}
	}
	return PhotoPairTsaiParam{base: b, angle: angle}, nil
}

// LowerEnergyLimit implements Parametrization.
func (p PhotoPairTsaiParam) LowerEnergyLimit() float64 { return 2 * ME }

// IntegralLimits implements Parametrization. The photon is absorbed, so
// there is no continuous part.
func (p PhotoPairTsaiParam) IntegralLimits(_ medium.Component, energy float64) Limits {
	vMin := ME / energy
	vMax := 1 - ME/energy
	if !(vMax > vMin) {
		return Limits{VMin: vMin, VUp: vMin, VMax: vMin}
	}
	return Limits{VMin: vMin, VUp: vMin, VMax: vMax}
}

// DifferentialCrossSection implements Parametrization.
func (p PhotoPairTsaiParam) DifferentialCrossSection(comp medium.Component, energy, x float64) float64 {
	lim := p.IntegralLimits(comp, energy)
	if !inRange(lim, x) {
		return 0
	}
	z := comp.Z
	lrad := math.Log(183 / math.Cbrt(z))
	shape := (x*x+(1-x)*(1-x)+(2.0/3)*x*(1-x))*lrad + x*(1-x)/9
	return 4 * Alpha * ElectronRad * ElectronRad * z * (z + 1) * shape
}

// Angle returns the photo-angle distribution.
func (p PhotoPairTsaiParam) Angle() PhotoAngle { return p.angle }

// PairAngles samples the polar angle cosines of the electron and positron
// for a conversion at energy with electron fraction x.
func (p PhotoPairTsaiParam) PairAngles(energy, x, rnd1, rnd2 float64) (float64, float64) {
	return p.angle.Cosine(energy*x, rnd1), p.angle.Cosine(energy*(1-x), rnd2)
}

// Hash implements Parametrization.
func (p PhotoPairTsaiParam) Hash() uint64 {
	return p.hasher().String(p.angle.Name()).Sum64()
}

// #endregion photopair
