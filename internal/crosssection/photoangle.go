package crosssection

import "math"

// #region photoangle
// PhotoAngle samples the polar emission angle of a pair product.
type PhotoAngle interface {
	Name() string
	// Cosine returns cos(theta) for a lepton of total energy e.
	Cosine(e, rnd float64) float64
}

// PhotoAngleKind enumerates the registered photo-angle distributions.
type PhotoAngleKind int

const (
	PhotoAngleTsaiIntegral PhotoAngleKind = iota + 1
	PhotoAngleNoDeflection
	PhotoAngleEGS
)

// NoDeflection keeps the leptons on the photon axis.
type NoDeflection struct{}

func (NoDeflection) Name() string { return "photoanglenodeflection" }
func (NoDeflection) Cosine(_, _ float64) float64 { return 1 }

// EGSAngle uses the fixed characteristic angle me/E of EGS4.
type EGSAngle struct{}

func (EGSAngle) Name() string { return "photoangleegs" }

func (EGSAngle) Cosine(e, _ float64) float64 {
	if e <= ME {
		return 1
	}
	return math.Cos(ME / e)
}

// TsaiIntegralAngle samples u = E theta / me from the screened Tsai
// distribution u/(1+u^2)^2 by inverting its integral u^2/(1+u^2).
type TsaiIntegralAngle struct{}

func (TsaiIntegralAngle) Name() string { return "photoangletsaiintegral" }

func (TsaiIntegralAngle) Cosine(e, rnd float64) float64 {
	if e <= ME || rnd <= 0 {
		return 1
	}
	rnd = math.Min(rnd, 1-1e-12)
	u := math.Sqrt(rnd / (1 - rnd))
	theta := math.Min(u*ME/e, math.Pi)
	return math.Cos(theta)
}

// #endregion photoangle
