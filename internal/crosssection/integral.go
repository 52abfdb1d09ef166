package crosssection

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/danielpatrickdp/eloss/internal/errs"
	"github.com/danielpatrickdp/eloss/internal/fingerprint"
	"github.com/danielpatrickdp/eloss/internal/medium"
	"github.com/danielpatrickdp/eloss/internal/numeric"
)

// #region integral
// Integral evaluates a parametrization by direct quadrature at every call.
// It holds no mutable state and may be shared between goroutines.
type Integral struct {
	param Parametrization
	q     numeric.Integral
	hash  uint64
}

// NewIntegral wraps p with the default integrator.
func NewIntegral(p Parametrization) *Integral {
	return NewIntegralWith(p, numeric.DefaultIntegral())
}

// NewIntegralWith wraps p with the integrator q.
func NewIntegralWith(p Parametrization, q numeric.Integral) *Integral {
	return &Integral{
		param: p,
		q:     q,
		hash: fingerprint.Combine(p.Hash(), fingerprint.New().
			String("integral").
			Int(q.Order).
			Int(q.MaxSteps).
			Float64(q.Precision).
			Sum64()),
	}
}

// Parametrization implements CrossSection.
func (c *Integral) Parametrization() Parametrization { return c.param }

// Hash implements CrossSection.
func (c *Integral) Hash() uint64 { return c.hash }

// DEdx implements CrossSection.
func (c *Integral) DEdx(energy float64) float64 {
	if c.param.Multiplier() <= 0 {
		return 0
	}
	return c.param.Multiplier() * c.rawDEdx(energy)
}

// DE2dx implements CrossSection.
func (c *Integral) DE2dx(energy float64) float64 {
	if c.param.Multiplier() <= 0 {
		return 0
	}
	return c.param.Multiplier() * c.rawDE2dx(energy)
}

// DNdx implements CrossSection.
func (c *Integral) DNdx(energy float64) float64 {
	if c.param.Multiplier() <= 0 {
		return 0
	}
	return c.param.Multiplier() * floats.Sum(c.rates(energy))
}

// DNdxSample implements CrossSection.
func (c *Integral) DNdxSample(energy, rnd float64) (float64, int) {
	checkRnd("crosssection.DNdxSample", rnd)
	if c.param.Multiplier() <= 0 {
		return 0, -1
	}
	rates := c.rates(energy)
	total := floats.Sum(rates)
	if total <= 0 {
		return 0, -1
	}
	return c.param.Multiplier() * total, pickComponent(rates, rnd)
}

// StochasticLoss implements CrossSection.
func (c *Integral) StochasticLoss(energy, rnd1, rnd2 float64) float64 {
	checkRnd("crosssection.StochasticLoss", rnd1, rnd2)
	if c.param.Multiplier() <= 0 {
		return 0
	}
	rates := c.rates(energy)
	if floats.Sum(rates) <= 0 {
		return 0
	}
	i := pickComponent(rates, rnd1)
	comp := c.param.Medium().Components[i]
	return energy * c.sampleV(comp, energy, rnd2)
}

// #endregion integral

// #region moments
// rawDEdx is dEdx without the multiplier.
func (c *Integral) rawDEdx(energy float64) float64 {
	return energy * c.continuous(energy, 1)
}

// rawDE2dx is dE2dx without the multiplier.
func (c *Integral) rawDE2dx(energy float64) float64 {
	return energy * energy * c.continuous(energy, 2)
}

// continuous sums n_i * int v^power dsigma/dv over [VMin, VUp].
func (c *Integral) continuous(energy float64, power int) float64 {
	comps := c.param.Medium().Components
	moments := make([]float64, len(comps))
	for i, comp := range comps {
		moments[i] = c.moment(comp, energy, power)
	}
	return math.Max(floats.Dot(densities(c.param.Medium()), moments), 0)
}

func (c *Integral) moment(comp medium.Component, energy float64, power int) float64 {
	lim := c.param.IntegralLimits(comp, energy)
	checkLimits(c.param, energy, lim)
	lo := math.Max(lim.VMin, lim.VUp*vLowerFraction)
	if !(lim.VUp > lo) {
		return 0
	}
	f := func(v float64) float64 {
		w := v
		if power == 2 {
			w = v * v
		}
		return w * c.param.DifferentialCrossSection(comp, energy, v)
	}
	r, err := c.q.Integrate(f, lo, lim.VUp, numeric.LogSubstitution)
	if err != nil {
		errs.Fatal(errs.Wrap(errs.KindNumeric, "crosssection."+c.param.Name()+".continuous", err))
	}
	return r
}

// rates returns n_i * int dsigma/dv over [VUp, VMax] per component,
// without the multiplier.
func (c *Integral) rates(energy float64) []float64 {
	comps := c.param.Medium().Components
	out := make([]float64, len(comps))
	for i, comp := range comps {
		out[i] = math.Max(comp.NumberDensity*c.rate(comp, energy), 0)
	}
	return out
}

// rate is the per atom integral above the cut.
func (c *Integral) rate(comp medium.Component, energy float64) float64 {
	lim := c.param.IntegralLimits(comp, energy)
	checkLimits(c.param, energy, lim)
	return c.cumulative(comp, energy, lim, lim.VMax)
}

// cumulative integrates dsigma/dv from VUp to v.
func (c *Integral) cumulative(comp medium.Component, energy float64, lim Limits, v float64) float64 {
	if !(v > lim.VUp) {
		return 0
	}
	f := func(v float64) float64 { return c.param.DifferentialCrossSection(comp, energy, v) }
	r, err := c.q.Integrate(f, lim.VUp, v, numeric.LogSubstitution)
	if err != nil {
		errs.Fatal(errs.Wrap(errs.KindNumeric, "crosssection."+c.param.Name()+".dNdx", err))
	}
	return r
}

// #endregion moments

// #region sample
// sampleV solves int_{VUp}^{v} dsigma/dv = rnd * int_{VUp}^{VMax} dsigma/dv.
func (c *Integral) sampleV(comp medium.Component, energy, rnd float64) float64 {
	lim := c.param.IntegralLimits(comp, energy)
	checkLimits(c.param, energy, lim)
	switch {
	case !(lim.VMax > lim.VUp) || rnd <= 0:
		return lim.VUp
	case rnd >= 1:
		return lim.VMax
	}
	total := c.cumulative(comp, energy, lim, lim.VMax)
	fdf := func(v float64) (float64, float64) {
		return c.cumulative(comp, energy, lim, v) - rnd*total, c.param.DifferentialCrossSection(comp, energy, v)
	}
	v, err := numeric.FindRoot(fdf, lim.VUp, lim.VMax, mapV(lim, rnd), samplePrecision)
	if err != nil {
		errs.Fatal(errs.Wrap(errs.KindNumeric, "crosssection."+c.param.Name()+".StochasticLoss", err))
	}
	return v
}

// #endregion sample
