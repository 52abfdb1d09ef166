package crosssection

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/danielpatrickdp/eloss/internal/errs"
	"github.com/danielpatrickdp/eloss/internal/fingerprint"
	"github.com/danielpatrickdp/eloss/internal/numeric"
	"github.com/danielpatrickdp/eloss/internal/tablecache"
	"github.com/danielpatrickdp/eloss/internal/tablestore"
)

// #region interpolant
// Interpolant evaluates a parametrization from precomputed tables. Tables
// hold the quantities without the multiplier and are shared through the
// cache under the fingerprint of parametrization, integrator and definition.
// The energy tables are split at the kinks of the parametrization. Energies
// outside the tabulated domain, and table cells that missed direct
// integration at build time, are integrated directly.
type Interpolant struct {
	direct *Integral
	def    InterpolationDef
	cache  *tablecache.Cache
	low    float64
	hash   uint64

	kinks []float64

	dedx  energyTable
	de2dx energyTable
	dndx  []energyTable
	cdf   []*numeric.Interpolant2D
}

// NewInterpolant builds or loads the tables of p with the default
// integrator. cache may be nil, in which case the tables are private to the
// evaluator.
func NewInterpolant(p Parametrization, def InterpolationDef, cache *tablecache.Cache) (*Interpolant, error) {
	return NewInterpolantWith(p, def, numeric.DefaultIntegral(), cache)
}

// NewInterpolantWith builds or loads the tables of p, integrating the nodes
// and the cells that fall back to direct evaluation with q.
func NewInterpolantWith(p Parametrization, def InterpolationDef, q numeric.Integral, cache *tablecache.Cache) (*Interpolant, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	low := math.Max(p.Particle().Low, p.LowerEnergyLimit())
	if !(low > 0 && low < def.MaxNodeEnergy) {
		return nil, errs.Configuration("crosssection.NewInterpolant", "%s: empty energy domain [%g, %g]", p.Name(), low, def.MaxNodeEnergy)
	}
	direct := NewIntegralWith(p, q)
	c := &Interpolant{
		direct: direct,
		def:    def,
		cache:  cache,
		low:    low,
		hash:   fingerprint.Combine(direct.Hash(), def.Hash()),
	}
	if p.Multiplier() <= 0 {
		return c, nil
	}
	if err := c.build(); err != nil {
		return nil, fmt.Errorf("crosssection: tables for %s: %w", p.Name(), err)
	}
	return c, nil
}

// Parametrization implements CrossSection.
func (c *Interpolant) Parametrization() Parametrization { return c.direct.param }

// Hash implements CrossSection.
func (c *Interpolant) Hash() uint64 { return c.hash }

// Definition returns the table definition.
func (c *Interpolant) Definition() InterpolationDef { return c.def }

func (c *Interpolant) multiplier() float64 { return c.direct.param.Multiplier() }

func (c *Interpolant) tabulated(energy float64) bool {
	return energy >= c.low && energy <= c.def.MaxNodeEnergy
}

// DEdx implements CrossSection.
func (c *Interpolant) DEdx(energy float64) float64 {
	if c.multiplier() <= 0 {
		return 0
	}
	if !c.tabulated(energy) {
		return c.direct.DEdx(energy)
	}
	return c.multiplier() * math.Max(c.dedx.at(energy), 0)
}

// DE2dx implements CrossSection.
func (c *Interpolant) DE2dx(energy float64) float64 {
	if c.multiplier() <= 0 {
		return 0
	}
	if !c.tabulated(energy) {
		return c.direct.DE2dx(energy)
	}
	return c.multiplier() * math.Max(c.de2dx.at(energy), 0)
}

// DNdx implements CrossSection.
func (c *Interpolant) DNdx(energy float64) float64 {
	if c.multiplier() <= 0 {
		return 0
	}
	if !c.tabulated(energy) {
		return c.direct.DNdx(energy)
	}
	return c.multiplier() * floats.Sum(c.rates(energy))
}

// DNdxSample implements CrossSection.
func (c *Interpolant) DNdxSample(energy, rnd float64) (float64, int) {
	checkRnd("crosssection.DNdxSample", rnd)
	if c.multiplier() <= 0 {
		return 0, -1
	}
	if !c.tabulated(energy) {
		return c.direct.DNdxSample(energy, rnd)
	}
	rates := c.rates(energy)
	total := floats.Sum(rates)
	if total <= 0 {
		return 0, -1
	}
	return c.multiplier() * total, pickComponent(rates, rnd)
}

// StochasticLoss implements CrossSection.
func (c *Interpolant) StochasticLoss(energy, rnd1, rnd2 float64) float64 {
	checkRnd("crosssection.StochasticLoss", rnd1, rnd2)
	if c.multiplier() <= 0 {
		return 0
	}
	if !c.tabulated(energy) {
		return c.direct.StochasticLoss(energy, rnd1, rnd2)
	}
	rates := c.rates(energy)
	if floats.Sum(rates) <= 0 {
		return 0
	}
	i := pickComponent(rates, rnd1)
	comp := c.direct.param.Medium().Components[i]
	lim := c.direct.param.IntegralLimits(comp, energy)
	checkLimits(c.direct.param, energy, lim)
	if !(lim.VMax > lim.VUp) {
		return energy * lim.VUp
	}
	t, err := c.cdf[i].FindLimit(energy, rnd2)
	if err != nil {
		errs.Fatal(errs.Wrap(errs.KindNumeric, "crosssection."+c.direct.param.Name()+".StochasticLoss", err))
	}
	t = math.Min(math.Max(t, 0), 1)
	return energy * mapV(lim, t)
}

func (c *Interpolant) rates(energy float64) []float64 {
	out := make([]float64, len(c.dndx))
	for i, t := range c.dndx {
		out[i] = math.Max(t.at(energy), 0)
	}
	return out
}

// #endregion interpolant

// #region build
func (c *Interpolant) key(name string) tablestore.Key {
	return tablestore.Key{Fingerprint: c.hash, Name: name}
}

func (c *Interpolant) table1D(name string, def numeric.Definition1D, build func() (*numeric.Interpolant, error)) (*numeric.Interpolant, error) {
	if c.cache == nil {
		return build()
	}
	return c.cache.Get1D(c.key(name), def, build)
}

func (c *Interpolant) table2D(name string, def numeric.Definition2D, row func(x float64, ys, out []float64) error) (*numeric.Interpolant2D, error) {
	build := func() (*numeric.Interpolant2D, error) { return numeric.BuildRows(def, row) }
	if c.cache == nil {
		return build()
	}
	return c.cache.Get2D(c.key(name), def, build)
}

// tabulate builds f in one piece per interval between the kinks and
// checks every piece against f. Piece k is stored as name/k, its cell mask
// as name/k/direct.
func (c *Interpolant) tabulate(name string, def numeric.Definition1D, f func(float64) float64) (energyTable, error) {
	axes := numeric.SplitAxis(def.X, c.kinks)
	parts := make([]*numeric.Interpolant, len(axes))
	masks := make([]*numeric.Interpolant, len(axes))
	exact := func(_ int, energy float64) float64 { return f(energy) }
	for k, axis := range axes {
		d := def
		d.X = axis
		piece := fmt.Sprintf("%s/%d", name, k)
		ip, err := c.table1D(piece, d, func() (*numeric.Interpolant, error) { return numeric.Build1D(d, f) })
		if err != nil {
			return energyTable{}, err
		}
		mask, err := c.table1D(piece+"/direct", numeric.MaskDefinition(d), func() (*numeric.Interpolant, error) {
			return numeric.CheckCells(ip, exact, cellTolerance)
		})
		if err != nil {
			return energyTable{}, err
		}
		parts[k], masks[k] = ip, mask
	}
	pw, err := numeric.NewPiecewise(parts, masks)
	if err != nil {
		return energyTable{}, err
	}
	return energyTable{pw: pw, f: f}, nil
}

func (c *Interpolant) build() error {
	p := c.direct.param
	c.kinks = KinkEnergies(p, c.low, c.def.MaxNodeEnergy)

	energyDef := c.def.EnergyTable(c.low, c.def.NodesCrossSection)
	dedxDef := energyDef
	dedxDef.X.Rational = true

	var err error
	if c.dedx, err = c.tabulate("dEdx", dedxDef, c.direct.rawDEdx); err != nil {
		return err
	}
	if c.de2dx, err = c.tabulate("dE2dx", c.def.EnergyTable(c.low, c.def.NodesContinuousRandomization), c.direct.rawDE2dx); err != nil {
		return err
	}

	comps := p.Medium().Components
	c.dndx = make([]energyTable, len(comps))
	c.cdf = make([]*numeric.Interpolant2D, len(comps))
	for i, comp := range comps {
		rate := func(energy float64) float64 {
			return math.Max(comp.NumberDensity*c.direct.rate(comp, energy), 0)
		}
		if c.dndx[i], err = c.tabulate(fmt.Sprintf("dNdx_%d", i), energyDef, rate); err != nil {
			return err
		}
		row := func(energy float64, ts, out []float64) error {
			return c.cdfRow(i, energy, ts, out)
		}
		if c.cdf[i], err = c.table2D(fmt.Sprintf("dNdx_cdf_%d", i), c.def.samplingTable(c.low), row); err != nil {
			return err
		}
	}
	return nil
}

// cdfRow fills the normalized cumulative rate at the v nodes mapped from ts.
// A row without stochastic range is the identity.
func (c *Interpolant) cdfRow(i int, energy float64, ts, out []float64) error {
	comp := c.direct.param.Medium().Components[i]
	lim := c.direct.param.IntegralLimits(comp, energy)
	if !(lim.VMin <= lim.VUp && lim.VUp <= lim.VMax) {
		return errs.Invariant("crosssection.cdfRow", "limits at E=%g not ordered: %+v", energy, lim)
	}
	if !(lim.VMax > lim.VUp) {
		copy(out, ts)
		return nil
	}
	f := func(v float64) float64 { return c.direct.param.DifferentialCrossSection(comp, energy, v) }
	prev := lim.VUp
	var acc float64
	for j, t := range ts {
		v := mapV(lim, t)
		if j == len(ts)-1 {
			v = lim.VMax
		}
		if v > prev {
			part, err := c.direct.q.Integrate(f, prev, v, numeric.LogSubstitution)
			if err != nil {
				return err
			}
			acc += math.Max(part, 0)
			prev = v
		}
		out[j] = acc
	}
	if !(acc > 0) {
		copy(out, ts)
		return nil
	}
	for j := range out {
		out[j] /= acc
	}
	return nil
}

// #endregion build
