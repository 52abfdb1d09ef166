package utility

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/danielpatrickdp/eloss/internal/crosssection"
	"github.com/danielpatrickdp/eloss/internal/cuts"
	"github.com/danielpatrickdp/eloss/internal/errs"
	"github.com/danielpatrickdp/eloss/internal/fingerprint"
	"github.com/danielpatrickdp/eloss/internal/medium"
	"github.com/danielpatrickdp/eloss/internal/numeric"
	"github.com/danielpatrickdp/eloss/internal/particle"
	"github.com/danielpatrickdp/eloss/internal/scattering"
	"github.com/danielpatrickdp/eloss/internal/tablecache"
	"github.com/danielpatrickdp/eloss/internal/tablestore"
)

// SpeedOfLight in cm/s.
const SpeedOfLight = 2.99792458e10

// #region definition
// Definition is one propagation configuration.
type Definition struct {
	Particle      particle.Definition
	Medium        medium.Medium
	Cuts          cuts.Settings
	CrossSections []crosssection.CrossSection
	// Scattering names a model of the scattering registry; empty disables
	// deflection.
	Scattering string
	// ExactTime integrates the velocity instead of assuming c.
	ExactTime bool
	// Integral integrates the utilities. The zero value selects
	// numeric.DefaultIntegral.
	Integral numeric.Integral
}

func (d Definition) integral() numeric.Integral {
	if d.Integral == (numeric.Integral{}) {
		return numeric.DefaultIntegral()
	}
	return d.Integral
}

func (d Definition) validate() error {
	const op = "utility.New"
	switch {
	case d.Particle.Mass <= 0:
		return errs.Configuration(op, "%s is massless", d.Particle.Name)
	case !(d.Particle.Low > d.Particle.Mass):
		return errs.Configuration(op, "%s: lowest energy %g not above the mass", d.Particle.Name, d.Particle.Low)
	case len(d.CrossSections) == 0:
		return errs.Configuration(op, "no cross sections")
	}
	for _, cs := range d.CrossSections {
		p := cs.Parametrization()
		if p.Particle() != d.Particle {
			return errs.Configuration(op, "%s is built for %s, not %s", p.Name(), p.Particle().Name, d.Particle.Name)
		}
		if !p.Medium().Equal(d.Medium) {
			return errs.Configuration(op, "%s is built for %s, not %s", p.Name(), p.Medium().Name, d.Medium.Name)
		}
	}
	return nil
}

// #endregion definition

// #region propagation
// PropagationUtility answers the questions of a Monte Carlo stepper for one
// configuration. Use Clone to give each goroutine its own memo state.
type PropagationUtility struct {
	def  Definition
	low  float64
	hash uint64

	displacement Utility
	interaction  Utility
	decay        Utility // nil for stable particles
	time         Utility // nil unless ExactTime
	contRand     Utility // nil unless the cuts ask for randomization
	scatter      scattering.Scattering
	scatterIn    Utility // integrator of scatter, nil without one
	scatterNew   scattering.Constructor
}

// New builds the utilities of def. idef selects interpolation; nil
// integrates directly. cache may be nil.
func New(def Definition, idef *crosssection.InterpolationDef, cache *tablecache.Cache) (*PropagationUtility, error) {
	if err := def.validate(); err != nil {
		return nil, err
	}
	if idef != nil {
		if err := idef.Validate(); err != nil {
			return nil, err
		}
	}

	q := def.integral()
	h := fingerprint.New().
		String("propagationutility").
		Uint64(def.Particle.Hash()).
		Uint64(def.Medium.Hash()).
		Uint64(def.Cuts.Hash()).
		Int(q.Order).
		Int(q.MaxSteps).
		Float64(q.Precision)
	for _, cs := range def.CrossSections {
		h.Uint64(cs.Hash())
	}
	if idef != nil {
		h.Uint64(idef.Hash())
	}

	u := &PropagationUtility{def: def, low: def.Particle.Low, hash: h.Sum64()}
	in := integrands{xs: def.CrossSections, p: def.Particle}

	var kinks []float64
	if idef != nil {
		for _, cs := range def.CrossSections {
			kinks = append(kinks, crosssection.KinkEnergies(cs.Parametrization(), u.low, idef.MaxNodeEnergy)...)
		}
	}
	build := func(name string, f func(float64) float64, nodes int) (Utility, error) {
		if idef == nil {
			return NewIntegralWith(f, u.low, q), nil
		}
		key := tablestore.Key{Fingerprint: u.hash, Name: name}
		spec := TableSpec{Def: tableDefinition(*idef, u.low, nodes), Kinks: kinks, Integral: q}
		ip, err := NewInterpolant(f, spec, key, cache)
		if err != nil {
			return nil, fmt.Errorf("utility: %s table: %w", name, err)
		}
		return ip, nil
	}
	var propagate, contRand int
	if idef != nil {
		propagate, contRand = idef.NodesPropagate, idef.NodesContinuousRandomization
	}

	var err error
	if u.displacement, err = build("displacement", in.displacement, propagate); err != nil {
		return nil, err
	}
	if u.interaction, err = build("interaction", in.interaction, propagate); err != nil {
		return nil, err
	}
	if !def.Particle.Stable() {
		if u.decay, err = build("decay", in.decay, propagate); err != nil {
			return nil, err
		}
	}
	if def.ExactTime {
		if u.time, err = build("time", in.time, propagate); err != nil {
			return nil, err
		}
	}
	if def.Cuts.ContRand {
		if u.contRand, err = build("contrand", in.contRand, contRand); err != nil {
			return nil, err
		}
	}
	if def.Scattering != "" {
		if err = u.newScattering(func() (Utility, error) {
			return build("scattering", in.scattering, propagate)
		}); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// Clone returns a utility sharing all tables with fresh memos. The
// scattering model is rebuilt over a clone of its integrator.
func (u *PropagationUtility) Clone() *PropagationUtility {
	c := *u
	for _, p := range []*Utility{&c.displacement, &c.interaction, &c.decay, &c.time, &c.contRand} {
		if *p != nil {
			*p = (*p).Clone()
		}
	}
	if u.scatterIn != nil {
		c.scatterIn = u.scatterIn.Clone()
		sc, err := u.scatterNew(u.def.Particle, u.def.Medium, c.scatterIn)
		if err != nil {
			errs.Fatal(errs.Wrap(errs.KindConfiguration, "utility.Clone", err))
		}
		c.scatter = sc
	}
	return &c
}

// Definition returns the configuration.
func (u *PropagationUtility) Definition() Definition { return u.def }

// Hash identifies the configuration and strategy.
func (u *PropagationUtility) Hash() uint64 { return u.hash }

// Low is the lowest tracked energy.
func (u *PropagationUtility) Low() float64 { return u.low }

// #endregion propagation

// #region stepper
// EnergyInteraction returns the energy at which the next stochastic
// interaction happens, drawn with rnd in (0, 1].
func (u *PropagationUtility) EnergyInteraction(ei, rnd float64) float64 {
	checkUniform("utility.EnergyInteraction", rnd)
	return u.interaction.GetUpperLimit(ei, -math.Log(rnd))
}

// EnergyDecay returns the energy at which the particle decays, or the lower
// limit for stable particles.
func (u *PropagationUtility) EnergyDecay(ei, rnd float64) float64 {
	checkUniform("utility.EnergyDecay", rnd)
	if u.decay == nil {
		return u.low
	}
	return u.decay.GetUpperLimit(ei, -math.Log(rnd))
}

// EnergyDistance returns the energy after distance cm of continuous loss.
func (u *PropagationUtility) EnergyDistance(ei, distance float64) float64 {
	return u.displacement.GetUpperLimit(ei, distance)
}

// LengthContinuous returns the distance in cm over which continuous losses
// take the energy from ei to ef.
func (u *PropagationUtility) LengthContinuous(ei, ef float64) float64 {
	return u.displacement.Calculate(ei, ef)
}

// ElapsedTime returns the time in s spent between ei and ef over distance
// cm.
func (u *PropagationUtility) ElapsedTime(ei, ef, distance float64) float64 {
	if u.time == nil {
		return distance / SpeedOfLight
	}
	return u.time.Calculate(ei, ef)
}

// EnergyRandomize smears the continuous loss from ei to ef with a gaussian
// truncated to [low, ei]. Without randomization ef is returned.
func (u *PropagationUtility) EnergyRandomize(ei, ef, rnd float64) float64 {
	checkUniform("utility.EnergyRandomize", rnd)
	if u.contRand == nil || ef >= ei {
		return ef
	}
	variance := u.contRand.Calculate(ei, ef)
	if !(variance > 0) {
		return ef
	}
	sigma := math.Sqrt(variance)
	lo := math.Erf((u.low - ef) / (math.Sqrt2 * sigma))
	hi := math.Erf((ei - ef) / (math.Sqrt2 * sigma))
	x := ef + math.Sqrt2*sigma*math.Erfinv(lo+rnd*(hi-lo))
	if math.IsNaN(x) {
		return ef
	}
	return math.Min(math.Max(x, u.low), ei)
}

// TypeInteraction returns the index of the cross section that interacts at
// energy, drawn with rnd weighted by the rates; -1 if no process can.
func (u *PropagationUtility) TypeInteraction(energy, rnd float64) int {
	checkUniform("utility.TypeInteraction", rnd)
	rates := make([]float64, len(u.def.CrossSections))
	var total float64
	for i, cs := range u.def.CrossSections {
		rates[i] = cs.DNdx(energy)
		total += rates[i]
	}
	if !(total > 0) {
		return -1
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

// EnergyStochasticloss selects the interacting process with rnd1 and samples
// its loss with rnd2 and rnd3. It returns the loss in MeV and the process
// index, -1 if no process can interact.
func (u *PropagationUtility) EnergyStochasticloss(energy, rnd1, rnd2, rnd3 float64) (float64, int) {
	i := u.TypeInteraction(energy, rnd1)
	if i < 0 {
		return 0, -1
	}
	return u.def.CrossSections[i].StochasticLoss(energy, rnd2, rnd3), i
}

// Scatter deflects the direction after distance cm between ei and ef.
func (u *PropagationUtility) Scatter(distance, ei, ef float64, direction r3.Vec, rnd [4]float64) (r3.Vec, r3.Vec) {
	if u.scatter == nil {
		return direction, direction
	}
	return u.scatter.Scatter(distance, ei, ef, direction, rnd)
}

func checkUniform(op string, rnd float64) {
	if !(rnd >= 0 && rnd <= 1) {
		errs.Fatal(errs.Invariant(op, "random number %g outside [0, 1]", rnd))
	}
}

// #endregion stepper

// newScattering builds the model named in the definition. Models other
// than noscattering get the E^2/p^4 utility from integrator.
func (u *PropagationUtility) newScattering(integrator func() (Utility, error)) error {
	reg := scattering.NewRegistry()
	ctor, err := reg.Lookup(u.def.Scattering)
	if err != nil {
		return err
	}
	model, err := reg.EnumFromString(u.def.Scattering)
	if err != nil {
		return err
	}
	var in scattering.Integrator
	if model != scattering.ModelNone {
		if u.scatterIn, err = integrator(); err != nil {
			return err
		}
		in = u.scatterIn
	}
	u.scatterNew = ctor
	u.scatter, err = ctor(u.def.Particle, u.def.Medium, in)
	return err
}

// tableDefinition is the utility table of idef over [low, MaxNodeEnergy].
func tableDefinition(idef crosssection.InterpolationDef, low float64, nodes int) numeric.Definition1D {
	d := idef.EnergyTable(low, nodes)
	d.LogSubst = false
	return d
}
