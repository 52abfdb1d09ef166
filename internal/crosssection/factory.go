package crosssection

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/eloss/internal/errs"
	"github.com/danielpatrickdp/eloss/internal/numeric"
	"github.com/danielpatrickdp/eloss/internal/registry"
	"github.com/danielpatrickdp/eloss/internal/tablecache"
)

// #region factory
// Factory owns the parametrization registries of every family, the
// photo-angle registry, the integrator and the table cache shared by the
// evaluators it creates. Registries are filled in NewFactory and read-only
// afterwards.
type Factory struct {
	families map[Family]*registry.Registry[Kind, Constructor]
	angles   *registry.Registry[PhotoAngleKind, PhotoAngle]
	cache    *tablecache.Cache
	q        numeric.Integral
}

// NewFactory creates a factory with the built-in parametrizations and the
// default integrator. cache may be nil; interpolation tables are then
// private to each evaluator.
func NewFactory(cache *tablecache.Cache) *Factory {
	return NewFactoryWith(cache, numeric.DefaultIntegral())
}

// NewFactoryWith is NewFactory with the integrator q for every evaluator.
func NewFactoryWith(cache *tablecache.Cache, q numeric.Integral) *Factory {
	f := &Factory{
		families: make(map[Family]*registry.Registry[Kind, Constructor]),
		angles:   registry.New[PhotoAngleKind, PhotoAngle]("photoangle"),
		cache:    cache,
		q:        q,
	}
	for _, fam := range Families() {
		f.families[fam] = registry.New[Kind, Constructor](fam.String())
	}

	f.angles.MustRegister("photoangletsaiintegral", PhotoAngleTsaiIntegral, TsaiIntegralAngle{})
	f.angles.MustRegister("photoanglenodeflection", PhotoAngleNoDeflection, NoDeflection{})
	f.angles.MustRegister("photoangleegs", PhotoAngleEGS, EGSAngle{})

	f.mustRegister(IonizBetheBlochRossi, NewIonizationBetheBlochRossi)
	f.mustRegister(BremsKelnerKokoulinPetrukhin, NewBremsKelnerKokoulinPetrukhin)
	f.mustRegister(BremsCompleteScreening, NewBremsCompleteScreening)
	f.mustRegister(EpairKelnerKokoulinPetrukhin, NewEpairKelnerKokoulinPetrukhin)
	f.mustRegister(PhotoKokoulin, NewPhotoKokoulin)
	f.mustRegister(PhotoZeus, NewPhotoZeus)
	f.mustRegister(PhotoPairTsai, f.newPhotoPair)
	f.mustRegister(WeakCooperSarkarMertsch, NewWeakCooperSarkarMertsch)
	return f
}

func (f *Factory) mustRegister(kind Kind, ctor Constructor) {
	f.families[kind.Family()].MustRegister(kind.String(), kind, ctor)
}

// Register adds a parametrization to the registry of its family. It must not
// be called concurrently with lookups.
func (f *Factory) Register(name string, kind Kind, family Family, ctor Constructor) error {
	reg, err := f.Registry(family)
	if err != nil {
		return err
	}
	return reg.Register(name, kind, ctor)
}

// Registry returns the registry of family.
func (f *Factory) Registry(family Family) (*registry.Registry[Kind, Constructor], error) {
	reg, ok := f.families[family]
	if !ok {
		return nil, errs.Configuration("crosssection.Registry", "unknown family %d", int(family))
	}
	return reg, nil
}

// Cache returns the table cache, possibly nil.
func (f *Factory) Cache() *tablecache.Cache { return f.cache }

// Integral returns the integrator of the evaluators.
func (f *Factory) Integral() numeric.Integral { return f.q }

// #endregion factory

// #region create
// CreateParametrization builds the parametrization registered under name in
// family. Names are case-insensitive.
func (f *Factory) CreateParametrization(family Family, name string, cfg Config) (Parametrization, error) {
	reg, err := f.Registry(family)
	if err != nil {
		return nil, err
	}
	ctor, err := reg.Lookup(name)
	if err != nil {
		return nil, err
	}
	return ctor(cfg)
}

// CreateParametrizationKind builds the parametrization registered under kind.
func (f *Factory) CreateParametrizationKind(kind Kind, cfg Config) (Parametrization, error) {
	reg, err := f.Registry(kind.Family())
	if err != nil {
		return nil, err
	}
	ctor, err := reg.LookupEnum(kind)
	if err != nil {
		return nil, err
	}
	return ctor(cfg)
}

// NewCrossSection wraps p in an evaluator: the interpolation variant iff def
// is non-nil, direct integration otherwise.
func (f *Factory) NewCrossSection(p Parametrization, def *InterpolationDef) (CrossSection, error) {
	if def == nil {
		return NewIntegralWith(p, f.q), nil
	}
	return NewInterpolantWith(p, *def, f.q, f.cache)
}

// CreateCrossSection combines CreateParametrization and NewCrossSection.
func (f *Factory) CreateCrossSection(family Family, name string, cfg Config, def *InterpolationDef) (CrossSection, error) {
	p, err := f.CreateParametrization(family, name, cfg)
	if err != nil {
		return nil, err
	}
	return f.NewCrossSection(p, def)
}

// StandardCrossSections returns the default process set for the particle in
// cfg: ionization, bremsstrahlung, pair production and photonuclear for
// charged leptons, pair conversion for photons.
func (f *Factory) StandardCrossSections(cfg Config, def *InterpolationDef) ([]CrossSection, error) {
	kinds := []Kind{IonizBetheBlochRossi, BremsKelnerKokoulinPetrukhin, EpairKelnerKokoulinPetrukhin, PhotoKokoulin}
	if cfg.Particle.Mass == 0 {
		kinds = []Kind{PhotoPairTsai}
	}
	out := make([]CrossSection, 0, len(kinds))
	for _, k := range kinds {
		p, err := f.CreateParametrizationKind(k, cfg)
		if err != nil {
			return nil, err
		}
		cs, err := f.NewCrossSection(p, def)
		if err != nil {
			return nil, fmt.Errorf("crosssection: %s: %w", k, err)
		}
		out = append(out, cs)
	}
	return out, nil
}

// PhotoAngle returns the photo-angle distribution registered under name. An
// empty name selects no deflection.
func (f *Factory) PhotoAngle(name string) (PhotoAngle, error) {
	if strings.TrimSpace(name) == "" {
		return NoDeflection{}, nil
	}
	return f.angles.Lookup(name)
}

// PhotoAngleNames lists the registered photo-angle distributions.
func (f *Factory) PhotoAngleNames() []string { return f.angles.Names() }

func (f *Factory) newPhotoPair(cfg Config) (Parametrization, error) {
	angle, err := f.PhotoAngle(cfg.Options.PhotoAngle)
	if err != nil {
		return nil, err
	}
	return NewPhotoPairTsai(cfg, angle)
}

// #endregion create
