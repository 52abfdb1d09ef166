// Package config reads the engine settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/danielpatrickdp/eloss/internal/crosssection"
	"github.com/danielpatrickdp/eloss/internal/errs"
	"github.com/danielpatrickdp/eloss/internal/numeric"
)

// Config is the environment configuration of the tools.
type Config struct {
	TableDB     string `env:"ELOSS_TABLE_DB"`
	Interpolate bool   `env:"ELOSS_INTERPOLATE" envDefault:"true"`

	NodesCrossSection            int     `env:"ELOSS_NODES_CROSS_SECTION"             envDefault:"100"`
	NodesCrossSectionV           int     `env:"ELOSS_NODES_CROSS_SECTION_V"           envDefault:"50"`
	NodesPropagate               int     `env:"ELOSS_NODES_PROPAGATE"                 envDefault:"200"`
	NodesContinuousRandomization int     `env:"ELOSS_NODES_CONTINUOUS_RANDOMIZATION"  envDefault:"100"`
	MaxNodeEnergy                float64 `env:"ELOSS_MAX_NODE_ENERGY"                 envDefault:"1e14"`
	InterpolationOrder           int     `env:"ELOSS_INTERPOLATION_ORDER"             envDefault:"5"`
	IntegrationPrecision         float64 `env:"ELOSS_INTEGRATION_PRECISION"           envDefault:"1e-6"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, errs.Wrap(errs.KindConfiguration, "config.Load", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the numeric settings.
func (c Config) Validate() error {
	if !(c.IntegrationPrecision > 0 && c.IntegrationPrecision < 1) {
		return errs.Configuration("config.Validate", "integration precision %g", c.IntegrationPrecision)
	}
	if !c.Interpolate {
		return nil
	}
	return c.InterpolationDef().Validate()
}

// InterpolationDef returns the table configuration, or nil when direct
// integration is selected.
func (c Config) InterpolationDef() *crosssection.InterpolationDef {
	if !c.Interpolate {
		return nil
	}
	return &crosssection.InterpolationDef{
		NodesCrossSection:            c.NodesCrossSection,
		NodesCrossSectionV:           c.NodesCrossSectionV,
		NodesPropagate:               c.NodesPropagate,
		NodesContinuousRandomization: c.NodesContinuousRandomization,
		MaxNodeEnergy:                c.MaxNodeEnergy,
		OrderOfInterpolation:         c.InterpolationOrder,
	}
}

// Integral returns the quadrature settings.
func (c Config) Integral() numeric.Integral {
	q := numeric.DefaultIntegral()
	q.Precision = c.IntegrationPrecision
	return q
}
