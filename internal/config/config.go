package config

import (
	"fmt"
	"os"

	"github.com/san-kum/tissueheat/internal/heat"
	"gopkg.in/yaml.v3"
)

const (
	DefaultHeatCapacity           = 3686.0
	DefaultDensity                = 1081.0
	DefaultThermalConductivity    = 0.56
	DefaultElectricalConductivity = 0.472
	DefaultHalfThickness          = 0.02
	DefaultLesionHalfWidth        = 0.005
	DefaultVoltage                = 40.0
	DefaultBodyTemp               = 36.5
	DefaultPoints                 = 101
	DefaultDuration               = 0.025

	DefaultSeriesTerms   = 300
	DefaultLimitBodyTemp = 36.0
	DefaultWorkers       = 4
)

type Config struct {
	Constants ConstantsConfig `yaml:"constants"`
	Settings  SettingsConfig  `yaml:"settings"`
}

// ConstantsConfig mirrors heat.PhysicalConstants with YAML keys.
type ConstantsConfig struct {
	CV           float64   `yaml:"c_v"`
	Rho          float64   `yaml:"rho"`
	K            float64   `yaml:"k"`
	Conductivity float64   `yaml:"conductivity"`
	L            float64   `yaml:"l"`
	LMal         float64   `yaml:"l_mal"`
	Voltage      float64   `yaml:"voltage"`
	TBody        float64   `yaml:"t_body"`
	N            int       `yaml:"n"`
	TA           float64   `yaml:"t_a"`
	QExplicit    []float64 `yaml:"q_explicit"`
	QImplicit    []float64 `yaml:"q_implicit"`
	QCrank       []float64 `yaml:"q_crank"`
}

type SettingsConfig struct {
	DataDir       string  `yaml:"data_dir"`
	PlotDir       string  `yaml:"plot_dir"`
	ExplicitFile  string  `yaml:"explicit_file"`
	ImplicitFile  string  `yaml:"implicit_file"`
	CrankFile     string  `yaml:"crank_file"`
	SeriesTerms   int     `yaml:"series_terms"`
	LimitBodyTemp float64 `yaml:"limit_body_temp"`
	Workers       int     `yaml:"workers"`
	LogLevel      string  `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Constants: ConstantsConfig{
			CV:           DefaultHeatCapacity,
			Rho:          DefaultDensity,
			K:            DefaultThermalConductivity,
			Conductivity: DefaultElectricalConductivity,
			L:            DefaultHalfThickness,
			LMal:         DefaultLesionHalfWidth,
			Voltage:      DefaultVoltage,
			TBody:        DefaultBodyTemp,
			N:            DefaultPoints,
			TA:           DefaultDuration,
			QExplicit:    []float64{0.51, 0.49, 0.25},
			QImplicit:    []float64{0.5, 1},
			QCrank:       []float64{0.5, 1},
		},
		Settings: SettingsConfig{
			DataDir:       "dades",
			PlotDir:       "grafiques",
			ExplicitFile:  "explicit",
			ImplicitFile:  "implicit",
			CrankFile:     "crank",
			SeriesTerms:   DefaultSeriesTerms,
			LimitBodyTemp: DefaultLimitBodyTemp,
			Workers:       DefaultWorkers,
			LogLevel:      "info",
		},
	}
}

// Load overlays the YAML file at path on top of the defaults.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver overlays the YAML file at path on top of base, which is modified
// in place. Keys missing from the file keep their base values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// PhysicalConstants builds the immutable record handed to the solvers.
func (c *Config) PhysicalConstants() heat.PhysicalConstants {
	k := c.Constants
	return heat.PhysicalConstants{
		HeatCapacity:           k.CV,
		Density:                k.Rho,
		ThermalConductivity:    k.K,
		ElectricalConductivity: k.Conductivity,
		HalfThickness:          k.L,
		LesionHalfWidth:        k.LMal,
		Voltage:                k.Voltage,
		BodyTemp:               k.TBody,
		N:                      k.N,
		Duration:               k.TA,
		ExplicitRatios:         cloneRatios(k.QExplicit),
		ImplicitRatios:         cloneRatios(k.QImplicit),
		CrankRatios:            cloneRatios(k.QCrank),
	}
}

// Validate checks the constants and the settings the pipeline depends on.
func (c *Config) Validate() error {
	if err := c.PhysicalConstants().Validate(); err != nil {
		return err
	}
	if c.Settings.SeriesTerms < 1 {
		return fmt.Errorf("%w: series_terms must be >= 1, got %d", heat.ErrInvalidConfig, c.Settings.SeriesTerms)
	}
	if c.Settings.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1, got %d", heat.ErrInvalidConfig, c.Settings.Workers)
	}
	return nil
}

// FilePrefix returns the CSV base name configured for a scheme.
func (c *Config) FilePrefix(scheme string) string {
	switch scheme {
	case "explicit":
		return c.Settings.ExplicitFile
	case "implicit":
		return c.Settings.ImplicitFile
	case "crank":
		return c.Settings.CrankFile
	}
	return scheme
}

func cloneRatios(q []float64) []float64 {
	out := make([]float64, len(q))
	copy(out, q)
	return out
}
