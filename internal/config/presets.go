package config

// Presets are named overrides applied on top of DefaultConfig.
var Presets = map[string]func(*Config){
	"default": func(*Config) {},
	// coarse trades resolution for speed; handy for quick looks.
	"coarse": func(c *Config) {
		c.Constants.N = 21
		c.Settings.SeriesTerms = 100
	},
	"fine": func(c *Config) {
		c.Constants.N = 201
		c.Constants.QExplicit = []float64{0.49, 0.25}
	},
	// stability sweeps the explicit scheme across the 1/2 limit.
	"stability": func(c *Config) {
		c.Constants.N = 51
		c.Constants.QExplicit = []float64{0.25, 0.45, 0.5, 0.55, 1.0}
		c.Constants.QImplicit = []float64{0.5, 1, 5}
		c.Constants.QCrank = []float64{0.5, 1, 5}
	},
	"long": func(c *Config) {
		c.Constants.TA = 0.1
		c.Constants.QExplicit = []float64{0.49}
	},
}

// GetPreset returns DefaultConfig with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

// Apply applies the named preset to cfg. It reports false for unknown names.
func Apply(cfg *Config, name string) bool {
	apply, ok := Presets[name]
	if !ok {
		return false
	}
	apply(cfg)
	return true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
