package config

func preset(edit func(c *Config)) *Config {
	c := DefaultConfig()
	edit(c)
	return c
}

var Presets = map[string]map[string]*Config{
	"solar": {
		"default": preset(func(c *Config) {}),
		"planets": preset(func(c *Config) {
			c.Init.Asteroids = 0
			c.Dt = 3600
			c.Steps = 24 * 365
		}),
		"crowded": preset(func(c *Config) {
			c.Init.Asteroids = 5000
			c.Theta = 0.7
			c.Workers = 0
		}),
		"exact": preset(func(c *Config) {
			c.Mode = "brute-force"
			c.Init.Asteroids = 200
		}),
	},
	"disk": {
		"small": preset(func(c *Config) {
			c.Scenario = "disk"
			c.Init.Asteroids = 1000
			c.Init.InnerAU = 1
			c.Init.OuterAU = 4
		}),
		"large": preset(func(c *Config) {
			c.Scenario = "disk"
			c.Init.Asteroids = 20000
			c.Init.InnerAU = 0.5
			c.Init.OuterAU = 10
			c.Theta = 0.8
			c.Workers = 0
			c.SampleEvery = 50
		}),
	},
	"binary": {
		"equal": preset(func(c *Config) {
			c.Scenario = "binary"
			c.Dt = 3600
			c.Steps = 24 * 200
		}),
		"unequal": preset(func(c *Config) {
			c.Scenario = "binary"
			c.Init.MassB = 0.3 * c.Init.MassA
			c.Init.SeparationAU = 2
			c.Dt = 3600
			c.Steps = 24 * 400
		}),
	},
	"custom": {
		"earth-moon": preset(func(c *Config) {
			c.Scenario = "custom"
			c.Dt = 600
			c.Steps = 6 * 24 * 60
			c.Bounds.Policy = "auto"
			c.Bodies = []BodyConfig{
				{Name: "Earth", Mass: 5.972e24, Radius: 6, Color: "blue"},
				{Name: "Moon", X: 384400e3 / 1.5e11, Mass: 7.342e22, Radius: 2, Color: "gray", Orbit: "Earth"},
			}
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scenario, preset string) *Config {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	cfg, ok := scenarioPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(scenario string) []string {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenarioPresets))
	for name := range scenarioPresets {
		names = append(names, name)
	}
	return names
}
