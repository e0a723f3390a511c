package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"polynav/navigation"
)

// Config is the polynav service configuration
type Config struct {
	Server     Server     `yaml:"server"`
	Regions    Regions    `yaml:"regions"`
	Navigation Navigation `yaml:"navigation"`
}

// Server configures the HTTP route service
type Server struct {
	Addr string `yaml:"addr"`
	// RateLimit is the sustained number of route queries per second; 0 disables limiting
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

// Regions configures where region files come from
type Regions struct {
	Dir             string  `yaml:"dir"`
	Watch           bool    `yaml:"watch"`
	SimplifyEpsilon float64 `yaml:"simplify_epsilon"`
}

// Navigation configures the pathfinding engine
type Navigation struct {
	Engine        string  `yaml:"engine"`
	Occlusion     string  `yaml:"occlusion"`
	ProbeRadius   float64 `yaml:"probe_radius"`
	Evasion       string  `yaml:"evasion"`
	MaxGraphNodes int     `yaml:"max_graph_nodes"`
	MaxPathNodes  int     `yaml:"max_path_nodes"`
	Verbose       bool    `yaml:"verbose"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:      ":8080",
			RateLimit: 50,
			Burst:     10,
		},
		Regions: Regions{
			Dir:   "regions",
			Watch: true,
		},
		Navigation: Navigation{
			Engine:        "polygon",
			Occlusion:     "sampled",
			ProbeRadius:   navigation.DefaultProbeRadius,
			Evasion:       "idle",
			MaxGraphNodes: navigation.DefaultMaxGraphNodes,
		},
	}
}

// Load reads a YAML config file over the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enum names
func (c *Config) Validate() error {
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.Burst < 1 {
		return fmt.Errorf("server.burst must be at least 1 when rate limiting")
	}
	if c.Navigation.ProbeRadius <= 0 {
		return fmt.Errorf("navigation.probe_radius must be positive")
	}
	if c.Regions.SimplifyEpsilon < 0 {
		return fmt.Errorf("regions.simplify_epsilon must not be negative")
	}
	kind, err := c.EngineKind()
	if err != nil {
		return err
	}
	if kind == navigation.EngineNavMesh {
		return fmt.Errorf("navigation.engine %s: %w", kind, navigation.ErrUnsupportedEngine)
	}
	if _, err := c.OcclusionMode(); err != nil {
		return err
	}
	if _, err := navigation.ParseEvasionPolicy(c.Navigation.Evasion); err != nil {
		return err
	}
	return nil
}

// EngineKind returns the configured engine
func (c *Config) EngineKind() (navigation.EngineKind, error) {
	return navigation.ParseEngineKind(c.Navigation.Engine)
}

// OcclusionMode returns the configured segment test
func (c *Config) OcclusionMode() (navigation.OcclusionMode, error) {
	switch c.Navigation.Occlusion {
	case "", "sampled":
		return navigation.OcclusionSampled, nil
	case "exact":
		return navigation.OcclusionExact, nil
	}
	return navigation.OcclusionSampled, fmt.Errorf("unknown occlusion mode %q", c.Navigation.Occlusion)
}

// DefaultEvasion returns the evasion policy for queries that do not name one
func (c *Config) DefaultEvasion() navigation.EvasionPolicy {
	policy, _ := navigation.ParseEvasionPolicy(c.Navigation.Evasion)
	return policy
}

// LoadOptions returns region loading options derived from the config
func (c *Config) LoadOptions() navigation.LoadOptions {
	mode, _ := c.OcclusionMode()
	return navigation.LoadOptions{
		SimplifyEpsilon: c.Regions.SimplifyEpsilon,
		ProbeRadius:     c.Navigation.ProbeRadius,
		Occlusion:       mode,
	}
}

// EngineOptions returns engine options derived from the config
func (c *Config) EngineOptions() navigation.Options {
	return navigation.Options{
		MaxGraphNodes: c.Navigation.MaxGraphNodes,
		MaxPathNodes:  c.Navigation.MaxPathNodes,
	}
}
