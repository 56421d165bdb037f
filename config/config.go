// Package config provides configuration loading and access for the
// simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig       `yaml:"world"`
	Agents    []AgentConfig     `yaml:"agents"`
	Schedule  ScheduleConfig    `yaml:"schedule"`
	Keymap    map[string]string `yaml:"keymap"` // key symbol -> direction name
	Telemetry TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds grid dimensions and the initial layout.
// Layout rows use '#' for walls and '*' for resource markers.
type WorldConfig struct {
	Rows   int      `yaml:"rows"`
	Cols   int      `yaml:"cols"`
	Layout []string `yaml:"layout"`
}

// AgentConfig describes one agent to create at setup.
type AgentConfig struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`   // engine factory name
	Radius int    `yaml:"radius"` // line-of-sight radius
	Row    int    `yaml:"row"`
	Col    int    `yaml:"col"`
	Random bool   `yaml:"random"` // place at a random free cell instead
	Seed   int64  `yaml:"seed"`   // engine seed (0 = derive from run seed)
}

// ScheduleConfig holds scheduler parameters.
type ScheduleConfig struct {
	SpeedFactor   float64 `yaml:"speed_factor"`    // real = model / factor; <= 0 means unthrottled
	Mode          string  `yaml:"mode"`            // continuous | single-step
	StepTimeoutMS int     `yaml:"step_timeout_ms"` // 0 = no per-step timeout
	MaxSteps      int     `yaml:"max_steps"`       // 0 = unlimited
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	WindowSteps int `yaml:"window_steps"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	StepTimeout time.Duration
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded
// defaults if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

func (c *Config) validate() error {
	if c.World.Rows <= 0 || c.World.Cols <= 0 {
		return fmt.Errorf("world dimensions must be positive, got %dx%d", c.World.Rows, c.World.Cols)
	}
	seen := make(map[string]bool, len(c.Agents))
	for i, a := range c.Agents {
		if a.Name == "" {
			return fmt.Errorf("agent %d: name required", i)
		}
		if seen[a.Name] {
			return fmt.Errorf("agent %q: duplicate name", a.Name)
		}
		seen[a.Name] = true
		if a.Radius < 0 {
			return fmt.Errorf("agent %q: radius must be non-negative", a.Name)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.StepTimeout = time.Duration(c.Schedule.StepTimeoutMS) * time.Millisecond
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
