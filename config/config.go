package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/gatedbus/core/factory"
	"github.com/kilianp07/gatedbus/core/metrics"
)

// Config is the root configuration of the gatedbus command.
type Config struct {
	Bus BusConfig `json:"bus"`
	// Events maps an event name to its middleware chain.
	Events map[string][]factory.ModuleConfig `json:"events"`
	// Switches sets the initial state of the named gates used by switch predicates.
	Switches map[string]bool `json:"switches"`
	Log      LogConfig       `json:"log"`
	Metrics  metrics.Config  `json:"metrics"`
}

// Load reads a YAML or JSON file and applies GB_ prefixed environment
// overrides, where a double underscore separates nested keys
// (GB_BUS__DELIVERY_MODE=serial).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("GB_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "gb_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills unset sections.
func (c *Config) SetDefaults() {
	c.Bus.SetDefaults()
	c.Log.SetDefaults()
	if c.Events == nil {
		c.Events = map[string][]factory.ModuleConfig{}
	}
	if c.Switches == nil {
		c.Switches = map[string]bool{}
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Bus.Validate(); err != nil {
		return fmt.Errorf("bus: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	for name, chain := range c.Events {
		if name == "" {
			return fmt.Errorf("events: empty event name")
		}
		for i, m := range chain {
			if m.Type == "" {
				return fmt.Errorf("events.%s[%d]: type is required", name, i)
			}
		}
	}
	return nil
}
