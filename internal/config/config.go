package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/compmath/internal/numeric"
)

const (
	DefaultAddr         = ":8080"
	DefaultDataDir      = "runs"
	DefaultLogLevel     = "info"
	DefaultTimeout      = 30 * time.Second
	DefaultEps          = 1e-4
	DefaultItersLimit   = 100
	DefaultIntervals    = 10
	BackendLocal        = "local"
	BackendRemote       = "remote"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 60 * time.Second
)

type Config struct {
	LogLevel string              `yaml:"log_level"`
	DataDir  string              `yaml:"data_dir"`
	Server   ServerConfig        `yaml:"server"`
	Backend  BackendConfig       `yaml:"backend"`
	Defaults DefaultsConfig      `yaml:"defaults"`
	Problems map[string]*Problem `yaml:"problems,omitempty"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type BackendConfig struct {
	Mode    string        `yaml:"mode"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultsConfig seeds new models when a problem leaves a value unset.
type DefaultsConfig struct {
	Eps        float64 `yaml:"eps"`
	ItersLimit int     `yaml:"iters_limit"`
	Intervals  int     `yaml:"intervals"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		DataDir:  DefaultDataDir,
		Server: ServerConfig{
			Addr:         DefaultAddr,
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
		},
		Backend: BackendConfig{
			Mode:    BackendLocal,
			URL:     "http://localhost" + DefaultAddr,
			Timeout: DefaultTimeout,
		},
		Defaults: DefaultsConfig{
			Eps:        DefaultEps,
			ItersLimit: DefaultItersLimit,
			Intervals:  DefaultIntervals,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

func (c *Config) Validate() error {
	if !logLevels[c.LogLevel] {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	switch c.Backend.Mode {
	case BackendLocal:
	case BackendRemote:
		if c.Backend.URL == "" {
			return fmt.Errorf("remote backend requires a url")
		}
	default:
		return fmt.Errorf("unknown backend mode %q", c.Backend.Mode)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}
	if !(c.Defaults.Eps > 0) {
		return fmt.Errorf("default eps must be positive")
	}
	if err := numeric.CheckItersLimit(c.Defaults.ItersLimit); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if err := numeric.CheckIntervals(c.Defaults.Intervals); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	for name, p := range c.Problems {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("problem %q: %w", name, err)
		}
	}
	return nil
}

// Problem returns a problem defined in the file, falling back to the
// built-in presets of kind.
func (c *Config) Problem(kind, name string) *Problem {
	if p, ok := c.Problems[name]; ok && p.Kind == kind {
		return p
	}
	return GetPreset(kind, name)
}
