package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// FileName is the optional configuration file looked up at the datapackage root.
const FileName = ".dpctl.yaml"

const (
	PropagationOneHop     = "one-hop"
	PropagationTransitive = "transitive"
)

// LogConfig controls the slog handler built by the app package.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File, when set, receives a JSON copy of every record. Relative paths
	// are resolved against the datapackage root.
	File string `yaml:"file,omitempty"`
}

// ExecutorConfig describes how algorithm and view containers are started.
type ExecutorConfig struct {
	DockerBin string `yaml:"docker_bin"`
	MountPath string `yaml:"mount_path"`
}

// Config models .dpctl.yaml.
type Config struct {
	Log         LogConfig      `yaml:"log"`
	Executor    ExecutorConfig `yaml:"executor"`
	Propagation string         `yaml:"propagation"`
}

// Default returns the configuration used when no file or overrides exist.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Executor: ExecutorConfig{
			DockerBin: "docker",
			MountPath: "/usr/src/app/datapackage",
		},
		Propagation: PropagationOneHop,
	}
}

// Load reads FileName from the root of fsys, layers environment overrides on
// top and validates the result. A missing file is not an error.
func Load(fsys afero.Fs, lookup LookupFunc) (Config, error) {
	cfg := Default()

	data, err := afero.ReadFile(fsys, FileName)
	switch {
	case err == nil:
		var parsed Config
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", FileName, err)
		}
		cfg.merge(parsed)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", FileName, err)
	}

	cfg.applyEnv(lookup)
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Override layers command-line values on top of a loaded configuration.
// Empty fields leave the current value untouched.
func (c *Config) Override(other Config) error {
	c.merge(other)
	c.normalize()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// merge copies every non-empty field of other onto c.
func (c *Config) merge(other Config) {
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}
	if other.Log.File != "" {
		c.Log.File = other.Log.File
	}
	if other.Executor.DockerBin != "" {
		c.Executor.DockerBin = other.Executor.DockerBin
	}
	if other.Executor.MountPath != "" {
		c.Executor.MountPath = other.Executor.MountPath
	}
	if other.Propagation != "" {
		c.Propagation = other.Propagation
	}
}

func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Log.File = strings.TrimSpace(c.Log.File)
	c.Executor.DockerBin = strings.TrimSpace(c.Executor.DockerBin)
	c.Executor.MountPath = strings.TrimSpace(c.Executor.MountPath)
	c.Propagation = strings.ToLower(strings.TrimSpace(c.Propagation))
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log format %q: must be 'text' or 'json'", c.Log.Format)
	}
	switch c.Propagation {
	case PropagationOneHop, PropagationTransitive:
	default:
		return fmt.Errorf("invalid propagation mode %q: must be %q or %q", c.Propagation, PropagationOneHop, PropagationTransitive)
	}
	if c.Executor.DockerBin == "" {
		return errors.New("executor.docker_bin is required")
	}
	if !path.IsAbs(c.Executor.MountPath) {
		return fmt.Errorf("executor.mount_path must be an absolute container path, got %q", c.Executor.MountPath)
	}
	return nil
}
