// Package config loads runtime settings from YAML or TOML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jython/jython-sub004/pkg/diag"
)

const (
	EnvFastPath      = "OBJCORE_FAST_PATH"
	EnvImplicitClose = "OBJCORE_IMPLICIT_CLOSE"
)

type Config struct {
	Logging    diag.Settings `yaml:"logging" toml:"logging"`
	Resolver   Resolver      `yaml:"resolver" toml:"resolver"`
	Generators Generators    `yaml:"generators" toml:"generators"`
	Cache      Cache         `yaml:"cache" toml:"cache"`

	// Path is the file the config was read from, if any.
	Path string `yaml:"-" toml:"-"`
}

type Resolver struct {
	// FastPath lets types that never override the attribute getter skip
	// the getter lookup.
	FastPath bool `yaml:"fast_path" toml:"fast_path"`
}

type Generators struct {
	// ImplicitClose closes unreachable suspended generators.
	ImplicitClose bool `yaml:"implicit_close" toml:"implicit_close"`
	// ReportCleanupFailures logs errors raised during implicit close.
	ReportCleanupFailures bool `yaml:"report_cleanup_failures" toml:"report_cleanup_failures"`
}

type Cache struct {
	TraceEvictions bool `yaml:"trace_evictions" toml:"trace_evictions"`
}

func Default() Config {
	return Config{
		Logging:    diag.DefaultSettings(diag.ProfileRuntime),
		Resolver:   Resolver{FastPath: true},
		Generators: Generators{ImplicitClose: true, ReportCleanupFailures: true},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: resolve %s: %w", path, err)
		}
		switch ext := strings.ToLower(filepath.Ext(abs)); ext {
		case ".yaml", ".yml":
			err = decodeYAML(abs, &cfg)
		case ".toml":
			err = decodeTOML(abs, &cfg)
		default:
			err = fmt.Errorf("config: %s: unsupported format %q", abs, ext)
		}
		if err != nil {
			return Config{}, err
		}
		cfg.Path = abs
	}
	ApplyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer file.Close()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func decodeTOML(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return fmt.Errorf("config: parse %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides cfg from OBJCORE_* variables.
func ApplyEnv(cfg *Config) {
	diag.ApplyEnv(&cfg.Logging)
	if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(EnvFastPath))); err == nil {
		cfg.Resolver.FastPath = v
	}
	if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(EnvImplicitClose))); err == nil {
		cfg.Generators.ImplicitClose = v
	}
}

func (c Config) Validate() error {
	if _, ok := diag.ParseLevel(c.Logging.Level); !ok {
		return fmt.Errorf("config: logging.level: unknown level %q", c.Logging.Level)
	}
	return nil
}
