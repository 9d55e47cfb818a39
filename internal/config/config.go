package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Environment names for Env. Anything other than EnvProduction is treated
// as development.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Build output directories selected by Env when StaticDir is empty.
const (
	ProductionStaticDir  = "dist"
	DevelopmentStaticDir = "client/dist"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the page and API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// CaptureConfig controls the headless-browser preview capture.
type CaptureConfig struct {
	// Enabled turns the scheduled capture on.
	Enabled bool `yaml:"enabled" json:"enabled" env:"TRIPBOARD_CAPTURE_ENABLED"`
	// Schedule is a cron spec for periodic captures.
	Schedule string `yaml:"schedule" json:"schedule"`
	// OutputPath is where preview.png is written and served from.
	OutputPath string `yaml:"output_path" json:"output_path"`
	Width      int    `yaml:"width" json:"width"`
	Height     int    `yaml:"height" json:"height"`
}

// Config is the top-level application configuration. The YAML file is read
// first; environment variables then override individual fields.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// Port, when non-zero, replaces the port of Listen. Set from PORT.
	Port int `yaml:"port" json:"port" env:"PORT"`

	// Env selects the build directory: "production" serves dist, anything
	// else client/dist.
	Env string `yaml:"env" json:"env" env:"APP_ENV"`

	// StaticDir overrides the build directory chosen by Env.
	StaticDir string `yaml:"static_dir" json:"static_dir" env:"TRIPBOARD_STATIC_DIR"`

	// Catalog is the path of the itinerary YAML. Empty uses the built-in one.
	Catalog string `yaml:"catalog" json:"catalog" env:"TRIPBOARD_CATALOG"`

	// Locale is the default language for human-readable strings (e.g. "de-CH").
	Locale string `yaml:"locale" json:"locale" env:"TRIPBOARD_LOCALE"`

	// DebugTime pins "now" to a fixed instant (RFC 3339 or catalog-local
	// "2006-01-02T15:04:05"). Empty means the wall clock.
	DebugTime string `yaml:"debug_time" json:"debug_time" env:"TRIPBOARD_DEBUG_TIME"`

	// WatchEvery is the cron spec of the transition watcher.
	WatchEvery string `yaml:"watch_every" json:"watch_every"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level" env:"TRIPBOARD_LOG_LEVEL"`

	// OtelEndpoint enables OpenTelemetry tracing when set.
	OtelEndpoint string `yaml:"otel_endpoint" json:"otel_endpoint" env:"TRIPBOARD_OTEL_ENDPOINT"`

	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:     "0.0.0.0:3000",
		Env:        EnvDevelopment,
		Locale:     "de-CH",
		WatchEvery: "@every 1s",
		LogLevel:   "info",
		Capture: CaptureConfig{
			Enabled:    false,
			Schedule:   "*/15 * * * *",
			OutputPath: "./cache/preview.png",
			Width:      1280,
			Height:     1600,
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.Env == "" {
		c.Env = d.Env
	}
	if c.Locale == "" {
		c.Locale = d.Locale
	}
	if c.WatchEvery == "" {
		c.WatchEvery = d.WatchEvery
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Capture.Schedule == "" {
		c.Capture.Schedule = d.Capture.Schedule
	}
	if c.Capture.OutputPath == "" {
		c.Capture.OutputPath = d.Capture.OutputPath
	}
	if c.Capture.Width <= 0 {
		c.Capture.Width = d.Capture.Width
	}
	if c.Capture.Height <= 0 {
		c.Capture.Height = d.Capture.Height
	}
}

// IsProduction reports whether Env selects the production build.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// ResolvedStaticDir is the directory the static bundle is served from.
func (c *Config) ResolvedStaticDir() string {
	if c.StaticDir != "" {
		return c.StaticDir
	}
	if c.IsProduction() {
		return ProductionStaticDir
	}
	return DevelopmentStaticDir
}

// Addr is the effective listen address with Port applied.
func (c *Config) Addr() string {
	if c.Port <= 0 {
		return c.Listen
	}
	host, _, err := net.SplitHostPort(c.Listen)
	if err != nil {
		host = ""
	}
	return net.JoinHostPort(host, strconv.Itoa(c.Port))
}

// ParseDebugTime returns the pinned "now" or the zero time when unset.
func (c *Config) ParseDebugTime(loc *time.Location) (time.Time, error) {
	v := strings.TrimSpace(c.DebugTime)
	if v == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", v, loc); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", v, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("config: invalid debug_time %q", v)
}

// ApplyEnv overlays environment variables onto c. Unset variables leave the
// field untouched.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load loads configuration from the given YAML path and overlays the
// environment.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - In both cases env overrides are applied and defaults normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	var cfg *Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		// First run: create default config file.
		cfg = DefaultConfig()
		if err := Save(path, cfg); err != nil {
			// Even if save fails, return cfg with error so caller can decide.
			_ = cfg.ApplyEnv()
			return cfg, err
		}
	} else {
		cfg = &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tripboard-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
