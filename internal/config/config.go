package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vrt.json"

	// DefaultPort is the default serve port.
	DefaultPort = 3000

	// DefaultHost is the default serve host.
	DefaultHost = "localhost"

	// DefaultTick is the default interval between demo updates.
	DefaultTick = time.Second

	// DefaultMaxRecursion matches the scheduler's recursion limit.
	DefaultMaxRecursion = 100

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "vrt"

	// DefaultMetricsPath is where serve exposes Prometheus metrics.
	DefaultMetricsPath = "/metrics"
)

// ErrNotFound is returned by Load when no vrt.json exists.
var ErrNotFound = errors.New("config: no " + ConfigFileName + " found")

// Config represents the complete vrt.json configuration.
type Config struct {
	// Dev enables development warnings such as duplicate keys and prop
	// validation.
	Dev bool `json:"dev,omitempty"`

	// MaxRecursion is how many times one job may re-run within a flush.
	MaxRecursion int `json:"maxRecursion,omitempty"`

	// ThrowUnhandledErrors panics on errors no handler captured instead of
	// logging them.
	ThrowUnhandledErrors bool `json:"throwUnhandledErrors,omitempty"`

	// Log contains logger configuration.
	Log LogConfig `json:"log,omitempty"`

	// Render contains HTML output settings for the render command.
	Render RenderConfig `json:"render,omitempty"`

	// Serve contains settings for the remote rendering server.
	Serve ServeConfig `json:"serve,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error (default: info).
	Level string `json:"level,omitempty"`

	// Format is text or json (default: text).
	Format string `json:"format,omitempty"`
}

// RenderConfig contains HTML serialization settings.
type RenderConfig struct {
	// Pretty indents block elements.
	Pretty bool `json:"pretty,omitempty"`

	// Comments keeps comment nodes in the output.
	Comments bool `json:"comments,omitempty"`
}

// ServeConfig contains server settings.
type ServeConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// Tick is the interval between demo state updates (e.g., "1s").
	Tick string `json:"tick,omitempty"`

	// FrameLimit caps the payload size of one ops frame. Zero uses the
	// protocol maximum.
	FrameLimit int `json:"frameLimit,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled registers collectors and exposes them on Path.
	Enabled bool `json:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`

	// Path is the HTTP path serving the metrics.
	Path string `json:"path,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		MaxRecursion: DefaultMaxRecursion,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Serve: ServeConfig{
			Host: DefaultHost,
			Port: DefaultPort,
			Tick: DefaultTick.String(),
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
			Path:      DefaultMetricsPath,
		},
	}
}

// Load loads vrt.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile loads the configuration at path and applies defaults for
// missing fields.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithDetailf(ErrNotFound, "looked in %s", filepath.Dir(path))
		}
		return nil, errors.Wrapf(err, "config: reading %s", path)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "config: parsing %s", path),
			"check that "+ConfigFileName+" is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration back to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config: no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "config: encoding")
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "config: writing %s", path)
	}

	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from, or "".
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) applyDefaults() {
	if c.MaxRecursion == 0 {
		c.MaxRecursion = DefaultMaxRecursion
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Serve.Host == "" {
		c.Serve.Host = DefaultHost
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultPort
	}
	if c.Serve.Tick == "" {
		c.Serve.Tick = DefaultTick.String()
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.MaxRecursion < 0 {
		return errors.Newf("config: maxRecursion must not be negative, got %d", c.MaxRecursion)
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return errors.Newf("config: serve.port must be between 0 and 65535, got %d", c.Serve.Port)
	}
	if c.Serve.FrameLimit < 0 {
		return errors.Newf("config: serve.frameLimit must not be negative, got %d", c.Serve.FrameLimit)
	}
	if d, err := time.ParseDuration(c.Serve.Tick); err != nil {
		return errors.Wrapf(err, "config: serve.tick %q", c.Serve.Tick)
	} else if d <= 0 {
		return errors.Newf("config: serve.tick must be positive, got %s", c.Serve.Tick)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Newf("config: log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Metrics.Enabled && (c.Metrics.Path == "" || c.Metrics.Path[0] != '/') {
		return errors.Newf("config: metrics.path must start with /, got %q", c.Metrics.Path)
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, errors.Wrapf(err, "config: log.level %q", l.Level)
	}
	return level, nil
}

// Address returns the host:port to listen on.
func (s ServeConfig) Address() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// TickDuration returns Tick parsed, or DefaultTick when it does not parse.
func (s ServeConfig) TickDuration() time.Duration {
	d, err := time.ParseDuration(s.Tick)
	if err != nil || d <= 0 {
		return DefaultTick
	}
	return d
}
