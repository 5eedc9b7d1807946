// Package config loads runtime configuration from an optional YAML file,
// a .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/maax3v3/cubemosaic/internal/guide"
	"github.com/maax3v3/cubemosaic/internal/imaging"
	"github.com/maax3v3/cubemosaic/internal/mosaic"
	"github.com/maax3v3/cubemosaic/internal/quantize"
)

// Environment variables read by ApplyEnv.
const (
	EnvAddr      = "CUBEMOSAIC_ADDR"
	EnvPort      = "PORT"
	EnvLogLevel  = "CUBEMOSAIC_LOG_LEVEL"
	EnvLogFormat = "CUBEMOSAIC_LOG_FORMAT"
	EnvMetric    = "CUBEMOSAIC_METRIC"
	EnvEnhance   = "CUBEMOSAIC_ENHANCE"
)

// Config is the full runtime configuration shared by the CLI and server.
type Config struct {
	Server Server          `yaml:"server"`
	Log    Log             `yaml:"log"`
	Mosaic mosaic.Settings `yaml:"mosaic"` // default size when a request omits it
	Metric string          `yaml:"metric"` // rgb or lab

	// Enhance turns on contrast, saturation and sharpening before sampling.
	Enhance bool  `yaml:"enhance"`
	Guide   Guide `yaml:"guide"`
}

// Server configures the HTTP listener and its request limits.
type Server struct {
	Addr            string        `yaml:"addr"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	MaxPixels       int           `yaml:"max_pixels"` // decoded size cap for uploads
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Log selects the slog handler and level.
type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Guide configures the printed assembly guide.
type Guide struct {
	Title    string       `yaml:"title"`
	PageSize string       `yaml:"page_size"`
	Layout   guide.Layout `yaml:"layout"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	g := guide.DefaultOptions()
	return Config{
		Server: Server{
			Addr:            ":8080",
			MaxUploadBytes:  10 << 20,
			MaxPixels:       imaging.MaxPixels,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Log:    Log{Level: "info", Format: "text"},
		Mosaic: mosaic.Settings{Width: 16, Height: 16},
		Metric: quantize.MetricRGB.String(),
		Guide:  Guide{Title: g.Title, PageSize: g.PageSize, Layout: g.Layout},
	}
}

// Load builds a Config from the defaults, the YAML file at path (skipped
// when path is empty) and the process environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files (".env" when none
// are given). Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from environment variables looked up with
// getenv. CUBEMOSAIC_ADDR wins over PORT.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if port := getenv(EnvPort); port != "" {
		c.Server.Addr = ":" + port
	}
	if addr := getenv(EnvAddr); addr != "" {
		c.Server.Addr = addr
	}
	if level := getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
	if format := getenv(EnvLogFormat); format != "" {
		c.Log.Format = format
	}
	if metric := getenv(EnvMetric); metric != "" {
		c.Metric = metric
	}
	if v := getenv(EnvEnhance); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			c.Enhance = on
		} else {
			slog.Warn("Ignoring invalid boolean", "var", EnvEnhance, "value", v)
		}
	}
}

// Validate reports the first setting that cannot work at runtime.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server address must not be empty")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Server.MaxPixels <= 0 {
		return fmt.Errorf("max_pixels must be positive, got %d", c.Server.MaxPixels)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return fmt.Errorf("log format must be text or json, got %q", c.Log.Format)
	}
	if err := c.Mosaic.Validate(); err != nil {
		return fmt.Errorf("default mosaic size: %w", err)
	}
	if _, err := quantize.ParseMetric(c.Metric); err != nil {
		return err
	}
	if err := c.GuideOptions().Validate(); err != nil {
		return fmt.Errorf("guide: %w", err)
	}
	return nil
}

// QuantizeMetric returns the configured metric. Validate has already
// rejected unknown names.
func (c Config) QuantizeMetric() quantize.Metric {
	m, _ := quantize.ParseMetric(c.Metric)
	return m
}

// GuideOptions converts the guide section to guide.Options.
func (c Config) GuideOptions() guide.Options {
	return guide.Options{
		Layout:   c.Guide.Layout,
		Title:    c.Guide.Title,
		PageSize: c.Guide.PageSize,
	}
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// NewLogger builds the logger described by l, writing to w.
func (l Log) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
