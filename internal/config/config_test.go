package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maax3v3/cubemosaic/internal/guide"
	"github.com/maax3v3/cubemosaic/internal/imaging"
	"github.com/maax3v3/cubemosaic/internal/mosaic"
	"github.com/maax3v3/cubemosaic/internal/quantize"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, mosaic.Settings{Width: 16, Height: 16}, cfg.Mosaic)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, imaging.MaxPixels, cfg.Server.MaxPixels)
	assert.Equal(t, guide.DefaultLayout, cfg.Guide.Layout)
	assert.Equal(t, quantize.MetricRGB, cfg.QuantizeMetric())
	assert.False(t, cfg.Enhance)
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvPort, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogFormat, "")
	t.Setenv(EnvMetric, "")
	t.Setenv(EnvEnhance, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvPort, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogFormat, "")
	t.Setenv(EnvMetric, "")
	t.Setenv(EnvEnhance, "")

	path := writeFile(t, "cubemosaic.yaml", `
server:
  addr: "127.0.0.1:9000"
  shutdown_timeout: 2s
  max_pixels: 1000000
log:
  level: debug
  format: json
mosaic:
  width: 24
  height: 12
metric: lab
enhance: true
guide:
  title: "Office Wall"
  page_size: A4
  layout:
    columns: 3
    rows: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	// Unset keys keep their defaults.
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, mosaic.Settings{Width: 24, Height: 12}, cfg.Mosaic)
	assert.Equal(t, quantize.MetricLab, cfg.QuantizeMetric())
	assert.Equal(t, 1000000, cfg.Server.MaxPixels)
	assert.True(t, cfg.Enhance)

	opts := cfg.GuideOptions()
	assert.Equal(t, "Office Wall", opts.Title)
	assert.Equal(t, "A4", opts.PageSize)
	assert.Equal(t, guide.Layout{Columns: 3, Rows: 2}, opts.Layout)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "server: [unclosed"},
		{"bad log level", "log:\n  level: loud\n"},
		{"bad log format", "log:\n  format: xml\n"},
		{"mosaic too small", "mosaic:\n  width: 4\n  height: 16\n"},
		{"unknown metric", "metric: hsv\n"},
		{"empty layout", "guide:\n  layout:\n    columns: 0\n    rows: 3\n"},
		{"non-positive upload limit", "server:\n  max_upload_bytes: 0\n"},
		{"non-positive pixel limit", "server:\n  max_pixels: -1\n"},
		{"unknown page size", "guide:\n  page_size: Tabloid\n"},
		{"layout wider than the page", "guide:\n  layout:\n    columns: 10\n    rows: 3\n"},
		{"layout taller than the page", "guide:\n  page_size: A4\n  layout:\n    columns: 4\n    rows: 8\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "c.yaml", tt.content))
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvPort:      "3000",
		EnvLogLevel:  "warn",
		EnvLogFormat: "json",
		EnvMetric:    "lab",
		EnvEnhance:   "true",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "lab", cfg.Metric)
	assert.True(t, cfg.Enhance)

	env[EnvAddr] = "0.0.0.0:4000"
	cfg.ApplyEnv(func(k string) string { return env[k] })
	assert.Equal(t, "0.0.0.0:4000", cfg.Server.Addr, "explicit address wins over PORT")
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	const key = "CUBEMOSAIC_DOTENV_TEST"
	path := writeFile(t, ".env", key+"=from-dotenv\n")
	t.Cleanup(func() { os.Unsetenv(key) })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-dotenv", os.Getenv(key))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	t.Run("json handler", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := Log{Level: "info", Format: "json"}.NewLogger(&buf)
		require.NoError(t, err)

		logger.Info("Mosaic assembled", "cubes", 256)
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "Mosaic assembled", entry["msg"])
		assert.EqualValues(t, 256, entry["cubes"])
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := Log{Level: "warn", Format: "text"}.NewLogger(&buf)
		require.NoError(t, err)

		logger.Info("hidden")
		assert.Zero(t, buf.Len())
		logger.Warn("shown")
		assert.Contains(t, buf.String(), "msg=shown")
	})

	t.Run("bad level", func(t *testing.T) {
		_, err := Log{Level: "nope"}.NewLogger(&bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestApplyEnv_InvalidEnhanceIgnored(t *testing.T) {
	cfg := Default()
	cfg.Enhance = true
	cfg.ApplyEnv(func(k string) string {
		if k == EnvEnhance {
			return "sometimes"
		}
		return ""
	})
	assert.True(t, cfg.Enhance)
}
