package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Search.APIKey = "test-key"
	cfg.Search.EngineID = "test-cx"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "images", cfg.Download.OutputDirectory)
	assert.Equal(t, 500, cfg.Download.Target)
	assert.Equal(t, StrategyPreserve, cfg.Download.Strategy)
	assert.Equal(t, "https://www.googleapis.com/customsearch/v1", cfg.Search.BaseURL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Zero(t, cfg.Download.MaxPages)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GIMGDL_API_KEY", "env-key")
	t.Setenv("GIMGDL_ENGINE_ID", "env-cx")
	t.Setenv("GIMGDL_OUTPUT_DIR", "/tmp/hedgehogs")
	t.Setenv("GIMGDL_TARGET", "42")
	t.Setenv("GIMGDL_STRATEGY", "jpeg")
	t.Setenv("GIMGDL_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "env-key", cfg.Search.APIKey)
	assert.Equal(t, "env-cx", cfg.Search.EngineID)
	assert.Equal(t, "/tmp/hedgehogs", cfg.Download.OutputDirectory)
	assert.Equal(t, 42, cfg.Download.Target)
	assert.Equal(t, StrategyJPEG, cfg.Download.Strategy)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvInvalidTarget(t *testing.T) {
	t.Setenv("GIMGDL_TARGET", "lots")

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromEnv())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{"valid config", func(*Config) {}, false},
		{"missing api key", func(c *Config) { c.Search.APIKey = "" }, true},
		{"missing engine id", func(c *Config) { c.Search.EngineID = "" }, true},
		{"zero target", func(c *Config) { c.Download.Target = 0 }, true},
		{"unknown strategy", func(c *Config) { c.Download.Strategy = "webp" }, true},
		{"jpeg strategy", func(c *Config) { c.Download.Strategy = "jpeg" }, false},
		{"bad quality", func(c *Config) { c.Download.JPEGQuality = 101 }, true},
		{"negative max pages", func(c *Config) { c.Download.MaxPages = -1 }, true},
		{"negative min width", func(c *Config) { c.Download.MinWidth = -5 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }, true},
		{"empty output", func(c *Config) { c.Download.OutputDirectory = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
search:
  api_key: file-key
  engine_id: file-cx
  safe: active
download:
  output_directory: ./out
  target: 25
  min_width: 640
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "file-key", cfg.Search.APIKey)
	assert.Equal(t, "active", cfg.Search.Safe)
	assert.Equal(t, "./out", cfg.Download.OutputDirectory)
	assert.Equal(t, 25, cfg.Download.Target)
	assert.Equal(t, 640, cfg.Download.MinWidth)
	assert.Equal(t, "warn", cfg.Logging.Level)
	// untouched keys keep their defaults
	assert.Equal(t, StrategyPreserve, cfg.Download.Strategy)
}

func TestLoadFromFileErrors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("search: [unclosed"), 0644))
	assert.Error(t, cfg.LoadFromFile(bad))
}

func TestLoadPrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  api_key: file-key\n  engine_id: file-cx\ndownload:\n  target: 10\n"), 0644))

	t.Setenv("GIMGDL_TARGET", "20")

	cfg, err := Load(path, map[string]interface{}{
		"target":  30,
		"timeout": 5 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Download.Target)
	assert.Equal(t, "file-key", cfg.Search.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Download.Timeout)
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"api-key":       "flag-key",
		"engine-id":     "flag-cx",
		"img-size":      "large",
		"output":        "out",
		"strategy":      StrategyJPEG,
		"min-width":     640,
		"min-height":    480,
		"max-pages":     3,
		"save-metadata": true,
		"metrics-file":  "run.prom",
		"safe":          "",
	})

	assert.Equal(t, "flag-key", cfg.Search.APIKey)
	assert.Equal(t, "flag-cx", cfg.Search.EngineID)
	assert.Equal(t, "large", cfg.Search.ImgSize)
	assert.Empty(t, cfg.Search.Safe)
	assert.Equal(t, "out", cfg.Download.OutputDirectory)
	assert.Equal(t, StrategyJPEG, cfg.Download.Strategy)
	assert.Equal(t, 640, cfg.Download.MinWidth)
	assert.Equal(t, 480, cfg.Download.MinHeight)
	assert.Equal(t, 3, cfg.Download.MaxPages)
	assert.True(t, cfg.Download.SaveMetadata)
	assert.Equal(t, "run.prom", cfg.Metrics.TextfilePath)
	assert.Equal(t, 500, cfg.Download.Target, "absent keys leave values untouched")
}

func TestLoadFailsValidation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GIMGDL_API_KEY", "")
	t.Setenv("GIMGDL_ENGINE_ID", "")

	_, err := Load("", nil)
	assert.Error(t, err)

	cfg, err := Resolve("", map[string]interface{}{"api-key": "k"})
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.Search.APIKey)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := validConfig()
	cfg.Download.Strategy = StrategyJPEG

	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, cfg, loaded)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "***", MaskSecret("abc"))
	assert.Equal(t, "*****6789", MaskSecret("123456789"))
}
