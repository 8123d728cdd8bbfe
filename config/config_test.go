package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gpustats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: /tmp/catalog.db
pacing:
  min_delay: 2s
  max_delay: 3s
  requests_per_minute: 20
log:
  level: debug
sources:
  - name: shop
    kind: listing
    enabled: true
    fetcher: http
    attribute: shop_avg
    url: "https://shop.example/search?q={query}"
    item_selector: ".item"
    label_selector: ".title"
    value_selector: ".price"
    match_on: label
    cap: 3
    markers: [used]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/catalog.db", cfg.Database.DSN)
	assert.Equal(t, "gpus", cfg.Database.Table)
	assert.Equal(t, 2*time.Second, cfg.Pacing.MinDelay)
	assert.Equal(t, 3*time.Second, cfg.Pacing.MaxDelay)
	assert.Equal(t, 20, cfg.Pacing.RequestsPerMinute)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)

	require.Len(t, cfg.Sources, 1)
	src := cfg.Sources[0]
	assert.Equal(t, "shop", src.Name)
	assert.Equal(t, FetcherHTTP, src.Fetcher)
	assert.Equal(t, 3, src.Cap)
	assert.Equal(t, []string{"used"}, src.Markers)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "log:\n  format: json\n")
	t.Setenv("GPUSTATS_DATABASE_DSN", "/var/lib/gpustats/gpus.db")
	t.Setenv("GPUSTATS_FETCH_TIMEOUT", "45s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/gpustats/gpus.db", cfg.Database.DSN)
	assert.Equal(t, 45*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Len(t, cfg.Sources, len(DefaultSources()), "built-in sources when none are configured")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	path := writeConfig(t, "database:\n  driver: mysql\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidDriver)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		want   error
	}{
		{"default is valid", func(c *Config) {}, nil},
		{"missing dsn", func(c *Config) { c.Database.DSN = "" }, ErrMissingDSN},
		{"zero timeout", func(c *Config) { c.Fetch.Timeout = 0 }, ErrInvalidTimeout},
		{"inverted pacing", func(c *Config) { c.Pacing.MaxDelay = time.Second }, ErrInvalidPacing},
		{"negative rate", func(c *Config) { c.Pacing.RequestsPerMinute = -1 }, ErrInvalidPacing},
		{"duplicate source", func(c *Config) { c.Sources = append(c.Sources, c.Sources[0]) }, ErrDuplicateSource},
		{"bad attribute", func(c *Config) { c.Sources[0].Attribute = "Amazon Price" }, ErrInvalidSource},
		{"listing without query", func(c *Config) { c.Sources[0].URL = "https://www.amazon.com/s" }, ErrInvalidSource},
		{"unknown kind", func(c *Config) { c.Sources[0].Kind = "feed" }, ErrInvalidSource},
		{"unknown fetcher", func(c *Config) { c.Sources[0].Fetcher = "curl" }, ErrInvalidSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSelectSources(t *testing.T) {
	cfg := Default()

	enabled, err := cfg.SelectSources(nil)
	require.NoError(t, err)
	names := make([]string, 0, len(enabled))
	for _, s := range enabled {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"amazon", "ebay", "relative_performance"}, names)

	selected, err := cfg.SelectSources([]string{"specs"})
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.False(t, selected[0].Enabled, "disabled sources can still be run by name")

	_, err = cfg.SelectSources([]string{"amazon", "newegg"})
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestSourceAttributes(t *testing.T) {
	cfg := Default()

	amazon, _ := cfg.Source("amazon")
	require.Len(t, amazon.Attributes(), 1)
	assert.Equal(t, "amazon_new_avg", amazon.Attributes()[0].Name)

	specs, _ := cfg.Source("specs")
	var names []string
	for _, a := range specs.Attributes() {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"tdp", "base_clock", "driver_support", "launch_prices"}, names)
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gpustats.yaml")

	require.NoError(t, WriteFile(path, Default(), false))
	assert.Error(t, WriteFile(path, Default(), false), "existing file is kept without force")
	require.NoError(t, WriteFile(path, Default(), true))

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want.Pacing, cfg.Pacing)
	assert.Equal(t, want.Fetch, cfg.Fetch)
	assert.Equal(t, want.Schedule, cfg.Schedule)
	assert.Equal(t, want.Sources, cfg.Sources)
}
