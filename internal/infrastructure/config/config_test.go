package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Recipebook", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./data/recipes.json", cfg.Catalog.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Catalog.ReloadDebounce)
	assert.Equal(t, time.Second, cfg.Images.Delay)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, "log", cfg.Analytics.Bus)
	assert.Equal(t, 14*time.Minute, cfg.Server.GenerationTimeout)
	assert.GreaterOrEqual(t, cfg.Server.GenerationTimeout, cfg.AI.Timeout)
	assert.Less(t, cfg.Server.GenerationTimeout, cfg.Server.WriteTimeout)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFileAndEnvironment(t *testing.T) {
	dir := chdirTemp(t)

	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
app:
  environment: production
catalog:
  path: /srv/recipes.json
  strict: true
images:
  delay: 2s
`), 0o600))

	t.Setenv("RECIPEBOOK_SERVER_PORT", "9000")
	t.Setenv("RECIPEBOOK_AI_API_KEY", "sk-test")

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "/srv/recipes.json", cfg.Catalog.Path)
	assert.True(t, cfg.Catalog.Strict)
	assert.Equal(t, 2*time.Second, cfg.Images.Delay)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RECIPEBOOK_CACHE_DRIVER=redis\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("RECIPEBOOK_CACHE_DRIVER") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Cache.Driver)
}

func TestValidate(t *testing.T) {
	chdirTemp(t)

	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"no catalog path", func(c *Config) { c.Catalog.Path = "" }},
		{"negative delay", func(c *Config) { c.Images.Delay = -time.Second }},
		{"unknown database", func(c *Config) { c.Database.Driver = "mysql" }},
		{"unknown cache", func(c *Config) { c.Cache.Driver = "memcached" }},
		{"unknown bus", func(c *Config) { c.Analytics.Bus = "kafka" }},
		{"generation shorter than image call", func(c *Config) {
			c.AI.Timeout = time.Minute
			c.Server.GenerationTimeout = 30 * time.Second
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateGenerationTimeout(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	cfg.AI.Timeout = time.Minute
	cfg.Server.RequestTimeout = 30 * time.Second
	cfg.Server.GenerationTimeout = time.Minute
	assert.NoError(t, cfg.Validate())

	cfg.Server.GenerationTimeout = 0
	assert.NoError(t, cfg.Validate(), "zero disables the generation timeout")
}
