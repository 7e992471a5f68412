package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crawler.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 10*time.Second, cfg.HTTP.DialTimeout)
	assert.Equal(t, 8, cfg.Crawl.Concurrency)

	ns, err := cfg.Site("ns")
	require.NoError(t, err)
	assert.Equal(t, 1900, ns.MaxPage)
	assert.True(t, ns.LegacyRenegotiation)

	sk, err := cfg.Site("sk")
	require.NoError(t, err)
	assert.Equal(t, "POST", sk.Templates["search"].Method)
	assert.Contains(t, sk.Templates, "main")
}

func TestLoadOverlaysFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
http:
  timeout: 5s
crawl:
  concurrency: 2
sites:
  fd:
    page_size: 25
    templates:
      search:
        method: GET
        url: http://localhost:8080/search
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Encoding, "unset fields keep their defaults")
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 2, cfg.Crawl.Concurrency)

	fd, err := cfg.Site("fd")
	require.NoError(t, err)
	assert.Equal(t, 25, fd.PageSize)
	assert.Equal(t, "https://lobbycanada.gc.ca", fd.RootURL)
	assert.Equal(t, "http://localhost:8080/search", fd.Templates["search"].URL)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "http: [not, a, map]"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero timeout", func(c *Config) { c.HTTP.Timeout = 0 }, ErrInvalidTimeout},
		{"zero concurrency", func(c *Config) { c.Crawl.Concurrency = 0 }, ErrInvalidConcurrency},
		{"zero size cap", func(c *Config) { c.HTTP.SizeCap = 0 }, ErrInvalidSizeCap},
		{"unknown site", func(c *Config) { c.Sites["bc"] = Site{} }, ErrUnknownSite},
		{"missing template", func(c *Config) {
			sk := c.Sites["sk"]
			delete(sk.Templates, "main")
			c.Sites["sk"] = sk
		}, ErrMissingTemplate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Default()
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestSiteUnknown(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	_, err = cfg.Site("on")
	assert.ErrorIs(t, err, ErrUnknownSite)
}
