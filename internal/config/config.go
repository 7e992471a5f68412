// Package config loads crawler configuration from YAML. Built-in defaults
// are embedded; a file passed to Load overlays them field by field.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abraham-mv/huon-test/internal/models"
	"github.com/abraham-mv/huon-test/internal/sites"
	"github.com/abraham-mv/huon-test/internal/traverse"
	"github.com/abraham-mv/huon-test/pkg/logger"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Log   logger.Config   `yaml:"log"`
	HTTP  HTTP            `yaml:"http"`
	Crawl Crawl           `yaml:"crawl"`
	Sites map[string]Site `yaml:"sites"`
}

type HTTP struct {
	Timeout     time.Duration `yaml:"timeout"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	SizeCap     int64         `yaml:"size_cap"`
	UserAgent   string        `yaml:"user_agent"`
}

type Crawl struct {
	// Concurrency bounds in-flight detail fetches per listing.
	Concurrency int `yaml:"concurrency"`
}

// Site is the per-registry section. LegacyRenegotiation permits TLS
// renegotiation for servers that still require it.
type Site struct {
	traverse.Options    `yaml:",inline"`
	LegacyRenegotiation bool `yaml:"legacy_renegotiation"`
}

// requiredTemplates names the request templates each site builds from.
var requiredTemplates = map[string][]string{
	"fd": {"search"},
	"ns": {"search"},
	"sk": {"search", "main"},
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		return nil, fmt.Errorf("parse defaults: %w", err)
	}
	return &cfg, nil
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.overlay(file)
	return cfg, nil
}

func (c *Config) overlay(o Config) {
	if o.Log.Level != "" {
		c.Log.Level = o.Log.Level
	}
	if o.Log.Encoding != "" {
		c.Log.Encoding = o.Log.Encoding
	}
	if len(o.Log.Outputs) > 0 {
		c.Log.Outputs = o.Log.Outputs
	}
	if o.HTTP.Timeout != 0 {
		c.HTTP.Timeout = o.HTTP.Timeout
	}
	if o.HTTP.DialTimeout != 0 {
		c.HTTP.DialTimeout = o.HTTP.DialTimeout
	}
	if o.HTTP.SizeCap != 0 {
		c.HTTP.SizeCap = o.HTTP.SizeCap
	}
	if o.HTTP.UserAgent != "" {
		c.HTTP.UserAgent = o.HTTP.UserAgent
	}
	if o.Crawl.Concurrency != 0 {
		c.Crawl.Concurrency = o.Crawl.Concurrency
	}
	if c.Sites == nil {
		c.Sites = map[string]Site{}
	}
	for id, s := range o.Sites {
		base := c.Sites[id]
		if s.RootURL != "" {
			base.RootURL = s.RootURL
		}
		if s.PageSize != 0 {
			base.PageSize = s.PageSize
		}
		if s.MaxPage != 0 {
			base.MaxPage = s.MaxPage
		}
		if s.LegacyRenegotiation {
			base.LegacyRenegotiation = true
		}
		// templates replace by name
		if len(s.Templates) > 0 {
			tpls := maps.Clone(base.Templates)
			if tpls == nil {
				tpls = map[string]models.Request{}
			}
			maps.Copy(tpls, s.Templates)
			base.Templates = tpls
		}
		c.Sites[id] = base
	}
}

// Validate returns the first problem found.
func (c *Config) Validate() error {
	if c.HTTP.Timeout <= 0 || c.HTTP.DialTimeout < 0 {
		return ErrInvalidTimeout
	}
	if c.HTTP.SizeCap <= 0 {
		return ErrInvalidSizeCap
	}
	if c.Crawl.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	var errs []error
	for _, id := range slices.Sorted(maps.Keys(c.Sites)) {
		s := c.Sites[id]
		if !sites.Known(id) {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownSite, id))
			continue
		}
		for _, name := range requiredTemplates[id] {
			if _, ok := s.Templates[name]; !ok {
				errs = append(errs, fmt.Errorf("%s: %w", id, &traverse.TemplateError{Name: name}))
			}
		}
	}
	return errors.Join(errs...)
}

// Site returns the configuration of one registry.
func (c *Config) Site(id string) (Site, error) {
	if !sites.Known(id) {
		return Site{}, fmt.Errorf("%w: %q", ErrUnknownSite, id)
	}
	return c.Sites[id], nil
}
