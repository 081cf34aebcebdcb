// Package config holds the site configuration.
//
// The configuration file is YAML with upper-case keys. Unknown upper-case keys
// are kept and exposed to templates; lower-case keys are ignored.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// DefaultFile is read when no --config flag is given.
const DefaultFile = "siteconf.yaml"

// Config is the merged result of defaults, the configuration file and CLI overrides.
type Config struct {
	SourceDir          string   `yaml:"SOURCEDIR"`
	DestDir            string   `yaml:"DESTDIR"`
	DirIndexTemplates  []string `yaml:"DIRINDEX_TEMPLATES"`
	DirIndex           string   `yaml:"DIRINDEX"`
	PageExtensions     []string `yaml:"PAGE_EXTENSIONS"`
	TemplateExtensions []string `yaml:"TEMPLATE_EXTENSIONS"`
	// Theme is a directory with templates/ and assets/. Empty selects the built-in theme.
	Theme           string `yaml:"THEME"`
	ThemeAssetsPath string `yaml:"THEME_ASSETS_PATH"`
	Debug           bool   `yaml:"DEBUG"`
	MetricsFile     string `yaml:"METRICS_FILE"`

	Extra map[string]any `yaml:",inline"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	return &Config{
		DirIndexTemplates:  []string{"index.html.template"},
		DirIndex:           "index.html",
		PageExtensions:     []string{"md"},
		TemplateExtensions: []string{"template"},
		ThemeAssetsPath:    "/assets",
		Extra:              map[string]any{},
	}
}

// Load reads path on top of the defaults. A missing file yields the
// defaults; an unreadable one is logged and also yields the defaults.
// Environment references like ${HOME} are expanded after .env files are loaded.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Debug("Configuration file not found, using defaults", logfields.ConfigFile(path))
		return cfg, nil
	case err != nil:
		slog.Warn("Failed to open configuration file, using defaults", logfields.ConfigFile(path), logfields.Error(err))
		return cfg, nil
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse configuration file").
			Fatal().
			WithContext("file", path).
			Build()
	}
	if cfg.Extra == nil {
		cfg.Extra = map[string]any{}
	}
	maps.DeleteFunc(cfg.Extra, func(k string, _ any) bool { return !isUpperKey(k) })
	return cfg, nil
}

// Overrides are values given on the command line. Empty strings leave the
// configured value alone.
type Overrides struct {
	SourceDir   string
	DestDir     string
	Debug       bool
	MetricsFile string
}

// Apply merges o into c.
func (c *Config) Apply(o Overrides) {
	if o.SourceDir != "" {
		c.SourceDir = o.SourceDir
	}
	if o.DestDir != "" {
		c.DestDir = o.DestDir
	}
	if o.MetricsFile != "" {
		c.MetricsFile = o.MetricsFile
	}
	c.Debug = c.Debug || o.Debug
}

// Validate checks the keys a build cannot run without.
func (c *Config) Validate() error {
	for _, req := range []struct{ key, value string }{
		{"SOURCEDIR", c.SourceDir},
		{"DESTDIR", c.DestDir},
	} {
		if req.value == "" {
			return ferrors.ConfigError(req.key + " must be provided in the configuration file or on the command line.").
				WithContext("key", req.key).
				Build()
		}
	}
	if c.DirIndex == "" || strings.ContainsAny(c.DirIndex, `/\`) {
		return ferrors.ValidationError(fmt.Sprintf("DIRINDEX must be a plain file name, got %q", c.DirIndex)).Build()
	}
	for _, ext := range c.PageExtensions {
		for _, other := range c.TemplateExtensions {
			if ext == other {
				return ferrors.ValidationError(fmt.Sprintf("extension %q is listed in both PAGE_EXTENSIONS and TEMPLATE_EXTENSIONS", ext)).Build()
			}
		}
	}
	return nil
}

// AsMap returns the configuration keyed the way templates see it.
func (c *Config) AsMap() map[string]any {
	m := make(map[string]any, len(c.Extra)+10)
	maps.Copy(m, c.Extra)
	m["SOURCEDIR"] = c.SourceDir
	m["DESTDIR"] = c.DestDir
	m["DIRINDEX_TEMPLATES"] = c.DirIndexTemplates
	m["DIRINDEX"] = c.DirIndex
	m["PAGE_EXTENSIONS"] = c.PageExtensions
	m["TEMPLATE_EXTENSIONS"] = c.TemplateExtensions
	m["THEME"] = c.Theme
	m["THEME_ASSETS_PATH"] = c.ThemeAssetsPath
	m["DEBUG"] = c.Debug
	m["METRICS_FILE"] = c.MetricsFile
	return m
}

// isUpperKey reports whether k has at least one letter and no lower-case letters.
func isUpperKey(k string) bool {
	cased := false
	for _, r := range k {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
