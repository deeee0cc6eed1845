// Package config loads sitepatch settings from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/sitepatch/internal/model"
)

// FileName is the config file looked up in the site root.
const FileName = "sitepatch.yaml"

// DefaultServices lists the service slugs whose per-city pages are collapsed.
var DefaultServices = []string{
	"janitorial-service",
	"deep-cleaning",
	"carpet-cleaning",
	"upholstery-cleaning",
	"general-housekeeping",
}

var slugRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Stylesheet describes the stylesheet the injector guarantees.
type Stylesheet struct {
	Marker string `yaml:"marker"` // Presence of this text means nothing to do
	Anchor string `yaml:"anchor"` // Filename of the link to insert after
	Href   string `yaml:"href"`   // Relative to the assets prefix
}

// Config holds all tunables. The zero value is not usable; call Default.
type Config struct {
	Services   []string   `yaml:"services"`
	Stylesheet Stylesheet `yaml:"stylesheet"`
	Exclude    []string   `yaml:"exclude"`
	Extension  string     `yaml:"extension"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Services: append([]string(nil), DefaultServices...),
		Stylesheet: Stylesheet{
			Marker: "premium.css",
			Anchor: "responsive.css",
			Href:   "css/premium.css",
		},
		Exclude:   []string{"*build*"},
		Extension: ".html",
	}
}

// Load reads path over the defaults. An empty path means <root>/sitepatch.yaml,
// which may be absent; an explicit path must exist.
func Load(root, path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, FileName)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, &model.OpError{
			Op:   "config.load",
			Kind: model.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, &model.OpError{
			Op:   "config.load",
			Kind: model.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, &model.OpError{
			Op:   "config.validate",
			Kind: model.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}
	return cfg, nil
}

// Validate checks that the settings can drive a rewrite.
func (c Config) Validate() error {
	if len(c.Services) == 0 {
		return errors.New("services: at least one slug required")
	}
	for _, s := range c.Services {
		if !slugRe.MatchString(s) {
			return fmt.Errorf("services: invalid slug %q", s)
		}
	}
	switch {
	case c.Stylesheet.Marker == "":
		return errors.New("stylesheet.marker is empty")
	case c.Stylesheet.Anchor == "":
		return errors.New("stylesheet.anchor is empty")
	case c.Stylesheet.Href == "":
		return errors.New("stylesheet.href is empty")
	}
	if len(c.Extension) < 2 || c.Extension[0] != '.' {
		return fmt.Errorf("extension: %q must look like .html", c.Extension)
	}
	return nil
}
