// Package config loads the optional .kcv.yaml project configuration.
// Every field has a default reproducing the conventional keras-cv layout,
// so a missing or partial configuration file is never an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// DefaultFileName is the configuration file looked up at the project root.
const DefaultFileName = ".kcv.yaml"

// Config is the main configuration structure for kcv.
type Config struct {
	// PackageName is the distribution name patched during nightly builds.
	PackageName string `yaml:"package-name"`

	// ImportName is the package directory name inside the project root.
	ImportName string `yaml:"import-name"`

	// VersionFile is the path, relative to the project root, of the file
	// declaring the package version.
	VersionFile string `yaml:"version-file"`

	// VersionFormat selects how the version is extracted from VersionFile:
	// "regex" (default), "toml", "json", or "raw".
	VersionFormat string `yaml:"version-format,omitempty"`

	// VersionField is the dot-notation field path for toml/json formats.
	VersionField string `yaml:"version-field,omitempty"`

	// VersionPattern overrides the default __version__ regex pattern.
	VersionPattern string `yaml:"version-pattern,omitempty"`

	// MetadataFile is the packaging metadata file whose package name is
	// rewritten for nightly builds.
	MetadataFile string `yaml:"metadata-file"`

	// WheelsDir is where the packaging step deposits built wheels,
	// relative to the project root.
	WheelsDir string `yaml:"wheels-dir"`

	// DistDir is where selected wheels are copied, relative to the
	// project root.
	DistDir string `yaml:"dist-dir"`

	// NightlySuffix is appended to PackageName for nightly builds.
	NightlySuffix string `yaml:"nightly-suffix,omitempty"`
}

// Default returns the configuration for the conventional keras-cv layout.
func Default() *Config {
	return &Config{
		PackageName:   "keras-cv",
		ImportName:    "keras_cv",
		VersionFile:   filepath.Join("keras_cv", "src", "version_utils.py"),
		VersionFormat: "regex",
		MetadataFile:  "setup.py",
		WheelsDir:     "wheels",
		DistDir:       "dist",
		NightlySuffix: "-nightly",
	}
}

// Load reads the configuration file at path. A missing file yields the
// defaults; a present file is parsed and back-filled with defaults for any
// empty field.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return &cfg, nil
}

// LoadFromDir loads DefaultFileName from the given directory.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, DefaultFileName))
}

// applyDefaults back-fills empty fields with the conventional layout.
func (c *Config) applyDefaults() {
	def := Default()
	if c.PackageName == "" {
		c.PackageName = def.PackageName
	}
	if c.ImportName == "" {
		c.ImportName = def.ImportName
	}
	if c.VersionFile == "" {
		c.VersionFile = def.VersionFile
	}
	if c.VersionFormat == "" {
		c.VersionFormat = def.VersionFormat
	}
	if c.MetadataFile == "" {
		c.MetadataFile = def.MetadataFile
	}
	if c.WheelsDir == "" {
		c.WheelsDir = def.WheelsDir
	}
	if c.DistDir == "" {
		c.DistDir = def.DistDir
	}
	if c.NightlySuffix == "" {
		c.NightlySuffix = def.NightlySuffix
	}
}

// Validate checks structural constraints on the configuration.
func (c *Config) Validate() error {
	switch c.VersionFormat {
	case "regex", "raw":
	case "toml", "json":
		if c.VersionField == "" {
			return fmt.Errorf("version-field is required for version-format %q", c.VersionFormat)
		}
	default:
		return fmt.Errorf("unknown version-format %q", c.VersionFormat)
	}

	if filepath.IsAbs(c.WheelsDir) || filepath.IsAbs(c.DistDir) {
		return fmt.Errorf("wheels-dir and dist-dir must be relative to the project root")
	}
	return nil
}

// NightlyPackageName returns the package name used for nightly builds.
func (c *Config) NightlyPackageName() string {
	return c.PackageName + c.NightlySuffix
}
