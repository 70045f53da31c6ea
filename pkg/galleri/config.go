package galleri

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultConfigFile is the configuration file the CLI reads unless told otherwise.
var DefaultConfigFile = "galleri.toml"

// Box is a bounding box in pixels.
type Box struct {
	Width  uint `toml:"width"`
	Height uint `toml:"height"`
}

// Config holds configuration for a gallery build. It is not modified once loaded.
type Config struct {
	Input     string `toml:"input"`
	Output    string `toml:"output"`
	Thumbnail Box    `toml:"thumbnail"`
	// Resize scales the main rendition; nil copies the source verbatim.
	Resize *Box `toml:"resize,omitempty"`

	// Extensions are accepted file extensions without the dot. Matching is case-sensitive.
	Extensions []string `toml:"extensions,omitempty"`
	Theme      string   `toml:"theme,omitempty"`
	Quality    int      `toml:"quality,omitempty"`
	Workers    int      `toml:"workers,omitempty"`
	Codec      string   `toml:"codec,omitempty"`
}

var (
	defaultExtensions = []string{"jpg"}
	defaultTheme      = "_theme"
	defaultQuality    = 90
	codecs            = []string{"bild", "imaging"}
)

// DefaultConfig returns the configuration written by "galleri new".
func DefaultConfig() *Config {
	return &Config{
		Input:      "input",
		Output:     "_build",
		Thumbnail:  Box{Width: 450, Height: 300},
		Extensions: slices.Clone(defaultExtensions),
		Theme:      defaultTheme,
	}
}

// LoadConfig reads and validates the TOML configuration at path.
func LoadConfig(path string) (*Config, error) {
	c := &Config{}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	if un := md.Undecoded(); len(un) > 0 {
		keys := []string{}
		for _, k := range un {
			keys = append(keys, k.String())
		}
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))}
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return c, nil
}

// WriteDefaultConfig writes DefaultConfig to path, replacing any existing file.
func WriteDefaultConfig(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}

	if err := toml.NewEncoder(f).Encode(DefaultConfig()); err != nil {
		f.Close()
		return fmt.Errorf("encode: %w", err)
	}
	return f.Close()
}

func (c *Config) applyDefaults() {
	if len(c.Extensions) == 0 {
		c.Extensions = slices.Clone(defaultExtensions)
	}
	if c.Theme == "" {
		c.Theme = defaultTheme
	}
	if c.Quality == 0 {
		c.Quality = defaultQuality
	}
	if c.Codec == "" {
		c.Codec = codecs[0]
	}
}

// Validate reports the first problem that would make a build meaningless.
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.New("input is required")
	}
	if c.Output == "" {
		return errors.New("output is required")
	}
	in, err := filepath.Abs(c.Input)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	out, err := filepath.Abs(c.Output)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	// a nested output would be scanned (or watched) as input on the next build
	if within(in, out) || within(out, in) {
		return fmt.Errorf("input %q and output %q must not contain each other", c.Input, c.Output)
	}
	if c.Thumbnail.Width == 0 || c.Thumbnail.Height == 0 {
		return fmt.Errorf("thumbnail box must be non-zero, got %dx%d", c.Thumbnail.Width, c.Thumbnail.Height)
	}
	if c.Resize != nil && (c.Resize.Width == 0 || c.Resize.Height == 0) {
		return fmt.Errorf("resize needs both width and height, got %dx%d", c.Resize.Width, c.Resize.Height)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be within 1-100, got %d", c.Quality)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if !slices.Contains(codecs, c.Codec) {
		return fmt.Errorf("unknown codec %q, want one of %v", c.Codec, codecs)
	}
	for _, e := range c.Extensions {
		if e == "" || strings.HasPrefix(e, ".") {
			return fmt.Errorf("extension %q must be non-empty and without a leading dot", e)
		}
	}
	return nil
}

// StaticRoot is the theme's asset tree, mirrored into the output's static directory.
func (c *Config) StaticRoot() string {
	return filepath.Join(c.Theme, "static")
}

func (c *Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return max(runtime.GOMAXPROCS(0), 1)
}
