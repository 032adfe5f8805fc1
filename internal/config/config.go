// Package config handles ripple.toml project configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"ripple/internal/module"
)

// FileName is the manifest file looked up in project directories.
const FileName = "ripple.toml"

// Config represents a ripple.toml project configuration.
type Config struct {
	Project Project `toml:"project"`
	Source  Source  `toml:"source"`
	Window  Window  `toml:"window"`
	Input   Input   `toml:"input"`
	Log     Log     `toml:"log"`

	// Dir is the directory containing the manifest (set at load time).
	Dir string `toml:"-"`
}

type Project struct {
	Name   string `toml:"name"`
	Module string `toml:"module"`
}

// Source lists module search roots, relative to Dir.
type Source struct {
	Roots []string `toml:"roots"`
}

type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

// Input configures key auto-repeat, in ticks.
type Input struct {
	RepeatDelay    int `toml:"repeat_delay"`
	RepeatInterval int `toml:"repeat_interval"`
}

type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no manifest exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Project.Module == "" {
		c.Project.Module = c.Project.Name
	}
	if len(c.Source.Roots) == 0 {
		c.Source.Roots = []string{"."}
	}
	if c.Window.Width == 0 {
		c.Window.Width = 640
	}
	if c.Window.Height == 0 {
		c.Window.Height = 480
	}
	if c.Window.Title == "" {
		c.Window.Title = c.Project.Name
		if c.Window.Title == "" {
			c.Window.Title = "ripple"
		}
	}
	if c.Input.RepeatDelay == 0 {
		c.Input.RepeatDelay = 30
	}
	if c.Input.RepeatInterval == 0 {
		c.Input.RepeatInterval = 4
	}
}

// Load parses the manifest in dir and applies defaults. Unknown keys are an
// error.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	c.applyDefaults()
	return &c, nil
}

// FindAndLoad walks up from startDir to the nearest manifest. It returns
// nil, nil when there is none.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if err := module.ValidateName(c.Project.Module); err != nil {
		errs = append(errs, fmt.Errorf("project.module: %w", err))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window: size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Input.RepeatDelay <= 0 {
		errs = append(errs, fmt.Errorf("input.repeat_delay: must be positive, got %d", c.Input.RepeatDelay))
	}
	if c.Input.RepeatInterval <= 0 {
		errs = append(errs, fmt.Errorf("input.repeat_interval: must be positive, got %d", c.Input.RepeatInterval))
	}
	if c.Log.Verbosity < 0 {
		errs = append(errs, fmt.Errorf("log.verbosity: must not be negative"))
	}
	return errors.Join(errs...)
}

// SourceRootPaths returns the absolute source roots.
func (c *Config) SourceRootPaths() []string {
	var paths []string
	for _, r := range c.Source.Roots {
		if filepath.IsAbs(r) {
			paths = append(paths, r)
			continue
		}
		paths = append(paths, filepath.Join(c.Dir, r))
	}
	return paths
}

// LogFile returns the configured log file path, or nil for stderr.
func (c *Config) LogFile() *string {
	if c.Log.File == "" {
		return nil
	}
	p := c.Log.File
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.Dir, p)
	}
	return &p
}

// Encode renders c as a manifest.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
