// Package config loads and validates chart configurations.
//
// A configuration names the root individuals of a chart, how far to walk
// their ancestry, who to leave out, which child anchors each family block,
// and how hard the optimizers may work. It is read from TOML, YAML or JSON:
//
//	[[roots]]
//	id = "I1"
//	generations = 4
//
//	[placement.F12]
//	spouse_family = "F30"
//	individual = "I7"
//
//	[optimize]
//	compress_steps = 500
//
// [Config.Snapshot] hashes the normalized configuration so a chart can tell
// whether it needs to rebuild.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/lifelines/pkg/cache"
	"github.com/matzehuels/lifelines/pkg/errors"
	"github.com/matzehuels/lifelines/pkg/genealogy"
	"github.com/matzehuels/lifelines/pkg/layout"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultGenerations applies to roots that leave generations unset.
	DefaultGenerations = 4

	// DefaultFlipSteps bounds the flip optimizer.
	DefaultFlipSteps = 200

	// DefaultCompressSteps bounds the compress optimizer.
	DefaultCompressSteps = 2000

	// DefaultStep is the horizontal distance between columns in pixels.
	DefaultStep = 24.0

	// DefaultMargin is the drawing margin in pixels.
	DefaultMargin = 40.0

	// DefaultYearHeight is the vertical size of one year in pixels.
	DefaultYearHeight = 6.0
)

// Format names accepted by [Parse].
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// =============================================================================
// Config
// =============================================================================

// Config is a chart configuration.
type Config struct {
	Roots     []Root                     `json:"roots" toml:"roots" yaml:"roots"`
	Exclude   []string                   `json:"exclude,omitempty" toml:"exclude" yaml:"exclude"`
	Placement map[string]layout.Override `json:"placement,omitempty" toml:"placement" yaml:"placement"`
	Optimize  Optimize                   `json:"optimize" toml:"optimize" yaml:"optimize"`
	Display   Display                    `json:"display" toml:"display" yaml:"display"`
	Render    Render                     `json:"render" toml:"render" yaml:"render"`
}

// Root is one chart root. Generations of zero means [DefaultGenerations];
// a negative value is unlimited.
type Root struct {
	ID          string `json:"id" toml:"id" yaml:"id"`
	Generations int    `json:"generations,omitempty" toml:"generations" yaml:"generations"`
}

// Optimize controls the optimizers. Step limits of zero take the defaults;
// negative limits are unlimited.
type Optimize struct {
	Flip          *bool `json:"flip,omitempty" toml:"flip" yaml:"flip"`
	Compress      *bool `json:"compress,omitempty" toml:"compress" yaml:"compress"`
	FlipSteps     int   `json:"flip_steps,omitempty" toml:"flip_steps" yaml:"flip_steps"`
	CompressSteps int   `json:"compress_steps,omitempty" toml:"compress_steps" yaml:"compress_steps"`
}

// FlipEnabled reports whether the flip optimizer runs.
func (o Optimize) FlipEnabled() bool { return o.Flip == nil || *o.Flip }

// CompressEnabled reports whether the compress optimizer runs.
func (o Optimize) CompressEnabled() bool { return o.Compress == nil || *o.Compress }

// Display controls what the chart contains.
type Display struct {
	ShowSiblings    *bool `json:"show_siblings,omitempty" toml:"show_siblings" yaml:"show_siblings"`
	MinDistanceDays int   `json:"min_distance_days,omitempty" toml:"min_distance_days" yaml:"min_distance_days"`
}

// SiblingsShown reports whether siblings of ancestors are drawn.
func (d Display) SiblingsShown() bool { return d.ShowSiblings == nil || *d.ShowSiblings }

// Render holds drawing dimensions in pixels.
type Render struct {
	Step       float64 `json:"step,omitempty" toml:"step" yaml:"step"`
	Margin     float64 `json:"margin,omitempty" toml:"margin" yaml:"margin"`
	YearHeight float64 `json:"year_height,omitempty" toml:"year_height" yaml:"year_height"`
	Debug      bool    `json:"debug,omitempty" toml:"debug" yaml:"debug"`
}

// =============================================================================
// Loading
// =============================================================================

// Load reads, defaults and validates a configuration file. The format
// follows the extension: .toml, .yaml/.yml or .json.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read decodes a configuration file without validating it, for callers
// that complete the configuration before use.
func Read(path string) (*Config, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, format)
}

// FormatFromPath maps a file extension to a format name.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported config extension %q", filepath.Ext(path))
}

// Parse decodes, defaults and validates a configuration.
func Parse(data []byte, format string) (*Config, error) {
	cfg, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode decodes a configuration without defaults or validation.
func Decode(data []byte, format string) (*Config, error) {
	var cfg Config
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &cfg)
	case FormatYAML:
		err = yaml.Unmarshal(data, &cfg)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s config", format)
	}
	return &cfg, nil
}

// Marshal encodes the configuration in the given format.
func (c *Config) Marshal(format string) ([]byte, error) {
	switch format {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatYAML:
		return yaml.Marshal(c)
	case FormatJSON:
		return json.MarshalIndent(c, "", "  ")
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q", format)
}

// =============================================================================
// Validation
// =============================================================================

// SetDefaults fills unset values.
func (c *Config) SetDefaults() {
	for i := range c.Roots {
		if c.Roots[i].Generations == 0 {
			c.Roots[i].Generations = DefaultGenerations
		}
	}
	if c.Optimize.FlipSteps == 0 {
		c.Optimize.FlipSteps = DefaultFlipSteps
	}
	if c.Optimize.CompressSteps == 0 {
		c.Optimize.CompressSteps = DefaultCompressSteps
	}
	if c.Display.MinDistanceDays == 0 {
		c.Display.MinDistanceDays = layout.DefaultMinDistance
	}
	if c.Render.Step == 0 {
		c.Render.Step = DefaultStep
	}
	if c.Render.Margin == 0 {
		c.Render.Margin = DefaultMargin
	}
	if c.Render.YearHeight == 0 {
		c.Render.YearHeight = DefaultYearHeight
	}
}

// Validate checks identifiers and ranges.
func (c *Config) Validate() error {
	if len(c.Roots) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "at least one root is required")
	}
	seen := make(map[string]bool, len(c.Roots))
	for _, r := range c.Roots {
		if err := errors.ValidateID(r.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "root")
		}
		if seen[r.ID] {
			return errors.New(errors.ErrCodeInvalidConfig, "duplicate root %s", r.ID)
		}
		seen[r.ID] = true
	}
	for _, id := range c.Exclude {
		if err := errors.ValidateID(id); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "exclude")
		}
	}
	for fam, o := range c.Placement {
		for _, id := range []string{fam, o.SpouseFamily, o.Individual} {
			if err := errors.ValidateID(id); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "placement %s", fam)
			}
		}
	}
	if c.Display.MinDistanceDays < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "min_distance_days must not be negative")
	}
	if c.Render.Step < 0 || c.Render.Margin < 0 || c.Render.YearHeight < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render dimensions must not be negative")
	}
	return nil
}

// ValidateAndSetDefaults applies defaults, then validates.
func (c *Config) ValidateAndSetDefaults() error {
	c.SetDefaults()
	return c.Validate()
}

// =============================================================================
// Derived values
// =============================================================================

// Snapshot returns a content hash of the normalized configuration. Two
// configurations with equal snapshots produce the same chart.
func (c *Config) Snapshot() string {
	n := *c
	n.Roots = slices.Clone(c.Roots)
	n.Exclude = slices.Clone(c.Exclude)
	n.SetDefaults()
	slices.Sort(n.Exclude)
	n.Exclude = slices.Compact(n.Exclude)
	// encoding/json sorts map keys, so Placement needs no ordering.
	data, _ := json.Marshal(n)
	return cache.Hash(data)
}

// ExcludeFunc returns a predicate matching the excluded individuals.
func (c *Config) ExcludeFunc() layout.Exclude {
	if len(c.Exclude) == 0 {
		return nil
	}
	set := make(map[string]bool, len(c.Exclude))
	for _, id := range c.Exclude {
		set[id] = true
	}
	return func(ind *genealogy.Individual) bool { return set[ind.ID] }
}

// Policy returns the anchor policy for the configured placement overrides.
// Ignored overrides are reported to logger.
func (c *Config) Policy(fallback layout.Policy, logger *log.Logger) layout.Policy {
	if len(c.Placement) == 0 {
		if fallback == nil {
			return layout.DefaultPolicy{}
		}
		return fallback
	}
	return layout.NewOverridePolicy(c.Placement, fallback, logger)
}

// Default returns a configuration for a single root with defaults applied.
func Default(root string) *Config {
	c := &Config{Roots: []Root{{ID: root}}}
	c.SetDefaults()
	return c
}
