// Package pipeline provides the load → layout → render pipeline of lifelines.
//
// This package implements the complete pipeline shared by the CLI and the
// HTTP API. By centralizing this logic, both entry points lay out and render
// charts the same way and share one caching scheme.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Decode a family tree document into a provider
//  2. Layout: Build a chart for the configuration and export its layout
//  3. Render: Generate output in various formats (SVG, JSON, DOT, PNG, PDF)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Tree:    data,
//	    Config:  config.Default("I1"),
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lifelines/pkg/buildinfo"
	"github.com/matzehuels/lifelines/pkg/cache"
	"github.com/matzehuels/lifelines/pkg/chart"
	"github.com/matzehuels/lifelines/pkg/config"
	lerrors "github.com/matzehuels/lifelines/pkg/errors"
	"github.com/matzehuels/lifelines/pkg/genealogy"
	"github.com/matzehuels/lifelines/pkg/layout"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// Tree document formats.
const (
	TreeJSON = "json"
	TreeYAML = "yaml"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// PNGScale is the resolution factor of PNG output.
const PNGScale = 2.0

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Tree       []byte `json:"-"`
	TreeFormat string `json:"tree_format,omitempty"`
	Source     string `json:"source,omitempty"` // display name of the tree, e.g. a file path
	Refresh    bool   `json:"refresh,omitempty"`

	// Layout options
	Config *config.Config `json:"config"`

	// Render options
	Formats []string `json:"formats,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// TreeHash is the content hash of the normalized tree.
	TreeHash string

	// Layout is the exported chart layout.
	Layout *layout.Result

	// Chart is the chart the layout was built from. It is nil when the
	// layout came from the cache and no stage needed the chart.
	Chart *chart.Chart

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Individuals int
	Families    int
	Width       int
	Problems    int
	LoadTime    time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	TreeHit   bool // Whether the normalized tree came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return lerrors.New(lerrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, json, dot, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTreeFormat checks that a tree document format is valid.
func ValidateTreeFormat(format string) error {
	switch format {
	case TreeJSON, TreeYAML:
		return nil
	}
	return lerrors.New(lerrors.ErrCodeInvalidFormat, "invalid tree format: %q (must be json or yaml)", format)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading a tree.
func (o *Options) ValidateForLoad() error {
	if len(o.Tree) == 0 {
		return lerrors.New(lerrors.ErrCodeInvalidInput, "tree is required")
	}
	if o.TreeFormat == "" {
		o.TreeFormat = TreeJSON
	}
	if o.Source == "" {
		o.Source = "tree"
	}
	o.setLogger()
	return ValidateTreeFormat(o.TreeFormat)
}

// ValidateForLayout validates the chart configuration and applies its defaults.
func (o *Options) ValidateForLayout() error {
	o.setLogger()
	if o.Config == nil {
		return lerrors.New(lerrors.ErrCodeInvalidConfig, "config is required")
	}
	return o.Config.ValidateAndSetDefaults()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.setLogger()
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Config == nil {
		return lerrors.New(lerrors.ErrCodeInvalidConfig, "config is required")
	}
	o.Config.SetDefaults()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		ConfigSnapshot: o.Config.Snapshot(),
		Version:        buildinfo.LayoutVersion,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	r := o.Config.Render
	return cache.ArtifactKeyOpts{
		Format:     format,
		Step:       r.Step,
		Margin:     r.Margin,
		YearHeight: r.YearHeight,
		Debug:      r.Debug,
	}
}

// =============================================================================
// Stages without caching
// =============================================================================

// BuildChart lays out a chart for cfg over the records of p.
func BuildChart(ctx context.Context, p genealogy.Provider, cfg *config.Config, logger *log.Logger) (*chart.Chart, error) {
	store := genealogy.NewStore(p, genealogy.WithLogger(logger))
	c := chart.New(store, chart.WithLogger(logger))
	if _, err := c.Update(ctx, cfg); err != nil {
		return nil, err
	}
	return c, nil
}
