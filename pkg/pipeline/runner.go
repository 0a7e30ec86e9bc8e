package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lifelines/pkg/cache"
	"github.com/matzehuels/lifelines/pkg/chart"
	"github.com/matzehuels/lifelines/pkg/genealogy"
	lio "github.com/matzehuels/lifelines/pkg/io"
	"github.com/matzehuels/lifelines/pkg/layout"
	"github.com/matzehuels/lifelines/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	tree, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.TreeHash = tree.Hash
	result.Stats.LoadTime = time.Since(loadStart)
	result.CacheInfo.TreeHit = tree.Hit

	r.Logger.Info("loaded tree",
		"source", opts.Source,
		"individuals", len(tree.Provider.IndividualIDs()),
		"families", len(tree.Provider.FamilyIDs()),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	res, c, layoutHit, err := r.LayoutWithCacheInfo(ctx, tree, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = res
	result.Chart = c
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Individuals = len(res.Individuals)
	result.Stats.Families = len(res.Families)
	result.Stats.Width = res.Width()
	result.Stats.Problems = len(res.Problems)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"individuals", len(res.Individuals),
		"width", res.Width(),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, res, func() (*chart.Chart, error) {
		if result.Chart == nil {
			c, err := BuildChart(ctx, tree.Provider, opts.Config, opts.Logger)
			if err != nil {
				return nil, err
			}
			result.Chart = c
		}
		return result.Chart, nil
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Tree is a loaded family tree with its content hash.
type Tree struct {
	Provider *genealogy.MemoryProvider
	Hash     string // hash of the normalized tree
	Hit      bool   // whether the normalized tree came from cache
}

// LoadWithCacheInfo decodes the tree document with caching. The cache maps
// the hash of the raw document to its normalized JSON form.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*Tree, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Source)
	start := time.Now()

	tree, err := r.load(ctx, opts)
	n := 0
	if tree != nil {
		n = len(tree.Provider.IndividualIDs())
	}
	hooks.OnLoadComplete(ctx, opts.Source, n, time.Since(start), err)
	return tree, err
}

func (r *Runner) load(ctx context.Context, opts Options) (*Tree, error) {
	cacheKey := r.Keyer.TreeKey(cache.Hash(opts.Tree))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if p, err := lio.ReadTree(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "tree")
				return &Tree{Provider: p, Hash: cache.Hash(data), Hit: true}, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "tree")
	}

	p, err := LoadTree(opts.Tree, opts.TreeFormat)
	if err != nil {
		return nil, err
	}
	normalized, err := normalizeTree(p)
	if err != nil {
		return nil, err
	}
	r.set(ctx, "tree", cacheKey, normalized, cache.TTLTree)
	return &Tree{Provider: p, Hash: cache.Hash(normalized)}, nil
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*genealogy.MemoryProvider, error) {
	tree, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	return tree.Provider, nil
}

// LayoutWithCacheInfo lays out the chart with caching and returns cache hit
// info. The chart is nil on a cache hit.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, tree *Tree, opts Options) (*layout.Result, *chart.Chart, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, nil, false, err
	}

	cacheKey := r.Keyer.LayoutKey(tree.Hash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if res, err := lio.ReadLayout(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return res, nil, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	c, err := BuildChart(ctx, tree.Provider, opts.Config, opts.Logger)
	if err != nil {
		return nil, nil, false, err
	}
	res := c.Result()

	var buf bytes.Buffer
	if err := lio.WriteLayout(res, &buf); err == nil {
		r.set(ctx, "layout", cacheKey, buf.Bytes(), cache.TTLLayout)
	}
	return res, c, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, tree *Tree, opts Options) (*layout.Result, error) {
	res, _, _, err := r.LayoutWithCacheInfo(ctx, tree, opts)
	return res, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit
// info. getChart is only called when an artifact that needs the chart is
// rendered.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *layout.Result, getChart func() (*chart.Chart, error), opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := lio.MarshalLayout(res)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
			return artifacts, true, nil // All artifacts from cache
		}
	}

	var c *chart.Chart
	if slices.Contains(opts.Formats, FormatDOT) && getChart != nil {
		if c, err = getChart(); err != nil {
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, false, err
		}
	}

	rendered, err := RenderFromLayout(ctx, res, c, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.set(ctx, "artifact", key, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, res *layout.Result, c *chart.Chart, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, res, func() (*chart.Chart, error) { return c, nil }, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
