package chart

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/lifelines/pkg/config"
	lerrors "github.com/matzehuels/lifelines/pkg/errors"
	"github.com/matzehuels/lifelines/pkg/genealogy"
	"github.com/matzehuels/lifelines/pkg/layout"
	"github.com/matzehuels/lifelines/pkg/observability"
)

// Chart is a laid-out view of a store for one configuration.
type Chart struct {
	store   *genealogy.Store
	session *layout.Session
	logger  *log.Logger
	policy  layout.Policy

	snapshot string
	runID    string
	result   *layout.Result
	problems layout.Problems
}

// Option configures a [Chart].
type Option func(*Chart)

// WithLogger sets the chart logger. Nil discards output.
func WithLogger(l *log.Logger) Option { return func(c *Chart) { c.logger = l } }

// WithFallbackPolicy sets the policy used when no placement override applies.
// The default is [layout.DefaultPolicy].
func WithFallbackPolicy(p layout.Policy) Option { return func(c *Chart) { c.policy = p } }

// New creates a chart over store. Nothing is laid out until [Chart.Update].
// Clearing the store invalidates the chart.
func New(store *genealogy.Store, opts ...Option) *Chart {
	c := &Chart{store: store, policy: layout.DefaultPolicy{}}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	c.session = layout.NewSession(store, layout.WithLogger(c.logger))
	store.OnClear(c.Invalidate)
	return c
}

// Session returns the underlying layout session.
func (c *Chart) Session() *layout.Session { return c.session }

// Result returns the last exported layout, or nil before the first update.
func (c *Chart) Result() *layout.Result { return c.result }

// Problems returns the consistency problems of the last layout.
func (c *Chart) Problems() layout.Problems { return c.problems }

// Snapshot returns the configuration snapshot of the last layout.
func (c *Chart) Snapshot() string { return c.snapshot }

// RunID identifies the last rebuild. It changes every time the layout is
// recomputed, so callers can tell a rebuilt chart from an unchanged one.
func (c *Chart) RunID() string { return c.runID }

// Invalidate forces the next [Chart.Update] to rebuild.
func (c *Chart) Invalidate() {
	c.snapshot = ""
	c.result = nil
}

// Update lays the chart out for cfg. Defaults are applied to cfg. The
// returned flag is false when cfg matches the current layout and nothing was
// recomputed.
//
// Update fails for invalid configurations, unknown roots and unrecoverable
// errors. Placement consistency problems do not fail an update.
func (c *Chart) Update(ctx context.Context, cfg *config.Config) (bool, error) {
	if cfg == nil {
		return false, lerrors.New(lerrors.ErrCodeInvalidConfig, "configuration is required")
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return false, err
	}
	snap := cfg.Snapshot()
	if c.result != nil && snap == c.snapshot {
		c.logger.Debug("chart unchanged", "snapshot", snap[:12])
		return false, nil
	}

	hooks := observability.Chart()
	hooks.OnBuildStart(ctx, len(cfg.Roots))
	start := time.Now()

	res, err := c.rebuild(ctx, cfg)
	hooks.OnBuildComplete(ctx, len(c.session.Individuals()), time.Since(start), err)
	if err != nil {
		c.Invalidate()
		return false, err
	}

	c.result = res
	c.snapshot = snap
	c.runID = uuid.NewString()
	c.logger.Info("chart laid out",
		"individuals", len(res.Individuals),
		"families", len(res.Families),
		"width", res.Width(),
		"problems", len(res.Problems),
		"duration", time.Since(start).Round(time.Millisecond))
	return true, nil
}

func (c *Chart) rebuild(ctx context.Context, cfg *config.Config) (*layout.Result, error) {
	s := c.session
	s.Configure(
		layout.WithPolicy(cfg.Policy(c.policy, c.logger)),
		layout.WithSiblings(cfg.Display.SiblingsShown()),
		layout.WithMinDistance(cfg.Display.MinDistanceDays),
	)

	exclude := cfg.ExcludeFunc()
	for _, r := range cfg.Roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		root, err := s.Select(r.ID, r.Generations, exclude)
		switch {
		case lerrors.Is(err, lerrors.ErrCodeMissingData):
			c.logger.Warn("root left out", "id", r.ID, "reason", lerrors.UserMessage(err))
			continue
		case err != nil:
			return nil, err
		case root == nil:
			c.logger.Debug("root excluded", "id", r.ID)
		}
	}

	consistent := true
	if err := s.Layout(); err != nil {
		if !lerrors.Is(err, lerrors.ErrCodePlacementConsistency) {
			return nil, err
		}
		c.logger.Error("placement failed", "err", err)
		consistent = false
	}

	var flip, compress *layout.OptimizeStats
	if consistent {
		if cfg.Optimize.FlipEnabled() {
			flip = c.optimize(ctx, "flip", func() (layout.OptimizeStats, error) {
				return s.FlipToOptimize(cfg.Optimize.FlipSteps)
			})
		}
		if cfg.Optimize.CompressEnabled() {
			compress = c.optimize(ctx, "compress", func() (layout.OptimizeStats, error) {
				return s.Compress(cfg.Optimize.CompressSteps)
			})
		}
	}
	s.Normalize()

	c.problems = s.CheckUniqueXPosition(cfg.Display.MinDistanceDays)
	if !c.problems.Empty() {
		c.logger.Error("inconsistent layout",
			"collisions", len(c.problems.Collisions),
			"empty_columns", len(c.problems.Missing))
	}
	observability.Chart().OnProblems(ctx, len(c.problems.Indices()))

	res := s.Export()
	res.Problems = c.problems.Indices()
	res.Flip, res.Compress = flip, compress
	return res, nil
}

// optimize runs fn and restores the previous positions when it fails. The
// stats are nil for a failed or cancelled run.
func (c *Chart) optimize(ctx context.Context, name string, fn func() (layout.OptimizeStats, error)) *layout.OptimizeStats {
	if ctx.Err() != nil {
		return nil
	}
	snap := c.session.Snapshot()
	start := time.Now()
	stats, err := fn()
	observability.Chart().OnOptimize(ctx, name, stats.Steps, stats.Moves, time.Since(start), err)
	if err != nil {
		c.session.Restore(snap)
		c.logger.Warn("optimization skipped", "optimizer", name, "err", err)
		return nil
	}
	if stats.Exhausted {
		c.logger.Debug("optimizer budget exhausted", "optimizer", name, "steps", stats.Steps)
	}
	return &stats
}
