package chart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/lifelines/pkg/config"
	"github.com/matzehuels/lifelines/pkg/connection"
	lerrors "github.com/matzehuels/lifelines/pkg/errors"
	"github.com/matzehuels/lifelines/pkg/genealogy"
	"github.com/matzehuels/lifelines/pkg/genealogy/genealogytest"
	"github.com/matzehuels/lifelines/pkg/layout"
	"github.com/matzehuels/lifelines/pkg/observability"
)

// threeGenerations is A married to B, with parents C/D and E/F.
func threeGenerations() *genealogy.Store {
	return genealogytest.New().
		Person("A", 1950, 2020).
		Person("B", 1952, 2022).
		Person("C", 1920, 1990).
		Person("D", 1922, 1995).
		Person("E", 1925, 2000).
		Person("F", 1927, 2005).
		Family("FAB", "A", "B", 1975).
		Family("FCD", "C", "D", 1945, "A").
		Family("FEF", "E", "F", 1948, "B").
		Store()
}

func TestUpdate(t *testing.T) {
	c := New(threeGenerations())
	changed, err := c.Update(context.Background(), config.Default("A"))
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if !changed {
		t.Error("first Update() should rebuild")
	}

	res := c.Result()
	if res == nil {
		t.Fatal("Result() is nil after Update")
	}
	if len(res.Individuals) != 6 {
		t.Errorf("individuals = %d, want 6", len(res.Individuals))
	}
	if res.Width() != 6 || res.MinIndex != 0 {
		t.Errorf("extents = [%d, %d], want [0, 5]", res.MinIndex, res.MaxIndex)
	}
	if len(res.Problems) != 0 {
		t.Errorf("problems = %v, want none", res.Problems)
	}
	if res.Flip == nil || res.Compress == nil {
		t.Error("optimizer stats missing")
	}
	if c.RunID() == "" {
		t.Error("RunID() is empty after a rebuild")
	}
}

func TestUpdateSkipsUnchangedConfig(t *testing.T) {
	ctx := context.Background()
	c := New(threeGenerations())
	if _, err := c.Update(ctx, config.Default("A")); err != nil {
		t.Fatal(err)
	}
	run := c.RunID()

	changed, err := c.Update(ctx, config.Default("A"))
	if err != nil || changed {
		t.Errorf("Update(same) = %v, %v; want false, nil", changed, err)
	}
	if c.RunID() != run {
		t.Error("RunID changed without a rebuild")
	}

	cfg := config.Default("A")
	cfg.Roots[0].Generations = 1
	changed, err = c.Update(ctx, cfg)
	if err != nil || !changed {
		t.Fatalf("Update(changed) = %v, %v; want true, nil", changed, err)
	}
	if c.RunID() == run {
		t.Error("RunID did not change on rebuild")
	}
	if n := len(c.Result().Individuals); n != 2 {
		t.Errorf("individuals with one generation = %d, want 2", n)
	}
}

func TestUpdateAfterStoreClear(t *testing.T) {
	ctx := context.Background()
	store := threeGenerations()
	c := New(store)
	if _, err := c.Update(ctx, config.Default("A")); err != nil {
		t.Fatal(err)
	}
	store.Clear()
	if c.Result() != nil {
		t.Error("Result() should be nil after the store is cleared")
	}
	changed, err := c.Update(ctx, config.Default("A"))
	if err != nil || !changed {
		t.Errorf("Update() after Clear = %v, %v; want true, nil", changed, err)
	}
}

func TestUpdateErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
		code lerrors.Code
	}{
		{"nil config", nil, lerrors.ErrCodeInvalidConfig},
		{"no roots", &config.Config{}, lerrors.ErrCodeInvalidConfig},
		{"unknown root", config.Default("nobody"), lerrors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(threeGenerations())
			_, err := c.Update(context.Background(), tt.cfg)
			if !lerrors.Is(err, tt.code) {
				t.Errorf("Update() error = %v, want %s", err, tt.code)
			}
			if c.Result() != nil {
				t.Error("Result() should stay nil after a failed update")
			}
		})
	}
}

func TestUpdateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := New(threeGenerations())
	if _, err := c.Update(ctx, config.Default("A")); !errors.Is(err, context.Canceled) {
		t.Errorf("Update() error = %v, want context.Canceled", err)
	}
}

func TestUpdateExcludeAndOverride(t *testing.T) {
	c := New(threeGenerations())
	cfg := config.Default("A")
	cfg.Exclude = []string{"E"}
	if _, err := c.Update(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Result().Individual("E"); ok {
		t.Error("excluded individual E is in the layout")
	}
	if _, ok := c.Result().Individual("F"); !ok {
		t.Error("F should remain when only E is excluded")
	}
}

func TestOptimizeRestoresOnError(t *testing.T) {
	c := New(threeGenerations())
	if _, err := c.Update(context.Background(), config.Default("A")); err != nil {
		t.Fatal(err)
	}
	g, _ := c.Session().Individual("A")
	before := len(g.Positions())

	stats := c.optimize(context.Background(), "flip", func() (layout.OptimizeStats, error) {
		birth, _ := g.Lifespan()
		g.SetPosition(connection.ID{Occurrence: 999, DomainID: "X"}, 42, birth+1, false)
		return layout.OptimizeStats{Steps: 1}, errors.New("boom")
	})
	if stats != nil {
		t.Errorf("stats = %+v, want nil for a failed run", stats)
	}
	if got := len(g.Positions()); got != before {
		t.Errorf("positions = %d after restore, want %d", got, before)
	}
}

type recordingHooks struct {
	observability.NoopChartHooks
	mu         sync.Mutex
	builds     int
	optimizers []string
}

func (h *recordingHooks) OnBuildComplete(context.Context, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.builds++
}

func (h *recordingHooks) OnOptimize(_ context.Context, name string, _, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.optimizers = append(h.optimizers, name)
}

func TestUpdateEmitsHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetChartHooks(h)
	t.Cleanup(observability.Reset)

	c := New(threeGenerations())
	if _, err := c.Update(context.Background(), config.Default("A")); err != nil {
		t.Fatal(err)
	}
	if h.builds != 1 {
		t.Errorf("builds = %d, want 1", h.builds)
	}
	if len(h.optimizers) != 2 || h.optimizers[0] != "flip" || h.optimizers[1] != "compress" {
		t.Errorf("optimizers = %v, want [flip compress]", h.optimizers)
	}
}
