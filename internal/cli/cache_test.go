package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/lifelines/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(xdg, appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestNewCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	ctx := context.Background()

	tests := []struct {
		backend string
		check   func(cache.Cache) bool
	}{
		{backendNone, func(c cache.Cache) bool { _, ok := c.(cache.NullCache); return ok }},
		{"", func(c cache.Cache) bool { _, ok := c.(cache.NullCache); return ok }},
		{backendFile, func(c cache.Cache) bool { _, ok := c.(*cache.FileCache); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			c, err := newCache(ctx, cacheFlags{backend: tt.backend})
			if err != nil {
				t.Fatalf("newCache(%q) error: %v", tt.backend, err)
			}
			defer c.Close()
			if !tt.check(c) {
				t.Errorf("newCache(%q) = %T", tt.backend, c)
			}
		})
	}

	if _, err := newCache(ctx, cacheFlags{backend: "memcached"}); err == nil {
		t.Error("newCache(memcached) should fail")
	}
	if _, err := newCache(ctx, cacheFlags{backend: backendRedis, redisURL: "not a url"}); !errors.Is(err, cache.ErrInvalidURL) {
		t.Errorf("newCache(redis, bad url) error = %v, want ErrInvalidURL", err)
	}
}

func TestCacheClearCommand(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	c := New(os.Stderr, LogInfo)
	cmd := c.cacheClearCommand()

	// Missing directory is not an error.
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("clear on empty cache: %v", err)
	}

	dir, _ := cacheDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	_ = fc.Set(ctx, "a", []byte("1"), 0)
	_ = fc.Set(ctx, "b", []byte("2"), 0)

	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := fc.Get(ctx, "a"); ok {
		t.Error("entry a survived cache clear")
	}
}

func TestNewRunnerCacheScope(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	ctx := context.Background()

	r, err := c.newRunnerWithBackend(ctx, cacheFlags{backend: backendNone, scope: "smith"})
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Keyer.TreeKey("abc"); got != "smith:tree:abc" {
		t.Errorf("scoped TreeKey = %q, want %q", got, "smith:tree:abc")
	}

	r, err = c.newRunnerWithBackend(ctx, cacheFlags{backend: backendNone})
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Keyer.TreeKey("abc"); got != "tree:abc" {
		t.Errorf("TreeKey = %q, want %q", got, "tree:abc")
	}
}
