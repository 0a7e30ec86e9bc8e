// Package cache stores computed layouts and rendered artifacts.
//
// Entries are opaque byte slices under string keys. Keys are built by a
// [Keyer] from a content hash of the family tree and the configuration
// snapshot, so a changed tree or configuration simply misses.
//
// # Backends
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//   - [MongoCache]: persistent shared cache with a TTL index
package cache

import (
	"context"
	"time"
)

// Default time-to-live values.
const (
	TTLTree     = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data for ttl; a ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// TreeKey identifies a parsed family tree by the hash of its source.
	TreeKey(sourceHash string) string

	// LayoutKey identifies a layout of a tree under a configuration.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the inputs that change a layout.
type LayoutKeyOpts struct {
	ConfigSnapshot string `json:"config"`
	Version        string `json:"version,omitempty"`
}

// ArtifactKeyOpts are the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Step       float64 `json:"step,omitempty"`
	Margin     float64 `json:"margin,omitempty"`
	YearHeight float64 `json:"year_height,omitempty"`
	Debug      bool    `json:"debug,omitempty"`
}

// DefaultKeyer builds unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TreeKey implements [Keyer].
func (DefaultKeyer) TreeKey(sourceHash string) string { return "tree:" + sourceHash }

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
