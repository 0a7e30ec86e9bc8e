// Package pkg provides the core libraries for Lifelines genealogy charts.
//
// # Overview
//
// Lifelines draws a family tree as a life-line chart: time runs down the
// page, every person is a vertical line from birth to death, and marriages
// and parentage are short connectors between lines. The hard part is
// choosing columns so that lines never overlap in time and the chart stays
// narrow. The pkg directory is organized into four main areas:
//
//  1. Domain data - [genealogy], [io]
//  2. Layout - [connection], [layout], [chart]
//  3. Output - [render], [render/svg], [render/dot]
//  4. Orchestration - [pipeline], [cache], [config], [observability]
//
// # Architecture
//
// The typical data flow through Lifelines:
//
//	Family tree (JSON / YAML)
//	         ↓
//	    [io] package (decode into a genealogy.Provider)
//	         ↓
//	    [genealogy] package (entity store, date estimation)
//	         ↓
//	    [chart] package (select → place → flip → compress)
//	         ↓
//	    [layout.Result] (positions per appearance)
//	         ↓
//	    SVG/PDF/PNG/JSON/DOT output
//
// # Quick Start
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/lifelines/pkg/chart"
//	    "github.com/matzehuels/lifelines/pkg/config"
//	    "github.com/matzehuels/lifelines/pkg/genealogy"
//	    lio "github.com/matzehuels/lifelines/pkg/io"
//	    "github.com/matzehuels/lifelines/pkg/render/svg"
//	)
//
//	// 1. Load the tree
//	p, _ := lio.ImportTree("family.json")
//
//	// 2. Lay out the ancestry of I1
//	c := chart.New(genealogy.NewStore(p))
//	_, _ = c.Update(context.Background(), config.Default("I1"))
//
//	// 3. Draw it
//	os.WriteFile("family.svg", svg.RenderSVG(c.Result()), 0o644)
//
// # Main Packages
//
// ## Domain Data
//
// [genealogy] - Individuals, families and ordinal dates. The Store caches
// entities from a Provider and estimates missing birth and death dates.
//
// [io] - Tree documents (JSON, YAML) and layout result files.
//
// ## Layout
//
// [connection] - The tagged relation graph between individual and family
// appearances (husband, wife, strong and weak children, marriages).
//
// [layout] - Selection of ancestors, column placement, the flip and compress
// optimizers, collision detection and export of the result.
//
// [chart] - Rebuilds a layout when its configuration changes and runs the
// optimizers best-effort.
//
// ## Output
//
// [render/svg] - The life-line chart drawing.
//
// [render/dot] - The connection graph as Graphviz DOT, rendered to SVG with
// go-graphviz.
//
// [render] - Format conversion (SVG to PDF/PNG).
//
// ## Orchestration
//
// [pipeline] - Complete chart pipeline (load → layout → render) used by the
// CLI and the HTTP API. Ensures consistent behavior across all entry points.
//
// [cache] - Result caches: null, file, Redis and MongoDB.
//
// [config] - Chart configuration from TOML, YAML or JSON.
//
// [observability] - Hooks for load, layout, render, cache and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...             # All tests
//	go test ./pkg/layout/...      # Specific package
//	go test -run Example ./...    # Examples only
//
// [genealogy]: https://pkg.go.dev/github.com/matzehuels/lifelines/pkg/genealogy
// [io]: https://pkg.go.dev/github.com/matzehuels/lifelines/pkg/io
// [connection]: https://pkg.go.dev/github.com/matzehuels/lifelines/pkg/connection
// [layout]: https://pkg.go.dev/github.com/matzehuels/lifelines/pkg/layout
// [chart]: https://pkg.go.dev/github.com/matzehuels/lifelines/pkg/chart
// [render]: https://pkg.go.dev/github.com/matzehuels/lifelines/pkg/render
// [render/svg]: https://pkg.go.dev/github.com/matzehuels/lifelines/pkg/render/svg
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/lifelines/pkg/render/dot
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/lifelines/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/lifelines/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/lifelines/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/lifelines/pkg/observability
//
// [layout.Result]: https://pkg.go.dev/github.com/matzehuels/lifelines/pkg/layout#Result
package pkg
