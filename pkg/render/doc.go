// Package render turns chart layouts into documents.
//
// # Overview
//
// The renderers live in subpackages:
//
//   - [svg] draws the life-line chart of a [layout.Result]
//   - [dot] exports the connection graph behind a chart as Graphviz DOT
//
// This package converts their SVG output to other formats with the external
// rsvg-convert tool (from librsvg):
//
//	doc := svg.RenderSVG(result)
//	pdf, err := render.ToPDF(ctx, doc)
//	png, err := render.ToPNG(ctx, doc, 2.0)
//
// [svg]: github.com/matzehuels/lifelines/pkg/render/svg
// [dot]: github.com/matzehuels/lifelines/pkg/render/dot
// [layout.Result]: github.com/matzehuels/lifelines/pkg/layout.Result
package render
