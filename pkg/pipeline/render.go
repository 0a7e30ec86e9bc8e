package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/lifelines/pkg/chart"
	"github.com/matzehuels/lifelines/pkg/connection"
	lerrors "github.com/matzehuels/lifelines/pkg/errors"
	lio "github.com/matzehuels/lifelines/pkg/io"
	"github.com/matzehuels/lifelines/pkg/layout"
	"github.com/matzehuels/lifelines/pkg/render"
	"github.com/matzehuels/lifelines/pkg/render/dot"
	"github.com/matzehuels/lifelines/pkg/render/svg"
)

// RenderFromLayout generates artifacts in the requested formats. The chart
// is only needed for DOT output, which draws the connection graph; it may be
// nil otherwise.
func RenderFromLayout(ctx context.Context, res *layout.Result, c *chart.Chart, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	var svgDoc []byte
	svgOnce := func() []byte {
		if svgDoc == nil {
			svgDoc = RenderSVG(res, opts)
		}
		return svgDoc
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svgOnce()
		case FormatJSON:
			var buf bytes.Buffer
			err = lio.WriteLayout(res, &buf)
			data = buf.Bytes()
		case FormatDOT:
			if c == nil {
				return nil, lerrors.New(lerrors.ErrCodeMissingData, "dot output needs the chart, not only its layout")
			}
			data = []byte(ToDOT(c, false))
		case FormatPNG:
			data, err = render.ToPNG(ctx, svgOnce(), PNGScale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, svgOnce())
		default:
			return nil, lerrors.New(lerrors.ErrCodeUnsupported, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderSVG draws the life-line chart with the render settings of opts.
func RenderSVG(res *layout.Result, opts Options) []byte {
	r := opts.Config.Render
	return svg.RenderSVG(res,
		svg.WithStep(r.Step),
		svg.WithMargin(r.Margin),
		svg.WithYearHeight(r.YearHeight),
		svg.WithDebug(r.Debug),
		svg.WithLogger(opts.Logger),
	)
}

// ToDOT exports the connection graph of c with individuals labelled by name.
// Detailed labels add the appearance id.
func ToDOT(c *chart.Chart, detailed bool) string {
	s := c.Session()
	return dot.ToDOT(s.Connections(), dot.Options{
		Detailed: detailed,
		Label: func(id connection.ID) string {
			if g, ok := s.Individual(id.DomainID); ok && g.ID() == id {
				return g.Entity().Label()
			}
			return ""
		},
	})
}
