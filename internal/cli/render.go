package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lifelines/pkg/config"
	lio "github.com/matzehuels/lifelines/pkg/io"
	"github.com/matzehuels/lifelines/pkg/pipeline"
)

// layoutSuffix marks files written by the layout command.
const layoutSuffix = ".layout.json"

// isLayoutFile reports whether path names a file written by 'layout'.
func isLayoutFile(path string) bool {
	return strings.HasSuffix(path, layoutSuffix)
}

// renderOpts holds the drawing flags of the render command. Zero values
// keep the configured or default dimensions.
type renderOpts struct {
	output     string
	formats    []string
	step       float64
	margin     float64
	yearHeight float64
	debug      bool
}

// apply overrides the render section of cfg with the flags that were set.
func (o *renderOpts) apply(cfg *config.Config) {
	if o.step > 0 {
		cfg.Render.Step = o.step
	}
	if o.margin > 0 {
		cfg.Render.Margin = o.margin
	}
	if o.yearHeight > 0 {
		cfg.Render.YearHeight = o.yearHeight
	}
	if o.debug {
		cfg.Render.Debug = true
	}
}

// renderCommand creates the render command for drawing charts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		in         inputFlags
		opts       renderOpts
		formatsStr string
	)

	cmd := &cobra.Command{
		Use:   "render [tree.json | chart.layout.json]",
		Short: "Render a life-line chart to SVG, PNG or PDF",
		Long: `Render a life-line chart to SVG, PNG or PDF.

The input is either a family tree, which is laid out first, or a layout file
written by the 'layout' command. PNG and PDF output require rsvg-convert.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if isLayoutFile(args[0]) {
				return c.runRenderLayout(cmd.Context(), args[0], &opts)
			}
			return c.runRender(cmd.Context(), args[0], &in, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().Float64Var(&opts.step, "step", 0, "column width in pixels")
	cmd.Flags().Float64Var(&opts.margin, "margin", 0, "margin in pixels")
	cmd.Flags().Float64Var(&opts.yearHeight, "year-height", 0, "height of one year in pixels")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "highlight problem columns")
	in.register(cmd)

	return cmd
}

// runRender lays out the tree and writes every requested format.
func (c *CLI) runRender(ctx context.Context, input string, in *inputFlags, opts *renderOpts) error {
	popts, err := in.options(input, opts.formats)
	if err != nil {
		return err
	}
	opts.apply(popts.Config)

	runner, err := c.newRunner(in.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering chart...")
	spinner.Start()
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	paths, err := writeArtifacts(result.Artifacts, opts, input)
	if err != nil {
		return err
	}

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats, result.CacheInfo.RenderHit)
	return nil
}

// runRenderLayout draws a previously computed layout.
func (c *CLI) runRenderLayout(ctx context.Context, input string, opts *renderOpts) error {
	if slices.Contains(opts.formats, pipeline.FormatDOT) {
		return fmt.Errorf("dot output needs the family tree, not a layout file")
	}
	res, err := lio.ImportLayout(input)
	if err != nil {
		return err
	}
	c.Logger.Debugf("Loaded layout: %d individuals, width %d", len(res.Individuals), res.Width())

	cfg := &config.Config{}
	cfg.SetDefaults()
	opts.apply(cfg)

	artifacts, err := pipeline.RenderFromLayout(ctx, res, nil, pipeline.Options{
		Config:  cfg,
		Formats: opts.formats,
		Logger:  c.Logger,
	})
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(artifacts, opts, strings.TrimSuffix(input, layoutSuffix)+".json")
	if err != nil {
		return err
	}
	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// writeArtifacts writes each artifact next to input or at --output. With a
// single format, --output is used as given. JSON layouts get the layout
// suffix so they never replace a JSON tree.
func writeArtifacts(artifacts map[string][]byte, opts *renderOpts, input string) ([]string, error) {
	var paths []string
	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		path := base + "." + format
		if format == pipeline.FormatJSON {
			path = base + layoutSuffix
		}
		if len(opts.formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := writeFile(path, artifacts[format]); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
