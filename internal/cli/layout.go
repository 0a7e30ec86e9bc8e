package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lifelines/pkg/pipeline"
)

// layoutCommand creates the layout command for computing chart layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		in     inputFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [tree.json]",
		Short: "Compute a life-line chart layout from a family tree",
		Long: `Compute a life-line chart layout from a family tree.

The layout command selects the ancestors of each root, assigns every life line
a column, and runs the flip and compress optimizers. The output is a
layout.json file (same format as 'render -f json') that 'render' and
'inspect' accept in place of a tree.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], &in, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	in.register(cmd)

	return cmd
}

// runLayout loads the tree, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, in *inputFlags, output string) error {
	opts, err := in.options(input, []string{pipeline.FormatJSON})
	if err != nil {
		return err
	}

	runner, err := c.newRunner(in.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	prog.done("Computed layout")

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", input) + ".layout.json"
	}
	if err := writeFile(outputPath, result.Artifacts[pipeline.FormatJSON]); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats, result.CacheInfo.LayoutHit)
	if result.Stats.Problems > 0 {
		printWarning("%d problem columns; run 'check' for details", result.Stats.Problems)
	}
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}
