package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	lio "github.com/matzehuels/lifelines/pkg/io"
	"github.com/matzehuels/lifelines/pkg/layout"
	"github.com/matzehuels/lifelines/pkg/pipeline"
)

// errProblems signals a layout with problem columns so the exit status is
// non-zero.
var errProblems = errors.New("layout has problem columns")

// checkCommand creates the check command, which reports columns where
// life lines overlap in time.
func (c *CLI) checkCommand() *cobra.Command {
	var in inputFlags

	cmd := &cobra.Command{
		Use:   "check [tree.json | chart.layout.json]",
		Short: "Report columns where life lines collide",
		Long: `Report columns where life lines collide.

A column is a problem when two life lines in it come closer than the minimum
distance, or when a life line lost its position. The command exits with a
non-zero status if any problem is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), args[0], &in)
		},
	}
	in.register(cmd)

	return cmd
}

func (c *CLI) runCheck(ctx context.Context, input string, in *inputFlags) error {
	res, err := c.loadResult(ctx, input, in)
	if err != nil {
		return err
	}

	printKeyValue("Individuals", fmt.Sprintf("%d", len(res.Individuals)))
	printKeyValue("Families", fmt.Sprintf("%d", len(res.Families)))
	printKeyValue("Columns", fmt.Sprintf("%d", res.Width()))
	if res.Flip != nil {
		printKeyValue("Flip", fmt.Sprintf("%d steps, %d moves", res.Flip.Steps, res.Flip.Moves))
	}
	if res.Compress != nil {
		printKeyValue("Compress", fmt.Sprintf("%d steps, %d moves", res.Compress.Steps, res.Compress.Moves))
	}
	printNewline()

	if len(res.Problems) == 0 {
		printSuccess("No problems found")
		return nil
	}
	printWarning("%d problem columns", len(res.Problems))
	fmt.Println(problemTable(res))
	return errProblems
}

// loadResult reads a layout file, or lays out a tree.
func (c *CLI) loadResult(ctx context.Context, input string, in *inputFlags) (*layout.Result, error) {
	if isLayoutFile(input) {
		return lio.ImportLayout(input)
	}
	opts, err := in.options(input, []string{pipeline.FormatJSON})
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner(in.noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	tree, err := runner.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	return runner.Layout(ctx, tree, opts)
}
