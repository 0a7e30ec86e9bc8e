package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lifelines/pkg/pipeline"
	"github.com/matzehuels/lifelines/pkg/render/dot"
)

// dotCommand creates the dot command, which exports the connection graph
// behind a chart: individuals and families joined by tagged edges.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		in       inputFlags
		output   string
		asSVG    bool
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "dot [tree.json]",
		Short: "Export the connection graph as Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDot(cmd.Context(), args[0], &in, output, asSVG, detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.dot or <input>.graph.svg)")
	cmd.Flags().BoolVar(&asSVG, "svg", false, "lay out the graph with Graphviz and write SVG")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with their appearance ids")
	in.register(cmd)

	return cmd
}

func (c *CLI) runDot(ctx context.Context, input string, in *inputFlags, output string, asSVG, detailed bool) error {
	opts, err := in.options(input, []string{pipeline.FormatJSON})
	if err != nil {
		return err
	}
	runner, err := c.newRunner(in.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	tree, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	ch, err := pipeline.BuildChart(ctx, tree, opts.Config, c.Logger)
	if err != nil {
		return err
	}

	src := pipeline.ToDOT(ch, detailed)
	data := []byte(src)
	ext := ".dot"
	if asSVG {
		if data, err = dot.RenderSVG(ctx, src); err != nil {
			return err
		}
		ext = ".graph.svg"
	}

	if output == "" {
		output = basePath("", input) + ext
	}
	if err := writeFile(output, data); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	g := ch.Session().Connections()
	printSuccess("Exported connection graph")
	printFile(output)
	printDetail("%d nodes · %d edges", len(g.IDs()), g.EdgeCount())
	return nil
}
