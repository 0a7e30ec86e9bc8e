package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// inspectCommand creates the inspect command, an interactive browser of the
// positions each life line takes.
func (c *CLI) inspectCommand() *cobra.Command {
	var in inputFlags

	cmd := &cobra.Command{
		Use:   "inspect [tree.json | chart.layout.json]",
		Short: "Browse the positions of a chart layout interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], &in)
		},
	}
	in.register(cmd)

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input string, in *inputFlags) error {
	res, err := c.loadResult(ctx, input, in)
	if err != nil {
		return err
	}

	p := tea.NewProgram(NewLayoutModel(res), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	return nil
}
