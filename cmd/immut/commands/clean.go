package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/immut/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the incremental cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			generated, _ := cmd.Flags().GetBool("generated")
			return c.app.Clean(cmd.Context(), app.CleanOptions{Generated: generated})
		},
	}
	cmd.Flags().BoolP("generated", "g", false, "Also remove every generated file")
	return cmd
}
