package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/immut/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever a declaration file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noCache, _ := cmd.Flags().GetBool("no-cache")
			jobs, _ := cmd.Flags().GetInt("jobs")

			return c.app.Watch(cmd.Context(), app.WatchOptions{
				NoCache: noCache,
				Jobs:    jobs,
			})
		},
	}
	cmd.Flags().BoolP("no-cache", "n", false, "Start from an empty cache")
	cmd.Flags().IntP("jobs", "j", 0, "Number of types processed concurrently (0 uses one per CPU)")
	return cmd
}
