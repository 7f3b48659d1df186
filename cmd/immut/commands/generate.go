package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/immut/internal/app"
)

func (c *CLI) newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate immutable types for every declaration in the project",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			check, _ := cmd.Flags().GetBool("check")
			noCache, _ := cmd.Flags().GetBool("no-cache")
			trace, _ := cmd.Flags().GetBool("trace")
			jobs, _ := cmd.Flags().GetInt("jobs")

			_, err := c.app.Generate(cmd.Context(), app.GenerateOptions{
				Check:   check,
				NoCache: noCache,
				Trace:   trace,
				Jobs:    jobs,
			})
			return err
		},
	}
	cmd.Flags().BoolP("check", "c", false, "Fail if generated files are out of date instead of writing them")
	cmd.Flags().BoolP("no-cache", "n", false, "Ignore the incremental cache and regenerate everything")
	cmd.Flags().Bool("trace", false, "Log the duration of every generation stage")
	cmd.Flags().IntP("jobs", "j", 0, "Number of types processed concurrently (0 uses one per CPU)")
	return cmd
}
