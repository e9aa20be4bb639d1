package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "unidep [target]",
		Short:   "Consolidate member dependencies into the workspace root manifest",
		Args:    cobra.MaximumNArgs(1),
		Version: version,
		RunE:    runConsolidate,
	}

	cmd.Flags().Bool("allow-dirty", false, "Proceed even if the working tree has uncommitted changes")
	cmd.Flags().Bool("allow-staged", false, "Proceed even if the index has staged changes")
	cmd.Flags().Bool("dry-run", false, "Show what would change without writing files")
	cmd.Flags().BoolP("yes", "y", false, "Apply changes without asking for confirmation")

	cmd.AddCommand(
		newInitCmd(),
	)

	return cmd
}
