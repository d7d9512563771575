package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledenadmin/ledenadmin/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ledenadmin",
		Short:   "Membership and fee administration",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("dir", ".", "workspace directory")
	rootCmd.PersistentFlags().String("actor", "admin", "name recorded in the audit log")
	rootCmd.PersistentFlags().String("log-level", "", "log level (overrides ledenadmin.yaml)")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "human-readable log output")

	rootCmd.AddCommand(
		newInitCommand(),
		newMemberCommand(),
		newFeeCommand(),
		newImportCommand(),
		newSEPACommand(),
		newMatrixCommand(),
		newAmountCommand(),
		newIBANCommand(),
	)

	return rootCmd
}
