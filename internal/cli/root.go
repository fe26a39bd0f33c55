package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the root command with its subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "toyoagent",
		Short:         "Conversational assistant over Toyota sales data and documents",
		Long:          "ToyoAgent answers questions about Toyota sales data, warranty contracts and owner manuals\nby routing them to a SQL tool or a document retrieval tool via an LLM agent.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newSetupCmd())

	return rootCmd
}
