package commands

import (
	"github.com/keeper-security/gcp-auth/pkg/types"
	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:     "delete <profile>",
	Aliases: []string{"rm"},
	Short:   "Delete a profile from the vault",
	Long: `Delete a saved profile. This action cannot be undone.

The active credentials and the gcloud configuration of the same name are
left in place.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return manager.Delete(types.Profile{Name: args[0]})
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
