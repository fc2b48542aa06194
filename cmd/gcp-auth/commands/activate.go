package commands

import (
	"github.com/keeper-security/gcp-auth/pkg/types"
	"github.com/spf13/cobra"
)

// activateCmd represents the activate command
var activateCmd = &cobra.Command{
	Use:   "activate <profile>",
	Short: "Make a saved profile the active gcloud identity",
	Long: `Activate the profile's gcloud configuration and install its saved
Application Default Credentials as the active ones.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return manager.Activate(cmd.Context(), types.Profile{Name: args[0]})
	},
}

func init() {
	rootCmd.AddCommand(activateCmd)
}
