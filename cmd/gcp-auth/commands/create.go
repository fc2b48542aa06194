package commands

import (
	"github.com/keeper-security/gcp-auth/pkg/types"
	"github.com/spf13/cobra"
)

var createForce bool

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:     "create <profile>",
	Aliases: []string{"register"},
	Short:   "Register a new profile from a fresh gcloud login",
	Long: `Create a gcloud configuration named after the profile, log in, and save
the resulting Application Default Credentials into the vault.

If the gcloud configuration already exists it is activated and the CLI login
is skipped; only the application-default login runs.

With --force the saved profile is removed before the new login is captured,
so a failed login leaves no profile behind.

Examples:
  # Register a work account
  gcp-auth create work

  # Capture the login again, replacing the saved credentials
  gcp-auth create work --force`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().BoolVarP(&createForce, "force", "f", false, "overwrite an existing profile")
}

func runCreate(cmd *cobra.Command, args []string) error {
	verboseLog("Registering profile %q (force=%t)", args[0], createForce)
	return manager.Register(cmd.Context(), types.Profile{Name: args[0]}, types.RegisterOptions{Force: createForce})
}
