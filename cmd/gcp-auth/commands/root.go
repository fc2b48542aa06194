package commands

import (
	"fmt"
	"os"

	"github.com/keeper-security/gcp-auth/internal/audit"
	"github.com/keeper-security/gcp-auth/internal/config"
	"github.com/keeper-security/gcp-auth/internal/provider"
	"github.com/keeper-security/gcp-auth/internal/runner"
	"github.com/keeper-security/gcp-auth/internal/storage"
	"github.com/keeper-security/gcp-auth/internal/ui"
	"github.com/keeper-security/gcp-auth/internal/vault"
	"github.com/spf13/cobra"
)

var (
	version    = "dev"
	configFile string
	verbose    bool
	quiet      bool

	// Set up by PersistentPreRunE for the running subcommand
	cfg         *config.Config
	manager     *vault.Manager
	console     *ui.Console
	auditLogger *audit.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gcp-auth",
	Short: "Switch between saved gcloud credential profiles",
	Long: `A local vault of gcloud login sessions.

Each profile captures a gcloud configuration together with its Application
Default Credentials, so switching accounts is a single command instead of a
fresh browser login.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	defer func() {
		if auditLogger != nil {
			_ = auditLogger.Close()
			auditLogger = nil
		}
	}()
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ~/.gcp-auth/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only print results, warnings and errors")
}

// SetVersion sets the version for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// setup loads configuration and wires the vault manager for the subcommand
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	verboseLog("Vault directory: %s", cfg.Vault.Dir)

	console = ui.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr())
	console.SetQuiet(quiet)

	execRunner := runner.NewExecRunner()
	execRunner.Logf = verboseLog
	gcloud := provider.NewGCloud(provider.Options{
		Binary:       cfg.Provider.Binary,
		Runner:       execRunner,
		LoginTimeout: cfg.Provider.LoginTimeout,
		ConfigDir:    cfg.Provider.ConfigDir,
	})

	credentialsPath, err := cfg.CredentialsPath()
	if err != nil {
		return err
	}
	verboseLog("Active credentials: %s", credentialsPath)

	if cfg.Audit.Enabled {
		auditLogger, err = audit.NewLogger(audit.Config{
			FilePath: cfg.Audit.File,
			MaxSize:  cfg.Audit.MaxSize,
			MaxAge:   cfg.Audit.MaxAge,
		})
		if err != nil {
			// Auditing never blocks credential switching
			console.DisplayWarning("audit log disabled: %v", err)
			auditLogger = nil
		} else {
			verboseLog("Audit log: %s", auditLogger.Path())
		}
	}

	manager, err = vault.NewManager(vault.Options{
		Store:           storage.NewProfileStore(cfg.Vault.Dir),
		Provider:        gcloud,
		CredentialsPath: credentialsPath,
		Logger:          auditLogger,
		Console:         console,
	})
	if err != nil {
		return err
	}

	// Fail fast before any prompt or filesystem change
	if err := manager.CheckProvider(); err != nil {
		return err
	}

	return manager.Init()
}

// verboseLog prints a message only if verbose mode is enabled
func verboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}
