package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/keeper-security/gcp-auth/internal/runner"
)

const (
	// DefaultBinary is the gcloud executable name looked up on PATH
	DefaultBinary = "gcloud"
	// CredentialsFileName is the file gcloud writes after application-default login
	CredentialsFileName = "application_default_credentials.json"
	// ConfigDirEnv overrides the gcloud configuration directory, as gcloud itself does
	ConfigDirEnv = "CLOUDSDK_CONFIG"
)

// GCloud invokes the gcloud CLI for configuration and login steps
type GCloud struct {
	binary       string
	runner       runner.CommandRunner
	loginTimeout time.Duration
	env          []string
}

// Options configures a GCloud adapter
type Options struct {
	Binary       string
	Runner       runner.CommandRunner
	LoginTimeout time.Duration // zero waits for the operator indefinitely
	// ConfigDir is exported to gcloud as CLOUDSDK_CONFIG when set
	ConfigDir string
}

// NewGCloud creates a gcloud adapter
func NewGCloud(opts Options) *GCloud {
	binary := opts.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	r := opts.Runner
	if r == nil {
		r = runner.NewExecRunner()
	}
	g := &GCloud{
		binary:       binary,
		runner:       r,
		loginTimeout: opts.LoginTimeout,
	}
	if opts.ConfigDir != "" {
		g.env = []string{ConfigDirEnv + "=" + opts.ConfigDir}
	}
	return g
}

// Binary returns the executable this adapter invokes
func (g *GCloud) Binary() string {
	return g.binary
}

// CheckInstalled verifies the gcloud binary is on PATH
func (g *GCloud) CheckInstalled() error {
	_, err := runner.LookPath(g.binary)
	return err
}

// CreateConfiguration creates a named gcloud configuration.
// It reports created=false without error when the configuration already exists.
func (g *GCloud) CreateConfiguration(ctx context.Context, name string) (bool, error) {
	argv := g.argv("config", "configurations", "create", name)
	result, err := g.runner.Run(ctx, argv, runner.Options{Quiet: true, Env: g.env})
	if err != nil {
		return false, err
	}

	if result.ExitCode == 0 {
		return true, nil
	}

	if strings.Contains(strings.ToLower(result.Stderr), "already exists") {
		return false, nil
	}

	return false, stderrError(argv, result)
}

// ActivateConfiguration switches gcloud to the named configuration
func (g *GCloud) ActivateConfiguration(ctx context.Context, name string) error {
	argv := g.argv("config", "configurations", "activate", name)
	result, err := g.runner.Run(ctx, argv, runner.Options{Quiet: true, Env: g.env})
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return stderrError(argv, result)
	}
	return nil
}

// Login runs the interactive gcloud CLI login
func (g *GCloud) Login(ctx context.Context) error {
	_, err := g.runner.Run(ctx, g.argv("auth", "login"),
		runner.Options{Reraise: true, Timeout: g.loginTimeout, Env: g.env})
	return err
}

// ApplicationDefaultLogin runs the interactive Application Default Credentials login
func (g *GCloud) ApplicationDefaultLogin(ctx context.Context) error {
	_, err := g.runner.Run(ctx, g.argv("auth", "application-default", "login"),
		runner.Options{Reraise: true, Timeout: g.loginTimeout, Env: g.env})
	return err
}

// stderrError reports a failed quiet run with gcloud's own message
func stderrError(argv []string, result *runner.Result) error {
	return &runner.ExitError{
		Argv:     argv,
		ExitCode: result.ExitCode,
		Err:      fmt.Errorf("%s", strings.TrimSpace(result.Stderr)),
	}
}

func (g *GCloud) argv(args ...string) []string {
	return append([]string{g.binary}, args...)
}

// ConfigDir returns the gcloud configuration directory for the current user
func ConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, nil
	}

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA is not set")
		}
		return filepath.Join(appData, "gcloud"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "gcloud"), nil
}

// CredentialsPath returns the Application Default Credentials file inside configDir
func CredentialsPath(configDir string) string {
	return filepath.Join(configDir, CredentialsFileName)
}
