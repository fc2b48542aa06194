package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/keeper-security/gcp-auth/internal/provider"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. GCP_AUTH_VAULT_DIR
	EnvPrefix = "GCP_AUTH"
	// ConfigFileName is the optional settings file inside the vault directory
	ConfigFileName = "config.yaml"
	// DefaultVaultDirName is the vault directory under the user's home
	DefaultVaultDirName = ".gcp-auth"
)

// Config represents the application configuration
type Config struct {
	Vault    VaultConfig    `mapstructure:"vault"`
	Provider ProviderConfig `mapstructure:"provider"`
	Audit    AuditConfig    `mapstructure:"audit"`
}

// VaultConfig represents vault location settings
type VaultConfig struct {
	Dir string `mapstructure:"dir"`
}

// ProviderConfig represents gcloud settings
type ProviderConfig struct {
	Binary       string        `mapstructure:"binary"`
	ConfigDir    string        `mapstructure:"config_dir"` // empty = gcloud's own default
	LoginTimeout time.Duration `mapstructure:"login_timeout"`
}

// AuditConfig represents audit logging settings
type AuditConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	File    string        `mapstructure:"file"`
	MaxSize int64         `mapstructure:"max_size"`
	MaxAge  time.Duration `mapstructure:"max_age"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Vault: VaultConfig{
			Dir: DefaultVaultDir(),
		},
		Provider: ProviderConfig{
			Binary:       provider.DefaultBinary,
			ConfigDir:    "",
			LoginTimeout: 0,
		},
		Audit: AuditConfig{
			Enabled: true,
			File:    "",
			MaxSize: 5 * 1024 * 1024,
			MaxAge:  90 * 24 * time.Hour,
		},
	}
}

// Load loads configuration from configFile, the environment and defaults.
// An empty configFile means <vault dir>/config.yaml; a missing file is not an error
// unless it was named explicitly.
func Load(configFile string) (*Config, error) {
	defaults := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("vault.dir", defaults.Vault.Dir)
	v.SetDefault("provider.binary", defaults.Provider.Binary)
	v.SetDefault("provider.config_dir", defaults.Provider.ConfigDir)
	v.SetDefault("provider.login_timeout", defaults.Provider.LoginTimeout)
	v.SetDefault("audit.enabled", defaults.Audit.Enabled)
	v.SetDefault("audit.file", defaults.Audit.File)
	v.SetDefault("audit.max_size", defaults.Audit.MaxSize)
	v.SetDefault("audit.max_age", defaults.Audit.MaxAge)

	// Environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := configFile != ""
	if !explicit {
		configFile = filepath.Join(v.GetString("vault.dir"), ConfigFileName)
	}
	v.SetConfigFile(configFile)

	if _, err := os.Stat(configFile); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file content: %w", err)
		}
	} else if explicit {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("configuration file not found: %s", configFile)
		}
		return nil, fmt.Errorf("failed to access config file: %w", err)
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Set default log file if not specified
	if config.Audit.File == "" {
		config.Audit.File = filepath.Join(config.Vault.Dir, "audit.log")
	}

	return config, nil
}

// Validate checks settings that would otherwise fail deep inside an operation
func (c *Config) Validate() error {
	if c.Vault.Dir == "" {
		return fmt.Errorf("vault.dir cannot be empty")
	}
	if c.Provider.Binary == "" {
		return fmt.Errorf("provider.binary cannot be empty")
	}
	if c.Provider.LoginTimeout < 0 {
		return fmt.Errorf("provider.login_timeout cannot be negative")
	}
	return nil
}

// CredentialsPath returns the Active Credential Slot: gcloud's ADC file
func (c *Config) CredentialsPath() (string, error) {
	dir := c.Provider.ConfigDir
	if dir == "" {
		var err error
		dir, err = provider.ConfigDir()
		if err != nil {
			return "", err
		}
	}
	return provider.CredentialsPath(dir), nil
}

// DefaultVaultDir returns ~/.gcp-auth, falling back to the working directory
func DefaultVaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fall back to current directory with absolute path
		cwd, _ := os.Getwd()
		return filepath.Join(cwd, DefaultVaultDirName)
	}

	return filepath.Join(homeDir, DefaultVaultDirName)
}
