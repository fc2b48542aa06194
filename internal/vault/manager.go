package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/keeper-security/gcp-auth/internal/audit"
	"github.com/keeper-security/gcp-auth/internal/crypto"
	"github.com/keeper-security/gcp-auth/internal/storage"
	"github.com/keeper-security/gcp-auth/internal/ui"
	"github.com/keeper-security/gcp-auth/internal/validation"
	"github.com/keeper-security/gcp-auth/pkg/types"
)

// Provider is the external login tool the vault drives
type Provider interface {
	CheckInstalled() error
	// CreateConfiguration reports created=false when the configuration already exists
	CreateConfiguration(ctx context.Context, name string) (bool, error)
	ActivateConfiguration(ctx context.Context, name string) error
	Login(ctx context.Context) error
	ApplicationDefaultLogin(ctx context.Context) error
}

// Options configures a Manager
type Options struct {
	Store    storage.ProfileStoreInterface
	Provider Provider
	// CredentialsPath is the Active Credential Slot the provider reads and writes
	CredentialsPath string
	Logger          *audit.Logger // optional
	Console         *ui.Console   // optional
}

// Manager implements the register, activate, list and delete protocols.
// It is the only component that mutates the vault or the active credentials.
type Manager struct {
	store           storage.ProfileStoreInterface
	provider        Provider
	credentialsPath string
	logger          *audit.Logger
	console         *ui.Console
	validator       *validation.Validator
}

// NewManager creates a vault manager
func NewManager(opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("profile store is required")
	}
	if opts.Provider == nil {
		return nil, fmt.Errorf("login provider is required")
	}
	if opts.CredentialsPath == "" {
		return nil, fmt.Errorf("credentials path is required")
	}

	console := opts.Console
	if console == nil {
		console = ui.NewConsole(io.Discard, io.Discard)
	}

	return &Manager{
		store:           opts.Store,
		provider:        opts.Provider,
		credentialsPath: opts.CredentialsPath,
		logger:          opts.Logger,
		console:         console,
		validator:       validation.NewValidator(),
	}, nil
}

// CredentialsPath returns the Active Credential Slot path
func (m *Manager) CredentialsPath() string {
	return m.credentialsPath
}

// Init creates the vault directories if absent
func (m *Manager) Init() error {
	return m.store.Ensure()
}

// CheckProvider verifies the external login provider is installed
func (m *Manager) CheckProvider() error {
	return m.provider.CheckInstalled()
}

// Register captures a fresh login session into a new profile.
// With Force an existing profile is removed first and captured again.
func (m *Manager) Register(ctx context.Context, profile types.Profile, opts types.RegisterOptions) error {
	name := profile.Name
	if err := m.validateName(name); err != nil {
		return err
	}

	existed := m.store.ProfileExists(name)
	if existed && !opts.Force {
		return m.fail(audit.EventProfileCreate, name,
			fmt.Errorf("%w: '%s' (use --force to overwrite)", ErrProfileAlreadyExists, name))
	}

	event := audit.EventProfileCreate
	if existed {
		event = audit.EventProfileUpdate
		if err := m.store.DeleteProfile(name); err != nil {
			return m.fail(event, name, err)
		}
	}

	if err := m.store.CreateProfile(name); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			err = fmt.Errorf("%w: '%s'", ErrProfileAlreadyExists, name)
		}
		return m.fail(event, name, err)
	}

	if err := m.capture(ctx, name); err != nil {
		// Never leave a profile directory without its credential file
		if rmErr := m.store.DeleteProfile(name); rmErr != nil {
			m.console.DisplayWarning("could not remove incomplete profile '%s': %v", name, rmErr)
		}
		return m.fail(event, name, err)
	}

	data, err := m.store.ReadCredential(name)
	if err != nil {
		return m.fail(event, name, err)
	}
	fingerprint := crypto.ShortFingerprint(data)
	crypto.SecureZero(data)

	m.logger.LogProfileOperation(event, name, true, map[string]interface{}{
		"force":       opts.Force,
		"fingerprint": fingerprint,
	})
	m.console.DisplaySuccess("Profile '%s' registered", name)
	return nil
}

// capture runs the configuration and login steps and copies the resulting credentials
func (m *Manager) capture(ctx context.Context, name string) error {
	created, err := m.provider.CreateConfiguration(ctx, name)
	if err != nil {
		return err
	}

	if created {
		m.console.DisplayInfo("Created gcloud configuration '%s'", name)
		if err := m.provider.Login(ctx); err != nil {
			return err
		}
	} else {
		// The CLI session of an existing configuration is assumed valid
		if err := m.provider.ActivateConfiguration(ctx, name); err != nil {
			return err
		}
		msg := fmt.Sprintf("gcloud configuration '%s' already exists; activated it and skipped 'gcloud auth login'", name)
		m.console.DisplayWarning("%s", msg)
		m.logger.LogWarning("vault", name, msg)
	}

	if err := m.provider.ApplicationDefaultLogin(ctx); err != nil {
		return err
	}

	if _, err := os.Stat(m.credentialsPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s does not exist after login", ErrCredentialsNotGenerated, m.credentialsPath)
		}
		return fmt.Errorf("%w: failed to access %s: %v", ErrIO, m.credentialsPath, err)
	}

	return m.store.CopyCredential(m.credentialsPath, name)
}

// Activate switches gcloud to the profile's configuration and installs its credentials
func (m *Manager) Activate(ctx context.Context, profile types.Profile) error {
	name := profile.Name
	if err := m.validateReference(name); err != nil {
		return err
	}

	if !m.store.ProfileExists(name) {
		return m.fail(audit.EventProfileActivate, name, m.notFound(name))
	}

	if !m.store.HasCredential(name) {
		return m.fail(audit.EventProfileActivate, name,
			fmt.Errorf("%w: '%s' (register it again with --force)", ErrCredentialsMissing, name))
	}

	data, err := m.store.ReadCredential(name)
	if err != nil {
		return m.fail(audit.EventProfileActivate, name, err)
	}
	defer crypto.SecureZero(data)

	if err := m.provider.ActivateConfiguration(ctx, name); err != nil {
		return m.fail(audit.EventProfileActivate, name, err)
	}

	// The configuration switch above is not rolled back if this fails
	if err := m.writeActiveCredentials(data); err != nil {
		return m.fail(audit.EventProfileActivate, name, err)
	}

	m.logger.LogProfileOperation(audit.EventProfileActivate, name, true, map[string]interface{}{
		"fingerprint": crypto.ShortFingerprint(data),
	})
	m.console.DisplaySuccess("Profile '%s' activated", name)
	return nil
}

func (m *Manager) writeActiveCredentials(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(m.credentialsPath), 0700); err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", ErrIO, filepath.Dir(m.credentialsPath), err)
	}
	if err := storage.WriteFileAtomic(m.credentialsPath, data, 0600); err != nil {
		return fmt.Errorf("%w: failed to write active credentials: %v", ErrIO, err)
	}
	return nil
}

// List returns all known profiles
func (m *Manager) List() ([]types.Profile, error) {
	names, err := m.store.ListProfiles()
	if err != nil {
		return nil, err
	}

	profiles := make([]types.Profile, 0, len(names))
	for _, name := range names {
		profiles = append(profiles, types.Profile{Name: name})
	}
	return profiles, nil
}

// Describe returns per-profile metadata, marking the profile whose credentials
// are byte-identical to the active ones
func (m *Manager) Describe() ([]types.ProfileMetadata, error) {
	names, err := m.store.ListProfiles()
	if err != nil {
		return nil, err
	}

	active, err := os.ReadFile(m.credentialsPath)
	if err != nil {
		active = nil
	}
	defer crypto.SecureZero(active)

	metadata := make([]types.ProfileMetadata, 0, len(names))
	for _, name := range names {
		meta := types.ProfileMetadata{Name: name}
		if data, err := m.store.ReadCredential(name); err == nil {
			meta.HasCredential = true
			meta.Fingerprint = crypto.ShortFingerprint(data)
			meta.Active = active != nil && crypto.Equal(data, active)
			crypto.SecureZero(data)
		}
		metadata = append(metadata, meta)
	}
	return metadata, nil
}

// Delete removes a profile from the vault.
// The active credentials and the gcloud configuration are left as they are.
func (m *Manager) Delete(profile types.Profile) error {
	name := profile.Name
	if err := m.validateReference(name); err != nil {
		return err
	}

	if !m.store.ProfileExists(name) {
		return m.fail(audit.EventProfileDelete, name, m.notFound(name))
	}

	if err := m.store.DeleteProfile(name); err != nil {
		return m.fail(audit.EventProfileDelete, name, err)
	}

	m.logger.LogProfileOperation(audit.EventProfileDelete, name, true, nil)
	m.console.DisplaySuccess("Profile '%s' deleted", name)
	return nil
}

// validateName applies the full naming rules to a profile about to be created
func (m *Manager) validateName(name string) error {
	if err := m.validator.ValidateProfileName(name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfileName, err)
	}
	return nil
}

// validateReference only keeps name inside the vault, so any listed profile can be addressed
func (m *Manager) validateReference(name string) error {
	if err := m.validator.ValidateProfileReference(name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfileName, err)
	}
	return nil
}

// notFound builds a ProfileNotFound error listing the available profiles
func (m *Manager) notFound(name string) error {
	available := "none"
	if names, err := m.store.ListProfiles(); err == nil && len(names) > 0 {
		available = strings.Join(names, ", ")
	}
	return fmt.Errorf("%w: '%s'. Available profiles: %s", ErrProfileNotFound, name, available)
}

// fail records a failed operation and returns err unchanged
func (m *Manager) fail(operation audit.EventType, name string, err error) error {
	m.logger.LogProfileOperation(operation, name, false, nil)
	m.logger.LogError("vault", name, err, map[string]interface{}{
		"operation": string(operation),
	})
	return err
}
