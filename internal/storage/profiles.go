package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Ensure ProfileStore implements ProfileStoreInterface
var _ ProfileStoreInterface = (*ProfileStore)(nil)

const (
	// ProfilesDirName is the vault subdirectory holding one directory per profile
	ProfilesDirName = "profiles"
	// CredentialFileName is the name of the credential file inside a profile directory.
	// It matches the file gcloud writes for Application Default Credentials.
	CredentialFileName = "application_default_credentials.json"
)

// ProfileStore keeps profiles as directories under <vault>/profiles.
// The directory is the record; the credential file inside it is the blob.
type ProfileStore struct {
	vaultDir string
}

// NewProfileStore creates a new profile store rooted at vaultDir
func NewProfileStore(vaultDir string) *ProfileStore {
	return &ProfileStore{vaultDir: vaultDir}
}

// VaultDir returns the vault root directory
func (ps *ProfileStore) VaultDir() string {
	return ps.vaultDir
}

// Ensure creates the vault root and profiles directory if absent
func (ps *ProfileStore) Ensure() error {
	if err := os.MkdirAll(ps.profilesDir(), 0700); err != nil {
		return fmt.Errorf("%w: failed to create vault directory: %v", ErrIO, err)
	}
	return nil
}

// ListProfiles returns the names of all profile directories.
// An uninitialized vault yields an empty list.
func (ps *ProfileStore) ListProfiles() ([]string, error) {
	entries, err := os.ReadDir(ps.profilesDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: failed to read profiles directory: %v", ErrIO, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		// Stray files in profiles/ are not profiles
		if !entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ProfileExists checks if a profile directory is present
func (ps *ProfileStore) ProfileExists(name string) bool {
	info, err := os.Stat(ps.ProfileDir(name))
	return err == nil && info.IsDir()
}

// CreateProfile creates an empty profile directory
func (ps *ProfileStore) CreateProfile(name string) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}

	if err := ps.Ensure(); err != nil {
		return err
	}

	if err := os.Mkdir(ps.ProfileDir(name), 0700); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: '%s'", ErrAlreadyExists, name)
		}
		return fmt.Errorf("%w: failed to create profile directory: %v", ErrIO, err)
	}
	return nil
}

// DeleteProfile recursively removes a profile directory and its contents
func (ps *ProfileStore) DeleteProfile(name string) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}

	if !ps.ProfileExists(name) {
		return fmt.Errorf("%w: '%s'", ErrNotFound, name)
	}

	if err := os.RemoveAll(ps.ProfileDir(name)); err != nil {
		return fmt.Errorf("%w: failed to remove profile '%s': %v", ErrIO, name, err)
	}
	return nil
}

// CopyCredential copies the file at srcPath into the profile directory
func (ps *ProfileStore) CopyCredential(srcPath, name string) error {
	data, err := os.ReadFile(srcPath) // #nosec G304 - path is the provider's credential file
	if err != nil {
		return fmt.Errorf("%w: failed to read credentials from %s: %v", ErrIO, srcPath, err)
	}
	return ps.WriteCredential(name, data)
}

// HasCredential reports whether the profile's credential file is present
func (ps *ProfileStore) HasCredential(name string) bool {
	info, err := os.Stat(ps.CredentialPath(name))
	return err == nil && info.Mode().IsRegular()
}

// ReadCredential returns the stored credential bytes for a profile
func (ps *ProfileStore) ReadCredential(name string) ([]byte, error) {
	data, err := os.ReadFile(ps.CredentialPath(name)) // #nosec G304 - path constructed from vault dir
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no credentials stored for '%s'", ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: failed to read credentials for '%s': %v", ErrIO, name, err)
	}
	return data, nil
}

// WriteCredential replaces the profile's credential file with data
func (ps *ProfileStore) WriteCredential(name string, data []byte) error {
	if !ps.ProfileExists(name) {
		return fmt.Errorf("%w: '%s'", ErrNotFound, name)
	}

	if err := WriteFileAtomic(ps.CredentialPath(name), data, 0600); err != nil {
		return fmt.Errorf("%w: failed to store credentials for '%s': %v", ErrIO, name, err)
	}
	return nil
}

// ProfileDir returns the directory path for a profile
func (ps *ProfileStore) ProfileDir(name string) string {
	return filepath.Join(ps.profilesDir(), name)
}

// CredentialPath returns the path of a profile's credential file.
// The file is not guaranteed to exist.
func (ps *ProfileStore) CredentialPath(name string) string {
	return filepath.Join(ps.ProfileDir(name), CredentialFileName)
}

func (ps *ProfileStore) profilesDir() string {
	return filepath.Join(ps.vaultDir, ProfilesDirName)
}

// WriteFileAtomic writes data to a uniquely named temp file next to path and
// renames it into place. The temp file is removed on every failure.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tempPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err = os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to atomically replace %s: %w", path, err)
	}
	return nil
}
