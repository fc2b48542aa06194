package storage

import "errors"

var (
	// ErrAlreadyExists is returned when creating a profile that is already present
	ErrAlreadyExists = errors.New("profile already exists")
	// ErrNotFound is returned when a profile is not present
	ErrNotFound = errors.New("profile not found")
	// ErrIO is returned when copying, writing or removing profile data fails
	ErrIO = errors.New("vault I/O error")
)

// ProfileStoreInterface defines the interface for profile storage.
// A profile is a record keyed by name holding exactly one credential blob.
type ProfileStoreInterface interface {
	Ensure() error
	ListProfiles() ([]string, error)
	ProfileExists(name string) bool
	CreateProfile(name string) error
	DeleteProfile(name string) error
	CopyCredential(srcPath, name string) error
	HasCredential(name string) bool
	ReadCredential(name string) ([]byte, error)
	WriteCredential(name string, data []byte) error
}
