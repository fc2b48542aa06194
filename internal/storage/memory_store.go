package storage

import (
	"fmt"
	"os"
	"sort"
	"sync"
)

// Ensure MemoryProfileStore implements ProfileStoreInterface
var _ ProfileStoreInterface = (*MemoryProfileStore)(nil)

// MemoryProfileStore is an in-memory implementation of profile storage for testing
type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string][]byte // nil value means the profile has no credential yet
}

// NewMemoryProfileStore creates a new in-memory profile store
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{
		profiles: make(map[string][]byte),
	}
}

// Ensure is a no-op for memory store
func (m *MemoryProfileStore) Ensure() error {
	return nil
}

// ListProfiles returns all profile names
func (m *MemoryProfileStore) ListProfiles() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.profiles))
	for name := range m.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ProfileExists checks if a profile exists
func (m *MemoryProfileStore) ProfileExists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.profiles[name]
	return exists
}

// CreateProfile creates an empty profile
func (m *MemoryProfileStore) CreateProfile(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.profiles[name]; exists {
		return fmt.Errorf("%w: '%s'", ErrAlreadyExists, name)
	}

	m.profiles[name] = nil
	return nil
}

// DeleteProfile removes a profile from memory
func (m *MemoryProfileStore) DeleteProfile(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.profiles[name]; !exists {
		return fmt.Errorf("%w: '%s'", ErrNotFound, name)
	}

	delete(m.profiles, name)
	return nil
}

// CopyCredential reads srcPath from disk and stores it in memory
func (m *MemoryProfileStore) CopyCredential(srcPath, name string) error {
	data, err := os.ReadFile(srcPath) // #nosec G304 - path is the provider's credential file
	if err != nil {
		return fmt.Errorf("%w: failed to read credentials from %s: %v", ErrIO, srcPath, err)
	}
	return m.WriteCredential(name, data)
}

// HasCredential reports whether a credential blob is stored
func (m *MemoryProfileStore) HasCredential(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.profiles[name] != nil
}

// ReadCredential returns a copy of the stored credential blob
func (m *MemoryProfileStore) ReadCredential(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, exists := m.profiles[name]
	if !exists || data == nil {
		return nil, fmt.Errorf("%w: no credentials stored for '%s'", ErrNotFound, name)
	}
	return append([]byte(nil), data...), nil
}

// WriteCredential stores a copy of data for an existing profile
func (m *MemoryProfileStore) WriteCredential(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.profiles[name]; !exists {
		return fmt.Errorf("%w: '%s'", ErrNotFound, name)
	}

	m.profiles[name] = append([]byte{}, data...)
	return nil
}
