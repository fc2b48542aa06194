package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewProfileStore(t *testing.T) {
	tempDir := t.TempDir()
	store := NewProfileStore(filepath.Join(tempDir, "vault"))

	// Uninitialized vault lists as empty, not as an error
	profiles, err := store.ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles on uninitialized vault failed: %v", err)
	}
	if len(profiles) != 0 {
		t.Errorf("Expected 0 profiles, got %d", len(profiles))
	}
}

func TestEnsure(t *testing.T) {
	tempDir := t.TempDir()
	vaultDir := filepath.Join(tempDir, "nested", "vault")
	store := NewProfileStore(vaultDir)

	if err := store.Ensure(); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(vaultDir, ProfilesDirName))
	if err != nil {
		t.Fatalf("profiles directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("profiles path is not a directory")
	}

	// Idempotent
	if err := store.Ensure(); err != nil {
		t.Errorf("second Ensure failed: %v", err)
	}
}

func TestCreateProfile(t *testing.T) {
	store := setupTestStore(t)

	if err := store.CreateProfile("work"); err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}

	if !store.ProfileExists("work") {
		t.Error("Profile was not created")
	}

	// Test duplicate creation
	err := store.CreateProfile("work")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}

	// Test empty name
	if err := store.CreateProfile(""); err == nil {
		t.Error("Expected error for empty profile name")
	}

	// A fresh profile has no credential yet
	if store.HasCredential("work") {
		t.Error("New profile should not have a credential")
	}
}

func TestListProfiles(t *testing.T) {
	store := setupTestStore(t)

	for _, name := range []string{"personal", "work", "ci"} {
		if err := store.CreateProfile(name); err != nil {
			t.Fatalf("Failed to create profile %s: %v", name, err)
		}
	}

	// Stray files are ignored
	stray := filepath.Join(store.VaultDir(), ProfilesDirName, "notes.txt")
	if err := os.WriteFile(stray, []byte("x"), 0600); err != nil {
		t.Fatalf("Failed to write stray file: %v", err)
	}

	profiles, err := store.ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles failed: %v", err)
	}

	expected := []string{"ci", "personal", "work"}
	if len(profiles) != len(expected) {
		t.Fatalf("Expected %d profiles, got %d: %v", len(expected), len(profiles), profiles)
	}
	for i, name := range expected {
		if profiles[i] != name {
			t.Errorf("Expected profile %d to be %s, got %s", i, name, profiles[i])
		}
	}
}

func TestDeleteProfile(t *testing.T) {
	store := setupTestStore(t)

	if err := store.CreateProfile("work"); err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}
	if err := store.WriteCredential("work", []byte(`{"type":"authorized_user"}`)); err != nil {
		t.Fatalf("Failed to write credential: %v", err)
	}

	if err := store.DeleteProfile("work"); err != nil {
		t.Fatalf("Failed to delete profile: %v", err)
	}

	if store.ProfileExists("work") {
		t.Error("Profile still exists after deletion")
	}
	if _, err := os.Stat(store.ProfileDir("work")); !os.IsNotExist(err) {
		t.Error("Profile directory still on disk after deletion")
	}

	// Deleting again reports not found
	err := store.DeleteProfile("work")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCopyCredential(t *testing.T) {
	store := setupTestStore(t)
	if err := store.CreateProfile("work"); err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}

	content := []byte("{\"client_id\": \"abc\",\n \"refresh_token\": \"xyz\"}\n\x00\xff")
	src := filepath.Join(t.TempDir(), "adc.json")
	if err := os.WriteFile(src, content, 0600); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}

	if err := store.CopyCredential(src, "work"); err != nil {
		t.Fatalf("CopyCredential failed: %v", err)
	}

	stored, err := os.ReadFile(store.CredentialPath("work"))
	if err != nil {
		t.Fatalf("Failed to read stored credential: %v", err)
	}
	if string(stored) != string(content) {
		t.Error("Stored credential is not a byte-for-byte copy")
	}

	// The profile directory holds exactly one file
	entries, err := os.ReadDir(store.ProfileDir("work"))
	if err != nil {
		t.Fatalf("Failed to read profile dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != CredentialFileName {
		t.Errorf("Expected only %s in profile dir, got %v", CredentialFileName, entries)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, CredentialFileName)

	for _, content := range []string{"first", "second"} {
		if err := WriteFileAtomic(path, []byte(content), 0600); err != nil {
			t.Fatalf("WriteFileAtomic failed: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("Expected 'second', got %q", data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected 0600 permissions, got %v", info.Mode().Perm())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Expected exactly one file, got %v", entries)
	}
}

func TestWriteFileAtomicFailureLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()

	// Renaming a file over a non-empty directory always fails
	target := filepath.Join(dir, CredentialFileName)
	if err := os.MkdirAll(filepath.Join(target, "child"), 0700); err != nil {
		t.Fatalf("Failed to create blocking directory: %v", err)
	}

	if err := WriteFileAtomic(target, []byte("data"), 0600); err == nil {
		t.Fatal("Expected an error when the target is a directory")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != CredentialFileName {
		t.Errorf("Expected only the blocking directory, got %v", entries)
	}
}

func TestCopyCredentialMissingSource(t *testing.T) {
	store := setupTestStore(t)
	if err := store.CreateProfile("work"); err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}

	err := store.CopyCredential(filepath.Join(t.TempDir(), "missing.json"), "work")
	if !errors.Is(err, ErrIO) {
		t.Errorf("Expected ErrIO, got %v", err)
	}
	if store.HasCredential("work") {
		t.Error("Credential should not exist after failed copy")
	}
}

func TestReadCredential(t *testing.T) {
	store := setupTestStore(t)
	if err := store.CreateProfile("work"); err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}

	if _, err := store.ReadCredential("work"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing credential, got %v", err)
	}

	if err := store.WriteCredential("work", []byte("v1")); err != nil {
		t.Fatalf("WriteCredential failed: %v", err)
	}
	if err := store.WriteCredential("work", []byte("v2")); err != nil {
		t.Fatalf("WriteCredential overwrite failed: %v", err)
	}

	data, err := store.ReadCredential("work")
	if err != nil {
		t.Fatalf("ReadCredential failed: %v", err)
	}
	if string(data) != "v2" {
		t.Errorf("Expected v2, got %q", string(data))
	}

	// No temp file left behind
	if _, err := os.Stat(store.CredentialPath("work") + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temp file left in profile directory")
	}
}

func TestWriteCredentialUnknownProfile(t *testing.T) {
	store := setupTestStore(t)

	err := store.WriteCredential("ghost", []byte("data"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if store.ProfileExists("ghost") {
		t.Error("WriteCredential must not create a profile")
	}
}

func TestMemoryProfileStore(t *testing.T) {
	store := NewMemoryProfileStore()

	if err := store.CreateProfile("work"); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	if err := store.CreateProfile("work"); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}
	if store.HasCredential("work") {
		t.Error("New profile should not have a credential")
	}

	if err := store.WriteCredential("work", []byte("secret")); err != nil {
		t.Fatalf("WriteCredential failed: %v", err)
	}
	data, err := store.ReadCredential("work")
	if err != nil {
		t.Fatalf("ReadCredential failed: %v", err)
	}

	// Returned data is a copy
	data[0] = 'X'
	again, _ := store.ReadCredential("work")
	if string(again) != "secret" {
		t.Error("ReadCredential returned a shared buffer")
	}

	names, _ := store.ListProfiles()
	if len(names) != 1 || names[0] != "work" {
		t.Errorf("Expected [work], got %v", names)
	}

	if err := store.DeleteProfile("work"); err != nil {
		t.Fatalf("DeleteProfile failed: %v", err)
	}
	if err := store.DeleteProfile("work"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

// Helper functions

func setupTestStore(t *testing.T) *ProfileStore {
	t.Helper()
	store := NewProfileStore(filepath.Join(t.TempDir(), ".gcp-auth"))
	if err := store.Ensure(); err != nil {
		t.Fatalf("Failed to initialize vault: %v", err)
	}
	return store
}
