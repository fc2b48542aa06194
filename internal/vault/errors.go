package vault

import (
	"errors"

	"github.com/keeper-security/gcp-auth/internal/runner"
	"github.com/keeper-security/gcp-auth/internal/storage"
)

// Every error returned by Manager matches exactly one of these with errors.Is.
var (
	ErrProfileAlreadyExists    = errors.New("profile already exists")
	ErrProfileNotFound         = errors.New("profile not found")
	ErrInvalidProfileName      = errors.New("invalid profile name")
	ErrCredentialsMissing      = errors.New("no stored credentials for profile")
	ErrCredentialsNotGenerated = errors.New("application default credentials were not generated")

	ErrExternalCommandFailed = runner.ErrExternalCommandFailed
	ErrProviderNotInstalled  = runner.ErrProviderNotInstalled
	ErrIO                    = storage.ErrIO
)
