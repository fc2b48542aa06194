package types

// Profile represents a vaulted gcloud credential profile
type Profile struct {
	Name string `json:"name"`
}

// ProfileMetadata represents display information about a stored profile
type ProfileMetadata struct {
	Name          string `json:"name"`
	HasCredential bool   `json:"has_credential"`
	Fingerprint   string `json:"fingerprint,omitempty"` // Never the credential itself
	Active        bool   `json:"active"`
}

// RegisterOptions controls profile registration
type RegisterOptions struct {
	Force bool `json:"force"`
}
