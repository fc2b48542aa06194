package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxProfileNameLength bounds profile names, which double as directory names
const MaxProfileNameLength = 64

// Validator provides input validation for values that reach the filesystem or a subprocess
type Validator struct {
	profileNamePattern *regexp.Regexp
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		// Profile name: alphanumeric with underscores, hyphens, dots (1-64 chars)
		profileNamePattern: regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`),
	}
}

// ValidateProfileName validates the name of a profile about to be created.
// The name is used verbatim as a vault directory and as a gcloud configuration name.
func (v *Validator) ValidateProfileName(name string) error {
	if err := v.ValidateProfileReference(name); err != nil {
		return err
	}

	if len(name) > MaxProfileNameLength {
		return fmt.Errorf("too long: maximum %d characters", MaxProfileNameLength)
	}

	// gcloud would read a leading hyphen as a flag
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("cannot start with '-'")
	}

	if !v.profileNamePattern.MatchString(name) {
		return fmt.Errorf("%q may contain only letters, digits, dots, underscores and hyphens", name)
	}

	return nil
}

// ValidateProfileReference checks a name that refers to an existing profile.
// Anything that stays inside the profiles directory is accepted, so every
// listed profile can still be activated or deleted.
func (v *Validator) ValidateProfileReference(name string) error {
	if name == "" {
		return fmt.Errorf("cannot be empty")
	}

	if name == "." || name == ".." {
		return fmt.Errorf("'%s' is reserved", name)
	}

	if strings.ContainsAny(name, `/\`+"\x00") {
		return fmt.Errorf("cannot contain path separators")
	}

	return nil
}
