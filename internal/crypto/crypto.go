package crypto

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

const (
	// FingerprintSize is the digest size in bytes (16 bytes = 128 bits)
	FingerprintSize = 16
	// FingerprintDisplayLength is the number of hex characters shown to users
	FingerprintDisplayLength = 12
)

// Fingerprint returns an unkeyed BLAKE2b digest of a credential blob as hex.
// It identifies credential content in logs and listings without revealing it.
func Fingerprint(data []byte) string {
	h, err := blake2b.New(FingerprintSize, nil)
	if err != nil {
		// Only reachable with an invalid size or key
		panic(err)
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ShortFingerprint returns the display prefix of Fingerprint(data)
func ShortFingerprint(data []byte) string {
	return Fingerprint(data)[:FingerprintDisplayLength]
}

// Equal compares two credential blobs in constant time
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// SecureZero securely zeros out sensitive byte slices
func SecureZero(data []byte) {
	for i := range data {
		data[i] = 0
	}
}
