package crypto

import (
	"strings"
	"testing"
)

func TestFingerprint(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"json credential", `{"type": "authorized_user", "refresh_token": "1//abc"}`},
		{"unicode", "🔐 credentials 🔒"},
		{"long", strings.Repeat("a", 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := Fingerprint([]byte(tt.data))
			if len(fp) != FingerprintSize*2 {
				t.Errorf("Expected %d hex chars, got %d", FingerprintSize*2, len(fp))
			}

			// Deterministic
			if again := Fingerprint([]byte(tt.data)); again != fp {
				t.Errorf("Fingerprint not deterministic: %s vs %s", fp, again)
			}

			// Never contains the input
			if tt.data != "" && strings.Contains(fp, tt.data) {
				t.Error("Fingerprint contains the credential")
			}
		})
	}
}

func TestFingerprintDistinguishesContent(t *testing.T) {
	a := Fingerprint([]byte(`{"refresh_token": "one"}`))
	b := Fingerprint([]byte(`{"refresh_token": "two"}`))
	if a == b {
		t.Error("Different credentials produced the same fingerprint")
	}
}

func TestShortFingerprint(t *testing.T) {
	data := []byte("credential")
	short := ShortFingerprint(data)
	if len(short) != FingerprintDisplayLength {
		t.Errorf("Expected %d chars, got %d", FingerprintDisplayLength, len(short))
	}
	if !strings.HasPrefix(Fingerprint(data), short) {
		t.Error("Short fingerprint is not a prefix of the full fingerprint")
	}
}

func TestEqual(t *testing.T) {
	if !Equal([]byte("abc"), []byte("abc")) {
		t.Error("Equal blobs reported as different")
	}
	if Equal([]byte("abc"), []byte("abd")) {
		t.Error("Different blobs reported as equal")
	}
	if Equal([]byte("abc"), []byte("abcd")) {
		t.Error("Blobs of different length reported as equal")
	}
}

func TestSecureZero(t *testing.T) {
	data := []byte("sensitive credential data")
	SecureZero(data)

	for i, b := range data {
		if b != 0 {
			t.Errorf("Byte at index %d not zeroed: %v", i, b)
		}
	}
}
