package auth

import (
	"crypto/md5"  //nolint:gosec // legacy stored digests
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	LegacyHashMD5    = "md5"
	LegacyHashSHA256 = "sha256"

	bcryptPrefix = "$2"
)

var ErrPasswordMismatch = errors.New("password does not match")

// PasswordVerifier checks a plaintext secret against the stored credential forms
// found in restaurant_accounts: bcrypt hashes, plaintext values and hex digests of
// one legacy hash function.
type PasswordVerifier struct {
	legacy func() hash.Hash
}

// NewPasswordVerifier creates a verifier whose legacy digest is md5 or sha256.
func NewPasswordVerifier(legacyHash string) (*PasswordVerifier, error) {
	switch strings.ToLower(legacyHash) {
	case "", LegacyHashMD5:
		return &PasswordVerifier{legacy: md5.New}, nil
	case LegacyHashSHA256:
		return &PasswordVerifier{legacy: sha256.New}, nil
	default:
		return nil, fmt.Errorf("unsupported legacy hash %q", legacyHash)
	}
}

// Verify returns nil when secret matches stored. Bcrypt hashes are compared with
// bcrypt; any other stored value may be plaintext or a legacy hex digest.
func (v *PasswordVerifier) Verify(secret, stored string) error {
	if secret == "" || stored == "" {
		return ErrPasswordMismatch
	}

	// A bcrypt hash is only ever checked as bcrypt.
	if strings.HasPrefix(stored, bcryptPrefix) {
		if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(secret)); err != nil {
			return ErrPasswordMismatch
		}
		return nil
	}

	if constantTimeEqual(secret, stored) {
		return nil
	}

	h := v.legacy()
	h.Write([]byte(secret))
	if constantTimeEqual(hex.EncodeToString(h.Sum(nil)), strings.ToLower(stored)) {
		return nil
	}

	return ErrPasswordMismatch
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
