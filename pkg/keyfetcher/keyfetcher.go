package keyfetcher

import (
	"encoding/base64"
	"errors"
	"os"
)

// MinSecretLength is the shortest HMAC secret accepted for token signing.
const MinSecretLength = 32

var ErrSecretTooShort = errors.New("secret is shorter than 32 bytes")

type SecretFetcher interface {
	FetchSecret() ([]byte, error)
}

// From is a type definition for a function that returns a byte slice and an error.
type From func() ([]byte, error)

// FetchSecret loads the HMAC signing secret and rejects weak ones.
func (f From) FetchSecret() ([]byte, error) {
	secret, err := f()
	if err != nil {
		return nil, err
	}

	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}

	return secret, nil
}

// FromString returns a From function serving a secret already held in memory.
func FromString(secret string) From {
	return func() ([]byte, error) {
		if secret == "" {
			return nil, errors.New("key is not found")
		}

		return []byte(secret), nil
	}
}

// FromBase64Env receives an environment variable key as input,
// reads the Base64 encoded value from the specified environment variable, decodes it,
// and returns a From function.
func FromBase64Env(key string) From {
	return func() ([]byte, error) {
		keyBase64 := os.Getenv(key)
		if keyBase64 == "" {
			return nil, errors.New("key is not found")
		}

		return base64.StdEncoding.DecodeString(keyBase64)
	}
}
