package session

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// APIKey is a machine credential scoped to a tenant. Only the SHA-256
// hash of the key is stored.
type APIKey struct {
	KeyHash     string
	TenantID    string
	Description string
}

// Keychain validates API keys for machine access to the API surface.
type Keychain struct {
	keys map[string]APIKey // keyhash -> key
}

// NewKeychain builds a keychain from configured keys.
func NewKeychain(keys []APIKey) *Keychain {
	kc := &Keychain{keys: make(map[string]APIKey, len(keys))}
	for _, k := range keys {
		kc.keys[k.KeyHash] = k
	}
	return kc
}

// Validate checks a raw API key and returns the tenant it belongs to.
func (kc *Keychain) Validate(rawKey string) (string, error) {
	keyHash := HashAPIKey(rawKey)

	k, ok := kc.keys[keyHash]
	if !ok {
		return "", fmt.Errorf("invalid API key")
	}

	// Constant-time comparison to prevent timing attacks
	if subtle.ConstantTimeCompare([]byte(keyHash), []byte(k.KeyHash)) != 1 {
		return "", fmt.Errorf("invalid API key")
	}

	return k.TenantID, nil
}

// HashAPIKey creates the SHA-256 hash of an API key for storage.
func HashAPIKey(rawKey string) string {
	hash := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(hash[:])
}
