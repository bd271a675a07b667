// Package credentials manages per-company API credentials kept in an
// external key-value store, outside the relational database. A
// credential is an opaque client_id/client_secret pair; only a SHA-256
// hash of the secret is ever stored.
package credentials

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Credential is one record in the credential store, keyed by ClientID.
// CompanyID is a by-value reference; the store enforces no referential
// integrity against the relational side.
type Credential struct {
	ClientID   string
	CompanyID  uint64
	SecretHash string
	IsActive   bool
	CreatedAt  time.Time
}

// Generate produces a new client id (128-bit), client secret (256-bit)
// and the SHA-256 hash of the secret, all lowercase hex. The raw secret
// is returned to the caller exactly once and never persisted.
func Generate() (clientID, clientSecret, secretHash string, err error) {
	idBytes := make([]byte, 16)
	if _, err = rand.Read(idBytes); err != nil {
		return "", "", "", fmt.Errorf("failed to generate client id: %w", err)
	}
	secretBytes := make([]byte, 32)
	if _, err = rand.Read(secretBytes); err != nil {
		return "", "", "", fmt.Errorf("failed to generate client secret: %w", err)
	}

	clientID = hex.EncodeToString(idBytes)
	clientSecret = hex.EncodeToString(secretBytes)
	secretHash = HashSecret(clientSecret)
	return clientID, clientSecret, secretHash, nil
}

// HashSecret returns the lowercase hex SHA-256 digest of a client secret.
func HashSecret(clientSecret string) string {
	sum := sha256.Sum256([]byte(clientSecret))
	return hex.EncodeToString(sum[:])
}
