// Package auth resolves opaque API credentials into a tenant identity and a
// set of granted scopes. It is a read-only lookup; every entry point runs it
// before any other work so unauthenticated calls never pay validation or
// storage costs.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

const (
	ScopeDocumentsRead  = "documents:read"
	ScopeDocumentsWrite = "documents:write"
)

// ErrUnauthorized covers every authentication failure: missing credential,
// unknown credential, and missing scope. The shapes are deliberately
// indistinguishable so callers cannot probe which one occurred.
var ErrUnauthorized = errors.New("unauthorized")

// Identity is a resolved credential.
type Identity struct {
	TenantID string
	Scopes   []string
}

func (id Identity) HasScope(scope string) bool {
	for _, s := range id.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// CredentialStore looks up an identity by credential hash. Implementations
// return ErrUnauthorized for unknown hashes.
type CredentialStore interface {
	Lookup(ctx context.Context, keyHash string) (Identity, error)
}

// Gate authenticates credentials against a store and checks scopes.
type Gate struct {
	store CredentialStore
}

func NewGate(store CredentialStore) *Gate {
	return &Gate{store: store}
}

// Authenticate resolves credential and verifies it carries requiredScope.
// An empty credential fails immediately without touching the store.
func (g *Gate) Authenticate(ctx context.Context, credential, requiredScope string) (Identity, error) {
	if credential == "" {
		return Identity{}, ErrUnauthorized
	}

	id, err := g.store.Lookup(ctx, HashKey(credential))
	if err != nil {
		return Identity{}, err
	}

	if !id.HasScope(requiredScope) {
		return Identity{}, ErrUnauthorized
	}

	return id, nil
}

// HashKey returns the hex SHA-256 of a presented credential. Only the hash is
// ever stored or compared, so a leaked credential table cannot be replayed.
func HashKey(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])
}
