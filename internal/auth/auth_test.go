package auth_test

import (
	"context"
	"errors"
	"testing"

	"document-ingest-service/internal/auth"
)

func newGate() *auth.Gate {
	store := auth.NewMemoryCredentialStore()
	store.Add("key-rw", auth.Identity{
		TenantID: "tenant-a",
		Scopes:   []string{auth.ScopeDocumentsRead, auth.ScopeDocumentsWrite},
	})
	store.Add("key-ro", auth.Identity{
		TenantID: "tenant-b",
		Scopes:   []string{auth.ScopeDocumentsRead},
	})
	return auth.NewGate(store)
}

func TestGate_EmptyCredential(t *testing.T) {
	_, err := newGate().Authenticate(context.Background(), "", auth.ScopeDocumentsRead)
	if !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGate_UnknownCredential(t *testing.T) {
	_, err := newGate().Authenticate(context.Background(), "nope", auth.ScopeDocumentsRead)
	if !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGate_MissingScope_SameErrorAsUnknown(t *testing.T) {
	gate := newGate()

	_, scopeErr := gate.Authenticate(context.Background(), "key-ro", auth.ScopeDocumentsWrite)
	_, identErr := gate.Authenticate(context.Background(), "nope", auth.ScopeDocumentsWrite)

	// Scope and identity failures must be indistinguishable.
	if !errors.Is(scopeErr, auth.ErrUnauthorized) || !errors.Is(identErr, auth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for both, got %v / %v", scopeErr, identErr)
	}
	if scopeErr.Error() != identErr.Error() {
		t.Fatalf("scope and identity failures leak: %q vs %q", scopeErr, identErr)
	}
}

func TestGate_ResolvesTenant(t *testing.T) {
	id, err := newGate().Authenticate(context.Background(), "key-rw", auth.ScopeDocumentsWrite)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if id.TenantID != "tenant-a" {
		t.Fatalf("expected tenant-a, got %s", id.TenantID)
	}
}

func TestHashKey_Deterministic(t *testing.T) {
	if auth.HashKey("abc") != auth.HashKey("abc") {
		t.Fatal("hash must be deterministic")
	}
	if auth.HashKey("abc") == auth.HashKey("abd") {
		t.Fatal("distinct keys must hash differently")
	}
}
