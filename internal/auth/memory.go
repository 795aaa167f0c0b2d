package auth

import "context"

// MemoryCredentialStore is a map-backed store for tests and local development.
type MemoryCredentialStore struct {
	byHash map[string]Identity
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{byHash: map[string]Identity{}}
}

// Add registers a plaintext credential; only its hash is retained.
func (s *MemoryCredentialStore) Add(credential string, id Identity) {
	s.byHash[HashKey(credential)] = id
}

func (s *MemoryCredentialStore) Lookup(_ context.Context, keyHash string) (Identity, error) {
	id, ok := s.byHash[keyHash]
	if !ok {
		return Identity{}, ErrUnauthorized
	}
	return id, nil
}
