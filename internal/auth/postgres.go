package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCredentialStore resolves key hashes against the api_keys table.
type PostgresCredentialStore struct {
	pool *pgxpool.Pool
}

func NewPostgresCredentialStore(pool *pgxpool.Pool) *PostgresCredentialStore {
	return &PostgresCredentialStore{pool: pool}
}

func (s *PostgresCredentialStore) Lookup(ctx context.Context, keyHash string) (Identity, error) {
	const q = `
SELECT tenant_id, scopes
FROM api_keys
WHERE key_hash = $1 AND revoked_at IS NULL;
`
	var id Identity
	if err := s.pool.QueryRow(ctx, q, keyHash).Scan(&id.TenantID, &id.Scopes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrUnauthorized
		}
		return Identity{}, err
	}
	return id, nil
}
