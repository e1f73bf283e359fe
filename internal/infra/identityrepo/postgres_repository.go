package identityrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/skycast/internal/domain/session"
)

// PostgresRepository persists identities in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetIdentity fetches an identity by provider and subject.
func (r *PostgresRepository) GetIdentity(ctx context.Context, provider, subject string) (session.Identity, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT provider, provider_subject, provider_email, display_name, refresh_token, updated_at
		FROM user_identities
		WHERE provider = $1 AND provider_subject = $2
	`, provider, subject)
	identity, err := scanIdentity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return session.Identity{}, false, nil
	}
	if err != nil {
		return session.Identity{}, false, err
	}
	return identity, true, nil
}

// UpsertIdentity inserts or refreshes the identity row.
func (r *PostgresRepository) UpsertIdentity(ctx context.Context, identity session.Identity) (session.Identity, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO user_identities (provider, provider_subject, provider_email, display_name, refresh_token)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (provider, provider_subject) DO UPDATE SET
			provider_email = EXCLUDED.provider_email,
			display_name = EXCLUDED.display_name,
			refresh_token = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), user_identities.refresh_token),
			updated_at = NOW()
		RETURNING provider, provider_subject, provider_email, display_name, refresh_token, updated_at
	`, identity.Provider, identity.Subject, identity.Email, identity.DisplayName, identity.RefreshToken)
	return scanIdentity(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (session.Identity, error) {
	var identity session.Identity
	var updated time.Time
	if err := row.Scan(&identity.Provider, &identity.Subject, &identity.Email, &identity.DisplayName, &identity.RefreshToken, &updated); err != nil {
		return session.Identity{}, err
	}
	identity.UpdatedAt = updated.UTC()
	return identity, nil
}

var _ session.IdentityRepository = (*PostgresRepository)(nil)
