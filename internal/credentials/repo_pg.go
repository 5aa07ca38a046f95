package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// GetByUser returns the credential linked for a user and provider.
func (r *PGRepo) GetByUser(ctx context.Context, userID, provider string) (OAuthCredential, error) {
	const query = `
SELECT id, user_id, provider, access_token, refresh_token, scope, expiry, created_at, updated_at
FROM oauth_credentials
WHERE user_id = $1 AND provider = $2
LIMIT 1`
	var cred OAuthCredential
	var expiry sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, userID, provider).Scan(
		&cred.ID,
		&cred.UserID,
		&cred.Provider,
		&cred.AccessToken,
		&cred.RefreshToken,
		&cred.Scope,
		&expiry,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OAuthCredential{}, ErrNotFound
		}
		return OAuthCredential{}, err
	}
	if expiry.Valid {
		cred.Expiry = &expiry.Time
	}
	return cred, nil
}

// ReplaceForUser deletes prior links for the provider and inserts cred in one transaction.
func (r *PGRepo) ReplaceForUser(ctx context.Context, cred OAuthCredential) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM oauth_credentials WHERE user_id = $1 AND provider = $2`,
		cred.UserID, cred.Provider,
	); err != nil {
		return fmt.Errorf("delete prior credential: %w", err)
	}

	const insert = `
INSERT INTO oauth_credentials (id, user_id, provider, access_token, refresh_token, scope, expiry, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`
	if _, err := tx.ExecContext(ctx, insert,
		cred.ID,
		cred.UserID,
		cred.Provider,
		cred.AccessToken,
		cred.RefreshToken,
		cred.Scope,
		nullableTime(cred.Expiry),
	); err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	return tx.Commit()
}

// UpdateToken stores a refreshed token. An empty refresh token keeps the stored one.
func (r *PGRepo) UpdateToken(ctx context.Context, id string, tok *oauth2.Token) error {
	const query = `
UPDATE oauth_credentials
SET access_token = $1,
    refresh_token = COALESCE(NULLIF($2, ''), refresh_token),
    expiry = $3,
    updated_at = now()
WHERE id = $4`
	var expiry any
	if !tok.Expiry.IsZero() {
		expiry = tok.Expiry
	}
	res, err := r.DB.ExecContext(ctx, query, tok.AccessToken, tok.RefreshToken, expiry, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
