package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/opportunity-hub/internal/model"
)

// TokenRepo persists refresh tokens by their SHA-256 hash ('token_hash').
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token hash row.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	return err
}

// FindActiveByHash returns the non-revoked token with the given hash.  Expiry
// is not checked here so callers can tell an expired token from an unknown one.
func (r *TokenRepo) FindActiveByHash(ctx context.Context, tokenHash string) (model.RefreshToken, error) {
	var t model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, is_revoked, created_at FROM refresh_tokens "+
			"WHERE token_hash=? AND is_revoked=0 LIMIT 1",
		tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.IsRevoked, &t.CreatedAt)
	if err != nil {
		return model.RefreshToken{}, notFound(err)
	}
	return t, nil
}

// RevokeByHash marks a token owned by userID as revoked.  It reports whether
// a row changed; a foreign or unknown token is not an error.
func (r *TokenRepo) RevokeByHash(ctx context.Context, userID uint64, tokenHash string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET is_revoked=1 WHERE token_hash=? AND user_id=? AND is_revoked=0",
		tokenHash, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// RevokeAllForUser revokes all user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET is_revoked=1 WHERE user_id=? AND is_revoked=0",
		userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteExpired purges tokens that expired before the cutoff.
func (r *TokenRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at < ?", before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
