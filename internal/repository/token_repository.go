package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/feastly/food-ordering-backend/internal/model"
	"github.com/feastly/food-ordering-backend/internal/utils"
)

// TokenRepo is the refresh token ledger. Tokens are stored verbatim under a
// unique key; a user has at most one live (non-revoked, non-superseded)
// token at any time. Issue and Rotate run their row changes inside a single
// transaction so there is never a window where both or neither token counts.
type TokenRepo struct {
	DB  *sql.DB
	TTL time.Duration // lifetime of newly issued tokens
}

func NewTokenRepo(db *sql.DB, ttl time.Duration) *TokenRepo {
	return &TokenRepo{DB: db, TTL: ttl}
}

// Issue discards any existing rows for the user and stores a fresh token.
func (r *TokenRepo) Issue(ctx context.Context, userID uint64) (model.RefreshToken, error) {
	value, err := utils.NewRefreshTokenValue()
	if err != nil {
		return model.RefreshToken{}, err
	}
	expiry := time.Now().UTC().Add(r.TTL)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.RefreshToken{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE user_id=?", userID); err != nil {
		return model.RefreshToken{}, err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token, expiry_date, revoked) VALUES (?,?,?,FALSE)",
		userID, value, expiry)
	if err != nil {
		return model.RefreshToken{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.RefreshToken{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.RefreshToken{}, err
	}
	return model.RefreshToken{ID: uint64(id), UserID: userID, Token: value, ExpiryDate: expiry}, nil
}

// Lookup fetches a token row by its value.
func (r *TokenRepo) Lookup(ctx context.Context, token string) (model.RefreshToken, error) {
	var t model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token, expiry_date, revoked, created_at FROM refresh_tokens WHERE token=? LIMIT 1",
		token).Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiryDate, &t.Revoked, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return model.RefreshToken{}, ErrNotFound
	}
	return t, err
}

// Delete removes a token row by value. Used for cleanup-on-read when a
// lookup finds the row expired.
func (r *TokenRepo) Delete(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token=?", token)
	return err
}

// Rotate marks the old token revoked and inserts its replacement in one
// transaction. The old row is kept so a replayed token fails the revoked
// check instead of simply disappearing.
func (r *TokenRepo) Rotate(ctx context.Context, old model.RefreshToken) (model.RefreshToken, error) {
	value, err := utils.NewRefreshTokenValue()
	if err != nil {
		return model.RefreshToken{}, err
	}
	expiry := time.Now().UTC().Add(r.TTL)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.RefreshToken{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked=TRUE WHERE id=?", old.ID); err != nil {
		return model.RefreshToken{}, err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token, expiry_date, revoked) VALUES (?,?,?,FALSE)",
		old.UserID, value, expiry)
	if err != nil {
		return model.RefreshToken{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.RefreshToken{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.RefreshToken{}, err
	}
	return model.RefreshToken{ID: uint64(id), UserID: old.UserID, Token: value, ExpiryDate: expiry}, nil
}

// RevokeAllForUser marks every token of the user revoked. Used on logout.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked=TRUE WHERE user_id=? AND revoked=FALSE", userID)
	return err
}

// SweepExpired bulk-deletes rows past expiry. Called from the background
// sweeper; not latency critical.
func (r *TokenRepo) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE expiry_date < ?", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
