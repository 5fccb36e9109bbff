package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/feastly/food-ordering-backend/internal/model"
)

// OtpRepo stores one-time passcodes, one row per email under a unique key.
// Sending a new code upserts the row in place instead of delete-then-insert,
// which closes the race two concurrent sends for the same email would
// otherwise have.
type OtpRepo struct{ DB *sql.DB }

func NewOtpRepo(db *sql.DB) *OtpRepo { return &OtpRepo{DB: db} }

// Upsert writes a fresh pending code for the email, resetting attempts and
// the verified flag whatever state the previous row was in.
func (r *OtpRepo) Upsert(ctx context.Context, email, code string, createdAt, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO otp_verifications (email, otp_code, created_at, expires_at, verified, attempts)
		VALUES (?,?,?,?,FALSE,0)
		ON DUPLICATE KEY UPDATE
			otp_code=VALUES(otp_code), created_at=VALUES(created_at),
			expires_at=VALUES(expires_at), verified=FALSE, attempts=0`,
		email, code, createdAt, expiresAt)
	return err
}

// GetPending fetches the unverified row for an email, if any.
func (r *OtpRepo) GetPending(ctx context.Context, email string) (model.OtpVerification, error) {
	var v model.OtpVerification
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, email, otp_code, created_at, expires_at, verified, attempts
		FROM otp_verifications WHERE email=? AND verified=FALSE LIMIT 1`,
		email).Scan(&v.ID, &v.Email, &v.OtpCode, &v.CreatedAt, &v.ExpiresAt, &v.Verified, &v.Attempts)
	if err == sql.ErrNoRows {
		return model.OtpVerification{}, ErrNotFound
	}
	return v, err
}

// IncrementAttempts adds one attempt to the pending row and returns the new
// count. Every verify call that reaches the code comparison consumes an
// attempt, matched or not.
func (r *OtpRepo) IncrementAttempts(ctx context.Context, email string) (int, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE otp_verifications SET attempts = attempts + 1 WHERE email=? AND verified=FALSE", email)
	if err != nil {
		return 0, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, err
	} else if n == 0 {
		return 0, ErrNotFound
	}
	var attempts int
	err = r.DB.QueryRowContext(ctx,
		"SELECT attempts FROM otp_verifications WHERE email=? AND verified=FALSE LIMIT 1",
		email).Scan(&attempts)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return attempts, err
}

// MarkVerified flips the pending row to verified. The row is kept so
// ExistsVerified can answer for the email until the next send overwrites it.
func (r *OtpRepo) MarkVerified(ctx context.Context, email string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE otp_verifications SET verified=TRUE WHERE email=? AND verified=FALSE", email)
	return err
}

// Delete removes the row for an email regardless of state.
func (r *OtpRepo) Delete(ctx context.Context, email string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM otp_verifications WHERE email=?", email)
	return err
}

// ExistsVerified reports whether the email has a verified row.
func (r *OtpRepo) ExistsVerified(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM otp_verifications WHERE email=? AND verified=TRUE", email).Scan(&n)
	return n > 0, err
}

// SweepExpired bulk-deletes rows whose expiry has passed, verified or not.
func (r *OtpRepo) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM otp_verifications WHERE expires_at < ?", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
