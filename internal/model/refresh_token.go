package model

import "time"

// RefreshToken mirrors the `refresh_tokens` table. The token value itself
// is a random hex string stored verbatim under a unique key. At most one
// non-revoked row exists per user: issuing discards prior rows, rotation
// marks the predecessor revoked before inserting its replacement.
type RefreshToken struct {
	ID         uint64    // refresh_tokens.id
	UserID     uint64    // refresh_tokens.user_id
	Token      string    // refresh_tokens.token (unique)
	ExpiryDate time.Time // refresh_tokens.expiry_date
	Revoked    bool      // refresh_tokens.revoked
	CreatedAt  time.Time // refresh_tokens.created_at
}
