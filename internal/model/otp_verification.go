package model

import "time"

// OtpVerification mirrors the `otp_verifications` table. One row per email
// (unique key): re-sending a code overwrites the row in place, so at most
// one unverified code can ever be pending for an address. The row is keyed
// by email rather than user because verification may precede registration.
type OtpVerification struct {
	ID        uint64    // otp_verifications.id
	Email     string    // otp_verifications.email (unique)
	OtpCode   string    // otp_verifications.otp_code
	CreatedAt time.Time // otp_verifications.created_at
	ExpiresAt time.Time // otp_verifications.expires_at
	Verified  bool      // otp_verifications.verified
	Attempts  int       // otp_verifications.attempts
}
