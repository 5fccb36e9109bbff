package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/feastly/food-ordering-backend/internal/model"
	"github.com/feastly/food-ordering-backend/internal/repository"
	"github.com/feastly/food-ordering-backend/internal/utils"
)

// MaxOtpAttempts bounds guesses per issued code. The counter is consumed on
// every verify call that reaches the code comparison, matched or not, so a
// brute force gets at most this many tries before the row is destroyed.
const MaxOtpAttempts = 3

// OtpStore is the durable one-row-per-email passcode store.
type OtpStore interface {
	Upsert(ctx context.Context, email, code string, createdAt, expiresAt time.Time) error
	GetPending(ctx context.Context, email string) (model.OtpVerification, error)
	IncrementAttempts(ctx context.Context, email string) (int, error)
	MarkVerified(ctx context.Context, email string) error
	Delete(ctx context.Context, email string) error
	ExistsVerified(ctx context.Context, email string) (bool, error)
}

// Notifier delivers verification and welcome messages. Whether a delivery
// failure is fatal is the caller's decision: fatal for the code itself,
// logged and swallowed for the welcome message.
type Notifier interface {
	SendOtp(ctx context.Context, email, code, displayName string) error
	SendWelcome(ctx context.Context, email, displayName string) error
}

// OtpService drives the per-email verification state machine:
// NONE -> PENDING -> verified / expired / exhausted, where every terminal
// state collapses back to NONE once the row is gone and a new Send re-enters
// PENDING.
type OtpService struct {
	store    OtpStore
	notifier Notifier

	codeLength int
	expiry     time.Duration
}

func NewOtpService(store OtpStore, notifier Notifier, codeLength int, expiry time.Duration) *OtpService {
	return &OtpService{store: store, notifier: notifier, codeLength: codeLength, expiry: expiry}
}

// Send generates a fresh code for the email and dispatches it. Any previous
// code for the email is overwritten, pending or not, which is also the
// resend semantics: same call, fresh code, attempts back to zero.
// A dispatch failure is fatal; the caller is expected to retry via resend.
func (s *OtpService) Send(ctx context.Context, email, displayName string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrValidation
	}

	code, err := utils.NumericCode(s.codeLength)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := s.store.Upsert(ctx, email, code, now, now.Add(s.expiry)); err != nil {
		return err
	}
	if err := s.notifier.SendOtp(ctx, email, code, displayName); err != nil {
		return err
	}
	log.Printf("otp: code sent email=%s", email)
	return nil
}

// Verify checks a submitted code against the pending row for the email.
//
// Expired and exhausted rows are deleted as a side effect of the failed
// check (cleanup-on-read), which forces the client back through Send instead
// of retrying against a stale code. The attempt that exhausts the budget
// deletes the row too, so the next call reports ErrOtpNotPending rather
// than a second exhaustion.
//
// On success the row is marked verified and a welcome message is attempted;
// a welcome delivery failure is logged and never surfaced to the caller.
func (s *OtpService) Verify(ctx context.Context, email, submittedCode, displayName string) error {
	email = strings.TrimSpace(email)
	if email == "" || submittedCode == "" {
		return ErrValidation
	}

	row, err := s.store.GetPending(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOtpNotPending
		}
		return err
	}

	if time.Now().UTC().After(row.ExpiresAt) {
		if err := s.store.Delete(ctx, email); err != nil {
			return err
		}
		log.Printf("otp: expired code purged email=%s", email)
		return ErrOtpExpired
	}
	if row.Attempts >= MaxOtpAttempts {
		// Reached only if a previous call failed between incrementing and
		// deleting; normally the exhausting attempt below removes the row.
		if err := s.store.Delete(ctx, email); err != nil {
			return err
		}
		return ErrOtpAttemptsExhausted
	}

	attempts, err := s.store.IncrementAttempts(ctx, email)
	if err != nil {
		return err
	}

	if submittedCode != row.OtpCode {
		if attempts >= MaxOtpAttempts {
			if err := s.store.Delete(ctx, email); err != nil {
				return err
			}
			log.Printf("otp: attempts exhausted email=%s", email)
			return ErrOtpAttemptsExhausted
		}
		log.Printf("otp: code mismatch email=%s attempts=%d", email, attempts)
		return ErrOtpMismatch
	}

	if err := s.store.MarkVerified(ctx, email); err != nil {
		return err
	}
	if err := s.notifier.SendWelcome(ctx, email, displayName); err != nil {
		// Best effort only; the verification itself has succeeded.
		log.Printf("otp: welcome message failed email=%s: %v", email, err)
	}
	log.Printf("otp: verified email=%s", email)
	return nil
}

// RemainingAttempts reports how many guesses are left for the pending code,
// or 0 when nothing is pending.
func (s *OtpService) RemainingAttempts(ctx context.Context, email string) (int, error) {
	row, err := s.store.GetPending(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	remaining := MaxOtpAttempts - row.Attempts
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// IsVerified reports whether the email has ever completed verification and
// the verified row is still present.
func (s *OtpService) IsVerified(ctx context.Context, email string) (bool, error) {
	return s.store.ExistsVerified(ctx, email)
}
