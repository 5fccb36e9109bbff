package service

import (
	"context"
	"log"
	"time"
)

// ExpirySweeper is a store that can bulk-delete rows past their expiry.
// Both the refresh token ledger and the OTP store implement it.
type ExpirySweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// StartSweeper runs the periodic expiry sweep in the calling goroutine until
// the context is cancelled. Sweeps are maintenance, not latency critical:
// failures are logged and the next tick retries.
func StartSweeper(ctx context.Context, interval time.Duration, tokens, otps ExpirySweeper) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now().UTC()
			if n, err := tokens.SweepExpired(ctx, now); err != nil {
				log.Printf("sweeper: refresh token sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("sweeper: deleted %d expired refresh tokens", n)
			}
			if n, err := otps.SweepExpired(ctx, now); err != nil {
				log.Printf("sweeper: otp sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("sweeper: deleted %d expired otp rows", n)
			}
		}
	}
}
