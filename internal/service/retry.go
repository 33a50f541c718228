package service

import (
	"context"

	"custodial-wallet/internal/core/ports"
)

// maxWriteAttempts bounds reruns of a write transaction that lost a race on
// a synthetic value (transaction hash or deposit address).
const maxWriteAttempts = 5

// isCollision reports whether err is a unique violation on a generated value,
// which a fresh attempt resolves.
func isCollision(err error) bool {
	return ports.IsDuplicate(err, ports.ConstraintTxHash) ||
		ports.IsDuplicate(err, ports.ConstraintWalletAddress)
}

// withRetry reruns fn while it fails with a collision.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		if err = fn(); err == nil || !isCollision(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}
