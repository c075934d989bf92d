// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package batch

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"syscall"
	"time"
)

// Transient download failures are retried on the same assembly this many
// times before giving up.
const maxAttempts = 3

// retryDelay spaces attempts apart; remote mirrors that reset a connection
// usually recover within seconds. Variable so tests can shorten it.
var retryDelay = 2 * time.Second

// isTransient reports whether err is a recoverable network condition:
// a timeout or a reset/timed-out connection. Classification is by error
// kind, never by inspecting error message strings.
func isTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ETIMEDOUT)
}

// withRetry runs fn up to maxAttempts times, retrying only transient
// network failures. Context cancellation stops the attempts immediately.
func withRetry(ctx context.Context, logger *slog.Logger, fn func() (int, error)) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		status, err := fn()
		if err == nil {
			return status, nil
		}
		if !isTransient(err) {
			return status, err
		}
		lastErr = err

		if attempt < maxAttempts {
			logger.Warn("fetch.retry", "attempt", attempt, "err", err)
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	return 0, lastErr
}
