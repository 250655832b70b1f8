// Package retry runs an operation under a bounded exponential backoff.
// It exists for multi-step writes whose failure may be transient (lock
// contention, serialization aborts); semantic failures such as uniqueness
// conflicts must never be retried and are filtered by the predicate.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// DefaultAttempts bounds the total tries, first attempt included.
	DefaultAttempts = 4

	// DefaultBaseDelay is the wait before the first retry; each further
	// retry doubles it.
	DefaultBaseDelay = 100 * time.Millisecond
)

// Do calls fn up to attempts times, sleeping baseDelay<<n between tries.
// It stops early when fn succeeds, when retryable reports the error as
// permanent, or when ctx is done. The last error is returned unchanged.
func Do(ctx context.Context, attempts int, baseDelay time.Duration, retryable func(error) bool, fn func() error) error {
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !retryable(err) || attempt == attempts-1 {
			return err
		}
		delay := baseDelay << uint(attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return err
		}
	}
	return err
}

// Transient reports whether err is a storage failure expected to resolve
// itself on retry, as opposed to a permanent constraint violation.
func Transient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", // serialization_failure
			"40P01", // deadlock_detected
			"55P03": // lock_not_available
			return true
		}
		return false
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}
