package db

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// WaitForReady pings p with exponential backoff until it answers or timeout expires.
func WaitForReady(ctx context.Context, p Pinger, timeout time.Duration) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = timeout

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := backoff.Retry(func() error {
		return p.Ping(ctx)
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return fmt.Errorf("%w: timeout waiting for database: %w", ErrNotReady, err)
	}
	return nil
}
