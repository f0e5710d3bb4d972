// Package retrypkg provides bounded retry with exponential backoff for
// transient faults.
package retrypkg

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultRetries bounds automatic re-execution of conflicted operations.
const DefaultRetries = 3

// Do runs fn, retrying up to maxRetries times with exponential backoff while
// retriable reports the returned error as transient. Any other error stops
// the retry loop immediately and is returned as is.
func Do(ctx context.Context, maxRetries uint64, retriable func(error) bool, fn func() error) error {
	op := func() error {
		err := fn()
		if err == nil {
			return nil
		}

		if retriable(err) {
			return err
		}

		return backoff.Permanent(err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx))
}
