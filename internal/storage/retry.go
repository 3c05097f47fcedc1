package storage

import (
	"context"
	"errors"
	"time"
)

const (
	busyRetries = 5
	busyBackoff = 20 * time.Millisecond
)

// RetryOnBusy runs fn, retrying with exponential backoff while it fails
// because the database is busy or locked. Other failures return at once.
func RetryOnBusy(fn func() error) error {
	backoff := busyBackoff
	var err error
	for attempt := 0; attempt < busyRetries; attempt++ {
		err = fn()
		if !isBusy(err) {
			return err
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return err
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return Kind(err) == ErrNetwork
}
