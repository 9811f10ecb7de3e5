package utils

import (
	"context"
	"errors"
	"time"
)

// ErrPollTimeout is returned when the ceiling elapses before the condition
// holds.
var ErrPollTimeout = errors.New("poll timeout")

// Poll checks cond every interval until it returns true, the ceiling
// elapses, or the context is cancelled. A non-nil error from cond stops
// polling immediately and is returned as-is.
//
// The login wait, device-verification wait, and navigation settle loops all
// share this primitive instead of carrying their own sleep loops.
func Poll(ctx context.Context, interval, ceiling time.Duration, cond func() (bool, error)) error {
	deadline := time.Now().Add(ceiling)

	for {
		ok, err := cond()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrPollTimeout
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
