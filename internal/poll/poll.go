// Package poll provides the single mechanism by which the harness tolerates
// cross-store propagation delay: a bounded-retry predicate wait. Every
// eventually-consistent assertion routes through Until rather than a single
// immediate read.
package poll

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
)

// ErrTimeout reports that a predicate never became true within the timeout
// budget. It signals propagation lag, not a logic failure, and is therefore
// distinct from an assertion error.
var ErrTimeout = errors.New("polling for async operation timed out")

type Options struct {
	Timeout  time.Duration
	Interval time.Duration
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 20 * time.Second
	}
	if o.Interval <= 0 {
		o.Interval = time.Second
	}
	return o
}

// Until evaluates predicate immediately and then once per interval until it
// returns true or the timeout elapses, in which case ErrTimeout is returned.
// A predicate error aborts polling at once and is returned as-is.
func Until(ctx context.Context, predicate func(context.Context) (bool, error), opts Options) error {
	opts = opts.withDefaults()

	deadlineCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	attempts := uint(opts.Timeout/opts.Interval) + 1
	var predicateErr error
	err := retry.Do(
		func() error {
			ok, err := predicate(deadlineCtx)
			if err != nil {
				predicateErr = err
				return retry.Unrecoverable(err)
			}
			if !ok {
				return ErrTimeout
			}
			return nil
		},
		retry.Attempts(attempts),
		retry.Delay(opts.Interval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(deadlineCtx),
	)
	if err == nil {
		return nil
	}
	if predicateErr != nil {
		return predicateErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
