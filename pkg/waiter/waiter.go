/*
Copyright 2025 Mirantis IT.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package waiter

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"k8s.io/apimachinery/pkg/util/wait"
)

const DefaultInterval = time.Second

// Condition checks the awaited state once. A returned error is treated as a
// hard failure unless it is accepted by WithSoftErrors.
type Condition func(ctx context.Context) (Outcome, error)

type options struct {
	interval   time.Duration
	softErrors func(error) bool
	log        *zerolog.Logger
}

type Option func(*options)

func WithInterval(interval time.Duration) Option {
	return func(o *options) {
		if interval > 0 {
			o.interval = interval
		}
	}
}

// WithSoftErrors makes errors matched by isSoft count as "not yet" instead of
// aborting the wait.
func WithSoftErrors(isSoft func(error) bool) Option {
	return func(o *options) {
		o.softErrors = isSoft
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = &log
	}
}

// Wait evaluates cond immediately and then every interval until it is
// satisfied or timeout elapses. Zero or negative timeout checks exactly once.
// Hard errors from cond are returned as is, without further attempts. When the
// budget is exhausted *TimeoutExpired is returned together with the last outcome.
func Wait(ctx context.Context, cond Condition, timeout time.Duration, opts ...Option) (Outcome, error) {
	o := options{interval: DefaultInterval}
	for _, opt := range opts {
		opt(&o)
	}
	if timeout < 0 {
		timeout = 0
	}

	var last Outcome
	var hardErr error
	attempts := 0
	start := time.Now()
	pollErr := wait.PollUntilContextTimeout(ctx, o.interval, timeout, true, func(_ context.Context) (bool, error) {
		attempts++
		// cond runs with the caller context, poll context may be already expired for zero timeout
		outcome, err := cond(ctx)
		if err != nil {
			if o.softErrors != nil && o.softErrors(err) {
				last = Outcome{Observed: err, Condition: last.Condition}
				if o.log != nil {
					o.log.Trace().Err(err).Msgf("attempt %d: soft error, retrying", attempts)
				}
				return false, nil
			}
			hardErr = err
			return false, err
		}
		last = outcome
		if o.log != nil {
			o.log.Trace().Msgf("attempt %d: waiting for %s, observed %v, satisfied=%v", attempts, outcome.Condition, outcome.Observed, outcome.Satisfied)
		}
		return outcome.Satisfied, nil
	})
	if pollErr == nil {
		return last, nil
	}
	if hardErr != nil {
		return last, hardErr
	}
	if ctx.Err() != nil {
		return last, errors.Wrap(ctx.Err(), "wait interrupted")
	}
	if !wait.Interrupted(pollErr) {
		return last, pollErr
	}
	return last, &TimeoutExpired{
		Condition:    last.Condition,
		Timeout:      timeout,
		Elapsed:      time.Since(start),
		Attempts:     attempts,
		LastObserved: last.Observed,
	}
}
