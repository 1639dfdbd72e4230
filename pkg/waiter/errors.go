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
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// TimeoutExpired is returned when the wait budget is exhausted before the
// condition became true.
type TimeoutExpired struct {
	Condition    string
	Timeout      time.Duration
	Elapsed      time.Duration
	Attempts     int
	LastObserved any
}

func (e *TimeoutExpired) Error() string {
	condition := e.Condition
	if condition == "" {
		condition = "condition"
	}
	return fmt.Sprintf("timeout %v expired after %v (%d attempts) waiting for %s, last observed: %v",
		e.Timeout, e.Elapsed.Round(time.Millisecond), e.Attempts, condition, e.LastObserved)
}

// AssertionError reports a definitive mismatch. It is never retried.
type AssertionError struct {
	Subject  string
	Expected string
	Actual   any
}

func (e *AssertionError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("expected %s, but got %v", e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s: expected %s, but got %v", e.Subject, e.Expected, e.Actual)
}

func IsTimeoutExpired(err error) bool {
	var timeoutErr *TimeoutExpired
	return errors.As(err, &timeoutErr)
}

func IsAssertionError(err error) bool {
	var assertErr *AssertionError
	return errors.As(err, &assertErr)
}
