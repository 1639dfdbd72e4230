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

package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	whalecommon "github.com/Mirantis/whale/pkg/common"
	whaleconfig "github.com/Mirantis/whale/pkg/config"
	"github.com/Mirantis/whale/pkg/decapod"
	"github.com/Mirantis/whale/pkg/waiter"
)

// Getter fetches single model by id.
type Getter[T any] func(ctx context.Context, id string) (*decapod.Model[T], error)

// Lister fetches all alive models of a kind.
type Lister[T any] func(ctx context.Context) ([]decapod.Model[T], error)

// BaseSteps carries everything steps need. Every step accepts trailing check
// flag: with check the post-condition is verified before return.
type BaseSteps struct {
	Context    context.Context
	Client     *decapod.Client
	Log        zerolog.Logger
	Timeouts   whaleconfig.Timeouts
	NamePrefix string
}

func NewBaseSteps(ctx context.Context, client *decapod.Client, cfg *whaleconfig.Config, log zerolog.Logger) *BaseSteps {
	return &BaseSteps{
		Context:    ctx,
		Client:     client,
		Log:        log,
		Timeouts:   cfg.Timeouts,
		NamePrefix: cfg.NamePrefix,
	}
}

func (b *BaseSteps) waitOptions() []waiter.Option {
	return []waiter.Option{
		waiter.WithInterval(b.Timeouts.PollInterval),
		waiter.WithLogger(b.Log),
	}
}

func (b *BaseSteps) generateName(kind string) string {
	return whalecommon.GenerateName(b.NamePrefix, kind)
}

func presenceWord(mustPresent bool) string {
	if mustPresent {
		return "present"
	}
	return "absent"
}

// CheckResourcePresence waits until resource is alive (mustPresent) or is
// deleted or missing (!mustPresent). Only NotFound counts as missing, other
// errors abort the check.
func CheckResourcePresence[T any](ctx context.Context, ref decapod.ResourceRef, getter Getter[T], mustPresent bool, timeout time.Duration, opts ...waiter.Option) error {
	id, err := decapod.ResolveID(ref)
	if err != nil {
		return err
	}
	presence := waiter.Matcher[bool]{
		Description: fmt.Sprintf("'%s' to be %s", id, presenceWord(mustPresent)),
		Match:       func(present bool) bool { return present == mustPresent },
	}
	_, err = waiter.Wait(ctx, func(ctx context.Context) (waiter.Outcome, error) {
		model, getErr := getter(ctx, id)
		if getErr != nil && !decapod.IsNotFound(getErr) {
			return waiter.Outcome{Condition: presence.Description}, getErr
		}
		present := getErr == nil && !model.IsDeleted()
		return waiter.ExpectThat(present, presence), nil
	}, timeout, opts...)
	if err != nil {
		return errors.Wrapf(err, "presence check of '%s' failed", id)
	}
	return nil
}

// GetResourceByField looks for the first model which field equals value.
func GetResourceByField[T any](ctx context.Context, lister Lister[T], value string, field func(T) string, check bool) (*decapod.Model[T], error) {
	items, err := lister(ctx)
	if err != nil {
		return nil, err
	}
	var found *decapod.Model[T]
	for idx := range items {
		if field(items[idx].Data) == value {
			found = &items[idx]
			break
		}
	}
	if check {
		if err := waiter.AssertThat(fmt.Sprintf("resource with field value '%s'", value), found, waiter.NotEmpty[*decapod.Model[T]]()); err != nil {
			return nil, err
		}
	}
	return found, nil
}

func assertNotEmpty[T any](subject string, value T) error {
	return waiter.AssertThat(subject, value, waiter.NotEmpty[T]())
}

func assertIDEqual(subject, expected, actual string) error {
	return waiter.AssertThat(subject+" id", actual, waiter.EqualTo(expected))
}

// jsonEqual compares raw json semantically, key order and spaces are ignored.
var jsonEqual = cmp.Comparer(func(a, b json.RawMessage) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == len(b)
	}
	var left, right interface{}
	if json.Unmarshal(a, &left) != nil || json.Unmarshal(b, &right) != nil {
		return string(a) == string(b)
	}
	return reflect.DeepEqual(left, right)
})

// assertDataEqual verifies updated data and logs difference when it is found.
func (b *BaseSteps) assertDataEqual(subject string, expected, actual interface{}, opts ...cmp.Option) error {
	opts = append(opts, jsonEqual)
	diff := cmp.Diff(expected, actual, opts...)
	if diff == "" {
		return nil
	}
	b.Log.Error().Msgf("%s differs from expected:\n%s", subject, diff)
	return &waiter.AssertionError{
		Subject:  subject,
		Expected: "data matching update",
		Actual:   diff,
	}
}
