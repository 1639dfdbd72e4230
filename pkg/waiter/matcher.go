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
	"reflect"
)

// Matcher is a described predicate over an observed value.
type Matcher[T any] struct {
	Description string
	Match       func(T) bool
}

// Outcome is the result of a single condition evaluation.
type Outcome struct {
	// Satisfied reports whether the awaited condition holds
	Satisfied bool
	// Observed keeps the last seen value for diagnostics
	Observed any
	// Condition describes what is awaited
	Condition string
}

// ExpectThat evaluates value against matcher once.
func ExpectThat[T any](value T, matcher Matcher[T]) Outcome {
	return Outcome{
		Satisfied: matcher.Match(value),
		Observed:  value,
		Condition: matcher.Description,
	}
}

// AssertThat returns an *AssertionError when value does not match.
func AssertThat[T any](subject string, value T, matcher Matcher[T]) error {
	if matcher.Match(value) {
		return nil
	}
	return &AssertionError{
		Subject:  subject,
		Expected: matcher.Description,
		Actual:   value,
	}
}

func EqualTo[T comparable](expected T) Matcher[T] {
	return Matcher[T]{
		Description: fmt.Sprintf("equal to %v", expected),
		Match:       func(v T) bool { return v == expected },
	}
}

func In[T comparable](values ...T) Matcher[T] {
	return Matcher[T]{
		Description: fmt.Sprintf("one of %v", values),
		Match: func(v T) bool {
			for _, candidate := range values {
				if v == candidate {
					return true
				}
			}
			return false
		},
	}
}

func NotIn[T comparable](values ...T) Matcher[T] {
	return Not(In(values...))
}

func Not[T any](m Matcher[T]) Matcher[T] {
	return Matcher[T]{
		Description: "not " + m.Description,
		Match:       func(v T) bool { return !m.Match(v) },
	}
}

// NotEmpty matches non-zero strings, non-empty slices and maps, and non-nil pointers.
func NotEmpty[T any]() Matcher[T] {
	return Matcher[T]{
		Description: "not empty",
		Match: func(v T) bool {
			rv := reflect.ValueOf(v)
			if !rv.IsValid() {
				return false
			}
			switch rv.Kind() {
			case reflect.Slice, reflect.Map, reflect.String, reflect.Array, reflect.Chan:
				return rv.Len() > 0
			case reflect.Ptr, reflect.Interface:
				return !rv.IsNil()
			}
			return !rv.IsZero()
		},
	}
}
