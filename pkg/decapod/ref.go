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

package decapod

import (
	"github.com/pkg/errors"
)

// ResourceRef points to a resource either by bare ID or by a fetched model.
// The set of implementations is closed: ID and *Model[T].
type ResourceRef interface {
	resourceRef()
}

type ID string

func (ID) resourceRef() {}

func (*Model[T]) resourceRef() {}

type identified interface {
	GetID() string
}

func ResolveID(ref ResourceRef) (string, error) {
	var id string
	switch r := ref.(type) {
	case nil:
		return "", errors.New("resource reference is not provided")
	case ID:
		id = string(r)
	case identified:
		if isNilModel(r) {
			return "", errors.New("resource reference points to nil model")
		}
		id = r.GetID()
	default:
		return "", errors.Errorf("unsupported resource reference %T", ref)
	}
	if id == "" {
		return "", errors.New("resource reference has empty id")
	}
	return id, nil
}

type nilChecker interface {
	isNil() bool
}

func (m *Model[T]) isNil() bool {
	return m == nil
}

func isNilModel(r identified) bool {
	if checker, ok := r.(nilChecker); ok {
		return checker.isNil()
	}
	return false
}
