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

package fixtures

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/Mirantis/whale/pkg/decapod"
	"github.com/Mirantis/whale/pkg/steps"
)

// Releaser frees whatever was acquired for a test.
type Releaser interface {
	Release() error
}

// Guard owns single created resource. Release removes the resource once,
// repeated calls return the first result.
type Guard[T any] struct {
	Resource *decapod.Model[T]

	release func(id string) error
	once    sync.Once
	err     error
}

func (g *Guard[T]) Release() error {
	if g == nil {
		return nil
	}
	g.once.Do(func() {
		if g.Resource == nil {
			return
		}
		g.err = g.release(g.Resource.ID)
	})
	return g.err
}

// newGuard wraps create result. Resource created but failed verification is
// released right away and both errors are returned.
func newGuard[T any](resource *decapod.Model[T], createErr error, release func(id string) error) (*Guard[T], error) {
	guard := &Guard[T]{Resource: resource, release: release}
	if createErr == nil {
		return guard, nil
	}
	var result *multierror.Error
	result = multierror.Append(result, createErr)
	if err := guard.Release(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "failed to release partially created resource"))
	}
	return nil, result.ErrorOrNil()
}

// deleteIfPresent skips resources which are already deleted or missing.
func deleteIfPresent[T any](ctx context.Context, id string, getter steps.Getter[T], remove func(decapod.ResourceRef, bool) error) error {
	model, err := getter(ctx, id)
	if err != nil {
		if decapod.IsNotFound(err) {
			return nil
		}
		return err
	}
	if model.IsDeleted() {
		return nil
	}
	err = remove(decapod.ID(id), true)
	if decapod.IsNotFound(err) {
		return nil
	}
	return err
}

func NewClusterGuard(s *steps.Steps, remover *ClusterRemover, name string) (*Guard[decapod.ClusterData], error) {
	cluster, err := s.Clusters.CreateCluster(name, true)
	return newGuard(cluster, err, func(id string) error {
		return remover.Remove(decapod.ID(id))
	})
}

func NewRoleGuard(s *steps.Steps, name string, permissions []decapod.PermissionGroup) (*Guard[decapod.RoleData], error) {
	role, err := s.Roles.CreateRole(name, permissions, true)
	return newGuard(role, err, func(id string) error {
		return deleteIfPresent(s.Base.Context, id, s.Base.Client.GetRole, s.Roles.DeleteRole)
	})
}

func NewUserGuard(s *steps.Steps, data decapod.UserData) (*Guard[decapod.UserData], error) {
	user, err := s.Users.CreateUser(data, true)
	return newGuard(user, err, func(id string) error {
		return deleteIfPresent(s.Base.Context, id, s.Base.Client.GetUser, s.Users.DeleteUser)
	})
}

func NewPlaybookConfigGuard(s *steps.Steps, clusterRef decapod.ResourceRef, playbookID string, serverIDs []string, hints map[string]interface{}) (*Guard[decapod.PlaybookConfigData], error) {
	config, err := s.PlaybookConfigs.CreatePlaybookConfig(clusterRef, playbookID, serverIDs, "", hints, true)
	return newGuard(config, err, func(id string) error {
		return deleteIfPresent(s.Base.Context, id, s.Base.Client.GetPlaybookConfig, s.PlaybookConfigs.DeletePlaybookConfig)
	})
}

// ReleaseAll releases guards in reverse order and collects every failure.
func ReleaseAll(releasers ...Releaser) error {
	var result *multierror.Error
	for idx := len(releasers) - 1; idx >= 0; idx-- {
		if releasers[idx] == nil {
			continue
		}
		if err := releasers[idx].Release(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
