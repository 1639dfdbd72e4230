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
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	whalecommon "github.com/Mirantis/whale/pkg/common"
	"github.com/Mirantis/whale/pkg/decapod"
	"github.com/Mirantis/whale/pkg/steps"
)

// TrackedKinds are cleaned in this order: clusters purge leaves playbook
// configurations behind, users refer to roles.
var TrackedKinds = []string{
	decapod.KindCluster,
	decapod.KindPlaybookConfig,
	decapod.KindUser,
	decapod.KindRole,
}

type trackedResource struct {
	ID   string
	Name string
}

// Tracker remembers resources existing before a test and removes everything
// created after the snapshot.
type Tracker struct {
	steps   *steps.Steps
	remover *ClusterRemover
	known   map[string]map[string]bool
}

func NewTracker(s *steps.Steps, remover *ClusterRemover) (*Tracker, error) {
	t := &Tracker{steps: s, remover: remover}
	if err := t.Snapshot(); err != nil {
		return nil, err
	}
	return t, nil
}

// NewSweeper returns tracker with empty snapshot, so every alive resource
// counts as created.
func NewSweeper(s *steps.Steps, remover *ClusterRemover) *Tracker {
	known := map[string]map[string]bool{}
	for _, kind := range TrackedKinds {
		known[kind] = map[string]bool{}
	}
	return &Tracker{steps: s, remover: remover, known: known}
}

// Snapshot stores ids of alive resources of tracked kinds.
func (t *Tracker) Snapshot() error {
	known := map[string]map[string]bool{}
	for _, kind := range TrackedKinds {
		resources, err := t.list(kind)
		if err != nil {
			return errors.Wrapf(err, "failed to snapshot %s resources", kind)
		}
		known[kind] = map[string]bool{}
		for _, resource := range resources {
			known[kind][resource.ID] = true
		}
	}
	t.known = known
	return nil
}

// Created returns ids of resources appeared since the snapshot.
func (t *Tracker) Created() (map[string][]string, error) {
	return t.created(func(trackedResource) bool { return true })
}

func (t *Tracker) created(filter func(trackedResource) bool) (map[string][]string, error) {
	created := map[string][]string{}
	for _, kind := range TrackedKinds {
		ids, err := t.createdOf(kind, filter)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			created[kind] = ids
		}
	}
	return created, nil
}

func (t *Tracker) createdOf(kind string, filter func(trackedResource) bool) ([]string, error) {
	resources, err := t.list(kind)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s resources", kind)
	}
	ids := []string{}
	for _, resource := range resources {
		if !t.known[kind][resource.ID] && filter(resource) {
			ids = append(ids, resource.ID)
		}
	}
	return ids, nil
}

// CreatedByPrefix returns ids of resources appeared since the snapshot
// which name starts with prefix.
func (t *Tracker) CreatedByPrefix(prefix string) (map[string][]string, error) {
	return t.created(hasPrefix(prefix))
}

// Cleanup deletes every resource created since the snapshot. Failures do
// not stop the cleanup and are returned together.
func (t *Tracker) Cleanup() error {
	return t.cleanup(func(trackedResource) bool { return true })
}

// CleanupByPrefix deletes resources created since the snapshot which name
// starts with prefix.
func (t *Tracker) CleanupByPrefix(prefix string) error {
	return t.cleanup(hasPrefix(prefix))
}

func hasPrefix(prefix string) func(trackedResource) bool {
	return func(r trackedResource) bool {
		return strings.HasPrefix(strings.ToLower(r.Name), strings.ToLower(prefix))
	}
}

func (t *Tracker) cleanup(filter func(trackedResource) bool) error {
	log := t.steps.Base.Log
	var result *multierror.Error
	for _, kind := range TrackedKinds {
		// listed right before removal, cluster purge creates new configurations
		ids, err := t.createdOf(kind, filter)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		for _, id := range ids {
			rlog := whalecommon.ResourceLogger(log, kind, id)
			rlog.Info().Msg("cleanup: removing")
			if err := t.remove(kind, id); err != nil {
				rlog.Error().Err(err).Msg("cleanup: failed to remove")
				result = multierror.Append(result, errors.Wrapf(err, "failed to remove %s '%s'", kind, id))
			}
		}
	}
	return result.ErrorOrNil()
}

func (t *Tracker) remove(kind, id string) error {
	s := t.steps
	switch kind {
	case decapod.KindCluster:
		return t.remover.Remove(decapod.ID(id))
	case decapod.KindPlaybookConfig:
		return deleteIfPresent(s.Base.Context, id, s.Base.Client.GetPlaybookConfig, s.PlaybookConfigs.DeletePlaybookConfig)
	case decapod.KindUser:
		return deleteIfPresent(s.Base.Context, id, s.Base.Client.GetUser, s.Users.DeleteUser)
	case decapod.KindRole:
		return deleteIfPresent(s.Base.Context, id, s.Base.Client.GetRole, s.Roles.DeleteRole)
	}
	return errors.Errorf("unsupported resource kind '%s'", kind)
}

func (t *Tracker) list(kind string) ([]trackedResource, error) {
	s := t.steps
	resources := []trackedResource{}
	switch kind {
	case decapod.KindCluster:
		clusters, err := s.Clusters.GetClusters(false)
		if err != nil {
			return nil, err
		}
		for _, c := range clusters {
			resources = append(resources, trackedResource{ID: c.ID, Name: c.Data.Name})
		}
	case decapod.KindPlaybookConfig:
		configs, err := s.PlaybookConfigs.GetPlaybookConfigs(false)
		if err != nil {
			return nil, err
		}
		for _, c := range configs {
			resources = append(resources, trackedResource{ID: c.ID, Name: c.Data.Name})
		}
	case decapod.KindUser:
		users, err := s.Users.GetUsers(false)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			resources = append(resources, trackedResource{ID: u.ID, Name: u.Data.Login})
		}
	case decapod.KindRole:
		roles, err := s.Roles.GetRoles(false)
		if err != nil {
			return nil, err
		}
		for _, r := range roles {
			resources = append(resources, trackedResource{ID: r.ID, Name: r.Data.Name})
		}
	default:
		return nil, errors.Errorf("unsupported resource kind '%s'", kind)
	}
	return resources, nil
}
