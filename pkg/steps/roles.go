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
	"time"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"

	whalecommon "github.com/Mirantis/whale/pkg/common"
	"github.com/Mirantis/whale/pkg/decapod"
)

type RoleSteps struct {
	*BaseSteps
}

func (s *RoleSteps) CreateRole(name string, permissions []decapod.PermissionGroup, check bool) (*decapod.Role, error) {
	if name == "" {
		name = s.generateName("role")
	}
	s.Log.Info().Msgf("creating role '%s'", name)
	role, err := s.Client.CreateRole(s.Context, name, permissions)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create role '%s'", name)
	}
	if check {
		if err := s.CheckRolePresence(role, true, s.Timeouts.Action); err != nil {
			return role, err
		}
		expected := decapod.RoleData{Name: name, Permissions: permissions}
		if err := s.assertDataEqual("role data", expected, role.Data, cmpopts.EquateEmpty()); err != nil {
			return role, err
		}
	}
	return role, nil
}

func (s *RoleSteps) UpdateRole(ref decapod.ResourceRef, mutate func(*decapod.RoleData), check bool) (*decapod.Role, error) {
	role, err := s.GetRole(ref, false)
	if err != nil {
		return nil, err
	}
	expected := role.Data
	expected.Permissions = append([]decapod.PermissionGroup{}, role.Data.Permissions...)
	mutate(&expected)
	whalecommon.ShowObjectDiff(s.Log, role.Data, expected)
	role.Data = expected
	updated, err := s.Client.UpdateRole(s.Context, role)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update role '%s'", role.ID)
	}
	if check {
		if err := s.assertDataEqual("role data", expected, updated.Data, cmpopts.EquateEmpty()); err != nil {
			return updated, err
		}
	}
	return updated, nil
}

func (s *RoleSteps) DeleteRole(ref decapod.ResourceRef, check bool) error {
	id, err := decapod.ResolveID(ref)
	if err != nil {
		return err
	}
	s.Log.Info().Msgf("deleting role '%s'", id)
	if _, err := s.Client.DeleteRole(s.Context, id); err != nil {
		return errors.Wrapf(err, "failed to delete role '%s'", id)
	}
	if check {
		return s.CheckRolePresence(decapod.ID(id), false, s.Timeouts.Action)
	}
	return nil
}

func (s *RoleSteps) GetRole(ref decapod.ResourceRef, check bool) (*decapod.Role, error) {
	id, err := decapod.ResolveID(ref)
	if err != nil {
		return nil, err
	}
	role, err := s.Client.GetRole(s.Context, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get role '%s'", id)
	}
	if check {
		if err := assertIDEqual("role", id, role.ID); err != nil {
			return role, err
		}
	}
	return role, nil
}

func (s *RoleSteps) GetRoles(check bool) ([]decapod.Role, error) {
	roles, err := s.Client.GetRoles(s.Context)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list roles")
	}
	if check {
		if err := assertNotEmpty("roles", roles); err != nil {
			return roles, err
		}
	}
	return roles, nil
}

func (s *RoleSteps) GetRoleID(name string, check bool) (string, error) {
	role, err := GetResourceByField(s.Context, s.Client.GetRoles, name, func(d decapod.RoleData) string { return d.Name }, false)
	if err != nil {
		return "", errors.Wrap(err, "failed to list roles")
	}
	id := ""
	if role != nil {
		id = role.ID
	}
	if check {
		if err := assertNotEmpty("id of role '"+name+"'", id); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (s *RoleSteps) GetPermissions(check bool) ([]decapod.PermissionGroup, error) {
	permissions, err := s.Client.GetPermissions(s.Context)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list permissions")
	}
	if check {
		if err := assertNotEmpty("permissions", permissions); err != nil {
			return permissions, err
		}
	}
	return permissions, nil
}

func (s *RoleSteps) CheckRolePresence(ref decapod.ResourceRef, mustPresent bool, timeout time.Duration) error {
	return CheckResourcePresence(s.Context, ref, s.Client.GetRole, mustPresent, timeout, s.waitOptions()...)
}
