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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mirantis/whale/pkg/decapod"
	input "github.com/Mirantis/whale/test/unit/inputs"
)

func TestRoleSteps(t *testing.T) {
	s, fake := newTestSteps(t)

	tests := []struct {
		name        string
		permissions []decapod.PermissionGroup
		expectedErr bool
	}{
		{
			name: "without permissions",
		},
		{
			name:        "with api permissions",
			permissions: []decapod.PermissionGroup{{Name: "api", Permissions: []string{"view_cluster", "view_server"}}},
		},
		{
			name:        "with all permissions",
			permissions: input.Permissions,
		},
		{
			name:        "with unknown permission",
			permissions: []decapod.PermissionGroup{{Name: "api", Permissions: []string{"fly"}}},
			expectedErr: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			role, err := s.Roles.CreateRole("", test.permissions, true)
			if test.expectedErr {
				require.Error(t, err)
				assert.True(t, decapod.IsBadRequest(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, fake.IsAlive(decapod.KindRole, role.ID))
		})
	}

	t.Run("lookup", func(t *testing.T) {
		id, err := s.Roles.GetRoleID(input.AdminRoleName, true)
		require.NoError(t, err)
		assert.Equal(t, fake.AdminRoleID, id)

		permissions, err := s.Roles.GetPermissions(true)
		require.NoError(t, err)
		assert.Equal(t, input.Permissions, permissions)

		roles, err := s.Roles.GetRoles(true)
		require.NoError(t, err)
		assert.Len(t, roles, 4)
	})

	t.Run("update and delete", func(t *testing.T) {
		role, err := s.Roles.CreateRole("auditor", nil, true)
		require.NoError(t, err)
		updated, err := s.Roles.UpdateRole(role, func(d *decapod.RoleData) {
			d.Permissions = append(d.Permissions, decapod.PermissionGroup{Name: "api", Permissions: []string{"view_cluster"}})
		}, true)
		require.NoError(t, err)
		assert.Equal(t, []decapod.PermissionGroup{{Name: "api", Permissions: []string{"view_cluster"}}}, updated.Data.Permissions)

		_, err = s.Roles.UpdateRole(role, func(d *decapod.RoleData) {
			d.Permissions = []decapod.PermissionGroup{{Name: "unknown"}}
		}, true)
		require.Error(t, err)
		assert.True(t, decapod.IsBadRequest(err))

		require.NoError(t, s.Roles.DeleteRole(updated, true))
		id, err := s.Roles.GetRoleID("auditor", false)
		require.NoError(t, err)
		assert.Empty(t, id)
	})
}
