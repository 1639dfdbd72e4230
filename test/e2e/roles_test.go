//go:build e2e

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

package test

import (
	"testing"

	whalecommon "github.com/Mirantis/whale/pkg/common"
	"github.com/Mirantis/whale/pkg/decapod"
	"github.com/Mirantis/whale/pkg/fixtures"
	f "github.com/Mirantis/whale/test/e2e/framework"
)

func TestCreateDeleteRole(t *testing.T) {
	t.Log("#### e2e test: create and delete role")
	defer f.SetupTeardown(t)()

	f.Step(t, "Get available permissions")
	permissions, err := f.TF.Steps.Roles.GetPermissions(true)
	if err != nil {
		t.Fatal(err)
	}
	f.Step(t, "Create role with all permissions")
	role, err := f.TF.Steps.Roles.CreateRole("", permissions, true)
	if err != nil {
		t.Fatal(err)
	}
	f.Step(t, "Delete role '%s'", role.Data.Name)
	err = f.TF.Steps.Roles.DeleteRole(role, true)
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("Test successfully passed")
}

func TestUpdateGetListRole(t *testing.T) {
	t.Log("#### e2e test: update, get and list roles")
	defer f.SetupTeardown(t)()

	f.Step(t, "Create role")
	role, err := fixtures.NewRoleGuard(f.TF.Steps, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Release(t, role)

	newName := whalecommon.GenerateName(f.TF.Config.NamePrefix, "role")
	f.Step(t, "Rename role to '%s'", newName)
	_, err = f.TF.Steps.Roles.UpdateRole(role.Resource, func(d *decapod.RoleData) {
		d.Name = newName
	}, true)
	if err != nil {
		t.Fatal(err)
	}
	f.Step(t, "Get role by id and by name")
	if _, err := f.TF.Steps.Roles.GetRole(role.Resource, true); err != nil {
		t.Fatal(err)
	}
	if _, err := f.TF.Steps.Roles.GetRoleID(newName, true); err != nil {
		t.Fatal(err)
	}
	f.Step(t, "List roles")
	if _, err := f.TF.Steps.Roles.GetRoles(true); err != nil {
		t.Fatal(err)
	}
	t.Logf("Test successfully passed")
}
