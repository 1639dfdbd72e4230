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
	"context"
)

const (
	KindRole       = "role"
	KindPermission = "permission"
)

func (c *Client) CreateRole(ctx context.Context, name string, permissions []PermissionGroup) (*Role, error) {
	if permissions == nil {
		permissions = []PermissionGroup{}
	}
	return createItem[Role](ctx, c, KindRole, createRoleRequest{Name: name, Permissions: permissions})
}

func (c *Client) GetRole(ctx context.Context, id string) (*Role, error) {
	return getItem[Role](ctx, c, KindRole, id)
}

func (c *Client) GetRoles(ctx context.Context) ([]Role, error) {
	return listItems[Role](ctx, c, KindRole)
}

func (c *Client) UpdateRole(ctx context.Context, role *Role) (*Role, error) {
	return updateItem(ctx, c, KindRole, role)
}

func (c *Client) DeleteRole(ctx context.Context, id string) (*Role, error) {
	return deleteItem[Role](ctx, c, KindRole, id)
}

// GetPermissions returns all permission groups known to Decapod.
func (c *Client) GetPermissions(ctx context.Context) ([]PermissionGroup, error) {
	return listItems[PermissionGroup](ctx, c, KindPermission)
}
