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

const KindUser = "user"

func (c *Client) CreateUser(ctx context.Context, data UserData) (*User, error) {
	return createItem[User](ctx, c, KindUser, data)
}

func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	return getItem[User](ctx, c, KindUser, id)
}

func (c *Client) GetUsers(ctx context.Context) ([]User, error) {
	return listItems[User](ctx, c, KindUser)
}

func (c *Client) UpdateUser(ctx context.Context, user *User) (*User, error) {
	return updateItem(ctx, c, KindUser, user)
}

func (c *Client) DeleteUser(ctx context.Context, id string) (*User, error) {
	return deleteItem[User](ctx, c, KindUser, id)
}
