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
	"net/http"
)

const KindServer = "server"

// CreateServer registers server, Decapod adds it asynchronously so nothing
// is returned.
func (c *Client) CreateServer(ctx context.Context, req CreateServerRequest) error {
	return c.do(ctx, http.MethodPost, collectionPath(KindServer), nil, req, nil)
}

func (c *Client) GetServer(ctx context.Context, id string) (*Server, error) {
	return getItem[Server](ctx, c, KindServer, id)
}

func (c *Client) GetServers(ctx context.Context) ([]Server, error) {
	return listItems[Server](ctx, c, KindServer)
}

func (c *Client) UpdateServer(ctx context.Context, server *Server) (*Server, error) {
	return updateItem(ctx, c, KindServer, server)
}

func (c *Client) DeleteServer(ctx context.Context, id string) (*Server, error) {
	return deleteItem[Server](ctx, c, KindServer, id)
}
