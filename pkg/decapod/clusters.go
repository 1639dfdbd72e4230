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

const KindCluster = "cluster"

func (c *Client) CreateCluster(ctx context.Context, name string) (*Cluster, error) {
	return createItem[Cluster](ctx, c, KindCluster, createClusterRequest{Name: name})
}

func (c *Client) GetCluster(ctx context.Context, id string) (*Cluster, error) {
	return getItem[Cluster](ctx, c, KindCluster, id)
}

func (c *Client) GetClusters(ctx context.Context) ([]Cluster, error) {
	return listItems[Cluster](ctx, c, KindCluster)
}

func (c *Client) UpdateCluster(ctx context.Context, cluster *Cluster) (*Cluster, error) {
	return updateItem(ctx, c, KindCluster, cluster)
}

func (c *Client) DeleteCluster(ctx context.Context, id string) (*Cluster, error) {
	return deleteItem[Cluster](ctx, c, KindCluster, id)
}
