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

package decapod_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mirantis/whale/pkg/decapod"
	faketestclients "github.com/Mirantis/whale/test/unit/clients"
	input "github.com/Mirantis/whale/test/unit/inputs"
)

func TestNewClient(t *testing.T) {
	_, err := decapod.NewClient(decapod.ClientOptions{})
	assert.EqualError(t, err, "decapod url is not specified")

	client, err := decapod.NewClient(decapod.ClientOptions{URL: "10.0.0.10:9999/"})
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.10:9999", client.URL())
}

func TestClientAuthentication(t *testing.T) {
	ctx := context.Background()
	fake := faketestclients.NewFakeDecapod(t)
	client := fake.NewClient(t)

	_, err := client.GetClusters(ctx)
	require.NoError(t, err)
	_, err = client.GetUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"login": 1}, faketestclients.GetActionsCount(fake, []string{"login"}))

	t.Run("expired token is refreshed once", func(t *testing.T) {
		fake.ClearActions()
		fake.ExpireTokens()
		users, err := client.GetUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, input.AdminLogin, users[0].Data.Login)
		assert.Equal(t, map[string]int{"login": 1, "list": 2}, faketestclients.GetActionsCount(fake, []string{"login", "list"}))
	})

	t.Run("logout drops token", func(t *testing.T) {
		fake.ClearActions()
		require.NoError(t, client.Logout(ctx))
		require.NoError(t, client.Logout(ctx))
		_, err := client.GetRoles(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"login": 1, "logout": 1}, faketestclients.GetActionsCount(fake, []string{"login", "logout"}))
	})

	t.Run("wrong credentials", func(t *testing.T) {
		cfg := fake.Config()
		cfg.Password = "wrong"
		badClient, err := decapod.NewClientFromConfig(cfg, zerolog.Nop())
		require.NoError(t, err)
		_, err = badClient.GetClusters(ctx)
		require.Error(t, err)
		assert.True(t, decapod.IsUnauthorized(err))
		assert.Contains(t, err.Error(), "failed to login to decapod as 'login'")
	})
}

func TestClientAPIErrors(t *testing.T) {
	ctx := context.Background()
	fake := faketestclients.NewFakeDecapod(t)
	client := fake.NewClient(t)

	_, err := client.GetCluster(ctx, "missing")
	require.Error(t, err)
	assert.True(t, decapod.IsNotFound(err))
	var apiErr *decapod.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NotFound", apiErr.Type)
	assert.Equal(t, "GET /v1/cluster/missing/: 404 NotFound: cluster 'missing' was not found", err.Error())

	_, err = client.CreateCluster(ctx, "bad-name")
	assert.True(t, decapod.IsBadRequest(err))
	assert.False(t, decapod.IsNotFound(err))

	_, err = client.GetCluster(ctx, "")
	assert.EqualError(t, err, "empty cluster id")
}

func TestClientRetries(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name          string
		times         int
		expectedError string
	}{
		{
			name:  "transient failures are retried",
			times: 2,
		},
		{
			name:          "retries exhausted",
			expectedError: "GET /v1/cluster/: 503 ServiceUnavailable: try later",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fake := faketestclients.NewFakeDecapod(t)
			client := fake.NewClient(t)
			require.NoError(t, client.Login(ctx))
			fake.SetAPIError("list-cluster", &faketestclients.InjectedError{
				Status: http.StatusServiceUnavailable, Type: "ServiceUnavailable", Message: "try later", Times: test.times,
			})
			_, err := client.GetClusters(ctx)
			if test.expectedError == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, test.expectedError)
			}
			// initial attempt and two retries
			assert.Equal(t, map[string]int{"list-cluster": 3}, faketestclients.GetActionsCount(fake, []string{"list-cluster"}))
		})
	}
}

func TestClientPostIsNotRetried(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		status int
		errType string
	}{
		{name: "bad gateway", status: http.StatusBadGateway, errType: "BadGateway"},
		{name: "service unavailable", status: http.StatusServiceUnavailable, errType: "ServiceUnavailable"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fake := faketestclients.NewFakeDecapod(t)
			client := fake.NewClient(t)
			require.NoError(t, client.Login(ctx))
			fake.SetAPIError("create-cluster", &faketestclients.InjectedError{
				Status: test.status, Type: test.errType, Message: "upstream failed", Times: 1,
			})
			fake.ClearActions()
			_, err := client.CreateCluster(ctx, "whaleclusterpost")
			require.Error(t, err)
			assert.Equal(t, fmt.Sprintf("POST /v1/cluster/: %d %s: upstream failed", test.status, test.errType), err.Error())
			assert.Equal(t, map[string]int{"create-cluster": 1}, faketestclients.GetActionsCount(fake, []string{"create-cluster"}))

			clusters, err := client.GetClusters(ctx)
			require.NoError(t, err)
			assert.Empty(t, clusters)
		})
	}
}

func TestClientClusterLifecycle(t *testing.T) {
	ctx := context.Background()
	fake := faketestclients.NewFakeDecapod(t)
	client := fake.NewClient(t)

	cluster, err := client.CreateCluster(ctx, "whale1")
	require.NoError(t, err)
	assert.Equal(t, "cluster", cluster.Model)
	assert.Equal(t, 1, cluster.Version)
	assert.False(t, cluster.IsDeleted())

	cluster.Data.Name = "whale2"
	updated, err := client.UpdateCluster(ctx, cluster)
	require.NoError(t, err)
	assert.Equal(t, "whale2", updated.Data.Name)
	assert.Equal(t, 2, updated.Version)

	_, err = client.UpdateCluster(ctx, cluster)
	assert.True(t, decapod.IsConflict(err), "obsolete version must be rejected")

	deleted, err := client.DeleteCluster(ctx, cluster.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted())

	fetched, err := client.GetCluster(ctx, cluster.ID)
	require.NoError(t, err)
	assert.True(t, fetched.IsDeleted())

	clusters, err := client.GetClusters(ctx)
	require.NoError(t, err)
	assert.Empty(t, clusters)

	_, err = client.DeleteCluster(ctx, cluster.ID)
	assert.True(t, decapod.IsNotFound(err))
}

func TestClientPagination(t *testing.T) {
	ctx := context.Background()
	fake := faketestclients.NewFakeDecapod(t)
	client := fake.NewClient(t)
	for idx := 0; idx < 105; idx++ {
		_, err := client.CreateRole(ctx, fmt.Sprintf("role%d", idx), nil)
		require.NoError(t, err)
	}
	fake.ClearActions()

	roles, err := client.GetRoles(ctx)
	require.NoError(t, err)
	// seeded admin role plus created ones
	assert.Len(t, roles, 106)
	assert.Equal(t, input.AdminRoleName, roles[0].Data.Name)
	assert.Equal(t, "role104", roles[105].Data.Name)
	assert.Equal(t, map[string]int{"list-role": 2}, faketestclients.GetActionsCount(fake, []string{"list-role"}))
}

func TestClientStaticLists(t *testing.T) {
	ctx := context.Background()
	fake := faketestclients.NewFakeDecapod(t)
	client := fake.NewClient(t)

	playbooks, err := client.GetPlaybooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, input.Playbooks, playbooks)

	permissions, err := client.GetPermissions(ctx)
	require.NoError(t, err)
	assert.Equal(t, input.Permissions, permissions)

	servers, err := client.GetServers(ctx)
	require.NoError(t, err)
	assert.Len(t, servers, len(fake.ServerIDs))
}

func TestClientExecution(t *testing.T) {
	ctx := context.Background()
	fake := faketestclients.NewFakeDecapod(t)
	client := fake.NewClient(t)

	cluster, err := client.CreateCluster(ctx, "whale")
	require.NoError(t, err)
	config, err := client.CreatePlaybookConfig(ctx, decapod.CreatePlaybookConfigRequest{
		Name:       "deploy",
		ClusterID:  cluster.ID,
		PlaybookID: "cluster_deploy",
		ServerIDs:  fake.ServerIDs[:3],
	})
	require.NoError(t, err)

	execution, err := client.CreateExecution(ctx, config.ID, config.Version)
	require.NoError(t, err)
	assert.Equal(t, decapod.ExecutionCreated, execution.Data.State)
	assert.Equal(t, decapod.PlaybookConfigRef{ID: config.ID, Version: config.Version}, execution.Data.PlaybookConfiguration)

	canceled, err := client.CancelExecution(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, decapod.ExecutionCanceling, canceled.Data.State)

	states := []string{}
	for idx := 0; idx < 3; idx++ {
		current, err := client.GetExecution(ctx, execution.ID)
		require.NoError(t, err)
		states = append(states, current.Data.State)
	}
	assert.Equal(t, []string{decapod.ExecutionCanceling, decapod.ExecutionCanceled, decapod.ExecutionCanceled}, states)

	_, err = client.CancelExecution(ctx, execution.ID)
	assert.True(t, decapod.IsBadRequest(err))
}
