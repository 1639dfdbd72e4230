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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	whaleconfig "github.com/Mirantis/whale/pkg/config"
	"github.com/Mirantis/whale/pkg/decapod"
	"github.com/Mirantis/whale/pkg/waiter"
	input "github.com/Mirantis/whale/test/unit/inputs"
)

func TestPlaybookSteps(t *testing.T) {
	s, _ := newTestSteps(t)

	playbooks, err := s.Playbooks.GetPlaybooks(true)
	require.NoError(t, err)
	assert.Equal(t, input.Playbooks, playbooks)

	deploy, err := s.Playbooks.GetPlaybook(whaleconfig.DefaultPlaybooks.DeployCluster, true)
	require.NoError(t, err)
	assert.True(t, deploy.RequiredServerList)
	assert.Len(t, deploy.Hints, 2)

	missing, err := s.Playbooks.GetPlaybook("unknown", false)
	assert.NoError(t, err)
	assert.Nil(t, missing)
	_, err = s.Playbooks.GetPlaybook("unknown", true)
	require.Error(t, err)
	assert.True(t, waiter.IsAssertionError(err))
}

func TestPlaybookConfigSteps(t *testing.T) {
	s, fake := newTestSteps(t)
	cluster, err := s.Clusters.CreateCluster("", true)
	require.NoError(t, err)
	playbooks := whaleconfig.DefaultPlaybooks

	config, err := s.PlaybookConfigs.CreatePlaybookConfig(cluster, playbooks.DeployCluster, fake.ServerIDs[:3], "", map[string]interface{}{
		"dmcrypt":     true,
		"collocation": false,
	}, true)
	require.NoError(t, err)
	assert.Contains(t, config.Data.Name, "whale-config-")
	configuration := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(config.Data.Configuration, &configuration))
	assert.Equal(t, []interface{}{
		map[string]interface{}{"id": "collocation", "value": false},
		map[string]interface{}{"id": "dmcrypt", "value": true},
	}, configuration["hints"])

	t.Run("invalid requests", func(t *testing.T) {
		tests := []struct {
			name       string
			cluster    decapod.ResourceRef
			playbookID string
			servers    []string
		}{
			{name: "playbook requires servers", cluster: cluster, playbookID: playbooks.AddOsd},
			{name: "unknown playbook", cluster: cluster, playbookID: "unknown", servers: fake.ServerIDs[:1]},
			{name: "unknown cluster", cluster: decapod.ID("missing"), playbookID: playbooks.PurgeCluster},
			{name: "unknown server", cluster: cluster, playbookID: playbooks.AddOsd, servers: []string{"missing"}},
		}
		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				_, err := s.PlaybookConfigs.CreatePlaybookConfig(test.cluster, test.playbookID, test.servers, "", nil, true)
				require.Error(t, err)
				assert.True(t, decapod.IsBadRequest(err))
			})
		}
	})

	t.Run("server list is optional for purge", func(t *testing.T) {
		purge, err := s.PlaybookConfigs.CreatePlaybookConfig(decapod.ID(cluster.ID), playbooks.PurgeCluster, nil, "purge", nil, true)
		require.NoError(t, err)
		assert.Equal(t, "purge", purge.Data.Name)
		require.NoError(t, s.PlaybookConfigs.DeletePlaybookConfig(purge, true))
	})

	t.Run("update", func(t *testing.T) {
		updated, err := s.PlaybookConfigs.UpdatePlaybookConfig(config, func(d *decapod.PlaybookConfigData) {
			d.Name = "renamed"
		}, true)
		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.Data.Name)
		assert.Equal(t, config.Version+1, updated.Version)

		_, err = s.PlaybookConfigs.UpdatePlaybookConfig(config, func(d *decapod.PlaybookConfigData) {
			d.Name = "obsolete"
		}, true)
		require.Error(t, err)
		assert.True(t, decapod.IsConflict(err))

		byID, err := s.PlaybookConfigs.UpdatePlaybookConfig(decapod.ID(config.ID), func(d *decapod.PlaybookConfigData) {
			d.Name = "latest"
		}, true)
		require.NoError(t, err)
		assert.Equal(t, "latest", byID.Data.Name)
	})

	t.Run("list and delete", func(t *testing.T) {
		configs, err := s.PlaybookConfigs.GetPlaybookConfigs(true)
		require.NoError(t, err)
		assert.Len(t, configs, 1)

		require.NoError(t, s.PlaybookConfigs.DeletePlaybookConfig(decapod.ID(config.ID), true))
		_, err = s.PlaybookConfigs.GetPlaybookConfigs(true)
		require.Error(t, err)
		assert.True(t, waiter.IsAssertionError(err))
	})
}
