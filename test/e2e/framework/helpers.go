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

package framework

import (
	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"

	"github.com/Mirantis/whale/pkg/decapod"
)

func DumpYaml(obj interface{}) string {
	out, err := yaml.Marshal(obj)
	if err != nil {
		return err.Error()
	}
	return string(out)
}

// GetFreeServers returns ids of servers not assigned to any cluster.
func GetFreeServers(count int) ([]string, error) {
	servers, err := TF.Steps.Servers.GetServers(true)
	if err != nil {
		return nil, err
	}
	free := []string{}
	for _, server := range servers {
		if server.Data.ClusterID == "" {
			free = append(free, server.ID)
		}
	}
	if len(free) < count {
		return nil, errors.Errorf("not enough free servers: required %d, found %d", count, len(free))
	}
	return free[:count], nil
}

// RunPlaybook creates configuration of playbook and executes it until completion.
func RunPlaybook(cluster decapod.ResourceRef, playbookID string, serverIDs []string, hints map[string]interface{}) (*decapod.PlaybookConfig, *decapod.Execution, error) {
	config, err := TF.Steps.PlaybookConfigs.CreatePlaybookConfig(cluster, playbookID, serverIDs, "", hints, true)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create '%s' configuration", playbookID)
	}
	TF.Log.Info().Msgf("### playbook configuration '%s' inventory:\n%s", config.ID, string(config.Data.Inventory))
	execution, err := TF.Steps.Executions.CreateExecution(config, true)
	if execution != nil {
		TF.Log.Info().Msgf("### execution '%s' status:\n%s", execution.ID, DumpYaml(execution.Data))
	}
	if err != nil {
		return config, execution, errors.Wrapf(err, "failed to execute '%s'", playbookID)
	}
	return config, execution, nil
}

// DeployCluster creates cluster and deploys it on given servers.
func DeployCluster(serverIDs []string) (*decapod.Cluster, error) {
	cluster, err := TF.Steps.Clusters.CreateCluster("", true)
	if err != nil {
		return nil, err
	}
	if _, _, err := RunPlaybook(cluster, TF.Config.Playbooks.DeployCluster, serverIDs, nil); err != nil {
		return cluster, err
	}
	return TF.Steps.Clusters.GetCluster(cluster, true)
}

// ClusterRoleServers returns ids of servers having role in cluster configuration.
func ClusterRoleServers(cluster *decapod.Cluster, role string) []string {
	ids := []string{}
	for _, server := range cluster.Data.Configuration[role] {
		ids = append(ids, server.ServerID)
	}
	return ids
}
