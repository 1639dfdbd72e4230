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

package fixtures

import (
	"github.com/pkg/errors"

	whaleconfig "github.com/Mirantis/whale/pkg/config"
	"github.com/Mirantis/whale/pkg/decapod"
	"github.com/Mirantis/whale/pkg/steps"
)

// ClusterRemover deletes clusters. Decapod refuses to delete deployed cluster,
// so OSD hosts are removed and cluster is purged by playbook executions.
type ClusterRemover struct {
	Steps     *steps.Steps
	Playbooks whaleconfig.PlaybookIDs
}

func NewClusterRemover(s *steps.Steps, playbooks whaleconfig.PlaybookIDs) *ClusterRemover {
	return &ClusterRemover{Steps: s, Playbooks: playbooks}
}

func (r *ClusterRemover) Remove(ref decapod.ResourceRef) error {
	id, err := decapod.ResolveID(ref)
	if err != nil {
		return err
	}
	cluster, err := r.Steps.Clusters.GetCluster(decapod.ID(id), false)
	if err != nil {
		if decapod.IsNotFound(err) {
			return nil
		}
		return err
	}
	if cluster.IsDeleted() {
		return nil
	}
	if len(cluster.Data.Configuration) == 0 {
		return r.Steps.Clusters.DeleteCluster(cluster, true)
	}

	log := r.Steps.Base.Log
	if osds := cluster.Data.Configuration["osds"]; len(osds) > 0 {
		serverIDs := make([]string, 0, len(osds))
		for _, osd := range osds {
			serverIDs = append(serverIDs, osd.ServerID)
		}
		log.Info().Msgf("cluster '%s' has OSD hosts %v, removing them first", id, serverIDs)
		if err := r.execute(cluster, r.Playbooks.RemoveOsd, serverIDs); err != nil {
			return err
		}
	}
	log.Info().Msgf("purging cluster '%s'", id)
	if err := r.execute(cluster, r.Playbooks.PurgeCluster, nil); err != nil {
		return err
	}
	// cluster disappears some time after purge execution completes
	return r.Steps.Clusters.CheckClusterPresence(decapod.ID(id), false, r.Steps.Base.Timeouts.Event)
}

func (r *ClusterRemover) execute(cluster *decapod.Cluster, playbookID string, serverIDs []string) error {
	config, err := r.Steps.PlaybookConfigs.CreatePlaybookConfig(decapod.ID(cluster.ID), playbookID, serverIDs, "", nil, true)
	if err != nil {
		return errors.Wrapf(err, "failed to prepare '%s' for cluster '%s'", playbookID, cluster.ID)
	}
	if _, err := r.Steps.Executions.CreateExecution(config, true); err != nil {
		return errors.Wrapf(err, "failed to run '%s' for cluster '%s'", playbookID, cluster.ID)
	}
	return nil
}
