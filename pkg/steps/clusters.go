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
	"time"

	"github.com/pkg/errors"

	whalecommon "github.com/Mirantis/whale/pkg/common"
	"github.com/Mirantis/whale/pkg/decapod"
	"github.com/Mirantis/whale/pkg/waiter"
)

type ClusterSteps struct {
	*BaseSteps
}

// CreateCluster creates cluster with given or generated name. Decapod allows
// only letters and digits in cluster names, so other symbols are dropped.
func (s *ClusterSteps) CreateCluster(name string, check bool) (*decapod.Cluster, error) {
	if name == "" {
		name = s.generateName("cluster")
	}
	name = whalecommon.AlphanumericName(name)
	s.Log.Info().Msgf("creating cluster '%s'", name)
	cluster, err := s.Client.CreateCluster(s.Context, name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create cluster '%s'", name)
	}
	if check {
		if err := s.CheckClusterPresence(cluster, true, s.Timeouts.Action); err != nil {
			return cluster, err
		}
		if err := waiter.AssertThat("cluster name", cluster.Data.Name, waiter.EqualTo(name)); err != nil {
			return cluster, err
		}
	}
	return cluster, nil
}

// UpdateCluster renames cluster, name is normalized the same way as in
// CreateCluster.
func (s *ClusterSteps) UpdateCluster(ref decapod.ResourceRef, name string, check bool) (*decapod.Cluster, error) {
	name = whalecommon.AlphanumericName(name)
	if name == "" {
		return nil, errors.New("new cluster name has no letters or digits")
	}
	cluster, err := s.GetCluster(ref, false)
	if err != nil {
		return nil, err
	}
	s.Log.Info().Msgf("renaming cluster '%s' from '%s' to '%s'", cluster.ID, cluster.Data.Name, name)
	cluster.Data.Name = name
	updated, err := s.Client.UpdateCluster(s.Context, cluster)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update cluster '%s'", cluster.ID)
	}
	if check {
		if err := waiter.AssertThat("cluster name", updated.Data.Name, waiter.EqualTo(name)); err != nil {
			return updated, err
		}
	}
	return updated, nil
}

func (s *ClusterSteps) DeleteCluster(ref decapod.ResourceRef, check bool) error {
	id, err := decapod.ResolveID(ref)
	if err != nil {
		return err
	}
	s.Log.Info().Msgf("deleting cluster '%s'", id)
	if _, err := s.Client.DeleteCluster(s.Context, id); err != nil {
		return errors.Wrapf(err, "failed to delete cluster '%s'", id)
	}
	if check {
		return s.CheckClusterPresence(decapod.ID(id), false, s.Timeouts.Action)
	}
	return nil
}

func (s *ClusterSteps) GetCluster(ref decapod.ResourceRef, check bool) (*decapod.Cluster, error) {
	id, err := decapod.ResolveID(ref)
	if err != nil {
		return nil, err
	}
	cluster, err := s.Client.GetCluster(s.Context, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get cluster '%s'", id)
	}
	if check {
		if err := assertIDEqual("cluster", id, cluster.ID); err != nil {
			return cluster, err
		}
	}
	return cluster, nil
}

func (s *ClusterSteps) GetClusters(check bool) ([]decapod.Cluster, error) {
	clusters, err := s.Client.GetClusters(s.Context)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list clusters")
	}
	if check {
		if err := assertNotEmpty("clusters", clusters); err != nil {
			return clusters, err
		}
	}
	return clusters, nil
}

func (s *ClusterSteps) GetClusterID(name string, check bool) (string, error) {
	cluster, err := GetResourceByField(s.Context, s.Client.GetClusters, name, func(d decapod.ClusterData) string { return d.Name }, false)
	if err != nil {
		return "", errors.Wrap(err, "failed to list clusters")
	}
	id := ""
	if cluster != nil {
		id = cluster.ID
	}
	if check {
		if err := assertNotEmpty("id of cluster '"+name+"'", id); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (s *ClusterSteps) CheckClusterPresence(ref decapod.ResourceRef, mustPresent bool, timeout time.Duration) error {
	return CheckResourcePresence(s.Context, ref, s.Client.GetCluster, mustPresent, timeout, s.waitOptions()...)
}
