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

	"github.com/Mirantis/whale/pkg/decapod"
	f "github.com/Mirantis/whale/test/e2e/framework"
)

func TestExecutionLifecycle(t *testing.T) {
	t.Log("#### e2e test: deploy cluster, add OSD and monitor, telegraf, remove hosts and purge")
	defer f.SetupTeardown(t)()

	clusterSize, err := f.GetCaseInt(t, "clusterSize", 3)
	if err != nil {
		t.Fatal(err)
	}
	f.Step(t, "Get %d free servers", clusterSize+2)
	serverIDs, err := f.GetFreeServers(clusterSize + 2)
	if err != nil {
		t.Fatal(err)
	}
	clusterServers := serverIDs[:clusterSize]
	osdServer := serverIDs[clusterSize]
	monitorServer := serverIDs[clusterSize+1]
	playbooks := f.TF.Config.Playbooks

	f.Step(t, "Deploy cluster on servers %v", clusterServers)
	cluster, err := f.DeployCluster(clusterServers)
	if err != nil {
		t.Fatal(err)
	}

	run := func(msg, playbookID string, servers []string) {
		f.Step(t, msg)
		if _, _, err := f.RunPlaybook(cluster, playbookID, servers, nil); err != nil {
			t.Fatal(err)
		}
	}
	run("Add OSD host "+osdServer, playbooks.AddOsd, []string{osdServer})
	run("Add monitor host "+monitorServer, playbooks.AddMonitor, []string{monitorServer})

	f.Step(t, "Check cluster configuration")
	cluster, err = f.TF.Steps.Clusters.GetCluster(cluster, true)
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("cluster configuration:\n%s", f.DumpYaml(cluster.Data.Configuration))
	if !containsAll(f.ClusterRoleServers(cluster, "osds"), osdServer) || !containsAll(f.ClusterRoleServers(cluster, "mons"), monitorServer) {
		t.Fatalf("cluster '%s' configuration misses new hosts", cluster.ID)
	}

	run("Install telegraf on all servers", playbooks.TelegrafIntegration, serverIDs)
	run("Remove telegraf from all servers", playbooks.TelegrafRemoval, serverIDs)
	run("Remove monitor host "+monitorServer, playbooks.RemoveMonitor, []string{monitorServer})
	run("Remove OSD host "+osdServer, playbooks.RemoveOsd, []string{osdServer})
	run("Purge cluster", playbooks.PurgeCluster, nil)

	f.Step(t, "Check cluster '%s' is absent", cluster.ID)
	err = f.TF.Steps.Clusters.CheckClusterPresence(decapod.ID(cluster.ID), false, f.TF.Config.Timeouts.Event)
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("Test successfully passed")
}

func TestCancelExecution(t *testing.T) {
	t.Log("#### e2e test: cancel running execution")
	defer f.SetupTeardown(t)()

	f.Step(t, "Create cluster and deploy configuration")
	cluster, err := f.TF.Steps.Clusters.CreateCluster("", true)
	if err != nil {
		t.Fatal(err)
	}
	serverIDs, err := f.GetFreeServers(1)
	if err != nil {
		t.Fatal(err)
	}
	config, err := f.TF.Steps.PlaybookConfigs.CreatePlaybookConfig(cluster, f.TF.Config.Playbooks.DeployCluster, serverIDs, "", nil, true)
	if err != nil {
		t.Fatal(err)
	}
	f.Step(t, "Start execution")
	execution, err := f.TF.Steps.Executions.CreateExecution(config, false)
	if err != nil {
		t.Fatal(err)
	}
	f.Step(t, "Cancel execution '%s'", execution.ID)
	canceled, err := f.TF.Steps.Executions.CancelExecution(execution, true)
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("execution status:\n%s", f.DumpYaml(canceled.Data))
	t.Logf("Test successfully passed")
}

func containsAll(list []string, items ...string) bool {
	for _, item := range items {
		found := false
		for _, v := range list {
			if v == item {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
