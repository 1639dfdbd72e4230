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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	whaleconfig "github.com/Mirantis/whale/pkg/config"
	"github.com/Mirantis/whale/pkg/decapod"
	"github.com/Mirantis/whale/pkg/waiter"
	faketestclients "github.com/Mirantis/whale/test/unit/clients"
)

func TestExecutionSteps(t *testing.T) {
	s, fake := newTestSteps(t)
	playbooks := whaleconfig.DefaultPlaybooks
	cluster, err := s.Clusters.CreateCluster("", true)
	require.NoError(t, err)
	deploy, err := s.PlaybookConfigs.CreatePlaybookConfig(cluster, playbooks.DeployCluster, fake.ServerIDs[:3], "", nil, true)
	require.NoError(t, err)

	t.Run("deploy completes", func(t *testing.T) {
		execution, err := s.Executions.CreateExecution(deploy, true)
		require.NoError(t, err)
		assert.Equal(t, decapod.ExecutionCompleted, execution.Data.State)
		assert.Equal(t, decapod.PlaybookConfigRef{ID: deploy.ID, Version: deploy.Version}, execution.Data.PlaybookConfiguration)

		deployed, err := s.Clusters.GetCluster(cluster, true)
		require.NoError(t, err)
		assert.Len(t, deployed.Data.Configuration["mons"], 1)
		assert.Len(t, deployed.Data.Configuration["osds"], 3)

		last, err := s.Executions.GetLastExecutionByConfigID(deploy.ID, true)
		require.NoError(t, err)
		assert.Equal(t, execution.ID, last.ID)

		checked, err := s.Executions.CheckExecutionStatus(execution, []string{"COMPLETED"}, []string{"Created", "STARTED"}, time.Second)
		require.NoError(t, err)
		assert.Equal(t, decapod.ExecutionCompleted, checked.Data.State)
	})

	t.Run("failed execution is reported at once", func(t *testing.T) {
		fake.SetExecutionScript(decapod.ExecutionCreated, decapod.ExecutionStarted, decapod.ExecutionFailed)
		fake.ClearActions()
		execution, err := s.Executions.CreateExecution(decapod.ID(deploy.ID), true)
		require.Error(t, err)
		assert.True(t, waiter.IsAssertionError(err))
		assert.False(t, waiter.IsTimeoutExpired(err))
		assert.Contains(t, err.Error(), "state: expected one of [completed], but got failed")
		assert.Equal(t, decapod.ExecutionCreated, execution.Data.State)
		// one presence read and reads of started and failed states
		assert.Equal(t, map[string]int{"get-execution": 3}, faketestclients.GetActionsCount(fake, []string{"get-execution"}))

		last, err := s.Executions.GetLastExecutionByConfigID(deploy.ID, true)
		require.NoError(t, err)
		assert.Equal(t, execution.ID, last.ID)
		assert.Equal(t, decapod.ExecutionFailed, last.Data.State)
	})

	t.Run("stuck execution times out and is canceled", func(t *testing.T) {
		fake.SetExecutionScript(decapod.ExecutionCreated, decapod.ExecutionStarted)
		execution, err := s.Executions.CreateExecution(deploy, false)
		require.NoError(t, err)

		last, err := s.Executions.CheckExecutionStatus(execution, []string{decapod.ExecutionCompleted}, TransitExecutionStates, 50*time.Millisecond)
		require.Error(t, err)
		assert.True(t, waiter.IsTimeoutExpired(err))
		assert.Equal(t, decapod.ExecutionStarted, last.Data.State)

		canceled, err := s.Executions.CancelExecution(execution, true)
		require.NoError(t, err)
		assert.Equal(t, decapod.ExecutionCanceled, canceled.Data.State)

		_, err = s.Executions.CancelExecution(execution, true)
		require.Error(t, err)
		assert.True(t, decapod.IsBadRequest(err))
	})

	t.Run("unknown config version is rejected", func(t *testing.T) {
		future := *deploy
		future.Version += 5
		_, err := s.Executions.CreateExecution(&future, true)
		require.Error(t, err)
		assert.True(t, decapod.IsBadRequest(err))
	})

	t.Run("lookups", func(t *testing.T) {
		executions, err := s.Executions.GetExecutions(true)
		require.NoError(t, err)
		assert.Len(t, executions, 3)

		execution, err := s.Executions.GetExecution(&executions[0], true)
		require.NoError(t, err)
		assert.Equal(t, executions[0].ID, execution.ID)

		missing, err := s.Executions.GetLastExecutionByConfigID("missing", false)
		assert.NoError(t, err)
		assert.Nil(t, missing)
		_, err = s.Executions.GetLastExecutionByConfigID("missing", true)
		require.Error(t, err)
		assert.True(t, waiter.IsAssertionError(err))
	})
}
