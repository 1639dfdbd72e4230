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
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	whaleconfig "github.com/Mirantis/whale/pkg/config"
	"github.com/Mirantis/whale/pkg/decapod"
)

// Steps groups steps of every resource kind sharing one client.
type Steps struct {
	Base            *BaseSteps
	Clusters        *ClusterSteps
	Users           *UserSteps
	Roles           *RoleSteps
	Servers         *ServerSteps
	Playbooks       *PlaybookSteps
	PlaybookConfigs *PlaybookConfigSteps
	Executions      *ExecutionSteps
}

func New(ctx context.Context, client *decapod.Client, cfg *whaleconfig.Config, log zerolog.Logger) *Steps {
	base := NewBaseSteps(ctx, client, cfg, log)
	return &Steps{
		Base:            base,
		Clusters:        &ClusterSteps{base},
		Users:           &UserSteps{base},
		Roles:           &RoleSteps{base},
		Servers:         &ServerSteps{base},
		Playbooks:       &PlaybookSteps{base},
		PlaybookConfigs: &PlaybookConfigSteps{base},
		Executions:      &ExecutionSteps{base},
	}
}

// CheckPresence dispatches presence check by resource kind name.
func (s *Steps) CheckPresence(kind string, ref decapod.ResourceRef, mustPresent bool, timeout time.Duration) error {
	switch kind {
	case decapod.KindCluster:
		return s.Clusters.CheckClusterPresence(ref, mustPresent, timeout)
	case decapod.KindUser:
		return s.Users.CheckUserPresence(ref, mustPresent, timeout)
	case decapod.KindRole:
		return s.Roles.CheckRolePresence(ref, mustPresent, timeout)
	case decapod.KindServer:
		return s.Servers.CheckServerPresence(ref, mustPresent, timeout)
	case decapod.KindPlaybookConfig:
		return s.PlaybookConfigs.CheckPlaybookConfigPresence(ref, mustPresent, timeout)
	case decapod.KindExecution:
		return CheckResourcePresence(s.Base.Context, ref, s.Base.Client.GetExecution, mustPresent, timeout, s.Base.waitOptions()...)
	}
	return errors.Errorf("unsupported resource kind '%s'", kind)
}

// Kinds lists resource kinds accepted by CheckPresence.
func Kinds() []string {
	return []string{
		decapod.KindCluster,
		decapod.KindUser,
		decapod.KindRole,
		decapod.KindServer,
		decapod.KindPlaybookConfig,
		decapod.KindExecution,
	}
}
