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

package input

import (
	"fmt"

	whaleconfig "github.com/Mirantis/whale/pkg/config"
	"github.com/Mirantis/whale/pkg/decapod"
)

const (
	AdminLogin    = "login"
	AdminPassword = "password"
	AdminRoleName = "wheel"
)

var Permissions = []decapod.PermissionGroup{
	{
		Name: "api",
		Permissions: []string{
			"create_cluster", "create_execution", "create_playbook_configuration",
			"create_role", "create_server", "create_user",
			"delete_cluster", "delete_execution", "delete_playbook_configuration",
			"delete_role", "delete_server", "delete_user",
			"edit_cluster", "edit_playbook_configuration", "edit_role", "edit_server", "edit_user",
			"view_cluster", "view_cluster_versions", "view_execution", "view_execution_steps",
			"view_execution_version", "view_playbook_configuration", "view_role", "view_server",
			"view_user",
		},
	},
	{
		Name: "playbook",
		Permissions: []string{
			whaleconfig.DefaultPlaybooks.AddMonitor,
			whaleconfig.DefaultPlaybooks.AddOsd,
			whaleconfig.DefaultPlaybooks.DeployCluster,
			whaleconfig.DefaultPlaybooks.PurgeCluster,
			whaleconfig.DefaultPlaybooks.RemoveMonitor,
			whaleconfig.DefaultPlaybooks.RemoveOsd,
			whaleconfig.DefaultPlaybooks.TelegrafIntegration,
			whaleconfig.DefaultPlaybooks.TelegrafRemoval,
		},
	},
}

var Playbooks = []decapod.Playbook{
	{
		ID:                 whaleconfig.DefaultPlaybooks.DeployCluster,
		Name:               "Deploy Ceph cluster",
		RequiredServerList: true,
		Hints: []decapod.PlaybookHint{
			{ID: "dmcrypt", Type: "boolean", Description: "Use dmcrypted OSDs"},
			{ID: "collocation", Type: "boolean", Description: "Collocate OSD data and journal on same devices"},
		},
	},
	{ID: whaleconfig.DefaultPlaybooks.AddOsd, Name: "Add OSD to Ceph cluster", RequiredServerList: true},
	{ID: whaleconfig.DefaultPlaybooks.AddMonitor, Name: "Add monitor to Ceph cluster", RequiredServerList: true},
	{ID: whaleconfig.DefaultPlaybooks.RemoveOsd, Name: "Remove OSD host from Ceph cluster", RequiredServerList: true},
	{ID: whaleconfig.DefaultPlaybooks.RemoveMonitor, Name: "Remove monitor host from Ceph cluster", RequiredServerList: true},
	{ID: whaleconfig.DefaultPlaybooks.PurgeCluster, Name: "Purge cluster"},
	{ID: whaleconfig.DefaultPlaybooks.TelegrafIntegration, Name: "Telegraf Integration Plugin for Decapod", RequiredServerList: true},
	{ID: whaleconfig.DefaultPlaybooks.TelegrafRemoval, Name: "Telegraf removal plugin for Decapod", RequiredServerList: true},
}

func GetServerData(idx int) decapod.ServerData {
	ip := fmt.Sprintf("10.10.0.%d", idx+10)
	return decapod.ServerData{
		Name:     fmt.Sprintf("ceph-node-%d", idx),
		FQDN:     fmt.Sprintf("ceph-node-%d.decapod.local", idx),
		IP:       ip,
		Username: "ansible",
		State:    "operational",
		Facts:    []byte(fmt.Sprintf(`{"ansible_default_ipv4":{"address":"%s"}}`, ip)),
	}
}

func GetAdminUserData(roleID string) decapod.UserData {
	return decapod.UserData{
		Login:    AdminLogin,
		Email:    "noreply@decapod.local",
		FullName: "Root User",
		RoleID:   roleID,
	}
}

func GetAdminRoleData() decapod.RoleData {
	return decapod.RoleData{
		Name:        AdminRoleName,
		Permissions: Permissions,
	}
}
