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
	"encoding/json"
)

// Model is the common envelope of every Decapod resource.
type Model[T any] struct {
	ID          string `json:"id"`
	Model       string `json:"model"`
	Version     int    `json:"version"`
	TimeUpdated int64  `json:"time_updated"`
	// zero means the resource is alive
	TimeDeleted int64  `json:"time_deleted"`
	InitiatorID string `json:"initiator_id,omitempty"`
	Data        T      `json:"data"`
}

func (m *Model[T]) GetID() string {
	return m.ID
}

func (m *Model[T]) IsDeleted() bool {
	return m.TimeDeleted != 0
}

type List[T any] struct {
	Items   []T `json:"items"`
	Page    int `json:"page,omitempty"`
	PerPage int `json:"per_page,omitempty"`
	Total   int `json:"total"`
}

type ClusterServer struct {
	ServerID string `json:"server_id"`
	Version  int    `json:"version"`
}

type ClusterData struct {
	Name string `json:"name"`
	// role name (mons, osds, ...) to servers
	Configuration map[string][]ClusterServer `json:"configuration,omitempty"`
}

type UserData struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	RoleID   string `json:"role_id"`
}

// MarshalJSON sends null role instead of empty string.
func (d UserData) MarshalJSON() ([]byte, error) {
	type plain UserData
	out := struct {
		plain
		RoleID *string `json:"role_id"`
	}{plain: plain(d)}
	if d.RoleID != "" {
		out.RoleID = &d.RoleID
	}
	return json.Marshal(out)
}

type PermissionGroup struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

type RoleData struct {
	Name        string            `json:"name"`
	Permissions []PermissionGroup `json:"permissions"`
}

type ServerData struct {
	Name      string          `json:"name"`
	FQDN      string          `json:"fqdn"`
	IP        string          `json:"ip"`
	Username  string          `json:"username"`
	State     string          `json:"state,omitempty"`
	ClusterID string          `json:"cluster_id,omitempty"`
	Facts     json.RawMessage `json:"facts,omitempty"`
}

type PlaybookConfigData struct {
	Name          string          `json:"name"`
	ClusterID     string          `json:"cluster_id"`
	PlaybookID    string          `json:"playbook_id"`
	Configuration json.RawMessage `json:"configuration,omitempty"`
	Inventory     json.RawMessage `json:"inventory,omitempty"`
}

type PlaybookConfigRef struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
}

type ExecutionData struct {
	PlaybookConfiguration PlaybookConfigRef `json:"playbook_configuration"`
	State                 string            `json:"state"`
}

type (
	Cluster        = Model[ClusterData]
	User           = Model[UserData]
	Role           = Model[RoleData]
	Server         = Model[ServerData]
	PlaybookConfig = Model[PlaybookConfigData]
	Execution      = Model[ExecutionData]
)

type PlaybookHint struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Playbook is a plugin description, not a versioned model.
type Playbook struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Description        string         `json:"description"`
	RequiredServerList bool           `json:"required_server_list"`
	Hints              []PlaybookHint `json:"hints,omitempty"`
}

// Execution states reported by Decapod.
const (
	ExecutionCreated   = "created"
	ExecutionStarted   = "started"
	ExecutionCompleted = "completed"
	ExecutionFailed    = "failed"
	ExecutionCanceling = "canceling"
	ExecutionCanceled  = "canceled"
)

type HintValue struct {
	ID    string      `json:"id"`
	Value interface{} `json:"value"`
}

type CreateServerRequest struct {
	ServerID string `json:"id"`
	Host     string `json:"host"`
	Username string `json:"username"`
}

type CreatePlaybookConfigRequest struct {
	Name       string      `json:"name"`
	ClusterID  string      `json:"cluster_id"`
	PlaybookID string      `json:"playbook_id"`
	ServerIDs  []string    `json:"server_ids"`
	Hints      []HintValue `json:"hints"`
}

type createClusterRequest struct {
	Name string `json:"name"`
}

type createRoleRequest struct {
	Name        string            `json:"name"`
	Permissions []PermissionGroup `json:"permissions"`
}

type createExecutionRequest struct {
	PlaybookConfiguration PlaybookConfigRef `json:"playbook_configuration"`
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	ID string `json:"id"`
}
