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

package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	whaleconfig "github.com/Mirantis/whale/pkg/config"
	"github.com/Mirantis/whale/pkg/decapod"
	input "github.com/Mirantis/whale/test/unit/inputs"
)

type reaction func(w http.ResponseWriter, r *http.Request, kind, id string)

var clusterNameRe = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

type apiError struct {
	status  int
	errType string
	message string
}

func newAPIError(status int, errType, format string, args ...interface{}) *apiError {
	return &apiError{status: status, errType: errType, message: fmt.Sprintf(format, args...)}
}

func notFound(kind, id string) *apiError {
	return newAPIError(http.StatusNotFound, "NotFound", "%s '%s' was not found", kind, id)
}

func invalid(format string, args ...interface{}) *apiError {
	return newAPIError(http.StatusBadRequest, "ValidationError", format, args...)
}

func writeJSON(w http.ResponseWriter, status int, obj interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(obj)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, map[string]interface{}{
		"code":    status,
		"error":   errType,
		"message": message,
	})
}

func writeAPIError(w http.ResponseWriter, apiErr *apiError) {
	writeError(w, apiErr.status, apiErr.errType, apiErr.message)
}

func (f *FakeDecapod) handle(verb string, authorized bool, fn reaction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		kind, id := vars["kind"], vars["id"]
		f.mu.Lock()
		defer f.mu.Unlock()
		f.actions = append(f.actions, Action{Verb: verb, Kind: kind, ID: id})
		if authorized && !f.tokens[r.Header.Get("Authorization")] {
			writeError(w, http.StatusUnauthorized, "Unauthorized", "Authorization token is missing or expired")
			return
		}
		if injected := f.checkAPIError(verb, kind, id); injected != nil {
			writeError(w, injected.Status, injected.Type, injected.Message)
			return
		}
		fn(w, r, kind, id)
	}
}

func (f *FakeDecapod) checkAPIError(verb, kind, id string) *InjectedError {
	keys := []string{fmt.Sprintf("%s-%s", verb, kind)}
	if id != "" {
		keys = append(keys, fmt.Sprintf("%s-%s-%s", verb, kind, id))
	}
	for _, key := range keys {
		injected := f.apiErrors[key]
		if injected == nil {
			continue
		}
		if injected.Times > 0 {
			injected.Times--
			if injected.Times == 0 {
				delete(f.apiErrors, key)
			}
		}
		return injected
	}
	return nil
}

func (f *FakeDecapod) tick() int64 {
	f.clock++
	return f.clock
}

func (f *FakeDecapod) insert(kind, id string, data interface{}) *model {
	if id == "" {
		id = uuid.New().String()
	}
	raw, _ := json.Marshal(data)
	m := &model{
		ID:          id,
		Model:       kind,
		Version:     1,
		TimeUpdated: f.tick(),
		InitiatorID: f.AdminUserID,
		Data:        raw,
	}
	f.models[kind][id] = m
	f.order[kind] = append(f.order[kind], id)
	return m
}

func (f *FakeDecapod) setData(m *model, data interface{}) {
	raw, _ := json.Marshal(data)
	m.Data = raw
	m.Version++
	m.TimeUpdated = f.tick()
}

func (f *FakeDecapod) markDeleted(m *model) {
	m.Version++
	m.TimeUpdated = f.tick()
	m.TimeDeleted = m.TimeUpdated
}

func decode[T any](m *model) T {
	var data T
	_ = json.Unmarshal(m.Data, &data)
	return data
}

func (f *FakeDecapod) alive(kind, id string) (*model, *apiError) {
	m, ok := f.models[kind][id]
	if !ok || m.TimeDeleted != 0 || f.pendingServers[id] > 0 {
		return nil, notFound(kind, id)
	}
	return m, nil
}

func (f *FakeDecapod) login(w http.ResponseWriter, r *http.Request, _, _ string) {
	creds := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeAPIError(w, invalid("invalid auth request: %v", err))
		return
	}
	if creds.Username != f.Login || creds.Password != f.Password {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Authentication failed")
		return
	}
	token := uuid.New().String()
	f.tokens[token] = true
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":    token,
		"model": "token",
		"data":  map[string]interface{}{"expires_at": f.clock + 3600, "user": map[string]string{"id": f.AdminUserID}},
	})
}

func (f *FakeDecapod) logout(w http.ResponseWriter, r *http.Request, _, _ string) {
	delete(f.tokens, r.Header.Get("Authorization"))
	writeJSON(w, http.StatusOK, map[string]interface{}{})
}

func paginate(r *http.Request, total int) (page, perPage, from, to int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = total
	}
	from = (page - 1) * perPage
	if from > total {
		from = total
	}
	to = from + perPage
	if to > total {
		to = total
	}
	return page, perPage, from, to
}

func (f *FakeDecapod) listStatic(w http.ResponseWriter, _ *http.Request, kind, _ string) {
	if kind == "playbook" {
		writeJSON(w, http.StatusOK, decapod.List[decapod.Playbook]{Items: input.Playbooks, Total: len(input.Playbooks)})
		return
	}
	writeJSON(w, http.StatusOK, decapod.List[decapod.PermissionGroup]{Items: input.Permissions, Total: len(input.Permissions)})
}

func (f *FakeDecapod) list(w http.ResponseWriter, r *http.Request, kind, _ string) {
	items := []*model{}
	for _, id := range f.order[kind] {
		if m, err := f.alive(kind, id); err == nil {
			items = append(items, m)
		}
	}
	page, perPage, from, to := paginate(r, len(items))
	writeJSON(w, http.StatusOK, decapod.List[*model]{Items: items[from:to], Page: page, PerPage: perPage, Total: len(items)})
}

func (f *FakeDecapod) get(w http.ResponseWriter, _ *http.Request, kind, id string) {
	m, ok := f.models[kind][id]
	if !ok {
		writeAPIError(w, notFound(kind, id))
		return
	}
	if f.pendingServers[id] > 0 {
		f.pendingServers[id]--
		writeAPIError(w, notFound(kind, id))
		return
	}
	if kind == decapod.KindExecution {
		f.advanceExecution(m)
	}
	if f.pendingPurges[id] > 0 {
		f.pendingPurges[id]--
		if f.pendingPurges[id] == 0 {
			delete(f.pendingPurges, id)
			f.markDeleted(m)
		}
	}
	writeJSON(w, http.StatusOK, m)
}

func (f *FakeDecapod) create(w http.ResponseWriter, r *http.Request, kind, _ string) {
	var (
		created *model
		apiErr  *apiError
	)
	switch kind {
	case decapod.KindCluster:
		created, apiErr = f.createCluster(r)
	case decapod.KindUser:
		created, apiErr = f.createUser(r)
	case decapod.KindRole:
		created, apiErr = f.createRole(r)
	case decapod.KindServer:
		apiErr = f.createServer(r)
	case decapod.KindPlaybookConfig:
		created, apiErr = f.createPlaybookConfig(r)
	case decapod.KindExecution:
		created, apiErr = f.createExecution(r)
	}
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}
	if created == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{})
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (f *FakeDecapod) findAlive(kind string, match func(*model) bool) *model {
	for _, id := range f.order[kind] {
		if m, err := f.alive(kind, id); err == nil && match(m) {
			return m
		}
	}
	return nil
}

func (f *FakeDecapod) createCluster(r *http.Request) (*model, *apiError) {
	req := decapod.ClusterData{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, invalid("invalid cluster request: %v", err)
	}
	if !clusterNameRe.MatchString(req.Name) {
		return nil, invalid("cluster name '%s' must contain only letters and digits", req.Name)
	}
	duplicate := f.findAlive(decapod.KindCluster, func(m *model) bool {
		return decode[decapod.ClusterData](m).Name == req.Name
	})
	if duplicate != nil {
		return nil, newAPIError(http.StatusConflict, "UniqueConstraintViolationError", "cluster '%s' already exists", req.Name)
	}
	return f.insert(decapod.KindCluster, "", decapod.ClusterData{Name: req.Name}), nil
}

func (f *FakeDecapod) createUser(r *http.Request) (*model, *apiError) {
	req := decapod.UserData{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, invalid("invalid user request: %v", err)
	}
	if req.Login == "" || req.Email == "" {
		return nil, invalid("user login and email are required")
	}
	if apiErr := f.validateUser("", req); apiErr != nil {
		return nil, apiErr
	}
	return f.insert(decapod.KindUser, "", req), nil
}

func (f *FakeDecapod) validateUser(id string, data decapod.UserData) *apiError {
	if data.RoleID != "" {
		if _, apiErr := f.alive(decapod.KindRole, data.RoleID); apiErr != nil {
			return invalid("unknown role '%s'", data.RoleID)
		}
	}
	duplicate := f.findAlive(decapod.KindUser, func(m *model) bool {
		return m.ID != id && decode[decapod.UserData](m).Login == data.Login
	})
	if duplicate != nil {
		return newAPIError(http.StatusConflict, "UniqueConstraintViolationError", "user '%s' already exists", data.Login)
	}
	return nil
}

func (f *FakeDecapod) createRole(r *http.Request) (*model, *apiError) {
	req := decapod.RoleData{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, invalid("invalid role request: %v", err)
	}
	if req.Name == "" {
		return nil, invalid("role name is required")
	}
	if apiErr := validatePermissions(req.Permissions); apiErr != nil {
		return nil, apiErr
	}
	duplicate := f.findAlive(decapod.KindRole, func(m *model) bool {
		return decode[decapod.RoleData](m).Name == req.Name
	})
	if duplicate != nil {
		return nil, newAPIError(http.StatusConflict, "UniqueConstraintViolationError", "role '%s' already exists", req.Name)
	}
	return f.insert(decapod.KindRole, "", req), nil
}

func validatePermissions(groups []decapod.PermissionGroup) *apiError {
	known := map[string]map[string]bool{}
	for _, group := range input.Permissions {
		known[group.Name] = map[string]bool{}
		for _, perm := range group.Permissions {
			known[group.Name][perm] = true
		}
	}
	for _, group := range groups {
		if known[group.Name] == nil {
			return invalid("unknown permission group '%s'", group.Name)
		}
		for _, perm := range group.Permissions {
			if !known[group.Name][perm] {
				return invalid("unknown permission '%s' in group '%s'", perm, group.Name)
			}
		}
	}
	return nil
}

func (f *FakeDecapod) createServer(r *http.Request) *apiError {
	req := decapod.CreateServerRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return invalid("invalid server request: %v", err)
	}
	if req.ServerID == "" || req.Host == "" || req.Username == "" {
		return invalid("server id, host and username are required")
	}
	data := decapod.ServerData{
		Name:     req.Host,
		FQDN:     req.Host,
		IP:       req.Host,
		Username: req.Username,
		State:    "operational",
	}
	if existing, ok := f.models[decapod.KindServer][req.ServerID]; ok {
		if existing.TimeDeleted == 0 {
			return newAPIError(http.StatusConflict, "UniqueConstraintViolationError", "server '%s' already exists", req.ServerID)
		}
		existing.TimeDeleted = 0
		f.setData(existing, data)
	} else {
		f.insert(decapod.KindServer, req.ServerID, data)
	}
	if f.serverDelay > 0 {
		f.pendingServers[req.ServerID] = f.serverDelay
	}
	return nil
}

func (f *FakeDecapod) findPlaybook(id string) *decapod.Playbook {
	for idx := range input.Playbooks {
		if input.Playbooks[idx].ID == id {
			return &input.Playbooks[idx]
		}
	}
	return nil
}

func (f *FakeDecapod) createPlaybookConfig(r *http.Request) (*model, *apiError) {
	req := decapod.CreatePlaybookConfigRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, invalid("invalid playbook configuration request: %v", err)
	}
	if req.Name == "" {
		return nil, invalid("playbook configuration name is required")
	}
	cluster, apiErr := f.alive(decapod.KindCluster, req.ClusterID)
	if apiErr != nil {
		return nil, invalid("unknown cluster '%s'", req.ClusterID)
	}
	playbook := f.findPlaybook(req.PlaybookID)
	if playbook == nil {
		return nil, invalid("unknown playbook '%s'", req.PlaybookID)
	}
	if playbook.RequiredServerList && len(req.ServerIDs) == 0 {
		return nil, invalid("playbook '%s' requires server list", req.PlaybookID)
	}
	hosts := []string{}
	for _, serverID := range req.ServerIDs {
		server, apiErr := f.alive(decapod.KindServer, serverID)
		if apiErr != nil {
			return nil, invalid("unknown server '%s'", serverID)
		}
		hosts = append(hosts, decode[decapod.ServerData](server).IP)
	}
	configuration, _ := json.Marshal(map[string]interface{}{
		"global_vars": map[string]interface{}{"cluster": decode[decapod.ClusterData](cluster).Name},
		"hints":       req.Hints,
	})
	inventory, _ := json.Marshal(map[string]interface{}{"all": map[string]interface{}{"hosts": hosts}})
	created := f.insert(decapod.KindPlaybookConfig, "", decapod.PlaybookConfigData{
		Name:          req.Name,
		ClusterID:     req.ClusterID,
		PlaybookID:    req.PlaybookID,
		Configuration: configuration,
		Inventory:     inventory,
	})
	f.configServers[created.ID] = append([]string{}, req.ServerIDs...)
	return created, nil
}

func (f *FakeDecapod) createExecution(r *http.Request) (*model, *apiError) {
	req := decapod.ExecutionData{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, invalid("invalid execution request: %v", err)
	}
	config, apiErr := f.alive(decapod.KindPlaybookConfig, req.PlaybookConfiguration.ID)
	if apiErr != nil {
		return nil, invalid("unknown playbook configuration '%s'", req.PlaybookConfiguration.ID)
	}
	if req.PlaybookConfiguration.Version > config.Version {
		return nil, invalid("unknown playbook configuration version %d", req.PlaybookConfiguration.Version)
	}
	script := append([]string{}, f.executionScript...)
	created := f.insert(decapod.KindExecution, "", decapod.ExecutionData{
		PlaybookConfiguration: req.PlaybookConfiguration,
		State:                 script[0],
	})
	f.executions[created.ID] = &executionProgress{script: script}
	return created, nil
}

func (f *FakeDecapod) update(w http.ResponseWriter, r *http.Request, kind, id string) {
	existing, apiErr := f.alive(kind, id)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}
	req := model{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, invalid("invalid %s update request: %v", kind, err))
		return
	}
	if req.ID != id {
		writeAPIError(w, invalid("model id '%s' does not match '%s'", req.ID, id))
		return
	}
	if req.Version != existing.Version {
		writeError(w, http.StatusConflict, "CannotUpdateObsoleteModel", fmt.Sprintf("model version %d is obsolete, current is %d", req.Version, existing.Version))
		return
	}
	switch kind {
	case decapod.KindCluster:
		data := decapod.ClusterData{}
		_ = json.Unmarshal(req.Data, &data)
		if !clusterNameRe.MatchString(data.Name) {
			writeAPIError(w, invalid("cluster name '%s' must contain only letters and digits", data.Name))
			return
		}
		// configuration is managed by executions only
		data.Configuration = decode[decapod.ClusterData](existing).Configuration
		f.setData(existing, data)
	case decapod.KindUser:
		data := decapod.UserData{}
		_ = json.Unmarshal(req.Data, &data)
		if apiErr := f.validateUser(id, data); apiErr != nil {
			writeAPIError(w, apiErr)
			return
		}
		f.setData(existing, data)
	case decapod.KindRole:
		data := decapod.RoleData{}
		_ = json.Unmarshal(req.Data, &data)
		if apiErr := validatePermissions(data.Permissions); apiErr != nil {
			writeAPIError(w, apiErr)
			return
		}
		f.setData(existing, data)
	case decapod.KindExecution:
		writeError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "executions can not be updated")
		return
	default:
		f.setData(existing, req.Data)
	}
	writeJSON(w, http.StatusOK, existing)
}

func (f *FakeDecapod) delete(w http.ResponseWriter, _ *http.Request, kind, id string) {
	existing, apiErr := f.alive(kind, id)
	if apiErr != nil {
		writeAPIError(w, apiErr)
		return
	}
	switch kind {
	case decapod.KindCluster:
		if len(decode[decapod.ClusterData](existing).Configuration) > 0 {
			writeError(w, http.StatusBadRequest, "CannotDeleteClusterWithServers", "cluster still has deployed servers")
			return
		}
		f.markDeleted(existing)
	case decapod.KindExecution:
		if apiErr := f.cancelExecution(existing); apiErr != nil {
			writeAPIError(w, apiErr)
			return
		}
	default:
		f.markDeleted(existing)
	}
	writeJSON(w, http.StatusOK, existing)
}

func (f *FakeDecapod) cancelExecution(m *model) *apiError {
	data := decode[decapod.ExecutionData](m)
	if data.State != decapod.ExecutionCreated && data.State != decapod.ExecutionStarted {
		return newAPIError(http.StatusBadRequest, "CannotCancelExecution", "execution in state '%s' can not be canceled", data.State)
	}
	f.executions[m.ID] = &executionProgress{script: []string{decapod.ExecutionCanceling, decapod.ExecutionCanceled}, applied: true}
	data.State = decapod.ExecutionCanceling
	f.setData(m, data)
	return nil
}

func (f *FakeDecapod) advanceExecution(m *model) {
	progress := f.executions[m.ID]
	if progress == nil {
		return
	}
	idx := progress.reads
	if idx >= len(progress.script) {
		idx = len(progress.script) - 1
	}
	progress.reads++
	data := decode[decapod.ExecutionData](m)
	if data.State != progress.script[idx] {
		data.State = progress.script[idx]
		f.setData(m, data)
	}
	if data.State == decapod.ExecutionCompleted && !progress.applied {
		progress.applied = true
		f.applyExecution(data.PlaybookConfiguration.ID)
	}
}

// applyExecution changes cluster the way completed playbook does.
func (f *FakeDecapod) applyExecution(configID string) {
	config, ok := f.models[decapod.KindPlaybookConfig][configID]
	if !ok {
		return
	}
	configData := decode[decapod.PlaybookConfigData](config)
	cluster, ok := f.models[decapod.KindCluster][configData.ClusterID]
	if !ok || cluster.TimeDeleted != 0 {
		return
	}
	clusterData := decode[decapod.ClusterData](cluster)
	if clusterData.Configuration == nil {
		clusterData.Configuration = map[string][]decapod.ClusterServer{}
	}
	serverIDs := f.configServers[configID]
	playbooks := whaleconfig.DefaultPlaybooks
	switch configData.PlaybookID {
	case playbooks.DeployCluster:
		if len(serverIDs) > 0 {
			f.addToRole(cluster.ID, clusterData.Configuration, "mons", serverIDs[:1])
		}
		f.addToRole(cluster.ID, clusterData.Configuration, "osds", serverIDs)
	case playbooks.AddOsd:
		f.addToRole(cluster.ID, clusterData.Configuration, "osds", serverIDs)
	case playbooks.AddMonitor:
		f.addToRole(cluster.ID, clusterData.Configuration, "mons", serverIDs)
	case playbooks.RemoveOsd:
		f.removeFromRole(clusterData.Configuration, "osds", serverIDs)
	case playbooks.RemoveMonitor:
		f.removeFromRole(clusterData.Configuration, "mons", serverIDs)
	case playbooks.PurgeCluster:
		for role := range clusterData.Configuration {
			f.removeFromRole(clusterData.Configuration, role, nil)
		}
		clusterData.Configuration = nil
		f.setData(cluster, clusterData)
		if f.purgeDelay > 0 {
			f.pendingPurges[cluster.ID] = f.purgeDelay
			return
		}
		f.markDeleted(cluster)
		return
	default:
		return
	}
	if len(clusterData.Configuration) == 0 {
		clusterData.Configuration = nil
	}
	f.setData(cluster, clusterData)
}

func (f *FakeDecapod) addToRole(clusterID string, configuration map[string][]decapod.ClusterServer, role string, serverIDs []string) {
	for _, serverID := range serverIDs {
		server, ok := f.models[decapod.KindServer][serverID]
		if !ok {
			continue
		}
		serverData := decode[decapod.ServerData](server)
		serverData.ClusterID = clusterID
		f.setData(server, serverData)
		configuration[role] = append(configuration[role], decapod.ClusterServer{ServerID: serverID, Version: server.Version})
	}
}

// removeFromRole drops given servers from role, nil drops all of them.
func (f *FakeDecapod) removeFromRole(configuration map[string][]decapod.ClusterServer, role string, serverIDs []string) {
	drop := map[string]bool{}
	for _, serverID := range serverIDs {
		drop[serverID] = true
	}
	kept := []decapod.ClusterServer{}
	for _, server := range configuration[role] {
		if serverIDs != nil && !drop[server.ServerID] {
			kept = append(kept, server)
			continue
		}
		if !f.usedInOtherRole(configuration, role, server.ServerID) {
			if m, ok := f.models[decapod.KindServer][server.ServerID]; ok {
				serverData := decode[decapod.ServerData](m)
				serverData.ClusterID = ""
				f.setData(m, serverData)
			}
		}
	}
	if len(kept) == 0 {
		delete(configuration, role)
	} else {
		configuration[role] = kept
	}
}

func (f *FakeDecapod) usedInOtherRole(configuration map[string][]decapod.ClusterServer, role, serverID string) bool {
	for otherRole, servers := range configuration {
		if otherRole == role {
			continue
		}
		for _, server := range servers {
			if server.ServerID == serverID {
				return true
			}
		}
	}
	return false
}
