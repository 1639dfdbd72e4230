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
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	whaleconfig "github.com/Mirantis/whale/pkg/config"
	"github.com/Mirantis/whale/pkg/decapod"
	input "github.com/Mirantis/whale/test/unit/inputs"
)

const (
	seededServers = 5
	clockStart    = 1500000000
)

var supportedKinds = []string{
	decapod.KindCluster,
	decapod.KindUser,
	decapod.KindRole,
	decapod.KindServer,
	decapod.KindPlaybookConfig,
	decapod.KindExecution,
}

type model = decapod.Model[json.RawMessage]

// Action is a single request recorded by fake Decapod.
type Action struct {
	Verb string
	Kind string
	ID   string
}

// InjectedError is returned instead of handling request. Times limits how
// many requests fail, zero means every request.
type InjectedError struct {
	Status  int
	Type    string
	Message string
	Times   int
}

type executionProgress struct {
	script  []string
	reads   int
	applied bool
}

// FakeDecapod is in-memory Decapod v1 API served over httptest.
type FakeDecapod struct {
	URL         string
	Login       string
	Password    string
	ServerIDs   []string
	AdminRoleID string
	AdminUserID string

	server          *httptest.Server
	mu              sync.Mutex
	clock           int64
	tokens          map[string]bool
	models          map[string]map[string]*model
	order           map[string][]string
	configServers   map[string][]string
	executions      map[string]*executionProgress
	executionScript []string
	serverDelay     int
	pendingServers  map[string]int
	purgeDelay      int
	pendingPurges   map[string]int
	actions         []Action
	apiErrors       map[string]*InjectedError
}

func NewFakeDecapod(t testing.TB) *FakeDecapod {
	f := &FakeDecapod{
		Login:           input.AdminLogin,
		Password:        input.AdminPassword,
		clock:           clockStart,
		tokens:          map[string]bool{},
		models:          map[string]map[string]*model{},
		order:           map[string][]string{},
		configServers:   map[string][]string{},
		executions:      map[string]*executionProgress{},
		executionScript: []string{decapod.ExecutionCreated, decapod.ExecutionStarted, decapod.ExecutionCompleted},
		pendingServers:  map[string]int{},
		pendingPurges:   map[string]int{},
		apiErrors:       map[string]*InjectedError{},
	}
	for _, kind := range supportedKinds {
		f.models[kind] = map[string]*model{}
	}
	f.seed()
	f.server = httptest.NewServer(f.router())
	f.URL = f.server.URL
	t.Cleanup(f.server.Close)
	return f
}

func (f *FakeDecapod) seed() {
	role := f.insert(decapod.KindRole, "", input.GetAdminRoleData())
	f.AdminRoleID = role.ID
	user := f.insert(decapod.KindUser, "", input.GetAdminUserData(role.ID))
	f.AdminUserID = user.ID
	for idx := 0; idx < seededServers; idx++ {
		server := f.insert(decapod.KindServer, "", input.GetServerData(idx))
		f.ServerIDs = append(f.ServerIDs, server.ID)
	}
}

func (f *FakeDecapod) router() http.Handler {
	kinds := "cluster|user|role|server|playbook_configuration|execution"
	r := mux.NewRouter()
	r.HandleFunc("/v1/{kind:auth}/", f.handle("login", false, f.login)).Methods(http.MethodPost)
	r.HandleFunc("/v1/{kind:auth}/", f.handle("logout", true, f.logout)).Methods(http.MethodDelete)
	r.HandleFunc("/v1/{kind:playbook|permission}/", f.handle("list", true, f.listStatic)).Methods(http.MethodGet)
	r.HandleFunc(fmt.Sprintf("/v1/{kind:%s}/", kinds), f.handle("list", true, f.list)).Methods(http.MethodGet)
	r.HandleFunc(fmt.Sprintf("/v1/{kind:%s}/", kinds), f.handle("create", true, f.create)).Methods(http.MethodPost)
	r.HandleFunc(fmt.Sprintf("/v1/{kind:%s}/{id}/", kinds), f.handle("get", true, f.get)).Methods(http.MethodGet)
	r.HandleFunc(fmt.Sprintf("/v1/{kind:%s}/{id}/", kinds), f.handle("update", true, f.update)).Methods(http.MethodPut)
	r.HandleFunc(fmt.Sprintf("/v1/{kind:%s}/{id}/", kinds), f.handle("delete", true, f.delete)).Methods(http.MethodDelete)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NotFound", "Requested URL was not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "Method is not allowed")
	})
	return r
}

// NewClient returns Decapod client with fast retries pointed to fake API.
func (f *FakeDecapod) NewClient(t testing.TB) *decapod.Client {
	client, err := decapod.NewClientFromConfig(f.Config(), zerolog.Nop())
	require.NoError(t, err)
	return client
}

// Config returns valid configuration with short timeouts for unit tests.
func (f *FakeDecapod) Config() *whaleconfig.Config {
	cfg := whaleconfig.Default()
	cfg.DecapodURL = f.URL
	cfg.Login = f.Login
	cfg.Password = f.Password
	cfg.Timeouts = whaleconfig.Timeouts{
		Action:         2 * time.Second,
		Event:          2 * time.Second,
		Execution:      5 * time.Second,
		ServerPresence: 2 * time.Second,
		PollInterval:   10 * time.Millisecond,
	}
	cfg.HTTP = whaleconfig.HTTPSettings{
		RetryMax:       2,
		RetryWaitMin:   time.Millisecond,
		RetryWaitMax:   5 * time.Millisecond,
		RequestTimeout: 5 * time.Second,
	}
	return cfg
}

// SetExecutionScript sets states reported by GET for executions created
// afterwards, last state repeats forever.
func (f *FakeDecapod) SetExecutionScript(states ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executionScript = append([]string{}, states...)
}

// SetServerRegistrationDelay hides created servers for given number of reads.
func (f *FakeDecapod) SetServerRegistrationDelay(reads int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.serverDelay = reads
}

// SetPurgeDelay keeps purged clusters alive for given number of reads.
func (f *FakeDecapod) SetPurgeDelay(reads int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purgeDelay = reads
}

// SetAPIError registers failure for key '<verb>-<kind>' or '<verb>-<kind>-<id>'.
func (f *FakeDecapod) SetAPIError(key string, apiErr *InjectedError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apiErrors[key] = apiErr
}

func (f *FakeDecapod) ClearAPIErrors() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apiErrors = map[string]*InjectedError{}
}

// ExpireTokens invalidates all issued tokens.
func (f *FakeDecapod) ExpireTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = map[string]bool{}
}

func (f *FakeDecapod) Actions() []Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Action{}, f.actions...)
}

func (f *FakeDecapod) ClearActions() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = nil
}

// IsAlive reports whether model exists and is not deleted.
func (f *FakeDecapod) IsAlive(kind, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.models[kind][id]
	return ok && m.TimeDeleted == 0
}

// DeleteDirectly soft deletes model bypassing API, as another client would do.
func (f *FakeDecapod) DeleteDirectly(kind, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.models[kind][id]; ok {
		f.markDeleted(m)
	}
}
