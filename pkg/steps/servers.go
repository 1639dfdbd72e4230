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

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"

	whalecommon "github.com/Mirantis/whale/pkg/common"
	"github.com/Mirantis/whale/pkg/decapod"
	"github.com/Mirantis/whale/pkg/waiter"
)

type ServerSteps struct {
	*BaseSteps
}

// CreateServer registers server in Decapod. Registration is asynchronous, with
// check the server is awaited for server presence timeout and then verified.
func (s *ServerSteps) CreateServer(serverID, host, username string, check bool) (*decapod.Server, error) {
	s.Log.Info().Msgf("creating server '%s' for host '%s'", serverID, host)
	req := decapod.CreateServerRequest{ServerID: serverID, Host: host, Username: username}
	if err := s.Client.CreateServer(s.Context, req); err != nil {
		return nil, errors.Wrapf(err, "failed to create server '%s'", serverID)
	}
	if !check {
		return nil, nil
	}
	if err := s.CheckServerPresence(decapod.ID(serverID), true, s.Timeouts.ServerPresence); err != nil {
		return nil, err
	}
	server, err := s.GetServer(decapod.ID(serverID), true)
	if err != nil {
		return server, err
	}
	if err := waiter.AssertThat("server name", server.Data.Name, waiter.EqualTo(host)); err != nil {
		return server, err
	}
	if err := waiter.AssertThat("server username", server.Data.Username, waiter.EqualTo(username)); err != nil {
		return server, err
	}
	return server, nil
}

// UpdateServer applies mutate to fetched server data. Facts and state are
// owned by Decapod and are not verified.
func (s *ServerSteps) UpdateServer(ref decapod.ResourceRef, mutate func(*decapod.ServerData), check bool) (*decapod.Server, error) {
	server, err := s.GetServer(ref, false)
	if err != nil {
		return nil, err
	}
	expected := server.Data
	mutate(&expected)
	whalecommon.ShowObjectDiff(s.Log, server.Data, expected)
	server.Data = expected
	if _, err := s.Client.UpdateServer(s.Context, server); err != nil {
		return nil, errors.Wrapf(err, "failed to update server '%s'", server.ID)
	}
	updated, err := s.GetServer(decapod.ID(server.ID), check)
	if err != nil {
		return updated, err
	}
	if check {
		if err := s.assertDataEqual("server data", expected, updated.Data, cmpopts.IgnoreFields(decapod.ServerData{}, "Facts", "State")); err != nil {
			return updated, err
		}
	}
	return updated, nil
}

func (s *ServerSteps) DeleteServer(ref decapod.ResourceRef, check bool) error {
	id, err := decapod.ResolveID(ref)
	if err != nil {
		return err
	}
	s.Log.Info().Msgf("deleting server '%s'", id)
	if _, err := s.Client.DeleteServer(s.Context, id); err != nil {
		return errors.Wrapf(err, "failed to delete server '%s'", id)
	}
	if check {
		return s.CheckServerPresence(decapod.ID(id), false, s.Timeouts.ServerPresence)
	}
	return nil
}

func (s *ServerSteps) GetServer(ref decapod.ResourceRef, check bool) (*decapod.Server, error) {
	id, err := decapod.ResolveID(ref)
	if err != nil {
		return nil, err
	}
	server, err := s.Client.GetServer(s.Context, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get server '%s'", id)
	}
	if check {
		if err := assertIDEqual("server", id, server.ID); err != nil {
			return server, err
		}
	}
	return server, nil
}

func (s *ServerSteps) GetServers(check bool) ([]decapod.Server, error) {
	servers, err := s.Client.GetServers(s.Context)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list servers")
	}
	if check {
		if err := assertNotEmpty("servers", servers); err != nil {
			return servers, err
		}
	}
	return servers, nil
}

func (s *ServerSteps) GetServerIDs(check bool) ([]string, error) {
	servers, err := s.GetServers(check)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(servers))
	for _, server := range servers {
		ids = append(ids, server.ID)
	}
	return ids, nil
}

func (s *ServerSteps) CheckServerPresence(ref decapod.ResourceRef, mustPresent bool, timeout time.Duration) error {
	return CheckResourcePresence(s.Context, ref, s.Client.GetServer, mustPresent, timeout, s.waitOptions()...)
}
