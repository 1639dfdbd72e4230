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

type PlaybookSteps struct {
	*BaseSteps
}

func (s *PlaybookSteps) GetPlaybooks(check bool) ([]decapod.Playbook, error) {
	playbooks, err := s.Client.GetPlaybooks(s.Context)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list playbooks")
	}
	if check {
		if err := assertNotEmpty("playbooks", playbooks); err != nil {
			return playbooks, err
		}
	}
	return playbooks, nil
}

func (s *PlaybookSteps) GetPlaybook(id string, check bool) (*decapod.Playbook, error) {
	playbooks, err := s.GetPlaybooks(false)
	if err != nil {
		return nil, err
	}
	var found *decapod.Playbook
	for idx := range playbooks {
		if playbooks[idx].ID == id {
			found = &playbooks[idx]
			break
		}
	}
	if check {
		if err := assertNotEmpty("playbook '"+id+"'", found); err != nil {
			return nil, err
		}
	}
	return found, nil
}

type PlaybookConfigSteps struct {
	*BaseSteps
}

// CreatePlaybookConfig creates configuration of playbook for cluster. Name is
// generated when empty, hints map hint id to its value.
func (s *PlaybookConfigSteps) CreatePlaybookConfig(clusterRef decapod.ResourceRef, playbookID string, serverIDs []string, name string, hints map[string]interface{}, check bool) (*decapod.PlaybookConfig, error) {
	clusterID, err := decapod.ResolveID(clusterRef)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = s.generateName("config")
	}
	hintValues := make([]decapod.HintValue, 0, len(hints))
	for _, hintID := range whalecommon.SortedKeys(hints) {
		hintValues = append(hintValues, decapod.HintValue{ID: hintID, Value: hints[hintID]})
	}
	s.Log.Info().Msgf("creating playbook configuration '%s' of '%s' for cluster '%s' with servers %v", name, playbookID, clusterID, serverIDs)
	config, err := s.Client.CreatePlaybookConfig(s.Context, decapod.CreatePlaybookConfigRequest{
		Name:       name,
		ClusterID:  clusterID,
		PlaybookID: playbookID,
		ServerIDs:  serverIDs,
		Hints:      hintValues,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create playbook configuration '%s'", name)
	}
	if check {
		if err := s.CheckPlaybookConfigPresence(config, true, s.Timeouts.Action); err != nil {
			return config, err
		}
		if err := waiter.AssertThat("playbook configuration name", config.Data.Name, waiter.EqualTo(name)); err != nil {
			return config, err
		}
		if err := waiter.AssertThat("playbook configuration cluster", config.Data.ClusterID, waiter.EqualTo(clusterID)); err != nil {
			return config, err
		}
		if err := waiter.AssertThat("playbook configuration playbook", config.Data.PlaybookID, waiter.EqualTo(playbookID)); err != nil {
			return config, err
		}
	}
	return config, nil
}

// UpdatePlaybookConfig mutates given model as is or fetches it by id first.
func (s *PlaybookConfigSteps) UpdatePlaybookConfig(ref decapod.ResourceRef, mutate func(*decapod.PlaybookConfigData), check bool) (*decapod.PlaybookConfig, error) {
	config, ok := ref.(*decapod.PlaybookConfig)
	if !ok || config == nil {
		var err error
		if config, err = s.GetPlaybookConfig(ref, false); err != nil {
			return nil, err
		}
	}
	expected := config.Data
	mutate(&expected)
	whalecommon.ShowObjectDiff(s.Log, config.Data, expected)
	toUpdate := *config
	toUpdate.Data = expected
	updated, err := s.Client.UpdatePlaybookConfig(s.Context, &toUpdate)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update playbook configuration '%s'", config.ID)
	}
	if check {
		if err := s.assertDataEqual("playbook configuration data", expected, updated.Data); err != nil {
			return updated, err
		}
	}
	return updated, nil
}

func (s *PlaybookConfigSteps) DeletePlaybookConfig(ref decapod.ResourceRef, check bool) error {
	id, err := decapod.ResolveID(ref)
	if err != nil {
		return err
	}
	s.Log.Info().Msgf("deleting playbook configuration '%s'", id)
	if _, err := s.Client.DeletePlaybookConfig(s.Context, id); err != nil {
		return errors.Wrapf(err, "failed to delete playbook configuration '%s'", id)
	}
	if check {
		return s.CheckPlaybookConfigPresence(decapod.ID(id), false, s.Timeouts.Action)
	}
	return nil
}

func (s *PlaybookConfigSteps) GetPlaybookConfig(ref decapod.ResourceRef, check bool) (*decapod.PlaybookConfig, error) {
	id, err := decapod.ResolveID(ref)
	if err != nil {
		return nil, err
	}
	config, err := s.Client.GetPlaybookConfig(s.Context, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get playbook configuration '%s'", id)
	}
	if check {
		if err := assertIDEqual("playbook configuration", id, config.ID); err != nil {
			return config, err
		}
	}
	return config, nil
}

func (s *PlaybookConfigSteps) GetPlaybookConfigs(check bool) ([]decapod.PlaybookConfig, error) {
	configs, err := s.Client.GetPlaybookConfigs(s.Context)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list playbook configurations")
	}
	if check {
		if err := assertNotEmpty("playbook configurations", configs); err != nil {
			return configs, err
		}
	}
	return configs, nil
}

func (s *PlaybookConfigSteps) CheckPlaybookConfigPresence(ref decapod.ResourceRef, mustPresent bool, timeout time.Duration) error {
	return CheckResourcePresence(s.Context, ref, s.Client.GetPlaybookConfig, mustPresent, timeout, s.waitOptions()...)
}
