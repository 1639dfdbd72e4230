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
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Mirantis/whale/pkg/decapod"
	"github.com/Mirantis/whale/pkg/waiter"
)

var (
	// TransitExecutionStates are states of running execution.
	TransitExecutionStates = []string{decapod.ExecutionCreated, decapod.ExecutionStarted}
	// CancelTransitExecutionStates are states execution passes while canceled.
	CancelTransitExecutionStates = []string{decapod.ExecutionCreated, decapod.ExecutionStarted, decapod.ExecutionCanceling}
)

type ExecutionSteps struct {
	*BaseSteps
}

// CreateExecution runs playbook configuration. Model reference keeps its
// version, bare id runs the current version. With check the execution must
// complete within execution timeout.
func (s *ExecutionSteps) CreateExecution(configRef decapod.ResourceRef, check bool) (*decapod.Execution, error) {
	config, ok := configRef.(*decapod.PlaybookConfig)
	if !ok || config == nil {
		configID, err := decapod.ResolveID(configRef)
		if err != nil {
			return nil, err
		}
		if config, err = s.Client.GetPlaybookConfig(s.Context, configID); err != nil {
			return nil, errors.Wrapf(err, "failed to get playbook configuration '%s'", configID)
		}
	}
	s.Log.Info().Msgf("executing playbook configuration '%s' (version %d)", config.ID, config.Version)
	execution, err := s.Client.CreateExecution(s.Context, config.ID, config.Version)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create execution of playbook configuration '%s'", config.ID)
	}
	if check {
		if err := CheckResourcePresence(s.Context, execution, s.Client.GetExecution, true, s.Timeouts.Action, s.waitOptions()...); err != nil {
			return execution, err
		}
		finished, err := s.CheckExecutionStatus(execution, []string{decapod.ExecutionCompleted}, TransitExecutionStates, s.Timeouts.Execution)
		if err != nil {
			return execution, err
		}
		execution = finished
	}
	return execution, nil
}

// CancelExecution stops running execution, with check it waits for canceled state.
func (s *ExecutionSteps) CancelExecution(ref decapod.ResourceRef, check bool) (*decapod.Execution, error) {
	id, err := decapod.ResolveID(ref)
	if err != nil {
		return nil, err
	}
	s.Log.Info().Msgf("canceling execution '%s'", id)
	execution, err := s.Client.CancelExecution(s.Context, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to cancel execution '%s'", id)
	}
	if check {
		return s.CheckExecutionStatus(execution, []string{decapod.ExecutionCanceled}, CancelTransitExecutionStates, s.Timeouts.Action)
	}
	return execution, nil
}

func (s *ExecutionSteps) GetExecution(ref decapod.ResourceRef, check bool) (*decapod.Execution, error) {
	id, err := decapod.ResolveID(ref)
	if err != nil {
		return nil, err
	}
	execution, err := s.Client.GetExecution(s.Context, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get execution '%s'", id)
	}
	if check {
		if err := assertIDEqual("execution", id, execution.ID); err != nil {
			return execution, err
		}
	}
	return execution, nil
}

func (s *ExecutionSteps) GetExecutions(check bool) ([]decapod.Execution, error) {
	executions, err := s.Client.GetExecutions(s.Context)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list executions")
	}
	if check {
		if err := assertNotEmpty("executions", executions); err != nil {
			return executions, err
		}
	}
	return executions, nil
}

// GetLastExecutionByConfigID returns the most recently updated execution of
// playbook configuration.
func (s *ExecutionSteps) GetLastExecutionByConfigID(configID string, check bool) (*decapod.Execution, error) {
	executions, err := s.GetExecutions(false)
	if err != nil {
		return nil, err
	}
	var last *decapod.Execution
	for idx := range executions {
		if executions[idx].Data.PlaybookConfiguration.ID != configID {
			continue
		}
		if last == nil || executions[idx].TimeUpdated >= last.TimeUpdated {
			last = &executions[idx]
		}
	}
	if check {
		if err := assertNotEmpty(fmt.Sprintf("execution of playbook configuration '%s'", configID), last); err != nil {
			return nil, err
		}
	}
	return last, nil
}

// CheckExecutionStatus waits while execution state is one of transit states
// and then requires it to be one of expected. Reaching other state fails at
// once with *waiter.AssertionError.
func (s *ExecutionSteps) CheckExecutionStatus(ref decapod.ResourceRef, expected, transit []string, timeout time.Duration) (*decapod.Execution, error) {
	id, err := decapod.ResolveID(ref)
	if err != nil {
		return nil, err
	}
	expected, transit = lowerStates(expected), lowerStates(transit)
	finished := waiter.Matcher[string]{
		Description: fmt.Sprintf("execution '%s' state not in %v", id, transit),
		Match:       waiter.NotIn(transit...).Match,
	}
	var last *decapod.Execution
	_, err = waiter.Wait(s.Context, func(ctx context.Context) (waiter.Outcome, error) {
		execution, getErr := s.Client.GetExecution(ctx, id)
		if getErr != nil {
			return waiter.Outcome{Condition: finished.Description}, getErr
		}
		last = execution
		state := strings.ToLower(execution.Data.State)
		outcome := waiter.ExpectThat(state, finished)
		if outcome.Satisfied {
			return outcome, waiter.AssertThat(fmt.Sprintf("execution '%s' state", id), state, waiter.In(expected...))
		}
		return outcome, nil
	}, timeout, s.waitOptions()...)
	if err != nil {
		return last, errors.Wrapf(err, "execution '%s' status check failed", id)
	}
	s.Log.Info().Msgf("execution '%s' finished with state '%s'", id, last.Data.State)
	return last, nil
}

// lowerStates normalizes states for case-insensitive comparison.
func lowerStates(states []string) []string {
	lowered := make([]string, 0, len(states))
	for _, state := range states {
		lowered = append(lowered, strings.ToLower(state))
	}
	return lowered
}
