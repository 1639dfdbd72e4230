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

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mirantis/whale/pkg/decapod"
	"github.com/Mirantis/whale/pkg/steps"
)

type waitExecutionOptions struct {
	expect  []string
	timeout time.Duration
}

func newWaitExecutionCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &waitExecutionOptions{}

	cmd := &cobra.Command{
		Use:   "wait-execution <id>",
		Short: "Wait until execution leaves transit states and check final state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootFlags)
			if err != nil {
				return err
			}
			defer s.close()
			return runWaitExecution(cmd, s, args[0], opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.expect, "expect", []string{decapod.ExecutionCompleted}, "expected final states")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "wait timeout, execution timeout from config by default, 0 checks once")

	return cmd
}

func runWaitExecution(cmd *cobra.Command, s *session, id string, opts *waitExecutionOptions) error {
	timeout := s.cfg.Timeouts.Execution
	if cmd.Flags().Changed("timeout") {
		timeout = opts.timeout
	}
	transit := steps.TransitExecutionStates
	for _, state := range opts.expect {
		if strings.EqualFold(state, decapod.ExecutionCanceled) {
			transit = steps.CancelTransitExecutionStates
			break
		}
	}
	execution, err := s.steps.Executions.CheckExecutionStatus(decapod.ID(id), opts.expect, transit, timeout)
	if execution != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "execution '%s' state: %s\n", execution.ID, execution.Data.State)
	}
	return err
}
