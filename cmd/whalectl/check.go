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

// kindAliases are short command line names of decapod kinds.
var kindAliases = map[string]string{
	"playbook-config": decapod.KindPlaybookConfig,
	"config":          decapod.KindPlaybookConfig,
}

type checkOptions struct {
	absent  bool
	timeout time.Duration
}

func newCheckCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check <kind> <id>",
		Short: "Wait until resource is present or absent",
		Long:  fmt.Sprintf("Wait until resource is present or absent. Supported kinds: %s.", strings.Join(steps.Kinds(), ", ")),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootFlags)
			if err != nil {
				return err
			}
			defer s.close()
			return runCheck(cmd, s, args[0], args[1], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.absent, "absent", false, "wait for resource absence")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "wait timeout, action timeout from config by default, 0 checks once")

	return cmd
}

func runCheck(cmd *cobra.Command, s *session, kind, id string, opts *checkOptions) error {
	if alias, ok := kindAliases[kind]; ok {
		kind = alias
	}
	timeout := s.cfg.Timeouts.Action
	if cmd.Flags().Changed("timeout") {
		timeout = opts.timeout
	}
	if err := s.steps.CheckPresence(kind, decapod.ID(id), !opts.absent, timeout); err != nil {
		return err
	}
	state := "present"
	if opts.absent {
		state = "absent"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s '%s' is %s\n", kind, id, state)
	return nil
}
