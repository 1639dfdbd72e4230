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

	"github.com/spf13/cobra"

	"github.com/Mirantis/whale/pkg/fixtures"
)

type cleanupOptions struct {
	prefix string
	dryRun bool
}

func newCleanupCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &cleanupOptions{}

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove clusters, playbook configurations, users and roles left by tests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, rootFlags)
			if err != nil {
				return err
			}
			defer s.close()
			return runCleanup(cmd, s, opts)
		},
	}

	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "name prefix of resources to remove, config name prefix by default")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "only print resources to remove")

	return cmd
}

func runCleanup(cmd *cobra.Command, s *session, opts *cleanupOptions) error {
	prefix := opts.prefix
	if prefix == "" {
		prefix = s.cfg.NamePrefix
	}
	sweeper := fixtures.NewSweeper(s.steps, fixtures.NewClusterRemover(s.steps, s.cfg.Playbooks))
	if opts.dryRun {
		found, err := sweeper.CreatedByPrefix(prefix)
		if err != nil {
			return err
		}
		for _, kind := range fixtures.TrackedKinds {
			for _, id := range found[kind] {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", kind, id)
			}
		}
		return nil
	}
	if err := sweeper.CleanupByPrefix(prefix); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "resources with prefix '%s' removed\n", prefix)
	return nil
}
