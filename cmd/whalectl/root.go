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
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	whalecommon "github.com/Mirantis/whale/pkg/common"
	whaleconfig "github.com/Mirantis/whale/pkg/config"
	"github.com/Mirantis/whale/pkg/decapod"
	"github.com/Mirantis/whale/pkg/steps"
)

type rootFlags struct {
	config       string
	url          string
	logLevel     string
	pollInterval time.Duration
}

// session is an authorized decapod connection with steps built on top.
type session struct {
	ctx    context.Context
	cfg    *whaleconfig.Config
	log    zerolog.Logger
	client *decapod.Client
	steps  *steps.Steps
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "whalectl",
		Short:         "whalectl runs decapod checks and maintenance from command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "config file, overrides "+whaleconfig.ConfigFileEnv)
	cmd.PersistentFlags().StringVar(&flags.url, "url", "", "decapod API url, overrides "+whaleconfig.DecapodURLEnv)
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level, overrides "+whaleconfig.LogLevelEnv)
	cmd.PersistentFlags().DurationVar(&flags.pollInterval, "poll-interval", 0, "interval between status checks")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newCheckCmd(flags))
	cmd.AddCommand(newWaitExecutionCmd(flags))
	cmd.AddCommand(newCleanupCmd(flags))

	return cmd
}

func openSession(cmd *cobra.Command, flags *rootFlags) (*session, error) {
	log := whalecommon.InitLoggerWithOutput(cmd.ErrOrStderr(), false)
	cfg, err := whaleconfig.LoadWithOverrides(log, whaleconfig.Overrides{
		ConfigFile: flags.config,
		DecapodURL: flags.url,
		LogLevel:   flags.logLevel,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if flags.pollInterval > 0 {
		cfg.Timeouts.PollInterval = flags.pollInterval
	}
	log = log.Level(whalecommon.ParseLogLevel(cfg.LogLevel))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	client, err := decapod.NewClientFromConfig(cfg, log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create decapod client")
	}
	if err := client.Login(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to login to '%s'", client.URL())
	}
	return &session{
		ctx:    ctx,
		cfg:    cfg,
		log:    log,
		client: client,
		steps:  steps.New(ctx, client, cfg, log),
	}, nil
}

func (s *session) close() {
	if err := s.client.Logout(s.ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to logout")
	}
}
