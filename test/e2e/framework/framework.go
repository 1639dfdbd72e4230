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

package framework

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	whalecommon "github.com/Mirantis/whale/pkg/common"
	whaleconfig "github.com/Mirantis/whale/pkg/config"
	"github.com/Mirantis/whale/pkg/decapod"
	"github.com/Mirantis/whale/pkg/fixtures"
	"github.com/Mirantis/whale/pkg/steps"
)

var (
	TF         Framework
	StepNumber int
)

type Framework struct {
	Context context.Context
	Config  *whaleconfig.Config
	Log     zerolog.Logger
	Client  *decapod.Client
	Steps   *steps.Steps
	Remover *fixtures.ClusterRemover
	// resources existing before the test are never removed
	Tracker *fixtures.Tracker
}

const (
	loginRetries  = 3
	loginInterval = 5 * time.Second
)

func Setup(cfg *whaleconfig.Config) error {
	f, err := setupFramework(cfg)
	if err != nil {
		return errors.Wrapf(err, "failed to set test environment")
	}
	TF = *f
	TF.Tracker, err = fixtures.NewTracker(TF.Steps, TF.Remover)
	if err != nil {
		return errors.Wrap(err, "Cannot save current decapod state")
	}
	return nil
}

func setupFramework(cfg *whaleconfig.Config) (*Framework, error) {
	f := &Framework{
		Context: context.Background(),
		Config:  cfg,
	}
	zerolog.SetGlobalLevel(whalecommon.ParseLogLevel(cfg.LogLevel))
	f.Log = whalecommon.InitLogger(false)

	client, err := decapod.NewClientFromConfig(cfg, f.Log)
	if err != nil {
		return nil, errors.Wrap(err, "Cannot create decapod client")
	}
	_, err = whalecommon.RunFuncWithRetry(loginRetries, loginInterval, func() (interface{}, error) {
		return nil, client.Login(f.Context)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot login to decapod '%s'", client.URL())
	}
	f.Client = client
	f.Steps = steps.New(f.Context, client, cfg, f.Log)
	f.Remover = fixtures.NewClusterRemover(f.Steps, cfg.Playbooks)
	return f, nil
}

// Teardown removes resources created since setup and closes the session.
func Teardown() error {
	errs := make([]string, 0)
	if TF.Tracker != nil {
		created, err := TF.Tracker.Created()
		if err == nil && len(created) > 0 {
			TF.Log.Info().Msgf("removing resources created by test:\n%s", DumpYaml(created))
		}
		if err := TF.Tracker.Cleanup(); err != nil {
			TF.Log.Error().Err(err).Msg("")
			errs = append(errs, fmt.Sprintf("failed to cleanup test resources: %v", err))
		}
	}
	if TF.Client != nil {
		if err := TF.Client.Logout(TF.Context); err != nil {
			TF.Log.Error().Err(err).Msg("")
			errs = append(errs, fmt.Sprintf("failed to logout: %v", err))
		}
	}
	if len(errs) > 0 {
		return errors.Errorf("Teardown failed: %s", strings.Join(errs, ", "))
	}
	return nil
}

func BaseSetup(t *testing.T) error {
	t.Log("Setup started..")
	cfg, err := GetFrameworkConfig()
	if err != nil {
		return errors.Wrap(err, "failed to get test config")
	}
	if !whalecommon.Contains(cfg.Cases, t.Name()) {
		t.Logf("%s not in test cases list", t.Name())
		t.SkipNow()
	}
	err = Setup(cfg)
	if err != nil {
		t.Logf("Setup failed: %v", err)
		return err
	}
	t.Log("Setup successfully done")
	return nil
}

func SetupTeardown(t *testing.T) func() {
	return SetupWithCustomTeardown(t, nil)
}

// SetupWithCustomTeardown runs customTeardown before generic cleanup, both
// are skipped with keepAfter setting.
func SetupWithCustomTeardown(t *testing.T, customTeardown func() error) func() {
	StepNumber = 0
	err := BaseSetup(t)
	if err != nil {
		t.Fatal(err)
	}
	return func() {
		StepNumber = 0
		if TF.Config.Settings.KeepAfter {
			t.Log("Teardown skipped due to keepAfter flag enabled")
			return
		}

		t.Log("Teardown started..")
		errs := make([]string, 0)
		if customTeardown != nil {
			if err := customTeardown(); err != nil {
				errs = append(errs, fmt.Sprintf("Custom teardown function failed: %v", err))
			}
		}
		if err := Teardown(); err != nil {
			errs = append(errs, err.Error())
		}
		if len(errs) > 0 {
			t.Fatalf("%v", strings.Join(errs, ", "))
		}
		t.Log("Teardown successfully done")
	}
}

// Release frees test resource and fails the test if removal failed. It is
// deferred right after acquisition so resources go away before Teardown logs out.
func Release(t testing.TB, r fixtures.Releaser) {
	if err := r.Release(); err != nil {
		t.Errorf("failed to release test resource: %v", err)
	}
}

func Step(t *testing.T, msg string, args ...interface{}) {
	StepNumber++
	if len(args) > 0 {
		t.Logf("%v ## Step %d - %v", time.Now().UTC().String(), StepNumber, fmt.Sprintf(msg, args...))
	} else {
		t.Logf("%v ## Step %d - %v", time.Now().UTC().String(), StepNumber, msg)
	}
}
