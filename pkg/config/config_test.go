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

package whaleconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYaml = `
decapodUrl: 10.0.0.10:9999
login: admin
timeouts:
  execution: 45m
  pollInterval: 2s
http:
  retryMax: 5
playbooks:
  deployCluster: custom_deploy
testCases:
- TestClusterLifecycle
testSettings:
  keepAfter: true
  caseSettings:
  - name: TestClusterLifecycle
    config:
      servers: "3"
`

func TestParse(t *testing.T) {
	cfg := Default()
	err := Parse([]byte(testConfigYaml), cfg)
	require.NoError(t, err)

	expected := Default()
	expected.DecapodURL = "10.0.0.10:9999"
	expected.Login = "admin"
	expected.Timeouts.Execution = 45 * time.Minute
	expected.Timeouts.PollInterval = 2 * time.Second
	expected.HTTP.RetryMax = 5
	expected.Playbooks.DeployCluster = "custom_deploy"
	expected.Cases = []string{"TestClusterLifecycle"}
	expected.Settings = TestSettings{
		KeepAfter: true,
		CaseSettings: []CaseSettings{
			{Name: "TestClusterLifecycle", Config: map[string]string{"servers": "3"}},
		},
	}
	assert.Equal(t, expected, cfg)
	assert.Equal(t, map[string]string{"servers": "3"}, cfg.CaseConfig("TestClusterLifecycle"))
	assert.Nil(t, cfg.CaseConfig("TestUnknown"))
}

func TestParseExplicitZero(t *testing.T) {
	cfg := Default()
	err := Parse([]byte("http:\n  retryMax: 0\ntimeouts:\n  action: 0s\n"), cfg)
	require.NoError(t, err)

	expected := Default()
	expected.HTTP.RetryMax = 0
	expected.Timeouts.Action = 0
	assert.Equal(t, expected, cfg)
	assert.Equal(t, DefaultTimeouts.Event, cfg.Timeouts.Event)
}

func TestParseUnknownField(t *testing.T) {
	err := Parse([]byte("decapodURL: typo\n"), Default())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*Config)
		expectedError string
	}{
		{
			name: "valid config",
			mutate: func(c *Config) {
				c.DecapodURL = "http://10.0.0.10:9999"
			},
		},
		{
			name:          "empty url",
			mutate:        func(_ *Config) {},
			expectedError: "invalid config: 'Config.DecapodURL' failed on 'required' rule",
		},
		{
			name: "bad prefix and log level",
			mutate: func(c *Config) {
				c.DecapodURL = "http://decapod"
				c.NamePrefix = "whale-e2e"
				c.LogLevel = "verbose"
			},
			expectedError: "invalid config: 'Config.LogLevel' failed on 'oneof' rule, 'Config.NamePrefix' failed on 'alphanum' rule",
		},
		{
			name: "zero poll interval",
			mutate: func(c *Config) {
				c.DecapodURL = "http://decapod"
				c.Timeouts.PollInterval = 0
			},
			expectedError: "invalid config: 'Config.Timeouts.PollInterval' failed on 'gt' rule",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.mutate(cfg)
			err := Validate(cfg)
			if test.expectedError == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, test.expectedError)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "", NormalizeURL(" "))
	assert.Equal(t, "http://10.0.0.10:9999", NormalizeURL("10.0.0.10:9999"))
	assert.Equal(t, "https://decapod.local", NormalizeURL("https://decapod.local/"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "testconfigs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "testconfigs", "lab.yaml"), []byte(testConfigYaml), 0644))

	t.Setenv(ConfigFileEnv, "lab.yaml")
	t.Setenv(ConfigDirEnv, dir)
	t.Setenv(DecapodPassEnv, "secret")
	t.Setenv(DecapodURLEnv, "")
	t.Setenv(LogLevelEnv, "debug")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.10:9999", cfg.DecapodURL)
	assert.Equal(t, "admin", cfg.Login)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 45*time.Minute, cfg.Timeouts.Execution)
	assert.Equal(t, DefaultTimeouts.Action, cfg.Timeouts.Action)
}

func TestLoadErrors(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	t.Setenv(DecapodURLEnv, "")
	_, err := Load(zerolog.Nop())
	assert.EqualError(t, err, "invalid config: 'Config.DecapodURL' failed on 'required' rule")

	t.Setenv(ConfigFileEnv, "missing.yaml")
	t.Setenv(ConfigDirEnv, t.TempDir())
	_, err = Load(zerolog.Nop())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to find config file 'missing.yaml'")
}

func TestLoadWithOverrides(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfigYaml), 0644))

	t.Setenv(ConfigFileEnv, "missing.yaml")
	t.Setenv(DecapodURLEnv, "http://from-env:9999")
	t.Setenv(LogLevelEnv, "info")

	cfg, err := LoadWithOverrides(zerolog.Nop(), Overrides{
		ConfigFile: configPath,
		DecapodURL: "10.0.0.20:9999/",
		LogLevel:   "trace",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.20:9999", cfg.DecapodURL)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.Equal(t, "admin", cfg.Login)
	assert.Equal(t, 5, cfg.HTTP.RetryMax)
	assert.Equal(t, "missing.yaml", os.Getenv(ConfigFileEnv))

	_, err = LoadWithOverrides(zerolog.Nop(), Overrides{LogLevel: "verbose"})
	assert.Error(t, err)
}
