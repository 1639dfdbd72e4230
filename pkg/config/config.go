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
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Decapod API endpoint, scheme is optional
	DecapodURL string `yaml:"decapodUrl" validate:"required,url"`
	Login      string `yaml:"login" validate:"required"`
	Password   string `yaml:"password" validate:"required"`
	LogLevel   string `yaml:"logLevel,omitempty" validate:"omitempty,oneof=trace debug info warn error"`
	// prefix for generated resource names
	NamePrefix string       `yaml:"namePrefix,omitempty" validate:"required,alphanum"`
	Timeouts   Timeouts     `yaml:"timeouts,omitempty"`
	HTTP       HTTPSettings `yaml:"http,omitempty"`
	Playbooks  PlaybookIDs  `yaml:"playbooks,omitempty"`
	// e2e related settings
	Cases    []string     `yaml:"testCases,omitempty"`
	Settings TestSettings `yaml:"testSettings,omitempty"`
}

type Timeouts struct {
	// single API action like create or delete
	Action time.Duration `yaml:"action,omitempty" validate:"gte=0"`
	// async event like server discovery
	Event time.Duration `yaml:"event,omitempty" validate:"gte=0"`
	// full playbook execution
	Execution time.Duration `yaml:"execution,omitempty" validate:"gte=0"`
	// server appearing after create request
	ServerPresence time.Duration `yaml:"serverPresence,omitempty" validate:"gte=0"`
	PollInterval   time.Duration `yaml:"pollInterval,omitempty" validate:"gt=0"`
}

type HTTPSettings struct {
	RetryMax       int           `yaml:"retryMax,omitempty" validate:"gte=0,lte=10"`
	RetryWaitMin   time.Duration `yaml:"retryWaitMin,omitempty" validate:"gte=0"`
	RetryWaitMax   time.Duration `yaml:"retryWaitMax,omitempty" validate:"gte=0"`
	RequestTimeout time.Duration `yaml:"requestTimeout,omitempty" validate:"gte=0"`
}

type PlaybookIDs struct {
	DeployCluster       string `yaml:"deployCluster,omitempty" validate:"required"`
	AddOsd              string `yaml:"addOsd,omitempty" validate:"required"`
	AddMonitor          string `yaml:"addMonitor,omitempty" validate:"required"`
	RemoveOsd           string `yaml:"removeOsd,omitempty" validate:"required"`
	RemoveMonitor       string `yaml:"removeMonitor,omitempty" validate:"required"`
	PurgeCluster        string `yaml:"purgeCluster,omitempty" validate:"required"`
	TelegrafIntegration string `yaml:"telegrafIntegration,omitempty" validate:"required"`
	TelegrafRemoval     string `yaml:"telegrafRemoval,omitempty" validate:"required"`
}

type CaseSettings struct {
	Name   string            `yaml:"name"`
	Config map[string]string `yaml:"config"`
}

type TestSettings struct {
	CaseSettings []CaseSettings `yaml:"caseSettings,omitempty"`
	KeepAfter    bool           `yaml:"keepAfter,omitempty"`
}

const (
	ConfigFileEnv     = "WHALE_CONFIG"
	ConfigDirEnv      = "WHALE_CONFIG_DIR"
	DecapodURLEnv     = "DECAPOD_URL"
	DecapodLoginEnv   = "DECAPOD_LOGIN"
	DecapodPassEnv    = "DECAPOD_PASSWORD"
	LogLevelEnv       = "WHALE_LOG_LEVEL"
	configDirFallback = "testconfigs"
)

var (
	debugMsgTmpl = "set '%s' from environment"

	DefaultTimeouts = Timeouts{
		Action:         60 * time.Second,
		Event:          180 * time.Second,
		Execution:      30 * time.Minute,
		ServerPresence: 60 * time.Second,
		PollInterval:   time.Second,
	}
	DefaultHTTPSettings = HTTPSettings{
		RetryMax:       3,
		RetryWaitMin:   500 * time.Millisecond,
		RetryWaitMax:   5 * time.Second,
		RequestTimeout: 60 * time.Second,
	}
	DefaultPlaybooks = PlaybookIDs{
		DeployCluster:       "cluster_deploy",
		AddOsd:              "add_osd",
		AddMonitor:          "add_mon",
		RemoveOsd:           "remove_osd",
		RemoveMonitor:       "remove_mon",
		PurgeCluster:        "purge_cluster",
		TelegrafIntegration: "telegraf_integration",
		TelegrafRemoval:     "telegraf_removal",
	}
)

func Default() *Config {
	return &Config{
		Login:      "login",
		Password:   "password",
		LogLevel:   "info",
		NamePrefix: "whale",
		Timeouts:   DefaultTimeouts,
		HTTP:       DefaultHTTPSettings,
		Playbooks:  DefaultPlaybooks,
	}
}

// Overrides hold values given explicitly by caller, they win over config
// file and environment.
type Overrides struct {
	ConfigFile string
	DecapodURL string
	LogLevel   string
}

// Load builds configuration once: defaults, then optional YAML file from
// WHALE_CONFIG, then environment overrides. The result is validated.
func Load(log zerolog.Logger) (*Config, error) {
	return LoadWithOverrides(log, Overrides{})
}

// LoadWithOverrides works as Load and applies non-empty overrides last.
func LoadWithOverrides(log zerolog.Logger, overrides Overrides) (*Config, error) {
	cfg := Default()
	configName := overrides.ConfigFile
	if configName == "" {
		configName = os.Getenv(ConfigFileEnv)
	}
	configPath, err := lookupConfigFile(configName)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		log.Debug().Msgf("reading config file '%s'", configPath)
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := Parse(data, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(log, cfg)
	if overrides.DecapodURL != "" {
		cfg.DecapodURL = overrides.DecapodURL
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	cfg.DecapodURL = NormalizeURL(cfg.DecapodURL)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse overlays YAML data on top of cfg. Keys missing in data keep current
// values, explicit zero values are applied.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return errors.Wrap(err, "failed to unmarshal config file")
	}
	return nil
}

func Validate(cfg *Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		msgs := make([]string, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			msgs = append(msgs, fmt.Sprintf("'%s' failed on '%s' rule", fieldErr.Namespace(), fieldErr.Tag()))
		}
		return errors.Errorf("invalid config: %s", strings.Join(msgs, ", "))
	}
	return errors.Wrap(err, "invalid config")
}

// NormalizeURL adds http scheme for bare 'host:port' values and drops trailing slash.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	return strings.TrimRight(raw, "/")
}

func (c *Config) CaseConfig(caseName string) map[string]string {
	for _, testCase := range c.Settings.CaseSettings {
		if testCase.Name == caseName {
			return testCase.Config
		}
	}
	return nil
}

func lookupConfigFile(name string) (string, error) {
	if name == "" {
		return "", nil
	}
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}
	configDir := os.Getenv(ConfigDirEnv)
	if configDir == "" {
		configDir, _ = os.Getwd()
	}
	candidate := fmt.Sprintf("%s/%s/%s", configDir, configDirFallback, name)
	if _, err := os.Stat(candidate); err != nil {
		return "", errors.Wrapf(err, "failed to find config file '%s'", name)
	}
	return candidate, nil
}

func applyEnv(log zerolog.Logger, cfg *Config) {
	overrides := []struct {
		env   string
		value *string
	}{
		{DecapodURLEnv, &cfg.DecapodURL},
		{DecapodLoginEnv, &cfg.Login},
		{DecapodPassEnv, &cfg.Password},
		{LogLevelEnv, &cfg.LogLevel},
	}
	for _, override := range overrides {
		if value, present := os.LookupEnv(override.env); present && value != "" {
			log.Debug().Msgf(debugMsgTmpl, override.env)
			*override.value = value
		}
	}
}
