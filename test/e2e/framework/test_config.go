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
	"os"
	"strconv"
	"testing"

	"github.com/pkg/errors"

	whalecommon "github.com/Mirantis/whale/pkg/common"
	whaleconfig "github.com/Mirantis/whale/pkg/config"
)

// GetFrameworkConfig reads config named by WHALE_CONFIG, file is looked up
// in 'testconfigs' dir of WHALE_CONFIG_DIR when path does not exist.
func GetFrameworkConfig() (*whaleconfig.Config, error) {
	if os.Getenv(whaleconfig.ConfigFileEnv) == "" {
		return nil, errors.Errorf("Empty %s env var", whaleconfig.ConfigFileEnv)
	}
	cfg, err := whaleconfig.Load(whalecommon.InitLogger(false))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load test config")
	}
	return cfg, nil
}

func GetConfigForTestCase(t *testing.T) map[string]string {
	return TF.Config.CaseConfig(t.Name())
}

// GetCaseInt reads integer case option, default is returned when option is
// not set.
func GetCaseInt(t *testing.T, key string, defaultValue int) (int, error) {
	raw, ok := GetConfigForTestCase(t)[key]
	if !ok || raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid '%s' option of test case %s", key, t.Name())
	}
	return value, nil
}
