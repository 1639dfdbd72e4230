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

package whalecommon

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultNamePrefix marks every resource created by whale
const DefaultNamePrefix = "whale"

func Contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// GenerateName builds unique resource name like 'whale-cluster-1f2e3d4c'.
func GenerateName(prefix, kind string) string {
	if prefix == "" {
		prefix = DefaultNamePrefix
	}
	suffix := strings.Split(uuid.NewString(), "-")[0]
	if kind == "" {
		return fmt.Sprintf("%s-%s", prefix, suffix)
	}
	return fmt.Sprintf("%s-%s-%s", prefix, kind, suffix)
}

// AlphanumericName drops everything except letters and digits,
// cluster names are restricted by Decapod to that set.
func AlphanumericName(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, name)
}

func RunFuncWithRetry(times int, interval time.Duration, funcToRun func() (interface{}, error)) (interface{}, error) {
	tries := 0
	var err error
	var output interface{}
	for tries < times {
		output, err = funcToRun()
		if err == nil {
			return output, nil
		}
		tries++
		if tries < times {
			time.Sleep(interval)
		}
	}
	return output, errors.Wrapf(err, "Retries (%d/%d) exceeded", tries, times)
}

// ShowObjectDiff logs the difference between two objects of the same type and
// returns it.
func ShowObjectDiff(l zerolog.Logger, oldObject, newObject interface{}) string {
	oldObjectType := fmt.Sprintf("%T", oldObject)
	newObjectType := fmt.Sprintf("%T", newObject)
	if oldObjectType != newObjectType {
		l.Error().Msgf("can't compare two different object types: %s and %s", oldObjectType, newObjectType)
		return ""
	}
	diff := cmp.Diff(oldObject, newObject)
	if diff != "" {
		l.Trace().Msgf("object %s has changed, diff:\n%s", oldObjectType, diff)
	}
	return diff
}

func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
