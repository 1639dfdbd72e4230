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

package helpers

import (
	"fmt"
)

// GetActionsCount counts recorded requests by verb, or by 'verb-kind' when
// countActions contain such keys. Empty countActions counts every verb.
func GetActionsCount(fake *FakeDecapod, countActions []string) map[string]int {
	actions := map[string]int{}
	allActions := true
	if len(countActions) > 0 {
		allActions = false
		for _, action := range countActions {
			actions[action] = 0
		}
	}
	for _, action := range fake.Actions() {
		if allActions {
			actions[action.Verb]++
			continue
		}
		if _, ok := actions[action.Verb]; ok {
			actions[action.Verb]++
		}
		kindAction := fmt.Sprintf("%s-%s", action.Verb, action.Kind)
		if _, ok := actions[kindAction]; ok {
			actions[kindAction]++
		}
	}
	return actions
}
