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

package codeversion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCodeVersion(t *testing.T) {
	origin := Version
	defer func() { Version = origin }()

	tests := []struct {
		name     string
		app      string
		version  string
		expected string
	}{
		{name: "linked version", app: "whalectl", version: "v1.2.3", expected: "whalectl version: v1.2.3"},
		{name: "empty app name", version: "v0.1.0", expected: "App version: v0.1.0"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			Version = test.version
			assert.Equal(t, test.expected, GetCodeVersion(test.app))
		})
	}
	t.Run("not linked version", func(t *testing.T) {
		Version = ""
		assert.NotEmpty(t, GetVersion())
	})
}
