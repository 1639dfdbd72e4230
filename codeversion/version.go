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
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is set with -ldflags "-X github.com/Mirantis/whale/codeversion.Version=<tag>".
var Version string

func GetGoRuntimeVersion() string {
	return fmt.Sprintf("Go version: %s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// GetVersion returns linked version, module version from build info or 'dev'.
func GetVersion() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

func GetCodeVersion(app string) string {
	if app == "" {
		app = "App"
	}
	return fmt.Sprintf("%s version: %s", app, GetVersion())
}
