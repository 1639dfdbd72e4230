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

package decapod

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// APIError is a non-2xx response of Decapod API.
type APIError struct {
	StatusCode int    `json:"-"`
	Method     string `json:"-"`
	Path       string `json:"-"`
	Code       int    `json:"code"`
	Type       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Type != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, e.Type, msg)
	}
	return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

func newAPIError(method, path string, statusCode int, body []byte) *APIError {
	apiErr := &APIError{}
	if err := json.Unmarshal(body, apiErr); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	apiErr.StatusCode = statusCode
	apiErr.Method = method
	apiErr.Path = path
	return apiErr
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports missing resources, the only API error a presence check
// treats as "absent".
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

func IsBadRequest(err error) bool {
	return statusOf(err) == http.StatusBadRequest
}

func IsConflict(err error) bool {
	return statusOf(err) == http.StatusConflict
}
