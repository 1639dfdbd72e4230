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
	"context"
)

const KindExecution = "execution"

func (c *Client) CreateExecution(ctx context.Context, configID string, configVersion int) (*Execution, error) {
	req := createExecutionRequest{
		PlaybookConfiguration: PlaybookConfigRef{ID: configID, Version: configVersion},
	}
	return createItem[Execution](ctx, c, KindExecution, req)
}

func (c *Client) GetExecution(ctx context.Context, id string) (*Execution, error) {
	return getItem[Execution](ctx, c, KindExecution, id)
}

func (c *Client) GetExecutions(ctx context.Context) ([]Execution, error) {
	return listItems[Execution](ctx, c, KindExecution)
}

// CancelExecution asks Decapod to stop running execution.
func (c *Client) CancelExecution(ctx context.Context, id string) (*Execution, error) {
	return deleteItem[Execution](ctx, c, KindExecution, id)
}
