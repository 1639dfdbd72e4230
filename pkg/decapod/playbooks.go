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

const (
	KindPlaybook       = "playbook"
	KindPlaybookConfig = "playbook_configuration"
)

func (c *Client) GetPlaybooks(ctx context.Context) ([]Playbook, error) {
	return listItems[Playbook](ctx, c, KindPlaybook)
}

func (c *Client) CreatePlaybookConfig(ctx context.Context, req CreatePlaybookConfigRequest) (*PlaybookConfig, error) {
	if req.ServerIDs == nil {
		req.ServerIDs = []string{}
	}
	if req.Hints == nil {
		req.Hints = []HintValue{}
	}
	return createItem[PlaybookConfig](ctx, c, KindPlaybookConfig, req)
}

func (c *Client) GetPlaybookConfig(ctx context.Context, id string) (*PlaybookConfig, error) {
	return getItem[PlaybookConfig](ctx, c, KindPlaybookConfig, id)
}

func (c *Client) GetPlaybookConfigs(ctx context.Context) ([]PlaybookConfig, error) {
	return listItems[PlaybookConfig](ctx, c, KindPlaybookConfig)
}

func (c *Client) UpdatePlaybookConfig(ctx context.Context, config *PlaybookConfig) (*PlaybookConfig, error) {
	return updateItem(ctx, c, KindPlaybookConfig, config)
}

func (c *Client) DeletePlaybookConfig(ctx context.Context, id string) (*PlaybookConfig, error) {
	return deleteItem[PlaybookConfig](ctx, c, KindPlaybookConfig, id)
}
