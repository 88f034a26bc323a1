package apiclient

import (
	"context"

	"github.com/anonymeye/apex-platform/pkg/types"
)

// ListAgents returns all agents, or an empty slice when none exist yet.
func (c *Client) ListAgents(ctx context.Context) ([]types.Agent, error) {
	var out []types.Agent
	if err := c.doList(ctx, "/agents", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAgent fetches one agent by id.
func (c *Client) GetAgent(ctx context.Context, id string) (*types.Agent, error) {
	var out types.Agent
	if err := c.do(ctx, "GET", "/agents/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAgent creates an agent.
func (c *Client) CreateAgent(ctx context.Context, in types.AgentInput) (*types.Agent, error) {
	var out types.Agent
	if err := c.do(ctx, "POST", "/agents", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAgent applies a minimal-diff patch of changed fields only.
func (c *Client) UpdateAgent(ctx context.Context, id string, patch map[string]any) (*types.Agent, error) {
	var out types.Agent
	if err := c.do(ctx, "PATCH", "/agents/"+id, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAgent deletes an agent.
func (c *Client) DeleteAgent(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", "/agents/"+id, nil, nil)
}
