package apiclient

import (
	"context"
	"encoding/json"

	"github.com/anonymeye/apex-platform/pkg/types"
)

// toolPayload is the wire form of a tool submission: the free-text config
// has already been validated as JSON and rides along raw.
type toolPayload struct {
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Type            string          `json:"type"`
	Config          json.RawMessage `json:"config,omitempty"`
	KnowledgeBaseID string          `json:"knowledge_base_id,omitempty"`
}

// ListTools returns all tools, or an empty slice when none exist yet.
func (c *Client) ListTools(ctx context.Context) ([]types.Tool, error) {
	var out []types.Tool
	if err := c.doList(ctx, "/tools", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTool fetches one tool by id.
func (c *Client) GetTool(ctx context.Context, id string) (*types.Tool, error) {
	var out types.Tool
	if err := c.do(ctx, "GET", "/tools/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTool creates a tool. in.ConfigJSON must already be valid JSON
// (enforced by the form layer before any network call).
func (c *Client) CreateTool(ctx context.Context, in types.ToolInput) (*types.Tool, error) {
	payload := toolPayload{
		Name:            in.Name,
		Description:     in.Description,
		Type:            in.Type,
		KnowledgeBaseID: in.KnowledgeBaseID,
	}
	if in.ConfigJSON != "" {
		payload.Config = json.RawMessage(in.ConfigJSON)
	}
	var out types.Tool
	if err := c.do(ctx, "POST", "/tools", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTool applies a minimal-diff patch of changed fields only.
func (c *Client) UpdateTool(ctx context.Context, id string, patch map[string]any) (*types.Tool, error) {
	var out types.Tool
	if err := c.do(ctx, "PATCH", "/tools/"+id, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTool deletes a tool.
func (c *Client) DeleteTool(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", "/tools/"+id, nil, nil)
}
