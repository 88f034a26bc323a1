package apiclient

import (
	"context"

	"github.com/anonymeye/apex-platform/pkg/types"
)

// ListConnections returns all connections, or an empty slice when none
// exist yet (404 convention).
func (c *Client) ListConnections(ctx context.Context) ([]types.Connection, error) {
	var out []types.Connection
	if err := c.doList(ctx, "/connections", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetConnection fetches one connection by id.
func (c *Client) GetConnection(ctx context.Context, id string) (*types.Connection, error) {
	var out types.Connection
	if err := c.do(ctx, "GET", "/connections/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateConnection creates a connection.
func (c *Client) CreateConnection(ctx context.Context, in types.ConnectionInput) (*types.Connection, error) {
	var out types.Connection
	if err := c.do(ctx, "POST", "/connections", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateConnection applies a minimal-diff patch of changed fields only.
func (c *Client) UpdateConnection(ctx context.Context, id string, patch map[string]any) (*types.Connection, error) {
	var out types.Connection
	if err := c.do(ctx, "PATCH", "/connections/"+id, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteConnection deletes a connection.
func (c *Client) DeleteConnection(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", "/connections/"+id, nil, nil)
}
