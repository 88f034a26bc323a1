package apiclient

import (
	"context"

	"github.com/anonymeye/apex-platform/pkg/types"
)

// ListModelRefs returns all model references. When connectionID is non-empty
// the list is filtered server-side to that connection.
func (c *Client) ListModelRefs(ctx context.Context, connectionID string) ([]types.ModelRef, error) {
	var query map[string]string
	if connectionID != "" {
		query = map[string]string{"connection_id": connectionID}
	}
	var out []types.ModelRef
	if err := c.doList(ctx, "/model-refs", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetModelRef fetches one model reference by id.
func (c *Client) GetModelRef(ctx context.Context, id string) (*types.ModelRef, error) {
	var out types.ModelRef
	if err := c.do(ctx, "GET", "/model-refs/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateModelRef creates a model reference under a connection.
func (c *Client) CreateModelRef(ctx context.Context, in types.ModelRefInput) (*types.ModelRef, error) {
	var out types.ModelRef
	if err := c.do(ctx, "POST", "/model-refs", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateModelRef applies a minimal-diff patch of changed fields only.
func (c *Client) UpdateModelRef(ctx context.Context, id string, patch map[string]any) (*types.ModelRef, error) {
	var out types.ModelRef
	if err := c.do(ctx, "PATCH", "/model-refs/"+id, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteModelRef deletes a model reference.
func (c *Client) DeleteModelRef(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", "/model-refs/"+id, nil, nil)
}
