package apiclient

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/anonymeye/apex-platform/pkg/types"
)

// ListKnowledgeBases returns all knowledge bases, or an empty slice when
// none exist yet.
func (c *Client) ListKnowledgeBases(ctx context.Context) ([]types.KnowledgeBase, error) {
	var out []types.KnowledgeBase
	if err := c.doList(ctx, "/knowledge", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetKnowledgeBase fetches one knowledge base by id.
func (c *Client) GetKnowledgeBase(ctx context.Context, id string) (*types.KnowledgeBase, error) {
	var out types.KnowledgeBase
	if err := c.do(ctx, "GET", "/knowledge/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateKnowledgeBase creates a knowledge base.
func (c *Client) CreateKnowledgeBase(ctx context.Context, in types.KnowledgeBaseInput) (*types.KnowledgeBase, error) {
	var out types.KnowledgeBase
	if err := c.do(ctx, "POST", "/knowledge", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateKnowledgeBase applies a minimal-diff patch of changed fields only.
func (c *Client) UpdateKnowledgeBase(ctx context.Context, id string, patch map[string]any) (*types.KnowledgeBase, error) {
	var out types.KnowledgeBase
	if err := c.do(ctx, "PATCH", "/knowledge/"+id, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteKnowledgeBase deletes a knowledge base and its documents.
func (c *Client) DeleteKnowledgeBase(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", "/knowledge/"+id, nil, nil)
}

// ListDocuments returns the documents of a knowledge base, or an empty
// slice when none exist yet.
func (c *Client) ListDocuments(ctx context.Context, kbID string) ([]types.Document, error) {
	var out []types.Document
	if err := c.doList(ctx, "/knowledge/"+kbID+"/documents", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadDocument streams a file into a knowledge base. Chunking and
// embedding happen server-side with the given parameters.
func (c *Client) UploadDocument(ctx context.Context, kbID, filename string, r io.Reader, params types.UploadParams) (*types.Document, error) {
	form := map[string]string{}
	if params.ChunkSize > 0 {
		form["chunk_size"] = strconv.Itoa(params.ChunkSize)
	}
	if params.ChunkOverlap > 0 {
		form["chunk_overlap"] = strconv.Itoa(params.ChunkOverlap)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, r).
		SetFormData(form).
		Post("/knowledge/" + kbID + "/documents")
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", filename, err)
	}
	if resp.IsError() {
		return nil, apiErrorFromResponse(resp)
	}

	var out types.Document
	if err := decodeBody(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("upload %s: decode response: %w", filename, err)
	}
	return &out, nil
}

// DeleteDocument removes a document from a knowledge base.
func (c *Client) DeleteDocument(ctx context.Context, kbID, docID string) error {
	return c.do(ctx, "DELETE", "/knowledge/"+kbID+"/documents/"+docID, nil, nil)
}
