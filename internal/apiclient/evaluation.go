package apiclient

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"

	"github.com/anonymeye/apex-platform/pkg/types"
)

func pageQuery(skip, limit int) map[string]string {
	return map[string]string{
		"skip":  strconv.Itoa(skip),
		"limit": strconv.Itoa(limit),
	}
}

// ListRuns returns one page of evaluation runs. A 404 yields an empty page.
func (c *Client) ListRuns(ctx context.Context, skip, limit int) (*types.Page[types.EvaluationRun], error) {
	out := types.Page[types.EvaluationRun]{Skip: skip, Limit: limit}
	if err := c.doList(ctx, "/evaluation/runs", pageQuery(skip, limit), &out); err != nil {
		return nil, err
	}
	// Zero-valued page after a 404: keep the requested window so the
	// pagination invariants still hold.
	if out.Limit == 0 {
		out.Skip, out.Limit = skip, limit
	}
	return &out, nil
}

// GetRun fetches one evaluation run by id.
func (c *Client) GetRun(ctx context.Context, id string) (*types.EvaluationRun, error) {
	var out types.EvaluationRun
	if err := c.do(ctx, "GET", "/evaluation/runs/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRun submits an evaluation run. A request id is attached so an
// accidental double submission is deduplicated server-side.
func (c *Client) CreateRun(ctx context.Context, in types.RunInput) (*types.EvaluationRun, error) {
	if in.RequestID == "" {
		in.RequestID = uuid.NewString()
	}
	var out types.EvaluationRun
	if err := c.do(ctx, "POST", "/evaluation/runs", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListScores returns one page of scores for a run. A 404 yields an empty page.
func (c *Client) ListScores(ctx context.Context, runID string, skip, limit int) (*types.Page[types.Score], error) {
	out := types.Page[types.Score]{Skip: skip, Limit: limit}
	if err := c.doList(ctx, "/evaluation/runs/"+runID+"/scores", pageQuery(skip, limit), &out); err != nil {
		return nil, err
	}
	if out.Limit == 0 {
		out.Skip, out.Limit = skip, limit
	}
	return &out, nil
}

// SubmitReview overwrites the human assessment of one score. Idempotent per
// (run, score): resubmission replaces the previous review.
func (c *Client) SubmitReview(ctx context.Context, runID, scoreID string, review types.HumanReview) (*types.Score, error) {
	var out types.Score
	if err := c.do(ctx, "PUT", "/evaluation/runs/"+runID+"/scores/"+scoreID+"/review", review, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListJudgeConfigs returns all judge configs, or an empty slice when none
// exist yet.
func (c *Client) ListJudgeConfigs(ctx context.Context) ([]types.JudgeConfig, error) {
	var out []types.JudgeConfig
	if err := c.doList(ctx, "/evaluation/judge-configs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetJudgeConfig fetches one judge config by id.
func (c *Client) GetJudgeConfig(ctx context.Context, id string) (*types.JudgeConfig, error) {
	var out types.JudgeConfig
	if err := c.do(ctx, "GET", "/evaluation/judge-configs/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type judgeConfigPayload struct {
	Name           string          `json:"name"`
	PromptTemplate string          `json:"prompt_template"`
	Rubric         json.RawMessage `json:"rubric,omitempty"`
	ModelRefID     string          `json:"model_ref_id"`
}

// CreateJudgeConfig creates a judge config. in.RubricJSON must already be
// valid JSON (enforced by the form layer).
func (c *Client) CreateJudgeConfig(ctx context.Context, in types.JudgeConfigInput) (*types.JudgeConfig, error) {
	payload := judgeConfigPayload{
		Name:           in.Name,
		PromptTemplate: in.PromptTemplate,
		ModelRefID:     in.ModelRefID,
	}
	if in.RubricJSON != "" {
		payload.Rubric = json.RawMessage(in.RubricJSON)
	}
	var out types.JudgeConfig
	if err := c.do(ctx, "POST", "/evaluation/judge-configs", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateJudgeConfig applies a minimal-diff patch of changed fields only.
func (c *Client) UpdateJudgeConfig(ctx context.Context, id string, patch map[string]any) (*types.JudgeConfig, error) {
	var out types.JudgeConfig
	if err := c.do(ctx, "PATCH", "/evaluation/judge-configs/"+id, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteJudgeConfig deletes a judge config.
func (c *Client) DeleteJudgeConfig(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", "/evaluation/judge-configs/"+id, nil, nil)
}

// ListSavedConversations returns the conversations runs can be scoped to,
// or an empty slice when none exist yet.
func (c *Client) ListSavedConversations(ctx context.Context) ([]types.SavedConversation, error) {
	var out []types.SavedConversation
	if err := c.doList(ctx, "/evaluation/saved-conversations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
