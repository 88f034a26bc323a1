package forms_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/anonymeye/apex-platform/internal/forms"
	"github.com/anonymeye/apex-platform/pkg/types"
)

func validAgent() types.AgentInput {
	return types.AgentInput{
		Name:          "support-bot",
		ModelRefID:    "mr-1",
		ConnectionID:  "conn-1",
		Temperature:   0.7,
		MaxIterations: 10,
	}
}

func TestValidateAgent(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*types.AgentInput)
		wantField string
	}{
		{"valid", func(in *types.AgentInput) {}, ""},
		{"temperature at lower bound", func(in *types.AgentInput) { in.Temperature = 0 }, ""},
		{"temperature at upper bound", func(in *types.AgentInput) { in.Temperature = 2 }, ""},
		{"temperature above range", func(in *types.AgentInput) { in.Temperature = 2.1 }, "/temperature"},
		{"temperature negative", func(in *types.AgentInput) { in.Temperature = -0.5 }, "/temperature"},
		{"max_iterations zero", func(in *types.AgentInput) { in.MaxIterations = 0 }, "/max_iterations"},
		{"max_iterations over cap", func(in *types.AgentInput) { in.MaxIterations = 51 }, "/max_iterations"},
		{"missing name", func(in *types.AgentInput) { in.Name = "" }, ""},
		{"missing model ref", func(in *types.AgentInput) { in.ModelRefID = "" }, ""},
	}

	for _, tc := range cases {
		in := validAgent()
		tc.mutate(&in)
		err := forms.ValidateAgent(in)

		valid := tc.name == "valid" || strings.Contains(tc.name, "bound")
		if valid {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", tc.name, err)
			}
			continue
		}
		if err == nil {
			t.Errorf("%s: expected validation error", tc.name)
			continue
		}
		var verrs forms.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Errorf("%s: error type %T, want ValidationErrors", tc.name, err)
			continue
		}
		if tc.wantField != "" {
			found := false
			for _, fe := range verrs {
				if fe.Field == tc.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("%s: no error on field %s, got %v", tc.name, tc.wantField, verrs)
			}
		}
	}
}

func TestValidateToolJSONConfig(t *testing.T) {
	base := types.ToolInput{Name: "search-docs", Type: "api_call"}

	in := base
	in.ConfigJSON = `{"endpoint": "https://example.com", "timeout_ms": 500}`
	if err := forms.ValidateTool(in); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	in = base
	in.ConfigJSON = `{"endpoint": nope}`
	err := forms.ValidateTool(in)
	if err == nil {
		t.Fatal("invalid JSON config accepted")
	}
	if !strings.Contains(err.Error(), "/config") {
		t.Errorf("error not tied to config field: %v", err)
	}

	// rag_search requires a knowledge base.
	in = types.ToolInput{Name: "kb-search", Type: "rag_search"}
	if err := forms.ValidateTool(in); err == nil {
		t.Error("rag_search without knowledge base accepted")
	}
	in.KnowledgeBaseID = "kb-1"
	if err := forms.ValidateTool(in); err != nil {
		t.Errorf("rag_search with knowledge base rejected: %v", err)
	}
}

func TestValidateJudgeConfigRubric(t *testing.T) {
	base := types.JudgeConfigInput{
		Name:           "helpfulness-judge",
		PromptTemplate: "Rate the reply: {turn}",
		ModelRefID:     "mr-1",
	}

	in := base
	in.RubricJSON = `{"helpfulness": {"min": 1, "max": 5}}`
	if err := forms.ValidateJudgeConfig(in); err != nil {
		t.Errorf("valid rubric rejected: %v", err)
	}

	in = base
	in.RubricJSON = `[1, 2, 3]`
	if err := forms.ValidateJudgeConfig(in); err == nil {
		t.Error("non-object rubric accepted")
	}

	in = base
	in.RubricJSON = `{broken`
	if err := forms.ValidateJudgeConfig(in); err == nil {
		t.Error("malformed rubric accepted")
	}

	// Rubric is optional.
	if err := forms.ValidateJudgeConfig(base); err != nil {
		t.Errorf("empty rubric rejected: %v", err)
	}
}

func TestValidateUploadParams(t *testing.T) {
	if err := forms.ValidateUploadParams(types.UploadParams{ChunkSize: 512, ChunkOverlap: 64}); err != nil {
		t.Errorf("valid params rejected: %v", err)
	}
	if err := forms.ValidateUploadParams(types.UploadParams{ChunkSize: 128, ChunkOverlap: 128}); err == nil {
		t.Error("overlap == chunk_size accepted")
	}
	if err := forms.ValidateUploadParams(types.UploadParams{ChunkSize: -1}); err == nil {
		t.Error("negative chunk_size accepted")
	}
}

func TestDiffSubmitsOnlyChangedFields(t *testing.T) {
	original := types.KnowledgeBaseInput{Name: "A", Description: "B"}
	edited := types.KnowledgeBaseInput{Name: "A2", Description: "B"}

	patch, err := forms.Diff(original, edited)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(patch) != 1 {
		t.Fatalf("patch = %v, want exactly one field", patch)
	}
	if patch["name"] != "A2" {
		t.Errorf("patch[name] = %v, want A2", patch["name"])
	}
	if _, present := patch["description"]; present {
		t.Error("unchanged description included in patch")
	}
}

func TestDiffClearedFieldBecomesNull(t *testing.T) {
	original := types.KnowledgeBaseInput{Name: "A", Description: "B"}
	edited := types.KnowledgeBaseInput{Name: "A"} // description cleared

	patch, err := forms.Diff(original, edited)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	val, present := patch["description"]
	if !present || val != nil {
		t.Errorf("cleared field: patch = %v, want explicit null description", patch)
	}
}

func TestDiffNoChangesIsEmpty(t *testing.T) {
	in := validAgent()
	patch, err := forms.Diff(in, in)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(patch) != 0 {
		t.Errorf("patch = %v, want empty", patch)
	}
}

func TestApplyConnectionChangeClearsModelRef(t *testing.T) {
	in := validAgent()

	forms.ApplyConnectionChange(&in, "conn-2")
	if in.ModelRefID != "" {
		t.Errorf("model_ref_id = %q, want cleared on connection switch", in.ModelRefID)
	}
	if in.ConnectionID != "conn-2" {
		t.Errorf("connection_id = %q, want conn-2", in.ConnectionID)
	}

	// Re-selecting the same connection keeps the model choice.
	in.ModelRefID = "mr-5"
	forms.ApplyConnectionChange(&in, "conn-2")
	if in.ModelRefID != "mr-5" {
		t.Error("same-connection reselect must not clear model_ref_id")
	}
}

func TestModelOptionsFilterByConnection(t *testing.T) {
	models := []types.ModelRef{
		{ID: "mr-1", ConnectionID: "conn-1", Name: "gpt-4o"},
		{ID: "mr-2", ConnectionID: "conn-2", Name: "claude"},
		{ID: "mr-3", ConnectionID: "conn-1", Name: "gpt-4o-mini"},
	}

	got := forms.ModelOptions(models, "conn-1")
	if len(got) != 2 || got[0].ID != "mr-1" || got[1].ID != "mr-3" {
		t.Errorf("ModelOptions(conn-1) = %v", got)
	}

	if got := forms.ModelOptions(models, ""); len(got) != 0 {
		t.Errorf("ModelOptions with no connection = %v, want empty", got)
	}

	if got := forms.ModelOptions(models, "conn-9"); len(got) != 0 {
		t.Errorf("ModelOptions(unknown) = %v, want empty", got)
	}
}
