package report_test

import (
	"github.com/segmentio/encoding/json"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/anonymeye/apex-platform/internal/report"
	"github.com/anonymeye/apex-platform/pkg/types"
)

func runsPage() *types.Page[types.EvaluationRun] {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return &types.Page[types.EvaluationRun]{
		Items: []types.EvaluationRun{
			{ID: "run-1", ScopeType: "conversation", JudgeConfigID: "judge-1", Status: types.RunCompleted, ScoreCount: 12, CreatedAt: created},
			{ID: "run-2", ScopeType: "conversation", JudgeConfigID: "judge-1", Status: types.RunFailed, ErrorMessage: "judge timeout", CreatedAt: created},
			{ID: "run-3", ScopeType: "user", JudgeConfigID: "judge-2", Status: types.RunRunning, CreatedAt: created},
		},
		Total: 7,
		Skip:  0,
		Limit: 3,
	}
}

func scoresPage() *types.Page[types.Score] {
	human := 2.0
	reviewed := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	return &types.Page[types.Score]{
		Items: []types.Score{
			{
				ID:             "score-1",
				ConversationID: "conv-1",
				TurnIndex:      0,
				Scores:         map[string]any{"overall": 4.5, "helpfulness": 4.0},
			},
			{
				ID:              "score-2",
				ConversationID:  "conv-1",
				TurnIndex:       1,
				Scores:          map[string]any{"overall": 4.2},
				HumanScore:      &human,
				HumanComment:    "judge missed a | hallucination",
				HumanReviewedAt: &reviewed,
			},
		},
		Total: 2,
		Skip:  0,
		Limit: 20,
	}
}

func TestGenerateRunsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := report.GenerateRunsJSON(&buf, runsPage()); err != nil {
		t.Fatalf("GenerateRunsJSON: %v", err)
	}

	var got report.RunsJSON
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.Summary.Completed != 1 || got.Summary.Failed != 1 || got.Summary.Running != 1 || got.Summary.Pending != 0 {
		t.Errorf("summary = %+v, want completed=1 failed=1 running=1 pending=0", got.Summary)
	}
	if !got.HasMore {
		t.Error("expected has_more with 3 of 7 shown")
	}
	if got.HasPrevious {
		t.Error("expected has_previous=false at skip=0")
	}
	if len(got.Runs) != 3 {
		t.Errorf("runs = %d, want 3", len(got.Runs))
	}
}

func TestGenerateScoresJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := report.GenerateScoresJSON(&buf, "run-1", scoresPage()); err != nil {
		t.Fatalf("GenerateScoresJSON: %v", err)
	}

	var got report.ScoresJSON
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.RunID != "run-1" {
		t.Errorf("run_id = %q, want run-1", got.RunID)
	}
	if len(got.Scores) != 2 {
		t.Fatalf("scores = %d, want 2", len(got.Scores))
	}

	// Unreviewed score shows the judge's overall value.
	if got.Scores[0].Effective != 4.5 || got.Scores[0].Band != "good" {
		t.Errorf("score-1 effective=%v band=%q, want 4.5/good", got.Scores[0].Effective, got.Scores[0].Band)
	}
	if got.Scores[0].Reviewed {
		t.Error("score-1 should not be marked reviewed")
	}

	// Human override displaces the judge value and changes the band.
	if got.Scores[1].Effective != 2.0 || got.Scores[1].Band != "poor" {
		t.Errorf("score-2 effective=%v band=%q, want 2.0/poor", got.Scores[1].Effective, got.Scores[1].Band)
	}
	if !got.Scores[1].Reviewed {
		t.Error("score-2 should be marked reviewed")
	}
}

func TestGenerateRunsMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := report.GenerateRunsMarkdown(&buf, runsPage()); err != nil {
		t.Fatalf("GenerateRunsMarkdown: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"## Evaluation Runs",
		"**Showing:** 1-3 of 7",
		"**Completed:** 1",
		"| run-1 |",
		"✅ completed",
		"❌ failed",
		"⏳ running",
		"2026-03-14 09:30",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateScoresMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := report.GenerateScoresMarkdown(&buf, "run-1", scoresPage()); err != nil {
		t.Fatalf("GenerateScoresMarkdown: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"## Scores for Run run-1",
		"**Reviewed:** 1/2",
		"🟢 good",
		"🔴 poor",
		// Pipes inside comments must not break the table.
		`judge missed a \| hallucination`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "| 4.50 | 🟢 good | 4.5 |") {
		t.Error("unreviewed score should show '-' in the human column")
	}
}
