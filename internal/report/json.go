// Package report renders evaluation runs and scores for console output,
// as JSON for piping and as Markdown for sharing.
package report

import (
	"github.com/segmentio/encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/anonymeye/apex-platform/internal/review"
	"github.com/anonymeye/apex-platform/pkg/types"
)

// RunsJSON is the machine-readable runs listing.
type RunsJSON struct {
	Version     string                `json:"version"`
	GeneratedAt string                `json:"generated_at"`
	Runs        []types.EvaluationRun `json:"runs"`
	Summary     RunsSummary           `json:"summary"`
	Total       int                   `json:"total"`
	Skip        int                   `json:"skip"`
	Limit       int                   `json:"limit"`
	HasMore     bool                  `json:"has_more"`
	HasPrevious bool                  `json:"has_previous"`
}

// RunsSummary counts runs per status in the current window.
type RunsSummary struct {
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

const reportVersion = "1.0"

// GenerateRunsJSON writes a JSON runs report for one page to w.
func GenerateRunsJSON(w io.Writer, page *types.Page[types.EvaluationRun]) error {
	r := RunsJSON{
		Version:     reportVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Runs:        page.Items,
		Total:       page.Total,
		Skip:        page.Skip,
		Limit:       page.Limit,
		HasMore:     page.HasMore(),
		HasPrevious: page.HasPrevious(),
	}
	for _, run := range page.Items {
		switch run.Status {
		case types.RunPending:
			r.Summary.Pending++
		case types.RunRunning:
			r.Summary.Running++
		case types.RunCompleted:
			r.Summary.Completed++
		case types.RunFailed:
			r.Summary.Failed++
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode runs report: %w", err)
	}
	return nil
}

// ScoreRow is one score flattened for output: the effective value (human
// override wins) plus its badge band.
type ScoreRow struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id"`
	TurnIndex      int            `json:"turn_index"`
	Dimensions     map[string]any `json:"dimensions"`
	Effective      float64        `json:"effective_score"`
	Band           string         `json:"band"`
	HumanScore     *float64       `json:"human_score,omitempty"`
	HumanComment   string         `json:"human_comment,omitempty"`
	Reviewed       bool           `json:"reviewed"`
}

// ScoresJSON is the machine-readable scores listing for one run.
type ScoresJSON struct {
	Version     string     `json:"version"`
	GeneratedAt string     `json:"generated_at"`
	RunID       string     `json:"run_id"`
	Scores      []ScoreRow `json:"scores"`
	Total       int        `json:"total"`
	Skip        int        `json:"skip"`
	Limit       int        `json:"limit"`
	HasMore     bool       `json:"has_more"`
	HasPrevious bool       `json:"has_previous"`
}

// GenerateScoresJSON writes a JSON scores report for one page to w.
func GenerateScoresJSON(w io.Writer, runID string, page *types.Page[types.Score]) error {
	r := ScoresJSON{
		Version:     reportVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		RunID:       runID,
		Scores:      make([]ScoreRow, 0, len(page.Items)),
		Total:       page.Total,
		Skip:        page.Skip,
		Limit:       page.Limit,
		HasMore:     page.HasMore(),
		HasPrevious: page.HasPrevious(),
	}
	for _, s := range page.Items {
		r.Scores = append(r.Scores, scoreRow(s))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode scores report: %w", err)
	}
	return nil
}

func scoreRow(s types.Score) ScoreRow {
	effective := review.EffectiveScore(primaryDimension(s.Scores), s.HumanScore)
	return ScoreRow{
		ID:             s.ID,
		ConversationID: s.ConversationID,
		TurnIndex:      s.TurnIndex,
		Dimensions:     s.Scores,
		Effective:      effective,
		Band:           review.BandFor(effective),
		HumanScore:     s.HumanScore,
		HumanComment:   s.HumanComment,
		Reviewed:       s.HumanReviewedAt != nil,
	}
}

// primaryDimension picks the judge's overall value: the "overall" dimension
// when present, otherwise the mean of all numeric dimensions.
func primaryDimension(dims map[string]any) float64 {
	if v, ok := asNumber(dims["overall"]); ok {
		return v
	}
	var sum float64
	var n int
	for _, raw := range dims {
		if v, ok := asNumber(raw); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
