package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/anonymeye/apex-platform/pkg/types"
)

// GenerateRunsMarkdown writes a Markdown runs report for one page to w.
func GenerateRunsMarkdown(w io.Writer, page *types.Page[types.EvaluationRun]) error {
	var b strings.Builder

	b.WriteString("## Evaluation Runs\n\n")

	var pending, running, completed, failed int
	for _, run := range page.Items {
		switch run.Status {
		case types.RunPending:
			pending++
		case types.RunRunning:
			running++
		case types.RunCompleted:
			completed++
		case types.RunFailed:
			failed++
		}
	}
	fmt.Fprintf(&b, "**Showing:** %d-%d of %d | **Completed:** %d | **Running:** %d | **Pending:** %d | **Failed:** %d\n\n",
		page.Skip+1, page.Skip+len(page.Items), page.Total, completed, running, pending, failed)

	b.WriteString("| Run | Status | Scope | Judge | Scores | Created |\n")
	b.WriteString("|-----|--------|-------|-------|--------|--------|\n")
	for _, run := range page.Items {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d | %s |\n",
			run.ID, statusBadge(run.Status), run.ScopeType, run.JudgeConfigID,
			run.ScoreCount, run.CreatedAt.Format("2006-01-02 15:04"))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write runs report: %w", err)
	}
	return nil
}

// GenerateScoresMarkdown writes a Markdown scores report for one run to w.
func GenerateScoresMarkdown(w io.Writer, runID string, page *types.Page[types.Score]) error {
	var b strings.Builder

	fmt.Fprintf(&b, "## Scores for Run %s\n\n", runID)

	var reviewed int
	for _, s := range page.Items {
		if s.HumanReviewedAt != nil {
			reviewed++
		}
	}
	fmt.Fprintf(&b, "**Showing:** %d-%d of %d | **Reviewed:** %d/%d\n\n",
		page.Skip+1, page.Skip+len(page.Items), page.Total, reviewed, len(page.Items))

	b.WriteString("| Score | Conversation | Turn | Effective | Band | Human | Comment |\n")
	b.WriteString("|-------|--------------|------|-----------|------|-------|--------|\n")
	for _, s := range page.Items {
		row := scoreRow(s)
		human := "-"
		if row.HumanScore != nil {
			human = fmt.Sprintf("%.1f", *row.HumanScore)
		}
		comment := row.HumanComment
		if comment == "" {
			comment = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %.2f | %s | %s | %s |\n",
			row.ID, row.ConversationID, row.TurnIndex, row.Effective,
			bandBadge(row.Band), human, escapeCell(comment))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write scores report: %w", err)
	}
	return nil
}

func statusBadge(s string) string {
	switch s {
	case types.RunCompleted:
		return "✅ completed"
	case types.RunFailed:
		return "❌ failed"
	case types.RunRunning:
		return "⏳ running"
	default:
		return "• pending"
	}
}

func bandBadge(band string) string {
	switch band {
	case "good":
		return "🟢 good"
	case "mixed":
		return "🟡 mixed"
	default:
		return "🔴 poor"
	}
}

// escapeCell keeps free-form comments from breaking the table.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
