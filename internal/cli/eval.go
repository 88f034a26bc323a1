package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anonymeye/apex-platform/internal/report"
	"github.com/anonymeye/apex-platform/internal/review"
	"github.com/anonymeye/apex-platform/pkg/types"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "eval",
		Aliases: []string{"evaluation"},
		Short:   "Run and review LLM-judge evaluations",
	}

	cmd.AddCommand(newEvalRunsCmd())
	cmd.AddCommand(newEvalShowCmd())
	cmd.AddCommand(newEvalCreateCmd())
	cmd.AddCommand(newEvalScoresCmd())
	cmd.AddCommand(newEvalReviewCmd())
	return cmd
}

func newEvalRunsCmd() *cobra.Command {
	var skip, limit int
	var markdown bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List evaluation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if limit <= 0 {
				limit = app.Config.PageLimit
			}

			page, err := app.Flow.Runs(cmd.Context(), review.Pager{Skip: skip, Limit: limit})
			if err != nil {
				return err
			}
			if app.JSON {
				return report.GenerateRunsJSON(os.Stdout, page)
			}
			if markdown {
				return report.GenerateRunsMarkdown(os.Stdout, page)
			}

			rows := make([][]string, 0, len(page.Items))
			for _, run := range page.Items {
				rows = append(rows, []string{run.ID, run.Status, run.ScopeType, run.JudgeConfigID,
					fmt.Sprintf("%d", run.ScoreCount), formatTime(run.CreatedAt)})
			}
			table(os.Stdout, []string{"ID", "STATUS", "SCOPE", "JUDGE", "SCORES", "CREATED"}, rows)
			printPageFooter(page.Skip, len(page.Items), page.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "number of runs to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (default from config)")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "output a Markdown report")
	return cmd
}

func newEvalShowCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one evaluation run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			run, err := app.Flow.Run(cmd.Context(), args[0], refresh)
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(run)
			}
			fmt.Printf("Run %s\n", run.ID)
			fmt.Printf("  Status:  %s\n", run.Status)
			fmt.Printf("  Scope:   %s\n", run.ScopeType)
			fmt.Printf("  Judge:   %s\n", orDash(run.JudgeConfigID))
			fmt.Printf("  Scores:  %d\n", run.ScoreCount)
			if run.ErrorMessage != "" {
				fmt.Printf("  Error:   %s\n", run.ErrorMessage)
			}
			fmt.Printf("  Created: %s\n", formatTime(run.CreatedAt))
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and re-fetch")
	return cmd
}

func newEvalCreateCmd() *cobra.Command {
	var conversationID, judgeID, userID string
	var turnIndex int

	cmd := &cobra.Command{
		Use:   "create --conversation <id> --judge <id>",
		Short: "Start an evaluation run for one conversation turn",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			run, err := app.Flow.CreateRun(cmd.Context(), types.RunInput{
				ConversationID: conversationID,
				UserID:         userID,
				TurnIndex:      turnIndex,
				JudgeConfigID:  judgeID,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created run %s (status %s)\n", run.ID, run.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "saved conversation id")
	cmd.Flags().StringVar(&judgeID, "judge", "", "judge configuration id")
	cmd.Flags().StringVar(&userID, "user", "", "restrict to one user's turns")
	cmd.Flags().IntVar(&turnIndex, "turn", 0, "turn index within the conversation")
	cmd.MarkFlagRequired("conversation")
	cmd.MarkFlagRequired("judge")
	return cmd
}

func newEvalScoresCmd() *cobra.Command {
	var skip, limit int
	var markdown bool

	cmd := &cobra.Command{
		Use:   "scores <run-id>",
		Short: "List scores of a run with band badges and review state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if limit <= 0 {
				limit = app.Config.PageLimit
			}

			page, err := app.Flow.Scores(cmd.Context(), args[0], review.Pager{Skip: skip, Limit: limit})
			if err != nil {
				return err
			}
			if app.JSON {
				return report.GenerateScoresJSON(os.Stdout, args[0], page)
			}
			if markdown {
				return report.GenerateScoresMarkdown(os.Stdout, args[0], page)
			}

			rows := make([][]string, 0, len(page.Items))
			for _, s := range page.Items {
				effective := review.EffectiveScore(overallOf(s), s.HumanScore)
				reviewed := ""
				if s.HumanReviewedAt != nil {
					reviewed = "yes"
				}
				rows = append(rows, []string{s.ID, s.ConversationID, fmt.Sprintf("%d", s.TurnIndex),
					fmt.Sprintf("%.2f", effective), review.BandFor(effective), orDash(reviewed)})
			}
			table(os.Stdout, []string{"ID", "CONVERSATION", "TURN", "SCORE", "BAND", "REVIEWED"}, rows)
			printPageFooter(page.Skip, len(page.Items), page.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "number of scores to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (default from config)")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "output a Markdown report")
	return cmd
}

func newEvalReviewCmd() *cobra.Command {
	var scoreText, comment string

	cmd := &cobra.Command{
		Use:   "review <run-id> <score-id> --score <value>",
		Short: "Submit a human override for one score",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			updated, err := app.Flow.SubmitReview(cmd.Context(), args[0], args[1], scoreText, comment)
			if err != nil {
				return err
			}
			if updated.HumanScore != nil {
				fmt.Printf("Reviewed score %s: human score %.2f\n", updated.ID, *updated.HumanScore)
			} else {
				fmt.Printf("Reviewed score %s\n", updated.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scoreText, "score", "", "human score value")
	cmd.Flags().StringVar(&comment, "comment", "", "review comment")
	cmd.MarkFlagRequired("score")
	return cmd
}

func printPageFooter(skip, returned, total int) {
	if total == 0 {
		fmt.Println("No results")
		return
	}
	fmt.Printf("Showing %d-%d of %d", skip+1, skip+returned, total)
	if review.HasMore(skip, returned, total) {
		fmt.Printf("  (more: --skip %d)", skip+returned)
	}
	fmt.Println()
}

// overallOf extracts the judge's headline value from the per-dimension map.
func overallOf(s types.Score) float64 {
	if v, ok := s.Scores["overall"]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	var sum float64
	var n int
	for _, raw := range s.Scores {
		if f, ok := raw.(float64); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
