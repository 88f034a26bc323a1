package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/anonymeye/apex-platform/internal/query"
	"github.com/anonymeye/apex-platform/pkg/types"
)

// API is the slice of the backend client the review flow needs.
type API interface {
	ListRuns(ctx context.Context, skip, limit int) (*types.Page[types.EvaluationRun], error)
	GetRun(ctx context.Context, id string) (*types.EvaluationRun, error)
	CreateRun(ctx context.Context, in types.RunInput) (*types.EvaluationRun, error)
	ListScores(ctx context.Context, runID string, skip, limit int) (*types.Page[types.Score], error)
	SubmitReview(ctx context.Context, runID, scoreID string, review types.HumanReview) (*types.Score, error)
	ListSavedConversations(ctx context.Context) ([]types.SavedConversation, error)
	ListJudgeConfigs(ctx context.Context) ([]types.JudgeConfig, error)
}

// Validation errors raised before any network call.
var (
	ErrConversationRequired = errors.New("a conversation selection is required")
	ErrJudgeRequired        = errors.New("a judge selection is required")
)

// ParseHumanScore parses the free-text score field of the review panel.
// Only finite numbers are accepted; anything else blocks submission.
func ParseHumanScore(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("score must be a number, got %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("score must be a finite number, got %q", s)
	}
	return v, nil
}

// ValidateRunInput enforces the run-creation preconditions: both a
// conversation and a judge must be selected.
func ValidateRunInput(in types.RunInput) error {
	if in.ConversationID == "" {
		return ErrConversationRequired
	}
	if in.JudgeConfigID == "" {
		return ErrJudgeRequired
	}
	if in.TurnIndex < 0 {
		return fmt.Errorf("turn index must not be negative, got %d", in.TurnIndex)
	}
	return nil
}

// Flow coordinates the run/score/review operations against the cached
// data-fetching layer.
type Flow struct {
	api    API
	cache  *query.Cache
	logger *slog.Logger
}

// NewFlow creates a Flow.
func NewFlow(api API, cache *query.Cache, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{api: api, cache: cache, logger: logger}
}

// Runs returns one cached window of evaluation runs.
func (f *Flow) Runs(ctx context.Context, p Pager) (*types.Page[types.EvaluationRun], error) {
	key := query.PageKey(query.ResourceRuns, "all", p.Skip, p.Limit)
	return query.Fetch(ctx, f.cache, key, func(ctx context.Context) (*types.Page[types.EvaluationRun], error) {
		return f.api.ListRuns(ctx, p.Skip, p.Limit)
	})
}

// Run returns one cached evaluation run. Refresh bypasses the cache so the
// user can poll a pending run's status.
func (f *Flow) Run(ctx context.Context, id string, refresh bool) (*types.EvaluationRun, error) {
	key := query.GetKey(query.ResourceRuns, id)
	if refresh {
		// Only this run is re-read; cached listings and score windows
		// stay valid until a mutation touches them.
		f.cache.Forget(key)
	}
	return query.Fetch(ctx, f.cache, key, func(ctx context.Context) (*types.EvaluationRun, error) {
		return f.api.GetRun(ctx, id)
	})
}

// CreateRun validates and submits a run creation, then invalidates the runs
// listing. Nothing is sent when validation fails.
func (f *Flow) CreateRun(ctx context.Context, in types.RunInput) (*types.EvaluationRun, error) {
	if err := ValidateRunInput(in); err != nil {
		return nil, err
	}
	var created *types.EvaluationRun
	err := f.cache.Mutate(ctx, query.ResourceRuns, func(ctx context.Context) error {
		run, err := f.api.CreateRun(ctx, in)
		if err != nil {
			return err
		}
		created = run
		return nil
	})
	if err != nil {
		return nil, err
	}
	f.logger.Info("evaluation run created", "run_id", created.ID, "status", created.Status)
	return created, nil
}

// Scores returns one cached window of a run's scores.
func (f *Flow) Scores(ctx context.Context, runID string, p Pager) (*types.Page[types.Score], error) {
	key := query.PageKey(query.ResourceScores, runID, p.Skip, p.Limit)
	return query.Fetch(ctx, f.cache, key, func(ctx context.Context) (*types.Page[types.Score], error) {
		return f.api.ListScores(ctx, runID, p.Skip, p.Limit)
	})
}

// SubmitReview parses and validates the human score, then submits the
// override and invalidates the run's cached scores. Resubmitting for the
// same (run, score) simply overwrites the previous review.
func (f *Flow) SubmitReview(ctx context.Context, runID, scoreID, scoreText, comment string) (*types.Score, error) {
	value, err := ParseHumanScore(scoreText)
	if err != nil {
		return nil, err
	}
	var updated *types.Score
	err = f.cache.Mutate(ctx, query.ResourceScores, func(ctx context.Context) error {
		score, err := f.api.SubmitReview(ctx, runID, scoreID, types.HumanReview{
			HumanScore:   value,
			HumanComment: comment,
		})
		if err != nil {
			return err
		}
		updated = score
		return nil
	})
	if err != nil {
		return nil, err
	}
	f.logger.Info("human review submitted", "run_id", runID, "score_id", scoreID, "human_score", value)
	return updated, nil
}

// Conversations returns the cached saved conversations available for run
// scoping.
func (f *Flow) Conversations(ctx context.Context) ([]types.SavedConversation, error) {
	key := query.ListKey(query.ResourceConversations)
	return query.Fetch(ctx, f.cache, key, func(ctx context.Context) ([]types.SavedConversation, error) {
		return f.api.ListSavedConversations(ctx)
	})
}

// Judges returns the cached judge configs available for run creation.
func (f *Flow) Judges(ctx context.Context) ([]types.JudgeConfig, error) {
	key := query.ListKey(query.ResourceJudgeConfigs)
	return query.Fetch(ctx, f.cache, key, func(ctx context.Context) ([]types.JudgeConfig, error) {
		return f.api.ListJudgeConfigs(ctx)
	})
}
