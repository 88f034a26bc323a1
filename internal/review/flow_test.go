package review_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonymeye/apex-platform/internal/query"
	"github.com/anonymeye/apex-platform/internal/review"
	"github.com/anonymeye/apex-platform/pkg/types"
)

// fakeAPI records calls and serves canned pages.
type fakeAPI struct {
	runsCalls    int
	getRunCalls  int
	scoresCalls  int
	createCalls  int
	reviewCalls  int
	lastReview   types.HumanReview
	totalRuns    int
	totalScores  int
	failCreate   error
}

func (f *fakeAPI) ListRuns(_ context.Context, skip, limit int) (*types.Page[types.EvaluationRun], error) {
	f.runsCalls++
	n := limit
	if skip+n > f.totalRuns {
		n = f.totalRuns - skip
	}
	if n < 0 {
		n = 0
	}
	return &types.Page[types.EvaluationRun]{
		Items: make([]types.EvaluationRun, n),
		Total: f.totalRuns,
		Skip:  skip,
		Limit: limit,
	}, nil
}

func (f *fakeAPI) GetRun(_ context.Context, id string) (*types.EvaluationRun, error) {
	f.getRunCalls++
	return &types.EvaluationRun{ID: id, Status: types.RunRunning}, nil
}

func (f *fakeAPI) CreateRun(_ context.Context, in types.RunInput) (*types.EvaluationRun, error) {
	f.createCalls++
	if f.failCreate != nil {
		return nil, f.failCreate
	}
	return &types.EvaluationRun{ID: "run-new", Status: types.RunPending, JudgeConfigID: in.JudgeConfigID}, nil
}

func (f *fakeAPI) ListScores(_ context.Context, runID string, skip, limit int) (*types.Page[types.Score], error) {
	f.scoresCalls++
	n := limit
	if skip+n > f.totalScores {
		n = f.totalScores - skip
	}
	if n < 0 {
		n = 0
	}
	return &types.Page[types.Score]{
		Items: make([]types.Score, n),
		Total: f.totalScores,
		Skip:  skip,
		Limit: limit,
	}, nil
}

func (f *fakeAPI) SubmitReview(_ context.Context, runID, scoreID string, r types.HumanReview) (*types.Score, error) {
	f.reviewCalls++
	f.lastReview = r
	now := time.Now()
	return &types.Score{ID: scoreID, HumanScore: &r.HumanScore, HumanComment: r.HumanComment, HumanReviewedAt: &now}, nil
}

func (f *fakeAPI) ListSavedConversations(context.Context) ([]types.SavedConversation, error) {
	return []types.SavedConversation{{ID: "c1"}}, nil
}

func (f *fakeAPI) ListJudgeConfigs(context.Context) ([]types.JudgeConfig, error) {
	return []types.JudgeConfig{{ID: "j1"}}, nil
}

func newFlow(api *fakeAPI) *review.Flow {
	return review.NewFlow(api, query.New(time.Minute, nil), nil)
}

func TestParseHumanScore(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"4.5", 4.5, false},
		{" 3 ", 3, false},
		{"0", 0, false},
		{"-1.25", -1.25, false},
		{"abc", 0, true},
		{"", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"+Inf", 0, true},
		{"4.5.6", 0, true},
	}
	for _, tc := range cases {
		got, err := review.ParseHumanScore(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseHumanScore(%q) accepted, want error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseHumanScore(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseHumanScore(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPagerWindows(t *testing.T) {
	p := review.NewPager(20)

	// 100 items: 5 full pages.
	p = p.Next(20, 100)
	if p.Skip != 20 {
		t.Errorf("Skip = %d, want 20", p.Skip)
	}
	p = p.Next(20, 100)
	p = p.Next(20, 100)
	p = p.Next(20, 100)
	if p.Skip != 80 {
		t.Errorf("Skip = %d, want 80", p.Skip)
	}
	// Last page: Next must not advance past the end.
	p = p.Next(20, 100)
	if p.Skip != 80 {
		t.Errorf("Skip advanced past final page: %d", p.Skip)
	}

	p = p.Prev()
	if p.Skip != 60 {
		t.Errorf("Prev: Skip = %d, want 60", p.Skip)
	}

	// Prev clamps at zero.
	p = review.Pager{Skip: 10, Limit: 20}
	p = p.Prev()
	if p.Skip != 0 {
		t.Errorf("Prev below zero: Skip = %d, want 0", p.Skip)
	}
	p = p.Prev()
	if p.Skip != 0 {
		t.Errorf("Prev at zero moved: Skip = %d", p.Skip)
	}
}

func TestPaginationInvariants(t *testing.T) {
	// hasMore ⇔ skip + returned < total on every boundary, including the
	// final partial page.
	cases := []struct {
		skip, returned, total int
		hasMore, hasPrev      bool
	}{
		{0, 20, 45, true, false},
		{20, 20, 45, true, true},
		{40, 5, 45, false, true},
		{0, 0, 0, false, false},
		{0, 45, 45, false, false},
	}
	for _, tc := range cases {
		if got := review.HasMore(tc.skip, tc.returned, tc.total); got != tc.hasMore {
			t.Errorf("HasMore(%d,%d,%d) = %v, want %v", tc.skip, tc.returned, tc.total, got, tc.hasMore)
		}
		if got := review.HasPrevious(tc.skip); got != tc.hasPrev {
			t.Errorf("HasPrevious(%d) = %v, want %v", tc.skip, got, tc.hasPrev)
		}
	}
}

func TestCreateRunValidation(t *testing.T) {
	api := &fakeAPI{}
	flow := newFlow(api)
	ctx := context.Background()

	_, err := flow.CreateRun(ctx, types.RunInput{JudgeConfigID: "j1"})
	if !errors.Is(err, review.ErrConversationRequired) {
		t.Errorf("err = %v, want ErrConversationRequired", err)
	}
	_, err = flow.CreateRun(ctx, types.RunInput{ConversationID: "c1"})
	if !errors.Is(err, review.ErrJudgeRequired) {
		t.Errorf("err = %v, want ErrJudgeRequired", err)
	}
	if api.createCalls != 0 {
		t.Fatalf("createCalls = %d, validation must block the network call", api.createCalls)
	}

	run, err := flow.CreateRun(ctx, types.RunInput{ConversationID: "c1", JudgeConfigID: "j1"})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if run.Status != types.RunPending {
		t.Errorf("status = %q, want pending", run.Status)
	}
	if api.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1", api.createCalls)
	}
}

func TestCreateRunInvalidatesRunsCache(t *testing.T) {
	api := &fakeAPI{totalRuns: 5}
	flow := newFlow(api)
	ctx := context.Background()
	p := review.NewPager(20)

	if _, err := flow.Runs(ctx, p); err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if _, err := flow.Runs(ctx, p); err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if api.runsCalls != 1 {
		t.Fatalf("runsCalls = %d, want 1 (second read cached)", api.runsCalls)
	}

	if _, err := flow.CreateRun(ctx, types.RunInput{ConversationID: "c1", JudgeConfigID: "j1"}); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if _, err := flow.Runs(ctx, p); err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if api.runsCalls != 2 {
		t.Errorf("runsCalls = %d, want 2 (creation invalidates the list)", api.runsCalls)
	}
}

func TestRunRefreshIsScopedToOneRun(t *testing.T) {
	api := &fakeAPI{totalScores: 3}
	flow := newFlow(api)
	ctx := context.Background()
	p := review.NewPager(20)

	if _, err := flow.Run(ctx, "run-1", false); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := flow.Scores(ctx, "run-1", p); err != nil {
		t.Fatalf("Scores: %v", err)
	}
	if _, err := flow.Run(ctx, "run-1", false); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if api.getRunCalls != 1 {
		t.Fatalf("getRunCalls = %d, want 1 (second read cached)", api.getRunCalls)
	}

	// Polling a run re-reads that run only; the cached score window and
	// run listings are untouched.
	if _, err := flow.Run(ctx, "run-1", true); err != nil {
		t.Fatalf("Run(refresh): %v", err)
	}
	if api.getRunCalls != 2 {
		t.Errorf("getRunCalls = %d, want 2 (refresh bypasses the cache)", api.getRunCalls)
	}
	if _, err := flow.Scores(ctx, "run-1", p); err != nil {
		t.Fatalf("Scores: %v", err)
	}
	if api.scoresCalls != 1 {
		t.Errorf("scoresCalls = %d, want 1 (refresh must not drop score windows)", api.scoresCalls)
	}
}

func TestSubmitReviewRejectsBadScoreBeforeNetwork(t *testing.T) {
	api := &fakeAPI{}
	flow := newFlow(api)

	_, err := flow.SubmitReview(context.Background(), "run-1", "s1", "abc", "")
	if err == nil {
		t.Fatal("non-numeric score accepted")
	}
	if api.reviewCalls != 0 {
		t.Fatalf("reviewCalls = %d, rejection must happen before the network call", api.reviewCalls)
	}
}

func TestSubmitReviewStoresNumericScoreAndInvalidatesScores(t *testing.T) {
	api := &fakeAPI{totalScores: 3}
	flow := newFlow(api)
	ctx := context.Background()
	p := review.NewPager(20)

	if _, err := flow.Scores(ctx, "run-1", p); err != nil {
		t.Fatalf("Scores: %v", err)
	}

	score, err := flow.SubmitReview(ctx, "run-1", "s1", "4.5", "looks right")
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}
	if score.HumanScore == nil || *score.HumanScore != 4.5 {
		t.Fatalf("human_score = %v, want 4.5", score.HumanScore)
	}
	if api.lastReview.HumanScore != 4.5 || api.lastReview.HumanComment != "looks right" {
		t.Errorf("submitted review = %+v", api.lastReview)
	}

	if _, err := flow.Scores(ctx, "run-1", p); err != nil {
		t.Fatalf("Scores: %v", err)
	}
	if api.scoresCalls != 2 {
		t.Errorf("scoresCalls = %d, want 2 (review invalidates the run's scores)", api.scoresCalls)
	}
}

func TestBandFor(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{5, review.BandGood},
		{4.0, review.BandGood},
		{3.9, review.BandMixed},
		{2.5, review.BandMixed},
		{2.4, review.BandPoor},
		{0, review.BandPoor},
	}
	for _, tc := range cases {
		if got := review.BandFor(tc.score); got != tc.want {
			t.Errorf("BandFor(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}

	human := 1.0
	if got := review.EffectiveScore(4.5, &human); got != 1.0 {
		t.Errorf("EffectiveScore with override = %v, want 1.0", got)
	}
	if got := review.EffectiveScore(4.5, nil); got != 4.5 {
		t.Errorf("EffectiveScore without override = %v, want 4.5", got)
	}
}
