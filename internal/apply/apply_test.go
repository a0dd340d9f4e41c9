package apply

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jimezsa/jobpilot/internal/models"
	"github.com/jimezsa/jobpilot/internal/state"
	"github.com/jimezsa/jobpilot/internal/store"
	"github.com/rs/zerolog"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

type fakeLetters struct {
	calls int
	err   error
}

func (f *fakeLetters) CoverLetter(_ context.Context, profile models.Profile, listing models.Listing) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "Letter for " + listing.Title, nil
}

type failingApps struct{}

func (failingApps) Applications(context.Context) ([]models.Application, error) { return nil, nil }

func (failingApps) AddApplication(context.Context, models.Application) (bool, error) {
	return false, errors.New("disk full")
}

type recordingSleeper struct {
	delays []time.Duration
	cancel context.CancelFunc
	after  int
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	if r.cancel != nil && len(r.delays) == r.after {
		r.cancel()
	}
	return ctx.Err()
}

func newOrchestrator(t *testing.T, letters CoverLetters, policy Policy) (*Orchestrator, *state.Repository, *recordingSleeper) {
	t.Helper()
	repo := state.New(store.NewMemory())
	sleeper := &recordingSleeper{}
	ids := 0
	o := New(repo, letters, policy, zerolog.Nop()).WithSleeper(sleeper.sleep).WithClock(func() time.Time { return fixedNow })
	o.newID = func() string {
		ids++
		return fmt.Sprintf("app-%d", ids)
	}
	return o, repo, sleeper
}

func scored(id string, score int) models.ScoredListing {
	return models.ScoredListing{
		Listing:    models.Listing{ID: id, Title: "Engineer " + id, Company: "Acme"},
		MatchScore: score,
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	letters := &fakeLetters{}
	o, repo, _ := newOrchestrator(t, letters, DefaultPolicy())
	listing := scored("adzuna:1", 90)

	first, err := o.Apply(ctx, models.Profile{}, listing, false)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if first.AlreadyApplied || first.Application.Status != models.StatusApplied || first.Application.ID != "app-1" {
		t.Fatalf("unexpected first result: %+v", first)
	}
	if first.Application.CoverLetter != "Letter for Engineer adzuna:1" || !first.Application.AppliedAt.Equal(fixedNow) {
		t.Fatalf("unexpected application: %+v", first.Application)
	}

	second, err := o.Apply(ctx, models.Profile{}, listing, true)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if !second.AlreadyApplied || second.Application.ID != "app-1" {
		t.Fatalf("expected already applied, got %+v", second)
	}
	if letters.calls != 1 {
		t.Fatalf("expected one cover letter request, got %d", letters.calls)
	}

	apps, err := repo.Applications(ctx)
	if err != nil || len(apps) != 1 {
		t.Fatalf("expected one stored application, got %d (%v)", len(apps), err)
	}
}

func TestApplyFallsBackToTemplateLetter(t *testing.T) {
	o, _, _ := newOrchestrator(t, &fakeLetters{err: errors.New("quota")}, DefaultPolicy())
	listing := scored("x", 50)
	listing.Title = "Go Developer"
	listing.Company = "Beta"

	result, err := o.Apply(context.Background(), models.Profile{}, listing, false)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := "Dear Hiring Manager,\n\nI am writing to express my interest in the Go Developer position at Beta..."
	if !result.LetterFallback || result.Application.CoverLetter != want {
		t.Fatalf("unexpected letter %q (fallback=%v)", result.Application.CoverLetter, result.LetterFallback)
	}
}

func TestApplyReportsPersistFailure(t *testing.T) {
	o := New(failingApps{}, &fakeLetters{}, DefaultPolicy(), zerolog.Nop())
	result, err := o.Apply(context.Background(), models.Profile{}, scored("x", 99), false)
	if err != nil {
		t.Fatalf("Apply should not fail: %v", err)
	}
	if result.PersistErr == nil || result.Application.ListingID != "x" || result.Application.ID == "" {
		t.Fatalf("expected built application with persist error, got %+v", result)
	}
}

// racingApps hides the other writer's record from the first read and then
// refuses the insert, as a concurrent apply for the same listing would.
type racingApps struct {
	reads int
	other models.Application
}

func (r *racingApps) Applications(context.Context) ([]models.Application, error) {
	r.reads++
	if r.reads == 1 {
		return nil, nil
	}
	return []models.Application{r.other}, nil
}

func (r *racingApps) AddApplication(context.Context, models.Application) (bool, error) {
	return false, nil
}

func TestApplyLosingRaceReturnsStoredApplication(t *testing.T) {
	other := models.Application{ID: "stored-1", ListingID: "x", Status: models.StatusInterview}
	o := New(&racingApps{other: other}, &fakeLetters{}, DefaultPolicy(), zerolog.Nop())

	result, err := o.Apply(context.Background(), models.Profile{}, scored("x", 90), false)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !result.AlreadyApplied {
		t.Fatalf("expected AlreadyApplied, got %+v", result)
	}
	if result.Application.ID != "stored-1" || result.Application.Status != models.StatusInterview {
		t.Fatalf("expected the stored application, got %+v", result.Application)
	}
}

func TestAutoReportAppliedSkipsUnsaved(t *testing.T) {
	report := AutoReport{Results: []Result{
		{Application: models.Application{ListingID: "a"}},
		{Application: models.Application{ListingID: "b"}, AlreadyApplied: true},
		{Application: models.Application{ListingID: "c"}, PersistErr: errors.New("disk full")},
	}}
	if got := report.Applied(); got != 1 {
		t.Fatalf("Applied() = %d, want 1", got)
	}
}

func TestAutoApplyCapsBatchAndWaitsBetweenSteps(t *testing.T) {
	ctx := context.Background()
	policy := DefaultPolicy()
	o, repo, sleeper := newOrchestrator(t, &fakeLetters{}, policy)

	var ranked []models.ScoredListing
	for i := 0; i < 10; i++ {
		ranked = append(ranked, scored(fmt.Sprintf("l%d", i), 95-i))
	}

	report, err := o.AutoApply(ctx, models.Profile{}, ranked)
	if err != nil || report.Err != nil {
		t.Fatalf("AutoApply: %v / %v", err, report.Err)
	}
	if report.Eligible != 10 || report.Selected != 5 || report.Applied() != 5 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(sleeper.delays) != 4 {
		t.Fatalf("expected 4 delays, got %d", len(sleeper.delays))
	}
	for _, d := range sleeper.delays {
		if d != policy.Delay {
			t.Fatalf("unexpected delay %v", d)
		}
	}

	apps, _ := repo.Applications(ctx)
	seen := map[string]bool{}
	for i, app := range apps {
		if seen[app.ListingID] {
			t.Fatalf("duplicate application for %s", app.ListingID)
		}
		seen[app.ListingID] = true
		if want := fmt.Sprintf("l%d", i); app.ListingID != want || !app.AutoApplied {
			t.Fatalf("application %d = %+v, want listing %s", i, app, want)
		}
	}

	again, err := o.AutoApply(ctx, models.Profile{}, ranked)
	if err != nil {
		t.Fatalf("second AutoApply: %v", err)
	}
	if again.Applied() != 5 {
		t.Fatalf("second run should pick the next five, got %d", again.Applied())
	}
}

func TestAutoApplyRespectsDailyCap(t *testing.T) {
	ctx := context.Background()
	policy := DefaultPolicy()
	o, repo, _ := newOrchestrator(t, &fakeLetters{}, policy)

	for i := 0; i < 18; i++ {
		app := models.Application{ID: fmt.Sprintf("old-%d", i), ListingID: fmt.Sprintf("old-%d", i), AppliedAt: fixedNow.Add(-time.Hour), AutoApplied: true}
		if _, err := repo.AddApplication(ctx, app); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	yesterday := models.Application{ID: "y", ListingID: "y", AppliedAt: fixedNow.AddDate(0, 0, -1), AutoApplied: true}
	manual := models.Application{ID: "m", ListingID: "m", AppliedAt: fixedNow, AutoApplied: false}
	for _, app := range []models.Application{yesterday, manual} {
		if _, err := repo.AddApplication(ctx, app); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	ranked := []models.ScoredListing{scored("a", 99), scored("b", 98), scored("c", 97), scored("d", 96)}
	report, err := o.AutoApply(ctx, models.Profile{}, ranked)
	if err != nil {
		t.Fatalf("AutoApply: %v", err)
	}
	if report.RemainingToday != 2 || report.Applied() != 2 {
		t.Fatalf("expected 2 applications under the cap, got %+v", report)
	}
}

func TestAutoApplyStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	o, repo, sleeper := newOrchestrator(t, &fakeLetters{}, DefaultPolicy())
	sleeper.cancel = cancel
	sleeper.after = 2

	ranked := []models.ScoredListing{scored("a", 99), scored("b", 98), scored("c", 97), scored("d", 96)}
	report, err := o.AutoApply(ctx, models.Profile{}, ranked)
	if err != nil {
		t.Fatalf("AutoApply: %v", err)
	}
	if !errors.Is(report.Err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", report.Err)
	}
	apps, _ := repo.Applications(context.Background())
	if len(apps) != 2 {
		t.Fatalf("expected 2 applications before cancellation, got %d", len(apps))
	}
}

func TestSelect(t *testing.T) {
	ranked := []models.ScoredListing{scored("a", 99), scored("b", 90), scored("c", 85), scored("d", 84), scored("e", 95)}
	policy := Policy{Threshold: 85, BatchSize: 5}

	cases := []struct {
		name      string
		applied   map[string]bool
		remaining int
		want      []string
	}{
		{"threshold", nil, 10, []string{"a", "b", "c", "e"}},
		{"skips applied", map[string]bool{"b": true}, 10, []string{"a", "c", "e"}},
		{"remaining allowance", nil, 2, []string{"a", "b"}},
		{"cap reached", nil, 0, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Select(ranked, policy, tc.applied, tc.remaining)
			var ids []string
			for _, l := range got {
				ids = append(ids, l.ID)
			}
			if fmt.Sprint(ids) != fmt.Sprint(tc.want) {
				t.Fatalf("Select = %v, want %v", ids, tc.want)
			}
		})
	}
}

func TestSleepContextHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
