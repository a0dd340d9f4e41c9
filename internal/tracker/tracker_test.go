package tracker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jimezsa/jobpilot/internal/models"
	"github.com/jimezsa/jobpilot/internal/state"
	"github.com/jimezsa/jobpilot/internal/store"
	"github.com/rs/zerolog"
)

func TestIsTransitionAllowed(t *testing.T) {
	cases := []struct {
		from, to models.Status
		want     bool
	}{
		{models.StatusApplied, models.StatusScreening, true},
		{models.StatusApplied, models.StatusInterview, true},
		{models.StatusApplied, models.StatusOffer, false},
		{models.StatusScreening, models.StatusApplied, false},
		{models.StatusInterview, models.StatusOffer, true},
		{models.StatusOffer, models.StatusRejected, true},
		{models.StatusRejected, models.StatusApplied, false},
		{models.StatusRejected, models.StatusScreening, false},
	}
	for _, tc := range cases {
		if got := IsTransitionAllowed(tc.from, tc.to); got != tc.want {
			t.Fatalf("IsTransitionAllowed(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
	if len(Next(models.StatusRejected)) != 0 {
		t.Fatalf("rejected should be terminal")
	}
}

func TestMove(t *testing.T) {
	ctx := context.Background()
	repo := state.New(store.NewMemory())
	if _, err := repo.AddApplication(ctx, models.Application{ID: "a1", ListingID: "l1", Status: models.StatusApplied}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	tr := New(repo, zerolog.Nop())

	app, err := tr.Move(ctx, "a1", models.StatusScreening, false)
	if err != nil || app.Status != models.StatusScreening {
		t.Fatalf("Move: %+v %v", app, err)
	}

	if _, err := tr.Move(ctx, "a1", models.StatusApplied, false); !errors.Is(err, ErrForbiddenTransition) {
		t.Fatalf("expected forbidden transition, got %v", err)
	}
	apps, _ := repo.Applications(ctx)
	if apps[0].Status != models.StatusScreening {
		t.Fatalf("forbidden move must not write, got %s", apps[0].Status)
	}

	if app, err := tr.Move(ctx, "a1", models.StatusApplied, true); err != nil || app.Status != models.StatusApplied {
		t.Fatalf("forced move: %+v %v", app, err)
	}

	if _, err := tr.Move(ctx, "missing", models.StatusOffer, false); !errors.Is(err, state.ErrApplicationNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	app := func(status models.Status, source string, score int, auto bool) models.Application {
		return models.Application{
			Status:      status,
			AutoApplied: auto,
			Job:         models.ScoredListing{Listing: models.Listing{Source: source}, MatchScore: score},
		}
	}
	apps := []models.Application{
		app(models.StatusApplied, "Adzuna", 90, true),
		app(models.StatusScreening, "JSearch", 80, false),
		app(models.StatusApplied, "Adzuna", 85, true),
	}

	got := Summarize(apps)
	want := Stats{
		Total: 3,
		ByStatus: map[models.Status]int{
			models.StatusApplied:   2,
			models.StatusScreening: 1,
			models.StatusInterview: 0,
			models.StatusOffer:     0,
			models.StatusRejected:  0,
		},
		AutoApplied:  2,
		ResponseRate: 33.3,
		AverageMatch: 85,
		Sources:      []SourceCount{{Name: "Adzuna", Count: 2}, {Name: "JSearch", Count: 1}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Summarize mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil)
	if got.Total != 0 || got.ResponseRate != 0 || len(got.Sources) != 0 {
		t.Fatalf("unexpected empty stats: %+v", got)
	}
}
