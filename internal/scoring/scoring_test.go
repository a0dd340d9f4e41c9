package scoring

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jimezsa/jobpilot/internal/models"
)

func TestScoreSkillsOnly(t *testing.T) {
	profile := models.Profile{Skills: []string{"JavaScript", "React"}}
	listing := models.Listing{RequiredSkills: []string{"JavaScript", "React", "AWS"}}

	got := Score(profile, listing, models.Preferences{})
	want := models.MatchResult{
		OverallScore: 27,
		Factors:      []models.Factor{{Name: FactorSkills, Score: 27, Details: "2/3 skills matched"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Score mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreFullMatch(t *testing.T) {
	profile := models.Profile{
		Location: "Stockholm",
		Skills:   []string{"Go", "PostgreSQL", "Kubernetes"},
		Experience: []models.Position{
			{Company: "A"}, {Company: "B"}, {Company: "C"}, {Company: "D"}, {Company: "E"}, {Company: "F"},
		},
	}
	listing := models.Listing{
		Title:          "Senior Backend Engineer",
		Location:       "Stockholm, Sweden",
		SalaryMin:      60000,
		RequiredSkills: []string{"SQL", "Kubernetes"},
	}
	prefs := models.Preferences{JobTitles: []string{"backend engineer"}, SalaryMin: 55000}

	got := Score(profile, listing, prefs)
	if got.OverallScore != 100 {
		t.Fatalf("expected 100, got %d (%+v)", got.OverallScore, got.Factors)
	}
	names := make([]string, 0, len(got.Factors))
	for _, f := range got.Factors {
		names = append(names, f.Name)
	}
	want := []string{FactorSkills, FactorExperience, FactorLocation, FactorSalary, FactorTitle}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("factor order mismatch (-want +got):\n%s", diff)
	}
	if got.Factors[1].Details != "6 relevant positions" || got.Factors[1].Score != 20 {
		t.Fatalf("unexpected experience factor: %+v", got.Factors[1])
	}
}

func TestScorePartialFactors(t *testing.T) {
	profile := models.Profile{
		Location:   "Gothenburg",
		Experience: []models.Position{{Company: "A"}, {Company: "B"}},
	}
	listing := models.Listing{
		Title:     "Data Analyst",
		Location:  "Malmö",
		SalaryMin: 30000,
	}
	prefs := models.Preferences{JobTitles: []string{" ", "Engineer"}, SalaryMin: 40000}

	got := Score(profile, listing, prefs)
	want := models.MatchResult{
		OverallScore: 23,
		Factors: []models.Factor{
			{Name: FactorExperience, Score: 8, Details: "2 relevant positions"},
			{Name: FactorLocation, Score: 5, Details: "Relocation needed"},
			{Name: FactorSalary, Score: 5, Details: "Below expectations"},
			{Name: FactorTitle, Score: 5, Details: "Different role"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Score mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreRemoteSatisfiesLocation(t *testing.T) {
	profile := models.Profile{Location: "Umeå"}
	cases := []struct {
		name    string
		listing models.Listing
		prefs   models.Preferences
	}{
		{"listing remote", models.Listing{Location: "Berlin", Remote: true}, models.Preferences{}},
		{"prefers remote", models.Listing{Location: "Berlin"}, models.Preferences{Remote: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(profile, tc.listing, tc.prefs)
			if got.OverallScore != 15 || got.Factors[0].Details != "Perfect match" {
				t.Fatalf("unexpected result: %+v", got)
			}
		})
	}
}

func TestScoreBounds(t *testing.T) {
	profiles := []models.Profile{
		{},
		{Skills: []string{"go"}, Location: "x", Experience: make([]models.Position, 50)},
	}
	listings := []models.Listing{
		{},
		{Title: "go", Location: "x", SalaryMin: 1, RequiredSkills: []string{"go", "golang"}},
	}
	prefsList := []models.Preferences{
		{},
		{JobTitles: []string{"go"}, SalaryMin: 1, Remote: true},
	}

	for _, p := range profiles {
		for _, l := range listings {
			for _, prefs := range prefsList {
				got := Score(p, l, prefs).OverallScore
				if got < 0 || got > 100 {
					t.Fatalf("score out of bounds: %d", got)
				}
			}
		}
	}
}

func TestRankStableDescending(t *testing.T) {
	profile := models.Profile{Skills: []string{"Python"}}
	listings := []models.Listing{
		{ID: "a", RequiredSkills: []string{"Java"}},
		{ID: "b", RequiredSkills: []string{"Python"}},
		{ID: "c", RequiredSkills: []string{"Ruby"}},
		{ID: "d", RequiredSkills: []string{"Python", "AWS"}},
	}

	ranked := Rank(profile, listings, models.Preferences{})
	var order []string
	for _, r := range ranked {
		order = append(order, r.ID)
	}
	if diff := cmp.Diff([]string{"b", "d", "a", "c"}, order); diff != "" {
		t.Fatalf("rank order mismatch (-want +got):\n%s", diff)
	}
	if ranked[0].MatchScore != 40 || ranked[1].MatchScore != 20 {
		t.Fatalf("unexpected scores: %d %d", ranked[0].MatchScore, ranked[1].MatchScore)
	}
}
