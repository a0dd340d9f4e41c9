package apply

import (
	"context"
	"time"

	"github.com/jimezsa/jobpilot/internal/models"
)

// Select picks the listings an auto-apply run may apply to: score at or
// above the threshold, not applied yet, at most BatchSize and at most
// remaining. ranked is expected in rank order.
func Select(ranked []models.ScoredListing, policy Policy, applied map[string]bool, remaining int) []models.ScoredListing {
	limit := policy.BatchSize
	if remaining < limit {
		limit = remaining
	}
	if limit <= 0 {
		return nil
	}

	selected := make([]models.ScoredListing, 0, limit)
	seen := map[string]bool{}
	for _, listing := range ranked {
		if len(selected) == limit {
			break
		}
		if listing.MatchScore < policy.Threshold || applied[listing.ID] || seen[listing.ID] {
			continue
		}
		seen[listing.ID] = true
		selected = append(selected, listing)
	}
	return selected
}

// AppliedToday counts automated applications made on the local calendar day
// of now.
func AppliedToday(apps []models.Application, now time.Time) int {
	y, m, d := now.Local().Date()
	count := 0
	for _, app := range apps {
		if !app.AutoApplied {
			continue
		}
		ay, am, ad := app.AppliedAt.Local().Date()
		if ay == y && am == m && ad == d {
			count++
		}
	}
	return count
}

// AutoReport summarizes an auto-apply run.
type AutoReport struct {
	Eligible       int
	Selected       int
	RemainingToday int
	Results        []Result
	// Err is set when the run stopped early, usually on cancellation.
	Err error
}

// Applied counts the applications created and stored by the run.
func (r AutoReport) Applied() int {
	n := 0
	for _, result := range r.Results {
		if !result.AlreadyApplied && result.PersistErr == nil {
			n++
		}
	}
	return n
}

// AutoApply applies to the selected listings one at a time, waiting the
// policy delay between consecutive applications.
func (o *Orchestrator) AutoApply(ctx context.Context, profile models.Profile, ranked []models.ScoredListing) (AutoReport, error) {
	var report AutoReport

	apps, err := o.apps.Applications(ctx)
	if err != nil {
		return report, err
	}
	applied := make(map[string]bool, len(apps))
	for _, app := range apps {
		applied[app.ListingID] = true
	}

	report.RemainingToday = o.policy.DailyCap - AppliedToday(apps, o.now())
	if report.RemainingToday < 0 {
		report.RemainingToday = 0
	}
	for _, listing := range ranked {
		if listing.MatchScore >= o.policy.Threshold && !applied[listing.ID] {
			report.Eligible++
		}
	}

	selected := Select(ranked, o.policy, applied, report.RemainingToday)
	report.Selected = len(selected)
	o.log.Info().
		Int("eligible", report.Eligible).
		Int("selected", report.Selected).
		Int("remaining_today", report.RemainingToday).
		Msg("auto-apply run")

	for i, listing := range selected {
		if i > 0 {
			if err := o.sleep(ctx, o.policy.Delay); err != nil {
				report.Err = err
				return report, nil
			}
		}
		result, err := o.Apply(ctx, profile, listing, true)
		if err != nil {
			report.Err = err
			return report, nil
		}
		report.Results = append(report.Results, result)
	}
	return report, nil
}
