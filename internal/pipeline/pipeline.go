// Package pipeline runs one search: aggregate, rank, store, auto-apply.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jimezsa/jobpilot/internal/aggregate"
	"github.com/jimezsa/jobpilot/internal/apply"
	"github.com/jimezsa/jobpilot/internal/models"
	"github.com/jimezsa/jobpilot/internal/scoring"
	"github.com/rs/zerolog"
)

const (
	fallbackQuery    = "software engineer"
	fallbackLocation = "Stockholm"
)

type Searcher interface {
	SearchAll(ctx context.Context, query, location string) ([]models.Listing, aggregate.Report)
}

type AutoApplier interface {
	AutoApply(ctx context.Context, profile models.Profile, ranked []models.ScoredListing) (apply.AutoReport, error)
}

type Repository interface {
	Profile(ctx context.Context) (models.Profile, error)
	Preferences(ctx context.Context) (models.Preferences, bool, error)
	Listings(ctx context.Context) ([]models.ScoredListing, error)
	SaveListings(ctx context.Context, listings []models.ScoredListing) error
}

// Defaults fill the query and location when neither the caller nor the
// preferences provide one.
type Defaults struct {
	Query    string
	Location string
}

type Options struct {
	Query     string
	Location  string
	AutoApply bool
}

// Report describes a completed run. Problems lists every non-fatal issue.
type Report struct {
	Query    string
	Location string
	Started  time.Time
	Took     time.Duration

	Search   aggregate.Report
	Ranked   []models.ScoredListing
	NewCount int

	PersistErr error
	AutoApply  *apply.AutoReport
	Problems   []string
}

type Pipeline struct {
	repo     Repository
	search   Searcher
	applier  AutoApplier
	defaults Defaults
	log      zerolog.Logger
}

func New(repo Repository, search Searcher, applier AutoApplier, defaults Defaults, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		repo:     repo,
		search:   search,
		applier:  applier,
		defaults: defaults,
		log:      log.With().Str("component", "pipeline").Logger(),
	}
}

// Run executes one search. Only a missing profile stops it; everything else
// is recorded in the report.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Report, error) {
	report := Report{Started: time.Now()}

	profile, err := p.repo.Profile(ctx)
	if err != nil {
		return report, err
	}

	prefs, _, err := p.repo.Preferences(ctx)
	if err != nil {
		p.problem(&report, err, "preferences unreadable, using defaults")
		prefs = models.DefaultPreferences()
	}

	report.Query = p.query(opts, prefs)
	report.Location = p.location(opts, prefs)
	log := p.log.With().Str("query", report.Query).Str("location", report.Location).Logger()
	log.Info().Msg("run started")

	listings, searchReport := p.search.SearchAll(ctx, report.Query, report.Location)
	report.Search = searchReport
	for _, failed := range searchReport.Failed() {
		report.Problems = append(report.Problems, fmt.Sprintf("source %s: %v", failed.Source, failed.Err))
	}

	report.Ranked = scoring.Rank(profile, listings, prefs)

	previous, err := p.repo.Listings(ctx)
	if err != nil {
		p.problem(&report, err, "previous listings unreadable")
	}
	report.NewCount = len(aggregate.Diff(listings, previous))

	if err := p.repo.SaveListings(ctx, report.Ranked); err != nil {
		report.PersistErr = err
		p.problem(&report, err, "listings not stored")
	}

	if opts.AutoApply && p.applier != nil {
		auto, err := p.applier.AutoApply(ctx, profile, report.Ranked)
		if err != nil {
			p.problem(&report, err, "auto-apply failed")
		} else {
			report.AutoApply = &auto
			if auto.Err != nil {
				p.problem(&report, auto.Err, "auto-apply stopped early")
			}
			for _, result := range auto.Results {
				if result.PersistErr != nil {
					p.problem(&report, result.PersistErr, "application "+result.Application.ListingID+" not stored")
				}
				if result.LetterFallback {
					report.Problems = append(report.Problems, "template cover letter used for "+result.Application.ListingID)
				}
			}
		}
	}

	report.Took = time.Since(report.Started)
	log.Info().
		Int("listings", len(report.Ranked)).
		Int("new", report.NewCount).
		Int("problems", len(report.Problems)).
		Dur("took", report.Took).
		Msg("run complete")
	return report, nil
}

func (p *Pipeline) problem(report *Report, err error, msg string) {
	p.log.Warn().Err(err).Msg(msg)
	report.Problems = append(report.Problems, fmt.Sprintf("%s: %v", msg, err))
}

func (p *Pipeline) query(opts Options, prefs models.Preferences) string {
	if q := strings.TrimSpace(opts.Query); q != "" {
		return q
	}
	if titles := prefs.Titles(); len(titles) > 0 {
		return strings.Join(titles, " OR ")
	}
	if q := strings.TrimSpace(p.defaults.Query); q != "" {
		return q
	}
	return fallbackQuery
}

func (p *Pipeline) location(opts Options, prefs models.Preferences) string {
	if loc := strings.TrimSpace(opts.Location); loc != "" {
		return loc
	}
	if loc := strings.TrimSpace(prefs.Location); loc != "" {
		return loc
	}
	if loc := strings.TrimSpace(p.defaults.Location); loc != "" {
		return loc
	}
	return fallbackLocation
}
