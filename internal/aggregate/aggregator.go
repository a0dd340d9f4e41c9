package aggregate

import (
	"context"
	"time"

	"github.com/jimezsa/jobpilot/internal/models"
	"github.com/jimezsa/jobpilot/internal/source"
	"github.com/rs/zerolog"
)

// SourceOutcome records how one adapter fared during a search.
type SourceOutcome struct {
	Source   string
	Count    int
	Err      error
	Duration time.Duration
}

// Report summarizes a SearchAll call.
type Report struct {
	Sources []SourceOutcome
	// Merged is the listing count before deduplication.
	Merged int
	Unique int
}

// Failed returns the outcomes of adapters that did not contribute.
func (r Report) Failed() []SourceOutcome {
	var failed []SourceOutcome
	for _, outcome := range r.Sources {
		if outcome.Err != nil {
			failed = append(failed, outcome)
		}
	}
	return failed
}

type Options struct {
	Limit int
	Page  int
}

// Aggregator fans a query out to every adapter.
type Aggregator struct {
	adapters []source.Adapter
	opts     Options
	log      zerolog.Logger
}

func New(adapters []source.Adapter, opts Options, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		adapters: adapters,
		opts:     opts,
		log:      log.With().Str("component", "aggregate").Logger(),
	}
}

// SearchAll queries every adapter concurrently and waits for all of them.
// Adapter failures degrade to empty contributions and are only visible in
// the report. Listings are merged in adapter order and deduplicated.
func (a *Aggregator) SearchAll(ctx context.Context, query, location string) ([]models.Listing, Report) {
	params := models.SearchParams{
		Query:    query,
		Location: location,
		Page:     a.opts.Page,
		Limit:    a.opts.Limit,
	}

	type timed struct {
		listings []models.Listing
		took     time.Duration
	}

	tasks := make([]func(context.Context) (timed, error), len(a.adapters))
	for i, adapter := range a.adapters {
		adapter := adapter
		tasks[i] = func(ctx context.Context) (timed, error) {
			start := time.Now()
			listings, err := adapter.Search(ctx, params)
			return timed{listings: listings, took: time.Since(start)}, err
		}
	}

	outcomes := Settle(ctx, tasks)

	report := Report{Sources: make([]SourceOutcome, 0, len(outcomes))}
	var merged []models.Listing
	for _, outcome := range outcomes {
		name := a.adapters[outcome.Index].Name()
		entry := SourceOutcome{Source: name, Duration: outcome.Value.took}
		if !outcome.OK() {
			entry.Err = outcome.Err
			a.log.Warn().Err(outcome.Err).Str("source", name).Msg("source failed")
			report.Sources = append(report.Sources, entry)
			continue
		}
		entry.Count = len(outcome.Value.listings)
		a.log.Debug().Str("source", name).Int("count", entry.Count).Dur("took", entry.Duration).Msg("source done")
		report.Sources = append(report.Sources, entry)
		merged = append(merged, outcome.Value.listings...)
	}

	unique := Dedupe(merged)
	report.Merged = len(merged)
	report.Unique = len(unique)
	a.log.Info().Int("merged", report.Merged).Int("unique", report.Unique).Msg("search complete")
	return unique, report
}
