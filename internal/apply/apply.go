// Package apply creates applications and runs the auto-apply policy.
package apply

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jimezsa/jobpilot/internal/models"
	"github.com/rs/zerolog"
)

// CoverLetters drafts a cover letter for a listing.
type CoverLetters interface {
	CoverLetter(ctx context.Context, profile models.Profile, listing models.Listing) (string, error)
}

// Applications is the persisted application set.
type Applications interface {
	Applications(ctx context.Context) ([]models.Application, error)
	// AddApplication stores app unless the listing already has one and
	// reports whether it was added.
	AddApplication(ctx context.Context, app models.Application) (bool, error)
}

// Sleeper pauses between automated applications.
type Sleeper func(ctx context.Context, d time.Duration) error

// Policy bounds automated applications.
type Policy struct {
	Threshold int
	BatchSize int
	Delay     time.Duration
	DailyCap  int
}

// DefaultPolicy is threshold 85, five per run, two seconds apart, twenty a day.
func DefaultPolicy() Policy {
	return Policy{Threshold: 85, BatchSize: 5, Delay: 2 * time.Second, DailyCap: 20}
}

// Result describes one apply attempt.
type Result struct {
	Application    models.Application
	AlreadyApplied bool
	// LetterFallback is set when the template letter replaced a generated one.
	LetterFallback bool
	// PersistErr is set when the application was built but could not be
	// stored. The application is still returned.
	PersistErr error
}

type Orchestrator struct {
	apps    Applications
	letters CoverLetters
	policy  Policy
	log     zerolog.Logger

	sleep Sleeper
	now   func() time.Time
	newID func() string
}

func New(apps Applications, letters CoverLetters, policy Policy, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		apps:    apps,
		letters: letters,
		policy:  policy,
		log:     log.With().Str("component", "apply").Logger(),
		sleep:   sleepContext,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// WithSleeper replaces the delay between automated applications.
func (o *Orchestrator) WithSleeper(s Sleeper) *Orchestrator {
	o.sleep = s
	return o
}

// WithClock replaces the time source.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

func (o *Orchestrator) Policy() Policy {
	return o.policy
}

// Apply records an application for listing. A listing that already has an
// application is a no-op reported through Result.AlreadyApplied.
func (o *Orchestrator) Apply(ctx context.Context, profile models.Profile, listing models.ScoredListing, auto bool) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	log := o.log.With().Str("listing_id", listing.ID).Bool("auto", auto).Logger()

	existing, err := o.apps.Applications(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load applications: %w", err)
	}
	for _, app := range existing {
		if app.ListingID == listing.ID {
			log.Debug().Msg("already applied")
			return Result{Application: app, AlreadyApplied: true}, nil
		}
	}

	var result Result
	letter, err := o.coverLetter(ctx, profile, listing.Listing)
	if err != nil {
		log.Warn().Err(err).Msg("using template cover letter")
		result.LetterFallback = true
	}

	result.Application = models.Application{
		ID:          o.newID(),
		ListingID:   listing.ID,
		Job:         listing,
		Status:      models.StatusApplied,
		AppliedAt:   o.now(),
		CoverLetter: letter,
		AutoApplied: auto,
	}

	added, err := o.apps.AddApplication(ctx, result.Application)
	if err != nil {
		log.Error().Err(err).Msg("application not persisted")
		result.PersistErr = err
		return result, nil
	}
	if !added {
		log.Debug().Msg("application stored concurrently")
		result.AlreadyApplied = true
		result.LetterFallback = false
		if stored, ok := o.stored(ctx, listing.ID); ok {
			result.Application = stored
		} else {
			result.Application.ID = ""
		}
		return result, nil
	}

	log.Info().Int("score", listing.MatchScore).Str("company", listing.Company).Msg("applied")
	return result, nil
}

// stored returns the persisted application for listingID, if it can be read.
func (o *Orchestrator) stored(ctx context.Context, listingID string) (models.Application, bool) {
	apps, err := o.apps.Applications(ctx)
	if err != nil {
		o.log.Warn().Err(err).Str("listing_id", listingID).Msg("reloading applications")
		return models.Application{}, false
	}
	for _, app := range apps {
		if app.ListingID == listingID {
			return app, true
		}
	}
	return models.Application{}, false
}

func (o *Orchestrator) coverLetter(ctx context.Context, profile models.Profile, listing models.Listing) (string, error) {
	if o.letters == nil {
		return FallbackLetter(listing), fmt.Errorf("no cover letter writer configured")
	}
	letter, err := o.letters.CoverLetter(ctx, profile, listing)
	if err != nil {
		return FallbackLetter(listing), err
	}
	return letter, nil
}

// FallbackLetter is the template used when no letter could be generated.
func FallbackLetter(listing models.Listing) string {
	return fmt.Sprintf("Dear Hiring Manager,\n\nI am writing to express my interest in the %s position at %s...", listing.Title, listing.Company)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
