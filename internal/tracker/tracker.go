// Package tracker moves applications through their status graph and
// summarizes them.
//
// Valid status graph:
//
//	Applied ──► Screening ──► Interview ──► Offer
//	   │  └─────────────────────►│            │
//	   └──────────┴──────────────┴────────────┴──► Rejected
//
// Rejected is terminal.
package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/jimezsa/jobpilot/internal/models"
	"github.com/rs/zerolog"
)

var ErrForbiddenTransition = errors.New("status transition not allowed")

var validTransitions = map[models.Status][]models.Status{
	models.StatusApplied:   {models.StatusScreening, models.StatusInterview, models.StatusRejected},
	models.StatusScreening: {models.StatusInterview, models.StatusRejected},
	models.StatusInterview: {models.StatusOffer, models.StatusRejected},
	models.StatusOffer:     {models.StatusRejected},
}

// IsTransitionAllowed reports whether from → to is permitted.
func IsTransitionAllowed(from, to models.Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Next lists the statuses reachable from s.
func Next(s models.Status) []models.Status {
	return append([]models.Status(nil), validTransitions[s]...)
}

// Store is the application persistence the tracker needs.
type Store interface {
	Applications(ctx context.Context) ([]models.Application, error)
	UpdateApplication(ctx context.Context, id string, fn func(*models.Application) error) (models.Application, error)
}

type Tracker struct {
	store Store
	log   zerolog.Logger
}

func New(store Store, log zerolog.Logger) *Tracker {
	return &Tracker{store: store, log: log.With().Str("component", "tracker").Logger()}
}

// Move changes the status of application id. force skips the graph check.
func (t *Tracker) Move(ctx context.Context, id string, to models.Status, force bool) (models.Application, error) {
	var from models.Status
	app, err := t.store.UpdateApplication(ctx, id, func(app *models.Application) error {
		from = app.Status
		if from == to {
			return nil
		}
		if !force && !IsTransitionAllowed(from, to) {
			return fmt.Errorf("%w: %s → %s", ErrForbiddenTransition, from, to)
		}
		app.Status = to
		return nil
	})
	if err != nil {
		return models.Application{}, err
	}
	t.log.Info().Str("application_id", id).Str("from", string(from)).Str("to", string(to)).Msg("status changed")
	return app, nil
}

func (t *Tracker) List(ctx context.Context, status models.Status) ([]models.Application, error) {
	apps, err := t.store.Applications(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return apps, nil
	}
	filtered := apps[:0]
	for _, app := range apps {
		if app.Status == status {
			filtered = append(filtered, app)
		}
	}
	return filtered, nil
}

func (t *Tracker) Stats(ctx context.Context) (Stats, error) {
	apps, err := t.store.Applications(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Summarize(apps), nil
}
