// Package state is the typed view of the records jobpilot keeps in a store.
package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/jimezsa/jobpilot/internal/models"
	"github.com/jimezsa/jobpilot/internal/store"
)

const (
	KeyProfile      = "resume-data"
	KeyPreferences  = "preferences"
	KeyListings     = "jobs"
	KeyApplications = "applications"
)

var (
	ErrNoProfile           = errors.New("no profile stored; run `jobpilot resume parse` first")
	ErrApplicationNotFound = errors.New("application not found")
)

type Repository struct {
	backend store.Backend
}

func New(backend store.Backend) *Repository {
	return &Repository{backend: backend}
}

func (r *Repository) Profile(ctx context.Context) (models.Profile, error) {
	var profile models.Profile
	err := store.GetJSON(ctx, r.backend, KeyProfile, &profile)
	if errors.Is(err, store.ErrNotFound) {
		return profile, ErrNoProfile
	}
	return profile, err
}

func (r *Repository) SaveProfile(ctx context.Context, profile models.Profile) error {
	return store.SetJSON(ctx, r.backend, KeyProfile, profile)
}

// Preferences returns the stored preferences, or the defaults with found
// false when none were saved.
func (r *Repository) Preferences(ctx context.Context) (models.Preferences, bool, error) {
	var prefs models.Preferences
	err := store.GetJSON(ctx, r.backend, KeyPreferences, &prefs)
	if errors.Is(err, store.ErrNotFound) {
		return models.DefaultPreferences(), false, nil
	}
	if err != nil {
		return models.DefaultPreferences(), false, err
	}
	return prefs, true, nil
}

func (r *Repository) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	return store.SetJSON(ctx, r.backend, KeyPreferences, prefs)
}

// Listings returns the ranked listings from the last search.
func (r *Repository) Listings(ctx context.Context) ([]models.ScoredListing, error) {
	var listings []models.ScoredListing
	err := store.GetJSON(ctx, r.backend, KeyListings, &listings)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return listings, err
}

func (r *Repository) SaveListings(ctx context.Context, listings []models.ScoredListing) error {
	if listings == nil {
		listings = []models.ScoredListing{}
	}
	return store.SetJSON(ctx, r.backend, KeyListings, listings)
}

// FindListing looks a listing up by id in the last search.
func (r *Repository) FindListing(ctx context.Context, id string) (models.ScoredListing, bool, error) {
	listings, err := r.Listings(ctx)
	if err != nil {
		return models.ScoredListing{}, false, err
	}
	for _, listing := range listings {
		if listing.ID == id {
			return listing, true, nil
		}
	}
	return models.ScoredListing{}, false, nil
}

func (r *Repository) Applications(ctx context.Context) ([]models.Application, error) {
	var apps []models.Application
	err := store.GetJSON(ctx, r.backend, KeyApplications, &apps)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return apps, err
}

// AppliedIDs returns the set of listing ids that already have an application.
func (r *Repository) AppliedIDs(ctx context.Context) (map[string]bool, error) {
	apps, err := r.Applications(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(apps))
	for _, app := range apps {
		ids[app.ListingID] = true
	}
	return ids, nil
}

// AddApplication appends app unless an application for the same listing is
// already stored. The check and the append happen under one store update.
// Backends may run the update function more than once; only the last
// attempt decides the result.
func (r *Repository) AddApplication(ctx context.Context, app models.Application) (bool, error) {
	added := false
	err := store.UpdateJSON(ctx, r.backend, KeyApplications, func(apps *[]models.Application) error {
		added = false
		for _, existing := range *apps {
			if existing.ListingID == app.ListingID {
				return store.ErrNoChange
			}
		}
		*apps = append(*apps, app)
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// UpdateApplication applies fn to the application with the given id.
func (r *Repository) UpdateApplication(ctx context.Context, id string, fn func(*models.Application) error) (models.Application, error) {
	var updated models.Application
	err := store.UpdateJSON(ctx, r.backend, KeyApplications, func(apps *[]models.Application) error {
		for i := range *apps {
			if (*apps)[i].ID != id {
				continue
			}
			if err := fn(&(*apps)[i]); err != nil {
				return err
			}
			updated = (*apps)[i]
			return nil
		}
		return fmt.Errorf("%w: %s", ErrApplicationNotFound, id)
	})
	return updated, err
}
