package aggregate

import (
	"strings"

	"github.com/jimezsa/jobpilot/internal/models"
)

// Key builds the dedup key: lower-cased title, "-", lower-cased company.
func Key(title, company string) string {
	return strings.ToLower(title) + "-" + strings.ToLower(company)
}

// Dedupe keeps the first listing seen for each key, preserving order.
func Dedupe(listings []models.Listing) []models.Listing {
	seen := make(map[string]struct{}, len(listings))
	out := make([]models.Listing, 0, len(listings))
	for _, listing := range listings {
		key := Key(listing.Title, listing.Company)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, listing)
	}
	return out
}

// Diff returns the listings in current whose key does not occur in previous.
func Diff(current []models.Listing, previous []models.ScoredListing) []models.Listing {
	previousKeys := make(map[string]struct{}, len(previous))
	for _, listing := range previous {
		previousKeys[Key(listing.Title, listing.Company)] = struct{}{}
	}

	fresh := make([]models.Listing, 0, len(current))
	for _, listing := range current {
		if _, exists := previousKeys[Key(listing.Title, listing.Company)]; exists {
			continue
		}
		fresh = append(fresh, listing)
	}
	return fresh
}
