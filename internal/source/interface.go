package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/jimezsa/jobpilot/internal/models"
)

// ErrSourceUnavailable marks a board that could not be queried or whose
// response could not be decoded.
var ErrSourceUnavailable = errors.New("source unavailable")

// Adapter queries one job board and returns canonical listings.
type Adapter interface {
	Name() string
	Search(ctx context.Context, params models.SearchParams) ([]models.Listing, error)
}

func unavailable(site string, err error) error {
	return fmt.Errorf("%s: %w: %w", site, ErrSourceUnavailable, err)
}
