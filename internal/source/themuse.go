package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jimezsa/jobpilot/internal/models"
	"github.com/jimezsa/jobpilot/internal/network"
)

const theMuseURL = "https://www.themuse.com/api/public/jobs"

// TheMuse queries The Muse public jobs API. The API has no keyword search,
// so results are filtered by title locally.
type TheMuse struct {
	client *network.Client
	apiKey string
}

func NewTheMuse(client *network.Client, apiKey string) *TheMuse {
	return &TheMuse{client: client, apiKey: apiKey}
}

func (m *TheMuse) Name() string {
	return SiteTheMuse
}

func (m *TheMuse) Search(ctx context.Context, params models.SearchParams) ([]models.Listing, error) {
	body, err := m.client.GetBody(ctx, m.buildURL(params), map[string]string{"accept": "application/json"})
	if err != nil {
		return nil, unavailable(SiteTheMuse, err)
	}
	listings, err := parseTheMuse(body, params.Query)
	if err != nil {
		return nil, unavailable(SiteTheMuse, err)
	}
	return limitListings(listings, params.Limit), nil
}

func (m *TheMuse) buildURL(params models.SearchParams) string {
	values := url.Values{}
	// The Muse pages are zero-based.
	values.Set("page", strconv.Itoa(pageOrFirst(params.Page)-1))
	if params.Location != "" {
		values.Set("location", params.Location)
	}
	if m.apiKey != "" {
		values.Set("api_key", m.apiKey)
	}
	return theMuseURL + "?" + values.Encode()
}

type theMuseResponse struct {
	Page      int             `json:"page"`
	PageCount int             `json:"page_count"`
	Results   []theMuseResult `json:"results"`
}

type theMuseResult struct {
	ID              flexString `json:"id"`
	Name            string     `json:"name"`
	Contents        string     `json:"contents"`
	PublicationDate string     `json:"publication_date"`
	Type            string     `json:"type"`
	Company         struct {
		Name string `json:"name"`
	} `json:"company"`
	Locations []struct {
		Name string `json:"name"`
	} `json:"locations"`
	Refs struct {
		LandingPage string `json:"landing_page"`
	} `json:"refs"`
}

func parseTheMuse(body []byte, query string) ([]models.Listing, error) {
	var resp theMuseResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode the muse response: %w", err)
	}

	listings := make([]models.Listing, 0, len(resp.Results))
	for _, result := range resp.Results {
		if !matchesQuery(result.Name, query) {
			continue
		}
		listings = append(listings, theMuseListing(result))
	}
	return listings, nil
}

func theMuseListing(r theMuseResult) models.Listing {
	locations := make([]string, 0, len(r.Locations))
	for _, loc := range r.Locations {
		locations = append(locations, loc.Name)
	}
	listing := models.Listing{
		ID:          SiteTheMuse + ":" + string(r.ID),
		Source:      SourceTagTheMuse,
		Title:       r.Name,
		Company:     r.Company.Name,
		Location:    joinNonEmpty("; ", locations...),
		URL:         r.Refs.LandingPage,
		JobType:     r.Type,
		Description: r.Contents,
	}
	if ts, err := parsePostedAt(r.PublicationDate); err == nil {
		listing.PostedAt = ts
	}
	return finalize(listing)
}
