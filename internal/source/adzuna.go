package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jimezsa/jobpilot/internal/models"
	"github.com/jimezsa/jobpilot/internal/network"
)

const adzunaBaseURL = "https://api.adzuna.com/v1/api/jobs"

// Adzuna queries the Adzuna search API.
type Adzuna struct {
	client         *network.Client
	appID          string
	appKey         string
	country        string
	resultsPerPage int
}

func NewAdzuna(client *network.Client, appID, appKey, country string, resultsPerPage int) *Adzuna {
	return &Adzuna{
		client:         client,
		appID:          appID,
		appKey:         appKey,
		country:        strings.ToLower(strings.TrimSpace(country)),
		resultsPerPage: resultsPerPage,
	}
}

func (a *Adzuna) Name() string {
	return SiteAdzuna
}

func (a *Adzuna) Search(ctx context.Context, params models.SearchParams) ([]models.Listing, error) {
	body, err := a.client.GetBody(ctx, a.buildURL(params), map[string]string{"accept": "application/json"})
	if err != nil {
		return nil, unavailable(SiteAdzuna, err)
	}
	listings, err := parseAdzuna(body)
	if err != nil {
		return nil, unavailable(SiteAdzuna, err)
	}
	return limitListings(listings, params.Limit), nil
}

func (a *Adzuna) buildURL(params models.SearchParams) string {
	values := url.Values{}
	values.Set("app_id", a.appID)
	values.Set("app_key", a.appKey)
	values.Set("results_per_page", strconv.Itoa(a.resultsPerPage))
	values.Set("what", params.Query)
	if params.Location != "" {
		values.Set("where", params.Location)
	}
	values.Set("content-type", "application/json")
	return fmt.Sprintf("%s/%s/search/%d?%s", adzunaBaseURL, a.country, pageOrFirst(params.Page), values.Encode())
}

type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

type adzunaResult struct {
	ID           flexString `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	RedirectURL  string     `json:"redirect_url"`
	Created      string     `json:"created"`
	ContractTime string     `json:"contract_time"`
	SalaryMin    flexFloat  `json:"salary_min"`
	SalaryMax    flexFloat  `json:"salary_max"`
	Company      struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
}

func parseAdzuna(body []byte) ([]models.Listing, error) {
	var resp adzunaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode adzuna response: %w", err)
	}

	listings := make([]models.Listing, 0, len(resp.Results))
	for _, result := range resp.Results {
		listings = append(listings, adzunaListing(result))
	}
	return listings, nil
}

func adzunaListing(r adzunaResult) models.Listing {
	listing := models.Listing{
		ID:          SiteAdzuna + ":" + string(r.ID),
		Source:      SourceTagAdzuna,
		Title:       r.Title,
		Company:     r.Company.DisplayName,
		Location:    r.Location.DisplayName,
		URL:         r.RedirectURL,
		JobType:     contractTime(r.ContractTime),
		SalaryMin:   float64(r.SalaryMin),
		SalaryMax:   float64(r.SalaryMax),
		Description: r.Description,
	}
	if ts, err := parsePostedAt(r.Created); err == nil {
		listing.PostedAt = ts
	}
	return finalize(listing)
}

func contractTime(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return "Full-time"
	case "full_time":
		return "Full-time"
	case "part_time":
		return "Part-time"
	default:
		return value
	}
}
