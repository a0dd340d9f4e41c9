package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jimezsa/jobpilot/internal/models"
	"github.com/jimezsa/jobpilot/internal/network"
)

// JSearch queries the JSearch API published on RapidAPI.
type JSearch struct {
	client *network.Client
	apiKey string
	host   string
}

func NewJSearch(client *network.Client, apiKey, host string) *JSearch {
	return &JSearch{client: client, apiKey: apiKey, host: host}
}

func (j *JSearch) Name() string {
	return SiteJSearch
}

func (j *JSearch) Search(ctx context.Context, params models.SearchParams) ([]models.Listing, error) {
	body, err := j.client.GetBody(ctx, j.buildURL(params), map[string]string{
		"accept":          "application/json",
		"X-RapidAPI-Key":  j.apiKey,
		"X-RapidAPI-Host": j.host,
	})
	if err != nil {
		return nil, unavailable(SiteJSearch, err)
	}
	listings, err := parseJSearch(body)
	if err != nil {
		return nil, unavailable(SiteJSearch, err)
	}
	return limitListings(listings, params.Limit), nil
}

func (j *JSearch) buildURL(params models.SearchParams) string {
	query := strings.TrimSpace(params.Query)
	if params.Location != "" {
		query = query + " in " + params.Location
	}
	values := url.Values{}
	values.Set("query", query)
	values.Set("page", strconv.Itoa(pageOrFirst(params.Page)))
	values.Set("num_pages", "1")
	return fmt.Sprintf("https://%s/search?%s", j.host, values.Encode())
}

type jsearchResponse struct {
	Status string          `json:"status"`
	Data   []jsearchResult `json:"data"`
}

type jsearchResult struct {
	JobID          string    `json:"job_id"`
	Title          string    `json:"job_title"`
	EmployerName   string    `json:"employer_name"`
	City           string    `json:"job_city"`
	Country        string    `json:"job_country"`
	Description    string    `json:"job_description"`
	MinSalary      flexFloat `json:"job_min_salary"`
	MaxSalary      flexFloat `json:"job_max_salary"`
	ApplyLink      string    `json:"job_apply_link"`
	PostedAtUnix   int64     `json:"job_posted_at_timestamp"`
	EmploymentType string    `json:"job_employment_type"`
	IsRemote       bool      `json:"job_is_remote"`
}

func parseJSearch(body []byte) ([]models.Listing, error) {
	var resp jsearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode jsearch response: %w", err)
	}

	listings := make([]models.Listing, 0, len(resp.Data))
	for _, result := range resp.Data {
		listings = append(listings, jsearchListing(result))
	}
	return listings, nil
}

func jsearchListing(r jsearchResult) models.Listing {
	listing := models.Listing{
		ID:          SiteJSearch + ":" + r.JobID,
		Source:      SourceTagJSearch,
		Title:       r.Title,
		Company:     r.EmployerName,
		Location:    joinNonEmpty(", ", r.City, r.Country),
		URL:         r.ApplyLink,
		Remote:      r.IsRemote,
		JobType:     r.EmploymentType,
		SalaryMin:   float64(r.MinSalary),
		SalaryMax:   float64(r.MaxSalary),
		Description: r.Description,
	}
	if r.PostedAtUnix > 0 {
		listing.PostedAt = time.Unix(r.PostedAtUnix, 0).UTC()
	}
	return finalize(listing)
}
