package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/jobpilot/internal/models"
	"github.com/jimezsa/jobpilot/internal/network"
)

// pageFetcher is the part of *network.Client the careers adapter uses.
type pageFetcher interface {
	GetBody(ctx context.Context, target string, headers map[string]string) ([]byte, error)
}

// Careers reads schema.org JobPosting JSON-LD from configured career pages.
type Careers struct {
	client pageFetcher
	pages  []string
}

func NewCareers(client *network.Client, pages []string) *Careers {
	return &Careers{client: client, pages: append([]string{}, pages...)}
}

func (c *Careers) Name() string {
	return SiteCareers
}

// Search fetches every page in order. Pages that fail are skipped; the
// adapter only fails when no page could be read.
func (c *Careers) Search(ctx context.Context, params models.SearchParams) ([]models.Listing, error) {
	var (
		listings []models.Listing
		errs     []error
	)
	for _, page := range c.pages {
		if err := ctx.Err(); err != nil {
			return nil, unavailable(SiteCareers, err)
		}
		body, err := c.client.GetBody(ctx, page, map[string]string{
			"accept":          "text/html,application/xhtml+xml",
			"accept-language": "en-US,en;q=0.9",
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", page, err))
			continue
		}
		found, err := parseCareersPage(body, page, params.Query)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", page, err))
			continue
		}
		listings = append(listings, found...)
	}
	if len(errs) > 0 && len(errs) == len(c.pages) {
		return nil, unavailable(SiteCareers, errors.Join(errs...))
	}
	return limitListings(listings, params.Limit), nil
}

func parseCareersPage(body []byte, pageURL string, query string) ([]models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}

	var listings []models.Listing
	seen := map[string]struct{}{}
	doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		data, err := decodeJSONLD(s.Text())
		if err != nil {
			return
		}
		for _, listing := range postingsFromJSONLD(data) {
			if !matchesQuery(listing.Title, query) {
				continue
			}
			listing.URL = absoluteURL(pageURL, listing.URL)
			if listing.URL == "" {
				listing.URL = pageURL
			}
			key := listing.URL + "|" + strings.ToLower(listing.Title)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			listing.ID = SiteCareers + ":" + postingID(listing)
			listings = append(listings, finalize(listing))
		}
	})
	return listings, nil
}

func decodeJSONLD(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "<!--")
	raw = strings.TrimSuffix(raw, "-->")
	raw = strings.ReplaceAll(raw, "\u2028", "")
	raw = strings.ReplaceAll(raw, "\u2029", "")
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("empty json-ld block")
	}

	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	return data, nil
}

func postingsFromJSONLD(data any) []models.Listing {
	var out []models.Listing

	switch value := data.(type) {
	case []any:
		for _, item := range value {
			out = append(out, postingsFromJSONLD(item)...)
		}
	case map[string]any:
		switch strings.ToLower(stringValue(value["@type"])) {
		case "jobposting":
			return append(out, listingFromPosting(value))
		case "itemlist":
			out = append(out, postingsFromJSONLD(value["itemListElement"])...)
		case "listitem":
			out = append(out, postingsFromJSONLD(value["item"])...)
		}
		if graph, ok := value["@graph"]; ok {
			out = append(out, postingsFromJSONLD(graph)...)
		}
		if main, ok := value["mainEntity"]; ok {
			out = append(out, postingsFromJSONLD(main)...)
		}
	}

	return out
}

func listingFromPosting(value map[string]any) models.Listing {
	listing := models.Listing{
		Source:      SourceTagCareers,
		Title:       stringValue(value["title"], value["name"]),
		Company:     stringValue(mapValue(value["hiringOrganization"], "name"), value["hiringOrganization"]),
		URL:         stringValue(value["url"], value["@id"]),
		JobType:     stringValue(value["employmentType"]),
		Description: stringValue(value["description"]),
		Location:    locationFromJSONLD(value["jobLocation"]),
		Remote:      strings.EqualFold(stringValue(value["jobLocationType"]), "TELECOMMUTE"),
	}
	if ids, ok := value["identifier"]; ok {
		listing.ID = stringValue(mapValue(ids, "value"), ids)
	}
	listing.SalaryMin, listing.SalaryMax = salaryFromJSONLD(value["baseSalary"])
	if ts, err := parsePostedAt(stringValue(value["datePosted"])); err == nil {
		listing.PostedAt = ts
	}
	return listing
}

func postingID(listing models.Listing) string {
	if listing.ID != "" {
		return listing.ID
	}
	return listing.URL
}

// salaryFromJSONLD reads a MonetaryAmount. A single value fills both ends.
func salaryFromJSONLD(value any) (float64, float64) {
	switch v := value.(type) {
	case map[string]any:
		amount := v["value"]
		if inner, ok := amount.(map[string]any); ok {
			if single, ok := numberValue(inner["value"]); ok {
				return single, single
			}
			lo, _ := numberValue(inner["minValue"])
			hi, _ := numberValue(inner["maxValue"])
			return lo, hi
		}
		if single, ok := numberValue(amount); ok {
			return single, single
		}
	case float64:
		return v, v
	}
	return 0, 0
}

func numberValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func locationFromJSONLD(value any) string {
	switch v := value.(type) {
	case []any:
		var parts []string
		for _, item := range v {
			if loc := locationFromJSONLD(item); loc != "" {
				parts = append(parts, loc)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		if address, ok := v["address"].(map[string]any); ok {
			return joinAddress(address)
		}
		return joinAddress(v)
	case string:
		return v
	}
	return ""
}

func joinAddress(value map[string]any) string {
	return joinNonEmpty(", ",
		stringValue(value["addressLocality"]),
		stringValue(value["addressRegion"]),
		stringValue(value["addressCountry"]),
	)
}

func stringValue(values ...any) string {
	for _, value := range values {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				if s := stringValue(item); s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, ", ")
			}
		case map[string]any:
			if name := stringValue(v["name"]); name != "" {
				return name
			}
		}
	}
	return ""
}

func mapValue(value any, key string) any {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	return m[key]
}

func absoluteURL(base string, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
