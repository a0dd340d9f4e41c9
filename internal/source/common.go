package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/jobpilot/internal/models"
)

// finalize applies the normalization every adapter shares: cleaned
// description, extracted skills and the remote flag.
func finalize(listing models.Listing) models.Listing {
	listing.Title = cleanText(listing.Title)
	listing.Company = cleanText(listing.Company)
	listing.Location = cleanText(listing.Location)
	listing.Description = cleanDescription(listing.Description)
	listing.RequiredSkills = ExtractSkills(listing.Description)
	if !listing.Remote {
		listing.Remote = isRemote(listing.Location)
	}
	return listing
}

// cleanDescription strips markup from a board description.
func cleanDescription(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "<") {
		return cleanText(raw)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return cleanText(raw)
	}
	var parts []string
	collectText(doc.Find("body"), &parts)
	return strings.Join(parts, " ")
}

func collectText(sel *goquery.Selection, parts *[]string) {
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		switch goquery.NodeName(node) {
		case "#text":
			if text := cleanText(node.Text()); text != "" {
				*parts = append(*parts, text)
			}
		case "script", "style":
		default:
			collectText(node, parts)
		}
	})
}

func cleanText(value string) string {
	value = html.UnescapeString(value)
	return strings.Join(strings.Fields(value), " ")
}

func isRemote(location string) bool {
	return strings.Contains(strings.ToLower(location), "remote")
}

// matchesQuery reports whether title satisfies a query of the form
// "a OR b OR c". An empty query matches everything.
func matchesQuery(title string, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	title = strings.ToLower(title)
	for _, term := range splitQuery(query) {
		if strings.Contains(title, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

func splitQuery(query string) []string {
	fields := strings.Fields(query)
	var (
		terms   []string
		current []string
	)
	for _, field := range fields {
		if field == "OR" {
			if len(current) > 0 {
				terms = append(terms, strings.Join(current, " "))
			}
			current = nil
			continue
		}
		current = append(current, field)
	}
	if len(current) > 0 {
		terms = append(terms, strings.Join(current, " "))
	}
	return terms
}

func joinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		parts = append(parts, value)
	}
	return strings.Join(parts, sep)
}

func parsePostedAt(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02",
		"2006-01-02T15:04:05-0700",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %s", value)
}

func limitListings(listings []models.Listing, limit int) []models.Listing {
	if limit <= 0 || len(listings) <= limit {
		return listings
	}
	return listings[:limit]
}

func pageOrFirst(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// flexString accepts ids that boards encode either as strings or numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexFloat accepts salaries encoded as numbers, numeric strings or null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}
