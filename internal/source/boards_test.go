package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jimezsa/jobpilot/internal/models"
)

func TestAdzunaBuildURL(t *testing.T) {
	a := NewAdzuna(nil, "id-1", "key-1", "SE", 20)
	raw := a.buildURL(models.SearchParams{Query: "golang", Location: "Stockholm", Page: 2})

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if u.Host != "api.adzuna.com" || u.Path != "/v1/api/jobs/se/search/2" {
		t.Fatalf("unexpected endpoint: %s", raw)
	}
	q := u.Query()
	for key, want := range map[string]string{
		"app_id":           "id-1",
		"app_key":          "key-1",
		"results_per_page": "20",
		"what":             "golang",
		"where":            "Stockholm",
	} {
		if got := q.Get(key); got != want {
			t.Fatalf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestParseAdzuna(t *testing.T) {
	body := []byte(`{
  "count": 1,
  "results": [{
    "id": 4242,
    "title": "Senior Go Developer",
    "description": "We use Docker and AWS.",
    "redirect_url": "https://www.adzuna.se/land/ad/4242",
    "created": "2026-01-02T10:00:00Z",
    "contract_time": "full_time",
    "salary_min": 50000,
    "salary_max": "65000.5",
    "company": {"display_name": "Acme"},
    "location": {"display_name": "Stockholm, Sweden"}
  }]
}`)

	listings, err := parseAdzuna(body)
	if err != nil {
		t.Fatalf("parseAdzuna: %v", err)
	}
	want := []models.Listing{{
		ID:             "adzuna:4242",
		Source:         SourceTagAdzuna,
		Title:          "Senior Go Developer",
		Company:        "Acme",
		Location:       "Stockholm, Sweden",
		URL:            "https://www.adzuna.se/land/ad/4242",
		JobType:        "Full-time",
		SalaryMin:      50000,
		SalaryMax:      65000.5,
		Description:    "We use Docker and AWS.",
		RequiredSkills: []string{"AWS", "Docker"},
		PostedAt:       time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
	}}
	if diff := cmp.Diff(want, listings); diff != "" {
		t.Fatalf("listing mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAdzunaInvalid(t *testing.T) {
	if _, err := parseAdzuna([]byte(`<html>`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestJSearchBuildURL(t *testing.T) {
	j := NewJSearch(nil, "k", "jsearch.p.rapidapi.com")
	u, err := url.Parse(j.buildURL(models.SearchParams{Query: "data engineer", Location: "Berlin"}))
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if u.Host != "jsearch.p.rapidapi.com" || u.Path != "/search" {
		t.Fatalf("unexpected endpoint: %s", u)
	}
	if got := u.Query().Get("query"); got != "data engineer in Berlin" {
		t.Fatalf("query = %q", got)
	}
	if got := u.Query().Get("page"); got != "1" {
		t.Fatalf("page = %q", got)
	}
}

func TestParseJSearch(t *testing.T) {
	body := []byte(`{
  "status": "OK",
  "data": [{
    "job_id": "abc==",
    "job_title": "Data Engineer",
    "employer_name": "Beta GmbH",
    "job_city": "Berlin",
    "job_country": "DE",
    "job_description": "SQL pipelines",
    "job_min_salary": null,
    "job_max_salary": 90000,
    "job_apply_link": "https://beta.example/apply",
    "job_posted_at_timestamp": 1767225600,
    "job_employment_type": "FULLTIME",
    "job_is_remote": true
  }]
}`)

	listings, err := parseJSearch(body)
	if err != nil {
		t.Fatalf("parseJSearch: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	got := listings[0]
	if got.ID != "jsearch:abc==" || got.Location != "Berlin, DE" || !got.Remote {
		t.Fatalf("unexpected listing: %+v", got)
	}
	if got.SalaryMin != 0 || got.SalaryMax != 90000 || got.HasSalary() {
		t.Fatalf("unexpected salary: %v-%v", got.SalaryMin, got.SalaryMax)
	}
	if !got.PostedAt.Equal(time.Unix(1767225600, 0)) {
		t.Fatalf("unexpected posted at: %v", got.PostedAt)
	}
	if diff := cmp.Diff([]string{"SQL"}, got.RequiredSkills); diff != "" {
		t.Fatalf("skills mismatch (-want +got):\n%s", diff)
	}
}

func TestTheMuseBuildURL(t *testing.T) {
	m := NewTheMuse(nil, "")
	u, err := url.Parse(m.buildURL(models.SearchParams{Location: "Stockholm, Sweden", Page: 1}))
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if got := u.Query().Get("page"); got != "0" {
		t.Fatalf("page = %q, want zero-based 0", got)
	}
	if u.Query().Has("api_key") {
		t.Fatalf("api_key should be omitted when unset")
	}
}

func TestParseTheMuseFiltersByQuery(t *testing.T) {
	body := []byte(`{
  "page": 0,
  "page_count": 1,
  "results": [
    {
      "id": 11,
      "name": "Backend Engineer",
      "contents": "<p>Python &amp; <strong>Django</strong></p><script>var x = 1</script>",
      "publication_date": "2026-02-01T08:00:00Z",
      "company": {"name": "Gamma"},
      "locations": [{"name": "Stockholm, Sweden"}, {"name": "Flexible / Remote"}],
      "refs": {"landing_page": "https://www.themuse.com/jobs/gamma/backend-engineer"}
    },
    {
      "id": 12,
      "name": "Account Manager",
      "contents": "Sales",
      "company": {"name": "Gamma"},
      "locations": [],
      "refs": {"landing_page": "https://www.themuse.com/jobs/gamma/account-manager"}
    }
  ]
}`)

	listings, err := parseTheMuse(body, "developer OR engineer")
	if err != nil {
		t.Fatalf("parseTheMuse: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	got := listings[0]
	if got.ID != "themuse:11" || got.Description != "Python & Django" {
		t.Fatalf("unexpected listing: %+v", got)
	}
	if got.Location != "Stockholm, Sweden; Flexible / Remote" || !got.Remote {
		t.Fatalf("unexpected location: %q remote=%v", got.Location, got.Remote)
	}
	if diff := cmp.Diff([]string{"Python", "Django"}, got.RequiredSkills); diff != "" {
		t.Fatalf("skills mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCareersPage(t *testing.T) {
	page := `
<!doctype html>
<html>
<head>
  <script type="application/ld+json">
  {
    "@context": "https://schema.org",
    "@type": "JobPosting",
    "title": "Go Developer",
    "identifier": {"@type": "PropertyValue", "value": "GO-1"},
    "hiringOrganization": {"name": "Acme"},
    "jobLocation": {"address": {"addressLocality": "Stockholm", "addressCountry": "SE"}},
    "baseSalary": {"currency": "SEK", "value": {"minValue": 55000, "maxValue": 70000}},
    "employmentType": "FULL_TIME",
    "datePosted": "2026-03-01",
    "description": "<p>Go and PostgreSQL</p>"
  }
  </script>
  <script type="application/ld+json">
  {
    "@type": "ItemList",
    "itemListElement": [
      {"@type": "ListItem", "item": {"@type": "JobPosting", "title": "Office Manager", "hiringOrganization": {"name": "Acme"}}},
      {"@type": "ListItem", "item": {"@type": "JobPosting", "title": "Senior Go Developer", "url": "/jobs/2", "hiringOrganization": "Acme", "jobLocationType": "TELECOMMUTE", "baseSalary": {"value": {"value": "60000"}}}}
    ]
  }
  </script>
  <script type="application/ld+json">not json</script>
</head>
<body></body>
</html>`

	listings, err := parseCareersPage([]byte(page), "https://acme.example/careers", "go developer")
	if err != nil {
		t.Fatalf("parseCareersPage: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d: %+v", len(listings), listings)
	}

	first := listings[0]
	if first.ID != "careers:GO-1" || first.URL != "https://acme.example/careers" {
		t.Fatalf("unexpected first listing: %+v", first)
	}
	if first.Location != "Stockholm, SE" || first.SalaryMin != 55000 || first.SalaryMax != 70000 {
		t.Fatalf("unexpected first listing fields: %+v", first)
	}
	if diff := cmp.Diff([]string{"SQL", "PostgreSQL"}, first.RequiredSkills); diff != "" {
		t.Fatalf("skills mismatch (-want +got):\n%s", diff)
	}

	second := listings[1]
	if second.ID != "careers:https://acme.example/jobs/2" || second.Company != "Acme" {
		t.Fatalf("unexpected second listing: %+v", second)
	}
	if !second.Remote || second.SalaryMin != 60000 || second.SalaryMax != 60000 {
		t.Fatalf("unexpected second listing fields: %+v", second)
	}
}

type stubPages map[string]error

func (s stubPages) GetBody(_ context.Context, target string, _ map[string]string) ([]byte, error) {
	if err := s[target]; err != nil {
		return nil, err
	}
	page := fmt.Sprintf(`<script type="application/ld+json">{"@type": "JobPosting", "title": "Go Developer", "url": %q, "hiringOrganization": "Acme"}</script>`, target+"/go")
	return []byte(page), nil
}

func TestCareersSearchSkipsFailingPages(t *testing.T) {
	pages := stubPages{
		"https://a.example/careers": nil,
		"https://b.example/careers": errors.New("http 503"),
		"https://c.example/careers": nil,
	}
	careers := &Careers{client: pages, pages: []string{"https://a.example/careers", "https://b.example/careers", "https://c.example/careers"}}

	listings, err := careers.Search(context.Background(), models.SearchParams{Query: "go"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	var ids []string
	for _, listing := range listings {
		ids = append(ids, listing.ID)
	}
	want := []string{"careers:https://a.example/careers/go", "careers:https://c.example/careers/go"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestCareersSearchFailsWhenEveryPageFails(t *testing.T) {
	pages := stubPages{
		"https://a.example/careers": errors.New("timeout"),
		"https://b.example/careers": errors.New("http 404"),
	}
	careers := &Careers{client: pages, pages: []string{"https://a.example/careers", "https://b.example/careers"}}

	_, err := careers.Search(context.Background(), models.SearchParams{Query: "go"})
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("Search error = %v, want ErrSourceUnavailable", err)
	}
}
