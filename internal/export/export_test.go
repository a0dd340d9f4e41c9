package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jimezsa/jobpilot/internal/models"
)

func sampleListings() []models.ScoredListing {
	return []models.ScoredListing{
		{
			Listing: models.Listing{
				ID:             "adzuna:1",
				Source:         "Adzuna",
				Title:          "Go Developer",
				Company:        "Acme",
				Location:       "Stockholm",
				URL:            "https://www.example.com/jobs/1",
				SalaryMin:      50000,
				SalaryMax:      65000,
				RequiredSkills: []string{"Docker", "AWS"},
				PostedAt:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			},
			MatchScore:   92,
			MatchFactors: []models.Factor{{Name: "Skills Match", Score: 40, Details: "2/2 skills matched"}},
		},
	}
}

func TestWriteListingsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteListings(&buf, sampleListings(), FormatCSV, WriteOptions{}); err != nil {
		t.Fatalf("WriteListings: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := [][]string{
		listingHeader(),
		{"adzuna:1", "92", "Adzuna", "Go Developer", "Acme", "Stockholm", "false", "", "50000", "65000", "Docker;AWS", "https://www.example.com/jobs/1", "2026-01-02T03:04:05Z"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Fatalf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteListingsJSONKeepsMatchFields(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteListings(&buf, sampleListings(), FormatJSON, WriteOptions{}); err != nil {
		t.Fatalf("WriteListings: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded[0]["matchScore"].(float64) != 92 || decoded[0]["id"] != "adzuna:1" {
		t.Fatalf("unexpected json: %v", decoded[0])
	}
}

func TestWriteListingsJSONOmitsUnknownPostedDate(t *testing.T) {
	listings := sampleListings()
	listings = append(listings, models.ScoredListing{Listing: models.Listing{ID: "careers:2", Title: "SRE"}})

	var buf bytes.Buffer
	if err := WriteListings(&buf, listings, FormatJSON, WriteOptions{}); err != nil {
		t.Fatalf("WriteListings: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := decoded[0]["postedDate"]; !ok {
		t.Fatalf("postedDate missing for dated listing: %v", decoded[0])
	}
	if _, ok := decoded[1]["postedDate"]; ok {
		t.Fatalf("postedDate present for undated listing: %v", decoded[1])
	}
}

func TestWriteListingsTableAndMarkdown(t *testing.T) {
	var table bytes.Buffer
	if err := WriteListings(&table, sampleListings(), FormatTable, WriteOptions{}); err != nil {
		t.Fatalf("table: %v", err)
	}
	for _, want := range []string{"score", "92%", "50000-65000", "https://www.example.com/jobs/1"} {
		if !strings.Contains(table.String(), want) {
			t.Fatalf("table missing %q:\n%s", want, table.String())
		}
	}

	var md bytes.Buffer
	if err := WriteListings(&md, sampleListings(), FormatMarkdown, WriteOptions{}); err != nil {
		t.Fatalf("markdown: %v", err)
	}
	for _, want := range []string{"- **Go Developer** (Acme): 92% match", "Skills Match: 40 (2/2 skills matched)", "[Open listing](<https://www.example.com/jobs/1>)"} {
		if !strings.Contains(md.String(), want) {
			t.Fatalf("markdown missing %q:\n%s", want, md.String())
		}
	}

	var empty bytes.Buffer
	if err := WriteListings(&empty, nil, FormatMarkdown, WriteOptions{}); err != nil || empty.String() != "No results.\n" {
		t.Fatalf("unexpected empty markdown %q (%v)", empty.String(), err)
	}
}

func TestWriteApplicationsTSV(t *testing.T) {
	apps := []models.Application{{
		ID:          "app-1",
		ListingID:   "adzuna:1",
		Job:         sampleListings()[0],
		Status:      models.StatusInterview,
		AppliedAt:   time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
		AutoApplied: true,
	}}
	var buf bytes.Buffer
	if err := WriteApplications(&buf, apps, FormatTSV, WriteOptions{}); err != nil {
		t.Fatalf("WriteApplications: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[1], "app-1\tadzuna:1\tInterview\t2026-01-03T00:00:00Z\ttrue\t92\t") {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

func TestShortURLLabel(t *testing.T) {
	if got := shortURLLabel("https://www.example.com/jobs/1?ref=x"); got != "example.com/jobs/1" {
		t.Fatalf("shortURLLabel = %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("Markdown"); err != nil || f != FormatMarkdown {
		t.Fatalf("ParseFormat(markdown) = %q, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for xml")
	}
}
