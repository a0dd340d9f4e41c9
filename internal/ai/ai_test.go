package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jimezsa/jobpilot/internal/models"
	"google.golang.org/genai"
)

type fakeModels struct {
	text string
	err  error

	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

func TestResumeParserSendsDocumentInline(t *testing.T) {
	fake := &fakeModels{text: `{
  "name": "Ada Lovelace",
  "email": "ada@example.com",
  "location": "Stockholm",
  "skills": ["Go", " ", "PostgreSQL"],
  "experience": [{"company": "Acme", "title": "Engineer", "duration": "2020-2024"}]
}`}
	parser := NewResumeParser(&Gemini{models: fake, model: "gemini-test"})

	profile, err := parser.Parse(context.Background(), []byte("%PDF-1.7"), "application/pdf")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := models.Profile{
		Name:       "Ada Lovelace",
		Email:      "ada@example.com",
		Location:   "Stockholm",
		Skills:     []string{"Go", "PostgreSQL"},
		Experience: []models.Position{{Company: "Acme", Title: "Engineer", Duration: "2020-2024"}},
	}
	if diff := cmp.Diff(want, profile); diff != "" {
		t.Fatalf("profile mismatch (-want +got):\n%s", diff)
	}

	if fake.model != "gemini-test" {
		t.Fatalf("unexpected model %q", fake.model)
	}
	if fake.config == nil || fake.config.ResponseMIMEType != "application/json" || fake.config.ResponseSchema == nil {
		t.Fatalf("expected structured json config, got %+v", fake.config)
	}
	parts := fake.contents[0].Parts
	if len(parts) != 2 || parts[0].InlineData == nil || parts[0].InlineData.MIMEType != "application/pdf" {
		t.Fatalf("expected inline pdf part first, got %+v", parts)
	}
}

func TestResumeParserTextDocument(t *testing.T) {
	fake := &fakeModels{text: "```json\n{\"name\": \"Bo\", \"skills\": []}\n```"}
	parser := NewResumeParser(&Gemini{models: fake, model: "m"})

	profile, err := parser.Parse(context.Background(), []byte("Bo, Go developer"), "text/plain")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if profile.Name != "Bo" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if part := fake.contents[0].Parts[0]; part.InlineData != nil || part.Text != "Bo, Go developer" {
		t.Fatalf("expected text part, got %+v", part)
	}
}

func TestResumeParserErrors(t *testing.T) {
	parser := NewResumeParser(&Gemini{models: &fakeModels{text: "not json"}, model: "m"})
	if _, err := parser.Parse(context.Background(), []byte("x"), "text/plain"); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := parser.Parse(context.Background(), nil, "text/plain"); err == nil {
		t.Fatalf("expected empty document error")
	}

	failing := NewResumeParser(&Gemini{models: &fakeModels{err: errors.New("quota")}, model: "m"})
	if _, err := failing.Parse(context.Background(), []byte("x"), "application/pdf"); err == nil {
		t.Fatalf("expected upstream error")
	}
}

func TestResumeMIMEType(t *testing.T) {
	cases := map[string]string{
		"cv.PDF":         "application/pdf",
		"resume.txt":     "text/plain",
		"resume.v2.docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
	for path, want := range cases {
		got, err := ResumeMIMEType(path)
		if err != nil || got != want {
			t.Fatalf("ResumeMIMEType(%q) = %q, %v", path, got, err)
		}
	}
	if _, err := ResumeMIMEType("photo.png"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestCoverLetter(t *testing.T) {
	fake := &fakeModels{text: "  Dear team,\n\nHire me.  "}
	writer := NewCoverLetterWriter(&Gemini{models: fake, model: "m"})
	profile := models.Profile{
		Name:       "Ada",
		Skills:     []string{"Go", "SQL"},
		Experience: []models.Position{{Company: "Acme", Title: "Engineer"}},
	}
	listing := models.Listing{Title: "Backend Engineer", Company: "Beta", Description: "APIs"}

	letter, err := writer.CoverLetter(context.Background(), profile, listing)
	if err != nil {
		t.Fatalf("CoverLetter: %v", err)
	}
	if letter != "Dear team,\n\nHire me." {
		t.Fatalf("unexpected letter %q", letter)
	}

	prompt := fake.contents[0].Parts[0].Text
	for _, want := range []string{"Name: Ada", "Skills: Go, SQL", "Experience: Engineer at Acme", "Title: Backend Engineer", "Company: Beta"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestCoverLetterUnavailable(t *testing.T) {
	for _, fake := range []*fakeModels{{err: errors.New("503")}, {text: "   "}} {
		writer := NewCoverLetterWriter(&Gemini{models: fake, model: "m"})
		_, err := writer.CoverLetter(context.Background(), models.Profile{}, models.Listing{})
		if !errors.Is(err, ErrCoverLetterUnavailable) {
			t.Fatalf("expected ErrCoverLetterUnavailable, got %v", err)
		}
	}
}
