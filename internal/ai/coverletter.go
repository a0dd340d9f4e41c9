package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jimezsa/jobpilot/internal/models"
	"google.golang.org/genai"
)

// ErrCoverLetterUnavailable is returned when no letter could be generated.
var ErrCoverLetterUnavailable = errors.New("cover letter unavailable")

// CoverLetterWriter drafts cover letters with Gemini.
type CoverLetterWriter struct {
	gemini *Gemini
}

func NewCoverLetterWriter(g *Gemini) *CoverLetterWriter {
	return &CoverLetterWriter{gemini: g}
}

func (w *CoverLetterWriter) CoverLetter(ctx context.Context, profile models.Profile, listing models.Listing) (string, error) {
	text, err := w.gemini.generate(ctx, genai.Text(coverLetterPrompt(profile, listing)), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCoverLetterUnavailable, err)
	}
	return text, nil
}

func coverLetterPrompt(profile models.Profile, listing models.Listing) string {
	var b strings.Builder
	b.WriteString("Generate a professional cover letter for this job application.\n\n")
	b.WriteString("Candidate:\n")
	fmt.Fprintf(&b, "Name: %s\n", profile.Name)
	fmt.Fprintf(&b, "Skills: %s\n", strings.Join(profile.Skills, ", "))
	if latest, ok := profile.LatestPosition(); ok {
		fmt.Fprintf(&b, "Experience: %s at %s\n", latest.Title, latest.Company)
	}
	if profile.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", profile.Summary)
	}
	b.WriteString("\nJob:\n")
	fmt.Fprintf(&b, "Title: %s\n", listing.Title)
	fmt.Fprintf(&b, "Company: %s\n", listing.Company)
	fmt.Fprintf(&b, "Description: %s\n\n", listing.Description)
	b.WriteString("Write a compelling cover letter that highlights relevant experience and skills. ")
	b.WriteString("Keep it concise (3-4 paragraphs). Return only the letter text.")
	return b.String()
}
