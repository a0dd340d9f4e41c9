package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jimezsa/jobpilot/internal/models"
	"google.golang.org/genai"
)

const resumePrompt = `Parse this resume and extract the candidate's details.
Use empty strings or empty lists for anything the resume does not state.
Skills are short names such as "Go", "PostgreSQL" or "Kubernetes".
List experience with the most recent position first.`

var profileSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name":     {Type: genai.TypeString},
		"email":    {Type: genai.TypeString},
		"phone":    {Type: genai.TypeString},
		"location": {Type: genai.TypeString},
		"summary":  {Type: genai.TypeString},
		"skills":   {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"experience": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"company":     {Type: genai.TypeString},
					"title":       {Type: genai.TypeString},
					"duration":    {Type: genai.TypeString},
					"description": {Type: genai.TypeString},
				},
				Required: []string{"company", "title"},
			},
		},
		"education": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"institution": {Type: genai.TypeString},
					"degree":      {Type: genai.TypeString},
					"field":       {Type: genai.TypeString},
					"year":        {Type: genai.TypeString},
				},
			},
		},
	},
	Required: []string{"name", "email", "location", "skills", "experience"},
}

var resumeMIMETypes = map[string]string{
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".md":   "text/plain",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ResumeMIMEType maps a resume file name to the MIME type sent to Gemini.
func ResumeMIMEType(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	mime, ok := resumeMIMETypes[ext]
	if !ok {
		return "", fmt.Errorf("unsupported resume format %q (use pdf, doc, docx, txt or md)", ext)
	}
	return mime, nil
}

// ResumeParser extracts a Profile from a resume document.
type ResumeParser struct {
	gemini *Gemini
}

func NewResumeParser(g *Gemini) *ResumeParser {
	return &ResumeParser{gemini: g}
}

func (p *ResumeParser) Parse(ctx context.Context, document []byte, mimeType string) (models.Profile, error) {
	if len(document) == 0 {
		return models.Profile{}, fmt.Errorf("resume document is empty")
	}

	var docPart *genai.Part
	if strings.HasPrefix(mimeType, "text/") {
		docPart = genai.NewPartFromText(string(document))
	} else {
		docPart = genai.NewPartFromBytes(document, mimeType)
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{docPart, genai.NewPartFromText(resumePrompt)}, genai.RoleUser),
	}

	text, err := p.gemini.generate(ctx, contents, &genai.GenerateContentConfig{
		CandidateCount:   1,
		ResponseMIMEType: "application/json",
		ResponseSchema:   profileSchema,
	})
	if err != nil {
		return models.Profile{}, fmt.Errorf("parse resume: %w", err)
	}

	return decodeProfile(text)
}

func decodeProfile(text string) (models.Profile, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var profile models.Profile
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &profile); err != nil {
		return models.Profile{}, fmt.Errorf("decode profile json: %w", err)
	}

	skills := profile.Skills[:0]
	for _, skill := range profile.Skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			skills = append(skills, skill)
		}
	}
	profile.Skills = skills
	return profile, nil
}
