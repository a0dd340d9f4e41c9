package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jimezsa/jobpilot/internal/ai"
	"github.com/jimezsa/jobpilot/internal/models"
)

type ResumeCmd struct {
	Parse ResumeParseCmd `cmd:"" help:"Extract a profile from a resume and store it."`
	Show  ResumeShowCmd  `cmd:"" help:"Print the stored profile."`
}

type ResumeParseCmd struct {
	Path string `arg:"" type:"existingfile" help:"Resume file (pdf, docx, doc, txt, md)."`
}

type ResumeShowCmd struct{}

func (r *ResumeParseCmd) Run(ctx *Context) error {
	mimeType, err := ai.ResumeMIMEType(r.Path)
	if err != nil {
		return err
	}
	document, err := os.ReadFile(r.Path)
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}

	gemini, err := ctx.newGemini()
	if err != nil {
		return err
	}
	if gemini == nil {
		return fmt.Errorf("resume parsing needs a Gemini API key (gemini.api_key or GEMINI_API_KEY)")
	}

	stop := startProgressIndicator(ctx, "Parsing resume")
	profile, err := ai.NewResumeParser(gemini).Parse(ctx.runContext(), document, mimeType)
	stop()
	if err != nil {
		return err
	}

	repo, closeRepo, err := ctx.openRepository()
	if err != nil {
		return err
	}
	defer closeRepo()
	if err := repo.SaveProfile(ctx.runContext(), profile); err != nil {
		return fmt.Errorf("store profile: %w", err)
	}

	ctx.Logger.Debug().Str("model", gemini.Model()).Int("skills", len(profile.Skills)).Msg("profile stored")
	return writeProfile(ctx, profile)
}

func (r *ResumeShowCmd) Run(ctx *Context) error {
	repo, closeRepo, err := ctx.openRepository()
	if err != nil {
		return err
	}
	defer closeRepo()

	profile, err := repo.Profile(ctx.runContext())
	if err != nil {
		return err
	}
	return writeProfile(ctx, profile)
}

func writeProfile(ctx *Context, profile models.Profile) error {
	if ctx.JSONOutput {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	}
	_, err := fmt.Fprint(ctx.Out, formatProfile(profile))
	return err
}

func formatProfile(profile models.Profile) string {
	var b strings.Builder
	line := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		fmt.Fprintf(&b, "%-10s %s\n", label+":", value)
	}

	line("Name", profile.Name)
	line("Email", profile.Email)
	line("Phone", profile.Phone)
	line("Location", profile.Location)
	line("Skills", strings.Join(profile.Skills, ", "))
	if profile.Summary != "" {
		fmt.Fprintf(&b, "\n%s\n", profile.Summary)
	}

	if len(profile.Experience) > 0 {
		b.WriteString("\nExperience:\n")
		for _, pos := range profile.Experience {
			fmt.Fprintf(&b, "  - %s at %s", pos.Title, pos.Company)
			if pos.Duration != "" {
				fmt.Fprintf(&b, " (%s)", pos.Duration)
			}
			b.WriteString("\n")
		}
	}

	if len(profile.Education) > 0 {
		b.WriteString("\nEducation:\n")
		for _, edu := range profile.Education {
			parts := []string{edu.Degree, edu.Field}
			degree := strings.TrimSpace(strings.Join(parts, " "))
			if degree == "" {
				fmt.Fprintf(&b, "  - %s", edu.Institution)
			} else {
				fmt.Fprintf(&b, "  - %s, %s", degree, edu.Institution)
			}
			if edu.Year != "" {
				fmt.Fprintf(&b, " (%s)", edu.Year)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
