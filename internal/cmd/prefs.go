package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jimezsa/jobpilot/internal/models"
	"gopkg.in/yaml.v3"
)

type PrefsCmd struct {
	Set  PrefsSetCmd  `cmd:"" help:"Update preferences from a file and/or flags."`
	Show PrefsShowCmd `cmd:"" help:"Print the stored preferences."`
}

type PrefsSetCmd struct {
	File      string   `help:"YAML or JSON preferences file; replaces the stored preferences."`
	Reset     bool     `help:"Start from the default preferences."`
	Title     []string `name:"title" help:"Desired job title (repeatable, replaces the list)."`
	Location  string   `help:"Preferred location."`
	Remote    string   `help:"Accept remote roles: yes or no." enum:",yes,no" default:""`
	SalaryMin float64  `name:"salary-min" help:"Minimum salary."`
	SalaryMax float64  `name:"salary-max" help:"Maximum salary."`
	Language  []string `name:"language" help:"Working language (repeatable, replaces the list)."`
	Type      []string `name:"type" help:"Employment type such as Full-time (repeatable, replaces the list)."`
}

type PrefsShowCmd struct{}

func (p *PrefsSetCmd) Run(ctx *Context) error {
	repo, closeRepo, err := ctx.openRepository()
	if err != nil {
		return err
	}
	defer closeRepo()

	runCtx := ctx.runContext()
	prefs, _, err := repo.Preferences(runCtx)
	if err != nil {
		return err
	}
	if p.Reset {
		prefs = models.DefaultPreferences()
	}
	if p.File != "" {
		prefs, err = loadPreferencesFile(p.File)
		if err != nil {
			return err
		}
	}
	p.apply(&prefs)

	if prefs.SalaryMin > 0 && prefs.SalaryMax > 0 && prefs.SalaryMin > prefs.SalaryMax {
		return fmt.Errorf("salary-min %.0f is above salary-max %.0f", prefs.SalaryMin, prefs.SalaryMax)
	}
	if err := repo.SavePreferences(runCtx, prefs); err != nil {
		return fmt.Errorf("store preferences: %w", err)
	}
	if !ctx.JSONOutput {
		ctx.UI.Successf("Preferences saved.")
	}
	return writePreferences(ctx, prefs)
}

// apply overlays the flags that were set.
func (p *PrefsSetCmd) apply(prefs *models.Preferences) {
	if titles := cleanList(p.Title); len(titles) > 0 {
		prefs.JobTitles = titles
	}
	if loc := strings.TrimSpace(p.Location); loc != "" {
		prefs.Location = loc
	}
	switch p.Remote {
	case "yes":
		prefs.Remote = true
	case "no":
		prefs.Remote = false
	}
	if p.SalaryMin > 0 {
		prefs.SalaryMin = p.SalaryMin
	}
	if p.SalaryMax > 0 {
		prefs.SalaryMax = p.SalaryMax
	}
	if languages := cleanList(p.Language); len(languages) > 0 {
		prefs.Languages = languages
	}
	if types := cleanList(p.Type); len(types) > 0 {
		prefs.EmploymentType = types
	}
}

func (p *PrefsShowCmd) Run(ctx *Context) error {
	repo, closeRepo, err := ctx.openRepository()
	if err != nil {
		return err
	}
	defer closeRepo()

	prefs, found, err := repo.Preferences(ctx.runContext())
	if err != nil {
		return err
	}
	if !found && !ctx.JSONOutput {
		ctx.UI.Infof("No preferences saved yet; showing defaults.")
	}
	return writePreferences(ctx, prefs)
}

// loadPreferencesFile reads .json files with the stored field names and
// anything else as YAML.
func loadPreferencesFile(path string) (models.Preferences, error) {
	var prefs models.Preferences
	data, err := os.ReadFile(path)
	if err != nil {
		return prefs, fmt.Errorf("read preferences file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &prefs)
	} else {
		err = yaml.Unmarshal(data, &prefs)
	}
	if err != nil {
		return prefs, fmt.Errorf("parse preferences file %q: %w", path, err)
	}
	prefs.JobTitles = cleanList(prefs.JobTitles)
	prefs.Languages = cleanList(prefs.Languages)
	prefs.EmploymentType = cleanList(prefs.EmploymentType)
	return prefs, nil
}

func writePreferences(ctx *Context, prefs models.Preferences) error {
	if ctx.JSONOutput {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(prefs)
	}
	enc := yaml.NewEncoder(ctx.Out)
	enc.SetIndent(2)
	if err := enc.Encode(prefs); err != nil {
		return err
	}
	return enc.Close()
}

func cleanList(values []string) []string {
	var out []string
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}
