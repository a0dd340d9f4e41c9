package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ApplyCmd struct {
	ListingID  string `arg:"" help:"Listing id from the last search (see the id column)."`
	ShowLetter bool   `name:"show-letter" help:"Print the cover letter."`
}

func (a *ApplyCmd) Run(ctx *Context) error {
	id := strings.TrimSpace(a.ListingID)
	if id == "" {
		return fmt.Errorf("listing id is required")
	}

	repo, closeRepo, err := ctx.openRepository()
	if err != nil {
		return err
	}
	defer closeRepo()

	runCtx := ctx.runContext()
	profile, err := repo.Profile(runCtx)
	if err != nil {
		return err
	}
	listing, ok, err := repo.FindListing(runCtx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("listing %q not found in the last search results", id)
	}

	orchestrator, err := ctx.newOrchestrator(repo)
	if err != nil {
		return err
	}
	result, err := orchestrator.Apply(runCtx, profile, listing, false)
	if err != nil {
		return err
	}

	if ctx.JSONOutput {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Application)
	}

	switch {
	case result.AlreadyApplied:
		ctx.UI.Infof("Already applied to %s at %s on %s", listing.Title, listing.Company, result.Application.AppliedAt.Format("2006-01-02"))
		return nil
	case result.PersistErr != nil:
		return fmt.Errorf("application for %s was not saved: %w", id, result.PersistErr)
	}

	if result.LetterFallback {
		ctx.UI.Warnf("Cover letter generation unavailable; used the template letter.")
	}
	ctx.UI.Successf("Applied to %s at %s (%s)", listing.Title, listing.Company, ctx.UI.ScoreText(listing.MatchScore))
	if a.ShowLetter {
		_, err := fmt.Fprintf(ctx.Out, "\n%s\n", result.Application.CoverLetter)
		return err
	}
	return nil
}
