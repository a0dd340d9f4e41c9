package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jimezsa/jobpilot/internal/export"
	"github.com/jimezsa/jobpilot/internal/models"
	"github.com/jimezsa/jobpilot/internal/tracker"
)

type ApplicationsCmd struct {
	List   ApplicationsListCmd   `cmd:"" default:"withargs" help:"List applications."`
	Status ApplicationsStatusCmd `cmd:"" help:"Move an application to a new status."`
	Stats  ApplicationsStatsCmd  `cmd:"" help:"Summarize the application history."`
}

type ApplicationsListCmd struct {
	Status string `help:"Only show applications with this status (Applied, Screening, Interview, Offer, Rejected)."`
	OutputOptions
}

type ApplicationsStatusCmd struct {
	ID     string `arg:"" help:"Application id."`
	Status string `arg:"" help:"New status: Applied, Screening, Interview, Offer or Rejected."`
	Force  bool   `help:"Allow transitions outside the normal order."`
}

type ApplicationsStatsCmd struct{}

func (a *ApplicationsListCmd) Run(ctx *Context) error {
	var status models.Status
	if strings.TrimSpace(a.Status) != "" {
		parsed, err := models.ParseStatus(a.Status)
		if err != nil {
			return err
		}
		status = parsed
	}

	repo, closeRepo, err := ctx.openRepository()
	if err != nil {
		return err
	}
	defer closeRepo()

	apps, err := tracker.New(repo, ctx.Logger).List(ctx.runContext(), status)
	if err != nil {
		return err
	}
	return writeOutput(ctx, a.OutputOptions, func(w io.Writer, format export.Format, opts export.WriteOptions) error {
		return export.WriteApplications(w, apps, format, opts)
	})
}

func (a *ApplicationsStatusCmd) Run(ctx *Context) error {
	status, err := models.ParseStatus(a.Status)
	if err != nil {
		return err
	}

	repo, closeRepo, err := ctx.openRepository()
	if err != nil {
		return err
	}
	defer closeRepo()

	app, err := tracker.New(repo, ctx.Logger).Move(ctx.runContext(), strings.TrimSpace(a.ID), status, a.Force)
	if err != nil {
		return err
	}
	if ctx.JSONOutput {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(app)
	}
	ctx.UI.Successf("%s at %s is now %s", app.Job.Title, app.Job.Company, app.Status)
	if next := tracker.Next(app.Status); len(next) > 0 {
		ctx.UI.Printf("Next: %s", joinStatuses(next))
	}
	return nil
}

func (a *ApplicationsStatsCmd) Run(ctx *Context) error {
	repo, closeRepo, err := ctx.openRepository()
	if err != nil {
		return err
	}
	defer closeRepo()

	stats, err := tracker.New(repo, ctx.Logger).Stats(ctx.runContext())
	if err != nil {
		return err
	}
	if ctx.JSONOutput {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	return writeStats(ctx.Out, stats)
}

func writeStats(w io.Writer, stats tracker.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "total\t%d\n", stats.Total)
	for _, status := range models.Statuses {
		fmt.Fprintf(tw, "%s\t%d\n", strings.ToLower(string(status)), stats.ByStatus[status])
	}
	fmt.Fprintf(tw, "auto_applied\t%d\n", stats.AutoApplied)
	fmt.Fprintf(tw, "response_rate\t%.1f%%\n", stats.ResponseRate)
	fmt.Fprintf(tw, "average_match\t%.1f\n", stats.AverageMatch)
	for _, source := range stats.Sources {
		fmt.Fprintf(tw, "source:%s\t%d\n", source.Name, source.Count)
	}
	return tw.Flush()
}

func joinStatuses(statuses []models.Status) string {
	names := make([]string, 0, len(statuses))
	for _, status := range statuses {
		names = append(names, string(status))
	}
	return strings.Join(names, ", ")
}
