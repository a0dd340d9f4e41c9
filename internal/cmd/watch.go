package cmd

import (
	"context"
	"strings"

	"github.com/jimezsa/jobpilot/internal/pipeline"
	"github.com/jimezsa/jobpilot/internal/scheduler"
)

type WatchCmd struct {
	Schedule  string `help:"Cron spec or @every interval (default: schedule.spec from config)."`
	Query     string `help:"Search query (default: preferred job titles)."`
	Location  string `help:"Job location."`
	Sites     string `help:"Comma-separated list of sources (default: all configured)." default:"all"`
	Limit     int    `help:"Maximum results per source."`
	AutoApply bool   `help:"Auto-apply on every run (also enabled by auto_apply.enabled)."`
	Proxies   string `help:"Comma-separated proxy URLs." env:"JOBPILOT_PROXIES"`
}

func (w *WatchCmd) Run(ctx *Context) error {
	spec := strings.TrimSpace(w.Schedule)
	if spec == "" {
		spec = ctx.Config.Schedule.Spec
	}
	sched, err := scheduler.New(spec, ctx.Logger)
	if err != nil {
		return err
	}

	repo, closeRepo, err := ctx.openRepository()
	if err != nil {
		return err
	}
	defer closeRepo()

	p, err := ctx.newPipeline(repo, searchSetup{
		Sites:   splitSites(w.Sites),
		Proxies: w.Proxies,
		Limit:   w.Limit,
		Page:    1,
	})
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Query:     w.Query,
		Location:  w.Location,
		AutoApply: w.AutoApply || ctx.Config.AutoApply.Enabled,
	}
	ctx.UI.Infof("Watching on schedule %q; press Ctrl-C to stop.", sched.Spec())

	return sched.Run(ctx.runContext(), func(runCtx context.Context) {
		report, err := p.Run(runCtx, opts)
		if err != nil {
			ctx.Logger.Error().Err(err).Msg("scheduled run failed")
			return
		}
		printRunSummary(ctx, report)
		if entry, ok := sched.Next(); ok && !entry.Next.IsZero() {
			ctx.Logger.Info().Time("next", entry.Next).Msg("next run scheduled")
		}
	})
}
