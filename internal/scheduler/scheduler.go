// Package scheduler repeats a pipeline run on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context)

// Scheduler wraps robfig/cron. Overlapping runs are skipped.
type Scheduler struct {
	cron *cron.Cron
	spec string
	log  zerolog.Logger
}

// New validates spec ("@every 6h", "0 */6 * * *", ...) and builds a scheduler.
func New(spec string, log zerolog.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	log = log.With().Str("component", "scheduler").Logger()
	logger := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		spec: spec,
		log:  log,
	}, nil
}

func (s *Scheduler) Spec() string {
	return s.spec
}

// Run executes job once immediately, then on every tick until ctx is done.
// It waits for a running job to finish before returning.
func (s *Scheduler) Run(ctx context.Context, job Job) error {
	if _, err := s.cron.AddFunc(s.spec, func() { job(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.log.Info().Str("spec", s.spec).Msg("scheduler started")
	job(ctx)

	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
	return nil
}

// Next returns when the schedule fires next, if it is running.
func (s *Scheduler) Next() (entry cron.Entry, ok bool) {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return cron.Entry{}, false
	}
	return entries[0], true
}

type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
