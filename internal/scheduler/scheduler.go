package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages background jobs
type Scheduler struct {
	cron  *cron.Cron
	chain cron.Chain
	log   zerolog.Logger
}

// New creates a new scheduler.
//
// Jobs are wrapped so a run that is still in progress when the next tick fires
// causes that tick to be skipped, and a panicking run is recovered. Recover sits
// inside SkipIfStillRunning so the skip token is returned even after a panic.
func New(log zerolog.Logger) *Scheduler {
	l := log.With().Str("component", "scheduler").Logger()
	cronLog := cron.PrintfLogger(&l)

	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		chain: cron.NewChain(
			cron.SkipIfStillRunning(cronLog),
			cron.Recover(cronLog),
		),
		log: l,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a new job with cron schedule
// Schedule examples:
//   - "0 */5 * * * *"      - Every 5 minutes
//   - "@hourly"            - Every hour
//   - "@every 30s"         - Every 30 seconds
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddJob(schedule, s.tick(job))
	if err != nil {
		return err
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// tick returns the wrapped cron job that fires for every scheduled run of job.
func (s *Scheduler) tick(job Job) cron.Job {
	return s.chain.Then(cron.FuncJob(func() {
		s.run(job)
	}))
}

// run executes one tick. A failed run is logged and otherwise ignored; the
// next tick runs regardless.
func (s *Scheduler) run(job Job) {
	s.log.Debug().Str("job", job.Name()).Msg("Running job")

	if err := job.Run(); err != nil {
		s.log.Error().
			Err(err).
			Str("job", job.Name()).
			Msg("Job failed")
		return
	}

	s.log.Debug().Str("job", job.Name()).Msg("Job completed")
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return job.Run()
}
