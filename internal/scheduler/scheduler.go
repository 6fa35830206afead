package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"ncaam/ingestion/internal/config"
	"ncaam/ingestion/internal/jobs"
	"ncaam/ingestion/internal/metrics"
	"ncaam/ingestion/internal/models"
	"ncaam/ingestion/internal/pipeline"
)

// Scheduler runs the daily update and the reference refresh on cron
// schedules. Runs never overlap: a tick that fires while another run is in
// progress is skipped.
type Scheduler struct {
	cfg     *config.Config
	runner  *pipeline.Runner
	catalog *jobs.Catalog
	cron    *cron.Cron
	running sync.Mutex
}

// New creates a new scheduler instance
func New(cfg *config.Config, runner *pipeline.Runner, catalog *jobs.Catalog) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		runner:  runner,
		catalog: catalog,
		cron:    cron.New(cron.WithLocation(time.UTC)),
	}
}

// Start registers both schedules and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.DailyUpdateCron, func() {
		s.exclusive("daily_update", func() error {
			_, err := s.RunDaily(ctx)
			return err
		})
	}); err != nil {
		return fmt.Errorf("failed to schedule daily update: %w", err)
	}

	if _, err := s.cron.AddFunc(s.cfg.ReferenceRefreshCron, func() {
		s.exclusive("reference_refresh", func() error {
			return s.RefreshReference(ctx)
		})
	}); err != nil {
		return fmt.Errorf("failed to schedule reference refresh: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("daily_update", s.cfg.DailyUpdateCron).
		Str("reference_refresh", s.cfg.ReferenceRefreshCron).
		Msg("Schedules registered")
	return nil
}

// Stop stops the scheduler and waits for a run in progress to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")
	<-s.cron.Stop().Done()
	log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) exclusive(name string, run func() error) {
	if !s.running.TryLock() {
		log.Warn().Str("schedule", name).Msg("Previous run still in progress, skipping tick")
		return
	}
	defer s.running.Unlock()

	log.Info().Str("schedule", name).Msg("Scheduled run starting")
	if err := run(); err != nil {
		metrics.RecordError("scheduler", name)
		log.Error().Err(err).Str("schedule", name).Msg("Scheduled run failed")
	}
}

// RunDaily runs the daily games, predictions and odds sequence.
func (s *Scheduler) RunDaily(ctx context.Context) (*jobs.DailySummary, error) {
	return jobs.Daily(ctx, s.runner, s.catalog, s.cfg.DailyLookbackDays)
}

// RefreshReference refreshes seasons and teams, then the current season's
// conferences, team seasons, rosters, coaches and rankings. A failed job
// does not stop the ones after it; the failures are returned together.
func (s *Scheduler) RefreshReference(ctx context.Context) error {
	season := models.CurrentSeason(s.catalog.Now())
	sequence := []pipeline.Job{
		s.catalog.SeasonsJob(),
		s.catalog.TeamsJob(),
		s.catalog.ConferencesJob(season),
		s.catalog.TeamSeasonsJob(season),
		s.catalog.RostersJob(season, false),
		s.catalog.CoachesJob(season, false),
		s.catalog.RankingsJob(season),
	}

	var errs error
	for _, job := range sequence {
		if err := ctx.Err(); err != nil {
			return errors.CombineErrors(errs, err)
		}
		if _, err := s.runner.Run(ctx, job); err != nil {
			log.Error().Err(err).Str("job", job.Name).Msg("Reference job failed, continuing")
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "%s", job.Name))
		}
	}
	return errs
}
