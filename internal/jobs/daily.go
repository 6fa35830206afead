package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"ncaam/ingestion/internal/pipeline"
)

// DailySummary is the combined result of the daily update sequence.
type DailySummary struct {
	Runs     []*pipeline.Summary
	Total    pipeline.Summary
	Duration time.Duration
}

// Daily runs games over the last days days, then predictions, then odds,
// so the newly stored games are eligible for the later two. The sequence
// stops at the first run that returns an error.
func Daily(ctx context.Context, runner *pipeline.Runner, catalog *Catalog, days int) (*DailySummary, error) {
	start := time.Now()
	summary := &DailySummary{}

	for _, job := range []pipeline.Job{
		catalog.DailyGamesJob(days),
		catalog.PredictionsJob(),
		catalog.OddsJob(),
	} {
		run, err := runner.Run(ctx, job)
		if err != nil {
			summary.Duration = time.Since(start)
			return summary, err
		}
		summary.Runs = append(summary.Runs, run)
		summary.Total.Add(run)
	}
	summary.Duration = time.Since(start)

	event := log.Info().
		Int("days", days).
		Int64("api_calls", summary.Total.APICalls).
		Int("errors", summary.Total.Errors).
		Dur("duration", summary.Duration)
	for _, run := range summary.Runs {
		event = event.Int(run.Job+"_added", run.RecordsAdded)
	}
	event.Msg("Daily update complete")

	return summary, nil
}
