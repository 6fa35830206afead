package jobs

import (
	"context"
	"fmt"
	"time"

	"ncaam/ingestion/internal/client"
	"ncaam/ingestion/internal/discovery"
	"ncaam/ingestion/internal/errlog"
	"ncaam/ingestion/internal/models"
	"ncaam/ingestion/internal/normalize"
	"ncaam/ingestion/internal/pipeline"
)

var gameTables = []models.Table{
	models.GamesTable,
	models.TeamBoxscoresTable,
	models.PlayerBoxscoresTable,
}

// GamesJob ingests completed games listed upstream for w that are not yet
// stored, with their team and player box scores.
func (c *Catalog) GamesJob(w discovery.Window, operation string) pipeline.Job {
	return pipeline.Job{
		Name:      "games",
		Operation: operation,
		ErrorKind: errlog.KindEvent,
		Tables:    gameTables,
		Discover: func(ctx context.Context, cl *client.Client) ([]string, error) {
			engine := discovery.NewEngine(cl, c.store, c.settings.EventsGroup, c.settings.EventsPageLimit)
			return engine.Candidates(ctx, w)
		},
		Fetch: fetchGame,
	}
}

// DailyGamesJob covers the last days days.
func (c *Catalog) DailyGamesJob(days int) pipeline.Job {
	return c.GamesJob(discovery.Lookback(days, c.Now()), models.OperationDailyUpdate)
}

// RangeGamesJob covers [start, end] by calendar day.
func (c *Catalog) RangeGamesJob(start, end time.Time) (pipeline.Job, error) {
	w, err := RangeWindow(start, end)
	if err != nil {
		return pipeline.Job{}, err
	}
	return c.GamesJob(w, models.OperationBackfill), nil
}

// RangeWindow covers the calendar days start through end.
func RangeWindow(start, end time.Time) (discovery.Window, error) {
	return discovery.NewWindow(start, end.AddDate(0, 0, 1))
}

// BackfillJob covers a season from the first day of startMonth to now, or
// to the end of the season when that is earlier.
func (c *Catalog) BackfillJob(season int, startMonth time.Time) (pipeline.Job, error) {
	w, err := BackfillWindow(season, startMonth, c.Now())
	if err != nil {
		return pipeline.Job{}, err
	}
	return c.GamesJob(w, models.OperationBackfill), nil
}

// BackfillWindow is the window BackfillJob covers at now. A zero startMonth
// starts in November of the year before the season; a zero season is the
// one in progress at now.
func BackfillWindow(season int, startMonth, now time.Time) (discovery.Window, error) {
	if season <= 0 {
		season = models.CurrentSeason(now)
	}
	if startMonth.IsZero() {
		startMonth = time.Date(season-1, time.November, 1, 0, 0, 0, 0, time.UTC)
	}
	start := time.Date(startMonth.Year(), startMonth.Month(), 1, 0, 0, 0, 0, time.UTC)

	end := now
	if seasonEnd := SeasonEnd(season); seasonEnd.Before(end) {
		end = seasonEnd
	}
	w, err := discovery.NewWindow(start, end)
	if err != nil {
		return discovery.Window{}, fmt.Errorf("backfill of season %d: %w", season, err)
	}
	return w, nil
}

// SeasonEnd is the instant a season gives way to the next one.
func SeasonEnd(season int) time.Time {
	return time.Date(season, time.July, 1, 0, 0, 0, 0, time.UTC)
}

// fetchGame is authoritative on completion: an unfinished game, or one
// without team box scores yet, is Incomplete and writes nothing.
func fetchGame(ctx context.Context, cl *client.Client, id string) pipeline.Outcome {
	data, err := cl.Summary(ctx, id)
	if err != nil {
		return pipeline.Failed(id, err)
	}
	detail, err := normalize.GameSummary(id, data)
	if err != nil {
		return pipeline.Failed(id, err)
	}
	if !detail.Completed || len(detail.Teams) == 0 {
		return pipeline.Incomplete(id)
	}
	return pipeline.Complete(id, detail.Batch())
}
