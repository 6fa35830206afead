package jobs

import (
	"context"
	"fmt"

	"ncaam/ingestion/internal/client"
	"ncaam/ingestion/internal/errlog"
	"ncaam/ingestion/internal/models"
	"ncaam/ingestion/internal/normalize"
	"ncaam/ingestion/internal/pipeline"
)

// RostersJob fetches the roster of every team season not yet covered by
// player_seasons. refresh refetches every team season regardless.
func (c *Catalog) RostersJob(season int, refresh bool) pipeline.Job {
	return pipeline.Job{
		Name:      "rosters",
		Operation: refreshOperation(refresh),
		ErrorKind: errlog.KindRoster,
		Tables:    []models.Table{models.PlayerSeasonsTable, models.PlayersTable},
		Discover: func(ctx context.Context, _ *client.Client) ([]string, error) {
			return c.pendingTeamSeasons(ctx, models.PlayerSeasonsTable.Name, season, refresh)
		},
		Fetch: fetchRoster,
	}
}

// CoachesJob fetches the coaches of every team season not yet covered by
// the coaches table. refresh refetches every team season regardless.
func (c *Catalog) CoachesJob(season int, refresh bool) pipeline.Job {
	return pipeline.Job{
		Name:      "coaches",
		Operation: refreshOperation(refresh),
		ErrorKind: errlog.KindCoach,
		Tables:    []models.Table{models.CoachesTable},
		Discover: func(ctx context.Context, _ *client.Client) ([]string, error) {
			return c.pendingTeamSeasons(ctx, models.CoachesTable.Name, season, refresh)
		},
		Fetch: fetchCoaches,
	}
}

func refreshOperation(refresh bool) string {
	if refresh {
		return models.OperationRefresh
	}
	return models.OperationBackfill
}

// pendingTeamSeasons diffs the team seasons of each season against the
// teams that already have rows in table, so a re-run resumes where the last
// one stopped.
func (c *Catalog) pendingTeamSeasons(ctx context.Context, table string, season int, refresh bool) ([]string, error) {
	years, err := c.seasons(ctx, season)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, y := range years {
		teams, err := c.store.TeamSeasons(ctx, y)
		if err != nil {
			return nil, fmt.Errorf("failed to load team seasons of %d: %w", y, err)
		}
		stored := map[string]struct{}{}
		if !refresh {
			stored, err = c.store.StoredTeamIDs(ctx, table, y)
			if err != nil {
				return nil, fmt.Errorf("failed to load stored %s of %d: %w", table, y, err)
			}
		}
		for _, t := range teams {
			if _, ok := stored[t.TeamID]; !ok {
				ids = append(ids, t.ID())
			}
		}
	}
	return ids, nil
}

func fetchRoster(ctx context.Context, cl *client.Client, id string) pipeline.Outcome {
	season, teamID, err := splitSeasonID(id)
	if err != nil {
		return pipeline.Failed(id, err)
	}
	listing, err := cl.TeamAthletes(ctx, season, teamID)
	if err != nil {
		return absentOr(id, err)
	}
	refs, docs, err := followRefs(ctx, cl, listing, false)
	if err != nil {
		return pipeline.Failed(id, err)
	}
	if len(docs) == 0 {
		return pipeline.Absent(id)
	}

	batch := models.Batch{}
	for i, doc := range docs {
		player, roster, err := normalize.Athlete(season, refs[i], doc)
		if err != nil {
			return pipeline.Failed(id, err)
		}
		if !roster.TeamID.Valid {
			roster.TeamID = models.NullString(teamID, true)
		}
		batch.Add(models.PlayersTable.Name, player)
		batch.Add(models.PlayerSeasonsTable.Name, roster)
	}
	return pipeline.Complete(id, batch)
}

func fetchCoaches(ctx context.Context, cl *client.Client, id string) pipeline.Outcome {
	season, teamID, err := splitSeasonID(id)
	if err != nil {
		return pipeline.Failed(id, err)
	}
	listing, err := cl.TeamCoaches(ctx, season, teamID)
	if err != nil {
		return absentOr(id, err)
	}
	_, docs, err := followRefs(ctx, cl, listing, false)
	if err != nil {
		return pipeline.Failed(id, err)
	}

	batch := models.Batch{}
	for _, doc := range docs {
		if coach := normalize.Coach(season, teamID, doc); coach != nil {
			batch.Add(models.CoachesTable.Name, coach)
		}
	}
	if batch.Count(models.CoachesTable.Name) == 0 {
		return pipeline.Absent(id)
	}
	return pipeline.Complete(id, batch)
}
