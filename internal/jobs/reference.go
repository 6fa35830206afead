package jobs

import (
	"context"
	"fmt"
	"strconv"

	"ncaam/ingestion/internal/client"
	"ncaam/ingestion/internal/errlog"
	"ncaam/ingestion/internal/models"
	"ncaam/ingestion/internal/normalize"
	"ncaam/ingestion/internal/pipeline"
)

// maxConferenceDepth bounds the walk down nested conference groups.
const maxConferenceDepth = 4

// SeasonsJob refreshes every season listed upstream with its season types.
func (c *Catalog) SeasonsJob() pipeline.Job {
	return pipeline.Job{
		Name:      "seasons",
		Operation: models.OperationRefresh,
		ErrorKind: errlog.KindSeason,
		Tables:    []models.Table{models.SeasonsTable, models.SeasonTypesTable},
		Discover: func(ctx context.Context, cl *client.Client) ([]string, error) {
			data, err := cl.Seasons(ctx)
			if err != nil {
				return nil, err
			}
			refs, _ := normalize.RefPage(data)
			return refs, nil
		},
		Fetch: func(ctx context.Context, cl *client.Client, ref string) pipeline.Outcome {
			data, err := cl.GetRefCached(ctx, ref)
			if err != nil {
				return pipeline.Failed(ref, err)
			}
			season, types, err := normalize.Season(data)
			if err != nil {
				return pipeline.Failed(ref, err)
			}
			batch := models.Batch{}
			batch.Add(models.SeasonsTable.Name, season)
			batch.Add(models.SeasonTypesTable.Name, records(types)...)
			return pipeline.Complete(ref, batch)
		},
	}
}

// TeamsJob replaces the current team list wholesale.
func (c *Catalog) TeamsJob() pipeline.Job {
	return pipeline.Job{
		Name:      "teams",
		Operation: models.OperationRefresh,
		ErrorKind: errlog.KindTeam,
		Tables:    []models.Table{models.TeamsTable},
		Discover: func(context.Context, *client.Client) ([]string, error) {
			return []string{"teams"}, nil
		},
		Fetch: func(ctx context.Context, cl *client.Client, id string) pipeline.Outcome {
			data, err := cl.Teams(ctx)
			if err != nil {
				return pipeline.Failed(id, err)
			}
			teams := normalize.Teams(data)
			if len(teams) == 0 {
				return pipeline.Failed(id, fmt.Errorf("team listing is empty: %w", normalize.ErrMalformed))
			}
			batch := models.Batch{}
			batch.Add(models.TeamsTable.Name, records(teams)...)
			return pipeline.Complete(id, batch)
		},
	}
}

// ConferencesJob walks the conference tree of each season, from the
// Division I root down through nested groups. season 0 means every stored
// season.
func (c *Catalog) ConferencesJob(season int) pipeline.Job {
	return pipeline.Job{
		Name:      "conferences",
		Operation: models.OperationRefresh,
		ErrorKind: errlog.KindConference,
		Tables:    []models.Table{models.ConferencesTable},
		Discover: func(ctx context.Context, _ *client.Client) ([]string, error) {
			years, err := c.seasons(ctx, season)
			if err != nil {
				return nil, err
			}
			ids := make([]string, len(years))
			for i, y := range years {
				ids[i] = strconv.Itoa(y)
			}
			return ids, nil
		},
		Fetch: func(ctx context.Context, cl *client.Client, id string) pipeline.Outcome {
			year, err := strconv.Atoi(id)
			if err != nil {
				return pipeline.Failed(id, err)
			}
			batch := models.Batch{}
			if err := c.walkConferences(ctx, cl, year, c.settings.RootGroup, 0, batch); err != nil {
				return absentOr(id, err)
			}
			return pipeline.Complete(id, batch)
		},
	}
}

func (c *Catalog) walkConferences(ctx context.Context, cl *client.Client, season int, parent string, depth int, batch models.Batch) error {
	if depth >= maxConferenceDepth {
		return nil
	}
	children, err := cl.ConferenceChildren(ctx, season, parent)
	if err != nil {
		return err
	}
	_, docs, err := followRefs(ctx, cl, children, true)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		conf, err := normalize.Conference(season, parent, doc)
		if err != nil {
			return err
		}
		batch.Add(models.ConferencesTable.Name, conf)
		if conf.HasChildren {
			if err := c.walkConferences(ctx, cl, season, conf.ID, depth+1, batch); err != nil {
				return err
			}
		}
	}
	return nil
}

// TeamSeasonsJob fetches the teams of every leaf conference of a season.
// season 0 means every stored season.
func (c *Catalog) TeamSeasonsJob(season int) pipeline.Job {
	return pipeline.Job{
		Name:      "team_seasons",
		Operation: models.OperationRefresh,
		ErrorKind: errlog.KindTeamSeason,
		Tables:    []models.Table{models.TeamSeasonsTable},
		Discover: func(ctx context.Context, _ *client.Client) ([]string, error) {
			years, err := c.seasons(ctx, season)
			if err != nil {
				return nil, err
			}
			var ids []string
			for _, y := range years {
				confs, err := c.store.LeafConferences(ctx, y)
				if err != nil {
					return nil, fmt.Errorf("failed to load conferences of %d: %w", y, err)
				}
				for _, conf := range confs {
					ids = append(ids, conf.ID())
				}
			}
			return ids, nil
		},
		Fetch: func(ctx context.Context, cl *client.Client, id string) pipeline.Outcome {
			year, conferenceID, err := splitSeasonID(id)
			if err != nil {
				return pipeline.Failed(id, err)
			}
			listing, err := cl.ConferenceTeams(ctx, year, conferenceID)
			if err != nil {
				return absentOr(id, err)
			}
			_, docs, err := followRefs(ctx, cl, listing, true)
			if err != nil {
				return pipeline.Failed(id, err)
			}
			batch := models.Batch{}
			for _, doc := range docs {
				ts, err := normalize.TeamSeason(year, conferenceID, doc)
				if err != nil {
					return pipeline.Failed(id, err)
				}
				batch.Add(models.TeamSeasonsTable.Name, ts)
			}
			return pipeline.Complete(id, batch)
		},
	}
}
