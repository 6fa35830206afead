package jobs

import (
	"context"

	"ncaam/ingestion/internal/client"
	"ncaam/ingestion/internal/errlog"
	"ncaam/ingestion/internal/models"
	"ncaam/ingestion/internal/normalize"
	"ncaam/ingestion/internal/pipeline"
)

// RankingsJob fetches every weekly poll of every provider for a season.
// Candidates are the weekly poll links; a provider whose listing fails is
// logged and skipped. season 0 means every stored season.
func (c *Catalog) RankingsJob(season int) pipeline.Job {
	return pipeline.Job{
		Name:      "rankings",
		Operation: models.OperationRefresh,
		ErrorKind: errlog.KindRanking,
		Tables:    []models.Table{models.RankingsTable},
		Discover: func(ctx context.Context, cl *client.Client) ([]string, error) {
			years, err := c.seasons(ctx, season)
			if err != nil {
				return nil, err
			}

			var weeks []string
			for _, y := range years {
				listing, err := cl.Rankings(ctx, y)
				if err != nil {
					logSkipped("rankings", err, map[string]any{"season": y})
					continue
				}
				providers, _ := normalize.RefPage(listing)
				for _, ref := range providers {
					provider, err := cl.GetRef(ctx, ref)
					if err != nil {
						logSkipped("rankings", err, map[string]any{"season": y, "provider": ref})
						continue
					}
					weeks = append(weeks, weeklyRefs(provider)...)
				}
			}
			return weeks, nil
		},
		Fetch: func(ctx context.Context, cl *client.Client, ref string) pipeline.Outcome {
			data, err := cl.GetRef(ctx, ref)
			if err != nil {
				return absentOr(ref, err)
			}
			rows := normalize.Ranking(data)
			if len(rows) == 0 {
				return pipeline.Absent(ref)
			}
			batch := models.Batch{}
			batch.Add(models.RankingsTable.Name, records(rows)...)
			return pipeline.Complete(ref, batch)
		},
	}
}

// weeklyRefs reads the rankings[].$ref links of a poll provider document.
func weeklyRefs(provider map[string]any) []string {
	items, _ := provider["rankings"].([]any)
	var refs []string
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if ref, ok := m["$ref"].(string); ok && ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}
