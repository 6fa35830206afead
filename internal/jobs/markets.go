package jobs

import (
	"context"

	"ncaam/ingestion/internal/client"
	"ncaam/ingestion/internal/errlog"
	"ncaam/ingestion/internal/models"
	"ncaam/ingestion/internal/normalize"
	"ncaam/ingestion/internal/pipeline"
)

// OddsJob fetches lines for stored games dated today through the odds
// window that have no odds row yet. Present rows are never re-fetched.
func (c *Catalog) OddsJob() pipeline.Job {
	return pipeline.Job{
		Name:      "odds",
		Operation: models.OperationDailyUpdate,
		ErrorKind: errlog.KindOdds,
		Tables:    []models.Table{models.OddsTable},
		Discover: func(ctx context.Context, _ *client.Client) ([]string, error) {
			from := c.today()
			to := from.AddDate(0, 0, c.settings.OddsWindowDays+1)
			return c.store.GamesMissing(ctx, models.OddsTable.Name, from, to)
		},
		Fetch: fetchOdds,
	}
}

// PredictionsJob fetches projections for stored games dated from the
// prediction lookback through the prediction window that have none yet.
func (c *Catalog) PredictionsJob() pipeline.Job {
	return pipeline.Job{
		Name:      "predictions",
		Operation: models.OperationDailyUpdate,
		ErrorKind: errlog.KindPrediction,
		Tables:    []models.Table{models.PredictionsTable},
		Discover: func(ctx context.Context, _ *client.Client) ([]string, error) {
			today := c.today()
			from := today.AddDate(0, 0, -c.settings.PredictionLookbackDays)
			to := today.AddDate(0, 0, c.settings.PredictionWindowDays+1)
			return c.store.GamesMissing(ctx, models.PredictionsTable.Name, from, to)
		},
		Fetch: fetchPrediction,
	}
}

func fetchOdds(ctx context.Context, cl *client.Client, id string) pipeline.Outcome {
	data, err := cl.Odds(ctx, id)
	if err != nil {
		return absentOr(id, err)
	}
	lines := normalize.Odds(id, data)
	if len(lines) == 0 {
		return pipeline.Absent(id)
	}
	batch := models.Batch{}
	batch.Add(models.OddsTable.Name, records(lines)...)
	return pipeline.Complete(id, batch)
}

func fetchPrediction(ctx context.Context, cl *client.Client, id string) pipeline.Outcome {
	data, err := cl.Predictor(ctx, id)
	if err != nil {
		return absentOr(id, err)
	}
	batch := models.Batch{}
	batch.Add(models.PredictionsTable.Name, normalize.Prediction(id, data))
	return pipeline.Complete(id, batch)
}
